package service

import (
	"context"
	"testing"
	"time"

	"alcyxob/exercise-resolver/internal/cache"
	"alcyxob/exercise-resolver/internal/config"
	"alcyxob/exercise-resolver/internal/domain"
	"alcyxob/exercise-resolver/internal/logger"
	"alcyxob/exercise-resolver/internal/matching"
	"alcyxob/exercise-resolver/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSemantic struct {
	hits   []domain.SemanticHit
	delay  time.Duration
	called bool
}

func (s *stubSemantic) Query(ctx context.Context, name string, k int) ([]domain.SemanticHit, error) {
	s.called = true
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	return s.hits, nil
}

func classifiedRecord(name string, usage int64) *domain.ExerciseRecord {
	normalized := matching.Normalize(name)
	return &domain.ExerciseRecord{
		ID:               uuid.NewString(),
		OriginalName:     name,
		NormalizedName:   normalized,
		PhoneticKey:      matching.PhoneticKey(normalized),
		MovementPattern:  "hinge",
		PrimaryEquipment: "barbell",
		MuscleGroups:     []string{"posterior chain"},
		DifficultyLevel:  domain.DifficultyIntermediate,
		UsageCount:       usage,
		CreatedAt:        time.Now().UTC(),
	}
}

func newRetriever(t *testing.T, cfg config.MatchingConfig, semantic domain.SemanticIndex, records ...*domain.ExerciseRecord) (*CandidateRetriever, *cache.CatalogCache) {
	t.Helper()
	repo := memory.NewMemoryCatalogRepository()
	catalogCache := cache.NewCatalogCache()
	for _, record := range records {
		_, _, err := repo.CreateOrGet(context.Background(), record)
		require.NoError(t, err)
		catalogCache.Put(record)
	}
	return NewCandidateRetriever(catalogCache, repo, semantic, cfg, logger.NewNop()), catalogCache
}

func TestRetrieve_ExactChannelWins(t *testing.T) {
	record := classifiedRecord("dumbbell press", 3)
	retriever, _ := newRetriever(t, config.DefaultMatching(), nil, record)

	candidates := retriever.Retrieve(context.Background(), "dumbbell press", matching.PhoneticKey("dumbbell press"))
	require.NotEmpty(t, candidates)
	assert.Equal(t, record.ID, candidates[0].ExerciseID)
	assert.Equal(t, 1.0, candidates[0].Similarity)
	assert.Equal(t, domain.ChannelExact, candidates[0].Channel)
}

func TestRetrieve_FuzzyBeatsPhoneticBase(t *testing.T) {
	// "thrustor" shares the phonetic bucket with "thruster" and also scores
	// high lexically; the merged candidate keeps the fuzzy score, not the
	// 0.60 phonetic base.
	record := classifiedRecord("thruster", 0)
	retriever, _ := newRetriever(t, config.DefaultMatching(), nil, record)

	candidates := retriever.Retrieve(context.Background(), "thrustor", matching.PhoneticKey("thrustor"))
	require.Len(t, candidates, 1)
	assert.Greater(t, candidates[0].Similarity, 0.60)
	assert.Equal(t, domain.ChannelFuzzy, candidates[0].Channel)
}

func TestRetrieve_PhoneticBaseWhenFuzzyExcluded(t *testing.T) {
	cfg := config.DefaultMatching()
	cfg.FuzzyInclusionThreshold = 1.01 // force the fuzzy channel to include nothing
	record := classifiedRecord("thruster", 0)
	retriever, _ := newRetriever(t, cfg, nil, record)

	candidates := retriever.Retrieve(context.Background(), "thrustor", matching.PhoneticKey("thrustor"))
	require.Len(t, candidates, 1)
	assert.Equal(t, cfg.PhoneticBaseSimilarity, candidates[0].Similarity)
	assert.Equal(t, domain.ChannelPhonetic, candidates[0].Channel)
}

func TestRetrieve_CapsCandidateList(t *testing.T) {
	cfg := config.DefaultMatching()
	cfg.FuzzyInclusionThreshold = 0.0 // admit everything in the pool

	records := make([]*domain.ExerciseRecord, 0, 15)
	names := []string{
		"back squat", "front squat", "overhead squat", "goblet squat", "hack squat",
		"split squat", "box squat", "pause squat", "zercher squat", "pistol squat",
		"bench press", "incline press", "floor press", "push press", "pin press",
	}
	for _, name := range names {
		records = append(records, classifiedRecord(name, 0))
	}
	retriever, _ := newRetriever(t, cfg, nil, records...)

	candidates := retriever.Retrieve(context.Background(), "sumo squat", matching.PhoneticKey("sumo squat"))
	assert.Len(t, candidates, cfg.MaxCandidates)
}

func TestRetrieve_TieBreakByUsageThenAge(t *testing.T) {
	cfg := config.DefaultMatching()
	cfg.FuzzyInclusionThreshold = 1.01 // pin every bucket member to the same base similarity

	older := classifiedRecord("thruster", 5)
	older.CreatedAt = time.Now().UTC().Add(-2 * time.Hour)
	newer := classifiedRecord("thrustier", 5)
	newer.PhoneticKey = older.PhoneticKey // same bucket
	popular := classifiedRecord("thrustor", 9)
	popular.PhoneticKey = older.PhoneticKey

	retriever, _ := newRetriever(t, cfg, nil, older, newer, popular)

	candidates := retriever.Retrieve(context.Background(), "throoster", older.PhoneticKey)
	require.Len(t, candidates, 3)
	assert.Equal(t, popular.ID, candidates[0].ExerciseID, "higher usage ranks first at equal similarity")
	assert.Equal(t, older.ID, candidates[1].ExerciseID, "older record wins the remaining tie")
	assert.Equal(t, newer.ID, candidates[2].ExerciseID)
}

func TestRetrieve_SemanticUsedWhenLexicalWeak(t *testing.T) {
	record := classifiedRecord("reverse hyperextension", 0)
	semantic := &stubSemantic{hits: []domain.SemanticHit{{ExerciseID: record.ID, Similarity: 0.91}}}
	retriever, _ := newRetriever(t, config.DefaultMatching(), semantic, record)

	normalized := matching.Normalize("glute ham developer")
	candidates := retriever.Retrieve(context.Background(), normalized, matching.PhoneticKey(normalized))
	require.True(t, semantic.called)
	require.NotEmpty(t, candidates)
	assert.Equal(t, record.ID, candidates[0].ExerciseID)
	assert.Equal(t, domain.ChannelSemantic, candidates[0].Channel)
	assert.InDelta(t, 0.91, candidates[0].Similarity, 1e-9)
}

func TestRetrieve_SemanticSkippedOnStrongLexicalHit(t *testing.T) {
	record := classifiedRecord("dumbbell press", 0)
	semantic := &stubSemantic{hits: []domain.SemanticHit{{ExerciseID: record.ID, Similarity: 0.99}}}
	retriever, _ := newRetriever(t, config.DefaultMatching(), semantic, record)

	retriever.Retrieve(context.Background(), "dumbbell press", matching.PhoneticKey("dumbbell press"))
	assert.False(t, semantic.called, "exact hit must short-circuit the external call")
}

func TestRetrieve_SemanticTimeoutDegrades(t *testing.T) {
	cfg := config.DefaultMatching()
	cfg.SemanticTimeout = 10 * time.Millisecond
	record := classifiedRecord("reverse hyperextension", 0)
	semantic := &stubSemantic{
		hits:  []domain.SemanticHit{{ExerciseID: record.ID, Similarity: 0.95}},
		delay: 500 * time.Millisecond,
	}
	retriever, _ := newRetriever(t, cfg, semantic, record)

	normalized := matching.Normalize("glute ham developer")
	start := time.Now()
	candidates := retriever.Retrieve(context.Background(), normalized, matching.PhoneticKey(normalized))
	assert.Less(t, time.Since(start), 200*time.Millisecond, "the retriever must not wait out the slow index")
	for _, c := range candidates {
		assert.NotEqual(t, domain.ChannelSemantic, c.Channel)
	}
}
