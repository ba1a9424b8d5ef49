package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"alcyxob/exercise-resolver/internal/cache"
	"alcyxob/exercise-resolver/internal/config"
	"alcyxob/exercise-resolver/internal/domain"
	"alcyxob/exercise-resolver/internal/logger"
	"alcyxob/exercise-resolver/internal/matching"
	"alcyxob/exercise-resolver/internal/repository"

	"github.com/google/uuid"
)

// --- Error Definitions ---
var (
	ErrEmptyName        = errors.New("exercise name is empty after normalization")
	ErrExerciseNotFound = errors.New("exercise not found")
	// ErrSynonymConflict mirrors the repository invariant violation: a
	// generated synonym is already owned by a different record. Requires
	// manual adjudication; never resolved silently.
	ErrSynonymConflict = errors.New("synonym conflict requires manual adjudication")
)

// ResolverService is the engine's public surface: one resolution entry point
// plus the usage feedback hook the logging pipeline calls after a user
// confirms a match.
type ResolverService interface {
	Resolve(ctx context.Context, rawName string) (*domain.Outcome, error)
	RecordUsage(ctx context.Context, exerciseID string) error
	GetExerciseByID(ctx context.Context, exerciseID string) (*domain.ExerciseRecord, error)
}

// resolverService implements ResolverService.
type resolverService struct {
	repo      repository.CatalogRepository
	cache     *cache.CatalogCache
	retriever *CandidateRetriever
	classify  domain.ClassifyFunc
	cfg       config.MatchingConfig
	log       *logger.Logger
}

// NewResolverService wires the resolution engine. classify is the injected
// external classifier; it is only invoked for names no channel matched.
func NewResolverService(
	repo repository.CatalogRepository,
	catalogCache *cache.CatalogCache,
	retriever *CandidateRetriever,
	classify domain.ClassifyFunc,
	cfg config.MatchingConfig,
	log *logger.Logger,
) ResolverService {
	return &resolverService{
		repo:      repo,
		cache:     catalogCache,
		retriever: retriever,
		classify:  classify,
		cfg:       cfg,
		log:       log,
	}
}

// Resolve routes a free-text exercise name to one of the four outcomes.
// Internal recoveries (classifier or semantic-channel failures) only ever
// make the outcome more conservative; they never surface as errors.
func (s *resolverService) Resolve(ctx context.Context, rawName string) (*domain.Outcome, error) {
	normalized := matching.Normalize(rawName)
	if normalized == "" {
		return nil, ErrEmptyName
	}
	phonetic := matching.PhoneticKey(normalized)

	candidates := s.retriever.Retrieve(ctx, normalized, phonetic)

	switch DecideFromCandidates(candidates, s.cfg) {
	case DecideExisting:
		top := candidates[0]
		s.log.Debug("resolved to existing record",
			"name", rawName, "exerciseId", top.ExerciseID, "channel", top.Channel)
		return &domain.Outcome{Status: domain.OutcomeExisting, Record: top.Record}, nil

	case DecideSimilar:
		return &domain.Outcome{Status: domain.OutcomeSimilarFound, Candidates: candidates}, nil

	default:
		return s.admitNewRecord(ctx, rawName, normalized, phonetic)
	}
}

// admitNewRecord classifies a name nothing matched and persists it. A
// classifier failure is treated as confidence 0.0, which forces the
// needs_review path, never a silent create.
func (s *resolverService) admitNewRecord(ctx context.Context, rawName, normalized, phonetic string) (*domain.Outcome, error) {
	classification, err := s.classify(ctx, rawName)
	if err != nil {
		s.log.Warn("classifier unavailable, forcing review", "name", rawName, "error", err)
		classification = domain.Classification{}
	}

	record := &domain.ExerciseRecord{
		ID:             uuid.NewString(),
		OriginalName:   rawName,
		NormalizedName: normalized,
		Synonyms:       sortedSynonyms(normalized),
		PhoneticKey:    phonetic,
		CreatedAt:      time.Now().UTC(),
	}

	status := DecideFromConfidence(classification.Confidence, s.cfg)
	if status == domain.OutcomeCreated {
		record.MovementPattern = classification.MovementPattern
		record.PrimaryEquipment = classification.PrimaryEquipment
		record.MuscleGroups = classification.MuscleGroups
		record.DifficultyLevel = classification.DifficultyLevel
		record.Embedding = classification.Embedding
	}

	winner, created, err := s.repo.CreateOrGet(ctx, record)
	if err != nil {
		if errors.Is(err, repository.ErrSynonymConflict) {
			return nil, ErrSynonymConflict
		}
		return nil, err
	}
	if !created {
		// Lost a same-name race, or the exact channel missed a record the
		// store knows. Either way this is indistinguishable from an
		// existing resolution for the caller.
		s.cache.Put(winner)
		return &domain.Outcome{Status: domain.OutcomeExisting, Record: winner}, nil
	}

	s.cache.Put(winner)
	if status == domain.OutcomeNeedsReview {
		s.log.Info("admitted record pending review",
			"name", rawName, "exerciseId", winner.ID, "confidence", classification.Confidence)
	}
	return &domain.Outcome{Status: status, Record: winner}, nil
}

// RecordUsage increments an exercise's usage counter. Called by the logging
// pipeline after the user confirms a match; this engine never calls it on
// its own behalf.
func (s *resolverService) RecordUsage(ctx context.Context, exerciseID string) error {
	if exerciseID == "" {
		return ErrExerciseNotFound
	}
	if err := s.repo.IncrementUsage(ctx, exerciseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}
	s.cache.BumpUsage(exerciseID)
	return nil
}

// GetExerciseByID hydrates a record, cache first.
func (s *resolverService) GetExerciseByID(ctx context.Context, exerciseID string) (*domain.ExerciseRecord, error) {
	if record, ok := s.cache.GetByID(exerciseID); ok {
		return record, nil
	}
	record, err := s.repo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return record, nil
}

// sortedSynonyms materializes the generator's set deterministically.
func sortedSynonyms(normalized string) []string {
	set := matching.GenerateSynonyms(normalized)
	out := make([]string, 0, len(set))
	for syn := range set {
		out = append(out, syn)
	}
	sort.Strings(out)
	return out
}
