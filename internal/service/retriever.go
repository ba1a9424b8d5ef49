package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"alcyxob/exercise-resolver/internal/cache"
	"alcyxob/exercise-resolver/internal/config"
	"alcyxob/exercise-resolver/internal/domain"
	"alcyxob/exercise-resolver/internal/logger"
	"alcyxob/exercise-resolver/internal/matching"
	"alcyxob/exercise-resolver/internal/repository"
)

// pendingSimilarityCap bounds how confidently an unclassified record may be
// surfaced. A pending record never scores at or above the exact threshold,
// so it can reach similar_found (user confirms) but never an autonomous
// existing outcome.
const pendingSimilarityCap = 0.97

// CandidateRetriever merges the four retrieval channels (exact, fuzzy
// lexical, phonetic, semantic) into one ranked candidate list.
type CandidateRetriever struct {
	cache    *cache.CatalogCache
	repo     repository.CatalogRepository
	semantic domain.SemanticIndex // optional
	cfg      config.MatchingConfig
	log      *logger.Logger
}

// NewCandidateRetriever wires a retriever. semantic may be nil, in which
// case the semantic channel is simply absent.
func NewCandidateRetriever(
	catalogCache *cache.CatalogCache,
	repo repository.CatalogRepository,
	semantic domain.SemanticIndex,
	cfg config.MatchingConfig,
	log *logger.Logger,
) *CandidateRetriever {
	return &CandidateRetriever{
		cache:    catalogCache,
		repo:     repo,
		semantic: semantic,
		cfg:      cfg,
		log:      log,
	}
}

// Retrieve returns the ranked candidate list for a normalized name, capped
// at the configured maximum. Per-record the maximum similarity across
// channels wins; ties rank by usage count, then by creation time ascending
// so established records come first.
func (r *CandidateRetriever) Retrieve(ctx context.Context, normalized, phonetic string) []domain.Candidate {
	merged := make(map[string]domain.Candidate)

	r.exactChannel(ctx, normalized, merged)
	r.fuzzyChannel(normalized, phonetic, merged)
	r.phoneticChannel(phonetic, merged)
	r.semanticChannel(ctx, normalized, merged)

	candidates := make([]domain.Candidate, 0, len(merged))
	for _, c := range merged {
		candidates = append(candidates, c)
	}
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Similarity != b.Similarity {
			return a.Similarity > b.Similarity
		}
		if a.Record != nil && b.Record != nil {
			if a.Record.UsageCount != b.Record.UsageCount {
				return a.Record.UsageCount > b.Record.UsageCount
			}
			return a.Record.CreatedAt.Before(b.Record.CreatedAt)
		}
		return a.ExerciseID < b.ExerciseID
	})
	if len(candidates) > r.cfg.MaxCandidates {
		candidates = candidates[:r.cfg.MaxCandidates]
	}
	return candidates
}

// exactChannel checks the normalized-name and synonym indexes, cache first,
// store second. A hit scores 1.0 unless the record is still pending review.
func (r *CandidateRetriever) exactChannel(ctx context.Context, normalized string, merged map[string]domain.Candidate) {
	record, explanation := r.lookupExact(ctx, normalized)
	if record == nil {
		return
	}
	mergeCandidate(merged, domain.Candidate{
		ExerciseID:  record.ID,
		Similarity:  capPending(1.0, record),
		Channel:     domain.ChannelExact,
		Explanation: explanation,
		Record:      record,
	})
}

// lookupExact resolves a normalized name through the exact indexes, cache
// first, store second.
func (r *CandidateRetriever) lookupExact(ctx context.Context, normalized string) (*domain.ExerciseRecord, string) {
	if record, ok := r.cache.GetByNormalizedName(normalized); ok {
		return record, "normalized name matches"
	}
	if record, ok := r.cache.GetBySynonym(normalized); ok {
		return record, "known synonym"
	}
	if record, err := r.repo.GetByNormalizedName(ctx, normalized); err == nil {
		return record, "normalized name matches"
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, ""
	}
	if record, err := r.repo.GetBySynonym(ctx, normalized); err == nil {
		return record, "known synonym"
	}
	return nil, ""
}

// fuzzyChannel scores the phonetic bucket plus the most-used pool with the
// lexical similarity function. Inclusion requires the configured threshold;
// that threshold admits a record into the list, it never auto-matches.
func (r *CandidateRetriever) fuzzyChannel(normalized, phonetic string, merged map[string]domain.Candidate) {
	pool := r.cache.GetByPhoneticKey(phonetic)
	pool = append(pool, r.cache.MostUsed(r.cfg.RecentPoolSize)...)

	seen := make(map[string]struct{}, len(pool))
	for _, record := range pool {
		if _, dup := seen[record.ID]; dup {
			continue
		}
		seen[record.ID] = struct{}{}

		best := matching.Similarity(normalized, record.NormalizedName)
		matchedOn := record.NormalizedName
		for _, syn := range record.Synonyms {
			if s := matching.Similarity(normalized, syn); s > best {
				best = s
				matchedOn = syn
			}
		}
		if best < r.cfg.FuzzyInclusionThreshold {
			continue
		}
		mergeCandidate(merged, domain.Candidate{
			ExerciseID:  record.ID,
			Similarity:  capPending(best, record),
			Channel:     domain.ChannelFuzzy,
			Explanation: fmt.Sprintf("lexical similarity %.2f to %q", best, matchedOn),
			Record:      record,
		})
	}
}

// phoneticChannel includes every record sharing the phonetic key at the
// fixed base similarity. A record the fuzzy channel already scored higher
// keeps its fuzzy score; channels never double count.
func (r *CandidateRetriever) phoneticChannel(phonetic string, merged map[string]domain.Candidate) {
	for _, record := range r.cache.GetByPhoneticKey(phonetic) {
		mergeCandidate(merged, domain.Candidate{
			ExerciseID:  record.ID,
			Similarity:  capPending(r.cfg.PhoneticBaseSimilarity, record),
			Channel:     domain.ChannelPhonetic,
			Explanation: "sound-alike key " + phonetic,
			Record:      record,
		})
	}
}

// semanticChannel consults the external embedding index, but only when no
// lexical channel already found a near-certain match, and always under a
// timeout. A timeout or error degrades the candidate list and is logged as
// a quality signal; it is never a resolution failure.
func (r *CandidateRetriever) semanticChannel(ctx context.Context, normalized string, merged map[string]domain.Candidate) {
	if r.semantic == nil {
		return
	}
	for _, c := range merged {
		if c.Similarity >= r.cfg.SimilarThreshold {
			return // already have a strong lexical hit, skip the external call
		}
	}

	queryCtx, cancel := context.WithTimeout(ctx, r.cfg.SemanticTimeout)
	defer cancel()

	hits, err := r.semantic.Query(queryCtx, normalized, r.cfg.SemanticNeighbors)
	if err != nil {
		r.log.Warn("semantic channel degraded", "name", normalized, "error", err)
		return
	}
	for _, hit := range hits {
		record, ok := r.cache.GetByID(hit.ExerciseID)
		if !ok {
			var err error
			record, err = r.repo.GetByID(ctx, hit.ExerciseID)
			if err != nil {
				continue
			}
		}
		similarity := hit.Similarity
		if similarity > 1.0 {
			similarity = 1.0
		} else if similarity < 0.0 {
			similarity = 0.0
		}
		mergeCandidate(merged, domain.Candidate{
			ExerciseID:  record.ID,
			Similarity:  capPending(similarity, record),
			Channel:     domain.ChannelSemantic,
			Explanation: fmt.Sprintf("embedding cosine similarity %.2f", hit.Similarity),
			Record:      record,
		})
	}
}

// mergeCandidate keeps the maximum similarity per exercise id.
func mergeCandidate(merged map[string]domain.Candidate, c domain.Candidate) {
	if prev, ok := merged[c.ExerciseID]; ok && prev.Similarity >= c.Similarity {
		return
	}
	merged[c.ExerciseID] = c
}

// capPending keeps unclassified records below the exact threshold so they
// can only surface through user confirmation, never as a confident match.
func capPending(similarity float64, record *domain.ExerciseRecord) float64 {
	if record.IsClassified() {
		return similarity
	}
	if similarity > pendingSimilarityCap {
		return pendingSimilarityCap
	}
	return similarity
}
