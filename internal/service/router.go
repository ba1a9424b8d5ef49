package service

import (
	"alcyxob/exercise-resolver/internal/config"
	"alcyxob/exercise-resolver/internal/domain"
)

// Decision is the routing verdict derived from the ranked candidate list.
// The thresholds are business rules carried in config.MatchingConfig; the
// functions below are the single place they are interpreted.
type Decision int

const (
	// DecideExisting: the top candidate is a confident match.
	DecideExisting Decision = iota
	// DecideSimilar: plausible matches exist but the caller must obtain
	// explicit user confirmation before treating any of them as the match.
	DecideSimilar
	// DecideClassify: nothing close enough is known; classify the raw name
	// and admit it as a new record.
	DecideClassify
)

// DecideFromCandidates evaluates the decision table top-down against the
// ranked candidate list. Pure: same candidates and config, same decision.
//
//	top similarity >= ExactThreshold            -> existing
//	top similarity in [SimilarThreshold, Exact) -> similar_found
//	otherwise                                   -> classify the name
func DecideFromCandidates(candidates []domain.Candidate, cfg config.MatchingConfig) Decision {
	if len(candidates) == 0 {
		return DecideClassify
	}
	top := candidates[0].Similarity
	switch {
	case top >= cfg.ExactThreshold:
		return DecideExisting
	case top >= cfg.SimilarThreshold:
		return DecideSimilar
	default:
		return DecideClassify
	}
}

// DecideFromConfidence routes a brand-new name on the external classifier's
// confidence: at or above the threshold the record is created classified,
// below it the record is persisted pending review. Classifier failures are
// mapped to confidence 0.0 by the caller, which lands here.
func DecideFromConfidence(confidence float64, cfg config.MatchingConfig) domain.OutcomeStatus {
	if confidence >= cfg.ClassifierConfidenceThreshold {
		return domain.OutcomeCreated
	}
	return domain.OutcomeNeedsReview
}
