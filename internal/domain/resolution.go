package domain

import "context"

// Channel identifies which retrieval channel produced a candidate.
type Channel string

const (
	ChannelExact    Channel = "exact"
	ChannelFuzzy    Channel = "fuzzy"
	ChannelPhonetic Channel = "phonetic"
	ChannelSemantic Channel = "semantic"
)

// Candidate is a scored, channel-tagged possible match surfaced by the
// retriever before routing. Similarity is in [0,1]; when a record is hit on
// multiple channels the maximum similarity wins and Channel records where it
// came from.
type Candidate struct {
	ExerciseID  string          `json:"exerciseId"`
	Similarity  float64         `json:"similarity"`
	Channel     Channel         `json:"channel"`
	Explanation string          `json:"explanation"`
	Record      *ExerciseRecord `json:"-"`
}

// OutcomeStatus is one of the four terminal routing decisions.
type OutcomeStatus string

const (
	OutcomeExisting     OutcomeStatus = "existing"
	OutcomeSimilarFound OutcomeStatus = "similar_found"
	OutcomeCreated      OutcomeStatus = "created"
	OutcomeNeedsReview  OutcomeStatus = "needs_review"
)

// Outcome is the tagged result of a resolution call. Exactly one of the
// payload fields is populated, depending on Status:
//
//	existing      → Record (the matched canonical record)
//	similar_found → Candidates (ranked; caller must get user confirmation)
//	created       → Record (the newly persisted, classified record)
//	needs_review  → Record (persisted pending record, metadata absent)
type Outcome struct {
	Status     OutcomeStatus   `json:"outcome"`
	Record     *ExerciseRecord `json:"record,omitempty"`
	Candidates []Candidate     `json:"candidates,omitempty"`
}

// Classification is the external classifier's verdict for a brand-new name.
// Confidence drives the created-vs-needs_review routing decision.
type Classification struct {
	MovementPattern  string    `json:"movementPattern"`
	PrimaryEquipment string    `json:"primaryEquipment"`
	MuscleGroups     []string  `json:"muscleGroups"`
	DifficultyLevel  string    `json:"difficultyLevel"`
	Embedding        []float32 `json:"embedding"`
	Confidence       float64   `json:"confidence"`
}

// ClassifyFunc is the injected AI-backed classifier. It must be safe to
// retry; a returned error is treated as confidence 0.0 by the router, which
// forces a needs_review outcome rather than a silent create.
type ClassifyFunc func(ctx context.Context, rawName string) (Classification, error)

// SemanticHit is one nearest neighbor returned by the external embedding
// index.
type SemanticHit struct {
	ExerciseID string
	Similarity float64 // cosine similarity
}

// SemanticIndex is the external embedding similarity search. Failures and
// timeouts degrade the candidate list; they are never surfaced to callers of
// Resolve.
type SemanticIndex interface {
	Query(ctx context.Context, name string, k int) ([]SemanticHit, error)
}
