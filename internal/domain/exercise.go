package domain

import (
	"time"
)

// Difficulty levels assigned by the external classifier.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// ExerciseRecord is a canonical catalog entry. NormalizedName is the
// uniqueness key: exactly one record exists per distinct normalized name.
// Synonyms are globally disjoint: a synonym string belongs to at most one
// record system-wide. PhoneticKey is many-to-one and only widens the fuzzy
// candidate pool.
type ExerciseRecord struct {
	ID             string   `bson:"_id" json:"id"`
	OriginalName   string   `bson:"originalName" json:"originalName"`     // first user-supplied spelling, kept verbatim for display
	NormalizedName string   `bson:"normalizedName" json:"normalizedName"` // unique canonical key
	Synonyms       []string `bson:"synonyms" json:"synonyms"`
	PhoneticKey    string   `bson:"phoneticKey" json:"phoneticKey"`

	// Classification metadata, written once by the external classifier and
	// immutable from this engine's perspective. Either all present or all
	// absent; a record with absent metadata is pending review and must not
	// be surfaced as a confident match.
	Embedding        []float32 `bson:"embedding,omitempty" json:"-"`
	MovementPattern  string    `bson:"movementPattern,omitempty" json:"movementPattern,omitempty"`
	PrimaryEquipment string    `bson:"primaryEquipment,omitempty" json:"primaryEquipment,omitempty"`
	MuscleGroups     []string  `bson:"muscleGroups,omitempty" json:"muscleGroups,omitempty"`
	DifficultyLevel  string    `bson:"difficultyLevel,omitempty" json:"difficultyLevel,omitempty"`

	IsValidated bool      `bson:"isValidated" json:"isValidated"` // set by an external review process, never by this engine
	UsageCount  int64     `bson:"usageCount" json:"usageCount"`   // monotonic, tie-breaker signal
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

// IsClassified reports whether classification metadata has been attached.
// Records without metadata are in the pending-review lifecycle state.
func (r *ExerciseRecord) IsClassified() bool {
	return r.MovementPattern != "" && r.PrimaryEquipment != "" &&
		len(r.MuscleGroups) > 0 && r.DifficultyLevel != ""
}
