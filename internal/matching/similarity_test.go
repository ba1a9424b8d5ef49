package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity_Identical(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("dumbbell press", "dumbbell press"))
}

func TestSimilarity_Empty(t *testing.T) {
	assert.Equal(t, 0.0, Similarity("", "dumbbell press"))
	assert.Equal(t, 0.0, Similarity("dumbbell press", ""))
}

func TestSimilarity_TokenReordering(t *testing.T) {
	// Token overlap is order-insensitive, so reordered names score 1.0 on
	// that component even though the edit-distance view disagrees.
	s := Similarity("press dumbbell", "dumbbell press")
	assert.GreaterOrEqual(t, s, 0.99)
}

func TestSimilarity_NearMiss(t *testing.T) {
	// A superset name stays in the similar band: plausible, not certain.
	s := Similarity("dumbbell press machine", "dumbbell press")
	assert.GreaterOrEqual(t, s, 0.85)
	assert.Less(t, s, 0.98)
}

func TestSimilarity_Unrelated(t *testing.T) {
	s := Similarity("barbell back squat", "lateral raise")
	assert.Less(t, s, 0.70)
}

func TestSimilarity_Symmetric(t *testing.T) {
	a, b := "dumbell press", "dumbbell press"
	assert.InDelta(t, Similarity(a, b), Similarity(b, a), 1e-9)
}
