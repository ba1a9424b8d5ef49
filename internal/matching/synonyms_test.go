package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSynonyms(t *testing.T) {
	variants := GenerateSynonyms("dumbbell press")

	assert.Contains(t, variants, "db press")
	assert.Contains(t, variants, "dumbell press")
	assert.Contains(t, variants, "dumbbell push")

	// Substitutions are never composed in one variant.
	assert.NotContains(t, variants, "db push")
	// The input is never part of its own variant set.
	assert.NotContains(t, variants, "dumbbell press")
}

func TestGenerateSynonyms_NoTableTerms(t *testing.T) {
	assert.Empty(t, GenerateSynonyms("zercher carry"))
	assert.Empty(t, GenerateSynonyms(""))
}

func TestGenerateSynonyms_BoundedOutput(t *testing.T) {
	// A name full of table terms still yields a modest variant set because
	// each variant applies exactly one substitution.
	variants := GenerateSynonyms("unilateral dumbbell romanian deadlift row")
	assert.NotEmpty(t, variants)
	assert.LessOrEqual(t, len(variants), 15)
}

func TestGenerateSynonyms_MultiTokenVariant(t *testing.T) {
	variants := GenerateSynonyms("unilateral row")
	assert.Contains(t, variants, "single arm row")
	assert.Contains(t, variants, "one arm row")
	assert.Contains(t, variants, "unilateral pull")
}
