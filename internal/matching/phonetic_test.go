package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhoneticKey_Collisions(t *testing.T) {
	// Transcription-style misspellings collapse to the same key.
	assert.Equal(t, PhoneticKey("thruster"), PhoneticKey("thrustor"))
	assert.Equal(t, PhoneticKey("dumbbell press"), PhoneticKey("dumbell press"))
	assert.Equal(t, PhoneticKey("bulgarian split squat"), PhoneticKey("bulgarin split squat"))
}

func TestPhoneticKey_Distinguishes(t *testing.T) {
	assert.NotEqual(t, PhoneticKey("squat"), PhoneticKey("press"))
	// Token count is part of the key: a longer name never collides with its prefix.
	assert.NotEqual(t, PhoneticKey("dumbbell press"), PhoneticKey("dumbbell"))
}

func TestPhoneticKey_Deterministic(t *testing.T) {
	assert.Equal(t, PhoneticKey("romanian deadlift"), PhoneticKey("romanian deadlift"))
	assert.Equal(t, "", PhoneticKey(""))
}
