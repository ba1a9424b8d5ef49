package matching

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// PhoneticKey collapses a normalized name to a coarse sound-alike code:
// the Soundex code of each token, joined in order, so "thruster" and
// "thrustor" (and "dumbbell"/"dumbell") collide. The key is a candidate
// filter only: its false-positive rate is far too high for autonomous
// matching, so it is never the sole basis for a decision.
func PhoneticKey(normalized string) string {
	tokens := strings.Fields(normalized)
	if len(tokens) == 0 {
		return ""
	}
	codes := make([]string, 0, len(tokens))
	for _, t := range tokens {
		code := matchr.Soundex(t)
		if code == "" {
			// Purely numeric tokens have no Soundex code; keep them
			// verbatim so "21s" style names stay distinguishable.
			code = t
		}
		codes = append(codes, code)
	}
	return strings.Join(codes, "-")
}
