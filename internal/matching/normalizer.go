// Package matching implements the deterministic text canonicalization and
// similarity primitives the resolution engine is built on: normalization,
// lexical synonym generation, phonetic keying and fuzzy string scoring.
package matching

import (
	"strings"
)

// NormalizerVersion identifies the substitution table below. The normalized
// name is the catalog's uniqueness key, so changing the table (or its order)
// is a breaking schema change that requires re-normalizing the whole catalog.
const NormalizerVersion = 1

// tokenSubstitution rewrites one token (or token sequence) to its canonical
// form. Applied in order after lowercasing and punctuation stripping.
type tokenSubstitution struct {
	from []string
	to   []string
}

// Ordered substitution table. Order is load-bearing: numeric word forms are
// rewritten first so that "1 arm" becomes "one arm" in the same pass that
// collapses "one arm" to "unilateral", otherwise a second Normalize call
// would produce a different string than the first.
var substitutions = []tokenSubstitution{
	{[]string{"1"}, []string{"one"}},
	{[]string{"2"}, []string{"two"}},
	{[]string{"3"}, []string{"three"}},
	{[]string{"single", "arm"}, []string{"unilateral"}},
	{[]string{"one", "arm"}, []string{"unilateral"}},
	{[]string{"single", "leg"}, []string{"unilateral"}},
	{[]string{"one", "leg"}, []string{"unilateral"}},
	{[]string{"kettle", "bell"}, []string{"kettlebell"}},
	{[]string{"body", "weight"}, []string{"bodyweight"}},
	{[]string{"db"}, []string{"dumbbell"}},
	{[]string{"dumbell"}, []string{"dumbbell"}},
	{[]string{"dumbel"}, []string{"dumbbell"}},
	{[]string{"bb"}, []string{"barbell"}},
	{[]string{"barbel"}, []string{"barbell"}},
	{[]string{"kb"}, []string{"kettlebell"}},
	{[]string{"ohp"}, []string{"overhead", "press"}},
	{[]string{"rdl"}, []string{"romanian", "deadlift"}},
	{[]string{"sldl"}, []string{"stiff", "leg", "deadlift"}},
	{[]string{"lat"}, []string{"latissimus"}},
	{[]string{"bw"}, []string{"bodyweight"}},
}

// Normalize canonicalizes a raw exercise name. It is pure, deterministic and
// total: lowercase, trim, strip everything outside [a-z0-9 ], apply the
// ordered substitution table, collapse runs of whitespace. Idempotent:
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	lower := strings.ToLower(raw)

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			// Punctuation, unicode, anything else becomes a space so
			// "db-press" splits into two tokens rather than merging.
			b.WriteByte(' ')
		}
	}

	tokens := strings.Fields(b.String())
	for _, sub := range substitutions {
		tokens = replaceTokens(tokens, sub.from, sub.to)
	}
	return strings.Join(tokens, " ")
}

// replaceTokens rewrites every whole-token-sequence occurrence of from to to.
// Matching is on token boundaries only: "db" never touches "deadbug".
func replaceTokens(tokens, from, to []string) []string {
	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); {
		if matchesAt(tokens, from, i) {
			out = append(out, to...)
			i += len(from)
			continue
		}
		out = append(out, tokens[i])
		i++
	}
	return out
}

func matchesAt(tokens, from []string, i int) bool {
	if i+len(from) > len(tokens) {
		return false
	}
	for j, f := range from {
		if tokens[i+j] != f {
			return false
		}
	}
	return true
}
