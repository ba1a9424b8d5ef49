package matching

import (
	"strings"
)

// synonymTable maps a canonical term to spellings and near-terms users
// actually produce (voice transcription, shorthand, common misspellings).
// Variants are emitted one substitution at a time so the output stays
// bounded; they are lookup keys, not display strings.
var synonymTable = map[string][]string{
	"dumbbell":   {"db", "dumbell", "dumbel"},
	"barbell":    {"bb", "barbel"},
	"kettlebell": {"kb", "kettle bell"},
	"press":      {"push"},
	"row":        {"pull"},
	"squat":      {"squats"},
	"deadlift":   {"dead lift", "deadlifts"},
	"pulldown":   {"pull down", "pulldowns"},
	"pullup":     {"pull up", "chin up"},
	"pushup":     {"push up", "press up"},
	"unilateral": {"single arm", "one arm"},
	"overhead":   {"oh"},
	"romanian":   {"rdl"},
	"bodyweight": {"bw", "body weight"},
	"extension":  {"ext"},
	"curl":       {"curls"},
	"raise":      {"raises"},
	"lunge":      {"lunges"},
	"thruster":   {"thrustor"},
	"bulgarian":  {"bulgarin"},
}

// GenerateSynonyms derives the bounded set of lexical variants for a
// normalized name. For every table term present in the name, each variant is
// emitted with that one occurrence replaced; substitutions are never composed
// in a single variant. The input itself is never part of the output; callers
// treat the normalized name as the implicit zeroth synonym.
func GenerateSynonyms(normalized string) map[string]struct{} {
	variants := make(map[string]struct{})
	if normalized == "" {
		return variants
	}
	tokens := strings.Fields(normalized)
	for term, subs := range synonymTable {
		termTokens := strings.Fields(term)
		for i := 0; i+len(termTokens) <= len(tokens); i++ {
			if !matchesAt(tokens, termTokens, i) {
				continue
			}
			for _, sub := range subs {
				variant := spliceTokens(tokens, i, len(termTokens), sub)
				if variant != normalized {
					variants[variant] = struct{}{}
				}
			}
		}
	}
	return variants
}

// spliceTokens rebuilds the name with tokens[i:i+n] replaced by repl.
func spliceTokens(tokens []string, i, n int, repl string) string {
	parts := make([]string, 0, len(tokens))
	parts = append(parts, tokens[:i]...)
	parts = append(parts, strings.Fields(repl)...)
	parts = append(parts, tokens[i+n:]...)
	return strings.Join(parts, " ")
}
