package matching

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/antzucaro/matchr"
)

// Similarity scores two normalized names in [0,1]. It is the maximum of
// three views of lexical closeness:
//
//   - token overlap: |common| / max(|a tokens|, |b tokens|), which is robust
//     to word reordering ("press dumbbell" vs "dumbbell press"),
//   - Jaro-Winkler, which rewards shared prefixes and catches transposed
//     characters, and
//   - a Levenshtein-derived ratio, 1 - dist/maxLen, which catches single-edit
//     misspellings fuzzy token matching misses.
//
// Identical inputs score 1.0.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	score := tokenOverlap(a, b)
	if jw := matchr.JaroWinkler(a, b, false); jw > score {
		score = jw
	}
	if lr := levenshteinRatio(a, b); lr > score {
		score = lr
	}
	return score
}

func tokenOverlap(a, b string) float64 {
	ta := strings.Fields(a)
	tb := strings.Fields(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0.0
	}
	set := make(map[string]struct{}, len(ta))
	for _, t := range ta {
		set[t] = struct{}{}
	}
	common := 0
	seen := make(map[string]struct{}, len(tb))
	for _, t := range tb {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := set[t]; ok {
			common++
		}
	}
	max := len(ta)
	if len(tb) > max {
		max = len(tb)
	}
	return float64(common) / float64(max)
}

func levenshteinRatio(a, b string) float64 {
	dist := levenshtein.ComputeDistance(a, b)
	max := len([]rune(a))
	if n := len([]rune(b)); n > max {
		max = n
	}
	if max == 0 {
		return 1.0
	}
	return 1.0 - float64(dist)/float64(max)
}
