package catalog

import (
	"sort"
	"strings"

	"github.com/xrash/smetrics"
)

// similarity threshold below which a fuzzy match is not worth showing
const suggestThreshold = 0.8

// suggestion tiers: prefix and suffix matches rank above substring
// matches, which rank above plain similarity hits
const (
	tierAffix     = 3.0
	tierSubstring = 2.0
	tierFuzzy     = 1.0
)

type scoredName struct {
	name  string
	score float64
}

// suggestNames ranks candidate names against a normalized query and
// returns the top 5. query must already be lowercased and trimmed.
func suggestNames(names []string, query string) []string {
	if query == "" {
		return nil
	}

	scored := make([]scoredName, 0, len(names))
	for _, name := range names {
		norm := normalizeName(name)
		jw := smetrics.JaroWinkler(norm, query, 0.7, 4)

		var score float64
		switch {
		case strings.HasPrefix(norm, query) || strings.HasSuffix(norm, query):
			score = tierAffix + jw
		case strings.Contains(norm, query):
			score = tierSubstring + jw
		case jw >= suggestThreshold:
			score = tierFuzzy + jw
		default:
			continue
		}
		scored = append(scored, scoredName{name: name, score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if len(scored) > 5 {
		scored = scored[:5]
	}
	out := make([]string, len(scored))
	for i, s := range scored {
		out[i] = s.name
	}
	return out
}
