package internal

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"
)

// FindSimilarStrings finds strings from candidates that are similar to target.
// Returns up to maxSuggestions suggestions, closest first. Ties keep
// candidate order so results are deterministic.
func FindSimilarStrings(target string, candidates []string, maxSuggestions int) []string {
	if len(candidates) == 0 || maxSuggestions <= 0 {
		return nil
	}

	// Maximum distance to consider a candidate as similar
	maxDistance := len([]rune(target)) / 2
	if maxDistance < 2 {
		maxDistance = 2
	}

	type scored struct {
		str      string
		distance int
	}

	var similar []scored
	targetLower := strings.ToLower(target)

	for _, candidate := range candidates {
		dist := levenshteinDistance(targetLower, strings.ToLower(candidate))
		if dist <= maxDistance {
			similar = append(similar, scored{str: candidate, distance: dist})
		}
	}

	sort.SliceStable(similar, func(i, j int) bool {
		return similar[i].distance < similar[j].distance
	})

	result := make([]string, 0, maxSuggestions)
	for i := 0; i < len(similar) && i < maxSuggestions; i++ {
		result = append(result, similar[i].str)
	}
	return result
}

// levenshteinDistance calculates the minimum number of single-rune edits
// required to change a into b.
func levenshteinDistance(a, b string) int {
	return levenshtein.Distance(a, b, nil)
}

// FormatSuggestions formats a list of suggestions as a human-readable string.
// Example output: ". Did you mean 'title', 'tile' or 'tilde'?"
func FormatSuggestions(suggestions []string) string {
	if len(suggestions) == 0 {
		return ""
	}

	if len(suggestions) == 1 {
		return ". Did you mean '" + suggestions[0] + "'?"
	}

	var sb strings.Builder
	sb.WriteString(". Did you mean ")

	for i, s := range suggestions {
		if i > 0 {
			if i == len(suggestions)-1 {
				sb.WriteString(" or ")
			} else {
				sb.WriteString(", ")
			}
		}
		sb.WriteByte('\'')
		sb.WriteString(s)
		sb.WriteByte('\'')
	}

	sb.WriteByte('?')
	return sb.String()
}

// FilterByPrefix returns the candidates starting with prefix, case-insensitively,
// in their original order. An empty prefix matches everything.
func FilterByPrefix(prefix string, candidates []string) []string {
	if prefix == "" {
		return append([]string(nil), candidates...)
	}
	lower := strings.ToLower(prefix)
	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(strings.ToLower(c), lower) {
			out = append(out, c)
		}
	}
	return out
}
