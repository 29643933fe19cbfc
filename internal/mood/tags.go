package mood

import "strings"

// SuggestedTags are the influences offered during a check-in.
var SuggestedTags = []string{"Sleep", "Exercise", "Social", "Work", "Nature", "Creative", "Meditation", "Nutrition"}

// NormalizeTags trims tags, drops empties and removes case-insensitive duplicates.
// The first spelling wins; a tag matching one of suggested takes its spelling.
func NormalizeTags(tags, suggested []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, canonical(t, suggested))
	}
	return out
}

func canonical(tag string, suggested []string) string {
	for _, s := range suggested {
		if strings.EqualFold(s, tag) {
			return s
		}
	}
	return tag
}

// HasTag reports whether tags contains tag, ignoring case.
func HasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
