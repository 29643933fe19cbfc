package history

import (
	"sort"
	"strings"

	"github.com/xolan/haven/internal/mood"
)

// TagCount summarizes how often a tag was logged and the mood it came with.
type TagCount struct {
	Tag          string
	Count        int
	AverageScore float64
}

// TagCounts returns tag usage across all entries, most used first.
// Tags are grouped case-insensitively under their first spelling.
func (h *History) TagCounts() []TagCount {
	type acc struct {
		tag   string
		count int
		sum   int
	}
	byKey := make(map[string]*acc)
	var order []string
	for _, e := range h.entries {
		for _, t := range mood.NormalizeTags(e.Tags, mood.SuggestedTags) {
			key := strings.ToLower(t)
			a, ok := byKey[key]
			if !ok {
				a = &acc{tag: t}
				byKey[key] = a
				order = append(order, key)
			}
			a.count++
			a.sum += e.Score
		}
	}

	out := make([]TagCount, 0, len(order))
	for _, key := range order {
		a := byKey[key]
		out = append(out, TagCount{Tag: a.tag, Count: a.count, AverageScore: float64(a.sum) / float64(a.count)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

// Distribution counts entries per mood.
func (h *History) Distribution() map[mood.Mood]int {
	out := make(map[mood.Mood]int, len(mood.All))
	for _, e := range h.entries {
		out[e.Mood]++
	}
	return out
}
