package filter

import (
	"strings"

	"github.com/xolan/haven/internal/journal"
	"github.com/xolan/haven/internal/mood"
)

// Filter represents search and filtering criteria for journal and mood entries.
// All filter fields are optional - empty values match all entries.
type Filter struct {
	Keyword       string    // Case-insensitive substring search in title or content
	Tags          []string  // All specified tags must be present (AND logic, case-insensitive)
	FavoritesOnly bool      // Only favorite journal entries
	Mood          mood.Mood // Exact mood match
}

// NewFilter creates a new Filter with the given criteria.
func NewFilter(keyword string, tags []string, favoritesOnly bool, m mood.Mood) *Filter {
	return &Filter{
		Keyword:       keyword,
		Tags:          tags,
		FavoritesOnly: favoritesOnly,
		Mood:          m,
	}
}

// IsEmpty returns true if all filter fields are empty (matches all entries)
func (f *Filter) IsEmpty() bool {
	return f == nil || (f.Keyword == "" && len(f.Tags) == 0 && !f.FavoritesOnly && f.Mood == "")
}

// Journal returns a new slice containing only journal entries that match.
// If the filter is empty, returns all entries.
func Journal(entries []journal.Entry, f *Filter) []journal.Entry {
	if f.IsEmpty() {
		return entries
	}

	filtered := make([]journal.Entry, 0)
	for _, e := range entries {
		if f.MatchesJournal(e) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// Moods returns a new slice containing only mood entries that match.
// Keyword and FavoritesOnly apply to journal entries only; Keyword is matched
// against the note of a mood entry.
func Moods(entries []mood.Entry, f *Filter) []mood.Entry {
	if f.IsEmpty() {
		return entries
	}

	filtered := make([]mood.Entry, 0)
	for _, e := range entries {
		if f.MatchesMood(e) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// MatchesKeyword returns true if the keyword is found in any of the texts (case-insensitive).
// An empty keyword matches everything.
func (f *Filter) MatchesKeyword(texts ...string) bool {
	if f.Keyword == "" {
		return true
	}
	kw := strings.ToLower(f.Keyword)
	for _, s := range texts {
		if strings.Contains(strings.ToLower(s), kw) {
			return true
		}
	}
	return false
}

// MatchesTags returns true if tags contains ALL filter tags (case-insensitive).
// An empty tags filter matches everything.
func (f *Filter) MatchesTags(tags []string) bool {
	for _, want := range f.Tags {
		if !mood.HasTag(tags, want) {
			return false
		}
	}
	return true
}

// MatchesJournal applies every criterion to a journal entry.
func (f *Filter) MatchesJournal(e journal.Entry) bool {
	if f.IsEmpty() {
		return true
	}
	if f.FavoritesOnly && !e.Favorite {
		return false
	}
	if f.Mood != "" && e.Mood != f.Mood {
		return false
	}
	return f.MatchesKeyword(e.Title, e.Content) && f.MatchesTags(e.Tags)
}

// MatchesMood applies the mood, tag and keyword criteria to a mood entry.
func (f *Filter) MatchesMood(e mood.Entry) bool {
	if f.IsEmpty() {
		return true
	}
	if f.Mood != "" && e.Mood != f.Mood {
		return false
	}
	return f.MatchesKeyword(e.Note) && f.MatchesTags(e.Tags)
}
