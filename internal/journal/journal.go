// Package journal maps journal entries to and from stored records.
package journal

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xolan/haven/internal/mood"
	"github.com/xolan/haven/internal/storage"
)

// Record field names.
const (
	FieldTitle    = "title"
	FieldContent  = "content"
	FieldMood     = "mood"
	FieldTags     = "tags"
	FieldFavorite = "is_favorite"
)

var (
	ErrMissingTitle   = errors.New("title is required")
	ErrMissingContent = errors.New("content is required")
)

// SuggestedTags are offered when writing an entry.
var SuggestedTags = []string{"Reflection", "Gratitude", "Goals", "Anxiety", "Growth", "Memories", "Dreams", "Self-care"}

// Entry is a journal entry.
type Entry struct {
	ID          string
	Title       string
	Content     string
	Mood        mood.Mood // optional
	Tags        []string
	Favorite    bool
	CreatedDate time.Time
	CreatedBy   string
}

// Validate checks the fields a user must fill in.
func (e Entry) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrMissingTitle
	}
	if strings.TrimSpace(e.Content) == "" {
		return ErrMissingContent
	}
	if e.Mood != "" && !e.Mood.Valid() {
		return fmt.Errorf("%w: %q", mood.ErrUnknownMood, e.Mood)
	}
	return nil
}

// FromRecord maps a stored record to an Entry. Unknown moods are dropped rather
// than rejected, since the mood of a journal entry is decorative.
func FromRecord(r storage.Record) Entry {
	e := Entry{
		ID:        r.ID(),
		Title:     r.String(FieldTitle),
		Content:   r.String(FieldContent),
		Tags:      r.Strings(FieldTags),
		Favorite:  r.Bool(FieldFavorite),
		CreatedBy: r.String(storage.FieldCreatedBy),
	}
	if m := mood.Mood(r.String(FieldMood)); m.Valid() {
		e.Mood = m
	}
	if t, err := time.Parse(time.RFC3339, r.String(storage.FieldCreatedDate)); err == nil {
		e.CreatedDate = t
	}
	return e
}

// FromRecords maps a slice of records.
func FromRecords(records []storage.Record) []Entry {
	out := make([]Entry, len(records))
	for i, r := range records {
		out[i] = FromRecord(r)
	}
	return out
}

// Record returns the fields to store for e.
func (e Entry) Record() storage.Record {
	r := storage.Record{
		FieldTitle:             strings.TrimSpace(e.Title),
		FieldContent:           e.Content,
		FieldFavorite:          e.Favorite,
		storage.FieldCreatedBy: e.CreatedBy,
	}
	if e.Mood != "" {
		r[FieldMood] = e.Mood.String()
	}
	if tags := mood.NormalizeTags(e.Tags, SuggestedTags); len(tags) > 0 {
		r[FieldTags] = tags
	}
	return r
}

// Patch describes an edit; nil fields are left unchanged.
type Patch struct {
	Title   *string
	Content *string
	Mood    *mood.Mood
	Tags    *[]string
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.Mood == nil && p.Tags == nil
}

// Apply returns e with the patch applied.
func (p Patch) Apply(e Entry) Entry {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Content != nil {
		e.Content = *p.Content
	}
	if p.Mood != nil {
		e.Mood = *p.Mood
	}
	if p.Tags != nil {
		e.Tags = mood.NormalizeTags(*p.Tags, SuggestedTags)
	}
	return e
}

// Record returns the store patch for p.
func (p Patch) Record() storage.Record {
	r := storage.Record{}
	if p.Title != nil {
		r[FieldTitle] = strings.TrimSpace(*p.Title)
	}
	if p.Content != nil {
		r[FieldContent] = *p.Content
	}
	if p.Mood != nil {
		if *p.Mood == "" {
			r[FieldMood] = nil
		} else {
			r[FieldMood] = p.Mood.String()
		}
	}
	if p.Tags != nil {
		r[FieldTags] = mood.NormalizeTags(*p.Tags, SuggestedTags)
	}
	return r
}

// Excerpt returns the first n runes of the content on one line.
func (e Entry) Excerpt(n int) string {
	s := strings.Join(strings.Fields(e.Content), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
