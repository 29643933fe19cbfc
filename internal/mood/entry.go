package mood

import (
	"errors"
	"fmt"
	"time"

	"github.com/xolan/haven/internal/storage"
	"github.com/xolan/haven/internal/timeutil"
)

// Record field names.
const (
	FieldMood      = "mood"
	FieldScore     = "mood_score"
	FieldEntryDate = "entry_date"
	FieldNote      = "note"
	FieldTags      = "tags"
)

var (
	ErrInvalidDate  = errors.New("invalid entry_date")
	ErrInvalidScore = errors.New("invalid mood_score")
	ErrMoodMismatch = errors.New("mood does not match mood_score")
)

// Entry is a validated daily check-in.
type Entry struct {
	ID          string
	Mood        Mood
	Score       int
	Date        timeutil.Date
	Note        string
	Tags        []string
	CreatedDate time.Time
	CreatedBy   string
}

// New builds an entry for a check-in on date.
func New(m Mood, date timeutil.Date, note string, tags []string) Entry {
	return Entry{
		Mood:  m,
		Score: m.Score(),
		Date:  date,
		Note:  note,
		Tags:  NormalizeTags(tags, SuggestedTags),
	}
}

// FromRecord maps a stored record to an Entry, rejecting malformed dates,
// out-of-range scores and labels that disagree with their score.
func FromRecord(r storage.Record) (Entry, error) {
	raw := r.String(FieldEntryDate)
	date, err := timeutil.ParseDate(raw)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}

	score, ok := r.Int(FieldScore)
	if !ok || score < MinScore || score > MaxScore {
		return Entry{}, fmt.Errorf("%w: %v", ErrInvalidScore, r[FieldScore])
	}

	m, _ := FromScore(score)
	if label := r.String(FieldMood); label != "" && Mood(label) != m {
		return Entry{}, fmt.Errorf("%w: %q with score %d", ErrMoodMismatch, label, score)
	}

	e := Entry{
		ID:        r.ID(),
		Mood:      m,
		Score:     score,
		Date:      date,
		Note:      r.String(FieldNote),
		Tags:      r.Strings(FieldTags),
		CreatedBy: r.String(storage.FieldCreatedBy),
	}
	if t, err := time.Parse(time.RFC3339, r.String(storage.FieldCreatedDate)); err == nil {
		e.CreatedDate = t
	}
	return e, nil
}

// Record returns the fields to store for e. The store assigns id and created_date.
func (e Entry) Record() storage.Record {
	r := storage.Record{
		FieldMood:              e.Mood.String(),
		FieldScore:             e.Score,
		FieldEntryDate:         e.Date.String(),
		storage.FieldCreatedBy: e.CreatedBy,
	}
	if e.Note != "" {
		r[FieldNote] = e.Note
	}
	if len(e.Tags) > 0 {
		r[FieldTags] = e.Tags
	}
	return r
}
