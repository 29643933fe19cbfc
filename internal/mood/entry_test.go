package mood

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/xolan/haven/internal/storage"
	"github.com/xolan/haven/internal/timeutil"
)

func TestFromRecord(t *testing.T) {
	r := storage.Record{
		"id":           "m1",
		"mood":         "good",
		"mood_score":   float64(4),
		"entry_date":   "2024-03-04",
		"note":         "long walk",
		"tags":         []any{"Nature", "Exercise"},
		"created_by":   "a@example.com",
		"created_date": "2024-03-04T20:15:00Z",
	}

	got, err := FromRecord(r)
	if err != nil {
		t.Fatalf("FromRecord() error = %v", err)
	}
	want := Entry{
		ID:          "m1",
		Mood:        Good,
		Score:       4,
		Date:        timeutil.NewDate(2024, time.March, 4),
		Note:        "long walk",
		Tags:        []string{"Nature", "Exercise"},
		CreatedDate: time.Date(2024, time.March, 4, 20, 15, 0, 0, time.UTC),
		CreatedBy:   "a@example.com",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FromRecord() mismatch (-want +got):\n%s", diff)
	}
}

func TestFromRecord_DerivesMissingLabel(t *testing.T) {
	got, err := FromRecord(storage.Record{"mood_score": 1, "entry_date": "2024-03-04"})
	if err != nil {
		t.Fatalf("FromRecord() error = %v", err)
	}
	if got.Mood != Rough {
		t.Errorf("Mood = %s, want rough", got.Mood)
	}
}

func TestFromRecord_Rejects(t *testing.T) {
	tests := []struct {
		name string
		r    storage.Record
		want error
	}{
		{"missing date", storage.Record{"mood_score": 3}, ErrInvalidDate},
		{"garbage date", storage.Record{"mood_score": 3, "entry_date": "March 4th"}, ErrInvalidDate},
		{"impossible date", storage.Record{"mood_score": 3, "entry_date": "2023-02-29"}, ErrInvalidDate},
		{"date not a string", storage.Record{"mood_score": 3, "entry_date": 20240304}, ErrInvalidDate},
		{"missing score", storage.Record{"entry_date": "2024-03-04"}, ErrInvalidScore},
		{"score too high", storage.Record{"mood_score": 6, "entry_date": "2024-03-04"}, ErrInvalidScore},
		{"score zero", storage.Record{"mood_score": 0, "entry_date": "2024-03-04"}, ErrInvalidScore},
		{"fractional score", storage.Record{"mood_score": 3.5, "entry_date": "2024-03-04"}, ErrInvalidScore},
		{"score as string", storage.Record{"mood_score": "3", "entry_date": "2024-03-04"}, ErrInvalidScore},
		{"label mismatch", storage.Record{"mood": "amazing", "mood_score": 1, "entry_date": "2024-03-04"}, ErrMoodMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromRecord(tt.r); !errors.Is(err, tt.want) {
				t.Errorf("FromRecord() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEntry_Record(t *testing.T) {
	e := New(Low, timeutil.NewDate(2024, time.March, 4), "", []string{"work", " Work "})
	e.CreatedBy = "a@example.com"

	want := storage.Record{
		"mood":       "low",
		"mood_score": 2,
		"entry_date": "2024-03-04",
		"tags":       []string{"Work"},
		"created_by": "a@example.com",
	}
	if diff := cmp.Diff(want, e.Record()); diff != "" {
		t.Errorf("Record() mismatch (-want +got):\n%s", diff)
	}
}
