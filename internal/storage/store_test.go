package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var fixedNow = time.Date(2024, time.March, 4, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// forEachStore runs fn against every backend that works without external services.
func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Helper()

	t.Run("jsonl", func(t *testing.T) {
		s, err := NewJSONLStore(t.TempDir(), WithClock(fixedClock))
		if err != nil {
			t.Fatalf("NewJSONLStore() error = %v", err)
		}
		t.Cleanup(func() { _ = s.Close() })
		fn(t, s)
	})

	t.Run("sqlite", func(t *testing.T) {
		s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "haven.db"), WithClock(fixedClock))
		if err != nil {
			t.Fatalf("NewSQLiteStore() error = %v", err)
		}
		t.Cleanup(func() { _ = s.Close() })
		fn(t, s)
	})
}

func mustCreate(t *testing.T, s Store, entity string, fields Record) Record {
	t.Helper()
	rec, err := s.Create(context.Background(), entity, fields)
	if err != nil {
		t.Fatalf("Create(%s) error = %v", entity, err)
	}
	return rec
}

func TestStore_CreateAssignsIdentity(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		rec := mustCreate(t, s, EntityJournal, Record{"title": "Morning", "content": "calm"})

		if rec.ID() == "" {
			t.Error("expected id to be assigned")
		}
		if got := rec.String(FieldCreatedDate); got != "2024-03-04T09:30:00Z" {
			t.Errorf("created_date = %q, want 2024-03-04T09:30:00Z", got)
		}

		got, err := s.Get(context.Background(), EntityJournal, rec.ID())
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if diff := cmp.Diff(rec, got); diff != "" {
			t.Errorf("Get() mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestStore_CreateIgnoresCallerIdentity(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		rec := mustCreate(t, s, EntityJournal, Record{FieldID: "mine", FieldCreatedDate: "1999-01-01", "title": "x"})
		if rec.ID() == "mine" {
			t.Error("caller-supplied id should be replaced")
		}
		if rec.String(FieldCreatedDate) == "1999-01-01" {
			t.Error("caller-supplied created_date should be replaced")
		}
	})
}

func TestStore_ListFilterOrderLimit(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for _, f := range []Record{
			{"entry_date": "2024-03-01", "mood_score": 3, FieldCreatedBy: "a@example.com"},
			{"entry_date": "2024-03-04", "mood_score": 4, FieldCreatedBy: "a@example.com"},
			{"entry_date": "2024-03-03", "mood_score": 5, FieldCreatedBy: "a@example.com"},
			{"entry_date": "2024-03-02", "mood_score": 1, FieldCreatedBy: "b@example.com"},
		} {
			mustCreate(t, s, EntityMood, f)
		}

		tests := []struct {
			name  string
			query Query
			want  []string
		}{
			{"insertion order", Query{}, []string{"2024-03-01", "2024-03-04", "2024-03-03", "2024-03-02"}},
			{"ascending", Query{OrderBy: "entry_date"}, []string{"2024-03-01", "2024-03-02", "2024-03-03", "2024-03-04"}},
			{"descending with limit", Query{OrderBy: "-entry_date", Limit: 2}, []string{"2024-03-04", "2024-03-03"}},
			{"owner filter", Query{Filter: map[string]any{FieldCreatedBy: "a@example.com"}, OrderBy: "-entry_date"},
				[]string{"2024-03-04", "2024-03-03", "2024-03-01"}},
			{"numeric filter", Query{Filter: map[string]any{"mood_score": 5}}, []string{"2024-03-03"}},
			{"no match", Query{Filter: map[string]any{FieldCreatedBy: "nobody"}}, []string{}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				result, err := s.List(ctx, EntityMood, tt.query)
				if err != nil {
					t.Fatalf("List() error = %v", err)
				}
				got := make([]string, 0, len(result.Records))
				for _, r := range result.Records {
					got = append(got, r.String("entry_date"))
				}
				if diff := cmp.Diff(tt.want, got); diff != "" {
					t.Errorf("List() dates mismatch (-want +got):\n%s", diff)
				}
			})
		}
	})
}

func TestStore_ListRejectsInvalidNames(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		queries := []struct {
			entity string
			q      Query
		}{
			{"Mood Entry", Query{}},
			{EntityMood, Query{OrderBy: "-entry_date'); DROP TABLE records; --"}},
			{EntityMood, Query{Filter: map[string]any{"Entry-Date": "x"}}},
		}
		for _, tc := range queries {
			if _, err := s.List(ctx, tc.entity, tc.q); !errors.Is(err, ErrInvalidField) {
				t.Errorf("List(%q, %+v) error = %v, want ErrInvalidField", tc.entity, tc.q, err)
			}
		}
	})
}

func TestStore_MoodEntryUniquePerOwnerAndDay(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		mustCreate(t, s, EntityMood, Record{"entry_date": "2024-03-04", "mood": "good", "mood_score": 4, FieldCreatedBy: "a@example.com"})

		_, err := s.Create(ctx, EntityMood, Record{"entry_date": "2024-03-04", "mood": "rough", "mood_score": 1, FieldCreatedBy: "a@example.com"})
		if !errors.Is(err, ErrDuplicate) {
			t.Fatalf("second check-in error = %v, want ErrDuplicate", err)
		}

		// Other owners and other days are fine.
		mustCreate(t, s, EntityMood, Record{"entry_date": "2024-03-04", "mood": "okay", "mood_score": 3, FieldCreatedBy: "b@example.com"})
		other := mustCreate(t, s, EntityMood, Record{"entry_date": "2024-03-05", "mood": "okay", "mood_score": 3, FieldCreatedBy: "a@example.com"})

		// Moving an entry onto an occupied day is rejected too.
		if _, err := s.Update(ctx, EntityMood, other.ID(), Record{"entry_date": "2024-03-04"}); !errors.Is(err, ErrDuplicate) {
			t.Errorf("Update onto occupied day error = %v, want ErrDuplicate", err)
		}
	})
}

func TestStore_UpdateMergesPatch(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		rec := mustCreate(t, s, EntityPost, Record{"content": "hello", "likes_count": 0})

		updated, err := s.Update(ctx, EntityPost, rec.ID(), Record{"likes_count": 1, FieldID: "hijack"})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if n, _ := updated.Int("likes_count"); n != 1 {
			t.Errorf("likes_count = %d, want 1", n)
		}
		if updated.String("content") != "hello" {
			t.Errorf("content = %q, want untouched", updated.String("content"))
		}
		if updated.ID() != rec.ID() {
			t.Errorf("id changed to %q", updated.ID())
		}

		got, err := s.Get(ctx, EntityPost, rec.ID())
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if n, _ := got.Int("likes_count"); n != 1 {
			t.Errorf("stored likes_count = %d, want 1", n)
		}
	})
}

func TestStore_DeleteAndNotFound(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		a := mustCreate(t, s, EntityJournal, Record{"title": "a"})
		b := mustCreate(t, s, EntityJournal, Record{"title": "b"})

		if err := s.Delete(ctx, EntityJournal, a.ID()); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, err := s.Get(ctx, EntityJournal, a.ID()); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get(deleted) error = %v, want ErrNotFound", err)
		}
		if err := s.Delete(ctx, EntityJournal, a.ID()); !errors.Is(err, ErrNotFound) {
			t.Errorf("Delete(deleted) error = %v, want ErrNotFound", err)
		}
		if _, err := s.Update(ctx, EntityJournal, "missing", Record{"title": "x"}); !errors.Is(err, ErrNotFound) {
			t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
		}

		result, err := s.List(ctx, EntityJournal, Query{})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(result.Records) != 1 || result.Records[0].ID() != b.ID() {
			t.Errorf("remaining records = %v, want only %s", result.Records, b.ID())
		}
	})
}

func TestStore_ValidateEmpty(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		health, err := s.Validate(context.Background())
		if err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if len(health.Entities) != len(Entities) {
			t.Errorf("Validate() reported %d entities, want %d", len(health.Entities), len(Entities))
		}
		if health.Corrupted() != 0 {
			t.Errorf("Corrupted() = %d, want 0", health.Corrupted())
		}
	})
}

func TestStore_CanceledContext(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := s.List(ctx, EntityMood, Query{}); err == nil {
			t.Error("List() with canceled context should fail")
		}
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(ctx, Config{Backend: "", Path: dir})
	if err != nil {
		t.Fatalf("Open(jsonl) error = %v", err)
	}
	if _, ok := s.(*JSONLStore); !ok {
		t.Errorf("Open(\"\") = %T, want *JSONLStore", s)
	}

	s, err = Open(ctx, Config{Backend: "SQLite", Path: filepath.Join(dir, "haven.db")})
	if err != nil {
		t.Fatalf("Open(sqlite) error = %v", err)
	}
	if _, ok := s.(*SQLStore); !ok {
		t.Errorf("Open(sqlite) = %T, want *SQLStore", s)
	}
	_ = s.Close()

	for _, cfg := range []Config{
		{Backend: "jsonl"},
		{Backend: "sqlite"},
		{Backend: "postgres"},
		{Backend: "mongo", Path: dir},
	} {
		if _, err := Open(ctx, cfg); err == nil {
			t.Errorf("Open(%+v) expected error", cfg)
		}
	}
}
