package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/xolan/haven/internal/journal"
	"github.com/xolan/haven/internal/mood"
	"github.com/xolan/haven/internal/service"
	"github.com/xolan/haven/internal/storage"
)

type exportDoc struct {
	Metadata struct {
		Entity         string         `json:"entity" yaml:"entity"`
		TotalRecords   int            `json:"total_records" yaml:"total_records"`
		FilterCriteria map[string]any `json:"filter_criteria" yaml:"filter_criteria"`
	} `json:"metadata" yaml:"metadata"`
	Records []map[string]any `json:"records" yaml:"records"`
}

func (e *testEnv) seedMoodWeek(t *testing.T) {
	t.Helper()
	e.seedMood(t, "2024-03-01", mood.Low)
	e.seedMood(t, "2024-03-02", mood.Okay, "Sleep", "Work")
	e.seedMood(t, "2024-03-03", mood.Good)

	other := mood.New(mood.Rough, mustDate(t, "2024-03-02"), "", nil)
	other.CreatedBy = "bo@example.com"
	if _, err := e.store.Create(context.Background(), storage.EntityMood, other.Record()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
}

func entryDates(records []map[string]any) []string {
	var dates []string
	for _, r := range records {
		dates = append(dates, fmt.Sprint(r[mood.FieldEntryDate]))
	}
	return dates
}

func TestExport_JSON(t *testing.T) {
	tests := []struct {
		name      string
		opts      ExportOptions
		wantDates []string
		wantCrit  map[string]any
	}{
		{
			name:      "all",
			opts:      ExportOptions{Format: FormatJSON},
			wantDates: []string{"2024-03-01", "2024-03-02", "2024-03-03"},
			wantCrit:  map[string]any{},
		},
		{
			name:      "from",
			opts:      ExportOptions{Format: FormatJSON, Entity: "mood", From: "2024-03-02"},
			wantDates: []string{"2024-03-02", "2024-03-03"},
			wantCrit:  map[string]any{"from": "2024-03-02"},
		},
		{
			name:      "last",
			opts:      ExportOptions{Format: FormatJSON, Last: 3},
			wantDates: []string{"2024-03-02", "2024-03-03"},
			wantCrit:  map[string]any{"last_days": float64(3), "from": "2024-03-02", "to": "2024-03-04"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			e.seedMoodWeek(t)

			Export(context.Background(), e.deps, tt.opts)
			e.requireSuccess(t)

			var doc exportDoc
			if err := json.Unmarshal(e.stdout.Bytes(), &doc); err != nil {
				t.Fatalf("output is not JSON: %v\n%s", err, e.stdout.String())
			}
			if doc.Metadata.Entity != storage.EntityMood {
				t.Errorf("entity = %q, want %q", doc.Metadata.Entity, storage.EntityMood)
			}
			if doc.Metadata.TotalRecords != len(tt.wantDates) {
				t.Errorf("total_records = %d, want %d", doc.Metadata.TotalRecords, len(tt.wantDates))
			}
			if diff := cmp.Diff(tt.wantDates, entryDates(doc.Records)); diff != "" {
				t.Errorf("exported dates mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantCrit, doc.Metadata.FilterCriteria); diff != "" {
				t.Errorf("filter_criteria mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExport_YAML(t *testing.T) {
	e := newTestEnv(t)
	e.seedMoodWeek(t)

	Export(context.Background(), e.deps, ExportOptions{Format: "YAML", To: "2024-03-01"})
	e.requireSuccess(t)

	var doc exportDoc
	if err := yaml.Unmarshal(e.stdout.Bytes(), &doc); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, e.stdout.String())
	}
	if doc.Metadata.TotalRecords != 1 {
		t.Errorf("total_records = %d, want 1", doc.Metadata.TotalRecords)
	}
	if diff := cmp.Diff([]string{"2024-03-01"}, entryDates(doc.Records)); diff != "" {
		t.Errorf("exported dates mismatch (-want +got):\n%s", diff)
	}
}

func TestExport_CSV(t *testing.T) {
	e := newTestEnv(t)
	e.seedMoodWeek(t)

	Export(context.Background(), e.deps, ExportOptions{Format: FormatCSV, From: "2024-03-02", To: "2024-03-02"})
	e.requireSuccess(t)

	lines := strings.Split(strings.TrimSpace(e.stdout.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d CSV lines, want header and one row:\n%s", len(lines), e.stdout.String())
	}
	if want := "id,created_date,created_by,entry_date,mood,mood_score,tags"; lines[0] != want {
		t.Errorf("header = %q, want %q", lines[0], want)
	}
	if !strings.HasSuffix(lines[1], ",ada@example.com,2024-03-02,okay,3,Sleep;Work") {
		t.Errorf("row = %q", lines[1])
	}
}

func TestExport_JournalByCreatedDate(t *testing.T) {
	e := newTestEnv(t)
	e.clock.Set(time.Date(2024, time.February, 20, 12, 0, 0, 0, time.UTC))
	e.seedJournal(t, "Old", "from February")
	e.clock.Set(monday)
	e.seedJournal(t, "New", "from March")

	Export(context.Background(), e.deps, ExportOptions{Format: FormatJSON, Entity: "journal", Last: 7})
	e.requireSuccess(t)

	var doc exportDoc
	if err := json.Unmarshal(e.stdout.Bytes(), &doc); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if doc.Metadata.Entity != storage.EntityJournal || len(doc.Records) != 1 {
		t.Fatalf("metadata = %+v, records = %d", doc.Metadata, len(doc.Records))
	}
	if got := doc.Records[0][journal.FieldTitle]; got != "New" {
		t.Errorf("title = %v, want New", got)
	}
}

func TestExport_Errors(t *testing.T) {
	tests := []struct {
		name    string
		opts    ExportOptions
		wantErr []string
	}{
		{name: "unknown entity", opts: ExportOptions{Format: FormatJSON, Entity: "timer"}, wantErr: []string{"Unknown entity 'timer'", "mood_entry"}},
		{name: "unknown format", opts: ExportOptions{Format: "xml"}, wantErr: []string{"Unknown export format 'xml'"}},
		{name: "last with from", opts: ExportOptions{Format: FormatJSON, Last: 7, From: "2024-03-01"}, wantErr: []string{"Cannot use --last with --from or --to"}},
		{name: "bad date", opts: ExportOptions{Format: FormatJSON, From: "March"}, wantErr: []string{"invalid --from date"}},
		{name: "reversed range", opts: ExportOptions{Format: FormatJSON, From: "2024-03-05", To: "2024-03-01"}, wantErr: []string{"is after --to date"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			Export(context.Background(), e.deps, tt.opts)
			e.requireFailure(t, tt.wantErr...)
		})
	}
}

func TestResolveEntity(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"", storage.EntityMood, true},
		{"Mood", storage.EntityMood, true},
		{"journal_entry", storage.EntityJournal, true},
		{"posts", storage.EntityPost, true},
		{"comments", storage.EntityInteraction, true},
		{"timer", "", false},
	}
	for _, tt := range tests {
		got, ok := ResolveEntity(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ResolveEntity(%q) = %q, %v, want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestValidateStorage(t *testing.T) {
	e := newTestEnv(t)
	e.seedMood(t, "2024-03-03", mood.Good)

	ValidateStorage(context.Background(), e.deps)
	e.requireSuccess(t)
	e.requireStdout(t, "(jsonl)", "mood_entry", "Status: ✓ Storage is healthy")

	path := e.store.(*storage.JSONLStore).Path(storage.EntityMood)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatalf("open mood file: %v", err)
	}
	_, _ = f.WriteString("{not json\n")
	_ = f.Close()

	e.reset()
	ValidateStorage(context.Background(), e.deps)
	e.requireSuccess(t)
	e.requireStdout(t, "Corrupted records:", "{not json")
	if !strings.Contains(e.stderr.String(), "Status: ⚠ Storage has 1 corrupted record") {
		t.Errorf("stderr = %q, want corruption status", e.stderr.String())
	}
}

func TestRestoreBackup(t *testing.T) {
	e := newTestEnv(t)

	RestoreBackup(e.deps, "mood", "")
	e.requireFailure(t)
	e.requireStdout(t, "No backups available for mood_entry")

	e.seedMood(t, "2024-03-02", mood.Okay)
	e.seedMood(t, "2024-03-03", mood.Good)
	if _, err := e.deps.Services.Mood.Delete(context.Background(), 1); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	e.reset()
	RestoreBackup(e.deps, "mood", "7")
	e.requireFailure(t, "Backup number must be between 1 and 3")

	e.reset()
	RestoreBackup(e.deps, "mood", "2")
	e.requireFailure(t, "Backup 2 does not exist")

	e.reset()
	RestoreBackup(e.deps, "mood", "")
	e.requireSuccess(t)
	e.requireStdout(t, "Available backups:", "(most recent)", "Successfully restored mood_entry from backup 1")

	result, err := e.deps.Services.Mood.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(result.Entries) != 2 {
		t.Errorf("entries after restore = %d, want 2", len(result.Entries))
	}
}

// plainStore hides the backup methods of the wrapped store.
type plainStore struct {
	storage.Store
}

func TestRestoreBackup_Errors(t *testing.T) {
	t.Run("entity required", func(t *testing.T) {
		e := newTestEnv(t)
		RestoreBackup(e.deps, "", "")
		e.requireFailure(t, "Unknown entity ''")
	})

	t.Run("backend without backups", func(t *testing.T) {
		e := newTestEnv(t, func(o *service.Options) { o.Store = plainStore{o.Store} })
		RestoreBackup(e.deps, "journal", "")
		e.requireFailure(t, "only kept by the jsonl storage backend")
	})
}
