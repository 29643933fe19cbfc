package handlers

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xolan/haven/internal/cli"
	"github.com/xolan/haven/internal/mood"
	"github.com/xolan/haven/internal/storage"
	"github.com/xolan/haven/internal/timeutil"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatYAML = "yaml"
)

var entityAliases = map[string]string{
	"mood":        storage.EntityMood,
	"moods":       storage.EntityMood,
	"journal":     storage.EntityJournal,
	"profile":     storage.EntityProfile,
	"post":        storage.EntityPost,
	"posts":       storage.EntityPost,
	"interaction": storage.EntityInteraction,
	"comments":    storage.EntityInteraction,
}

// ResolveEntity maps a user supplied entity name or alias to a stored entity.
// Entity names match case-insensitively, with or without underscores.
func ResolveEntity(name string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return storage.EntityMood, true
	}
	if entity, ok := entityAliases[key]; ok {
		return entity, true
	}
	key = strings.ReplaceAll(key, "_", "")
	for _, entity := range storage.Entities {
		if strings.ToLower(entity) == key {
			return entity, true
		}
	}
	return "", false
}

// entityNames lists the stored entities the way users type them.
func entityNames() string {
	names := make([]string, len(storage.Entities))
	for i, entity := range storage.Entities {
		names[i] = storage.SnakeName(entity)
	}
	return strings.Join(names, ", ")
}

// ExportOptions selects what Export writes.
type ExportOptions struct {
	Format string
	Entity string
	From   string
	To     string
	Last   int
}

type exportMetadata struct {
	ExportTimestamp time.Time      `json:"export_timestamp" yaml:"export_timestamp"`
	Entity          string         `json:"entity" yaml:"entity"`
	TotalRecords    int            `json:"total_records" yaml:"total_records"`
	FilterCriteria  map[string]any `json:"filter_criteria" yaml:"filter_criteria"`
}

type exportOutput struct {
	Metadata exportMetadata   `json:"metadata" yaml:"metadata"`
	Records  []storage.Record `json:"records" yaml:"records"`
}

// Export writes the current user's records of one entity to stdout
func Export(ctx context.Context, deps *cli.Deps, opts ExportOptions) {
	entity, ok := ResolveEntity(opts.Entity)
	if !ok {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: Unknown entity '%s'\n", opts.Entity)
		_, _ = fmt.Fprintf(deps.Stderr, "Hint: Use one of %s\n", entityNames())
		deps.Exit(1)
		return
	}
	if opts.Last > 0 && (opts.From != "" || opts.To != "") {
		_, _ = fmt.Fprintln(deps.Stderr, "Error: Cannot use --last with --from or --to")
		_, _ = fmt.Fprintln(deps.Stderr, "Use either --last N or --from/--to, not both")
		deps.Exit(1)
		return
	}

	loc := deps.Config.Location()
	today := timeutil.DateOf(deps.Today().In(loc))
	start, end, err := timeutil.ParseDateRangeFlags(opts.From, opts.To, opts.Last, today)
	if err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
		deps.Exit(1)
		return
	}

	var records []storage.Record
	if entity == storage.EntityMood {
		records, err = deps.Services.Mood.Export(ctx)
	} else {
		records, err = deps.Services.Storage.Export(ctx, entity)
	}
	if err != nil {
		_, _ = fmt.Fprintln(deps.Stderr, "Error: Failed to read records from storage")
		_, _ = fmt.Fprintf(deps.Stderr, "Details: %v\n", err)
		deps.Exit(1)
		return
	}

	criteria := map[string]any{}
	if !start.IsZero() || !end.IsZero() {
		filtered := make([]storage.Record, 0, len(records))
		for _, r := range records {
			if d, ok := recordDate(r, entity, loc); ok && timeutil.IsInRange(d, start, end) {
				filtered = append(filtered, r)
			}
		}
		records = filtered
		if opts.Last > 0 {
			criteria["last_days"] = opts.Last
		}
		if !start.IsZero() {
			criteria["from"] = start.String()
		}
		if !end.IsZero() {
			criteria["to"] = end.String()
		}
	}

	out := exportOutput{
		Metadata: exportMetadata{
			ExportTimestamp: deps.Today().UTC(),
			Entity:          entity,
			TotalRecords:    len(records),
			FilterCriteria:  criteria,
		},
		Records: records,
	}
	if out.Records == nil {
		out.Records = []storage.Record{}
	}

	switch strings.ToLower(opts.Format) {
	case FormatJSON:
		encoder := json.NewEncoder(deps.Stdout)
		encoder.SetIndent("", "  ")
		err = encoder.Encode(out)
	case FormatYAML:
		encoder := yaml.NewEncoder(deps.Stdout)
		encoder.SetIndent(2)
		err = encoder.Encode(out)
		if err == nil {
			err = encoder.Close()
		}
	case FormatCSV:
		err = writeCSV(deps.Stdout, records)
	default:
		_, _ = fmt.Fprintf(deps.Stderr, "Error: Unknown export format '%s'\n", opts.Format)
		_, _ = fmt.Fprintln(deps.Stderr, "Hint: Use json, csv or yaml")
		deps.Exit(1)
		return
	}
	if err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: Failed to encode %s output\n", opts.Format)
		_, _ = fmt.Fprintf(deps.Stderr, "Details: %v\n", err)
		deps.Exit(1)
	}
}

// recordDate is the date a record is filtered by: the check-in date for moods,
// the creation date otherwise.
func recordDate(r storage.Record, entity string, loc *time.Location) (timeutil.Date, bool) {
	if entity == storage.EntityMood {
		d, err := timeutil.ParseDate(r.String(mood.FieldEntryDate))
		return d, err == nil
	}
	t, err := time.Parse(time.RFC3339, r.String(storage.FieldCreatedDate))
	if err != nil {
		return timeutil.Date{}, false
	}
	return timeutil.DateOf(t.In(loc)), true
}

// csvLeading columns come first; the rest follow alphabetically.
var csvLeading = []string{storage.FieldID, storage.FieldCreatedDate, storage.FieldCreatedBy}

func writeCSV(w io.Writer, records []storage.Record) error {
	seen := map[string]bool{}
	var rest []string
	for _, r := range records {
		for k := range r {
			if !seen[k] && !slices.Contains(csvLeading, k) {
				seen[k] = true
				rest = append(rest, k)
			}
		}
	}
	sort.Strings(rest)
	header := append(append([]string{}, csvLeading...), rest...)

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range records {
		row := make([]string, len(header))
		for i, k := range header {
			row[i] = csvValue(r[k])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		parts := make([]string, len(v))
		for i, p := range v {
			parts[i] = csvValue(p)
		}
		return strings.Join(parts, ";")
	case []string:
		return strings.Join(v, ";")
	default:
		return fmt.Sprint(v)
	}
}

// ValidateStorage reports the health of every stored entity
func ValidateStorage(ctx context.Context, deps *cli.Deps) {
	health, err := deps.Services.Storage.Validate(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
		deps.Exit(1)
		return
	}

	_, _ = fmt.Fprintf(deps.Stdout, "Storage: %s (%s)\n", health.Location, health.Backend)
	_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("=", 50))
	_, _ = fmt.Fprintf(deps.Stdout, "%-18s %7s %7s %10s\n", "Entity", "Total", "Valid", "Corrupted")
	for _, e := range health.Entities {
		_, _ = fmt.Fprintf(deps.Stdout, "%-18s %7d %7d %10d\n", storage.SnakeName(e.Entity), e.Total, e.Valid, e.Corrupted)
	}

	if health.Corrupted() > 0 {
		_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("=", 50))
		_, _ = fmt.Fprintln(deps.Stdout, "Corrupted records:")
		for _, e := range health.Entities {
			for _, w := range e.Warnings {
				_, _ = fmt.Fprintf(deps.Stdout, "%s\n%s\n", storage.SnakeName(e.Entity), cli.FormatCorruptionWarning(w))
			}
		}
	}

	_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("=", 50))
	if n := health.Corrupted(); n == 0 {
		_, _ = fmt.Fprintln(deps.Stdout, "Status: ✓ Storage is healthy")
	} else {
		_, _ = fmt.Fprintf(deps.Stderr, "Status: ⚠ Storage has %d corrupted %s\n", n, cli.Pluralize("record", n))
	}
}

// RestoreBackup lists the backups of an entity and restores backupStr
// (default 1, the most recent)
func RestoreBackup(deps *cli.Deps, entityName, backupStr string) {
	entity, ok := ResolveEntity(entityName)
	if !ok || entityName == "" {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: Unknown entity '%s'\n", entityName)
		_, _ = fmt.Fprintf(deps.Stderr, "Hint: Use one of %s\n", entityNames())
		deps.Exit(1)
		return
	}

	backups, err := deps.Services.Storage.Backups(entity)
	if err != nil {
		if errors.Is(err, storage.ErrBackupsUnsupported) {
			_, _ = fmt.Fprintln(deps.Stderr, "Error: Backups are only kept by the jsonl storage backend")
			_, _ = fmt.Fprintln(deps.Stderr, "Hint: Use your database's own backup tooling for sqlite or postgres")
		} else {
			_, _ = fmt.Fprintf(deps.Stderr, "Error: Failed to list backups: %v\n", err)
		}
		deps.Exit(1)
		return
	}
	if len(backups) == 0 {
		_, _ = fmt.Fprintf(deps.Stdout, "No backups available for %s\n", storage.SnakeName(entity))
		deps.Exit(1)
		return
	}

	_, _ = fmt.Fprintln(deps.Stdout, "Available backups:")
	for _, b := range backups {
		if b.Number == 1 {
			_, _ = fmt.Fprintf(deps.Stdout, "  %d: %s (most recent)\n", b.Number, b.Path)
		} else {
			_, _ = fmt.Fprintf(deps.Stdout, "  %d: %s\n", b.Number, b.Path)
		}
	}
	_, _ = fmt.Fprintln(deps.Stdout)

	n := 1
	if backupStr != "" {
		n, err = strconv.Atoi(backupStr)
		if err != nil {
			_, _ = fmt.Fprintf(deps.Stderr, "Error: Invalid backup number '%s'\n", backupStr)
			deps.Exit(1)
			return
		}
		if n < 1 || n > storage.MaxBackupCount {
			_, _ = fmt.Fprintf(deps.Stderr, "Error: Backup number must be between 1 and %d (got %d)\n", storage.MaxBackupCount, n)
			deps.Exit(1)
			return
		}
	}
	if !slices.ContainsFunc(backups, func(b storage.BackupInfo) bool { return b.Number == n }) {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: Backup %d does not exist\n", n)
		deps.Exit(1)
		return
	}

	if err := deps.Services.Storage.Restore(entity, n); err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: Failed to restore backup: %v\n", err)
		deps.Exit(1)
		return
	}
	_, _ = fmt.Fprintf(deps.Stdout, "Successfully restored %s from backup %d\n", storage.SnakeName(entity), n)
}
