package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxLineSize bounds a single stored record; journal entries can be long.
const maxLineSize = 4 * 1024 * 1024

// JSONLStore keeps each entity in its own JSON Lines file inside a directory.
type JSONLStore struct {
	mu   sync.Mutex
	dir  string
	opts options
}

// line is one physical line of an entity file. rec is nil for corrupted lines,
// which are kept verbatim when the file is rewritten.
type line struct {
	raw string
	rec Record
}

// NewJSONLStore opens a JSONL store rooted at dir, creating the directory if needed.
func NewJSONLStore(dir string, opts ...Option) (*JSONLStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &JSONLStore{dir: dir, opts: buildOptions(opts)}, nil
}

// Dir returns the data directory.
func (s *JSONLStore) Dir() string {
	return s.dir
}

// Path returns the file holding records of entity, e.g. MoodEntry -> mood_entry.jsonl.
func (s *JSONLStore) Path(entity string) string {
	return filepath.Join(s.dir, fileName(entity))
}

func fileName(entity string) string {
	return SnakeName(entity) + ".jsonl"
}

// SnakeName is the lower snake case form of an entity name, e.g. MoodEntry -> mood_entry.
func SnakeName(entity string) string {
	var b strings.Builder
	for i, r := range entity {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// readLines reads all lines of an entity file.
// Returns no lines if the file doesn't exist (graceful handling).
// Collects a warning for each malformed line including line number, content, and error.
func readLines(path, entity string) ([]line, []ParseWarning, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	defer func() { _ = file.Close() }()

	var (
		lines    []line
		warnings []ParseWarning
	)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		content := scanner.Text()
		if strings.TrimSpace(content) == "" {
			continue
		}

		rec, err := decodeRecord([]byte(content))
		if err == nil && rec.ID() == "" {
			err = fmt.Errorf("missing %q field", FieldID)
		}
		if err != nil {
			warnings = append(warnings, ParseWarning{
				Entity:     entity,
				LineNumber: lineNumber,
				Content:    content,
				Error:      err.Error(),
			})
			lines = append(lines, line{raw: content})
			continue
		}
		lines = append(lines, line{raw: content, rec: rec})
	}

	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return lines, warnings, nil
}

// writeLines rewrites an entity file using the atomic write pattern
// (write to temp file, then rename).
func writeLines(path string, lines []line) error {
	tmpFile := path + ".tmp"
	file, err := os.OpenFile(tmpFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(file)
	for _, l := range lines {
		if _, err := w.WriteString(l.raw + "\n"); err != nil {
			_ = file.Close()
			_ = os.Remove(tmpFile)
			return err
		}
	}
	if err := w.Flush(); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpFile)
		return err
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, path)
}

// appendLine appends a single record to an entity file, creating it if needed.
func appendLine(path string, raw string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	_, err = file.WriteString(raw + "\n")
	return err
}

func (s *JSONLStore) load(ctx context.Context, entity string) ([]line, []ParseWarning, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if err := validateEntity(entity); err != nil {
		return nil, nil, err
	}
	lines, warnings, err := readLines(s.Path(entity), entity)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", entity, err)
	}
	if len(warnings) > 0 {
		s.opts.logger.Warn("skipped corrupted records",
			zap.String("entity", entity),
			zap.Int("count", len(warnings)))
	}
	return lines, warnings, nil
}

// List returns records of entity matching q along with warnings about corrupted lines.
func (s *JSONLStore) List(ctx context.Context, entity string, q Query) (ListResult, error) {
	if err := validateQuery(entity, q); err != nil {
		return ListResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines, warnings, err := s.load(ctx, entity)
	if err != nil {
		return ListResult{}, err
	}

	records := make([]Record, 0, len(lines))
	for _, l := range lines {
		if l.rec != nil {
			records = append(records, l.rec)
		}
	}
	return ListResult{Records: applyQuery(records, q), Warnings: warnings}, nil
}

// Get returns the record with the given id.
func (s *JSONLStore) Get(ctx context.Context, entity, id string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, _, err := s.load(ctx, entity)
	if err != nil {
		return nil, err
	}
	if i := indexOf(lines, id); i >= 0 {
		return lines[i].rec, nil
	}
	return nil, fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
}

// Create appends a new record, assigning id and created_date.
func (s *JSONLStore) Create(ctx context.Context, entity string, fields Record) (Record, error) {
	rec, err := normalize(fields)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", entity, err)
	}
	rec[FieldID] = uuid.NewString()
	rec[FieldCreatedDate] = s.opts.createdDate()

	s.mu.Lock()
	defer s.mu.Unlock()

	lines, _, err := s.load(ctx, entity)
	if err != nil {
		return nil, err
	}
	if err := s.checkConstraints(entity, rec, lines, ""); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", entity, err)
	}
	if err := appendLine(s.Path(entity), string(raw)); err != nil {
		return nil, fmt.Errorf("write %s: %w", entity, err)
	}
	return rec, nil
}

// Update merges patch into the record with the given id and rewrites the file.
func (s *JSONLStore) Update(ctx context.Context, entity, id string, patch Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, _, err := s.load(ctx, entity)
	if err != nil {
		return nil, err
	}
	i := indexOf(lines, id)
	if i < 0 {
		return nil, fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
	}

	updated, err := normalize(lines[i].rec.merge(patch))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", entity, err)
	}
	if err := s.checkConstraints(entity, updated, lines, id); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(updated)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", entity, err)
	}
	lines[i] = line{raw: string(raw), rec: updated}

	if err := writeLines(s.Path(entity), lines); err != nil {
		return nil, fmt.Errorf("write %s: %w", entity, err)
	}
	return updated, nil
}

// Delete removes the record with the given id. A backup of the file is taken first.
func (s *JSONLStore) Delete(ctx context.Context, entity, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, _, err := s.load(ctx, entity)
	if err != nil {
		return err
	}
	i := indexOf(lines, id)
	if i < 0 {
		return fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
	}

	path := s.Path(entity)
	if err := CreateBackup(path); err != nil {
		return fmt.Errorf("backup %s: %w", entity, err)
	}

	kept := append(lines[:i:i], lines[i+1:]...)
	if err := writeLines(path, kept); err != nil {
		return fmt.Errorf("write %s: %w", entity, err)
	}
	return nil
}

// Validate analyzes every entity file and returns health status information.
func (s *JSONLStore) Validate(ctx context.Context) (Health, error) {
	health := Health{Backend: BackendJSONL, Location: s.dir}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entity := range Entities {
		if err := ctx.Err(); err != nil {
			return health, err
		}
		lines, warnings, err := readLines(s.Path(entity), entity)
		if err != nil {
			return health, fmt.Errorf("read %s: %w", entity, err)
		}
		health.Entities = append(health.Entities, EntityHealth{
			Entity:    entity,
			Total:     len(lines),
			Valid:     len(lines) - len(warnings),
			Corrupted: len(warnings),
			Warnings:  warnings,
		})
	}
	return health, nil
}

// Close is a no-op; files are opened per operation.
func (s *JSONLStore) Close() error {
	return nil
}

func (s *JSONLStore) checkConstraints(entity string, rec Record, lines []line, selfID string) error {
	for _, c := range constraintsFor(s.opts.constraints, entity) {
		for _, l := range lines {
			if l.rec == nil || l.rec.ID() == selfID {
				continue
			}
			if c.violates(rec, l.rec) {
				return fmt.Errorf("%w: %s", ErrDuplicate, c)
			}
		}
	}
	return nil
}

func indexOf(lines []line, id string) int {
	for i, l := range lines {
		if l.rec != nil && l.rec.ID() == id {
			return i
		}
	}
	return -1
}
