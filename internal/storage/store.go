package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Entity names used by the application.
const (
	EntityMood        = "MoodEntry"
	EntityJournal     = "JournalEntry"
	EntityProfile     = "UserProfile"
	EntityPost        = "CommunityPost"
	EntityInteraction = "PostInteraction"
)

// Fields assigned by every store on create.
const (
	FieldID          = "id"
	FieldCreatedDate = "created_date"
	FieldCreatedBy   = "created_by"
)

var (
	// ErrNotFound is returned when no record with the given id exists.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write would violate a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrInvalidField is returned for entity or field names that cannot be used in a query.
	ErrInvalidField = errors.New("invalid field name")
	// ErrBackupsUnsupported is returned by backends without file backups.
	ErrBackupsUnsupported = errors.New("backups are not supported by this storage backend")
)

var (
	entityNameRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
	fieldNameRe  = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
)

// Query selects records of one entity.
type Query struct {
	// Filter keeps records whose fields equal every given value.
	Filter map[string]any
	// OrderBy names a field to sort by; a leading "-" sorts descending.
	// Empty keeps insertion order.
	OrderBy string
	// Limit caps the number of records returned; 0 means no limit.
	Limit int
}

// ParseWarning represents a warning about a corrupted or malformed record
type ParseWarning struct {
	Entity     string // Entity the record belongs to
	LineNumber int    // Line number in the file (1-indexed) or row sequence for SQL backends
	Content    string // Raw content of the corrupted record
	Error      string // Description of the parsing error
}

// ListResult contains the records returned by a query along with warnings
// about stored records that could not be decoded.
type ListResult struct {
	Records  []Record
	Warnings []ParseWarning
}

// EntityHealth describes the state of the stored records for one entity.
type EntityHealth struct {
	Entity    string
	Total     int
	Valid     int
	Corrupted int
	Warnings  []ParseWarning
}

// Health is the result of validating a store.
type Health struct {
	Backend  string
	Location string
	Entities []EntityHealth
}

// Corrupted returns the number of corrupted records across all entities.
func (h Health) Corrupted() int {
	n := 0
	for _, e := range h.Entities {
		n += e.Corrupted
	}
	return n
}

// Store is a generic entity store holding JSON-like records keyed by field name.
type Store interface {
	// List returns records of entity matching q.
	List(ctx context.Context, entity string, q Query) (ListResult, error)
	// Get returns the record with the given id.
	Get(ctx context.Context, entity, id string) (Record, error)
	// Create stores a new record, assigning its id and created_date.
	Create(ctx context.Context, entity string, fields Record) (Record, error)
	// Update merges patch into the record with the given id.
	Update(ctx context.Context, entity, id string, patch Record) (Record, error)
	// Delete permanently removes the record with the given id.
	Delete(ctx context.Context, entity, id string) error
	// Validate reports the health of the stored data.
	Validate(ctx context.Context) (Health, error)
	// Close releases any resources held by the store.
	Close() error
}

// Constraint declares that records of Entity are unique on the combination of Fields.
type Constraint struct {
	Entity string
	Fields []string
}

// DefaultConstraints are the uniqueness rules every backend enforces.
// A mood entry is unique per owner and calendar date.
var DefaultConstraints = []Constraint{
	{Entity: EntityMood, Fields: []string{FieldCreatedBy, "entry_date"}},
}

// Entities lists the entities known to the application, used for validation and export.
var Entities = []string{EntityMood, EntityJournal, EntityProfile, EntityPost, EntityInteraction}

func constraintsFor(constraints []Constraint, entity string) []Constraint {
	var out []Constraint
	for _, c := range constraints {
		if c.Entity == entity {
			out = append(out, c)
		}
	}
	return out
}

// violates reports whether a and b collide on every field of c.
// A record missing any constrained field never collides.
func (c Constraint) violates(a, b Record) bool {
	for _, f := range c.Fields {
		av, ok := a[f]
		if !ok || av == nil {
			return false
		}
		bv, ok := b[f]
		if !ok || bv == nil {
			return false
		}
		if !valuesEqual(av, bv) {
			return false
		}
	}
	return true
}

func (c Constraint) String() string {
	return fmt.Sprintf("%s(%s)", c.Entity, strings.Join(c.Fields, ", "))
}

func validateEntity(entity string) error {
	if !entityNameRe.MatchString(entity) {
		return fmt.Errorf("%w: entity %q", ErrInvalidField, entity)
	}
	return nil
}

func validateField(field string) error {
	if !fieldNameRe.MatchString(field) {
		return fmt.Errorf("%w: %q", ErrInvalidField, field)
	}
	return nil
}

// parseOrderBy splits "-field" into ("field", true).
func parseOrderBy(orderBy string) (field string, desc bool, err error) {
	if orderBy == "" {
		return "", false, nil
	}
	field = orderBy
	if strings.HasPrefix(orderBy, "-") {
		field, desc = orderBy[1:], true
	}
	if err := validateField(field); err != nil {
		return "", false, err
	}
	return field, desc, nil
}

func validateQuery(entity string, q Query) error {
	if err := validateEntity(entity); err != nil {
		return err
	}
	for k := range q.Filter {
		if err := validateField(k); err != nil {
			return err
		}
	}
	if _, _, err := parseOrderBy(q.OrderBy); err != nil {
		return err
	}
	if q.Limit < 0 {
		return fmt.Errorf("invalid limit %d", q.Limit)
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
