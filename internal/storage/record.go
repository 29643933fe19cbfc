package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"sort"
	"strings"
)

var errNullRecord = errors.New("record is not a JSON object")

// Record is a loosely typed stored object keyed by field name.
// Values follow encoding/json decoding: strings, float64, bool, []any, map[string]any and nil.
type Record map[string]any

// ID returns the record id.
func (r Record) ID() string {
	return r.String(FieldID)
}

// String returns the string value of key, or "" when missing or not a string.
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Int returns the integer value of key. Whole-valued floats and json.Number are accepted.
func (r Record) Int(key string) (int, bool) {
	switch v := r[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || math.IsNaN(v) {
			return 0, false
		}
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

// Bool returns the boolean value of key, false when missing.
func (r Record) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

// Strings returns the string elements of a list value, skipping non-strings.
func (r Record) Strings(key string) []string {
	switch v := r[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// merge returns a copy of r with patch applied. Identity fields cannot be patched.
func (r Record) merge(patch Record) Record {
	out := r.Clone()
	for k, v := range patch {
		if k == FieldID || k == FieldCreatedDate {
			continue
		}
		out[k] = v
	}
	return out
}

// decodeRecord parses a JSON object, keeping numbers as float64 like the rest of the store.
func decodeRecord(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errNullRecord
	}
	return rec, nil
}

// normalize round-trips a record through JSON so values have the decoded shape
// regardless of the Go types the caller used.
func normalize(r Record) (Record, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return decodeRecord(data)
}

// valuesEqual compares two field values by their JSON encoding, so 5 and 5.0 are equal.
func valuesEqual(a, b any) bool {
	ab, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}

func matchesFilter(r Record, filter map[string]any) bool {
	for k, want := range filter {
		got, ok := r[k]
		if !ok {
			if want == nil {
				continue
			}
			return false
		}
		if !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

// compareValues orders nil first, then numbers, then strings, then booleans.
func compareValues(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	switch av := a.(type) {
	case float64:
		bv := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case string:
		return strings.Compare(av, b.(string))
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		}
		return 1
	}
	return 0
}

func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case float64:
		return 1
	case string:
		return 2
	case bool:
		return 3
	default:
		return 4
	}
}

// applyQuery filters, sorts and limits records in memory.
// The input order is kept for equal sort keys.
func applyQuery(records []Record, q Query) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if matchesFilter(r, q.Filter) {
			out = append(out, r)
		}
	}

	if field, desc, err := parseOrderBy(q.OrderBy); err == nil && field != "" {
		sort.SliceStable(out, func(i, j int) bool {
			c := compareValues(out[i][field], out[j][field])
			if desc {
				return c > 0
			}
			return c < 0
		})
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}
