package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// dialect captures the SQL differences between the supported databases.
// Field names are interpolated into expressions only after validateField.
type dialect struct {
	name       string
	driver     string
	goose      string
	migrations string

	// field returns an expression comparable with the value bound by arg.
	field func(name string) string
	// arg converts a filter value into the bind parameter for field.
	arg func(v any) (any, error)
	// order returns an expression to sort by.
	order func(name string) string
	// eq is the placeholder compared against field.
	eq string
	// body is the placeholder used to bind the JSON body.
	body string
	// unique reports whether err is a unique constraint violation.
	unique func(err error) bool
	// rebind converts ? placeholders to the driver's syntax.
	rebind func(query string) string
}

var sqliteDialect = dialect{
	name:       BackendSQLite,
	driver:     "sqlite",
	goose:      "sqlite3",
	migrations: "migrations/sqlite",
	field: func(name string) string {
		return fmt.Sprintf("json_extract(body, '$.%s')", name)
	},
	arg:   sqliteArg,
	order: func(name string) string { return fmt.Sprintf("json_extract(body, '$.%s')", name) },
	eq:    "?",
	body:  "?",
	unique: func(err error) bool {
		var se *sqlite.Error
		if !errors.As(err, &se) {
			return false
		}
		code := se.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code&0xff == sqlite3.SQLITE_CONSTRAINT
	},
	rebind: func(query string) string { return query },
}

var postgresDialect = dialect{
	name:       BackendPostgres,
	driver:     "pgx",
	goose:      "postgres",
	migrations: "migrations/postgres",
	field: func(name string) string {
		return fmt.Sprintf("body->'%s'", name)
	},
	arg: func(v any) (any, error) {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	},
	order: func(name string) string { return fmt.Sprintf("body->'%s'", name) },
	eq:    "CAST(? AS jsonb)",
	body:  "CAST(? AS jsonb)",
	unique: func(err error) bool {
		var pgErr *pgconn.PgError
		return errors.As(err, &pgErr) && pgErr.Code == "23505"
	},
	rebind: rebindDollar,
}

// sqliteArg binds scalars directly so json_extract comparisons work on
// numbers and booleans; composite values compare by their JSON text.
func sqliteArg(v any) (any, error) {
	switch x := v.(type) {
	case string, float64, float32, int, int64, int32, bool:
		return x, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	}
}

// filterClause builds "expr = ?" or "expr IS NULL" for one filter field.
func (d dialect) filterClause(name string, v any) (string, []any, error) {
	if err := validateField(name); err != nil {
		return "", nil, err
	}
	if v == nil {
		return d.field(name) + " IS NULL", nil, nil
	}
	a, err := d.arg(v)
	if err != nil {
		return "", nil, err
	}
	return d.field(name) + " = " + d.eq, []any{a}, nil
}

func rebindDollar(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
