package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

// dbtx is the subset of database/sql shared by *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLStore keeps all entities in a single records table with a JSON body per row.
type SQLStore struct {
	db       *sql.DB
	d        dialect
	location string
	opts     options
}

// NewSQLiteStore opens (creating if needed) a SQLite database file and migrates it.
func NewSQLiteStore(ctx context.Context, path string, opts ...Option) (*SQLStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open(sqliteDialect.driver, path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	// A single connection serializes writers and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	return newSQLStore(ctx, db, sqliteDialect, path, opts)
}

// NewPostgresStore connects to Postgres through the pgx stdlib driver and migrates the schema.
func NewPostgresStore(ctx context.Context, dsn string, opts ...Option) (*SQLStore, error) {
	db, err := sql.Open(postgresDialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return newSQLStore(ctx, db, postgresDialect, redactDSN(dsn), opts)
}

func newSQLStore(ctx context.Context, db *sql.DB, d dialect, location string, opts []Option) (*SQLStore, error) {
	s := &SQLStore{db: db, d: d, location: location, opts: buildOptions(opts)}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(s.d.goose); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, s.db, s.d.migrations); err != nil {
		return err
	}

	version, err := goose.GetDBVersionContext(ctx, s.db)
	if err == nil {
		s.opts.logger.Debug("schema migrated",
			zap.String("backend", s.d.name),
			zap.Int64("version", version))
	}
	return nil
}

// DB exposes the underlying connection pool.
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) q(query string) string {
	return s.d.rebind(query)
}

// withTx runs fn in a transaction, committing on success and rolling back on error or panic.
func (s *SQLStore) withTx(ctx context.Context, fn func(tx dbtx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(tx)
}

// List returns records of entity matching q.
func (s *SQLStore) List(ctx context.Context, entity string, q Query) (ListResult, error) {
	if err := validateQuery(entity, q); err != nil {
		return ListResult{}, err
	}

	var (
		where = []string{"entity = ?"}
		args  = []any{entity}
	)
	for _, k := range sortedKeys(q.Filter) {
		clause, a, err := s.d.filterClause(k, q.Filter[k])
		if err != nil {
			return ListResult{}, err
		}
		where = append(where, clause)
		args = append(args, a...)
	}

	query := "SELECT seq, body FROM records WHERE " + strings.Join(where, " AND ")
	field, desc, _ := parseOrderBy(q.OrderBy)
	if field != "" {
		dir := "ASC"
		if desc {
			dir = "DESC"
		}
		query += fmt.Sprintf(" ORDER BY %s %s, seq", s.d.order(field), dir)
	} else {
		query += " ORDER BY seq"
	}
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
	}

	result, err := s.scan(ctx, s.db, entity, s.q(query), args...)
	if err != nil {
		return ListResult{}, fmt.Errorf("failed to select %s: %w", entity, err)
	}
	if len(result.Warnings) > 0 {
		s.opts.logger.Warn("skipped corrupted records",
			zap.String("entity", entity),
			zap.Int("count", len(result.Warnings)))
	}
	return result, nil
}

func (s *SQLStore) scan(ctx context.Context, db dbtx, entity, query string, args ...any) (ListResult, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return ListResult{}, err
	}
	defer func() { _ = rows.Close() }()

	result := ListResult{Records: []Record{}}
	for rows.Next() {
		var (
			seq  int64
			body string
		)
		if err := rows.Scan(&seq, &body); err != nil {
			return ListResult{}, err
		}
		rec, err := decodeRecord([]byte(body))
		if err != nil {
			result.Warnings = append(result.Warnings, ParseWarning{
				Entity:     entity,
				LineNumber: int(seq),
				Content:    body,
				Error:      err.Error(),
			})
			continue
		}
		result.Records = append(result.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return ListResult{}, err
	}
	return result, nil
}

// Get returns the record with the given id.
func (s *SQLStore) Get(ctx context.Context, entity, id string) (Record, error) {
	if err := validateEntity(entity); err != nil {
		return nil, err
	}
	return s.get(ctx, s.db, entity, id)
}

func (s *SQLStore) get(ctx context.Context, db dbtx, entity, id string) (Record, error) {
	var body string
	err := db.QueryRowContext(ctx, s.q("SELECT body FROM records WHERE entity = ? AND id = ?"), entity, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select %s: %w", entity, err)
	}
	rec, err := decodeRecord([]byte(body))
	if err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", entity, id, err)
	}
	return rec, nil
}

// Create inserts a new record, assigning id and created_date.
func (s *SQLStore) Create(ctx context.Context, entity string, fields Record) (Record, error) {
	if err := validateEntity(entity); err != nil {
		return nil, err
	}
	rec, err := normalize(fields)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", entity, err)
	}
	rec[FieldID] = uuid.NewString()
	rec[FieldCreatedDate] = s.opts.createdDate()

	body, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", entity, err)
	}

	err = s.withTx(ctx, func(tx dbtx) error {
		if err := s.checkConstraints(ctx, tx, entity, rec, ""); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			s.q("INSERT INTO records (id, entity, body, created_date) VALUES (?, ?, "+s.d.body+", ?)"),
			rec.ID(), entity, string(body), rec.String(FieldCreatedDate))
		return err
	})
	if err != nil {
		return nil, s.mapError(entity, "insert", err)
	}
	return rec, nil
}

// Update merges patch into the record with the given id.
func (s *SQLStore) Update(ctx context.Context, entity, id string, patch Record) (Record, error) {
	if err := validateEntity(entity); err != nil {
		return nil, err
	}

	var updated Record
	err := s.withTx(ctx, func(tx dbtx) error {
		current, err := s.get(ctx, tx, entity, id)
		if err != nil {
			return err
		}
		updated, err = normalize(current.merge(patch))
		if err != nil {
			return err
		}
		if err := s.checkConstraints(ctx, tx, entity, updated, id); err != nil {
			return err
		}
		body, err := json.Marshal(updated)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			s.q("UPDATE records SET body = "+s.d.body+" WHERE entity = ? AND id = ?"),
			string(body), entity, id)
		return err
	})
	if err != nil {
		return nil, s.mapError(entity, "update", err)
	}
	return updated, nil
}

// Delete removes the record with the given id. It expects exactly one row to be affected.
func (s *SQLStore) Delete(ctx context.Context, entity, id string) error {
	if err := validateEntity(entity); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, s.q("DELETE FROM records WHERE entity = ? AND id = ?"), entity, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", entity, err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
	}
	return nil
}

// Validate decodes every stored body and reports rows that cannot be read.
func (s *SQLStore) Validate(ctx context.Context) (Health, error) {
	health := Health{Backend: s.d.name, Location: s.location}
	for _, entity := range Entities {
		result, err := s.scan(ctx, s.db, entity, s.q("SELECT seq, body FROM records WHERE entity = ? ORDER BY seq"), entity)
		if err != nil {
			return health, fmt.Errorf("failed to select %s: %w", entity, err)
		}
		health.Entities = append(health.Entities, EntityHealth{
			Entity:    entity,
			Total:     len(result.Records) + len(result.Warnings),
			Valid:     len(result.Records),
			Corrupted: len(result.Warnings),
			Warnings:  result.Warnings,
		})
	}
	return health, nil
}

// checkConstraints looks for another record colliding with rec. The unique
// indexes created by the migrations back this up for concurrent writers.
func (s *SQLStore) checkConstraints(ctx context.Context, tx dbtx, entity string, rec Record, selfID string) error {
	for _, c := range constraintsFor(s.opts.constraints, entity) {
		filter := make(map[string]any, len(c.Fields))
		complete := true
		for _, f := range c.Fields {
			v, ok := rec[f]
			if !ok || v == nil {
				complete = false
				break
			}
			filter[f] = v
		}
		if !complete {
			continue
		}

		where := []string{"entity = ?", "id <> ?"}
		args := []any{entity, selfID}
		for _, k := range sortedKeys(filter) {
			clause, a, err := s.d.filterClause(k, filter[k])
			if err != nil {
				return err
			}
			where = append(where, clause)
			args = append(args, a...)
		}

		var id string
		err := tx.QueryRowContext(ctx,
			s.q("SELECT id FROM records WHERE "+strings.Join(where, " AND ")+" LIMIT 1"), args...).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: %s", ErrDuplicate, c)
	}
	return nil
}

func (s *SQLStore) mapError(entity, op string, err error) error {
	switch {
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidField):
		return err
	case s.d.unique(err):
		return fmt.Errorf("%w: %s", ErrDuplicate, entity)
	default:
		return fmt.Errorf("failed to %s %s: %w", op, entity, err)
	}
}

// redactDSN hides the password of a postgres URL for display.
func redactDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	userinfo := dsn[scheme+3 : at]
	if colon := strings.Index(userinfo, ":"); colon >= 0 {
		return dsn[:scheme+3] + userinfo[:colon] + ":***" + dsn[at:]
	}
	return dsn
}
