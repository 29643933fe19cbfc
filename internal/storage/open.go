package storage

import (
	"context"
	"fmt"
	"strings"
)

// Supported storage backends.
const (
	BackendJSONL    = "jsonl"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Backends lists the valid backend names.
var Backends = []string{BackendJSONL, BackendSQLite, BackendPostgres}

// Config selects and locates a storage backend.
type Config struct {
	Backend string
	// Path is the data directory for jsonl or the database file for sqlite.
	Path string
	// DSN is the postgres connection string.
	DSN string
}

// Open creates the store described by cfg.
func Open(ctx context.Context, cfg Config, opts ...Option) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendJSONL:
		if cfg.Path == "" {
			return nil, fmt.Errorf("jsonl storage requires a data directory")
		}
		return NewJSONLStore(cfg.Path, opts...)
	case BackendSQLite:
		if cfg.Path == "" {
			return nil, fmt.Errorf("sqlite storage requires a database path")
		}
		return NewSQLiteStore(ctx, cfg.Path, opts...)
	case BackendPostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("postgres storage requires a dsn")
		}
		return NewPostgresStore(ctx, cfg.DSN, opts...)
	default:
		return nil, fmt.Errorf("unknown storage backend %q (valid: %s)", cfg.Backend, strings.Join(Backends, ", "))
	}
}
