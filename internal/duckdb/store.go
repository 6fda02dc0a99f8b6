package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/tinytelemetry/logdash/internal/duckdb/migrate"
)

// DefaultQueryTimeout bounds every statement issued through a Store.
const DefaultQueryTimeout = 5 * time.Second

// Store is a DuckDB file holding logdash's local state. Writes are
// serialized; reads may run concurrently.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string

	QueryTimeout time.Duration
}

// NewStore opens dbPath, creating it and its directory when missing, and
// brings the schema up to date. An empty dbPath opens an in-memory database.
// An optional queryTimeout overrides DefaultQueryTimeout.
func NewStore(dbPath string, queryTimeout ...time.Duration) (*Store, error) {
	if dbPath != "" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("duckdb: create dir: %w", err)
		}
	}

	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("duckdb: open %q: %w", dbPath, err)
	}

	s := &Store{db: db, dbPath: dbPath, QueryTimeout: DefaultQueryTimeout}
	if len(queryTimeout) > 0 && queryTimeout[0] > 0 {
		s.QueryTimeout = queryTimeout[0]
	}

	ctx, cancel := s.queryContext()
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("duckdb: ping %q: %w", dbPath, err)
	}
	if err := migrate.NewRunner(db).RunContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("duckdb: migrate: %w", err)
	}
	return s, nil
}

// queryContext returns a context bounded by the store's query timeout.
func (s *Store) queryContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.QueryTimeout)
}

// Path returns the database file path, empty for in-memory stores.
func (s *Store) Path() string { return s.dbPath }

// DB exposes the connection pool for tests and ad-hoc queries.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }
