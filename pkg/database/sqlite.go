package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteDB is the embedded store used for local runs and tests
type SQLiteDB struct {
	DB *sql.DB
}

// NewSQLiteDB opens (or creates) a SQLite database at path and applies the
// schema. Use ":memory:" for a throwaway database.
//
// The handle is limited to one connection: SQLite allows a single writer,
// and an in-memory database lives only as long as its connection.
func NewSQLiteDB(ctx context.Context, path string) (*SQLiteDB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	// The DSN pragma covers new connections; this covers drivers that ignore it.
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	sdb := &SQLiteDB{DB: db}
	if err := sdb.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return sdb, nil
}

// EnsureSchema creates the poll tables if they do not exist
func (s *SQLiteDB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range SQLiteSchema {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// Health checks the database handle
func (s *SQLiteDB) Health(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// Close closes the database
func (s *SQLiteDB) Close() error {
	return s.DB.Close()
}
