// Package store provides SQLite access for csvql: table introspection,
// ad-hoc queries, and transactional table replacement.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // sqlite driver

	"github.com/leapstack-labs/csvql/internal/schema"
)

// Store wraps a SQLite database file.
type Store struct {
	path string
	db   *sql.DB
}

// Open opens (creating if needed) the SQLite database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store: database path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return &Store{path: path, db: db}, nil
}

// NewWithDB wraps an existing database handle. Used in tests to
// inject mock connections.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Path returns the file path backing the store.
func (s *Store) Path() string {
	return s.path
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// internalTablePrefix marks csvql bookkeeping tables that are hidden
// from listings and schema flattening.
const internalTablePrefix = "_csvql_"

// ListTables returns the names of all user tables, sorted.
func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table'
		AND name NOT LIKE 'sqlite_%'
		AND name NOT LIKE ?
		ORDER BY name
	`, internalTablePrefix+"%")
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// TableExists reports whether a table with the given name exists.
func (s *Store) TableExists(ctx context.Context, name string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?
	`, name).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// TableSchema reads the declared schema of a table via PRAGMA
// table_info. A table that does not exist yields an empty schema, not
// an error; an empty result is the no-conflict signal for the loader.
func (s *Store) TableSchema(ctx context.Context, table string) (schema.Schema, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", QuoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("table_info %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var cols schema.Schema
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, declType   string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &declType, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, schema.Column{Name: name, Type: schema.ParseType(declType)})
	}
	return cols, rows.Err()
}

// RowCount returns the number of rows in a table.
func (s *Store) RowCount(ctx context.Context, table string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", QuoteIdent(table))).Scan(&n)
	return n, err
}

// Query executes ad-hoc SQL that may return rows. The caller owns the
// returned rows and must close them.
func (s *Store) Query(ctx context.Context, sqlText string) (*sql.Rows, error) {
	//nolint:rowserrcheck // rows.Err() is checked by the caller after iteration
	return s.db.QueryContext(ctx, sqlText)
}

// Exec executes SQL that returns no rows.
func (s *Store) Exec(ctx context.Context, sqlText string, args ...any) error {
	_, err := s.db.ExecContext(ctx, sqlText, args...)
	return err
}

// QuoteIdent quotes a SQL identifier, escaping embedded quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
