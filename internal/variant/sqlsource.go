package variant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const variantsSchema = `CREATE TABLE IF NOT EXISTS variants (
	family TEXT PRIMARY KEY,
	name   TEXT NOT NULL
)`

// SQLSource reads variant names from a "variants" table.
type SQLSource struct {
	db *sql.DB
}

// NewSQLSource wraps an open database. The variants table is created if it
// does not exist.
func NewSQLSource(ctx context.Context, db *sql.DB) (*SQLSource, error) {
	if _, err := db.ExecContext(ctx, variantsSchema); err != nil {
		return nil, fmt.Errorf("create variants table: %w", err)
	}
	return &SQLSource{db: db}, nil
}

// OpenSQLite opens or creates a SQLite database at path. The special path
// ":memory:" opens a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLSource, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create variants db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A second connection to ":memory:" would see an empty database.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	src, err := NewSQLSource(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return src, nil
}

// Variant implements Source.
func (s *SQLSource) Variant(ctx context.Context, family string) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM variants WHERE family = ?`, family).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", &NotConfiguredError{Family: family, Source: "variants table"}
	}
	if err != nil {
		return "", fmt.Errorf("query variant for family '%s': %w", family, err)
	}
	return name, nil
}

// Put stores or replaces the variant of a family.
func (s *SQLSource) Put(ctx context.Context, family, name string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO variants (family, name) VALUES (?, ?)
		 ON CONFLICT(family) DO UPDATE SET name = excluded.name`, family, name)
	if err != nil {
		return fmt.Errorf("store variant for family '%s': %w", family, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLSource) Close() error {
	return s.db.Close()
}
