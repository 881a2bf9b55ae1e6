package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/revline/internal/engine"
	"github.com/roach88/revline/internal/ir"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added index on revline_history.to_rev
const currentSchemaVersion = 1

// DefaultVersionTable is the marker table name used when none is configured.
const DefaultVersionTable = "revline_version"

// ErrCorruptMarker is returned when the version table holds more than one row.
var ErrCorruptMarker = errors.New("version table holds more than one row")

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Options configures Open.
type Options struct {
	// VersionTable names the marker table. Empty means DefaultVersionTable.
	VersionTable string

	// Logger receives statement-level debug output. Nil discards.
	Logger *slog.Logger

	// ReadOnly opens an existing database without creating the file or
	// applying the schema. Begin fails on a read-only store.
	ReadOnly bool
}

// Store is a live engine.Target over a SQLite database.
type Store struct {
	db       *sql.DB
	table    string
	logger   *slog.Logger
	readOnly bool
}

// ErrReadOnly is returned by Begin on a store opened with Options.ReadOnly.
var ErrReadOnly = errors.New("database opened read-only")

var _ engine.Target = (*Store)(nil)

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas, the bookkeeping schema and the version table.
//
// This function is idempotent - safe to call multiple times.
func Open(path string, opts Options) (*Store, error) {
	table := opts.VersionTable
	if table == "" {
		table = DefaultVersionTable
	}
	if err := ValidateTableName(table); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if opts.ReadOnly {
		return openReadOnly(path, table, logger)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if err := applySchema(db, table); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db, table: table, logger: logger}, nil
}

// openReadOnly opens an existing database file for queries only.
func openReadOnly(path, table string, logger *slog.Logger) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("database %s: %w", path, err)
	}
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(1)
	return &Store{db: db, table: table, logger: logger, readOnly: true}, nil
}

// ValidateTableName rejects names that cannot be used unquoted in SQL.
func ValidateTableName(name string) error {
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid version table name %q", name)
	}
	return nil
}

// VersionTableDDL returns the statement creating the marker table.
func VersionTableDDL(table string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (version_num TEXT NOT NULL PRIMARY KEY)", table)
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// VersionTable returns the marker table name.
func (s *Store) VersionTable() string {
	return s.table
}

// Mode implements engine.Target.
func (s *Store) Mode() engine.Mode {
	return engine.ModeLive
}

// CurrentPosition implements engine.Target. An empty version table is None.
// A read-only store whose database has no version table yet is also None.
func (s *Store) CurrentPosition(ctx context.Context) (string, error) {
	if s.readOnly {
		ok, err := s.hasTable(ctx, s.table)
		if err != nil || !ok {
			return ir.None, err
		}
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT version_num FROM %s", s.table))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", s.table, err)
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return "", fmt.Errorf("scan %s: %w", s.table, err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("read %s: %w", s.table, err)
	}

	switch len(versions) {
	case 0:
		return ir.None, nil
	case 1:
		return versions[0], nil
	}
	return "", fmt.Errorf("%s: %w: %v", s.table, ErrCorruptMarker, versions)
}

// Begin implements engine.Target.
func (s *Store) Begin(ctx context.Context) (engine.Tx, error) {
	if s.readOnly {
		return nil, ErrReadOnly
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlTx{tx: tx, table: s.table, logger: s.logger}, nil
}

func (s *Store) hasTable(ctx context.Context, name string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("inspect schema: %w", err)
	}
	return n > 0, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB, table string) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(VersionTableDDL(table)); err != nil {
		return fmt.Errorf("failed to create %s: %w", table, err)
	}
	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// migrateToV1 indexes history rows by destination revision.
func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_revline_history_to_rev
		ON revline_history(to_rev)
	`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
