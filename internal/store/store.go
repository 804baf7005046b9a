// Package store persists the notebook state in a SQLite key-value table.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const (
	currentSchemaVersion = 2

	defaultBusyTimeout = 5 * time.Second
)

// Store is the SQLite-backed key-value store holding the notebook state
type Store struct {
	db   *sql.DB
	path string
}

// OpenOptions holds options for opening a database
type OpenOptions struct {
	NetworkOptimized bool          // Apply network-filesystem pragmas
	BusyTimeout      time.Duration // How long a writer waits on another process's lock
}

// Open opens or creates the state database at path with default options
func Open(path string) (*Store, error) {
	return OpenWithOptions(path, nil)
}

// OpenWithOptions opens or creates the state database. Missing parent
// directories are created.
func OpenWithOptions(path string, opts *OpenOptions) (*Store, error) {
	if opts == nil {
		opts = &OpenOptions{}
	}
	busy := opts.BusyTimeout
	if busy <= 0 {
		busy = defaultBusyTimeout
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_timeout=%d&_busy_timeout=%d",
		path, busy.Milliseconds(), busy.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: SQLite has a single writer and the pragmas below are
	// per connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db, path: path}

	if opts.NetworkOptimized {
		if err := s.exec(networkPragmas); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply network pragmas: %w", err)
		}
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return s, nil
}

// networkPragmas trade a little durability for fewer round-trips when the
// database file sits on NFS or SMB
var networkPragmas = []string{
	// NORMAL is safe with WAL: fsync at checkpoints only
	"PRAGMA synchronous = NORMAL",
	"PRAGMA temp_store = MEMORY",
	// negative = KiB
	"PRAGMA cache_size = -16000",
	// only takes effect before the first table is created
	"PRAGMA page_size = 8192",
}

func (s *Store) exec(statements []string) error {
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute %s: %w", stmt, err)
		}
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// SQLiteVersion returns the SQLite library version, or "" if unavailable
func SQLiteVersion() string {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return ""
	}
	defer db.Close()

	var version string
	if err := db.QueryRow("SELECT sqlite_version()").Scan(&version); err != nil {
		return ""
	}
	return version
}

// CheckIntegrity runs PRAGMA integrity_check on the database
func (s *Store) CheckIntegrity() error {
	var result string
	if err := s.db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check query failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}

// SchemaVersion returns the applied schema version
func (s *Store) SchemaVersion() (int, error) {
	return s.getSchemaVersion()
}

// migrate brings the schema up to currentSchemaVersion in one transaction
func (s *Store) migrate() error {
	version, err := s.getSchemaVersion()
	if err != nil {
		return err
	}
	if version >= currentSchemaVersion {
		return nil
	}

	return s.Transaction(func(tx *sql.Tx) error {
		steps := []struct {
			version int
			ddl     string
		}{
			{1, schemaV1},
			{2, schemaV2},
		}
		for _, step := range steps {
			if version >= step.version {
				continue
			}
			if _, err := tx.Exec(step.ddl); err != nil {
				return fmt.Errorf("failed to apply schema v%d: %w", step.version, err)
			}
			if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", step.version); err != nil {
				return fmt.Errorf("failed to set schema version: %w", err)
			}
		}
		return nil
	})
}

// getSchemaVersion returns 0 for a fresh database
func (s *Store) getSchemaVersion() (int, error) {
	var exists int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&exists)
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, nil
	}

	var version int
	err = s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

// Transaction executes fn within a transaction, committing if it succeeds
func (s *Store) Transaction(fn func(*sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
