package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/flagpin/internal/flag"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added index on flags.version for MaxVersion
const currentSchemaVersion = 1

// SQLite is a Store persisted in a SQLite database.
type SQLite struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ Store = (*SQLite)(nil)

// Open creates or opens a SQLite database at the given path.
// Use ":memory:" for a private in-memory database.
// Applies required pragmas and migrations automatically.
//
// This function is idempotent - safe to call multiple times.
func Open(path string, opts ...Option) (*SQLite, error) {
	o := buildOptions(opts)

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, and ":memory:" databases
	// are per-connection, so keep exactly one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLite{db: db, logger: o.logger}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Init replaces all records in one transaction and marks the store initialized.
func (s *SQLite) Init(ctx context.Context, records map[string]flag.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, `DELETE FROM flags`); err != nil {
		return fmt.Errorf("init: clear flags: %w", err)
	}

	for key, rec := range records {
		if err := rec.Validate(); err != nil {
			return fmt.Errorf("init: %w", err)
		}
		vars, err := marshalVariations(rec.Variations)
		if err != nil {
			return fmt.Errorf("init: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO flags (flag_key, enabled, off_variation, variations, version, deleted)
			VALUES (?, ?, ?, ?, ?, ?)
		`, key, rec.On, rec.OffVariation, vars, rec.Version, rec.Deleted)
		if err != nil {
			return fmt.Errorf("init: insert %q: %w", key, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO store_meta (name, value) VALUES ('initialized', '1')
		ON CONFLICT(name) DO UPDATE SET value = excluded.value
	`)
	if err != nil {
		return fmt.Errorf("init: mark initialized: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init: commit: %w", err)
	}
	return nil
}

// Initialized reports whether Init has completed on this database,
// including in an earlier process.
func (s *SQLite) Initialized(ctx context.Context) bool {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM store_meta WHERE name = 'initialized'
	`).Scan(&count)
	if err != nil {
		s.logger.Warn("initialized check failed", "error", err)
		return false
	}
	return count > 0
}

// Get returns the live record for key.
func (s *SQLite) Get(ctx context.Context, key string) (flag.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT flag_key, enabled, off_variation, variations, version, deleted
		FROM flags
		WHERE flag_key = ?
	`, key)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return flag.Record{}, ErrNotFound
	}
	if err != nil {
		return flag.Record{}, fmt.Errorf("get %q: %w", key, err)
	}
	if rec.Deleted {
		return flag.Record{}, ErrNotFound
	}
	return rec, nil
}

// All returns every live record.
func (s *SQLite) All(ctx context.Context) (map[string]flag.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT flag_key, enabled, off_variation, variations, version, deleted
		FROM flags
		WHERE deleted = 0
		ORDER BY flag_key COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query flags: %w", err)
	}
	defer rows.Close()

	result := make(map[string]flag.Record)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result[rec.Key] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flags: %w", err)
	}
	return result, nil
}

// Upsert inserts or replaces the row for key.
// The conflict clause only updates when the incoming version is higher,
// so a stale write leaves the row untouched and returns nil.
func (s *SQLite) Upsert(ctx context.Context, key string, rec flag.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	vars, err := marshalVariations(rec.Variations)
	if err != nil {
		return fmt.Errorf("upsert %q: %w", key, err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO flags (flag_key, enabled, off_variation, variations, version, deleted)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(flag_key) DO UPDATE SET
			enabled       = excluded.enabled,
			off_variation = excluded.off_variation,
			variations    = excluded.variations,
			version       = excluded.version,
			deleted       = excluded.deleted
		WHERE excluded.version > flags.version
	`, key, rec.On, rec.OffVariation, vars, rec.Version, rec.Deleted)
	if err != nil {
		return fmt.Errorf("upsert %q: %w", key, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("upsert %q: rows affected: %w", key, err)
	}
	if affected == 0 {
		s.logger.Debug("stale upsert ignored", "key", key, "version", rec.Version)
	}
	return nil
}

// Delete writes a tombstone for key at version.
func (s *SQLite) Delete(ctx context.Context, key string, version int64) error {
	return s.Upsert(ctx, key, flag.Tombstone(key, version))
}

// MaxVersion returns the highest version stored, tombstones included,
// or 0 for an empty database.
func (s *SQLite) MaxVersion(ctx context.Context) (int64, error) {
	var v int64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM flags`).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("max version: %w", err)
	}
	return v, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (flag.Record, error) {
	var (
		rec      flag.Record
		varsJSON string
	)
	if err := row.Scan(&rec.Key, &rec.On, &rec.OffVariation, &varsJSON, &rec.Version, &rec.Deleted); err != nil {
		return flag.Record{}, err
	}

	vars, err := unmarshalVariations(varsJSON)
	if err != nil {
		return flag.Record{}, fmt.Errorf("flag %q: %w", rec.Key, err)
	}
	rec.Variations = vars
	return rec, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
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

func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_flags_version ON flags(version)`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}
