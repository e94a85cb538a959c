package store

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/roach88/flagpin/internal/flag"
)

// createTestSQLite creates a new file-backed SQLite store for testing.
func createTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// boolRecord builds a two-variation boolean record serving value.
func boolRecord(key string, value bool, version int64) flag.Record {
	off := 1
	if value {
		off = 0
	}
	return flag.NewRecord(key, false, off, []flag.Value{flag.Bool(true), flag.Bool(false)}, version)
}

// valueRecord builds a single-variation record serving v.
func valueRecord(key string, v flag.Value, version int64) flag.Record {
	return flag.NewRecord(key, false, 0, []flag.Value{v}, version)
}

// verifyPragma checks that a pragma is set to the expected value.
func (s *SQLite) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
