package store

import (
	"context"
	"errors"
	"log/slog"

	"github.com/roach88/flagpin/internal/flag"
)

// ErrNotFound is returned by Get when a key has no live record.
var ErrNotFound = errors.New("flag not found")

// Store is a keyed container of flag records.
// Implementations must be safe for concurrent use.
type Store interface {
	// Init replaces the whole data set and marks the store initialized.
	Init(ctx context.Context, records map[string]flag.Record) error

	// Initialized reports whether Init has completed at least once.
	Initialized(ctx context.Context) bool

	// Get returns the live record for key, or ErrNotFound.
	Get(ctx context.Context, key string) (flag.Record, error)

	// All returns every live record keyed by flag key.
	// Returns an empty map (not nil) when the store holds none.
	All(ctx context.Context) (map[string]flag.Record, error)

	// Upsert inserts or replaces the record for key.
	// The write is ignored when the stored version is not lower than rec.Version.
	Upsert(ctx context.Context, key string, rec flag.Record) error

	// Delete replaces the record for key with a tombstone at version.
	Delete(ctx context.Context, key string, version int64) error

	// Close releases any resources held by the store.
	Close() error
}

// Option configures a store.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for store diagnostics.
// Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}
