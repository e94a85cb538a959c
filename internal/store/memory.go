package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/flagpin/internal/flag"
)

// Memory is an in-process Store backed by a map.
type Memory struct {
	mu          sync.RWMutex
	items       map[string]flag.Record
	initialized bool
	logger      *slog.Logger
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty, uninitialized in-memory store.
func NewMemory(opts ...Option) *Memory {
	o := buildOptions(opts)
	return &Memory{
		items:  make(map[string]flag.Record),
		logger: o.logger,
	}
}

// Init replaces all records.
func (m *Memory) Init(ctx context.Context, records map[string]flag.Record) error {
	items := make(map[string]flag.Record, len(records))
	for key, rec := range records {
		if err := rec.Validate(); err != nil {
			return err
		}
		items[key] = rec
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = items
	m.initialized = true
	return nil
}

// Initialized reports whether Init has been called.
func (m *Memory) Initialized(ctx context.Context) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized
}

// Get returns the live record for key.
func (m *Memory) Get(ctx context.Context, key string) (flag.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.items[key]
	if !ok || rec.Deleted {
		return flag.Record{}, ErrNotFound
	}
	return rec, nil
}

// All returns every live record.
func (m *Memory) All(ctx context.Context) (map[string]flag.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]flag.Record, len(m.items))
	for key, rec := range m.items {
		if !rec.Deleted {
			result[key] = rec
		}
	}
	return result, nil
}

// Upsert stores rec under key unless a record with an equal or higher
// version is already present.
func (m *Memory) Upsert(ctx context.Context, key string, rec flag.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.items[key]; ok && old.Version >= rec.Version {
		m.logger.Debug("stale upsert ignored",
			"key", key,
			"stored_version", old.Version,
			"version", rec.Version,
		)
		return nil
	}
	m.items[key] = rec
	return nil
}

// Delete writes a tombstone for key at version.
func (m *Memory) Delete(ctx context.Context, key string, version int64) error {
	return m.Upsert(ctx, key, flag.Tombstone(key, version))
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error {
	return nil
}
