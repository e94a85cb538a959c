package testutil

import (
	"context"
	"sync"

	"github.com/roach88/flagpin/internal/flag"
	"github.com/roach88/flagpin/internal/store"
)

// Call records one method call made on a RecordingStore.
type Call struct {
	Method string
	Key    string
	Record flag.Record
}

// RecordingStore wraps a store.Store and records every call made through it.
//
// Setting UpsertErr makes Upsert fail with exactly that error without touching
// the wrapped store, for checking that callers pass store failures through.
//
// Thread-safety: all methods are safe for concurrent use.
type RecordingStore struct {
	store.Store

	mu        sync.Mutex
	calls     []Call
	UpsertErr error
}

// NewRecordingStore wraps inner. A nil inner uses a fresh store.Memory.
func NewRecordingStore(inner store.Store) *RecordingStore {
	if inner == nil {
		inner = store.NewMemory()
	}
	return &RecordingStore{Store: inner}
}

func (r *RecordingStore) record(c Call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}

// Calls returns a copy of the recorded calls in order.
func (r *RecordingStore) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Upserts returns only the recorded Upsert calls.
func (r *RecordingStore) Upserts() []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.Method == "Upsert" {
			out = append(out, c)
		}
	}
	return out
}

// Upsert records the call and forwards it unless UpsertErr is set.
func (r *RecordingStore) Upsert(ctx context.Context, key string, rec flag.Record) error {
	r.record(Call{Method: "Upsert", Key: key, Record: rec})
	if r.UpsertErr != nil {
		return r.UpsertErr
	}
	return r.Store.Upsert(ctx, key, rec)
}

// Get records the call and forwards it.
func (r *RecordingStore) Get(ctx context.Context, key string) (flag.Record, error) {
	r.record(Call{Method: "Get", Key: key})
	return r.Store.Get(ctx, key)
}

// All records the call and forwards it.
func (r *RecordingStore) All(ctx context.Context) (map[string]flag.Record, error) {
	r.record(Call{Method: "All"})
	return r.Store.All(ctx)
}
