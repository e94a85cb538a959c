package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/flagpin/internal/flag"
	"github.com/roach88/flagpin/internal/store"
)

func TestRecordingStore_RecordsAndForwards(t *testing.T) {
	ctx := context.Background()
	rs := NewRecordingStore(nil)
	rec := flag.NewRecord("k", false, 0, []flag.Value{flag.Int(1)}, 1)

	require.NoError(t, rs.Upsert(ctx, "k", rec))
	got, err := rs.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	_, err = rs.All(ctx)
	require.NoError(t, err)

	calls := rs.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "Upsert", calls[0].Method)
	assert.Equal(t, rec, calls[0].Record)
	assert.Equal(t, "Get", calls[1].Method)
	assert.Equal(t, "All", calls[2].Method)
	assert.Len(t, rs.Upserts(), 1)
}

func TestRecordingStore_UpsertErr(t *testing.T) {
	ctx := context.Background()
	inner := store.NewMemory()
	rs := NewRecordingStore(inner)
	boom := errors.New("boom")
	rs.UpsertErr = boom

	err := rs.Upsert(ctx, "k", flag.NewRecord("k", false, 0, []flag.Value{flag.Int(1)}, 1))
	assert.Same(t, boom, err)

	_, err = inner.Get(ctx, "k")
	assert.ErrorIs(t, err, store.ErrNotFound, "failed upsert must not reach the wrapped store")
}
