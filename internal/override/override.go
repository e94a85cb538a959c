// Package override forces flags to a fixed value for every user.
//
// Store wraps any store.Store and adds setters that write a complete,
// always-off record for a key. Because the record is off, the evaluator
// serves its off variation to every user, so no targeting rules are needed.
//
//	st := override.New(store.NewMemory())
//	_ = st.SetFeatureTrue(ctx, "new-ui")
//	_ = st.SetJSONValue(ctx, "config-blob", flag.Object{"limit": flag.Int(10)})
//
// Each write is stamped with the next version from the store's Sequencer.
// Issuing the version and applying the upsert are two steps, not one: two
// goroutines overriding the same key may reach the underlying store in either
// order, and a store that keeps the highest version then keeps the later-issued
// write regardless of arrival order.
package override

import (
	"context"
	"log/slog"

	"github.com/roach88/flagpin/internal/flag"
	"github.com/roach88/flagpin/internal/sequence"
	"github.com/roach88/flagpin/internal/store"
)

// trueFalseVariations is the variation list of every boolean override.
// The off variation index selects which of the two is served.
var trueFalseVariations = []flag.Value{flag.Bool(true), flag.Bool(false)}

// Store is a store.Store that can force flag values.
// Reads and deletes go straight to the wrapped store.
type Store struct {
	store.Store
	seq    *sequence.Sequencer
	logger *slog.Logger
}

// Option configures an override Store.
type Option func(*Store)

// WithSequencer sets the version sequencer. Defaults to sequence.New().
func WithSequencer(seq *sequence.Sequencer) Option {
	return func(s *Store) {
		s.seq = seq
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New wraps st.
func New(st store.Store, opts ...Option) *Store {
	s := &Store{Store: st}
	for _, opt := range opts {
		opt(s)
	}
	if s.seq == nil {
		s.seq = sequence.New()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Sequencer returns the sequencer stamping this store's writes.
func (s *Store) Sequencer() *sequence.Sequencer {
	return s.seq
}

// SetBooleanValue forces key to value for all users.
func (s *Store) SetBooleanValue(ctx context.Context, key string, value bool) error {
	off := 1
	if value {
		off = 0
	}
	return s.write(ctx, key, off, trueFalseVariations)
}

// SetFeatureTrue forces key to true for all users, creating the flag if needed.
func (s *Store) SetFeatureTrue(ctx context.Context, key string) error {
	return s.SetBooleanValue(ctx, key, true)
}

// SetFeatureFalse forces key to false for all users, creating the flag if needed.
func (s *Store) SetFeatureFalse(ctx context.Context, key string) error {
	return s.SetBooleanValue(ctx, key, false)
}

// TurnFeatureOn forces key to true.
//
// Deprecated: use SetFeatureTrue.
func (s *Store) TurnFeatureOn(ctx context.Context, key string) error {
	return s.SetFeatureTrue(ctx, key)
}

// TurnFeatureOff forces key to false.
//
// Deprecated: use SetFeatureFalse.
func (s *Store) TurnFeatureOff(ctx context.Context, key string) error {
	return s.SetFeatureFalse(ctx, key)
}

// SetIntegerValue forces key to an integer for all users.
func (s *Store) SetIntegerValue(ctx context.Context, key string, value int64) error {
	return s.SetJSONValue(ctx, key, flag.Int(value))
}

// SetDoubleValue forces key to a float for all users.
func (s *Store) SetDoubleValue(ctx context.Context, key string, value float64) error {
	return s.SetJSONValue(ctx, key, flag.Float(value))
}

// SetStringValue forces key to a string for all users.
func (s *Store) SetStringValue(ctx context.Context, key string, value string) error {
	return s.SetJSONValue(ctx, key, flag.String(value))
}

// SetJSONValue forces key to an arbitrary value for all users.
func (s *Store) SetJSONValue(ctx context.Context, key string, value flag.Value) error {
	return s.write(ctx, key, 0, []flag.Value{value})
}

// write stamps a fresh off record and upserts it.
// Store errors are returned as is.
func (s *Store) write(ctx context.Context, key string, off int, variations []flag.Value) error {
	rec := flag.NewRecord(key, false, off, variations, s.seq.Next())
	if err := s.Store.Upsert(ctx, key, rec); err != nil {
		return err
	}
	s.logger.Debug("override written", "key", key, "version", rec.Version, "off_variation", off)
	return nil
}
