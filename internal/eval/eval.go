package eval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/roach88/flagpin/internal/flag"
	"github.com/roach88/flagpin/internal/store"
)

var (
	// ErrFlagNotFound is returned when the store has no live record for the key.
	ErrFlagNotFound = errors.New("unknown flag")
	// ErrWrongType is returned by the typed helpers when the served value
	// does not have the requested type.
	ErrWrongType = errors.New("wrong variation type")
	// ErrTargetingUnsupported is returned for records that are on.
	ErrTargetingUnsupported = errors.New("targeting rules are not supported")
)

// Reason explains why a value was served.
type Reason string

// ReasonOff means the flag was off and its off variation was served.
const ReasonOff Reason = "OFF"

// Detail is the full result of one evaluation.
type Detail struct {
	Value          flag.Value `json:"value"`
	VariationIndex int        `json:"variation_index"`
	Reason         Reason     `json:"reason"`
}

// Reader is the read side of a flag store.
type Reader interface {
	Get(ctx context.Context, key string) (flag.Record, error)
}

// Evaluator resolves flag values from a Reader.
type Evaluator struct {
	store  Reader
	logger *slog.Logger
}

// New creates an evaluator reading from r.
// A nil logger falls back to slog.Default().
func New(r Reader, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{store: r, logger: logger}
}

// Evaluate returns the value served to user for key.
func (e *Evaluator) Evaluate(ctx context.Context, key string, user User) (Detail, error) {
	rec, err := e.store.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return Detail{}, fmt.Errorf("%w: %q", ErrFlagNotFound, key)
	}
	if err != nil {
		return Detail{}, fmt.Errorf("evaluate %q: %w", key, err)
	}

	if rec.On {
		return Detail{}, fmt.Errorf("evaluate %q: %w", key, ErrTargetingUnsupported)
	}

	v, err := rec.OffValue()
	if err != nil {
		return Detail{}, fmt.Errorf("evaluate %q: %w", key, err)
	}

	e.logger.Debug("flag evaluated",
		"key", key,
		"user", user.Key,
		"variation", rec.OffVariation,
		"version", rec.Version,
	)

	return Detail{
		Value:          v,
		VariationIndex: rec.OffVariation,
		Reason:         ReasonOff,
	}, nil
}

// BoolVariation returns the boolean served for key, or def with an error.
func (e *Evaluator) BoolVariation(ctx context.Context, key string, user User, def bool) (bool, error) {
	d, err := e.Evaluate(ctx, key, user)
	if err != nil {
		return def, err
	}
	b, ok := d.Value.(flag.Bool)
	if !ok {
		return def, wrongType(key, "bool", d.Value)
	}
	return bool(b), nil
}

// IntVariation returns the integer served for key, or def with an error.
// Float values are truncated toward zero.
func (e *Evaluator) IntVariation(ctx context.Context, key string, user User, def int) (int, error) {
	d, err := e.Evaluate(ctx, key, user)
	if err != nil {
		return def, err
	}
	switch v := d.Value.(type) {
	case flag.Int:
		return int(v), nil
	case flag.Float:
		return int(math.Trunc(float64(v))), nil
	default:
		return def, wrongType(key, "int", d.Value)
	}
}

// Float64Variation returns the number served for key, or def with an error.
func (e *Evaluator) Float64Variation(ctx context.Context, key string, user User, def float64) (float64, error) {
	d, err := e.Evaluate(ctx, key, user)
	if err != nil {
		return def, err
	}
	switch v := d.Value.(type) {
	case flag.Float:
		return float64(v), nil
	case flag.Int:
		return float64(v), nil
	default:
		return def, wrongType(key, "float", d.Value)
	}
}

// StringVariation returns the string served for key, or def with an error.
func (e *Evaluator) StringVariation(ctx context.Context, key string, user User, def string) (string, error) {
	d, err := e.Evaluate(ctx, key, user)
	if err != nil {
		return def, err
	}
	s, ok := d.Value.(flag.String)
	if !ok {
		return def, wrongType(key, "string", d.Value)
	}
	return string(s), nil
}

// JSONVariation returns whatever value is served for key, or def with an error.
func (e *Evaluator) JSONVariation(ctx context.Context, key string, user User, def flag.Value) (flag.Value, error) {
	d, err := e.Evaluate(ctx, key, user)
	if err != nil {
		return def, err
	}
	return d.Value, nil
}

func wrongType(key, want string, got flag.Value) error {
	return fmt.Errorf("%w: flag %q: want %s, got %s", ErrWrongType, key, want, flag.TypeName(got))
}
