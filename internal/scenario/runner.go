package scenario

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/flagpin/internal/eval"
	"github.com/roach88/flagpin/internal/flag"
	"github.com/roach88/flagpin/internal/override"
	"github.com/roach88/flagpin/internal/store"
	"github.com/roach88/flagpin/internal/testutil"
)

// sampleSize is the number of users checked by an expectation without users.
const sampleSize = 8

// Trace event types.
const (
	EventWrite  = "write"
	EventDelete = "delete"
	EventEval   = "eval"
)

// TraceEvent records one applied step or checked expectation.
type TraceEvent struct {
	Type string `json:"type"`
	Op   string `json:"op,omitempty"`
	Key  string `json:"key"`

	// Version is the version written by a write or delete.
	Version int64 `json:"version,omitempty"`

	// OffVariation and Variations are the stored record after a write.
	OffVariation int          `json:"off_variation"`
	Variations   []flag.Value `json:"variations,omitempty"`

	// Value and Variation are what the first evaluated user was served.
	// Users is how many users were evaluated.
	Value     flag.Value `json:"value,omitempty"`
	Variation int        `json:"variation"`
	Users     int        `json:"users,omitempty"`
	Missing   bool       `json:"missing,omitempty"`
}

// Result is the outcome of running a scenario.
type Result struct {
	// Pass is true when every expectation held.
	Pass bool `json:"pass"`

	// Trace lists applied steps then checked expectations, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors holds one message per failed expectation.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result with an empty trace.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failed expectation.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

// Run applies the scenario to a fresh in-memory SQLite store and checks its
// expectations. Setup failures are returned as errors; failed expectations
// are reported in the Result.
func Run(ctx context.Context, sc *Scenario) (*Result, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.Open(":memory:", store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ov := override.New(st, override.WithLogger(logger))
	result := NewResult()

	trace, err := Apply(ctx, ov, sc.Steps)
	result.Trace = append(result.Trace, trace...)
	if err != nil {
		return result, err
	}

	ev := eval.New(ov, logger)
	for i, exp := range sc.Expect {
		event, err := check(ctx, ev, exp, result)
		if err != nil {
			return result, fmt.Errorf("expect[%d]: %w", i, err)
		}
		result.Trace = append(result.Trace, event)
	}

	return result, nil
}

// Apply runs steps against st in order and returns one trace event per
// applied step. It stops at the first failing step.
func Apply(ctx context.Context, st *override.Store, steps []Step) ([]TraceEvent, error) {
	trace := make([]TraceEvent, 0, len(steps))
	for i, step := range steps {
		event, err := applyStep(ctx, st, step)
		if err != nil {
			return trace, fmt.Errorf("steps[%d] %s %q: %w", i, step.Op, step.Key, err)
		}
		trace = append(trace, event)
	}
	return trace, nil
}

func applyStep(ctx context.Context, st *override.Store, step Step) (TraceEvent, error) {
	v, err := stepValue(step)
	if err != nil {
		return TraceEvent{}, err
	}

	if step.Op == OpDelete {
		version := st.Sequencer().Next()
		if err := st.Delete(ctx, step.Key, version); err != nil {
			return TraceEvent{}, err
		}
		return TraceEvent{Type: EventDelete, Op: step.Op, Key: step.Key, Version: version}, nil
	}

	switch step.Op {
	case OpSetBoolean:
		err = st.SetBooleanValue(ctx, step.Key, bool(v.(flag.Bool)))
	case OpSetFeatureTrue:
		err = st.SetFeatureTrue(ctx, step.Key)
	case OpSetFeatureFalse:
		err = st.SetFeatureFalse(ctx, step.Key)
	case OpSetInteger:
		err = st.SetIntegerValue(ctx, step.Key, int64(v.(flag.Int)))
	case OpSetDouble:
		var f float64
		switch n := v.(type) {
		case flag.Int:
			f = float64(n)
		case flag.Float:
			f = float64(n)
		}
		err = st.SetDoubleValue(ctx, step.Key, f)
	case OpSetString:
		err = st.SetStringValue(ctx, step.Key, string(v.(flag.String)))
	case OpSetJSON:
		err = st.SetJSONValue(ctx, step.Key, v)
	}
	if err != nil {
		return TraceEvent{}, err
	}

	rec, err := st.Get(ctx, step.Key)
	if err != nil {
		return TraceEvent{}, fmt.Errorf("read back: %w", err)
	}
	return TraceEvent{
		Type:         EventWrite,
		Op:           step.Op,
		Key:          step.Key,
		Version:      rec.Version,
		OffVariation: rec.OffVariation,
		Variations:   rec.Variations,
	}, nil
}

// check evaluates exp for its users, adding an error to result for every
// mismatch. Only store failures are returned.
func check(ctx context.Context, ev *eval.Evaluator, exp Expectation, result *Result) (TraceEvent, error) {
	users := sampleUsers(exp.Users)
	event := TraceEvent{Type: EventEval, Key: exp.Key, Users: len(users)}

	var want flag.Value
	if !exp.Missing {
		v, err := flag.ValueOf(exp.Value)
		if err != nil {
			return event, err
		}
		want = v
	}

	for i, u := range users {
		d, err := ev.Evaluate(ctx, exp.Key, u)
		if errors.Is(err, eval.ErrFlagNotFound) {
			if i == 0 {
				event.Missing = true
			}
			if !exp.Missing {
				result.AddError(fmt.Sprintf("%s: user %q: flag not found", exp.Key, u.Key))
			}
			continue
		}
		if err != nil {
			return event, err
		}

		if i == 0 {
			event.Value = d.Value
			event.Variation = d.VariationIndex
		}
		switch {
		case exp.Missing:
			result.AddError(fmt.Sprintf("%s: user %q: expected missing flag, got %s", exp.Key, u.Key, describe(d.Value)))
		case !flag.Equal(want, d.Value):
			result.AddError(fmt.Sprintf("%s: user %q: expected %s, got %s", exp.Key, u.Key, describe(want), describe(d.Value)))
		}
	}

	return event, nil
}

func sampleUsers(keys []string) []eval.User {
	if len(keys) == 0 {
		return testutil.SampleUsers(sampleSize)
	}
	users := make([]eval.User, len(keys))
	for i, k := range keys {
		users[i] = eval.NewUser(k)
	}
	return users
}

func describe(v flag.Value) string {
	b, err := flag.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
