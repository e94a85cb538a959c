package scenario

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/flagpin/internal/flag"
)

// Snapshot renders a trace as canonical JSON followed by a newline.
// This is the content of golden files.
func Snapshot(name string, trace []TraceEvent) ([]byte, error) {
	events := make(flag.Array, len(trace))
	for i, e := range trace {
		events[i] = e.canonical()
	}

	b, err := flag.MarshalCanonical(flag.Object{
		"scenario": flag.String(name),
		"trace":    events,
	})
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// canonical keeps only the fields meaningful for the event's type.
func (e TraceEvent) canonical() flag.Object {
	obj := flag.Object{
		"type": flag.String(e.Type),
		"key":  flag.String(e.Key),
	}
	switch e.Type {
	case EventWrite:
		obj["op"] = flag.String(e.Op)
		obj["version"] = flag.Int(e.Version)
		obj["off_variation"] = flag.Int(e.OffVariation)
		obj["variations"] = flag.Array(e.Variations)
	case EventDelete:
		obj["version"] = flag.Int(e.Version)
	case EventEval:
		obj["users"] = flag.Int(e.Users)
		if e.Missing {
			obj["missing"] = flag.Bool(true)
		} else {
			obj["value"] = e.Value
			obj["variation"] = flag.Int(e.Variation)
		}
	}
	return obj
}

// RunWithGolden runs sc and compares its trace with
// testdata/golden/{sc.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/scenario -update
func RunWithGolden(t *testing.T, sc *Scenario) *Result {
	t.Helper()

	result, err := Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("scenario %s: %v", sc.Name, err)
	}
	AssertGolden(t, sc.Name, result)
	return result
}

// AssertGolden compares an existing result's trace with the golden file for name.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	snap, err := Snapshot(name, result.Trace)
	if err != nil {
		t.Fatalf("snapshot %s: %v", name, err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, snap)
}
