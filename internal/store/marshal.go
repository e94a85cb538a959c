package store

import (
	"fmt"

	"github.com/roach88/flagpin/internal/flag"
)

// marshalVariations converts a variation list to canonical JSON TEXT for storage.
func marshalVariations(vars []flag.Value) (string, error) {
	data, err := flag.MarshalCanonical(flag.Array(vars))
	if err != nil {
		return "", fmt.Errorf("marshal variations: %w", err)
	}
	return string(data), nil
}

// unmarshalVariations parses stored JSON TEXT back into a variation list.
// Integral floats written with a ".0" suffix decode as flag.Float.
func unmarshalVariations(data string) ([]flag.Value, error) {
	if data == "" || data == "[]" {
		return []flag.Value{}, nil
	}
	v, err := flag.UnmarshalValue([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal variations: %w", err)
	}
	arr, ok := v.(flag.Array)
	if !ok {
		return nil, fmt.Errorf("unmarshal variations: expected array, got %s", flag.TypeName(v))
	}
	return []flag.Value(arr), nil
}
