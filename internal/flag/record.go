package flag

import (
	"errors"
	"fmt"
)

// ErrInvalidOffVariation is returned by Validate when the off variation
// does not index into the variation list.
var ErrInvalidOffVariation = errors.New("off variation out of range")

// Record describes one flag as stored and evaluated.
//
// When On is false every user is served Variations[OffVariation].
// Versions order writes to the same key: stores keep the record with the
// highest version.
type Record struct {
	Key          string  `json:"key"`
	On           bool    `json:"on"`
	OffVariation int     `json:"off_variation"`
	Variations   []Value `json:"variations"`
	Version      int64   `json:"version"`
	Deleted      bool    `json:"deleted,omitempty"` // tombstone written by Delete
}

// NewRecord builds a Record from all of its fields.
// The variations slice is copied; the caller may reuse it.
func NewRecord(key string, on bool, offVariation int, variations []Value, version int64) Record {
	vars := make([]Value, len(variations))
	copy(vars, variations)
	return Record{
		Key:          key,
		On:           on,
		OffVariation: offVariation,
		Variations:   vars,
		Version:      version,
	}
}

// Tombstone builds the placeholder record left behind by a delete.
func Tombstone(key string, version int64) Record {
	return Record{Key: key, Version: version, Deleted: true}
}

// Validate checks that the off variation indexes into Variations.
// Tombstones are always valid.
func (r Record) Validate() error {
	if r.Deleted {
		return nil
	}
	if r.OffVariation < 0 || r.OffVariation >= len(r.Variations) {
		return fmt.Errorf("flag %q: %w: index %d, %d variations",
			r.Key, ErrInvalidOffVariation, r.OffVariation, len(r.Variations))
	}
	return nil
}

// OffValue returns the variation served when the flag is off.
func (r Record) OffValue() (Value, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r.Variations[r.OffVariation], nil
}
