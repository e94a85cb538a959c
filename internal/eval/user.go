package eval

import (
	"github.com/google/uuid"

	"github.com/roach88/flagpin/internal/flag"
)

// User is the evaluation context.
type User struct {
	Key        string
	Anonymous  bool
	Attributes map[string]flag.Value
}

// NewUser creates a user with the given key and no attributes.
func NewUser(key string) User {
	return User{Key: key}
}

// AnonymousUser creates a user with a fresh time-sortable UUIDv7 key.
//
// Panics if UUID generation fails (should never happen in practice).
func AnonymousUser() User {
	return User{
		Key:       uuid.Must(uuid.NewV7()).String(),
		Anonymous: true,
	}
}
