package testutil

import (
	"fmt"

	"github.com/roach88/flagpin/internal/eval"
	"github.com/roach88/flagpin/internal/flag"
)

// SampleUsers returns n users for "every user" checks: a handful of fixed
// keys (including the empty key) followed by anonymous users with random keys.
func SampleUsers(n int) []eval.User {
	fixed := []eval.User{
		eval.NewUser(""),
		eval.NewUser("alice"),
		eval.NewUser("bob@example.com"),
		{Key: "carol", Attributes: map[string]flag.Value{"country": flag.String("NZ")}},
	}

	users := make([]eval.User, 0, n)
	for i := 0; i < n; i++ {
		if i < len(fixed) {
			users = append(users, fixed[i])
			continue
		}
		users = append(users, eval.AnonymousUser())
	}
	return users
}

// Keys returns n distinct flag keys with the given prefix.
func Keys(prefix string, n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = fmt.Sprintf("%s-%d", prefix, i)
	}
	return keys
}
