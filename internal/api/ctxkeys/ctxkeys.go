// Package ctxkeys holds the shared context keys for the API layer. A leaf
// package so middleware and handlers agree on key type and value without an
// import cycle.
package ctxkeys

import "context"

// Key is the named type for all API context keys. context.Value compares
// type and value, so a named type cannot collide with plain string keys.
type Key string

const (
	// UserID is the authenticated user's ID, injected from JWT claims.
	UserID Key = "user_id"

	// Role is the authenticated user's role (employee or manager).
	Role Key = "role"
)

// WithValue adds a ctxkeys.Key value to the context.
func WithValue(ctx context.Context, key Key, value string) context.Context {
	return context.WithValue(ctx, key, value)
}

// Value retrieves a string value stored under the given key, or "" when
// absent.
func Value(ctx context.Context, key Key) string {
	v, _ := ctx.Value(key).(string)
	return v
}
