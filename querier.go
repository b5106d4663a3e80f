package memcache

import (
	"context"
	"time"
)

// Querier is the high-level key/value interface implemented by Client.
// It hides the meta protocol details behind simple cache operations,
// making it easy to swap implementations or wrap the client (e.g. with
// tracing or an in-process cache tier).
type Querier interface {
	// Get retrieves the value for a key. Returns ErrCacheMiss if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value for a key. A ttl of NoTTL means no expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key. Returns ErrCacheMiss if not found.
	Delete(ctx context.Context, key string) error

	// Increment increases a counter by delta and returns the new value,
	// creating the counter at delta if it doesn't exist.
	Increment(ctx context.Context, key string, delta uint64) (uint64, error)

	// Decrement decreases a counter by delta and returns the new value.
	// The counter stops at 0 and is created at 0 if it doesn't exist.
	Decrement(ctx context.Context, key string, delta uint64) (uint64, error)
}
