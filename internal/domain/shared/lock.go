package shared

import (
	"context"
	"time"
)

// Locker is an advisory, TTL-bounded lock keyed by string.
// Acquire is an atomic test-and-set: exactly one caller wins while the key is held.
type Locker interface {
	// Acquire takes the lock. Returns false if it is already held.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release drops the lock. Releasing an unheld key is not an error.
	Release(ctx context.Context, key string) error
	// IsLocked reports whether the key is currently held.
	IsLocked(ctx context.Context, key string) (bool, error)
}
