package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a held application lock.
type UnlockFunc func(ctx context.Context) error

// Locker defines the interface for coordinating exclusive access to one
// application under test. CI fleets pointing several jobs at the same probe
// use it to keep whole command sequences from interleaving across processes.
type Locker interface {
	// Lock attempts to acquire the lock for the given key (e.g., the probe
	// address). It blocks until the lock is acquired or the context is
	// canceled. The TTL bounds how long a crashed holder can keep the lock.
	// Returns an UnlockFunc that MUST be called to release it.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
