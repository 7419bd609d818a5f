// Package redis provides the distributed application lock.
//
// CI fleets sometimes point several jobs at one long lived application
// under test. The Locker keeps whole command sequences from interleaving
// across processes: a job holds the lock for the probe address while it
// drives the UI, the others wait their turn.
package redis

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/qpilot/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

var (
	// ErrLockAcquire is returned when the lock cannot be acquired before
	// the context ends.
	ErrLockAcquire = errors.New("failed to acquire application lock")

	// ErrLockLost is returned by an unlock whose lock already expired.
	// The exclusion was broken at some point: the TTL was shorter than
	// the sequence it guarded.
	ErrLockLost = errors.New("application lock was lost before release")
)

// releaseScript deletes the lock key only while it still holds our
// token, so a stalled holder cannot release a successor's lock.
var releaseScript = backend.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

const pollInterval = 100 * time.Millisecond

// Locker implements ports.Locker using Redis SET NX PX.
type Locker struct {
	client *backend.Client
	prefix string
}

// NewLocker creates a Redis backed locker. An empty prefix defaults to
// "qpilot:".
func NewLocker(client *backend.Client, prefix string) *Locker {
	if prefix == "" {
		prefix = "qpilot:"
	}
	return &Locker{
		client: client,
		prefix: prefix,
	}
}

// Lock blocks until the lock for key is acquired or ctx ends. The first
// attempt happens immediately, then once per poll interval. The TTL
// bounds how long a crashed holder can wedge the rest of the fleet.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey := l.prefix + "lock:" + key
	token := rand.Text()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w for %q: %w", ErrLockAcquire, key, ctx.Err())
			}
			return nil, fmt.Errorf("acquiring lock %q: %w", key, err)
		}
		if ok {
			return l.unlockFunc(lockKey, key, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w for %q: %w", ErrLockAcquire, key, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *Locker) unlockFunc(lockKey, key, token string) ports.UnlockFunc {
	return func(ctx context.Context) error {
		n, err := releaseScript.Run(ctx, l.client, []string{lockKey}, token).Int()
		if err != nil {
			return fmt.Errorf("releasing lock %q: %w", key, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %q", ErrLockLost, key)
		}
		return nil
	}
}
