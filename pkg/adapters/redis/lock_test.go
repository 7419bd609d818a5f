package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/qpilot/pkg/adapters/redis"
	"github.com/aretw0/qpilot/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.Locker = (*redis.Locker)(nil)

func newLocker(t *testing.T, prefix string) (*redis.Locker, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })
	return redis.NewLocker(client, prefix), mr
}

func TestLocker_LockUnlock(t *testing.T) {
	locker, mr := newLocker(t, "")
	ctx := context.Background()
	key := "127.0.0.1:9999"

	// 1. Acquire the lock for the probe address
	unlock, err := locker.Lock(ctx, key, 5*time.Second)
	require.NoError(t, err)
	require.NotNil(t, unlock)

	assert.True(t, mr.Exists("qpilot:lock:127.0.0.1:9999"), "Lock key should be set in Redis")

	// 2. Release it
	err = unlock(ctx)
	assert.NoError(t, err)
	assert.False(t, mr.Exists("qpilot:lock:127.0.0.1:9999"), "Lock key should be removed after unlock")
}

func TestLocker_CustomPrefix(t *testing.T) {
	locker, mr := newLocker(t, "ci42:")

	unlock, err := locker.Lock(context.Background(), "aut", time.Second)
	require.NoError(t, err)
	defer unlock(context.Background())

	assert.True(t, mr.Exists("ci42:lock:aut"))
}

func TestLocker_Contention(t *testing.T) {
	locker, mr := newLocker(t, "")
	ctx := context.Background()
	key := "127.0.0.1:9999"

	// 1. Job 1 takes the application
	unlock1, err := locker.Lock(ctx, key, 5*time.Second)
	require.NoError(t, err)

	// 2. Job 2 blocks until its context gives up
	ctxTimeout, cancel := context.WithTimeout(ctx, 500*time.Millisecond) // Short timeout
	defer cancel()

	start := time.Now()
	_, err = locker.Lock(ctxTimeout, key, 5*time.Second)
	assert.Error(t, err)
	assert.ErrorIs(t, err, redis.ErrLockAcquire)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.WithinDuration(t, start.Add(500*time.Millisecond), time.Now(), 200*time.Millisecond, "Should block until timeout")

	// 3. Job 1 releases, job 2 gets in
	require.NoError(t, unlock1(ctx))

	unlock2, err := locker.Lock(ctx, key, 5*time.Second)
	require.NoError(t, err)
	defer unlock2(ctx)

	assert.True(t, mr.Exists("qpilot:lock:127.0.0.1:9999"))
}

func TestLocker_FirstAttemptIsImmediate(t *testing.T) {
	locker, _ := newLocker(t, "")

	start := time.Now()
	unlock, err := locker.Lock(context.Background(), "aut", time.Second)
	require.NoError(t, err)
	defer unlock(context.Background())

	assert.Less(t, time.Since(start), 80*time.Millisecond, "An uncontended lock should not wait for a poll tick")
}

func TestLocker_UnlockAfterExpiryReportsTheLoss(t *testing.T) {
	locker, mr := newLocker(t, "")
	ctx := context.Background()
	key := "127.0.0.1:9999"

	unlock1, err := locker.Lock(ctx, key, 50*time.Millisecond)
	require.NoError(t, err)

	// The TTL elapses while job 1 is still working.
	mr.FastForward(100 * time.Millisecond)

	// 1. Job 2 walks straight in
	unlock2, err := locker.Lock(ctx, key, 5*time.Second)
	require.NoError(t, err)

	// 2. Job 1's release must not evict job 2
	err = unlock1(ctx)
	assert.ErrorIs(t, err, redis.ErrLockLost)
	assert.True(t, mr.Exists("qpilot:lock:127.0.0.1:9999"), "Job 2 still holds the lock")

	// 3. Job 2 releases its own lock normally
	assert.NoError(t, unlock2(ctx))
}
