package wait_test

import (
	"errors"
	"testing"
	"time"

	"github.com/aretw0/qpilot/pkg/wait"
	"github.com/stretchr/testify/assert"
)

func TestFor_ImmediateTrue(t *testing.T) {
	start := time.Now()
	ok := wait.For(func() bool { return true }, time.Second, 100*time.Millisecond)

	assert.True(t, ok)
	assert.Less(t, time.Since(start), 50*time.Millisecond, "a true predicate must not sleep at all")
}

func TestFor_ReturnsWithinOneIntervalOfSuccess(t *testing.T) {
	start := time.Now()
	ok := wait.For(func() bool {
		return time.Since(start) >= 300*time.Millisecond
	}, time.Second, 100*time.Millisecond)
	elapsed := time.Since(start)

	assert.True(t, ok)
	assert.GreaterOrEqual(t, elapsed, 300*time.Millisecond)
	assert.Less(t, elapsed, 400*time.Millisecond, "success should be observed on the next poll")
}

func TestFor_TimesOut(t *testing.T) {
	calls := 0
	start := time.Now()
	ok := wait.For(func() bool {
		calls++
		return false
	}, 250*time.Millisecond, 100*time.Millisecond)
	elapsed := time.Since(start)

	assert.False(t, ok)
	assert.GreaterOrEqual(t, elapsed, 250*time.Millisecond)
	assert.Less(t, elapsed, 400*time.Millisecond, "overshoot is bounded by one interval")
	assert.GreaterOrEqual(t, calls, 3, "evaluates immediately and then once per interval")
}

func TestFor_ZeroTimeoutStillEvaluatesOnce(t *testing.T) {
	calls := 0
	ok := wait.For(func() bool {
		calls++
		return true
	}, 0, 100*time.Millisecond)

	assert.True(t, ok)
	assert.Equal(t, 1, calls)
}

func TestFor_NonPositiveIntervalUsesDefault(t *testing.T) {
	calls := 0
	start := time.Now()
	ok := wait.For(func() bool {
		calls++
		return calls >= 2
	}, time.Second, 0)

	assert.True(t, ok)
	assert.Equal(t, 2, calls)
	assert.GreaterOrEqual(t, time.Since(start), wait.DefaultInterval)
}

func TestForFunc_ErrorStopsImmediately(t *testing.T) {
	boom := errors.New("connection reset")
	calls := 0
	start := time.Now()

	ok, err := wait.ForFunc(func() (bool, error) {
		calls++
		return false, boom
	}, time.Second, 100*time.Millisecond)

	assert.False(t, ok)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls, "no retry after a failure")
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestForFunc_TimeoutIsNotAnError(t *testing.T) {
	ok, err := wait.ForFunc(func() (bool, error) {
		return false, nil
	}, 50*time.Millisecond, 20*time.Millisecond)

	assert.False(t, ok)
	assert.NoError(t, err)
}
