// Package wait polls conditions against a deadline.
//
// Qt applications settle asynchronously: windows appear, properties flip,
// models fill. The helpers here turn "poll until it holds" into one call
// with the timing contract every wait-style operation in this module
// shares.
package wait

import "time"

// Defaults applied by the convenience wrappers across the module.
const (
	DefaultTimeout  = 10 * time.Second
	DefaultInterval = 100 * time.Millisecond
)

// For polls pred until it reports true or timeout elapses. pred is
// evaluated once immediately, then once per interval. It returns true as
// soon as pred does; an exhausted timeout returns false, never an error,
// and overshoots the deadline by less than one interval. A non-positive
// interval is treated as DefaultInterval.
//
// There is no cancellation beyond the timeout: the only suspension point
// is the sleep between evaluations.
func For(pred func() bool, timeout, interval time.Duration) bool {
	ok, _ := ForFunc(func() (bool, error) {
		return pred(), nil
	}, timeout, interval)
	return ok
}

// ForFunc is For for conditions that can fail: a non-nil error from cond
// stops the loop at once and is returned as-is. Remote failures are never
// converted into a false outcome.
func ForFunc(cond func() (bool, error), timeout, interval time.Duration) (bool, error) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	start := time.Now()
	for {
		ok, err := cond()
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		if time.Since(start) >= timeout {
			return false, nil
		}
		time.Sleep(interval)
	}
}
