package widgets

import (
	"time"

	"github.com/aretw0/qpilot/pkg/wait"
)

// Option tunes lookups and the activation wait that precedes
// interactions. The zero configuration retries for wait.DefaultTimeout
// and waits for the target to report itself enabled and visible.
type Option func(*settle)

type settle struct {
	timeout    time.Duration
	interval   time.Duration
	waitActive bool
}

func newSettle(opts []Option) settle {
	s := settle{
		timeout:    wait.DefaultTimeout,
		interval:   wait.DefaultInterval,
		waitActive: true,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithTimeout bounds the whole operation, lookup retries included.
func WithTimeout(d time.Duration) Option {
	return func(s *settle) { s.timeout = d }
}

// WithInterval sets the pause between retries and settle polls.
func WithInterval(d time.Duration) Option {
	return func(s *settle) { s.interval = d }
}

// WithoutActivationWait proceeds immediately, even when the target still
// reports itself disabled or hidden.
func WithoutActivationWait() Option {
	return func(s *settle) { s.waitActive = false }
}
