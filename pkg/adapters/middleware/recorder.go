package middleware

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/aretw0/qpilot/pkg/ports"
)

// Exchange is one recorded command round trip.
type Exchange struct {
	Action   string         `json:"action"`
	Args     map[string]any `json:"args,omitempty"`
	Reply    map[string]any `json:"reply,omitempty"`
	Err      string         `json:"err,omitempty"`
	Start    time.Time      `json:"start"`
	Duration time.Duration  `json:"durationNs"`
}

// Recorder keeps the most recent command exchanges in a bounded ring.
// The trace endpoint of the HTTP gateway serves its contents; it is also
// handy when a long interaction sequence fails and the log level was too
// high to see what led up to it.
type Recorder struct {
	mu   sync.Mutex
	ring []Exchange
	next int
	full bool
}

// NewRecorder creates a recorder holding the last n exchanges. n must be
// positive.
func NewRecorder(n int) *Recorder {
	if n <= 0 {
		n = 1
	}
	return &Recorder{ring: make([]Exchange, n)}
}

// Middleware returns the channel wrapper feeding this recorder.
func (r *Recorder) Middleware() Middleware {
	return func(next ports.Channel) ports.Channel {
		return &recordingChannel{next: next, rec: r}
	}
}

// Exchanges returns the recorded exchanges, oldest first.
func (r *Recorder) Exchanges() []Exchange {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.full {
		out := make([]Exchange, r.next)
		copy(out, r.ring[:r.next])
		return out
	}
	out := make([]Exchange, 0, len(r.ring))
	out = append(out, r.ring[r.next:]...)
	out = append(out, r.ring[:r.next]...)
	return out
}

func (r *Recorder) record(e Exchange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ring[r.next] = e
	r.next++
	if r.next == len(r.ring) {
		r.next = 0
		r.full = true
	}
}

type recordingChannel struct {
	next ports.Channel
	rec  *Recorder
}

func (c *recordingChannel) Send(ctx context.Context, action string, args map[string]any) (map[string]any, error) {
	start := time.Now()
	reply, err := c.next.Send(ctx, action, args)

	e := Exchange{
		Action:   action,
		Args:     maps.Clone(args),
		Reply:    maps.Clone(reply),
		Start:    start,
		Duration: time.Since(start),
	}
	if err != nil {
		e.Err = err.Error()
	}
	c.rec.record(e)
	return reply, err
}

func (c *recordingChannel) Close() error {
	return c.next.Close()
}
