// Package socket implements the command channel over TCP.
//
// The probe embedded in the application under test listens on a TCP port
// and speaks a length-prefixed JSON protocol: each frame is the ASCII
// decimal byte length of a JSON object, a newline, then the object
// itself. A request is the command's arguments plus an "action" key; the
// reply is a single JSON object. Probe-side failures arrive as
// {"success": false, "name": ..., "description": ...} and surface as
// *domain.RemoteError.
package socket

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/qpilot/pkg/domain"
	"github.com/aretw0/qpilot/pkg/wait"
)

type config struct {
	dialTimeout time.Duration
	logger      *slog.Logger
}

// Option configures Dial.
type Option func(*config)

// WithDialTimeout bounds how long Dial keeps retrying before giving up.
func WithDialTimeout(d time.Duration) Option {
	return func(c *config) {
		c.dialTimeout = d
	}
}

// WithLogger sets a structured logger for connection and command events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// Channel is a ports.Channel over one TCP connection to the probe.
type Channel struct {
	logger *slog.Logger
	addr   string

	mu     sync.Mutex
	conn   net.Conn
	r      *bufio.Reader
	closed bool
}

// Dial connects to the probe at addr. An application instrumented at
// startup needs a moment before its probe accepts connections, so Dial
// retries refused dials until the dial timeout elapses. Cancelling ctx
// stops the retrying early.
func Dial(ctx context.Context, addr string, opts ...Option) (*Channel, error) {
	cfg := config{
		dialTimeout: wait.DefaultTimeout,
		logger:      slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := cfg.logger.With("addr", addr)

	var (
		conn    net.Conn
		lastErr error
	)
	dialer := &net.Dialer{}
	ok, err := wait.ForFunc(func() (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		c, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			lastErr = err
			return false, nil
		}
		conn = c
		return true, nil
	}, cfg.dialTimeout, wait.DefaultInterval)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no probe listening on %s after %s: %w", addr, cfg.dialTimeout, lastErr)
	}

	logger.Debug("connected to probe")
	return &Channel{
		logger: logger,
		addr:   addr,
		conn:   conn,
		r:      bufio.NewReader(conn),
	}, nil
}

// Addr returns the address the channel was dialed with.
func (c *Channel) Addr() string { return c.addr }

// Send issues one command and waits for its reply. Concurrent callers are
// serialized so frames never interleave. A context deadline bounds the
// whole exchange through the socket deadline; plain cancellation is only
// honored before the exchange starts.
//
// A transport failure mid exchange closes the channel, since the frame
// boundary is lost and every later reply would be misattributed.
func (c *Channel) Send(ctx context.Context, action string, args map[string]any) (map[string]any, error) {
	payload := make(map[string]any, len(args)+1)
	for k, v := range args {
		payload[k] = v
	}
	payload["action"] = action
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding command %s: %w", action, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, domain.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetDeadline(deadline)
		defer c.conn.SetDeadline(time.Time{})
	}

	start := time.Now()
	reply, err := c.exchange(body)
	if err != nil {
		c.logger.Error("command failed, closing channel", "action", action, "err", err)
		_ = c.closeLocked()
		return nil, fmt.Errorf("command %s: %w", action, err)
	}

	if success, ok := reply["success"].(bool); ok && !success {
		name, _ := reply["name"].(string)
		description, _ := reply["description"].(string)
		c.logger.Debug("command refused", "action", action, "name", name)
		return nil, &domain.RemoteError{Name: name, Description: description}
	}

	c.logger.Debug("command done", "action", action, "duration", time.Since(start))
	return reply, nil
}

func (c *Channel) exchange(body []byte) (map[string]any, error) {
	frame := strconv.AppendInt(make([]byte, 0, len(body)+12), int64(len(body)), 10)
	frame = append(frame, '\n')
	frame = append(frame, body...)
	if _, err := c.conn.Write(frame); err != nil {
		return nil, fmt.Errorf("writing frame: %w", err)
	}

	replyBody, err := c.readFrame()
	if err != nil {
		return nil, err
	}

	// UseNumber keeps 64 bit object identities intact; float64 would not.
	dec := json.NewDecoder(bytes.NewReader(replyBody))
	dec.UseNumber()
	reply := map[string]any{}
	if err := dec.Decode(&reply); err != nil {
		return nil, fmt.Errorf("decoding reply: %w", err)
	}
	return reply, nil
}

func (c *Channel) readFrame() ([]byte, error) {
	header, err := c.r.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("reading frame header: %w", err)
	}
	size, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || size < 0 {
		return nil, fmt.Errorf("malformed frame header %q", strings.TrimSpace(header))
	}
	body := make([]byte, size)
	if _, err := io.ReadFull(c.r, body); err != nil {
		return nil, fmt.Errorf("reading frame body: %w", err)
	}
	return body, nil
}

// Close shuts the connection down. Calling it again is a no-op.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

func (c *Channel) closeLocked() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}
