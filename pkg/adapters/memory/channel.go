// Package memory implements ports.Channel in memory, for tests and
// examples that need a probe without a process behind it.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/qpilot/pkg/domain"
)

// Call is one command as it would have crossed the wire.
type Call struct {
	Action string
	Args   map[string]any
}

// Handler answers one action.
type Handler func(args map[string]any) (map[string]any, error)

// Channel is an in-memory ports.Channel scripted per action.
// Safe for concurrent use.
type Channel struct {
	mu       sync.Mutex
	handlers map[string]Handler
	calls    []Call
	closed   bool

	// props emulates remote objects for the two property commands, keyed
	// by identity.
	props map[uint64]map[string]any
}

// NewChannel creates a channel with no scripted actions. Unscripted
// actions fail loudly so tests notice unexpected traffic.
func NewChannel() *Channel {
	return &Channel{
		handlers: make(map[string]Handler),
		props:    make(map[uint64]map[string]any),
	}
}

// Handle scripts the reply for one action. Registering twice replaces the
// previous handler.
func (c *Channel) Handle(action string, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[action] = h
}

// HandleReply scripts a fixed successful reply for one action.
func (c *Channel) HandleReply(action string, reply map[string]any) {
	c.Handle(action, func(map[string]any) (map[string]any, error) {
		return reply, nil
	})
}

// HandleError scripts a probe failure for one action.
func (c *Channel) HandleError(action, name, description string) {
	c.Handle(action, func(map[string]any) (map[string]any, error) {
		return nil, &domain.RemoteError{Name: name, Description: description}
	})
}

// SeedObject registers an object with live properties. The built-in
// emulation then answers object_properties and object_set_properties for
// its identity, echoing writes back on the next read.
func (c *Channel) SeedObject(identity uint64, props map[string]any) {
	copied := make(map[string]any, len(props))
	for k, v := range props {
		copied[k] = v
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.props[identity] = copied
}

// Send records the command and answers it from the scripted handlers or
// the object emulation.
func (c *Channel) Send(ctx context.Context, action string, args map[string]any) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, domain.ErrClosed
	}
	c.calls = append(c.calls, Call{Action: action, Args: args})
	h, scripted := c.handlers[action]
	c.mu.Unlock()

	if scripted {
		return h(args)
	}

	switch action {
	case "object_properties":
		return c.readProps(args)
	case "object_set_properties":
		return c.writeProps(args)
	}
	return nil, fmt.Errorf("memory channel: action %q is not scripted", action)
}

func (c *Channel) readProps(args map[string]any) (map[string]any, error) {
	id, _ := domain.AsIdentity(args[domain.FieldIdentity])

	c.mu.Lock()
	defer c.mu.Unlock()
	props, ok := c.props[id]
	if !ok {
		return nil, &domain.RemoteError{Name: domain.NotRegisteredObject, Description: fmt.Sprintf("object %d is not registered", id)}
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out, nil
}

func (c *Channel) writeProps(args map[string]any) (map[string]any, error) {
	id, _ := domain.AsIdentity(args[domain.FieldIdentity])
	updates, _ := args["properties"].(map[string]any)

	c.mu.Lock()
	defer c.mu.Unlock()
	props, ok := c.props[id]
	if !ok {
		return nil, &domain.RemoteError{Name: domain.NotRegisteredObject, Description: fmt.Sprintf("object %d is not registered", id)}
	}
	for k, v := range updates {
		props[k] = v
	}
	return map[string]any{}, nil
}

// Calls returns a copy of every command sent so far.
func (c *Channel) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Call, len(c.calls))
	copy(out, c.calls)
	return out
}

// LastCall returns the most recent command, if any.
func (c *Channel) LastCall() (Call, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.calls) == 0 {
		return Call{}, false
	}
	return c.calls[len(c.calls)-1], true
}

// CallsFor returns the commands sent for one action.
func (c *Channel) CallsFor(action string) []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Call
	for _, call := range c.calls {
		if call.Action == action {
			out = append(out, call)
		}
	}
	return out
}

// Close marks the channel closed. Further sends fail with domain.ErrClosed.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
