package qpilot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/qpilot/pkg/adapters/middleware"
	"github.com/aretw0/qpilot/pkg/adapters/socket"
	"github.com/aretw0/qpilot/pkg/aliases"
	"github.com/aretw0/qpilot/pkg/domain"
	"github.com/aretw0/qpilot/pkg/ports"
	"github.com/aretw0/qpilot/pkg/remote"
	"github.com/aretw0/qpilot/pkg/widgets"
)

// Client is the high-level entry point for the qpilot library.
// It owns one probe session and provides a simplified API for consumers.
type Client struct {
	session *remote.Session
	logger  *slog.Logger
	addr    string

	aliasFiles  []string
	aliasExtra  map[string]string
	chain       []middleware.Middleware
	install     func(*remote.Session)
	dialTimeout time.Duration
}

// Option defines a functional option for configuring the Client.
type Option func(*Client)

// WithLogger sets a custom structured logger for the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithAliases loads friendly widget names from a YAML aliases file.
// Repeat the option to layer files; later files win on duplicate names.
func WithAliases(path string) Option {
	return func(c *Client) {
		c.aliasFiles = append(c.aliasFiles, path)
	}
}

// WithAliasMap merges inline alias definitions on top of any alias files.
// Values may reference other aliases with ${name}, like file entries.
func WithAliasMap(m map[string]string) Option {
	return func(c *Client) {
		if c.aliasExtra == nil {
			c.aliasExtra = make(map[string]string, len(m))
		}
		for name, path := range m {
			c.aliasExtra[name] = path
		}
	}
}

// WithMiddleware wraps the channel with the given middleware, outermost
// first. Use it to add logging, metrics or a command trace.
func WithMiddleware(mw ...middleware.Middleware) Option {
	return func(c *Client) {
		c.chain = append(c.chain, mw...)
	}
}

// WithRegistry replaces the default widget and item class registrations.
// The install function runs once, before the first descriptor is decoded.
func WithRegistry(install func(*remote.Session)) Option {
	return func(c *Client) {
		c.install = install
	}
}

// WithDialTimeout bounds how long Connect keeps retrying an address on
// which no probe is listening yet.
func WithDialTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.dialTimeout = d
	}
}

// Connect dials the probe at addr and assembles a client over the
// resulting channel. The address is retried until the probe answers or
// the dial timeout passes, so Connect can be issued while the
// application is still starting up.
func Connect(ctx context.Context, addr string, opts ...Option) (*Client, error) {
	c := newClient(opts)
	c.addr = addr
	c.logger = c.logger.With("probe", addr)

	sockOpts := []socket.Option{socket.WithLogger(c.logger)}
	if c.dialTimeout > 0 {
		sockOpts = append(sockOpts, socket.WithDialTimeout(c.dialTimeout))
	}
	ch, err := socket.Dial(ctx, addr, sockOpts...)
	if err != nil {
		return nil, err
	}
	if err := c.assemble(ch); err != nil {
		ch.Close()
		return nil, err
	}
	return c, nil
}

// NewFromChannel assembles a client over an already open channel. Used
// with the in-memory channel in tests and by hosts that manage their own
// transport.
func NewFromChannel(ch ports.Channel, opts ...Option) (*Client, error) {
	c := newClient(opts)
	if err := c.assemble(ch); err != nil {
		return nil, err
	}
	return c, nil
}

func newClient(opts []Option) *Client {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}
	// Ensure logger is initialized (so the socket and middleware layers
	// never see nil and fall back to their own defaults).
	if c.logger == nil {
		c.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return c
}

func (c *Client) assemble(ch ports.Channel) error {
	if len(c.chain) > 0 {
		ch = middleware.Chain(c.chain...)(ch)
	}

	var set *aliases.Set
	for _, path := range c.aliasFiles {
		loaded, err := aliases.Load(path)
		if err != nil {
			return err
		}
		if set == nil {
			set = loaded
		} else {
			set = set.Merge(loaded)
		}
	}
	if len(c.aliasExtra) > 0 {
		extra, err := aliases.FromMap(c.aliasExtra)
		if err != nil {
			return err
		}
		if set == nil {
			set = extra
		} else {
			set = set.Merge(extra)
		}
	}

	var sessOpts []remote.Option
	if set != nil {
		sessOpts = append(sessOpts, remote.WithAliases(set.All()))
	}
	c.session = remote.NewSession(ch, sessOpts...)

	install := c.install
	if install == nil {
		install = widgets.RegisterDefaults
	}
	install(c.session)
	return nil
}

// Session exposes the underlying session for operations the high-level
// API does not cover.
func (c *Client) Session() *remote.Session { return c.session }

// Addr returns the probe address the client connected to. Empty for
// clients built over an injected channel.
func (c *Client) Addr() string { return c.addr }

// Widget resolves a widget by its full object path and waits for its
// window to have been active once.
func (c *Client) Widget(ctx context.Context, path string, opts ...widgets.Option) (remote.Object, error) {
	return widgets.ByPath(ctx, c.session, path, opts...)
}

// WidgetByAlias resolves a widget through a friendly name loaded with
// WithAliases or WithAliasMap.
func (c *Client) WidgetByAlias(ctx context.Context, name string, opts ...widgets.Option) (remote.Object, error) {
	return widgets.ByAlias(ctx, c.session, name, opts...)
}

// ActiveWidget returns the application's active window, modal dialog,
// popup or focus widget, depending on kind.
func (c *Client) ActiveWidget(ctx context.Context, kind domain.WindowKind, opts ...widgets.Option) (remote.Object, error) {
	return widgets.Active(ctx, c.session, kind, opts...)
}

// Action resolves a QAction by its full object path.
func (c *Client) Action(ctx context.Context, path string, opts ...widgets.Option) (*widgets.Action, error) {
	return widgets.ActionByPath(ctx, c.session, path, opts...)
}

// WidgetsList dumps the widget tree, optionally with every property.
func (c *Client) WidgetsList(ctx context.Context, withProperties bool) (map[string]any, error) {
	return widgets.List(ctx, c.session, withProperties)
}

// ActionsList dumps every QAction the application holds.
func (c *Client) ActionsList(ctx context.Context, withProperties bool) (map[string]any, error) {
	return widgets.AllActions(ctx, c.session, withProperties)
}

// Commands lists the commands the connected probe understands, in the
// probe's own order.
func (c *Client) Commands(ctx context.Context) ([]string, error) {
	reply, err := c.session.Channel().Send(ctx, "list_commands", nil)
	if err != nil {
		return nil, err
	}
	raw, _ := reply["commands"].([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// Grab takes a desktop screenshot in the given image format.
func (c *Client) Grab(ctx context.Context, format string) (*domain.Image, error) {
	return widgets.GrabScreen(ctx, c.session, format)
}

// CallSlot invokes a registered slot on the widget at path and returns
// the slot's result.
func (c *Client) CallSlot(ctx context.Context, path, slot string, params map[string]any, opts ...widgets.Option) (any, error) {
	obj, err := widgets.ByPath(ctx, c.session, path, opts...)
	if err != nil {
		return nil, err
	}
	return obj.AsObject().CallSlot(ctx, slot, params)
}

// DragAndDrop presses on source and releases over target. Offsets from
// the widget centers are set through drag options.
func (c *Client) DragAndDrop(ctx context.Context, source, target remote.Object, opts ...widgets.DragOption) error {
	return widgets.Drag(ctx, source, target, opts...)
}

// Quit asks the application to exit its event loop.
func (c *Client) Quit(ctx context.Context) error {
	_, err := c.session.Channel().Send(ctx, "quit", nil)
	if err == nil {
		return nil
	}
	// The probe acknowledges quit before the event loop unwinds. An
	// application racing its own teardown may drop the link instead of
	// answering; that still means it obeyed.
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return nil
	}
	return err
}

// Close closes the channel. The application itself keeps running.
func (c *Client) Close() error {
	return c.session.Close()
}
