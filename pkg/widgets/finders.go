package widgets

import (
	"context"

	"github.com/aretw0/qpilot/pkg/domain"
	"github.com/aretw0/qpilot/pkg/remote"
	"github.com/aretw0/qpilot/pkg/wait"
)

// ByPath looks up the widget at a designer path like
// "mainWindow::centralWidget::btnOK". The lookup retries while the probe
// still reports the path unknown, because widgets routinely appear a
// moment after their window, and then waits for the widget to settle.
// Both phases honor the options.
func ByPath(ctx context.Context, s *remote.Session, path string, opts ...Option) (remote.Object, error) {
	cfg := newSettle(opts)
	found, err := lookup(ctx, s, cfg, "widget_by_path", map[string]any{"path": path},
		domain.InvalidWidgetPath, "widget", path)
	if err != nil {
		return nil, err
	}
	return resolveAndSettle(ctx, s, found, cfg)
}

// ByAlias resolves the alias through the session and looks the widget up
// at the resulting path.
func ByAlias(ctx context.Context, s *remote.Session, alias string, opts ...Option) (remote.Object, error) {
	path, err := s.ResolveAlias(alias)
	if err != nil {
		return nil, err
	}
	return ByPath(ctx, s, path, opts...)
}

// Active returns the active top-level widget: the active window by
// default, or the modal dialog, popup or focused widget when kind says
// so. The lookup retries while the probe reports no active window yet.
func Active(ctx context.Context, s *remote.Session, kind domain.WindowKind, opts ...Option) (remote.Object, error) {
	wire, err := windowType(kind)
	if err != nil {
		return nil, err
	}
	cfg := newSettle(opts)
	found, err := lookup(ctx, s, cfg, "active_widget", map[string]any{"type": wire},
		domain.NoActiveWindow, "active widget", wire)
	if err != nil {
		return nil, err
	}
	return resolveAndSettle(ctx, s, found, cfg)
}

// ActionByPath looks up a QAction by path. Actions do not settle the way
// widgets do; Trigger performs its own enabled wait instead.
func ActionByPath(ctx context.Context, s *remote.Session, path string, opts ...Option) (*Action, error) {
	cfg := newSettle(opts)
	found, err := lookup(ctx, s, cfg, "widget_by_path", map[string]any{"path": path},
		domain.InvalidWidgetPath, "action", path)
	if err != nil {
		return nil, err
	}

	a := &Action{}
	if err := s.Bind(&a.ObjectBase, found); err != nil {
		return nil, err
	}
	return a, nil
}

// List returns the raw widget tree of the whole application.
func List(ctx context.Context, s *remote.Session, withProperties bool) (map[string]any, error) {
	return s.Channel().Send(ctx, "widgets_list", map[string]any{
		"withProperties": withProperties,
		"recursive":      true,
	})
}

// AllActions returns the raw list of every action of the application.
func AllActions(ctx context.Context, s *remote.Session, withProperties bool) (map[string]any, error) {
	return s.Channel().Send(ctx, "actions_list", map[string]any{
		"withProperties": withProperties,
	})
}

// GrabScreen screenshots the whole primary screen. An empty format means
// PNG.
func GrabScreen(ctx context.Context, s *remote.Session, format string) (*domain.Image, error) {
	if format == "" {
		format = "PNG"
	}
	reply, err := s.Channel().Send(ctx, "grab", map[string]any{"format": format})
	if err != nil {
		return nil, err
	}
	return decodeImage(reply, format)
}

// lookup retries a find command for as long as it fails with the given
// transient probe error. Timing out turns the last transient failure
// into a NotFoundError; any other failure aborts the retry right away.
func lookup(ctx context.Context, s *remote.Session, cfg settle, action string, args map[string]any, transient, entity, value string) (domain.Descriptor, error) {
	var (
		found   domain.Descriptor
		lastErr error
	)
	ok, err := wait.ForFunc(func() (bool, error) {
		reply, err := s.Channel().Send(ctx, action, args)
		if err != nil {
			if domain.IsRemote(err, transient) {
				lastErr = err
				return false, nil
			}
			return false, err
		}
		found = domain.Descriptor(reply)
		return true, nil
	}, cfg.timeout, cfg.interval)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.NotFoundError{Entity: entity, Value: value, Err: lastErr}
	}
	return found, nil
}

func resolveAndSettle(ctx context.Context, s *remote.Session, d domain.Descriptor, cfg settle) (remote.Object, error) {
	o, err := s.NewObject(d)
	if err != nil {
		return nil, err
	}
	if err := awaitActive(ctx, o.AsObject(), cfg); err != nil {
		return nil, err
	}
	return o, nil
}

func windowType(kind domain.WindowKind) (string, error) {
	switch kind {
	case domain.WindowAny:
		return "window", nil
	case domain.WindowModal, domain.WindowPopup, domain.WindowFocus:
		return string(kind), nil
	}
	return "", &domain.InvalidArgumentError{
		Argument: "window kind",
		Value:    string(kind),
		Allowed:  []string{"window", "modal", "popup", "focus"},
	}
}
