package widgets

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/qpilot/pkg/domain"
	"github.com/aretw0/qpilot/pkg/remote"
)

// ErrNeverActive reports that the target stayed disabled or hidden for
// the whole activation wait.
var ErrNeverActive = errors.New("widget never became enabled and visible")

// Widget drives a QWidget or anything derived from it. Lookups whose
// class chain matches nothing more specific resolve to this type.
type Widget struct {
	remote.ObjectBase
}

// settleProps returns the property set that marks the target usable.
// Plain windows never report enabled, so they settle on visible alone.
func settleProps(classes []string) map[string]any {
	for _, c := range classes {
		if c == "QWindow" || c == "QQuickWindow" {
			return map[string]any{"visible": true}
		}
	}
	return map[string]any{"enabled": true, "visible": true}
}

func awaitActive(ctx context.Context, o *remote.ObjectBase, s settle) error {
	if !s.waitActive {
		return nil
	}
	ok, err := o.WaitForProperties(ctx, settleProps(o.Classes), s.timeout, s.interval)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("widget %q: %w", o.Path, ErrNeverActive)
	}
	return nil
}

// Click presses a mouse button on the widget. The zero button is a left
// click. The click is sent once the widget settles, unless disabled via
// WithoutActivationWait.
func (w *Widget) Click(ctx context.Context, button domain.MouseButton, opts ...Option) error {
	action, err := button.ClickAction()
	if err != nil {
		return err
	}
	if err := awaitActive(ctx, &w.ObjectBase, newSettle(opts)); err != nil {
		return err
	}
	_, err = w.Send(ctx, "widget_click", map[string]any{"mouseAction": action})
	return err
}

// DoubleClick double clicks the widget with the left button.
func (w *Widget) DoubleClick(ctx context.Context, opts ...Option) error {
	if err := awaitActive(ctx, &w.ObjectBase, newSettle(opts)); err != nil {
		return err
	}
	_, err := w.Send(ctx, "widget_click", map[string]any{"mouseAction": "doubleclick"})
	return err
}

// KeyClick sends a key press and release pair for every character of
// text to the widget.
func (w *Widget) KeyClick(ctx context.Context, text string) error {
	_, err := w.Send(ctx, "widget_keyclick", map[string]any{"text": text})
	return err
}

// Shortcut sends a key sequence to the widget, written in the portable
// text form QKeySequence::fromString accepts, for example "Ctrl+S".
func (w *Widget) Shortcut(ctx context.Context, sequence string) error {
	_, err := w.Send(ctx, "shortcut", map[string]any{"keySequence": sequence})
	return err
}

// ActivateFocus raises the widget's window and gives it keyboard focus.
func (w *Widget) ActivateFocus(ctx context.Context) error {
	_, err := w.Send(ctx, "widget_activate_focus", nil)
	return err
}

// Move repositions the widget and returns the position it ended up at,
// which may differ when the window manager interferes.
func (w *Widget) Move(ctx context.Context, x, y int) (int, int, error) {
	reply, err := w.Send(ctx, "widget_move", map[string]any{"x": x, "y": y})
	if err != nil {
		return 0, 0, err
	}
	return asInt(reply["x"]), asInt(reply["y"]), nil
}

// Resize resizes the widget and returns the size it ended up with.
func (w *Widget) Resize(ctx context.Context, width, height int) (int, int, error) {
	reply, err := w.Send(ctx, "widget_resize", map[string]any{"width": width, "height": height})
	if err != nil {
		return 0, 0, err
	}
	return asInt(reply["width"]), asInt(reply["height"]), nil
}

// Close asks the widget to close itself, like clicking the window
// decoration would.
func (w *Widget) Close(ctx context.Context) error {
	_, err := w.Send(ctx, "widget_close", nil)
	return err
}

// Grab screenshots the widget. An empty format means PNG.
func (w *Widget) Grab(ctx context.Context, format string) (*domain.Image, error) {
	if format == "" {
		format = "PNG"
	}
	reply, err := w.Send(ctx, "grab", map[string]any{"format": format})
	if err != nil {
		return nil, err
	}
	return decodeImage(reply, format)
}

// MapPositionFrom translates parent coordinates into widget-local ones.
// A nil parent translates from global screen coordinates.
func (w *Widget) MapPositionFrom(ctx context.Context, parent remote.Object, x, y int) (int, int, error) {
	return w.mapPosition(ctx, parent, "from", x, y)
}

// MapPositionTo translates widget-local coordinates into parent ones.
// A nil parent translates to global screen coordinates.
func (w *Widget) MapPositionTo(ctx context.Context, parent remote.Object, x, y int) (int, int, error) {
	return w.mapPosition(ctx, parent, "to", x, y)
}

func (w *Widget) mapPosition(ctx context.Context, parent remote.Object, direction string, x, y int) (int, int, error) {
	args := map[string]any{"direction": direction, "x": x, "y": y}
	if parent != nil {
		args["parentIdentity"] = parent.AsObject().ID
	}
	reply, err := w.Send(ctx, "widget_map_position", args)
	if err != nil {
		return 0, 0, err
	}
	return asInt(reply["x"]), asInt(reply["y"]), nil
}

// WidgetsList returns the raw widget subtree below this one, as the
// probe reports it.
func (w *Widget) WidgetsList(ctx context.Context, withProperties, recursive bool) (map[string]any, error) {
	return w.Send(ctx, "widgets_list", map[string]any{
		"withProperties": withProperties,
		"recursive":      recursive,
	})
}

// ActionsList returns the raw actions attached to this widget.
func (w *Widget) ActionsList(ctx context.Context, withProperties bool) (map[string]any, error) {
	return w.Send(ctx, "actions_list", map[string]any{
		"withProperties": withProperties,
	})
}

func decodeImage(reply map[string]any, requested string) (*domain.Image, error) {
	encoded, _ := reply["data"].(string)
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decoding grabbed image: %w", err)
	}
	format, _ := reply["format"].(string)
	if format == "" {
		format = requested
	}
	return &domain.Image{Format: format, Data: data}, nil
}

// asInt reads wire-side numbers, which arrive as json.Number or float64
// depending on the decoder in front of them.
func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	}
	return 0
}
