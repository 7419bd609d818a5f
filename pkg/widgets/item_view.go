package widgets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/qpilot/pkg/domain"
	"github.com/aretw0/qpilot/pkg/items"
	"github.com/aretw0/qpilot/pkg/remote"
)

// AbstractItemView drives a QAbstractItemView or derived. Item
// interactions take a *items.ModelItem obtained through Model and Items.
type AbstractItemView struct {
	Widget
}

// editorClasses are probed by CurrentEditor when no class is given.
var editorClasses = []string{"QLineEdit", "QComboBox", "QSpinBox", "QDoubleSpinBox"}

// Model returns the model displayed by this view.
func (v *AbstractItemView) Model(ctx context.Context) (*AbstractItemModel, error) {
	reply, err := v.Send(ctx, "model", nil)
	if err != nil {
		return nil, err
	}
	m := &AbstractItemModel{}
	if err := v.Session().Bind(&m.ObjectBase, domain.Descriptor(reply)); err != nil {
		return nil, err
	}
	return m, nil
}

// ItemOption adjusts where inside the item rectangle a click lands.
type ItemOption func(*itemSpot)

type itemSpot struct {
	origin  domain.Origin
	offsetX int
	offsetY int
}

func newItemSpot(opts []ItemOption) itemSpot {
	s := itemSpot{origin: domain.OriginCenter}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// AtOrigin anchors the click at the center, left or right edge of the
// item rectangle.
func AtOrigin(o domain.Origin) ItemOption {
	return func(s *itemSpot) { s.origin = o }
}

// WithOffset shifts the click relative to the origin. Negative values
// are allowed; the probe clamps the result to the item rectangle.
func WithOffset(x, y int) ItemOption {
	return func(s *itemSpot) { s.offsetX, s.offsetY = x, y }
}

// SelectItem makes the item the current index of the view.
func (v *AbstractItemView) SelectItem(ctx context.Context, it *items.ModelItem) error {
	return v.itemAction(ctx, it, "select", nil)
}

// EditItem makes the item current and opens its editor.
func (v *AbstractItemView) EditItem(ctx context.Context, it *items.ModelItem) error {
	return v.itemAction(ctx, it, "edit", nil)
}

// OpenContextMenu opens the context menu of the item. When the menu
// blocks, drive it with TriggerAsync on one of its actions.
func (v *AbstractItemView) OpenContextMenu(ctx context.Context, it *items.ModelItem) error {
	return v.itemAction(ctx, it, "context_menu", nil)
}

// ClickItem clicks the item with the given button. The zero button is a
// left click.
func (v *AbstractItemView) ClickItem(ctx context.Context, it *items.ModelItem, button domain.MouseButton, opts ...ItemOption) error {
	action, err := button.ClickAction()
	if err != nil {
		return err
	}
	spot := newItemSpot(opts)
	return v.itemAction(ctx, it, action, &spot)
}

// DoubleClickItem double clicks the item with the left button.
func (v *AbstractItemView) DoubleClickItem(ctx context.Context, it *items.ModelItem, opts ...ItemOption) error {
	spot := newItemSpot(opts)
	return v.itemAction(ctx, it, "doubleclick", &spot)
}

func (v *AbstractItemView) itemAction(ctx context.Context, it *items.ModelItem, action string, spot *itemSpot) error {
	args := map[string]any{
		"itemAction": action,
		"row":        it.Row,
		"column":     it.Column,
		"itemPath":   it.ItemPath,
	}
	if spot != nil {
		args["origin"] = string(spot.origin)
		args["offsetX"] = spot.offsetX
		args["offsetY"] = spot.offsetY
	}
	_, err := v.Send(ctx, "model_item_action", args)
	return err
}

// CurrentEditor returns the editor widget currently open on the view.
// An item must be in editing mode first, for example through EditItem.
// With an empty editorClass every known editor kind is probed in turn,
// spending up to the full lookup timeout per kind; pass WithTimeout to
// keep that bearable.
func (v *AbstractItemView) CurrentEditor(ctx context.Context, editorClass string, opts ...Option) (remote.Object, error) {
	if editorClass != "" {
		return ByPath(ctx, v.Session(), v.editorPath(editorClass), opts...)
	}
	for _, class := range editorClasses {
		o, err := ByPath(ctx, v.Session(), v.editorPath(class), opts...)
		if err == nil {
			return o, nil
		}
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			continue
		}
		return nil, err
	}
	return nil, &domain.RemoteError{
		Name: domain.MissingEditor,
		Description: fmt.Sprintf("no editor is open on %s, probed %s",
			v.Path, strings.Join(editorClasses, ", ")),
	}
}

func (v *AbstractItemView) editorPath(class string) string {
	return v.Path + "::qt_scrollarea_viewport::" + class
}
