package widgets

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/qpilot/pkg/domain"
	"github.com/aretw0/qpilot/pkg/remote"
)

// QuickItem drives a QML item inside a QQuickWindow. Instances come from
// QuickWindow's item lookups.
type QuickItem struct {
	remote.ObjectBase
}

// Click clicks the center of the item.
func (q *QuickItem) Click(ctx context.Context) error {
	_, err := q.Send(ctx, "quick_item_click", nil)
	return err
}

// QuickWindow drives a QQuickWindow or QQuickView. For single window QML
// applications, Active is the easiest way to get hold of it.
type QuickWindow struct {
	Widget
}

// Item finds a QML item by its path relative to the window's root item,
// for example "QQuickItem::QQuickRectangle".
func (w *QuickWindow) Item(ctx context.Context, path string) (*QuickItem, error) {
	return w.find(ctx, map[string]any{"path": path})
}

// ItemByID finds a QML item by the id written in the qml file, scoped
// forms like "root.rect" included.
func (w *QuickWindow) ItemByID(ctx context.Context, id string) (*QuickItem, error) {
	return w.find(ctx, map[string]any{"qid": id})
}

// ItemByAlias finds a QML item through an alias. The alias must resolve
// to a full path below this window; the window prefix is stripped before
// the probe sees it.
func (w *QuickWindow) ItemByAlias(ctx context.Context, alias string) (*QuickItem, error) {
	full, err := w.Session().ResolveAlias(alias)
	if err != nil {
		return nil, err
	}
	prefix := w.Path + "::"
	if !strings.HasPrefix(full, prefix) {
		return nil, fmt.Errorf("alias %q points at %q, which is outside window %q", alias, full, w.Path)
	}
	return w.find(ctx, map[string]any{"path": strings.TrimPrefix(full, prefix)})
}

func (w *QuickWindow) find(ctx context.Context, args map[string]any) (*QuickItem, error) {
	args["windowIdentity"] = w.ID
	reply, err := w.Session().Channel().Send(ctx, "quick_item_find", args)
	if err != nil {
		return nil, err
	}

	o, err := w.Session().NewObject(domain.Descriptor(reply))
	if err != nil {
		return nil, err
	}
	if item, ok := o.(*QuickItem); ok {
		return item, nil
	}
	// Some probes omit the class chain on quick items; the reply is one
	// regardless.
	item := &QuickItem{}
	if err := w.Session().Bind(&item.ObjectBase, domain.Descriptor(reply)); err != nil {
		return nil, err
	}
	return item, nil
}
