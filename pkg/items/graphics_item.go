package items

import (
	"context"
	"fmt"
	"iter"

	"github.com/aretw0/qpilot/pkg/dispatch"
	"github.com/aretw0/qpilot/pkg/domain"
	"github.com/aretw0/qpilot/pkg/ports"
	"github.com/mitchellh/mapstructure"
)

// GraphicsItem is one entry of a remote graphics scene. Items backed by a
// QObject additionally expose an object name, a class chain and live
// properties; plain items only have their identity and geometry fields.
type GraphicsItem struct {
	ViewID     uint64   `mapstructure:"viewId"`
	ItemID     uint64   `mapstructure:"itemId"`
	ObjectName string   `mapstructure:"objectName"`
	Classes    []string `mapstructure:"classes"`

	// Extra retains every descriptor field the probe sent beyond the ones
	// above.
	Extra map[string]any `mapstructure:",remain"`

	Children []*GraphicsItem `mapstructure:"-"`

	isObject bool
	channel  ports.Channel
}

// IsObject reports whether the item is backed by a QObject. The probe only
// attaches an object name to those, even an empty one.
func (g *GraphicsItem) IsObject() bool { return g.isObject }

func (g *GraphicsItem) kids() []*GraphicsItem { return g.Children }

// Properties reads the live QObject properties behind the item. The probe
// rejects items that are not QObject backed.
func (g *GraphicsItem) Properties(ctx context.Context) (map[string]any, error) {
	reply, err := g.channel.Send(ctx, "gitem_properties", map[string]any{
		domain.FieldIdentity: g.ViewID,
		"itemId":             g.ItemID,
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

// Click presses and releases a mouse button on the item's center.
func (g *GraphicsItem) Click(ctx context.Context, button domain.MouseButton) error {
	action, err := button.ClickAction()
	if err != nil {
		return err
	}
	return g.itemAction(ctx, action)
}

// DoubleClick double clicks the item with the left button.
func (g *GraphicsItem) DoubleClick(ctx context.Context) error {
	return g.itemAction(ctx, "doubleclick")
}

func (g *GraphicsItem) itemAction(ctx context.Context, action string) error {
	_, err := g.channel.Send(ctx, "model_gitem_action", map[string]any{
		domain.FieldIdentity: g.ViewID,
		"itemId":             g.ItemID,
		"itemAction":         action,
	})
	return err
}

// NewGraphicsItem builds one item and its subtree from a descriptor.
// Children are dispatched through reg; a nil reg builds every node with
// the default shape. The channel powers the item's own operations.
func NewGraphicsItem(d domain.Descriptor, reg *dispatch.Registry[*GraphicsItem], ch ports.Channel) (*GraphicsItem, error) {
	item, err := decodeGraphicsItem(d)
	if err != nil {
		return nil, err
	}
	item.channel = ch
	item.Children, err = buildGraphicsChildren(d, reg, ch)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func buildGraphicsChildren(d domain.Descriptor, reg *dispatch.Registry[*GraphicsItem], ch ports.Channel) ([]*GraphicsItem, error) {
	kids := d.Children()
	if len(kids) == 0 {
		return nil, nil
	}
	out := make([]*GraphicsItem, 0, len(kids))
	for _, cd := range kids {
		item, err := buildGraphicsItem(cd, reg, ch)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func buildGraphicsItem(d domain.Descriptor, reg *dispatch.Registry[*GraphicsItem], ch ports.Channel) (*GraphicsItem, error) {
	if reg == nil {
		return NewGraphicsItem(d, nil, ch)
	}
	return reg.Resolve(d, "", func(dd domain.Descriptor) (*GraphicsItem, error) {
		return NewGraphicsItem(dd, reg, ch)
	})
}

func decodeGraphicsItem(d domain.Descriptor) (*GraphicsItem, error) {
	payload := make(map[string]any, len(d))
	for k, v := range d {
		if k == domain.FieldChildren {
			continue
		}
		payload[k] = v
	}

	item := &GraphicsItem{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           item,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("building graphics item decoder: %w", err)
	}
	if err := dec.Decode(payload); err != nil {
		return nil, fmt.Errorf("decoding graphics item: %w", err)
	}

	// Object backing is signaled by the field's presence, not its value.
	_, item.isObject = d["objectName"]
	return item, nil
}

// GraphicsItems is an immutable snapshot of a scene's contents.
type GraphicsItems struct {
	items []*GraphicsItem
}

// NewGraphicsItems builds the collection from a scene dump reply. Every
// item, at every depth, goes through reg (registered-or-default).
func NewGraphicsItems(d domain.Descriptor, reg *dispatch.Registry[*GraphicsItem], ch ports.Channel) (*GraphicsItems, error) {
	roots, err := buildGraphicsChildren(d, reg, ch)
	if err != nil {
		return nil, err
	}
	return &GraphicsItems{items: roots}, nil
}

// Roots returns the top-level items in scene order.
func (c *GraphicsItems) Roots() []*GraphicsItem { return c.items }

// All yields every item in pre-order: an item first, then its subtree,
// then its next sibling. The sequence is lazy; ranging again restarts it.
func (c *GraphicsItems) All() iter.Seq[*GraphicsItem] { return preorder(c.items) }
