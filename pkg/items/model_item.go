package items

import (
	"fmt"
	"iter"

	"github.com/aretw0/qpilot/pkg/dispatch"
	"github.com/aretw0/qpilot/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// ModelItem is one cell of a remote item model. Tree models nest further
// rows below column 0 cells; Children holds those, exclusively owned by
// their parent.
type ModelItem struct {
	ModelID    uint64            `mapstructure:"modelId"`
	Row        int               `mapstructure:"row"`
	Column     int               `mapstructure:"column"`
	Value      string            `mapstructure:"value"`
	CheckState domain.CheckState `mapstructure:"checkState"`
	ItemPath   string            `mapstructure:"itemPath"`

	// Extra retains every descriptor field the probe sent beyond the ones
	// above.
	Extra map[string]any `mapstructure:",remain"`

	Children []*ModelItem `mapstructure:"-"`
}

// IsCheckable reports whether the probe attached a check state at all.
func (i *ModelItem) IsCheckable() bool { return i.CheckState != "" }

// IsChecked reports whether the item is checkable and fully checked.
func (i *ModelItem) IsChecked() bool { return i.CheckState == domain.Checked }

func (i *ModelItem) kids() []*ModelItem { return i.Children }

// NewModelItem builds one item and its subtree from a descriptor. Children
// are dispatched through reg; a nil reg builds every node with the default
// shape.
func NewModelItem(d domain.Descriptor, reg *dispatch.Registry[*ModelItem]) (*ModelItem, error) {
	item, err := decodeModelItem(d)
	if err != nil {
		return nil, err
	}
	item.Children, err = buildModelChildren(d, reg)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func buildModelChildren(d domain.Descriptor, reg *dispatch.Registry[*ModelItem]) ([]*ModelItem, error) {
	kids := d.Children()
	if len(kids) == 0 {
		return nil, nil
	}
	out := make([]*ModelItem, 0, len(kids))
	for _, cd := range kids {
		item, err := buildModelItem(cd, reg)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func buildModelItem(d domain.Descriptor, reg *dispatch.Registry[*ModelItem]) (*ModelItem, error) {
	if reg == nil {
		return NewModelItem(d, nil)
	}
	return reg.Resolve(d, "", func(dd domain.Descriptor) (*ModelItem, error) {
		return NewModelItem(dd, reg)
	})
}

func decodeModelItem(d domain.Descriptor) (*ModelItem, error) {
	payload := make(map[string]any, len(d))
	for k, v := range d {
		if k == domain.FieldChildren {
			continue
		}
		payload[k] = v
	}

	item := &ModelItem{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           item,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("building model item decoder: %w", err)
	}
	if err := dec.Decode(payload); err != nil {
		return nil, fmt.Errorf("decoding model item: %w", err)
	}
	return item, nil
}

// ModelItems is an immutable snapshot of a model's contents, taken in one
// round trip.
type ModelItems struct {
	items []*ModelItem
}

// NewModelItems builds the collection from a model dump reply. Every item,
// at every depth, goes through reg (registered-or-default).
func NewModelItems(d domain.Descriptor, reg *dispatch.Registry[*ModelItem]) (*ModelItems, error) {
	roots, err := buildModelChildren(d, reg)
	if err != nil {
		return nil, err
	}
	return &ModelItems{items: roots}, nil
}

// Roots returns the top-level items in model order.
func (c *ModelItems) Roots() []*ModelItem { return c.items }

// All yields every item in pre-order: an item first, then its subtree,
// then its next sibling. The sequence is lazy; ranging again restarts it.
func (c *ModelItems) All() iter.Seq[*ModelItem] { return preorder(c.items) }
