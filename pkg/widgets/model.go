package widgets

import (
	"context"

	"github.com/aretw0/qpilot/pkg/domain"
	"github.com/aretw0/qpilot/pkg/items"
	"github.com/aretw0/qpilot/pkg/remote"
)

// AbstractItemModel reads the items of a QAbstractItemModel.
type AbstractItemModel struct {
	remote.ObjectBase
}

// Items fetches the whole item tree of the model in one round trip.
// Tree models come back with their full depth; table and list models
// come back flat.
func (m *AbstractItemModel) Items(ctx context.Context) (*items.ModelItems, error) {
	reply, err := m.Send(ctx, "model_items", nil)
	if err != nil {
		return nil, err
	}
	return items.NewModelItems(domain.Descriptor(reply), m.Session().ModelItemRegistry())
}
