package widgets

import (
	"context"

	"github.com/aretw0/qpilot/pkg/domain"
)

// ComboBox drives a QComboBox.
type ComboBox struct {
	Widget
}

// Model returns the model holding the entries of the combo box.
func (c *ComboBox) Model(ctx context.Context) (*AbstractItemModel, error) {
	reply, err := c.Send(ctx, "model", nil)
	if err != nil {
		return nil, err
	}
	m := &AbstractItemModel{}
	if err := c.Session().Bind(&m.ObjectBase, domain.Descriptor(reply)); err != nil {
		return nil, err
	}
	return m, nil
}

// SetCurrentText selects the entry labelled text, verifying first that
// the text is one of the possible values.
func (c *ComboBox) SetCurrentText(ctx context.Context, text string) error {
	column, err := c.Property(ctx, "modelColumn")
	if err != nil {
		return err
	}
	col := asInt(column)

	m, err := c.Model(ctx)
	if err != nil {
		return err
	}
	entries, err := m.Items(ctx)
	if err != nil {
		return err
	}

	var candidates []string
	for it := range entries.All() {
		if it.Column != col {
			continue
		}
		if it.Value == text {
			return c.SetProperty(ctx, "currentIndex", it.Row)
		}
		candidates = append(candidates, it.Value)
	}
	return &domain.NotFoundError{
		Entity:     "combo box entry",
		Value:      text,
		Location:   c.Path,
		Candidates: candidates,
	}
}
