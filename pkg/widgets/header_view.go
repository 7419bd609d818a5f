package widgets

import (
	"context"

	"github.com/aretw0/qpilot/pkg/domain"
)

// HeaderView drives a QHeaderView, the label bar of item views.
type HeaderView struct {
	Widget
}

// Texts returns the header labels in visual order.
func (h *HeaderView) Texts(ctx context.Context) ([]string, error) {
	reply, err := h.Send(ctx, "headerview_list", nil)
	if err != nil {
		return nil, err
	}
	return domain.AsStrings(reply["headerTexts"]), nil
}

// ClickText clicks the header section labelled text.
func (h *HeaderView) ClickText(ctx context.Context, text string) error {
	_, err := h.Send(ctx, "headerview_click", map[string]any{"indexOrName": text})
	return err
}

// ClickIndex clicks the header section at the given visual index.
func (h *HeaderView) ClickIndex(ctx context.Context, index int) error {
	_, err := h.Send(ctx, "headerview_click", map[string]any{"indexOrName": index})
	return err
}
