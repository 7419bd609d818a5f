package widgets

import (
	"context"
	"strconv"

	"github.com/aretw0/qpilot/pkg/domain"
)

// TabBar drives a QTabBar.
type TabBar struct {
	Widget
}

// TabTexts returns the tab labels in display order.
func (t *TabBar) TabTexts(ctx context.Context) ([]string, error) {
	reply, err := t.Send(ctx, "tabbar_list", nil)
	if err != nil {
		return nil, err
	}
	return domain.AsStrings(reply["tabTexts"]), nil
}

// SetCurrentTab switches to the tab at the given position.
func (t *TabBar) SetCurrentTab(ctx context.Context, index int) error {
	texts, err := t.TabTexts(ctx)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(texts) {
		allowed := make([]string, len(texts))
		for i := range texts {
			allowed[i] = strconv.Itoa(i)
		}
		return &domain.InvalidArgumentError{
			Argument: "tab index",
			Value:    strconv.Itoa(index),
			Allowed:  allowed,
		}
	}
	return t.SetProperty(ctx, "currentIndex", index)
}

// SetCurrentTabText switches to the tab labelled text.
func (t *TabBar) SetCurrentTabText(ctx context.Context, text string) error {
	texts, err := t.TabTexts(ctx)
	if err != nil {
		return err
	}
	for i, label := range texts {
		if label == text {
			return t.SetProperty(ctx, "currentIndex", i)
		}
	}
	return &domain.NotFoundError{
		Entity:     "tab",
		Value:      text,
		Location:   t.Path,
		Candidates: texts,
	}
}
