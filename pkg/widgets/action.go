package widgets

import (
	"context"

	"github.com/aretw0/qpilot/pkg/remote"
)

// Action drives a QAction. Menu entries and toolbar buttons expose one.
type Action struct {
	remote.ObjectBase
}

// Trigger activates the action and blocks until the triggered code
// returns. Actions that open a modal dialog never return this way; use
// TriggerAsync for those.
func (a *Action) Trigger(ctx context.Context, opts ...Option) error {
	return a.trigger(ctx, true, opts)
}

// TriggerAsync activates the action without waiting for the triggered
// code to complete.
func (a *Action) TriggerAsync(ctx context.Context, opts ...Option) error {
	return a.trigger(ctx, false, opts)
}

func (a *Action) trigger(ctx context.Context, blocking bool, opts []Option) error {
	if err := awaitActive(ctx, &a.ObjectBase, newSettle(opts)); err != nil {
		return err
	}
	_, err := a.Send(ctx, "action_trigger", map[string]any{"blocking": blocking})
	return err
}
