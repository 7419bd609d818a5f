package widgets

import (
	"context"

	"github.com/aretw0/qpilot/pkg/remote"
)

// DragOption overrides where a drag starts or ends. Without options both
// ends use the center of their widget.
type DragOption func(*drag)

type drag struct {
	srcX, srcY *int
	dstX, dstY *int
}

// FromPosition starts the drag at the given widget-local coordinates.
func FromPosition(x, y int) DragOption {
	return func(d *drag) { d.srcX, d.srcY = &x, &y }
}

// ToPosition drops at the given coordinates, local to the target widget.
func ToPosition(x, y int) DragOption {
	return func(d *drag) { d.dstX, d.dstY = &x, &y }
}

// Drag drags from source and drops onto target. A nil target drops back
// onto source. Ends without an explicit position use their widget's
// center.
func Drag(ctx context.Context, source, target remote.Object, opts ...DragOption) error {
	var d drag
	for _, opt := range opts {
		opt(&d)
	}

	src := source.AsObject()
	dest := src.ID
	if target != nil {
		dest = target.AsObject().ID
	}
	args := map[string]any{
		"sourceIdentity": src.ID,
		"destIdentity":   dest,
	}
	if d.srcX != nil {
		args["sourceX"], args["sourceY"] = *d.srcX, *d.srcY
	}
	if d.dstX != nil {
		args["destX"], args["destY"] = *d.dstX, *d.dstY
	}
	_, err := src.Session().Channel().Send(ctx, "drag_n_drop", args)
	return err
}

// DragAndDrop drags from this widget and drops onto target. A nil target
// drops back onto this widget.
func (w *Widget) DragAndDrop(ctx context.Context, target remote.Object, opts ...DragOption) error {
	return Drag(ctx, w, target, opts...)
}
