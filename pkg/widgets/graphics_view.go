package widgets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/qpilot/pkg/domain"
	"github.com/aretw0/qpilot/pkg/items"
)

// GraphicsView drives a QGraphicsView and exposes the items of its
// scene.
type GraphicsView struct {
	Widget
}

// Items fetches every top-level item of the scene, with their subitems.
func (g *GraphicsView) Items(ctx context.Context) (*items.GraphicsItems, error) {
	reply, err := g.Send(ctx, "graphicsitems", nil)
	if err != nil {
		return nil, err
	}
	s := g.Session()
	return items.NewGraphicsItems(domain.Descriptor(reply), s.GraphicsItemRegistry(), s.Channel())
}

// DumpItems writes the scene's item tree to w as indented JSON, handy
// for figuring out item ids while writing a test.
func (g *GraphicsView) DumpItems(ctx context.Context, w io.Writer) error {
	reply, err := g.Send(ctx, "graphicsitems", nil)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(reply, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding graphics items: %w", err)
	}
	_, err = w.Write(out)
	return err
}

// GrabScene screenshots the whole scene behind the view, not just the
// visible viewport. An empty format means PNG.
func (g *GraphicsView) GrabScene(ctx context.Context, format string) (*domain.Image, error) {
	if format == "" {
		format = "PNG"
	}
	reply, err := g.Send(ctx, "grab_graphics_view", map[string]any{"format": format})
	if err != nil {
		return nil, err
	}
	return decodeImage(reply, format)
}
