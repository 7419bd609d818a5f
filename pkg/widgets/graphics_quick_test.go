package widgets_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/qpilot/pkg/domain"
	"github.com/aretw0/qpilot/pkg/remote"
	"github.com/aretw0/qpilot/pkg/widgets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphicsView_Items(t *testing.T) {
	s, ch := newTestSession(t)
	gv := &widgets.GraphicsView{}
	require.NoError(t, s.Bind(&gv.ObjectBase, domain.Descriptor(desc(50, "w::scene", "QGraphicsView", "QWidget"))))
	ch.HandleReply("graphicsitems", map[string]any{
		"children": []any{
			map[string]any{
				"viewId":     json.Number("50"),
				"itemId":     json.Number("1"),
				"objectName": "needle",
				"classes":    []any{"QGraphicsObject", "QObject"},
				"children": []any{
					map[string]any{"viewId": json.Number("50"), "itemId": json.Number("2")},
				},
			},
			map[string]any{"viewId": json.Number("50"), "itemId": json.Number("3")},
		},
	})

	scene, err := gv.Items(context.Background())
	require.NoError(t, err)

	assert.Equal(t, uint64(50), ch.CallsFor("graphicsitems")[0].Args["identity"])
	roots := scene.Roots()
	require.Len(t, roots, 2)
	assert.Equal(t, uint64(1), roots[0].ItemID)
	assert.True(t, roots[0].IsObject())
	assert.False(t, roots[1].IsObject())

	var order []uint64
	for it := range scene.All() {
		order = append(order, it.ItemID)
	}
	assert.Equal(t, []uint64{1, 2, 3}, order)
}

func TestGraphicsView_DumpItems(t *testing.T) {
	s, ch := newTestSession(t)
	gv := &widgets.GraphicsView{}
	require.NoError(t, s.Bind(&gv.ObjectBase, domain.Descriptor(desc(50, "w::scene", "QGraphicsView", "QWidget"))))
	ch.HandleReply("graphicsitems", map[string]any{
		"children": []any{
			map[string]any{"viewId": json.Number("50"), "itemId": json.Number("3")},
		},
	})

	var buf bytes.Buffer
	require.NoError(t, gv.DumpItems(context.Background(), &buf))

	assert.Contains(t, buf.String(), `"children"`)
	assert.Contains(t, buf.String(), `"itemId"`)
	// Indented output, for humans.
	assert.Contains(t, buf.String(), "\n    ")
}

func TestGraphicsView_GrabScene(t *testing.T) {
	s, ch := newTestSession(t)
	gv := &widgets.GraphicsView{}
	require.NoError(t, s.Bind(&gv.ObjectBase, domain.Descriptor(desc(50, "w::scene", "QGraphicsView", "QWidget"))))
	ch.HandleReply("grab_graphics_view", map[string]any{"format": "PNG", "data": "c2NlbmU="})

	img, err := gv.GrabScene(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, "PNG", img.Format)
	assert.Equal(t, []byte("scene"), img.Data)
	call := ch.CallsFor("grab_graphics_view")[0]
	assert.Equal(t, uint64(50), call.Args["identity"])
	assert.Equal(t, "PNG", call.Args["format"])
}

func TestQuickWindow_ItemLookups(t *testing.T) {
	s, ch := newTestSession(t, remote.WithAliases(map[string]string{
		"my_rect":           "QQuickView::QQuickItem::QQuickRectangle",
		"other_window_rect": "OtherView::QQuickItem",
	}))
	w := &widgets.QuickWindow{}
	require.NoError(t, s.Bind(&w.ObjectBase, domain.Descriptor(desc(60, "QQuickView", "QQuickView", "QQuickWindow", "QWindow", "QObject"))))
	ch.HandleReply("quick_item_find", desc(61, "QQuickView::QQuickItem::QQuickRectangle", "QQuickRectangle", "QQuickItem", "QObject"))
	ctx := context.Background()

	t.Run("By Relative Path", func(t *testing.T) {
		item, err := w.Item(ctx, "QQuickItem::QQuickRectangle")
		require.NoError(t, err)

		assert.Equal(t, uint64(61), item.ID)
		call := ch.CallsFor("quick_item_find")[0]
		assert.Equal(t, uint64(60), call.Args["windowIdentity"])
		assert.Equal(t, "QQuickItem::QQuickRectangle", call.Args["path"])
		assert.NotContains(t, call.Args, "qid")
	})

	t.Run("By QML Id", func(t *testing.T) {
		item, err := w.ItemByID(ctx, "root.rect")
		require.NoError(t, err)

		assert.Equal(t, uint64(61), item.ID)
		calls := ch.CallsFor("quick_item_find")
		call := calls[len(calls)-1]
		assert.Equal(t, "root.rect", call.Args["qid"])
		assert.NotContains(t, call.Args, "path")
	})

	t.Run("By Alias", func(t *testing.T) {
		item, err := w.ItemByAlias(ctx, "my_rect")
		require.NoError(t, err)

		assert.Equal(t, uint64(61), item.ID)
		calls := ch.CallsFor("quick_item_find")
		call := calls[len(calls)-1]
		// The window prefix is stripped before the probe sees the path.
		assert.Equal(t, "QQuickItem::QQuickRectangle", call.Args["path"])
	})

	t.Run("Alias Outside The Window", func(t *testing.T) {
		_, err := w.ItemByAlias(ctx, "other_window_rect")
		assert.ErrorContains(t, err, "outside window")
	})
}

func TestQuickItem_Click(t *testing.T) {
	s, ch := newTestSession(t)
	w := &widgets.QuickWindow{}
	require.NoError(t, s.Bind(&w.ObjectBase, domain.Descriptor(desc(60, "QQuickView", "QQuickView", "QQuickWindow", "QWindow", "QObject"))))
	ch.HandleReply("quick_item_find", desc(61, "QQuickView::QQuickItem", "QQuickItem", "QObject"))
	ch.HandleReply("quick_item_click", map[string]any{})
	ctx := context.Background()

	item, err := w.Item(ctx, "QQuickItem")
	require.NoError(t, err)

	require.NoError(t, item.Click(ctx))
	assert.Equal(t, uint64(61), ch.CallsFor("quick_item_click")[0].Args["identity"])
}
