package widgets_test

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/aretw0/qpilot/pkg/adapters/memory"
	"github.com/aretw0/qpilot/pkg/domain"
	"github.com/aretw0/qpilot/pkg/items"
	"github.com/aretw0/qpilot/pkg/remote"
	"github.com/aretw0/qpilot/pkg/widgets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bindItemView(t *testing.T, s *remote.Session, ch *memory.Channel, id uint64, path string) *widgets.AbstractItemView {
	t.Helper()
	v := &widgets.AbstractItemView{}
	require.NoError(t, s.Bind(&v.ObjectBase, domain.Descriptor(desc(id, path, "QListView", "QAbstractItemView", "QWidget"))))
	ch.SeedObject(id, map[string]any{"enabled": true, "visible": true})
	return v
}

// itemCell fakes one model item descriptor.
func itemCell(row, column int, value, itemPath string) map[string]any {
	return map[string]any{
		"modelId":  json.Number("20"),
		"row":      json.Number(strconv.Itoa(row)),
		"column":   json.Number(strconv.Itoa(column)),
		"value":    value,
		"itemPath": itemPath,
	}
}

func TestAbstractItemView_Model(t *testing.T) {
	s, ch := newTestSession(t)
	v := bindItemView(t, s, ch, 15, "w::view")
	ch.HandleReply("model", desc(20, "w::view::model", "QStandardItemModel", "QAbstractItemModel", "QObject"))

	m, err := v.Model(context.Background())
	require.NoError(t, err)

	assert.Equal(t, uint64(20), m.ID)
	assert.Equal(t, uint64(15), ch.CallsFor("model")[0].Args["identity"])
}

func TestAbstractItemModel_Items(t *testing.T) {
	s, ch := newTestSession(t)
	v := bindItemView(t, s, ch, 15, "w::view")
	ch.HandleReply("model", desc(20, "w::view::model", "QStandardItemModel", "QAbstractItemModel", "QObject"))
	ch.HandleReply("model_items", map[string]any{
		"children": []any{
			itemCell(0, 0, "alpha", "0-0"),
			itemCell(0, 1, "beta", "0-1"),
			itemCell(1, 0, "gamma", "1-0"),
		},
	})
	ctx := context.Background()

	m, err := v.Model(ctx)
	require.NoError(t, err)
	entries, err := m.Items(ctx)
	require.NoError(t, err)

	roots := entries.Roots()
	require.Len(t, roots, 3)
	assert.Equal(t, "alpha", roots[0].Value)
	assert.Equal(t, uint64(20), roots[0].ModelID)
	assert.Equal(t, uint64(20), ch.CallsFor("model_items")[0].Args["identity"])
}

func TestAbstractItemView_ItemInteractions(t *testing.T) {
	s, ch := newTestSession(t)
	v := bindItemView(t, s, ch, 15, "w::view")
	ch.HandleReply("model_item_action", map[string]any{})
	it := &items.ModelItem{Row: 1, Column: 0, ItemPath: "1-0"}
	ctx := context.Background()

	t.Run("Select Carries The Item Coordinates", func(t *testing.T) {
		require.NoError(t, v.SelectItem(ctx, it))

		call := ch.CallsFor("model_item_action")[0]
		assert.Equal(t, uint64(15), call.Args["identity"])
		assert.Equal(t, "select", call.Args["itemAction"])
		assert.Equal(t, 1, call.Args["row"])
		assert.Equal(t, 0, call.Args["column"])
		assert.Equal(t, "1-0", call.Args["itemPath"])
		// Plain actions carry no cursor placement.
		assert.NotContains(t, call.Args, "origin")
	})

	t.Run("Edit And Context Menu", func(t *testing.T) {
		require.NoError(t, v.EditItem(ctx, it))
		require.NoError(t, v.OpenContextMenu(ctx, it))

		calls := ch.CallsFor("model_item_action")
		assert.Equal(t, "edit", calls[len(calls)-2].Args["itemAction"])
		assert.Equal(t, "context_menu", calls[len(calls)-1].Args["itemAction"])
	})

	t.Run("Click Places The Cursor", func(t *testing.T) {
		err := v.ClickItem(ctx, it, domain.ButtonMiddle,
			widgets.AtOrigin(domain.OriginRight), widgets.WithOffset(-5, 2))
		require.NoError(t, err)

		calls := ch.CallsFor("model_item_action")
		call := calls[len(calls)-1]
		assert.Equal(t, "middleclick", call.Args["itemAction"])
		assert.Equal(t, "right", call.Args["origin"])
		assert.Equal(t, -5, call.Args["offsetX"])
		assert.Equal(t, 2, call.Args["offsetY"])
	})

	t.Run("Double Click Defaults To The Center", func(t *testing.T) {
		require.NoError(t, v.DoubleClickItem(ctx, it))

		calls := ch.CallsFor("model_item_action")
		call := calls[len(calls)-1]
		assert.Equal(t, "doubleclick", call.Args["itemAction"])
		assert.Equal(t, "center", call.Args["origin"])
	})

	t.Run("Invalid Button Sends Nothing", func(t *testing.T) {
		before := len(ch.CallsFor("model_item_action"))

		err := v.ClickItem(ctx, it, domain.MouseButton("thumb"))

		var inv *domain.InvalidArgumentError
		require.ErrorAs(t, err, &inv)
		assert.Len(t, ch.CallsFor("model_item_action"), before)
	})
}

func TestAbstractItemView_CurrentEditor(t *testing.T) {
	s, ch := newTestSession(t)
	v := bindItemView(t, s, ch, 15, "w::view")
	ctx := context.Background()

	t.Run("Probes The Known Editor Kinds", func(t *testing.T) {
		ch.Handle("widget_by_path", func(args map[string]any) (map[string]any, error) {
			if args["path"] == "w::view::qt_scrollarea_viewport::QSpinBox" {
				return desc(33, "w::view::qt_scrollarea_viewport::QSpinBox", "QSpinBox", "QWidget"), nil
			}
			return nil, &domain.RemoteError{Name: domain.InvalidWidgetPath, Description: "no such editor"}
		})
		ch.SeedObject(33, map[string]any{"enabled": true, "visible": true})

		editor, err := v.CurrentEditor(ctx, "",
			widgets.WithTimeout(20*time.Millisecond), widgets.WithInterval(5*time.Millisecond))
		require.NoError(t, err)
		assert.Equal(t, uint64(33), editor.AsObject().ID)
	})

	t.Run("A Named Kind Skips The Probing", func(t *testing.T) {
		ch.HandleReply("widget_by_path", desc(34, "w::view::qt_scrollarea_viewport::QLineEdit", "QLineEdit", "QWidget"))
		ch.SeedObject(34, map[string]any{"enabled": true, "visible": true})

		editor, err := v.CurrentEditor(ctx, "QLineEdit", fast()...)
		require.NoError(t, err)
		assert.Equal(t, uint64(34), editor.AsObject().ID)
	})

	t.Run("No Editor Open", func(t *testing.T) {
		ch.HandleError("widget_by_path", domain.InvalidWidgetPath, "nothing there")

		_, err := v.CurrentEditor(ctx, "",
			widgets.WithTimeout(10*time.Millisecond), widgets.WithInterval(5*time.Millisecond))

		assert.True(t, domain.IsRemote(err, domain.MissingEditor))
	})
}
