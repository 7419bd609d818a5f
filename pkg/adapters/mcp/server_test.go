package mcp

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/aretw0/qpilot"
	"github.com/aretw0/qpilot/pkg/adapters/memory"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer wires a Server over a client backed by a scripted channel.
func newTestServer(t *testing.T, opts ...qpilot.Option) (*Server, *memory.Channel) {
	t.Helper()
	ch := memory.NewChannel()
	c, err := qpilot.NewFromChannel(ch, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return NewServer(c), ch
}

// scriptButton makes path resolvable as a plain clickable widget.
func scriptButton(ch *memory.Channel, id uint64, path string) {
	ch.HandleReply("widget_by_path", map[string]any{
		"identity": id,
		"path":     path,
		"classes":  []any{"QPushButton", "QWidget"},
	})
	ch.SeedObject(id, map[string]any{"enabled": true, "visible": true, "text": "OK"})
}

// request builds a CallToolRequest carrying the given arguments, for the
// handlers that read them from the request instead of a parameter.
func request(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func TestHandleFindWidget(t *testing.T) {
	s, ch := newTestServer(t)
	scriptButton(ch, 7, "mainWindow::btnOK")

	resp, err := s.handleFindWidget(context.Background(), mcp.CallToolRequest{}, map[string]any{
		"path": "mainWindow::btnOK",
	})

	require.NoError(t, err)
	assert.Equal(t, uint64(7), resp.Identity)
	assert.Equal(t, "mainWindow::btnOK", resp.Path)
	assert.Equal(t, []string{"QPushButton", "QWidget"}, resp.Classes)
	assert.Equal(t, "*widgets.Widget", resp.Variant)
}

func TestHandleFindWidget_Alias(t *testing.T) {
	s, ch := newTestServer(t, qpilot.WithAliasMap(map[string]string{
		"ok": "mainWindow::btnOK",
	}))
	scriptButton(ch, 7, "mainWindow::btnOK")

	resp, err := s.handleFindWidget(context.Background(), mcp.CallToolRequest{}, map[string]any{
		"alias": "ok",
	})

	require.NoError(t, err)
	assert.Equal(t, "mainWindow::btnOK", resp.Path)
}

func TestResolve_RequiresPathOrAlias(t *testing.T) {
	s, _ := newTestServer(t)

	_, err := s.resolve(context.Background(), map[string]any{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "path or alias")
}

func TestHandleWaitForProperty(t *testing.T) {
	t.Run("Settles When The Property Matches", func(t *testing.T) {
		s, ch := newTestServer(t)
		scriptButton(ch, 7, "mainWindow::btnOK")

		resp, err := s.handleWaitForProperty(context.Background(), mcp.CallToolRequest{}, map[string]any{
			"path":     "mainWindow::btnOK",
			"property": "text",
			"value":    `"OK"`,
		})

		require.NoError(t, err)
		assert.True(t, resp.Settled)
	})

	t.Run("Reports An Unmet Condition", func(t *testing.T) {
		s, ch := newTestServer(t)
		scriptButton(ch, 7, "mainWindow::btnOK")

		resp, err := s.handleWaitForProperty(context.Background(), mcp.CallToolRequest{}, map[string]any{
			"path":            "mainWindow::btnOK",
			"property":        "text",
			"value":           `"Cancel"`,
			"timeout_seconds": 0.05,
		})

		require.NoError(t, err)
		assert.False(t, resp.Settled)
	})

	t.Run("Rejects A Value That Is Not JSON", func(t *testing.T) {
		s, _ := newTestServer(t)

		_, err := s.handleWaitForProperty(context.Background(), mcp.CallToolRequest{}, map[string]any{
			"path":     "mainWindow::btnOK",
			"property": "text",
			"value":    "not-json",
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "not valid JSON")
	})
}

func TestHandleModelItems(t *testing.T) {
	s, ch := newTestServer(t)
	ch.HandleReply("widget_by_path", map[string]any{
		"identity": 20,
		"path":     "w::view",
		"classes":  []any{"QTableView", "QAbstractItemView", "QWidget"},
	})
	ch.SeedObject(20, map[string]any{"enabled": true, "visible": true})
	ch.HandleReply("model", map[string]any{"identity": 40})
	ch.HandleReply("model_items", map[string]any{
		"children": []any{
			map[string]any{"row": 0, "column": 0, "value": "alpha", "itemPath": "0-0"},
			map[string]any{"row": 1, "column": 0, "value": "beta", "itemPath": "1-0"},
		},
	})

	result, err := s.handleModelItems(context.Background(), request(map[string]any{
		"path": "w::view",
	}))

	require.NoError(t, err)
	require.False(t, result.IsError)
	text := result.Content[0].(mcp.TextContent).Text
	assert.Contains(t, text, `"value":"alpha"`)
	assert.Contains(t, text, `"value":"beta"`)

	// A named path narrows the dump to one item.
	result, err = s.handleModelItems(context.Background(), request(map[string]any{
		"path":       "w::view",
		"named_path": "beta",
	}))

	require.NoError(t, err)
	require.False(t, result.IsError)
	text = result.Content[0].(mcp.TextContent).Text
	assert.Contains(t, text, `"value":"beta"`)
	assert.NotContains(t, text, `"value":"alpha"`)
}

func TestHandleModelItems_NotAView(t *testing.T) {
	s, ch := newTestServer(t)
	scriptButton(ch, 7, "mainWindow::btnOK")

	result, err := s.handleModelItems(context.Background(), request(map[string]any{
		"path": "mainWindow::btnOK",
	}))

	require.NoError(t, err)
	require.True(t, result.IsError)
	text := result.Content[0].(mcp.TextContent).Text
	assert.Contains(t, text, "not an item view")
}

func TestHandleGrabScreenshot(t *testing.T) {
	s, ch := newTestServer(t)
	ch.HandleReply("grab", map[string]any{
		"format": "PNG",
		"data":   base64.StdEncoding.EncodeToString([]byte("shot")),
	})

	result, err := s.handleGrabScreenshot(context.Background(), request(map[string]any{}))

	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Len(t, result.Content, 2)
	img := result.Content[1].(mcp.ImageContent)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("shot")), img.Data)
	assert.Empty(t, ch.CallsFor("widget_by_path"))
}
