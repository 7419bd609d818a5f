// Package mcp exposes a connected qpilot client as an MCP server, so
// agent tooling can inspect and drive the instrumented application.
package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/qpilot"
	"github.com/aretw0/qpilot/pkg/domain"
	"github.com/aretw0/qpilot/pkg/items"
	"github.com/aretw0/qpilot/pkg/remote"
	"github.com/aretw0/qpilot/pkg/wait"
	"github.com/aretw0/qpilot/pkg/widgets"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Client defines the interface required by the MCP server to drive the
// application under test.
type Client interface {
	Widget(ctx context.Context, path string, opts ...widgets.Option) (remote.Object, error)
	WidgetByAlias(ctx context.Context, name string, opts ...widgets.Option) (remote.Object, error)
	WidgetsList(ctx context.Context, withProperties bool) (map[string]any, error)
	Grab(ctx context.Context, format string) (*domain.Image, error)
	Quit(ctx context.Context) error
}

// FindResponse describes one resolved widget, aligned across adapters.
type FindResponse struct {
	Identity uint64   `json:"identity" jsonschema_description:"Probe identity of the widget"`
	Path     string   `json:"path" jsonschema_description:"Full designer path of the widget"`
	Classes  []string `json:"classes" jsonschema_description:"Qt class chain, most specific first"`
	Variant  string   `json:"variant" jsonschema_description:"Concrete client-side type the widget resolved to"`
}

// WaitResponse reports the outcome of a bounded property wait.
type WaitResponse struct {
	Settled bool `json:"settled" jsonschema_description:"Whether the property reached the expected value in time"`
}

// Server wraps a qpilot client and exposes it as an MCP Server.
type Server struct {
	client    Client
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance over a connected client.
func NewServer(client Client) *Server {
	s := &Server{
		client:    client,
		mcpServer: server.NewMCPServer("qpilot-mcp", strings.TrimSpace(qpilot.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		// Create a timeout context for the graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		fmt.Println("\nShutdown signal received, shutting down server...")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("CORS Middleware", "method", r.Method, "path", r.URL.Path)
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// widgetTool builds a tool that addresses one widget by path or alias.
func widgetTool(name, description string, extra ...mcp.ToolOption) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithString("path", mcp.Description("Full designer path of the widget, like MainWindow::centralWidget::btnOK")),
		mcp.WithString("alias", mcp.Description("Friendly widget name from the aliases file, used instead of path")),
		mcp.WithNumber("timeout_seconds", mcp.Description("Lookup retry budget in seconds (default 10)")),
	}
	return mcp.NewTool(name, append(opts, extra...)...)
}

// resolve looks the addressed widget up, honoring the timeout argument.
func (s *Server) resolve(ctx context.Context, args map[string]any) (remote.Object, error) {
	var opts []widgets.Option
	if sec, ok := args["timeout_seconds"].(float64); ok && sec > 0 {
		opts = append(opts, widgets.WithTimeout(time.Duration(sec * float64(time.Second))))
	}
	if alias, ok := args["alias"].(string); ok && alias != "" {
		return s.client.WidgetByAlias(ctx, alias, opts...)
	}
	path, _ := args["path"].(string)
	if path == "" {
		return nil, fmt.Errorf("either path or alias is required")
	}
	return s.client.Widget(ctx, path, opts...)
}

func (s *Server) registerTools() {
	// TOOL: find_widget
	findTool := widgetTool("find_widget",
		"Resolve a widget by path or alias and describe it. Fails if the widget does not appear within the timeout.",
		mcp.WithOutputSchema[FindResponse](),
	)
	s.mcpServer.AddTool(findTool, mcp.NewStructuredToolHandler(s.handleFindWidget))

	// TOOL: read_properties
	s.mcpServer.AddTool(widgetTool("read_properties",
		"Read every Qt property of a widget as a JSON object.",
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		o, err := s.resolve(ctx, request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
		}
		props, err := o.AsObject().Properties(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("reading properties: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(props)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: set_property
	s.mcpServer.AddTool(widgetTool("set_property",
		"Set one Qt property on a widget.",
		mcp.WithString("name", mcp.Required(), mcp.Description("Property name, like text or checked")),
		mcp.WithString("value", mcp.Required(), mcp.Description("JSON-encoded property value, like \"hello\", 42 or true")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		name, _ := args["name"].(string)
		raw, _ := args["value"].(string)
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("value is not valid JSON: %v", err)), nil
		}
		o, err := s.resolve(ctx, args)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
		}
		if err := o.AsObject().SetProperty(ctx, name, value); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("setting %s: %v", name, err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("property %s set on %s", name, o.AsObject().Path)), nil
	})

	// TOOL: click_widget
	s.mcpServer.AddTool(widgetTool("click_widget",
		"Click a widget once it is enabled and visible.",
		mcp.WithString("button", mcp.Description("Mouse button: left (default), right or middle")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		o, err := s.resolve(ctx, args)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
		}
		button, _ := args["button"].(string)
		if err := clickObject(ctx, o, domain.MouseButton(button)); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("click failed: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("clicked %s", o.AsObject().Path)), nil
	})

	// TOOL: keyclick
	s.mcpServer.AddTool(widgetTool("keyclick",
		"Type a text into a widget, one key click per character.",
		mcp.WithString("text", mcp.Required(), mcp.Description("Characters to type")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		o, err := s.resolve(ctx, args)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
		}
		typer, ok := o.(interface {
			KeyClick(ctx context.Context, text string) error
		})
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("%s does not accept key clicks", o.AsObject().Path)), nil
		}
		text, _ := args["text"].(string)
		if err := typer.KeyClick(ctx, text); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("keyclick failed: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("typed %q into %s", text, o.AsObject().Path)), nil
	})

	// TOOL: list_tree
	s.mcpServer.AddTool(mcp.NewTool("list_tree",
		mcp.WithDescription("Dump the widget tree of the application."),
		mcp.WithBoolean("with_properties", mcp.Description("Include every property of every widget")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		withProps, _ := request.GetArguments()["with_properties"].(bool)
		tree, err := s.client.WidgetsList(ctx, withProps)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("listing widgets: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(tree)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: model_items
	s.mcpServer.AddTool(widgetTool("model_items",
		"Dump the model items of an item view, or pick one item by its named path.",
		mcp.WithString("named_path", mcp.Description("Slash-separated display values leading to one item, like Parts/Wheel")),
		mcp.WithNumber("match_column", mcp.Description("Column the named path matches against (default 0)")),
		mcp.WithNumber("column", mcp.Description("Column of the item to return from the matched row (default 0)")),
	), s.handleModelItems)

	// TOOL: wait_for_property
	waitTool := widgetTool("wait_for_property",
		"Poll a widget property until it reaches a value or the timeout passes.",
		mcp.WithString("property", mcp.Required(), mcp.Description("Property name to watch")),
		mcp.WithString("value", mcp.Required(), mcp.Description("JSON-encoded value to wait for")),
		mcp.WithOutputSchema[WaitResponse](),
	)
	s.mcpServer.AddTool(waitTool, mcp.NewStructuredToolHandler(s.handleWaitForProperty))

	// TOOL: grab_screenshot
	s.mcpServer.AddTool(mcp.NewTool("grab_screenshot",
		mcp.WithDescription("Take a screenshot of the desktop, or of one widget when path or alias is given."),
		mcp.WithString("path", mcp.Description("Full designer path of the widget to grab")),
		mcp.WithString("alias", mcp.Description("Friendly widget name from the aliases file, used instead of path")),
		mcp.WithString("format", mcp.Description("Image format: PNG (default), JPG or BMP")),
	), s.handleGrabScreenshot)

	// TOOL: quit_app
	s.mcpServer.AddTool(mcp.NewTool("quit_app",
		mcp.WithDescription("Ask the application to exit its event loop."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := s.client.Quit(ctx); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("quit failed: %v", err)), nil
		}
		return mcp.NewToolResultText("application asked to quit"), nil
	})
}

// Handler methods for the larger tools

func (s *Server) handleFindWidget(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (FindResponse, error) {
	o, err := s.resolve(ctx, args)
	if err != nil {
		return FindResponse{}, fmt.Errorf("lookup failed: %w", err)
	}
	base := o.AsObject()
	return FindResponse{
		Identity: base.ID,
		Path:     base.Path,
		Classes:  base.Classes,
		Variant:  fmt.Sprintf("%T", o),
	}, nil
}

func (s *Server) handleWaitForProperty(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (WaitResponse, error) {
	property, _ := args["property"].(string)
	raw, _ := args["value"].(string)
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return WaitResponse{}, fmt.Errorf("value is not valid JSON: %w", err)
	}

	timeout := wait.DefaultTimeout
	if sec, ok := args["timeout_seconds"].(float64); ok && sec > 0 {
		timeout = time.Duration(sec * float64(time.Second))
	}

	o, err := s.resolve(ctx, args)
	if err != nil {
		return WaitResponse{}, fmt.Errorf("lookup failed: %w", err)
	}
	settled, err := o.AsObject().WaitForProperties(ctx,
		map[string]any{property: value}, timeout, wait.DefaultInterval)
	if err != nil {
		return WaitResponse{}, fmt.Errorf("waiting for %s: %w", property, err)
	}
	return WaitResponse{Settled: settled}, nil
}

func (s *Server) handleModelItems(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	o, err := s.resolve(ctx, args)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
	}
	view, ok := o.(interface {
		Model(ctx context.Context) (*widgets.AbstractItemModel, error)
	})
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("%s is not an item view", o.AsObject().Path)), nil
	}
	model, err := view.Model(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reading model: %v", err)), nil
	}
	collection, err := model.Items(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reading items: %v", err)), nil
	}

	if namedPath, ok := args["named_path"].(string); ok && namedPath != "" {
		matchColumn := 0
		if n, ok := args["match_column"].(float64); ok {
			matchColumn = int(n)
		}
		column := 0
		if n, ok := args["column"].(float64); ok {
			column = int(n)
		}
		item, err := collection.ItemByPath(namedPath, matchColumn, column)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("named path: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(itemView(item))
		return mcp.NewToolResultText(string(jsonBytes)), nil
	}

	views := make([]modelItemView, 0, len(collection.Roots()))
	for _, item := range collection.Roots() {
		views = append(views, itemView(item))
	}
	jsonBytes, _ := json.Marshal(views)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleGrabScreenshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	format, _ := args["format"].(string)
	if format == "" {
		format = "PNG"
	}

	var img *domain.Image
	path, _ := args["path"].(string)
	alias, _ := args["alias"].(string)
	if path == "" && alias == "" {
		var err error
		img, err = s.client.Grab(ctx, format)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("grab failed: %v", err)), nil
		}
	} else {
		o, err := s.resolve(ctx, args)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
		}
		grabber, ok := o.(interface {
			Grab(ctx context.Context, format string) (*domain.Image, error)
		})
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("%s cannot be grabbed", o.AsObject().Path)), nil
		}
		img, err = grabber.Grab(ctx, format)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("grab failed: %v", err)), nil
		}
	}

	mimeType := "image/" + strings.ToLower(img.Format)
	data := base64.StdEncoding.EncodeToString(img.Data)
	return mcp.NewToolResultImage("screenshot", data, mimeType), nil
}

// modelItemView is the JSON shape model items take on this surface.
type modelItemView struct {
	Row        int             `json:"row"`
	Column     int             `json:"column"`
	Value      string          `json:"value"`
	CheckState string          `json:"checkState,omitempty"`
	ItemPath   string          `json:"itemPath,omitempty"`
	Children   []modelItemView `json:"children,omitempty"`
}

func itemView(item *items.ModelItem) modelItemView {
	v := modelItemView{
		Row:        item.Row,
		Column:     item.Column,
		Value:      item.Value,
		CheckState: string(item.CheckState),
		ItemPath:   item.ItemPath,
	}
	for _, child := range item.Children {
		v.Children = append(v.Children, itemView(child))
	}
	return v
}

// clickObject clicks whatever variant the lookup produced.
func clickObject(ctx context.Context, o remote.Object, button domain.MouseButton) error {
	switch t := o.(type) {
	case *widgets.QuickItem:
		return t.Click(ctx)
	case interface {
		Click(ctx context.Context, button domain.MouseButton, opts ...widgets.Option) error
	}:
		return t.Click(ctx, button)
	}
	return fmt.Errorf("%s is not clickable", o.AsObject().Path)
}

func (s *Server) registerResources() {
	// EXPOSE: qpilot://tree
	s.mcpServer.AddResource(mcp.NewResource("qpilot://tree", "Current Widget Tree",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		tree, err := s.client.WidgetsList(ctx, false)
		if err != nil {
			return nil, fmt.Errorf("failed to list widgets: %w", err)
		}
		jsonBytes, _ := json.Marshal(tree)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "qpilot://tree",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
