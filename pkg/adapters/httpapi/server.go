// Package httpapi exposes a connected qpilot client as a small REST
// bridge, so harnesses in other languages can drive the application
// without speaking the probe protocol themselves.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/qpilot"
	"github.com/aretw0/qpilot/pkg/adapters/middleware"
	"github.com/aretw0/qpilot/pkg/domain"
	"github.com/aretw0/qpilot/pkg/items"
	"github.com/aretw0/qpilot/pkg/remote"
	"github.com/aretw0/qpilot/pkg/wait"
	"github.com/aretw0/qpilot/pkg/widgets"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Client defines the interface for the qpilot client the bridge drives.
type Client interface {
	Widget(ctx context.Context, path string, opts ...widgets.Option) (remote.Object, error)
	WidgetsList(ctx context.Context, withProperties bool) (map[string]any, error)
	Commands(ctx context.Context) ([]string, error)
	Grab(ctx context.Context, format string) (*domain.Image, error)
	Addr() string
}

// Server holds the handlers of the bridge. Trace is optional; when set,
// GET /debug/trace serves the recorded probe exchanges.
type Server struct {
	Client Client
	Trace  *middleware.Recorder
}

// NewHandler creates a new HTTP handler over the client.
func NewHandler(client Client, trace *middleware.Recorder) http.Handler {
	server := &Server{Client: client, Trace: trace}
	r := chi.NewRouter()

	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/commands", server.GetCommands)
	r.Get("/tree", server.GetTree)
	r.Route("/object/{path}", func(r chi.Router) {
		r.Get("/properties", server.GetProperties)
		r.Put("/properties", server.PutProperties)
		r.Post("/click", server.PostClick)
		r.Post("/keyclick", server.PostKeyClick)
		r.Get("/items", server.GetItems)
	})
	r.Post("/wait", server.PostWait)
	r.Get("/grab", server.GetGrab)
	r.Get("/debug/trace", server.GetTrace)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return enableCORS(r)
}

// Serve runs the handler on addr until ctx is canceled, then shuts down
// gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("HTTP bridge listening", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok"}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{
		"app":     "qpilot-http",
		"version": strings.TrimSpace(qpilot.Version),
		"probe":   s.Client.Addr(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// GetCommands handles the GET /commands request.
func (s *Server) GetCommands(w http.ResponseWriter, r *http.Request) {
	commands, err := s.Client.Commands(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Commands error: %v", err), httpStatus(err))
		slog.Error("Commands failed", "error", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"commands": commands})
}

// GetTree handles the GET /tree request.
func (s *Server) GetTree(w http.ResponseWriter, r *http.Request) {
	withProps := r.URL.Query().Get("with_properties") == "1"
	tree, err := s.Client.WidgetsList(r.Context(), withProps)
	if err != nil {
		http.Error(w, fmt.Sprintf("Tree error: %v", err), httpStatus(err))
		slog.Error("Tree failed", "error", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(tree); err != nil {
		slog.Error("Tree response encode failed", "error", err)
	}
}

// GetProperties handles the GET /object/{path}/properties request.
func (s *Server) GetProperties(w http.ResponseWriter, r *http.Request) {
	o, ok := s.widget(w, r)
	if !ok {
		return
	}
	props, err := o.AsObject().Properties(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Properties error: %v", err), httpStatus(err))
		slog.Error("Properties failed", "error", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(props); err != nil {
		slog.Error("Properties response encode failed", "error", err)
	}
}

// PutProperties handles the PUT /object/{path}/properties request.
func (s *Server) PutProperties(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		slog.Warn("PutProperties: Invalid request body", "error", err)
		return
	}
	o, ok := s.widget(w, r)
	if !ok {
		return
	}
	if err := o.AsObject().SetProperties(r.Context(), body); err != nil {
		http.Error(w, fmt.Sprintf("SetProperties error: %v", err), httpStatus(err))
		slog.Error("SetProperties failed", "error", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PostClick handles the POST /object/{path}/click request.
func (s *Server) PostClick(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Button string `json:"button"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			slog.Warn("PostClick: Invalid request body", "error", err)
			return
		}
	}
	o, ok := s.widget(w, r)
	if !ok {
		return
	}
	if err := clickObject(r.Context(), o, domain.MouseButton(body.Button)); err != nil {
		http.Error(w, fmt.Sprintf("Click error: %v", err), httpStatus(err))
		slog.Error("Click failed", "error", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PostKeyClick handles the POST /object/{path}/keyclick request.
func (s *Server) PostKeyClick(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		slog.Warn("PostKeyClick: Invalid request body", "error", err)
		return
	}
	o, ok := s.widget(w, r)
	if !ok {
		return
	}
	typer, isTyper := o.(interface {
		KeyClick(ctx context.Context, text string) error
	})
	if !isTyper {
		http.Error(w, "Widget does not accept key clicks", http.StatusBadRequest)
		return
	}
	if err := typer.KeyClick(r.Context(), body.Text); err != nil {
		http.Error(w, fmt.Sprintf("KeyClick error: %v", err), httpStatus(err))
		slog.Error("KeyClick failed", "error", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetItems handles the GET /object/{path}/items request.
func (s *Server) GetItems(w http.ResponseWriter, r *http.Request) {
	o, ok := s.widget(w, r)
	if !ok {
		return
	}
	view, isView := o.(interface {
		Model(ctx context.Context) (*widgets.AbstractItemModel, error)
	})
	if !isView {
		http.Error(w, "Widget is not an item view", http.StatusBadRequest)
		return
	}
	model, err := view.Model(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Model error: %v", err), httpStatus(err))
		slog.Error("Model failed", "error", err)
		return
	}
	collection, err := model.Items(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Items error: %v", err), httpStatus(err))
		slog.Error("Items failed", "error", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	query := r.URL.Query()
	if namedPath := query.Get("named_path"); namedPath != "" {
		item, err := collection.ItemByPath(namedPath,
			queryInt(query.Get("match_column")), queryInt(query.Get("column")))
		if err != nil {
			http.Error(w, fmt.Sprintf("Named path error: %v", err), httpStatus(err))
			return
		}
		json.NewEncoder(w).Encode(itemView(item))
		return
	}

	views := make([]modelItemView, 0, len(collection.Roots()))
	for _, item := range collection.Roots() {
		views = append(views, itemView(item))
	}
	json.NewEncoder(w).Encode(views)
}

// WaitRequest is the body of POST /wait.
type WaitRequest struct {
	Path      string          `json:"path"`
	Property  string          `json:"property"`
	Value     json.RawMessage `json:"value"`
	TimeoutMS int             `json:"timeoutMs"`
}

// PostWait handles the POST /wait request.
func (s *Server) PostWait(w http.ResponseWriter, r *http.Request) {
	var body WaitRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		slog.Warn("PostWait: Invalid request body", "error", err)
		return
	}
	if body.Path == "" || body.Property == "" {
		http.Error(w, "path and property are required", http.StatusBadRequest)
		return
	}
	var value any
	if err := json.Unmarshal(body.Value, &value); err != nil {
		http.Error(w, "value is not valid JSON", http.StatusBadRequest)
		return
	}
	timeout := wait.DefaultTimeout
	if body.TimeoutMS > 0 {
		timeout = time.Duration(body.TimeoutMS) * time.Millisecond
	}

	o, err := s.Client.Widget(r.Context(), body.Path)
	if err != nil {
		http.Error(w, fmt.Sprintf("Lookup error: %v", err), httpStatus(err))
		return
	}
	settled, err := o.AsObject().WaitForProperties(r.Context(),
		map[string]any{body.Property: value}, timeout, wait.DefaultInterval)
	if err != nil {
		http.Error(w, fmt.Sprintf("Wait error: %v", err), httpStatus(err))
		slog.Error("Wait failed", "error", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"settled": settled})
}

// GetGrab handles the GET /grab request. The image is served raw, with
// its MIME type.
func (s *Server) GetGrab(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	format := query.Get("format")
	if format == "" {
		format = "PNG"
	}

	var img *domain.Image
	var err error
	if path := query.Get("path"); path != "" {
		var o remote.Object
		o, err = s.Client.Widget(r.Context(), path, lookupOpts(r)...)
		if err != nil {
			http.Error(w, fmt.Sprintf("Lookup error: %v", err), httpStatus(err))
			return
		}
		grabber, isGrabber := o.(interface {
			Grab(ctx context.Context, format string) (*domain.Image, error)
		})
		if !isGrabber {
			http.Error(w, "Widget cannot be grabbed", http.StatusBadRequest)
			return
		}
		img, err = grabber.Grab(r.Context(), format)
	} else {
		img, err = s.Client.Grab(r.Context(), format)
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Grab error: %v", err), httpStatus(err))
		slog.Error("Grab failed", "error", err)
		return
	}

	w.Header().Set("Content-Type", "image/"+strings.ToLower(img.Format))
	w.Write(img.Data)
}

// GetTrace handles the GET /debug/trace request.
func (s *Server) GetTrace(w http.ResponseWriter, r *http.Request) {
	exchanges := []middleware.Exchange{}
	if s.Trace != nil {
		exchanges = s.Trace.Exchanges()
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(exchanges); err != nil {
		slog.Error("Trace response encode failed", "error", err)
	}
}

// -- Helpers --

// widget resolves the {path} route parameter. A false return means the
// response has already been written.
func (s *Server) widget(w http.ResponseWriter, r *http.Request) (remote.Object, bool) {
	raw := chi.URLParam(r, "path")
	path, err := url.PathUnescape(raw)
	if err != nil {
		path = raw
	}
	o, err := s.Client.Widget(r.Context(), path, lookupOpts(r)...)
	if err != nil {
		http.Error(w, fmt.Sprintf("Lookup error: %v", err), httpStatus(err))
		slog.Warn("Lookup failed", "path", path, "error", err)
		return nil, false
	}
	return o, true
}

// lookupOpts reads the optional timeout_ms query parameter.
func lookupOpts(r *http.Request) []widgets.Option {
	ms := queryInt(r.URL.Query().Get("timeout_ms"))
	if ms <= 0 {
		return nil
	}
	return []widgets.Option{widgets.WithTimeout(time.Duration(ms) * time.Millisecond)}
}

func queryInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// httpStatus maps client errors onto response codes. Lookups that ran out
// of time are 404s; locally rejected arguments are 400s.
func httpStatus(err error) int {
	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound
	}
	var invalid *domain.InvalidArgumentError
	if errors.As(err, &invalid) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
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
