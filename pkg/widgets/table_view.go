package widgets

import (
	"context"
	"fmt"

	"github.com/aretw0/qpilot/pkg/domain"
	"github.com/aretw0/qpilot/pkg/remote"
)

// TableView drives a QTableView.
type TableView struct {
	AbstractItemView
}

// VerticalHeader returns the header carrying the row labels.
func (t *TableView) VerticalHeader(ctx context.Context, opts ...Option) (*HeaderView, error) {
	return headerFromView(ctx, &t.ObjectBase, domain.Vertical, opts)
}

// HorizontalHeader returns the header carrying the column labels.
func (t *TableView) HorizontalHeader(ctx context.Context, opts ...Option) (*HeaderView, error) {
	return headerFromView(ctx, &t.ObjectBase, domain.Horizontal, opts)
}

// TreeView drives a QTreeView.
type TreeView struct {
	AbstractItemView
}

// Header returns the column header of the tree.
func (t *TreeView) Header(ctx context.Context, opts ...Option) (*HeaderView, error) {
	return headerFromView(ctx, &t.ObjectBase, "", opts)
}

func headerFromView(ctx context.Context, o *remote.ObjectBase, orientation domain.Orientation, opts []Option) (*HeaderView, error) {
	args := map[string]any{}
	if orientation != "" {
		args["orientation"] = string(orientation)
	}
	reply, err := o.Send(ctx, "headerview_path_from_view", args)
	if err != nil {
		return nil, err
	}
	path, _ := reply["headerPath"].(string)

	found, err := ByPath(ctx, o.Session(), path, opts...)
	if err != nil {
		return nil, err
	}
	h, ok := found.(*HeaderView)
	if !ok {
		return nil, fmt.Errorf("path %q did not resolve to a header view", path)
	}
	return h, nil
}
