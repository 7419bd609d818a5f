package items

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/qpilot/pkg/domain"
)

// RowByNamedPath resolves a display-text path against the tree and returns
// the full row of the final segment, sorted ascending by column.
//
// Each segment is matched, in item order, against the Value of cells whose
// Column equals matchColumn; the first match wins, even when duplicates
// exist. Intermediate matches descend into the matched cell's children.
// When the last segment matches, every cell at that level sharing the
// matched row is returned. A segment with no match fails immediately;
// there is no backtracking into sibling subtrees.
func (c *ModelItems) RowByNamedPath(segments []string, matchColumn int) ([]*ModelItem, error) {
	full := strings.Join(segments, "/")
	if len(segments) == 0 {
		return nil, &domain.NotFoundError{Entity: "model item", Value: "", Location: "empty named path"}
	}

	level := c.items
	for len(segments) > 0 {
		segment := segments[0]
		segments = segments[1:]

		var found *ModelItem
		for _, it := range level {
			if it.Column == matchColumn && it.Value == segment {
				found = it
				break
			}
		}
		if found == nil {
			return nil, &domain.NotFoundError{
				Entity:     "model item",
				Value:      segment,
				Location:   fmt.Sprintf("named path %q", full),
				Candidates: valuesAt(level, matchColumn),
			}
		}
		if len(segments) > 0 {
			level = found.Children
			continue
		}

		row := make([]*ModelItem, 0, 4)
		for _, it := range level {
			if it.Row == found.Row {
				row = append(row, it)
			}
		}
		sort.Slice(row, func(a, b int) bool { return row[a].Column < row[b].Column })
		return row, nil
	}
	return nil, nil // unreachable, the loop always returns
}

// ItemByNamedPath resolves the named path and picks one cell of the final
// row by position. The row is sorted by column, so with contiguous columns
// the position equals the column index.
func (c *ModelItems) ItemByNamedPath(segments []string, matchColumn, column int) (*ModelItem, error) {
	row, err := c.RowByNamedPath(segments, matchColumn)
	if err != nil {
		return nil, err
	}
	if column < 0 || column >= len(row) {
		return nil, &domain.NotFoundError{
			Entity:   "column",
			Value:    strconv.Itoa(column),
			Location: fmt.Sprintf("named path %q (row has %d cells)", strings.Join(segments, "/"), len(row)),
		}
	}
	return row[column], nil
}

// RowByPath splits path on "/" and resolves it with RowByNamedPath.
func (c *ModelItems) RowByPath(path string, matchColumn int) ([]*ModelItem, error) {
	return c.RowByNamedPath(strings.Split(path, "/"), matchColumn)
}

// ItemByPath splits path on "/" and resolves it with ItemByNamedPath.
func (c *ModelItems) ItemByPath(path string, matchColumn, column int) (*ModelItem, error) {
	return c.ItemByNamedPath(strings.Split(path, "/"), matchColumn, column)
}

// valuesAt lists the values present at matchColumn on one level, for error
// reporting.
func valuesAt(level []*ModelItem, matchColumn int) []string {
	out := make([]string, 0, len(level))
	for _, it := range level {
		if it.Column == matchColumn {
			out = append(out, it.Value)
		}
	}
	return out
}
