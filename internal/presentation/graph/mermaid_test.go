package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/qpilot/internal/presentation/graph"
)

func widget(path string, classes []any, children map[string]any) map[string]any {
	w := map[string]any{
		"path":    path,
		"classes": classes,
	}
	if children != nil {
		w["children"] = children
	}
	return w
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		tree     map[string]any
		overlay  *graph.Overlay
		contains []string
	}{
		{
			name: "Window Shape",
			tree: map[string]any{
				"mainWindow": widget("mainWindow", []any{"QMainWindow", "QWidget"}, nil),
			},
			contains: []string{
				`mainWindow(("mainWindow <br/> QMainWindow"))`,
			},
		},
		{
			name: "Button And Input Shapes",
			tree: map[string]any{
				"btnOK":   widget("btnOK", []any{"QPushButton", "QAbstractButton", "QWidget"}, nil),
				"edtName": widget("edtName", []any{"QLineEdit", "QWidget"}, nil),
			},
			contains: []string{
				`btnOK[["btnOK <br/> QPushButton"]]`,
				`edtName[/"edtName <br/> QLineEdit"/]`,
			},
		},
		{
			name: "Plain Widgets Drop The Class Annotation",
			tree: map[string]any{
				"central": widget("central", []any{"QWidget"}, nil),
			},
			contains: []string{
				`central["central"]`,
			},
		},
		{
			name: "Edges Follow Nesting",
			tree: map[string]any{
				"mainWindow": widget("mainWindow", []any{"QMainWindow", "QWidget"}, map[string]any{
					"btnOK": widget("mainWindow::btnOK", []any{"QPushButton", "QWidget"}, nil),
				}),
			},
			contains: []string{
				"mainWindow --> mainWindow__btnOK",
			},
		},
		{
			name: "ID Sanitization",
			tree: map[string]any{
				"my-dialog.v2": widget("my-dialog.v2", []any{"QDialog", "QWidget"}, nil),
			},
			contains: []string{
				`my_dialog_v2(("my-dialog.v2 <br/> QDialog"))`,
			},
		},
		{
			name: "Active Overlay",
			tree: map[string]any{
				"mainWindow": widget("mainWindow", []any{"QMainWindow", "QWidget"}, nil),
			},
			overlay: &graph.Overlay{ActivePath: "mainWindow"},
			contains: []string{
				"classDef active",
				"class mainWindow active;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.tree, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
		})
	}
}
