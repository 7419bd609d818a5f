package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/qpilot/pkg/domain"
)

// Overlay contains dynamic state data to visualize on the tree.
type Overlay struct {
	ActivePath string
}

// GenerateMermaid produces a Mermaid flowchart syntax string from a widget
// tree as the widgets_list command reports it.
// It applies semantic styling:
// - Window (QMainWindow, QDialog, ...): ((Circle))
// - Button: [[Subroutine]]
// - Text input: [/Parallelogram/]
// - Default: [Rectangle]
// It also marks the active window if an overlay names one.
func GenerateMermaid(tree map[string]any, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	writeLevel(&sb, tree, "")

	if overlay != nil && overlay.ActivePath != "" {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef active fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		sb.WriteString(fmt.Sprintf("    class %s active;\n", sanitizeMermaidID(overlay.ActivePath)))
	}

	return sb.String()
}

// writeLevel emits one nesting level of the tree. Names are sorted so the
// output is stable; the probe hands the level over as a JSON object.
func writeLevel(sb *strings.Builder, level map[string]any, parentID string) {
	names := make([]string, 0, len(level))
	for name := range level {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		dump, ok := level[name].(map[string]any)
		if !ok {
			continue
		}
		d := domain.Descriptor(dump)

		id := parentID + sanitizeMermaidID(name)
		if path := d.Path(); path != "" {
			id = sanitizeMermaidID(path)
		}

		opener, closer := shapeFor(d.Classes())
		label := strings.ReplaceAll(name, "\"", "'")
		if class := displayClass(d.Classes()); class != "" {
			label = fmt.Sprintf("%s <br/> %s", label, class)
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", id, opener, label, closer))

		if parentID != "" {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", parentID, id))
		}

		if children, ok := dump["children"].(map[string]any); ok {
			writeLevel(sb, children, id)
		}
	}
}

// shapeFor picks the node shape from the class chain, most derived class
// first, so a QPushButton stays a button even though it is also a QWidget.
func shapeFor(classes []string) (string, string) {
	for _, c := range classes {
		switch c {
		case "QMainWindow", "QDialog", "QMessageBox", "QWindow", "QQuickWindow":
			return "((", "))" // Circle
		case "QPushButton", "QToolButton", "QCheckBox", "QRadioButton", "QAbstractButton":
			return "[[", "]]" // Subroutine
		case "QLineEdit", "QTextEdit", "QPlainTextEdit", "QComboBox", "QAbstractSpinBox":
			return "[/", "/]" // Parallelogram (Input)
		}
	}
	return "[", "]"
}

// displayClass returns the class worth showing in the label, which is the
// most derived one unless that is plain QWidget.
func displayClass(classes []string) string {
	if len(classes) == 0 || classes[0] == "QWidget" {
		return ""
	}
	return classes[0]
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, ":", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
