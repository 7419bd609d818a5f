package widgets

import (
	"github.com/aretw0/qpilot/pkg/domain"
	"github.com/aretw0/qpilot/pkg/remote"
)

// RegisterDefaults installs the standard class table on the session's
// object registry. Call it once while the client is assembled; later
// registrations for the same class replace these.
func RegisterDefaults(s *remote.Session) {
	register[Widget](s, "QWidget", "Widget")
	register[AbstractItemView](s, "QAbstractItemView", "AbstractItemView")
	register[TableView](s, "QTableView", "TableView")
	register[TreeView](s, "QTreeView", "TreeView")
	register[TabBar](s, "QTabBar", "TabBar")
	register[ComboBox](s, "QComboBox", "ComboBox")
	register[HeaderView](s, "QHeaderView", "HeaderView")
	register[GraphicsView](s, "QGraphicsView", "GraphicsView")
	register[QuickItem](s, "QQuickItem", "QuickItem")
	register[QuickWindow](s, "QQuickWindow", "QuickWindow")
}

// register wires one widget type into the session's registry. PT names
// the pointer form of T so the builder can hand concrete instances out
// behind the remote.Object interface.
func register[T any, PT interface {
	*T
	remote.Object
}](s *remote.Session, class, variant string) {
	s.ObjectRegistry().Register(class, variant, func(d domain.Descriptor) (remote.Object, error) {
		v := PT(new(T))
		if err := s.Bind(v.AsObject(), d); err != nil {
			return nil, err
		}
		return v, nil
	})
}
