/*
Package widgets provides typed handles for the widget kinds the probe can
drive, plus the finders that look them up.

Lookups go through the session's object registry, so a descriptor whose
class chain names one of the registered Qt classes comes back as the
matching Go type. RegisterDefaults installs the standard table:

	QAbstractItemView  AbstractItemView
	QTableView         TableView
	QTreeView          TreeView
	QTabBar            TabBar
	QComboBox          ComboBox
	QHeaderView        HeaderView
	QGraphicsView      GraphicsView
	QQuickItem         QuickItem
	QQuickWindow       QuickWindow

Everything else resolves to the plain Widget fallback.

# Key Entities

  - Widget: base handle with click, keyboard, geometry and grab operations.
  - Action: QAction handle with synchronous and asynchronous trigger.
  - AbstractItemModel / AbstractItemView: model item access and item
    interactions for the view families.
  - Finders: ByPath, Active, ActionByPath. They retry until the object
    shows up and then wait for it to settle, both bounded by options.
*/
package widgets
