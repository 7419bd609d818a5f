/*
Package items models the contents of remote item models and graphics
scenes: trees of plain value nodes snapshotted in one command round trip.

Model items (rows and cells of a QAbstractItemModel) and graphics items
(QGraphicsScene entries) share the same construction and traversal
machinery: children are built depth-first in a single pass, each child
dispatched through a registry so callers can substitute their own item
variants, and collections are walked lazily in pre-order.

The named-path resolver turns display text like "Devices/USB/Mouse" into
the concrete row of a tree model without the caller touching row and
column indexes.
*/
package items
