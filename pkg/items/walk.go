package items

import "iter"

// node is satisfied by the tree item kinds in this package.
type node[T any] interface {
	kids() []T
}

// preorder yields every item reachable from roots exactly once: an item
// first, then its whole subtree, then its next sibling. The sequence is
// lazy and restartable; each range starts from the beginning.
func preorder[T node[T]](roots []T) iter.Seq[T] {
	return func(yield func(T) bool) {
		var walk func(items []T) bool
		walk = func(items []T) bool {
			for _, it := range items {
				if !yield(it) {
					return false
				}
				if !walk(it.kids()) {
					return false
				}
			}
			return true
		}
		walk(roots)
	}
}
