package cell

import "cmp"

// Equal reports whether two cells hold equal values. This is structural
// equality on the contents, not identity: two distinct cells wrapping
// equal values compare equal. Both slots are read-borrowed for the
// comparison, so Equal panics with a [*BorrowError] if either is
// write-borrowed. Comparing a cell with itself is fine (two read borrows).
//
// Nil and released handles compare by liveness: two dead handles are
// equal, and a dead handle never equals a live one.
func Equal[T comparable](a, b *SharedCell[T]) bool {
	return EqualFunc(a, b, func(x, y T) bool { return x == y })
}

// EqualFunc is [Equal] for element types without built-in equality.
func EqualFunc[T any](a, b *SharedCell[T], eq func(T, T) bool) bool {
	if !a.live() || !b.live() {
		return a.live() == b.live()
	}
	ra := a.Borrow()
	defer ra.Release()
	rb := b.Borrow()
	defer rb.Release()
	return eq(ra.Value(), rb.Value())
}

// Compare orders two cells by their contents, returning -1, 0, or +1 like
// [cmp.Compare]. Same borrow behavior as [Equal]; a dead (nil or
// released) handle orders before any live one, and two dead handles
// compare equal.
func Compare[T cmp.Ordered](a, b *SharedCell[T]) int {
	return CompareFunc(a, b, cmp.Compare[T])
}

// CompareFunc is [Compare] for element types without a built-in order.
func CompareFunc[T any](a, b *SharedCell[T], compare func(T, T) int) int {
	if !a.live() || !b.live() {
		switch {
		case a.live():
			return 1
		case b.live():
			return -1
		default:
			return 0
		}
	}
	ra := a.Borrow()
	defer ra.Release()
	rb := b.Borrow()
	defer rb.Release()
	return compare(ra.Value(), rb.Value())
}
