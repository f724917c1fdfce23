package cell

import "github.com/pie-flavor/rc-cell/internal/cell/trace"

// WeakCell is a non-owning observer of a slot. Holding one never keeps the
// slot's value alive: once every strong handle is released, Upgrade fails
// forever. Produced by [SharedCell.Downgrade], or empty via [NewWeak].
type WeakCell[T any] struct {
	s *slot[T]
}

// NewWeak returns an empty weak handle that observes no slot and can never
// upgrade. Useful as an initial value for back-reference fields.
func NewWeak[T any]() *WeakCell[T] {
	return &WeakCell[T]{}
}

// Upgrade returns a new strong handle to the slot if at least one strong
// owner still exists, incrementing the strong count. Returns false for an
// empty handle, a released handle, or a slot whose last strong owner is
// gone — and once it returns false for a slot, it does so forever.
func (w *WeakCell[T]) Upgrade() (*SharedCell[T], bool) {
	if w == nil || w.s == nil || w.s.released {
		return nil, false
	}
	w.s.strong++
	if trace.Active() {
		trace.Op("upgrade", w.s.addr()).Int("strong", w.s.strong).Send()
	}
	return &SharedCell[T]{s: w.s}, true
}

// PtrEq reports whether both weak handles observe the identical slot,
// regardless of whether either can still upgrade. Two empty handles
// compare equal.
func (w *WeakCell[T]) PtrEq(other *WeakCell[T]) bool {
	if w == nil || other == nil {
		return false
	}
	return w.s == other.s
}

// Release drops the observer, decrementing the slot's weak count.
// Idempotent per handle; a released or empty handle is a no-op.
//
// A released observer forgets its slot entirely: from then on it behaves
// like an empty handle from [NewWeak], so PtrEq reports it equal to any
// other empty or released handle regardless of which slot it once
// observed.
func (w *WeakCell[T]) Release() {
	if w == nil || w.s == nil {
		return
	}
	sl := w.s
	w.s = nil
	sl.weak--
	if trace.Active() {
		trace.Op("release_weak", sl.addr()).Int("weak", sl.weak).Send()
	}
}

// String identifies the handle without touching the value; a weak handle
// may not be able to read its slot at all.
func (w *WeakCell[T]) String() string {
	return "(WeakCell)"
}
