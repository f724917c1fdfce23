package cell

import "github.com/pie-flavor/rc-cell/internal/cell/trace"

// Ref is a scoped shared (read) borrow of a cell's slot, returned by
// [SharedCell.Borrow]. The slot stays read-borrowed until Release is
// called; hold the guard as briefly as possible and release it with defer:
//
//	r := c.Borrow()
//	defer r.Release()
//	use(r.Value())
type Ref[T any] struct {
	sl   *slot[T]
	done bool
}

// Value returns a copy of the borrowed value. Panics if the guard has been
// released.
func (r *Ref[T]) Value() T {
	if r == nil || r.done {
		panic("cell: Value on released Ref")
	}
	return r.sl.value
}

// Release ends the borrow. Idempotent: releasing twice is a no-op.
func (r *Ref[T]) Release() {
	if r == nil || r.done {
		return
	}
	r.done = true
	r.sl.state.ReleaseRead()
	if trace.Active() {
		trace.Op("release_borrow", r.sl.addr()).Int("readers", r.sl.state.Readers()).Send()
	}
}

// RefMut is the scoped exclusive (write) borrow, returned by
// [SharedCell.BorrowMut]. While live, no other borrow of the slot can be
// taken. Mutate through the pointer from [RefMut.Value]:
//
//	m := c.BorrowMut()
//	defer m.Release()
//	*m.Value() = next
type RefMut[T any] struct {
	sl   *slot[T]
	done bool
}

// Value returns a pointer to the slot's value. The pointer is valid only
// until Release; keeping it alive past the guard defeats the borrow
// checking. Panics if the guard has been released.
func (m *RefMut[T]) Value() *T {
	if m == nil || m.done {
		panic("cell: Value on released RefMut")
	}
	return &m.sl.value
}

// Set stores value in the slot. Shorthand for *m.Value() = value.
func (m *RefMut[T]) Set(value T) {
	*m.Value() = value
}

// Release ends the borrow. Idempotent: releasing twice is a no-op.
func (m *RefMut[T]) Release() {
	if m == nil || m.done {
		return
	}
	m.done = true
	m.sl.state.ReleaseWrite()
	if trace.Active() {
		trace.Op("release_borrow_mut", m.sl.addr()).Send()
	}
}
