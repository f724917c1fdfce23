package cell

import (
	"fmt"
	"unsafe"

	"github.com/pie-flavor/rc-cell/internal/cell/borrowstate"
	"github.com/pie-flavor/rc-cell/internal/cell/goid"
	"github.com/pie-flavor/rc-cell/internal/cell/report"
	"github.com/pie-flavor/rc-cell/internal/cell/stackdepot"
	"github.com/pie-flavor/rc-cell/internal/cell/trace"
)

// slot is the single heap location shared by every handle to one logical
// value. It carries the value, both reference counts, and the borrow flag.
//
// Invariant: strong and weak never go negative; once released is set it
// never clears, and value holds the zero value from then on.
type slot[T any] struct {
	value  T
	strong int
	weak   int
	state  *borrowstate.State

	// released marks the Live→Released transition: the last strong handle
	// is gone and upgrades must fail forever.
	released bool

	// owner is the goroutine that created the slot. Only recorded in
	// debug mode, only used to flag cross-goroutine access.
	owner int64
}

// addr identifies the slot in reports and trace output.
func (s *slot[T]) addr() uintptr {
	//nolint:gosec // identity only, the pointer is never reconstructed
	return uintptr(unsafe.Pointer(s))
}

// origin describes the current access for borrow bookkeeping. In debug
// mode it captures the goroutine ID and the borrow site, and flags access
// from a non-owner goroutine; otherwise it is free.
func (s *slot[T]) origin(mutable bool) borrowstate.Origin {
	if !trace.Debug() {
		return borrowstate.Origin{Mutable: mutable}
	}
	gid := goid.Get()
	if s.owner != 0 && gid != s.owner {
		trace.CrossGoroutine(s.addr(), s.owner, gid)
	}
	return borrowstate.Origin{
		Mutable:   mutable,
		Goroutine: gid,
		// Skip one frame so the trace starts at the exported entry point.
		Stack: stackdepot.Capture(1),
	}
}

// conflict builds the BorrowError for a failed access against this slot.
func (s *slot[T]) conflict(attempted report.Kind, attemptedBy borrowstate.Origin, blocked borrowstate.Origin) *BorrowError {
	outstanding := report.Read
	if blocked.Mutable {
		outstanding = report.Write
	}
	return &BorrowError{conflict: report.Conflict{
		Attempted: report.Access{
			Kind:      attempted,
			Slot:      s.addr(),
			Goroutine: attemptedBy.Goroutine,
			Stack:     attemptedBy.Stack,
		},
		Outstanding: report.Access{
			Kind:      outstanding,
			Slot:      s.addr(),
			Goroutine: blocked.Goroutine,
			Stack:     blocked.Stack,
		},
	}}
}

// SharedCell is a strong, reference-counted handle to a mutable slot.
//
// Clones share the slot: mutating through one clone is visible through all
// of them, and the slot lives until the last clone is released. The zero
// SharedCell is not usable; construct with [New] or [NewFromPtr].
//
// SharedCell is not safe for concurrent use. See the package documentation
// for the single-owner-goroutine model.
type SharedCell[T any] struct {
	s *slot[T]
}

// New allocates a slot holding value and returns the first strong handle
// to it. The strong count starts at 1.
func New[T any](value T) *SharedCell[T] {
	sl := &slot[T]{
		value:  value,
		strong: 1,
		state:  borrowstate.New(trace.Debug()),
	}
	if trace.Debug() {
		sl.owner = goid.Get()
	}
	if trace.Active() {
		trace.Op("new", sl.addr()).Send()
	}
	return &SharedCell[T]{s: sl}
}

// NewFromPtr constructs a cell from an already heap-allocated value,
// taking ownership of it. The pointer must not be used afterwards; the
// cell's borrow checking cannot see writes through it. Panics if p is nil.
func NewFromPtr[T any](p *T) *SharedCell[T] {
	if p == nil {
		panic("cell: NewFromPtr with nil pointer")
	}
	return New(*p)
}

// live reports whether the handle still owns a slot. A nil handle is not
// live.
func (c *SharedCell[T]) live() bool {
	return c != nil && c.s != nil
}

// mustLive panics if the handle has already been released or consumed.
func (c *SharedCell[T]) mustLive(op string) *slot[T] {
	if c == nil || c.s == nil {
		panic("cell: " + op + " on released SharedCell")
	}
	return c.s
}

// Clone returns a new strong handle to the same slot and increments the
// strong count. The clone must itself be released eventually.
func (c *SharedCell[T]) Clone() *SharedCell[T] {
	sl := c.mustLive("Clone")
	sl.strong++
	if trace.Active() {
		trace.Op("clone", sl.addr()).Int("strong", sl.strong).Send()
	}
	return &SharedCell[T]{s: sl}
}

// Release drops this strong handle. Releasing the last strong handle
// destroys the slot's value: the value is zeroed, and every WeakCell
// derived from the slot permanently loses the ability to upgrade.
//
// Release is idempotent per handle; releasing an already-released handle
// is a no-op. Releasing the last strong handle while a borrow guard is
// still live panics, since the guard would otherwise read a destroyed
// value.
func (c *SharedCell[T]) Release() {
	if c == nil || c.s == nil {
		return
	}
	sl := c.s
	c.s = nil

	sl.strong--
	if trace.Active() {
		trace.Op("release", sl.addr()).Int("strong", sl.strong).Send()
	}
	if sl.strong > 0 {
		return
	}

	if !sl.state.Free() {
		panic(fmt.Sprintf("cell: released last strong handle with live borrow (state %s)", sl.state))
	}

	// Live→Released. Zero the value so the slot keeps nothing alive for
	// the benefit of weak observers that outlive it.
	var zero T
	sl.value = zero
	sl.released = true
}

// TryUnwrap consumes the handle and returns the inner value if the caller
// is the sole strong owner. Outstanding weak observers do not block
// unwrapping; they could never observe the slot again anyway.
//
// On failure the handle is unchanged and remains valid: [ErrNotUnique] if
// other strong handles exist, or a [*BorrowError] if a borrow guard is
// still live on the slot.
func (c *SharedCell[T]) TryUnwrap() (T, error) {
	sl := c.mustLive("TryUnwrap")

	var zero T
	if sl.strong != 1 {
		return zero, ErrNotUnique
	}
	// A live guard blocks extraction; surface it as the conflict it is
	// rather than inventing a third failure kind.
	mut, err := c.TryBorrowMut()
	if err != nil {
		return zero, err
	}
	mut.Release()

	value := sl.value
	sl.value = zero
	sl.released = true
	sl.strong = 0
	c.s = nil

	if trace.Active() {
		trace.Op("unwrap", sl.addr()).Send()
	}
	return value, nil
}

// Downgrade returns a new weak observer of the slot. The strong count is
// unaffected; the weak count increments.
func (c *SharedCell[T]) Downgrade() *WeakCell[T] {
	sl := c.mustLive("Downgrade")
	sl.weak++
	if trace.Active() {
		trace.Op("downgrade", sl.addr()).Int("weak", sl.weak).Send()
	}
	return &WeakCell[T]{s: sl}
}

// StrongCount returns the number of strong handles to the slot. The value
// is a momentary snapshot with no synchronization behind it.
func (c *SharedCell[T]) StrongCount() int {
	return c.mustLive("StrongCount").strong
}

// WeakCount returns the number of weak observers of the slot.
func (c *SharedCell[T]) WeakCount() int {
	return c.mustLive("WeakCount").weak
}

// PtrEq reports whether both handles reference the identical slot. This is
// identity, not value equality: two cells wrapping equal values are not
// PtrEq unless one was cloned from the other.
func (c *SharedCell[T]) PtrEq(other *SharedCell[T]) bool {
	sl := c.mustLive("PtrEq")
	return other != nil && sl == other.s
}

// SwapWith exchanges the contents of the two slots in place. Both handles
// keep pointing at their original slots; only the values move. Panics with
// a [*BorrowError] if either slot is currently borrowed, or if both
// handles share one slot (a slot cannot be write-borrowed twice).
func (c *SharedCell[T]) SwapWith(other *SharedCell[T]) {
	if err := c.TrySwapWith(other); err != nil {
		panic(err)
	}
}

// TrySwapWith is the fallible form of [SwapWith].
func (c *SharedCell[T]) TrySwapWith(other *SharedCell[T]) error {
	sl := c.mustLive("SwapWith")
	so := other.mustLive("SwapWith")

	o := sl.origin(true)
	if blocked, ok := sl.state.AcquireWrite(o); !ok {
		return sl.conflict(report.Swap, o, blocked)
	}
	oo := so.origin(true)
	if blocked, ok := so.state.AcquireWrite(oo); !ok {
		sl.state.ReleaseWrite()
		return so.conflict(report.Swap, oo, blocked)
	}

	sl.value, so.value = so.value, sl.value

	so.state.ReleaseWrite()
	sl.state.ReleaseWrite()

	if trace.Active() {
		trace.Op("swap", sl.addr()).Str("with", fmt.Sprintf("0x%x", so.addr())).Send()
	}
	return nil
}

// Replace stores value in the slot and returns the previous value. Panics
// with a [*BorrowError] if the slot is borrowed.
func (c *SharedCell[T]) Replace(value T) T {
	m := c.BorrowMut()
	defer m.Release()
	old := *m.Value()
	*m.Value() = value
	return old
}

// ReplaceWith computes the replacement from the current value and returns
// the previous value. The function runs while the write borrow is held, so
// it must not touch the cell itself.
func (c *SharedCell[T]) ReplaceWith(f func(T) T) T {
	m := c.BorrowMut()
	defer m.Release()
	old := *m.Value()
	*m.Value() = f(old)
	return old
}

// Take removes the value, leaving the zero value behind, and returns it.
// Panics with a [*BorrowError] if the slot is borrowed.
func (c *SharedCell[T]) Take() T {
	var zero T
	return c.Replace(zero)
}

// Borrow takes a shared (read) borrow of the slot. Any number of read
// borrows may be live at once. Panics with a [*BorrowError] if a write
// borrow is live. The returned guard must be released.
func (c *SharedCell[T]) Borrow() *Ref[T] {
	r, err := c.TryBorrow()
	if err != nil {
		panic(err)
	}
	return r
}

// TryBorrow is the fallible form of [Borrow].
func (c *SharedCell[T]) TryBorrow() (*Ref[T], error) {
	sl := c.mustLive("Borrow")

	o := sl.origin(false)
	if blocked, ok := sl.state.AcquireRead(o); !ok {
		return nil, sl.conflict(report.Read, o, blocked)
	}
	if trace.Active() {
		trace.Op("borrow", sl.addr()).Int("readers", sl.state.Readers()).Send()
	}
	return &Ref[T]{sl: sl}, nil
}

// BorrowMut takes the exclusive (write) borrow of the slot. Panics with a
// [*BorrowError] if any borrow is live. The returned guard must be
// released.
func (c *SharedCell[T]) BorrowMut() *RefMut[T] {
	m, err := c.TryBorrowMut()
	if err != nil {
		panic(err)
	}
	return m
}

// TryBorrowMut is the fallible form of [BorrowMut].
func (c *SharedCell[T]) TryBorrowMut() (*RefMut[T], error) {
	sl := c.mustLive("BorrowMut")

	o := sl.origin(true)
	if blocked, ok := sl.state.AcquireWrite(o); !ok {
		return nil, sl.conflict(report.Write, o, blocked)
	}
	if trace.Active() {
		trace.Op("borrow_mut", sl.addr()).Send()
	}
	return &RefMut[T]{sl: sl}, nil
}
