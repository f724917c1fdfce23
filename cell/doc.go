// Package cell provides a reference-counted cell with run-time borrow
// checking: shared ownership and interior mutability combined into one
// handle type.
//
// A [SharedCell] is a strong handle to a single heap slot. Clones of a cell
// share the slot, so a mutation through any clone is visible through all of
// them. Access to the slot's value goes through scoped borrow guards that
// enforce the usual discipline at run time: any number of concurrent
// readers, or exactly one writer, never both.
//
// # Quick Start
//
//	c := cell.New(1)
//	b := c.Clone() // strong count is now 2
//
//	m := b.BorrowMut()
//	*m.Value() = 2
//	m.Release()
//
//	r := c.Borrow()
//	fmt.Println(r.Value()) // 2 — mutation through b is visible through c
//	r.Release()
//
//	b.Release()
//	v, err := c.TryUnwrap() // sole owner again: extracts 2
//
// # Ownership model
//
// Go has no destructors, so dropping a handle is explicit: every strong
// handle must eventually be passed to [SharedCell.Release] (or consumed by
// [SharedCell.TryUnwrap]). The slot's value lives exactly as long as at
// least one strong handle does. When the last strong handle is released the
// slot transitions to the released state, the value is zeroed so nothing is
// kept alive through it, and the transition is irreversible.
//
// A [WeakCell], produced by [SharedCell.Downgrade], observes the slot
// without owning it. [WeakCell.Upgrade] yields a new strong handle while
// the slot is live and reports failure forever after the last strong
// handle is gone. Weak handles are the tool for back-references: an
// ownership cycle built from strong handles leaks (there is no cycle
// collection), a cycle with one weak edge does not.
//
// # Borrowing
//
// [SharedCell.Borrow] and [SharedCell.BorrowMut] return guards that must be
// released, normally with defer:
//
//	r := c.Borrow()
//	defer r.Release()
//
// Violating the borrow discipline (for example calling BorrowMut while a
// Ref is live) is a programmer error. The infallible operations panic with
// a [*BorrowError]; code that wants to observe the condition as a value
// uses [SharedCell.TryBorrow] and [SharedCell.TryBorrowMut] instead. With
// RCCELL_DEBUG=1 in the environment, borrow errors carry the stack trace of
// the blocking borrow — see [BorrowError.Report].
//
// # Concurrency
//
// Cells are intended for a single goroutine at a time. Nothing in the
// package synchronizes the reference counts or the slot against concurrent
// use; the borrow checking guards against reentrant aliasing within one
// goroutine, not against parallelism. Use a mutex-based design instead if
// handles must cross goroutines concurrently.
//
// The cellcheck tool (cmd/cellcheck) statically flags borrow guards that
// are never released or escape their function.
package cell
