package cell

import (
	"errors"

	"github.com/pie-flavor/rc-cell/internal/cell/report"
)

// ErrNotUnique is returned by [SharedCell.TryUnwrap] when other strong
// handles to the slot still exist. The attempt has no effect: the handle
// stays valid and the caller may retry after the other owners release.
var ErrNotUnique = errors.New("cell: not the sole strong owner")

// BorrowError reports a violation of the borrow discipline: an access
// needed the slot free (or free of writers) and found a conflicting borrow
// live. It is the panic value of the infallible borrow operations and the
// error value of the Try variants.
type BorrowError struct {
	conflict report.Conflict
}

// Error returns the one-line summary, naming the attempted access and the
// kind of borrow that blocked it.
func (e *BorrowError) Error() string {
	return e.conflict.Summary()
}

// Report returns the full multi-line conflict banner. With RCCELL_DEBUG=1
// it includes the stack traces of both the failing access and the borrow
// that blocked it.
func (e *BorrowError) Report() string {
	return e.conflict.String()
}
