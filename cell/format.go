package cell

import (
	"fmt"
	"io"
)

// Format implements [fmt.Formatter].
//
// The %p verb prints the slot address, so two handles format identically
// under %p exactly when PtrEq holds. Every other verb formats the borrowed
// value with that verb. Go's formatting interfaces have no error channel,
// so when the value cannot be read-borrowed (a write borrow is live) the
// placeholder "<borrow conflict>" is emitted instead; a released handle
// formats as "<released SharedCell>".
func (c *SharedCell[T]) Format(f fmt.State, verb rune) {
	if c == nil || c.s == nil {
		io.WriteString(f, "<released SharedCell>")
		return
	}
	if verb == 'p' {
		fmt.Fprintf(f, "%p", c.s)
		return
	}

	r, err := c.TryBorrow()
	if err != nil {
		io.WriteString(f, "<borrow conflict>")
		return
	}
	defer r.Release()
	fmt.Fprintf(f, fmt.FormatString(f, verb), r.Value())
}

// String formats the borrowed value with %v, with the same borrow-conflict
// placeholder behavior as [SharedCell.Format].
func (c *SharedCell[T]) String() string {
	return fmt.Sprintf("%v", c)
}
