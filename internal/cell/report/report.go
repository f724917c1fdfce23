// Package report builds and formats borrow-conflict reports.
//
// A conflict report pairs the access that failed with the outstanding
// borrow that blocked it. With debug mode on, both sides carry the stack
// trace where the borrow was taken; without it, the report still names the
// access kinds, the slot address, and the goroutines involved.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/pie-flavor/rc-cell/internal/cell/stackdepot"
)

// Kind is the kind of slot access that participated in a conflict.
type Kind int

const (
	// Read is a shared (read) borrow.
	Read Kind = iota
	// Write is an exclusive (mutable) borrow.
	Write
	// Swap is an in-place content exchange between two slots.
	Swap
)

// String returns the human-readable access kind used in report banners.
func (k Kind) String() string {
	switch k {
	case Read:
		return "borrow"
	case Write:
		return "mutable borrow"
	case Swap:
		return "content swap"
	default:
		return "unknown access"
	}
}

// Access describes one side of a borrow conflict.
type Access struct {
	// Kind is the access kind (read, write, or swap).
	Kind Kind

	// Slot is the address of the shared slot involved.
	Slot uintptr

	// Goroutine is the ID of the goroutine that performed the access,
	// or 0 when goroutine tracking was off.
	Goroutine int64

	// Stack is the stack depot hash of the access site, or 0 when no
	// stack was captured.
	Stack uint64
}

// Conflict is a borrow-conflict report: the attempted access that failed
// and the outstanding borrow that was already live on the slot.
type Conflict struct {
	Attempted   Access
	Outstanding Access
}

// Summary returns the one-line form used as the error message:
//
//	borrow conflict: mutable borrow of slot 0x00c000018098 blocked by borrow
func (c *Conflict) Summary() string {
	return fmt.Sprintf("borrow conflict: %s of slot 0x%x blocked by %s",
		c.Attempted.Kind, c.Attempted.Slot, c.Outstanding.Kind)
}

// Format writes the full banner, in the style of runtime checker reports:
//
//	==================
//	WARNING: BORROW CONFLICT
//	mutable borrow at 0x00c000018098 by goroutine 7:
//	  main.update()
//	      /path/to/file.go:15
//
//	Previous borrow at 0x00c000018098 by goroutine 7:
//	  main.render()
//	      /path/to/file.go:42
//	==================
//
//nolint:errcheck // best-effort diagnostic output
func (c *Conflict) Format(w io.Writer) {
	fmt.Fprintf(w, "==================\n")
	fmt.Fprintf(w, "WARNING: BORROW CONFLICT\n")

	writeAccess(w, "", c.Attempted)
	fmt.Fprintf(w, "\n")
	writeAccess(w, "Previous ", c.Outstanding)

	fmt.Fprintf(w, "==================\n")
}

// String returns the formatted banner as a string.
func (c *Conflict) String() string {
	var buf strings.Builder
	c.Format(&buf)
	return buf.String()
}

func writeAccess(w io.Writer, prefix string, a Access) {
	if a.Goroutine != 0 {
		fmt.Fprintf(w, "%s%s at 0x%016x by goroutine %d:\n", prefix, a.Kind, a.Slot, a.Goroutine)
	} else {
		fmt.Fprintf(w, "%s%s at 0x%016x:\n", prefix, a.Kind, a.Slot)
	}

	if trace := stackdepot.Lookup(a.Stack); trace != nil {
		fmt.Fprint(w, trace.Format())
	} else {
		fmt.Fprintf(w, "  (no stack captured; set RCCELL_DEBUG=1 for borrow stacks)\n")
	}
}
