package cell

import (
	"fmt"
	"strings"
	"testing"
)

// TestFormatValue verifies that value verbs pass through to the contents.
func TestFormatValue(t *testing.T) {
	c := New(42)
	defer c.Release()

	tests := []struct {
		format string
		want   string
	}{
		{"%v", "42"},
		{"%d", "42"},
		{"%05d", "00042"},
		{"%x", "2a"},
	}

	for _, tt := range tests {
		if got := fmt.Sprintf(tt.format, c); got != tt.want {
			t.Errorf("Sprintf(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}

	s := New("hello")
	defer s.Release()
	if got := fmt.Sprintf("%q", s); got != `"hello"` {
		t.Errorf("Sprintf(%%q) = %q, want %q", got, `"hello"`)
	}
}

// TestFormatPointer verifies that %p is identity: equal exactly for
// handles of the same slot.
func TestFormatPointer(t *testing.T) {
	a := New(1)
	defer a.Release()
	b := a.Clone()
	defer b.Release()
	other := New(1)
	defer other.Release()

	pa, pb, po := fmt.Sprintf("%p", a), fmt.Sprintf("%p", b), fmt.Sprintf("%p", other)

	if !strings.HasPrefix(pa, "0x") {
		t.Errorf("Sprintf(%%p) = %q, want 0x-prefixed address", pa)
	}
	if pa != pb {
		t.Errorf("%%p differs between clones: %q vs %q", pa, pb)
	}
	if pa == po {
		t.Errorf("%%p identical for distinct slots: %q", pa)
	}
}

// TestFormatWhileWriteBorrowed verifies the placeholder: fmt has no error
// channel, so an unreadable slot formats as a marker instead.
func TestFormatWhileWriteBorrowed(t *testing.T) {
	c := New(1)
	defer c.Release()

	m := c.BorrowMut()
	defer m.Release()

	if got := fmt.Sprintf("%v", c); got != "<borrow conflict>" {
		t.Errorf("Sprintf(%%v) while write-borrowed = %q, want %q", got, "<borrow conflict>")
	}

	// %p never needs a borrow.
	if got := fmt.Sprintf("%p", c); !strings.HasPrefix(got, "0x") {
		t.Errorf("Sprintf(%%p) while write-borrowed = %q, want address", got)
	}
}

// TestFormatReadBorrowed verifies that a live read borrow does not block
// formatting (formatting takes another read borrow).
func TestFormatReadBorrowed(t *testing.T) {
	c := New(3)
	defer c.Release()

	r := c.Borrow()
	defer r.Release()

	if got := fmt.Sprintf("%v", c); got != "3" {
		t.Errorf("Sprintf(%%v) while read-borrowed = %q, want %q", got, "3")
	}
}

// TestFormatReleased verifies the released-handle marker.
func TestFormatReleased(t *testing.T) {
	c := New(1)
	c.Release()

	if got := fmt.Sprintf("%v", c); got != "<released SharedCell>" {
		t.Errorf("Sprintf(%%v) on released handle = %q, want marker", got)
	}
}

// TestString verifies the Stringer form matches %v.
func TestString(t *testing.T) {
	c := New("abc")
	defer c.Release()

	if got := c.String(); got != "abc" {
		t.Errorf("String() = %q, want %q", got, "abc")
	}
}
