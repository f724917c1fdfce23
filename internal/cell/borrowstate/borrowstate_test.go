package borrowstate

import "testing"

// TestNewFree verifies that a new state is free.
func TestNewFree(t *testing.T) {
	s := New(false)

	if !s.Free() {
		t.Error("New(false).Free() = false, want true")
	}
	if s.Readers() != 0 || s.Writing() {
		t.Errorf("new state: Readers() = %d, Writing() = %v, want 0/false", s.Readers(), s.Writing())
	}
	if got := s.String(); got != "free" {
		t.Errorf("String() = %q, want %q", got, "free")
	}
}

// TestManyReaders verifies that shared borrows stack and release in order.
func TestManyReaders(t *testing.T) {
	s := New(false)

	for i := 1; i <= 3; i++ {
		if _, ok := s.AcquireRead(Origin{}); !ok {
			t.Fatalf("AcquireRead #%d failed on read-borrowed state", i)
		}
		if s.Readers() != i {
			t.Errorf("Readers() = %d after %d acquires", s.Readers(), i)
		}
	}

	if got := s.String(); got != "R:3" {
		t.Errorf("String() = %q, want %q", got, "R:3")
	}

	for i := 3; i > 0; i-- {
		s.ReleaseRead()
		if s.Readers() != i-1 {
			t.Errorf("Readers() = %d after release, want %d", s.Readers(), i-1)
		}
	}
	if !s.Free() {
		t.Error("state not free after all reads released")
	}
}

// TestWriteExcludesAll verifies the one-writer rule in both directions.
func TestWriteExcludesAll(t *testing.T) {
	s := New(false)

	if _, ok := s.AcquireWrite(Origin{Mutable: true}); !ok {
		t.Fatal("AcquireWrite failed on free state")
	}
	if got := s.String(); got != "W" {
		t.Errorf("String() = %q, want %q", got, "W")
	}

	if blocked, ok := s.AcquireRead(Origin{}); ok {
		t.Error("AcquireRead succeeded while write borrow live")
	} else if !blocked.Mutable {
		t.Error("AcquireRead blockedBy.Mutable = false, want true")
	}

	if _, ok := s.AcquireWrite(Origin{Mutable: true}); ok {
		t.Error("second AcquireWrite succeeded while write borrow live")
	}

	s.ReleaseWrite()
	if !s.Free() {
		t.Error("state not free after ReleaseWrite")
	}
	if _, ok := s.AcquireRead(Origin{}); !ok {
		t.Error("AcquireRead failed after write released")
	}
}

// TestReadBlocksWrite verifies that any live reader blocks the writer and
// that the blocking origin is the most recent reader when tracked.
func TestReadBlocksWrite(t *testing.T) {
	s := New(true)

	first := Origin{Goroutine: 1, Stack: 100}
	second := Origin{Goroutine: 2, Stack: 200}
	if _, ok := s.AcquireRead(first); !ok {
		t.Fatal("AcquireRead(first) failed")
	}
	if _, ok := s.AcquireRead(second); !ok {
		t.Fatal("AcquireRead(second) failed")
	}

	blocked, ok := s.AcquireWrite(Origin{Mutable: true})
	if ok {
		t.Fatal("AcquireWrite succeeded with live readers")
	}
	if blocked != second {
		t.Errorf("blockedBy = %+v, want most recent reader %+v", blocked, second)
	}

	// LIFO release: after dropping second, first is the blocking origin.
	s.ReleaseRead()
	blocked, _ = s.AcquireWrite(Origin{Mutable: true})
	if blocked != first {
		t.Errorf("blockedBy = %+v after pop, want %+v", blocked, first)
	}

	s.ReleaseRead()
	if _, ok := s.AcquireWrite(Origin{Mutable: true}); !ok {
		t.Error("AcquireWrite failed on free state")
	}
}

// TestUntrackedWriteOrigin verifies that without tracking the writer origin
// still carries the access kind for reporting.
func TestUntrackedWriteOrigin(t *testing.T) {
	s := New(false)

	if _, ok := s.AcquireWrite(Origin{Mutable: true}); !ok {
		t.Fatal("AcquireWrite failed on free state")
	}
	blocked, ok := s.AcquireRead(Origin{})
	if ok {
		t.Fatal("AcquireRead succeeded while writing")
	}
	if !blocked.Mutable {
		t.Error("untracked writer origin lost Mutable flag")
	}
	if blocked.Stack != 0 || blocked.Goroutine != 0 {
		t.Errorf("untracked origin carries site data: %+v", blocked)
	}
}

// TestReleaseUnderflowPanics verifies that unbalanced releases panic.
func TestReleaseUnderflowPanics(t *testing.T) {
	for _, tt := range []struct {
		name    string
		release func(*State)
	}{
		{"read", (*State).ReleaseRead},
		{"write", (*State).ReleaseWrite},
	} {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("Release%s on free state did not panic", tt.name)
				}
			}()
			tt.release(New(false))
		})
	}
}

// BenchmarkAcquireRelease measures the untracked borrow hot path.
func BenchmarkAcquireRelease(b *testing.B) {
	s := New(false)
	for i := 0; i < b.N; i++ {
		_, _ = s.AcquireRead(Origin{})
		s.ReleaseRead()
	}
}

// BenchmarkAcquireReleaseTracked measures the debug-mode borrow path.
func BenchmarkAcquireReleaseTracked(b *testing.B) {
	s := New(true)
	o := Origin{Goroutine: 1, Stack: 42}
	for i := 0; i < b.N; i++ {
		_, _ = s.AcquireRead(o)
		s.ReleaseRead()
	}
}
