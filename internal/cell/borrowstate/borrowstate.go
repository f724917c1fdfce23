// Package borrowstate implements the run-time borrow flag for a single
// shared slot.
//
// A slot is in exactly one of three states: free, read-borrowed by N
// readers, or write-borrowed by one writer. Acquire operations either move
// the state or fail and hand back the origin of the borrow that blocked
// them, so the caller can build a conflict report.
//
// The state is deliberately unsynchronized: the cell contract is a
// single-owner-goroutine discipline, and the flag guards against reentrant
// aliasing inside that discipline, not against true concurrency.
package borrowstate

import "fmt"

// Origin records where a live borrow was taken. The zero Origin means
// "untracked": counts are still exact, but there is no site to report.
type Origin struct {
	// Mutable is true for a write borrow.
	Mutable bool

	// Goroutine is the ID of the borrowing goroutine, or 0 if untracked.
	Goroutine int64

	// Stack is the stack depot hash of the borrow site, or 0 if untracked.
	Stack uint64
}

// State is the borrow flag for one slot.
//
// Layout: readers > 0 means read-borrowed, writing means write-borrowed,
// both zero/false means free. readers and writing are never set together.
type State struct {
	readers int
	writing bool

	// writer is the origin of the live write borrow, valid while writing.
	writer Origin

	// readerOrigins holds origins of live read borrows in LIFO order.
	// Only populated when track is set; ReleaseRead pops the most recent,
	// which is exact for the scoped acquire/release discipline guards use.
	readerOrigins []Origin

	track bool
}

// New creates a free borrow state. When track is true, borrow origins are
// retained while live so conflicts can report the blocking site; tracking
// costs one append per read borrow and is meant for debug mode only.
func New(track bool) *State {
	return &State{track: track}
}

// AcquireRead takes a shared borrow. Fails if a write borrow is live,
// returning its origin.
func (s *State) AcquireRead(o Origin) (blockedBy Origin, ok bool) {
	if s.writing {
		return s.writer, false
	}
	s.readers++
	if s.track {
		s.readerOrigins = append(s.readerOrigins, o)
	}
	return Origin{}, true
}

// AcquireWrite takes the exclusive borrow. Fails if any borrow is live,
// returning the origin of the most recent one.
func (s *State) AcquireWrite(o Origin) (blockedBy Origin, ok bool) {
	if s.writing {
		return s.writer, false
	}
	if s.readers > 0 {
		return s.lastReader(), false
	}
	s.writing = true
	s.writer = o
	return Origin{}, true
}

// ReleaseRead drops one shared borrow. Panics if none is live; that is a
// guard implementation bug, not a caller error.
func (s *State) ReleaseRead() {
	if s.readers == 0 {
		panic(fmt.Sprintf("borrowstate: ReleaseRead with no live read borrow (state %s)", s))
	}
	s.readers--
	if s.track && len(s.readerOrigins) > 0 {
		s.readerOrigins = s.readerOrigins[:len(s.readerOrigins)-1]
	}
}

// ReleaseWrite drops the exclusive borrow. Panics if none is live.
func (s *State) ReleaseWrite() {
	if !s.writing {
		panic(fmt.Sprintf("borrowstate: ReleaseWrite with no live write borrow (state %s)", s))
	}
	s.writing = false
	s.writer = Origin{}
}

// Readers returns the number of live shared borrows.
func (s *State) Readers() int { return s.readers }

// Writing reports whether the exclusive borrow is live.
func (s *State) Writing() bool { return s.writing }

// Free reports whether no borrow of any kind is live.
func (s *State) Free() bool { return s.readers == 0 && !s.writing }

// lastReader returns the origin of the most recently taken read borrow,
// or an untracked read origin when tracking is off.
func (s *State) lastReader() Origin {
	if s.track && len(s.readerOrigins) > 0 {
		return s.readerOrigins[len(s.readerOrigins)-1]
	}
	return Origin{Mutable: false}
}

// String returns a debug representation: "free", "R:3", or "W".
func (s *State) String() string {
	switch {
	case s.writing:
		return "W"
	case s.readers > 0:
		return fmt.Sprintf("R:%d", s.readers)
	default:
		return "free"
	}
}
