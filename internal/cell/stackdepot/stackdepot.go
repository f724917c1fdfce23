// Package stackdepot stores and deduplicates borrow-origin stack traces.
//
// When debug mode is on, every live borrow records the call stack that took
// it, so a later conflict report can show both sides: where the failing
// access happened and where the outstanding borrow came from. Identical
// stacks are stored once and referenced by a 64-bit hash, keeping the
// per-borrow cost to a single uint64.
//
// Design:
//   - Fixed-size traces (8 frames, 64 bytes per stack)
//   - FNV-1a hash for deduplication
//   - Global sync.Map storage
//
// Capture is ~500ns (runtime.Callers + hashing); lookup is ~50ns. Neither
// happens unless debug mode is enabled, so the borrow hot path stays free
// of this cost.
package stackdepot

import (
	"fmt"
	"hash/fnv"
	"runtime"
	"strings"
	"sync"
	"unsafe"
)

// MaxFrames is the number of stack frames captured per borrow origin.
// Eight frames is enough to see through the guard into the caller's code
// while keeping each stored trace at 64 bytes.
const MaxFrames = 8

// Trace is a captured stack trace with fixed size.
type Trace struct {
	PC [MaxFrames]uintptr
}

// depot is the global deduplication store: uint64 hash → *Trace.
// sync.Map gives lock-free reads; writes only happen for new unique stacks.
var depot sync.Map

// Capture records the current call stack and returns its hash.
//
// The skip argument counts frames to drop below the caller, in addition to
// Capture itself; pass 0 to start the trace at your own caller.
// If the same stack was captured before, the existing entry is reused and
// only the hash computation is paid. Returns 0 if no stack is available.
func Capture(skip int) uint64 {
	var pcs [MaxFrames]uintptr
	// +2 skips runtime.Callers and Capture itself.
	n := runtime.Callers(skip+2, pcs[:])
	if n == 0 {
		return 0
	}

	hash := hashStack(pcs[:n])

	if _, exists := depot.Load(hash); exists {
		return hash
	}
	depot.Store(hash, &Trace{PC: pcs})
	return hash
}

// Lookup retrieves a trace by hash. Returns nil for hash 0 (nothing was
// captured) or for an unknown hash.
func Lookup(hash uint64) *Trace {
	if hash == 0 {
		return nil
	}
	val, ok := depot.Load(hash)
	if !ok {
		return nil
	}
	return val.(*Trace)
}

// hashStack computes the FNV-1a hash of a slice of program counters.
func hashStack(pcs []uintptr) uint64 {
	h := fnv.New64a()
	for _, pc := range pcs {
		//nolint:gosec // reading the PC value as bytes for hashing only
		b := (*[8]byte)(unsafe.Pointer(&pc))[:]
		_, _ = h.Write(b) // hash.Hash.Write never fails
	}
	return h.Sum64()
}

// Format renders the trace for a conflict report:
//
//	main.update()
//	    /path/to/file.go:45
//	main.main()
//	    /path/to/file.go:30
//
// Runtime internal frames are filtered out. A nil trace formats as
// "  <unknown>\n".
func (t *Trace) Format() string {
	if t == nil {
		return "  <unknown>\n"
	}

	frames := runtime.CallersFrames(t.PC[:])

	var buf strings.Builder
	for {
		frame, more := frames.Next()
		if frame.PC == 0 {
			break
		}
		if strings.HasPrefix(frame.Function, "runtime.") {
			if !more {
				break
			}
			continue
		}

		fmt.Fprintf(&buf, "  %s()\n", frame.Function)
		fmt.Fprintf(&buf, "      %s:%d\n", frame.File, frame.Line)

		if !more {
			break
		}
	}

	if buf.Len() == 0 {
		// Every frame was a runtime frame.
		return "  <runtime internal>\n"
	}
	return buf.String()
}

// Reset clears the depot. Test helper only; not safe against concurrent
// Capture calls.
func Reset() {
	depot = sync.Map{}
}

// Stats reports the number of unique stacks and approximate memory usage.
// O(N) over the depot; diagnostics only.
func Stats() (uniqueStacks int, totalBytes int64) {
	depot.Range(func(_, _ any) bool {
		uniqueStacks++
		return true
	})
	// 64 bytes per trace plus ~32 bytes of sync.Map entry overhead.
	const bytesPerStack = 64 + 32
	return uniqueStacks, int64(uniqueStacks) * bytesPerStack
}
