// Package trace provides opt-in diagnostics for cell operations.
//
// The library core is silent: failures are returned (or panicked) to the
// caller and nothing is ever logged. For debugging borrow discipline
// problems, two environment switches turn on extra visibility:
//
//	RCCELL_TRACE=1  log every cell operation (new, clone, borrow, ...)
//	RCCELL_DEBUG=1  additionally capture borrow-origin stacks and
//	                goroutine IDs, so conflict reports show where the
//	                blocking borrow was taken and cross-goroutine use
//	                is flagged
//
// Events are structured zerolog output on stderr. With both switches off
// the logger is a no-op and none of the capture cost is paid.
package trace

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	once    sync.Once
	debugOn bool
	traceOn bool
	logger  = zerolog.Nop()
)

func setup() {
	debugOn = os.Getenv("RCCELL_DEBUG") == "1"
	traceOn = debugOn || os.Getenv("RCCELL_TRACE") == "1"
	if traceOn {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			With().Timestamp().Str("component", "rccell").Logger()
	}
}

// Debug reports whether borrow-origin capture is enabled (RCCELL_DEBUG=1).
func Debug() bool {
	once.Do(setup)
	return debugOn
}

// Active reports whether operation tracing is enabled.
func Active() bool {
	once.Do(setup)
	return traceOn
}

// Op starts a trace event for one cell operation. Callers must finish the
// event with Msg or Send, and should guard the call with Active() to avoid
// formatting the slot address when tracing is off:
//
//	if trace.Active() {
//		trace.Op("clone", addr).Int("strong", n).Send()
//	}
func Op(op string, slot uintptr) *zerolog.Event {
	once.Do(setup)
	return logger.Debug().Str("op", op).Str("slot", fmt.Sprintf("0x%x", slot))
}

// CrossGoroutine logs a warning that a cell created on one goroutine was
// accessed from another. The single-owner-goroutine model makes this a
// caller error worth surfacing, but not one the library can act on.
func CrossGoroutine(slot uintptr, owner, current int64) {
	once.Do(setup)
	logger.Warn().
		Str("slot", fmt.Sprintf("0x%x", slot)).
		Int64("owner_goroutine", owner).
		Int64("current_goroutine", current).
		Msg("cell accessed from non-owner goroutine")
}

// Override forces the debug/trace switches and redirects output for tests.
// It returns a restore function.
func Override(debug, active bool, out *zerolog.Logger) func() {
	once.Do(setup)
	prevDebug, prevTrace, prevLogger := debugOn, traceOn, logger

	debugOn, traceOn = debug, active
	if out != nil {
		logger = *out
	} else if !active {
		logger = zerolog.Nop()
	}

	return func() {
		debugOn, traceOn, logger = prevDebug, prevTrace, prevLogger
	}
}
