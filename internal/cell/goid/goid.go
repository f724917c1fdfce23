// Copyright 2026 The rc-cell Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package goid extracts the current goroutine's ID.
//
// Goroutine identity is used only by the debug diagnostics: borrow origins
// are stamped with the goroutine that took them, and a cell used from a
// goroutine other than the one that created it triggers a cross-goroutine
// warning (the library's single-owner-goroutine discipline made observable).
//
// The ID is obtained by parsing runtime.Stack output, which works on every
// Go version and architecture. At ~1500ns per call this is far too slow for
// a hot path, which is why callers only invoke it when debug mode is on.
package goid

import "runtime"

// Get returns the current goroutine ID, or 0 if it cannot be determined.
//
// The ID is parsed from the first line of the goroutine's stack trace,
// which has the format "goroutine 123 [running]:".
func Get() int64 {
	// Only the first line is needed; 64 bytes covers any goroutine ID.
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	return parse(buf[:n])
}

// parse extracts the numeric goroutine ID from stack trace bytes.
//
// Expected format: "goroutine 123 [running]:...". Returns 0 if the buffer
// does not start with the expected prefix. Direct byte parsing, no regex,
// no allocations.
func parse(buf []byte) int64 {
	const prefix = "goroutine "

	if len(buf) < len(prefix) || string(buf[:len(prefix)]) != prefix {
		return 0
	}

	var gid int64
	for i := len(prefix); i < len(buf); i++ {
		c := buf[i]
		if c < '0' || c > '9' {
			// Non-digit terminates the ID (the space before "[running]").
			break
		}
		gid = gid*10 + int64(c-'0')
	}

	return gid
}
