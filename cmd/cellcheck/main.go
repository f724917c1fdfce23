// Package main implements the cellcheck CLI tool.
//
// cellcheck is a static companion to the cell package. It works by:
//
//  1. Parsing Go source files using go/ast
//  2. Finding calls that acquire borrow guards (Borrow, BorrowMut and
//     their Try variants)
//  3. Reporting guards that are discarded, never released, or escape
//     the function they were acquired in
//
// Such mistakes only surface at run time as borrow conflict panics;
// cellcheck catches the mechanical cases before the program runs.
//
// Usage:
//
//	cellcheck check ./...          # Check all packages under the module
//	cellcheck check internal/app   # Check one directory tree
//	cellcheck version              # Show version information
package main

import (
	"fmt"
	"os"

	"github.com/pie-flavor/rc-cell/cell"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "check":
		checkCommand(os.Args[2:])
	case "version", "--version", "-v":
		info := cell.GetInfo()
		fmt.Printf("cellcheck version %s\n", info.Version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`cellcheck - Borrow discipline checker for the cell package

USAGE:
    cellcheck <command> [arguments]

COMMANDS:
    check      Check Go source trees for borrow guard mistakes
    version    Show version information
    help       Show this help message

EXAMPLES:
    # Check everything under the current module
    cellcheck check ./...

    # Check selected directories, with verbose logging
    cellcheck check -v internal/app internal/store

    # Flag guards released without defer too
    cellcheck check -require-defer ./...

ABOUT:
    cellcheck scans Go files that import the cell package and reports
    borrow guards that are discarded at the call site, never released,
    or returned/stored past the end of the acquiring function. These
    mistakes otherwise surface only as borrow conflict panics at run
    time.

    Configuration can be placed in a .cellcheck.toml file at the module
    root:

        check_escapes = true
        require_defer = false
        ignore = ["testdata", "gen_*.go"]

    The checks are syntactic; no build or type information is needed,
    so cellcheck works on code that does not currently compile.
`)
}
