// Package modroot locates the Go module enclosing a directory.
//
// cellcheck is usually run from somewhere inside the target project, so
// the module root is found by walking up from the start directory until a
// go.mod appears. The file is then parsed with golang.org/x/mod/modfile
// to recover the module path, which lets diagnostics name packages the
// way the project itself does.
package modroot

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// Module describes the module enclosing the start directory.
type Module struct {
	// Dir is the directory containing go.mod.
	Dir string

	// Path is the module path declared in go.mod, e.g.
	// "github.com/pie-flavor/rc-cell".
	Path string

	// GoVersion is the go directive value, or "" if absent.
	GoVersion string
}

// Find walks up from startDir looking for a go.mod file and parses it.
//
// Returns an error if the filesystem root is reached without finding one,
// or if the go.mod found cannot be parsed.
func Find(startDir string) (*Module, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	dir := abs
	for {
		modPath := filepath.Join(dir, "go.mod")
		if _, err := os.Stat(modPath); err == nil {
			return parse(dir, modPath)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root.
			break
		}
		dir = parent
	}

	return nil, fmt.Errorf("no go.mod found in %s or any parent directory", abs)
}

func parse(dir, modPath string) (*Module, error) {
	data, err := os.ReadFile(modPath)
	if err != nil {
		return nil, err
	}

	f, err := modfile.Parse(modPath, data, nil)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", modPath, err)
	}
	if f.Module == nil || f.Module.Mod.Path == "" {
		return nil, fmt.Errorf("%s has no module directive", modPath)
	}

	m := &Module{Dir: dir, Path: f.Module.Mod.Path}
	if f.Go != nil {
		m.GoVersion = f.Go.Version
	}
	return m, nil
}
