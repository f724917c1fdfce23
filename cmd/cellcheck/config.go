package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/pie-flavor/rc-cell/cmd/cellcheck/analyze"
)

// configFileName is looked up in the module root (and the current
// directory when no module is found).
const configFileName = ".cellcheck.toml"

// checkConfig is the resolved configuration for one run.
type checkConfig struct {
	analyze.Options

	// Ignore holds path glob patterns (matched against slash-separated
	// paths relative to the scan root) that are skipped entirely.
	Ignore []string
}

func defaultConfig() checkConfig {
	return checkConfig{Options: analyze.DefaultOptions()}
}

// fileConfig mirrors the .cellcheck.toml layout.
type fileConfig struct {
	CheckEscapes bool     `toml:"check_escapes"`
	RequireDefer bool     `toml:"require_defer"`
	Ignore       []string `toml:"ignore"`
}

// loadConfig overlays .cellcheck.toml from dir onto the defaults. A
// missing file is not an error; the defaults are returned unchanged.
func loadConfig(dir string) (checkConfig, error) {
	cfg := defaultConfig()

	path := filepath.Join(dir, configFileName)
	if _, err := os.Stat(path); err != nil {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return checkConfig{}, fmt.Errorf("load %s: %w", path, err)
	}
	if undec := meta.Undecoded(); len(undec) > 0 {
		return checkConfig{}, fmt.Errorf("load %s: unknown key %q", path, undec[0].String())
	}

	if meta.IsDefined("check_escapes") {
		cfg.CheckEscapes = raw.CheckEscapes
	}
	if meta.IsDefined("require_defer") {
		cfg.RequireDefer = raw.RequireDefer
	}
	if meta.IsDefined("ignore") {
		cfg.Ignore = raw.Ignore
	}

	for _, pattern := range cfg.Ignore {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return checkConfig{}, fmt.Errorf("load %s: bad ignore pattern %q: %w", path, pattern, err)
		}
	}
	return cfg, nil
}

// ignored reports whether rel (slash-separated, relative to the scan
// root) matches any ignore pattern. Patterns match the whole path or
// any of its path segments' prefixes, so "testdata" ignores
// "a/testdata/b.go" too.
func (c checkConfig) ignored(rel string) bool {
	for _, pattern := range c.Ignore {
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, filepath.Base(rel)); ok {
			return true
		}
	}
	return false
}
