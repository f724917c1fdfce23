package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pie-flavor/rc-cell/cmd/cellcheck/analyze"
	"github.com/pie-flavor/rc-cell/cmd/cellcheck/modroot"
)

// checkCommand implements `cellcheck check [flags] [targets...]`.
//
// Each target is a directory, a Go file, or a "dir/..." pattern that
// walks the tree below dir. With no targets, "./..." is assumed.
func checkCommand(args []string) {
	fset := flag.NewFlagSet("check", flag.ExitOnError)
	verbose := fset.Bool("v", false, "verbose logging to stderr")
	requireDefer := fset.Bool("require-defer", false, "flag guards released without defer")
	noEscapes := fset.Bool("no-escapes", false, "disable the guard-escape check")
	if err := fset.Parse(args); err != nil {
		os.Exit(2)
	}

	log := newLogger(*verbose)

	targets := fset.Args()
	if len(targets) == 0 {
		targets = []string{"./..."}
	}

	cwd, err := os.Getwd()
	if err != nil {
		log.Error().Err(err).Msg("cannot determine working directory")
		os.Exit(2)
	}

	// Config lives at the module root; fall back to the working
	// directory when no module encloses it.
	configDir := cwd
	if mod, err := modroot.Find(cwd); err == nil {
		configDir = mod.Dir
		log.Debug().Str("module", mod.Path).Str("dir", mod.Dir).Msg("found enclosing module")
	} else {
		log.Debug().Err(err).Msg("no enclosing module; using working directory")
	}

	cfg, err := loadConfig(configDir)
	if err != nil {
		log.Error().Err(err).Msg("bad configuration")
		os.Exit(2)
	}
	if *requireDefer {
		cfg.RequireDefer = true
	}
	if *noEscapes {
		cfg.CheckEscapes = false
	}

	var (
		files    int
		findings int
	)
	for _, target := range targets {
		n, f, err := checkTarget(target, cfg, log)
		if err != nil {
			log.Error().Err(err).Str("target", target).Msg("check failed")
			os.Exit(2)
		}
		files += n
		findings += f
	}

	log.Debug().Int("files", files).Int("findings", findings).Msg("check complete")
	if findings > 0 {
		os.Exit(1)
	}
}

// checkTarget resolves one command-line target into files and checks
// them, printing diagnostics to stdout. Returns the number of files
// checked and the number of findings.
func checkTarget(target string, cfg checkConfig, log zerolog.Logger) (files, findings int, err error) {
	recursive := false
	if target == "..." {
		target, recursive = ".", true
	} else if strings.HasSuffix(target, "/...") {
		target, recursive = strings.TrimSuffix(target, "/..."), true
	}

	info, err := os.Stat(target)
	if err != nil {
		return 0, 0, err
	}

	run := func(path string) error {
		n, err := checkFile(path, cfg, log)
		if err != nil {
			return err
		}
		files++
		findings += n
		return nil
	}

	if !info.IsDir() {
		return files, findings, run(target)
	}

	err = filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(target, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path != target {
				if !recursive {
					return fs.SkipDir
				}
				if skipDir(d.Name()) || cfg.ignored(rel) {
					log.Debug().Str("dir", path).Msg("skipping directory")
					return fs.SkipDir
				}
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".go") || cfg.ignored(rel) {
			return nil
		}
		return run(path)
	})
	return files, findings, err
}

// skipDir reports whether a directory is never worth descending into:
// vendored code, hidden and underscore-prefixed trees, and testdata.
func skipDir(name string) bool {
	if name == "vendor" || name == "testdata" {
		return true
	}
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

func checkFile(path string, cfg checkConfig, log zerolog.Logger) (findings int, err error) {
	res, err := analyze.File(path, nil, cfg.Options)
	if err != nil {
		return 0, err
	}
	if res.Stats.Skipped {
		log.Debug().Str("file", path).Msg("no cell import; skipped")
		return 0, nil
	}
	log.Debug().
		Str("file", path).
		Int("funcs", res.Stats.FuncsChecked).
		Int("guards", res.Stats.GuardsSeen).
		Msg("checked")

	for _, d := range res.Diagnostics {
		fmt.Println(d.Error())
	}
	return len(res.Diagnostics), nil
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(out).Level(level).With().Timestamp().Str("component", "cellcheck").Logger()
}
