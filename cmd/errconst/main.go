package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/go-pkgz/fileutils"
	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/stringutils"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/errconst/pkg/extract"
	"github.com/umputun/errconst/pkg/render"
)

type options struct {
	PositionalArgs struct {
		SrcDir string `positional-arg-name:"src" description:"mysql source tree root"`
	} `positional-args:"yes" positional-optional:"yes"`

	Out     string `short:"o" long:"out" env:"ERRCONST_OUT" description:"generated file (default: errors.<format>)"`
	Format  string `short:"f" long:"format" env:"ERRCONST_FORMAT" choice:"go" choice:"js" default:"go" description:"generated file format"`
	Package string `short:"p" long:"package" env:"ERRCONST_PACKAGE" default:"mysqlerr" description:"package name for go format"`

	Dbg bool `long:"dbg" description:"debug mode"`
}

const generator = "errconst"

var revision = "latest"

var exitFunc = os.Exit

func main() {
	fmt.Printf("errconst %s\n", revision)

	var opts options
	p := flags.NewParser(&opts, flags.PrintErrors|flags.PassDoubleDash|flags.HelpFlag)
	if _, err := p.Parse(); err != nil {
		exitFunc(1) // can be redefined in tests
		return
	}
	setupLog(opts.Dbg)

	if opts.PositionalArgs.SrcDir == "" {
		fmt.Fprintln(os.Stderr, usage(os.Args[0]))
		exitFunc(1)
		return
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "failed, %v\n", err)
		exitFunc(1)
	}
}

// run extracts codes from the source tree and replaces the generated file. Previous output is loaded
// before anything gets written, its names are kept for codes which became unused placeholders.
func run(opts options) error {
	srcDir := opts.PositionalArgs.SrcDir
	if !fileutils.IsDir(srcDir) {
		return fmt.Errorf("source tree %q is not a directory", srcDir)
	}

	version, err := extract.ReadVersion(srcDir)
	if err != nil {
		return fmt.Errorf("can't get mysql version: %w", err)
	}
	log.Printf("[INFO] mysql version %s in %s", version, srcDir)

	out := outFile(opts)
	r := render.Renderer{Format: render.Format(opts.Format), Package: opts.Package, Generator: generator}
	prev, found, err := r.Load(out)
	if err != nil {
		return fmt.Errorf("can't load previous codes: %w", err)
	}

	tbl, err := extract.Codes(srcDir)
	if err != nil {
		return err
	}

	if found {
		if kept := tbl.KeepUnused(prev); kept > 0 {
			log.Printf("[INFO] kept %d previous names for unused codes", kept)
		}
	}

	if err := r.WriteFile(out, tbl, version.String()); err != nil {
		return fmt.Errorf("can't write %s: %w", out, err)
	}
	return nil
}

// outFile returns generated file name, errors.go or errors.js unless set explicitly
func outFile(opts options) string {
	if opts.Out != "" {
		return opts.Out
	}
	return "errors." + opts.Format
}

// usage makes the usage line, program name quoted if it has whitespace
func usage(prog string) string {
	if stringutils.ContainsAnySubstring(prog, []string{" ", "\t"}) {
		prog = `"` + prog + `"`
	}
	return "Usage: " + prog + " " + filepath.Join("path", "to", "mysql", "src")
}

func setupLog(dbg bool) {
	logOpts := []lgr.Option{lgr.Out(os.Stderr), lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.Out(os.Stderr)}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer), lgr.Err(io.Discard))

	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
