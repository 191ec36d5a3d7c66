package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"path"
	"runtime"
	"strings"

	"braces.dev/errtrace"
	"github.com/peterbourgon/ff/v3"
	"go.abhg.dev/notahint/internal/annotate"
	"go.abhg.dev/notahint/internal/flagvalue"
	"go.abhg.dev/notahint/internal/punct"
)

var (
	errHelp             = flag.ErrHelp
	errInvalidArguments = errors.New("invalid arguments")
)

// _envPrefix is the prefix for environment variables
// that may be used in place of flags.
const _envPrefix = "NOTAHINT"

// params holds all arguments for notahint.
type params struct {
	version bool
	help    Help
	config  string

	Debug flagvalue.FileSwitch
	Jobs  int

	Style     annotate.Style
	Wrapper   string
	Transform string

	// Resolved from Transform during parsing.
	transformFn func(string) string

	OutputDir string
	Exclude   []globPattern

	Paths []string
}

// cliParser parses the command line arguments for notahint.
type cliParser struct {
	Stdout io.Writer
	Stderr io.Writer
}

func (cmd *cliParser) newFlagSet() (*params, *flag.FlagSet) {
	flag := flag.NewFlagSet("notahint", flag.ContinueOnError)
	flag.SetOutput(cmd.Stderr)
	flag.Usage = func() {
		_ = DefaultHelp.Write(cmd.Stderr)
	}

	var p params

	// Filesystem:
	flag.StringVar(&p.OutputDir, "out", "", "")
	flag.Var(flagvalue.ListOf(&p.Exclude), "exclude", "")
	flag.IntVar(&p.Jobs, "jobs", runtime.GOMAXPROCS(0), "")

	// Hints:
	flag.Var(&p.Style, "style", "")
	flag.StringVar(&p.Wrapper, "wrapper", annotate.DefaultWrapper, "")
	flag.StringVar(&p.Transform, "transform", "none", "")

	// Program-level:
	flag.StringVar(&p.config, "config", "", "")
	flag.Var(&p.Debug, "debug", "")
	flag.BoolVar(&p.version, "version", false, "")
	flag.Var(&p.help, "help", "")
	flag.Var(&p.help, "h", "")

	return &p, flag
}

func (cmd *cliParser) Parse(args []string) (*params, error) {
	p, fset := cmd.newFlagSet()
	err := ff.Parse(fset, args,
		ff.WithEnvVarPrefix(_envPrefix),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
	)
	if err != nil {
		// The flag set has already reported flag errors.
		// Config file errors are ours to print.
		if p.config != "" && !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(cmd.Stderr, err)
		}
		return nil, errtrace.Wrap(err)
	}
	args = fset.Args()

	if p.version {
		fmt.Fprintln(cmd.Stdout, "notahint", _version)
		return nil, errHelp
	}

	if p.help == DefaultHelp && len(args) > 0 {
		// The user might have done "-h foo"
		// instead of "-h=foo".
		// If the argument is a known help topic,
		// take it.
		var h Help
		if err := h.Set(args[0]); err == nil {
			p.help = h
		}
	}

	switch p.help {
	case NoHelp:
		// proceed as usual
	default:
		if err := p.help.Write(cmd.Stderr); err != nil {
			fmt.Fprintln(cmd.Stderr, err)
		}
		return nil, errHelp
	}

	p.transformFn, err = punct.Lookup(p.Transform)
	if err != nil {
		fmt.Fprintln(cmd.Stderr, err)
		return nil, errInvalidArguments
	}

	if p.Jobs < 1 {
		fmt.Fprintln(cmd.Stderr, "-jobs must be at least 1.")
		return nil, errInvalidArguments
	}

	p.Paths = args
	if len(p.Paths) == 0 {
		fmt.Fprintln(cmd.Stderr, "Please provide at least one path.")
		_ = UsageHelp.Write(cmd.Stderr)
		return nil, errInvalidArguments
	}

	return p, nil
}

// globPattern is a /-separated pattern for files to skip.
// It's matched against paths relative to the directory being walked.
type globPattern string

var _ flag.Getter = (*globPattern)(nil)

func (g *globPattern) Get() any       { return string(*g) }
func (g *globPattern) String() string { return string(*g) }

func (g *globPattern) Set(s string) error {
	if _, err := path.Match(s, ""); err != nil {
		return errtrace.Wrap(fmt.Errorf("bad pattern %q: %w", s, err))
	}
	*g = globPattern(s)
	return nil
}

// Match reports whether the /-separated path matches this pattern.
// Patterns without a slash are also matched against the base name.
func (g globPattern) Match(p string) bool {
	if ok, _ := path.Match(string(g), p); ok {
		return true
	}
	if strings.Contains(string(g), "/") {
		return false
	}
	ok, _ := path.Match(string(g), path.Base(p))
	return ok
}
