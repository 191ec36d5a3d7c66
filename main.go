// notahint adds hover hints to grammar notations
// in generated HTML documentation.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"os"

	"braces.dev/errtrace"
	"go.abhg.dev/notahint/internal/annotate"
	"go.abhg.dev/notahint/internal/errdefer"
)

func main() {
	cmd := mainCmd{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	os.Exit(cmd.Run(os.Args[1:]))
}

// mainCmd is the actual entry point to the program.
type mainCmd struct {
	Stdin  io.Reader // == os.Stdin
	Stdout io.Writer // == os.Stdout
	Stderr io.Writer // == os.Stderr

	log *log.Logger
}

func (cmd *mainCmd) Run(args []string) (exitCode int) {
	cmd.log = log.New(cmd.Stderr, "", 0)

	opts, err := (&cliParser{
		Stdout: cmd.Stdout,
		Stderr: cmd.Stderr,
	}).Parse(args)
	if err != nil {
		// '$cmd -h' should exit with zero.
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		// No need to print anything.
		// Parse prints messages.
		return 1
	}

	if err := cmd.run(opts); err != nil {
		cmd.log.Printf("notahint: %v", err)
		return 1
	}
	return 0
}

func (cmd *mainCmd) run(opts *params) (err error) {
	debugw, closeDebug, err := opts.Debug.Create(cmd.Stderr)
	if err != nil {
		return errtrace.Wrap(err)
	}
	defer errdefer.Close(&err, closerFunc(closeDebug))
	debugLog := log.New(debugw, "", 0)

	runner := Runner{
		Log: debugLog,
		Annotator: &annotate.Annotator{
			Style:     opts.Style,
			Wrapper:   opts.Wrapper,
			Transform: opts.transformFn,
			Log:       debugLog,
		},
		OutDir:  opts.OutputDir,
		Exclude: opts.Exclude,
		Jobs:    opts.Jobs,
		Stdin:   cmd.Stdin,
		Stdout:  cmd.Stdout,
	}

	stats, err := runner.Run(context.Background(), opts.Paths)
	if err != nil {
		return errtrace.Wrap(err)
	}

	if stats.Unrecognized > 0 {
		cmd.log.Printf("notahint: %v (run with -debug for details)", stats)
	} else {
		debugLog.Printf("Done: %v", stats)
	}
	return nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
