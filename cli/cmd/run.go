package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/ardnew/ctrlfn/lang"
)

// codedError pairs an error with the process exit code it should produce.
type codedError struct {
	error
	code int
}

func (e *codedError) ExitCode() int { return e.code }

// Run executes a source file, or stdin when Source is "-".
type Run struct {
	Source string `arg:"" default:"-" help:"Path to a source file, or '-' for stdin" name:"source"`
}

// Run parses and executes the source file, mapping any failure to its exit
// code: 0 on success, 1 for a parse error, 2 for a runtime error. It does not
// log the failure; main does.
func (r *Run) Run(ctx context.Context) error {
	var file *os.File

	if r.Source == "-" {
		file = os.Stdin
	} else {
		f, err := os.Open(r.Source)
		if err != nil {
			return &codedError{error: ErrOpenSource.Wrap(err), code: ExitParse}
		}
		defer f.Close()

		file = f
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return &codedError{error: ErrOpenSource.Wrap(err), code: ExitParse}
	}

	prog, err := lang.Compile(data)
	if err != nil {
		return &codedError{
			error: ErrParseSource.Wrap(err).With(slog.String("source", r.Source)),
			code:  ExitParse,
		}
	}

	if _, err := prog.Run(ctx, os.Stdout, os.Stdin); err != nil {
		return &codedError{
			error: ErrRunProgram.Wrap(err).With(slog.String("source", r.Source)),
			code:  ExitRuntime,
		}
	}

	return nil
}
