package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/ardnew/ctrlfn/cli"
	"github.com/ardnew/ctrlfn/log"
)

// exitCoder is implemented by errors that know their own process exit code
// (parse failures exit 1, runtime failures exit 2; see cli/cmd.Run).
type exitCoder interface {
	ExitCode() int
}

func main() {
	err := cli.Run(context.Background(), os.Exit, os.Args[1:]...)
	if err != nil {
		log.Error(
			"run failed",
			slog.Any("error", err),
		) // slog automatically uses LogValue()

		code := 1

		var coded exitCoder
		if errors.As(err, &coded) {
			code = coded.ExitCode()
		}

		os.Exit(code)
	}
}
