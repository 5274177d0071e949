package main

import (
	"context"
	"errors"
	"os"

	"github.com/indaco/venvsync/internal/app"
	"github.com/indaco/venvsync/internal/cli"
	"github.com/indaco/venvsync/internal/printer"
	urfavecli "github.com/urfave/cli/v3"
)

func main() {
	if err := runCLI(os.Args); err != nil {
		os.Exit(exitCode(err))
	}
}

// runCLI builds and runs the command tree for args.
func runCLI(args []string) error {
	a := &app.App{}
	return cli.New(a).Run(context.Background(), args)
}

// exitCode prints err unless it carries an empty message, and returns the
// process exit status for it.
func exitCode(err error) int {
	code := 1
	var coder urfavecli.ExitCoder
	if errors.As(err, &coder) {
		code = coder.ExitCode()
	}
	if msg := err.Error(); msg != "" {
		printer.PrintError("Error: " + msg)
	}
	return code
}
