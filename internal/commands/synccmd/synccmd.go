package synccmd

import (
	"context"
	"fmt"

	"github.com/indaco/venvsync/internal/app"
	"github.com/indaco/venvsync/internal/cycle"
	"github.com/indaco/venvsync/internal/printer"
	"github.com/urfave/cli/v3"
)

// Run returns the "sync" command.
func Run(a *app.App) *cli.Command {
	return &cli.Command{
		Name:    "sync",
		Aliases: []string{"refresh"},
		Usage:   "Point the editor settings at the virtual environment of a file",
		UsageText: `venvsync sync [path]

Finds the nearest virtual environment above path (the workspace root when
omitted), writes its interpreter to the settings file and, when analysis is
enabled, reconciles the include, exclude and extraPaths lists of every
configured namespace.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			file := a.Workspace
			if cmd.Args().Present() {
				resolved, err := a.Resolve(cmd.Args().First())
				if err != nil {
					return err
				}
				file = resolved
			}
			return runSyncCmd(ctx, a, file)
		},
	}
}

func runSyncCmd(ctx context.Context, a *app.App, file string) error {
	report, err := a.Runner().Run(ctx, file)
	if err != nil {
		return err
	}
	PrintReport(report)

	if report.InterpreterErr != nil || report.Outcome() == cycle.OutcomeFailure {
		return cli.Exit("", 1)
	}
	return nil
}

// PrintReport renders a cycle report for the terminal.
func PrintReport(r *cycle.Report) {
	if !r.Found {
		printer.PrintWarning(fmt.Sprintf("No virtual environment found for %s", r.File))
		return
	}

	printer.PrintKeyValue("interpreter", r.Venv.Interpreter)
	printer.PrintKeyValue("project root", r.Venv.ProjectRoot)

	switch {
	case r.InterpreterErr != nil:
		printer.PrintCheck(false, false, fmt.Sprintf("interpreter not written: %v", r.InterpreterErr))
	case r.InterpreterChanged:
		printer.PrintCheck(true, false, "interpreter updated")
	default:
		printer.PrintCheck(true, false, "interpreter unchanged")
	}

	if r.SitePackagesMissing {
		printer.PrintCheck(true, true, "site-packages not found, extra paths left unchanged")
	}
	for _, ns := range r.Namespaces {
		switch {
		case ns.Err != nil:
			printer.PrintCheck(false, false, fmt.Sprintf("%s: %v", ns.Namespace, ns.Err))
		case len(ns.Skipped) > 0:
			printer.PrintCheck(true, true, fmt.Sprintf("%s: skipped non-list keys %v", ns.Namespace, ns.Skipped))
		case ns.Changed:
			printer.PrintCheck(true, false, ns.Namespace+": updated")
		default:
			printer.PrintCheck(true, false, ns.Namespace+": unchanged")
		}
	}

	switch r.Outcome() {
	case cycle.OutcomeSkipped:
	case cycle.OutcomeSuccess:
		printer.PrintSuccess(r.Summary())
	case cycle.OutcomePartial:
		printer.PrintWarning(r.Summary())
	default:
		printer.PrintError(r.Summary())
	}
}
