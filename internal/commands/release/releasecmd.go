package release

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/indaco/venvsync/internal/app"
	"github.com/indaco/venvsync/internal/cycle"
	"github.com/indaco/venvsync/internal/locator"
	"github.com/indaco/venvsync/internal/printer"
	"github.com/indaco/venvsync/internal/state"
	"github.com/urfave/cli/v3"
)

// Run returns the "release" command.
func Run(a *app.App) *cli.Command {
	return &cli.Command{
		Name:  "release",
		Usage: "Remove the analysis entries venvsync added for a project",
		UsageText: `venvsync release [path]
venvsync release --root <dir>
venvsync release --all

Entries added by hand or by other tools are kept. The interpreter setting
is not touched.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "root",
				Usage: "Project root to release, when its venv no longer exists",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Release every project root recorded for the workspace",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runReleaseCmd(ctx, cmd, a)
		},
	}
}

func runReleaseCmd(ctx context.Context, cmd *cli.Command, a *app.App) error {
	roots, err := targetRoots(ctx, cmd, a)
	if err != nil {
		return err
	}
	if len(roots) == 0 {
		printer.PrintInfo("Nothing to release")
		return nil
	}

	runner := a.Runner()
	failed := false
	for _, root := range roots {
		report, err := runner.Release(ctx, root)
		if err != nil {
			return err
		}
		printer.PrintBold(root)
		if len(report.Namespaces) == 0 {
			printer.PrintFaint("  no managed entries")
			continue
		}
		printNamespaces(report)
		failed = failed || report.Outcome() != cycle.OutcomeSuccess
	}
	if failed {
		return cli.Exit("", 1)
	}
	return nil
}

func printNamespaces(r *cycle.Report) {
	for _, ns := range r.Namespaces {
		if ns.Err != nil {
			printer.PrintCheck(false, false, fmt.Sprintf("%s: %v", ns.Namespace, ns.Err))
			continue
		}
		printer.PrintCheck(true, false, ns.Namespace+": released")
	}
}

func targetRoots(ctx context.Context, cmd *cli.Command, a *app.App) ([]string, error) {
	if cmd.Bool("all") {
		st := state.NewStore(a.FS, a.Config.StatePath(a.Workspace))
		if err := st.Load(ctx); err != nil {
			return nil, err
		}
		roots := make([]string, 0, len(st.Record().Roots))
		for root := range st.Record().Roots {
			roots = append(roots, root)
		}
		slices.Sort(roots)
		return roots, nil
	}

	if root := cmd.String("root"); root != "" {
		abs, err := a.Resolve(root)
		if err != nil {
			return nil, err
		}
		return []string{filepath.Clean(abs)}, nil
	}

	file := a.Workspace
	if cmd.Args().Present() {
		resolved, err := a.Resolve(cmd.Args().First())
		if err != nil {
			return nil, err
		}
		file = resolved
	}
	res, err := a.Runner().Locate(ctx, file)
	if err != nil {
		if errors.Is(err, locator.ErrNotFound) {
			return nil, cli.Exit(fmt.Sprintf("no virtual environment found for %s, use --root", file), 1)
		}
		return nil, err
	}
	return []string{res.ProjectRoot}, nil
}
