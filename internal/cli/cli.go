package cli

import (
	"context"
	"fmt"

	"github.com/indaco/venvsync/internal/app"
	"github.com/indaco/venvsync/internal/commands/doctor"
	"github.com/indaco/venvsync/internal/commands/initialize"
	"github.com/indaco/venvsync/internal/commands/locate"
	"github.com/indaco/venvsync/internal/commands/release"
	"github.com/indaco/venvsync/internal/commands/serve"
	"github.com/indaco/venvsync/internal/commands/synccmd"
	"github.com/indaco/venvsync/internal/printer"
	"github.com/indaco/venvsync/internal/version"
	urfavecli "github.com/urfave/cli/v3"
)

// New builds and returns the root CLI command. The global flags are
// resolved into a before any subcommand runs.
func New(a *app.App) *urfavecli.Command {
	return &urfavecli.Command{
		Name:                  "venvsync",
		Version:               fmt.Sprintf("v%s", version.GetVersion()),
		Usage:                 "Point your editor at the nearest Python virtual environment",
		EnableShellCompletion: true,
		Flags: []urfavecli.Flag{
			&urfavecli.StringFlag{
				Name:    "workspace",
				Aliases: []string{"w"},
				Usage:   "Workspace root",
				Value:   ".",
				Sources: urfavecli.EnvVars("VENVSYNC_WORKSPACE"),
			},
			&urfavecli.StringFlag{
				Name:        "config",
				Usage:       "Configuration file",
				DefaultText: "<workspace>/.venvsync.yaml",
			},
			&urfavecli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
			&urfavecli.BoolFlag{
				Name:  "verbose",
				Usage: "Log debug records",
			},
		},
		Before: func(ctx context.Context, cmd *urfavecli.Command) (context.Context, error) {
			printer.SetNoColor(cmd.Bool("no-color"))
			if err := a.Load(cmd.String("workspace"), cmd.String("config"), cmd.Bool("verbose")); err != nil {
				return ctx, err
			}
			return ctx, nil
		},
		After: func(ctx context.Context, cmd *urfavecli.Command) error {
			return a.Close()
		},
		// Exit codes are handled by main so tests can inspect errors.
		ExitErrHandler: func(context.Context, *urfavecli.Command, error) {},
		Commands: []*urfavecli.Command{
			locate.Run(a),
			synccmd.Run(a),
			serve.Run(a),
			release.Run(a),
			initialize.Run(a),
			doctor.Run(a),
		},
	}
}
