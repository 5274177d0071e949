package serve

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/indaco/venvsync/internal/app"
	"github.com/indaco/venvsync/internal/watch"
	"github.com/urfave/cli/v3"
)

// Run returns the "serve" command.
func Run(a *app.App) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run as an editor helper, reading events from stdin",
		UsageText: `venvsync serve [--no-watch] [--debounce 750ms]

Reads one JSON event per line from stdin until EOF or a signal:

  {"event":"activeEditorChanged","file":"/abs/path.py","language":"python"}
  {"event":"refresh"}

Each Python editor change runs a cycle for that file; refresh re-runs the
last one. Candidate venv folders appearing or disappearing next to the
active file trigger a refresh as well.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-watch",
				Usage: "Do not watch the filesystem for venv folders",
			},
			&cli.DurationFlag{
				Name:  "debounce",
				Usage: "Quiet period before a filesystem change triggers a refresh",
				Value: watch.DefaultDebounce,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runServeCmd(ctx, a, !cmd.Bool("no-watch"), cmd.Duration("debounce"))
		},
	}
}

func runServeCmd(ctx context.Context, a *app.App, watchFS bool, debounce time.Duration) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := a.Runner()
	dispatcher := watch.NewDispatcher(a.Workspace, func(ctx context.Context, file string) {
		if _, err := runner.Run(ctx, file); err != nil && !errors.Is(err, context.Canceled) {
			a.Log.Error("cycle failed", "file", file, "error", err)
		}
	}, a.Log)

	if watchFS {
		w, err := watch.NewWatcher(a.Workspace, a.Config.VenvFolders, func() { dispatcher.Refresh(ctx) },
			a.Log, watch.WithDebounce(debounce))
		if err != nil {
			a.Log.Warn("filesystem watching disabled", "error", err)
		} else {
			defer w.Close()
			dispatcher.OnActive(w.Track)
			go func() { _ = w.Run(ctx) }()
		}
	}

	done := make(chan error, 1)
	go func() { done <- dispatcher.Run(ctx) }()

	a.Log.Info("serving", "workspace", a.Workspace)

	read := make(chan error, 1)
	go func() {
		read <- watch.ReadEvents(ctx, a.Stdin, func(ev watch.Event) {
			dispatcher.Submit(ctx, ev)
		}, func(err error) {
			a.Log.Warn("ignoring malformed event", "error", err)
		})
	}()

	var readErr error
	select {
	case readErr = <-read:
	case <-ctx.Done():
	}
	dispatcher.Close()
	runErr := <-done

	if readErr != nil && !errors.Is(readErr, context.Canceled) {
		return readErr
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	a.Log.Info("stopped")
	return nil
}
