// Package app holds what every command needs once the global flags are
// parsed: the resolved workspace, its configuration, the filesystem and
// the log channel.
package app

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/indaco/venvsync/internal/config"
	"github.com/indaco/venvsync/internal/core"
	"github.com/indaco/venvsync/internal/cycle"
	"github.com/indaco/venvsync/internal/logging"
)

// App is populated by the root command before any subcommand runs.
type App struct {
	// Workspace is the absolute workspace root.
	Workspace string

	// ConfigPath is the configuration file in use, or "" when the defaults
	// apply because no file exists.
	ConfigPath string

	Config *config.Config
	FS     core.FileSystem
	Log    *logging.Channel

	// Stdin is where serve reads editor events from.
	Stdin io.Reader

	// LogWriter receives log records; nil means stderr.
	LogWriter io.Writer
}

// Load resolves workspace and loads its configuration. configFile
// overrides the default location inside the workspace.
func (a *App) Load(workspace, configFile string, verbose bool) error {
	if workspace == "" {
		workspace = "."
	}
	abs, err := filepath.Abs(workspace)
	if err != nil {
		return fmt.Errorf("failed to resolve workspace %q: %w", workspace, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("workspace %q: %w", abs, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("workspace %q is not a directory", abs)
	}
	a.Workspace = abs

	if configFile != "" && !filepath.IsAbs(configFile) {
		configFile = filepath.Join(abs, configFile)
	}
	cfg, err := config.LoadConfigFn(abs, configFile)
	if err != nil {
		return err
	}
	a.Config = cfg

	if configFile == "" {
		configFile = filepath.Join(abs, config.FileName)
	}
	a.ConfigPath = ""
	if _, err := os.Stat(configFile); err == nil {
		a.ConfigPath = configFile
	} else if !errors.Is(err, fs.ErrNotExist) {
		a.ConfigPath = configFile
	}

	if a.FS == nil {
		a.FS = core.NewOSFileSystem()
	}
	if a.Stdin == nil {
		a.Stdin = os.Stdin
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := []logging.Option{logging.WithLevel(level), logging.WithFile(cfg.LogPath(abs))}
	if a.LogWriter != nil {
		opts = append(opts, logging.WithWriter(a.LogWriter))
	}
	a.Log = logging.New("venvsync", opts...)
	return nil
}

// Runner returns a cycle runner for the loaded workspace.
func (a *App) Runner(opts ...cycle.Option) *cycle.Runner {
	return cycle.New(a.FS, a.Config, a.Workspace, a.Log, opts...)
}

// Resolve turns a command-line path into an absolute one, relative paths
// being taken from the current directory.
func (a *App) Resolve(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	return abs, nil
}

// Close releases the log channel.
func (a *App) Close() error {
	if a.Log == nil {
		return nil
	}
	return a.Log.Close()
}
