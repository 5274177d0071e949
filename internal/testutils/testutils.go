// Package testutils holds helpers shared by command tests.
package testutils

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/indaco/venvsync/internal/app"
	"github.com/indaco/venvsync/internal/printer"
	"github.com/urfave/cli/v3"
)

// BuildCLIForTests wraps commands in a root command that loads a for
// workspace before running them.
func BuildCLIForTests(a *app.App, workspace string, commands []*cli.Command) *cli.Command {
	return &cli.Command{
		Name: "venvsync",
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, a.Load(workspace, "", false)
		},
		After: func(ctx context.Context, cmd *cli.Command) error {
			return a.Close()
		},
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Commands:       commands,
	}
}

// RunCLI runs root with args and returns the printer output.
func RunCLI(t *testing.T, root *cli.Command, args []string) (string, error) {
	t.Helper()
	out := CaptureOutput(t)
	printer.SetNoColor(true)
	t.Cleanup(func() { printer.SetNoColor(false) })

	err := root.Run(context.Background(), args)
	return out.String(), err
}

// CaptureOutput redirects printer output for the rest of the test.
func CaptureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	printer.SetOutput(&buf)
	t.Cleanup(func() { printer.SetOutput(nil) })
	return &buf
}

// WriteFile creates path with content, making parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// MakeVenv lays out a POSIX virtual environment named name in dir and
// returns its interpreter path.
func MakeVenv(t *testing.T, dir, name string) string {
	t.Helper()
	venv := filepath.Join(dir, name)
	interpreter := filepath.Join(venv, "bin", "python")
	WriteFile(t, interpreter, "")
	WriteFile(t, filepath.Join(venv, "pyvenv.cfg"), "home = /usr/bin\n")
	if err := os.MkdirAll(filepath.Join(venv, "lib", "python3.12", "site-packages"), 0o755); err != nil {
		t.Fatal(err)
	}
	return interpreter
}

// ReadFile returns the content of path or fails the test.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}
