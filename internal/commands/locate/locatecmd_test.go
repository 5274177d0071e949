package locate

import (
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/indaco/venvsync/internal/app"
	"github.com/indaco/venvsync/internal/testutils"
	"github.com/urfave/cli/v3"
)

func setup(t *testing.T) (string, *cli.Command) {
	t.Helper()
	ws := t.TempDir()
	testutils.MakeVenv(t, filepath.Join(ws, "app"), ".venv")
	testutils.WriteFile(t, filepath.Join(ws, "app", "pkg", "main.py"), "")

	a := &app.App{LogWriter: io.Discard}
	return ws, testutils.BuildCLIForTests(a, ws, []*cli.Command{Run(a)})
}

func TestLocateCmd_Text(t *testing.T) {
	ws, root := setup(t)

	out, err := testutils.RunCLI(t, root, []string{"venvsync", "locate", filepath.Join(ws, "app", "pkg", "main.py")})
	if err != nil {
		t.Fatalf("locate error = %v", err)
	}
	for _, want := range []string{
		filepath.Join(ws, "app", ".venv", "bin", "python"),
		filepath.Join(ws, "app", ".venv", "lib", "python3.12", "site-packages"),
		"project root",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestLocateCmd_JSON(t *testing.T) {
	ws, root := setup(t)

	out, err := testutils.RunCLI(t, root, []string{"venvsync", "locate", "--format", "json", filepath.Join(ws, "app", "pkg")})
	if err != nil {
		t.Fatalf("locate error = %v", err)
	}

	var d Discovery
	if err := json.Unmarshal([]byte(out), &d); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if !d.Found || d.ProjectRoot != filepath.Join(ws, "app") {
		t.Errorf("unexpected discovery %+v", d)
	}
	if d.VenvDir != filepath.Join(ws, "app", ".venv") {
		t.Errorf("VenvDir = %q", d.VenvDir)
	}
}

func TestLocateCmd_Miss(t *testing.T) {
	ws, root := setup(t)
	testutils.WriteFile(t, filepath.Join(ws, "docs", "conf.py"), "")

	out, err := testutils.RunCLI(t, root, []string{"venvsync", "locate", filepath.Join(ws, "docs", "conf.py")})
	var coder cli.ExitCoder
	if !errors.As(err, &coder) || coder.ExitCode() != 1 {
		t.Fatalf("expected exit code 1, got %v", err)
	}
	if !strings.Contains(out, "No virtual environment found") {
		t.Errorf("unexpected output %q", out)
	}

	out, _ = testutils.RunCLI(t, root, []string{"venvsync", "locate", "-f", "json", filepath.Join(ws, "docs")})
	if !strings.Contains(out, `"found": false`) {
		t.Errorf("unexpected JSON output %q", out)
	}
}

func TestLocateCmd_BadFormat(t *testing.T) {
	_, root := setup(t)

	_, err := testutils.RunCLI(t, root, []string{"venvsync", "locate", "--format", "yaml"})
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Errorf("expected unknown format error, got %v", err)
	}
}
