package initialize

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/indaco/venvsync/internal/app"
	"github.com/indaco/venvsync/internal/config"
	"github.com/indaco/venvsync/internal/testutils"
	"github.com/urfave/cli/v3"
)

type fakePrompter struct {
	folders  []string
	path     string
	analysis bool
	err      error

	options []string
}

func (f *fakePrompter) Confirm(string, string, bool) (bool, error) {
	return f.analysis, f.err
}

func (f *fakePrompter) Input(_, _, def string, validate func(string) error) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.path == "" {
		return def, nil
	}
	if err := validate(f.path); err != nil {
		return "", err
	}
	return f.path, nil
}

func (f *fakePrompter) MultiSelect(_, _ string, options, _ []string) ([]string, error) {
	f.options = options
	return f.folders, f.err
}

func withPrompter(t *testing.T, p Prompter, interactive bool) {
	t.Helper()
	origPrompter, origInteractive := NewPrompter, isInteractive
	NewPrompter = func() Prompter { return p }
	isInteractive = func() bool { return interactive }
	t.Cleanup(func() {
		NewPrompter = origPrompter
		isInteractive = origInteractive
	})
}

func setup(t *testing.T) (string, *cli.Command) {
	t.Helper()
	ws := t.TempDir()
	a := &app.App{LogWriter: io.Discard}
	return ws, testutils.BuildCLIForTests(a, ws, []*cli.Command{Run(a)})
}

func loadConfig(t *testing.T, ws string) *config.Config {
	t.Helper()
	cfg, err := config.LoadConfigFn(ws, "")
	if err != nil {
		t.Fatalf("LoadConfigFn() error = %v", err)
	}
	return cfg
}

func TestInitCmd_Yes(t *testing.T) {
	withPrompter(t, &fakePrompter{err: errors.New("must not prompt")}, true)
	ws, root := setup(t)
	testutils.MakeVenv(t, filepath.Join(ws, "svc"), "venv")

	out, err := testutils.RunCLI(t, root, []string{"venvsync", "init", "--yes"})
	if err != nil {
		t.Fatalf("init error = %v", err)
	}
	if !strings.Contains(out, "template interpreter") {
		t.Errorf("unexpected output:\n%s", out)
	}

	content := testutils.ReadFile(t, filepath.Join(ws, config.FileName))
	if !strings.HasPrefix(content, "# venvsync configuration file") {
		t.Errorf("missing header:\n%s", content)
	}
	cfg := loadConfig(t, ws)
	if !slices.Equal(cfg.VenvFolders, []string{"venv"}) {
		t.Errorf("VenvFolders = %v, want detected [venv]", cfg.VenvFolders)
	}
	if cfg.AnalysisEnabled() {
		t.Error("interpreter template must not enable analysis")
	}
}

func TestInitCmd_DetectsPyproject(t *testing.T) {
	withPrompter(t, nil, false)
	ws, root := setup(t)
	testutils.WriteFile(t, filepath.Join(ws, "pyproject.toml"), "[tool.pyright]\ninclude = []\n")

	if _, err := testutils.RunCLI(t, root, []string{"venvsync", "init"}); err != nil {
		t.Fatalf("init error = %v", err)
	}
	cfg := loadConfig(t, ws)
	if cfg.Settings.Path != "pyproject.toml" || !cfg.AnalysisEnabled() {
		t.Errorf("expected pyproject template, got path %q analysis %v", cfg.Settings.Path, cfg.AnalysisEnabled())
	}
	if !slices.Equal(cfg.VenvFolders, config.DefaultVenvFolders) {
		t.Errorf("VenvFolders = %v, want defaults", cfg.VenvFolders)
	}
}

func TestInitCmd_ExistingFile(t *testing.T) {
	withPrompter(t, nil, false)
	ws, root := setup(t)
	testutils.WriteFile(t, filepath.Join(ws, config.FileName), "venv_folders: [env]\n")

	_, err := testutils.RunCLI(t, root, []string{"venvsync", "init", "--yes"})
	var coder cli.ExitCoder
	if !errors.As(err, &coder) || !strings.Contains(err.Error(), "--force") {
		t.Fatalf("expected --force hint, got %v", err)
	}

	if _, err := testutils.RunCLI(t, root, []string{"venvsync", "init", "--yes", "--force", "-t", "basedpyright"}); err != nil {
		t.Fatalf("init --force error = %v", err)
	}
	cfg := loadConfig(t, ws)
	if !slices.Equal(cfg.Analysis.Namespaces, []string{"basedpyright.analysis"}) {
		t.Errorf("Namespaces = %v", cfg.Analysis.Namespaces)
	}
}

func TestInitCmd_UnknownTemplate(t *testing.T) {
	withPrompter(t, nil, false)
	_, root := setup(t)

	_, err := testutils.RunCLI(t, root, []string{"venvsync", "init", "--template", "emacs"})
	if err == nil || !strings.Contains(err.Error(), "unknown template") {
		t.Errorf("expected unknown template error, got %v", err)
	}
}

func TestInitCmd_Interactive(t *testing.T) {
	p := &fakePrompter{folders: []string{"env"}, path: "pyproject.toml", analysis: true}
	withPrompter(t, p, true)
	ws, root := setup(t)
	testutils.MakeVenv(t, ws, ".venv")

	if _, err := testutils.RunCLI(t, root, []string{"venvsync", "init", "-t", "pylance"}); err != nil {
		t.Fatalf("init error = %v", err)
	}

	if !slices.Equal(p.options, []string{".venv", "venv", "env", ".env"}) {
		t.Errorf("folder options = %v", p.options)
	}
	cfg := loadConfig(t, ws)
	if !slices.Equal(cfg.VenvFolders, []string{"env"}) {
		t.Errorf("VenvFolders = %v", cfg.VenvFolders)
	}
	if cfg.Settings.Path != "pyproject.toml" {
		t.Errorf("Settings.Path = %q", cfg.Settings.Path)
	}
	if !slices.Equal(cfg.Analysis.Namespaces, config.DefaultTOMLNamespaces) {
		t.Errorf("Namespaces = %v, want %v", cfg.Analysis.Namespaces, config.DefaultTOMLNamespaces)
	}
}

func TestInitCmd_InteractiveCanceled(t *testing.T) {
	withPrompter(t, &fakePrompter{err: errors.New("user aborted")}, true)
	ws, root := setup(t)

	_, err := testutils.RunCLI(t, root, []string{"venvsync", "init"})
	if err == nil || !strings.Contains(err.Error(), "init canceled") {
		t.Fatalf("expected cancel error, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(ws, config.FileName)); !os.IsNotExist(statErr) {
		t.Errorf("config file should not exist after cancel, stat error = %v", statErr)
	}
}

func TestValidateSettingsPath(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{".vscode/settings.json", false},
		{"pyproject.toml", false},
		{"  ", true},
		{"settings.yaml", true},
	}
	for _, tt := range tests {
		if err := validateSettingsPath(tt.in); (err != nil) != tt.wantErr {
			t.Errorf("validateSettingsPath(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}
