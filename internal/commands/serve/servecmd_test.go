package serve

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/indaco/venvsync/internal/app"
	"github.com/indaco/venvsync/internal/testutils"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"
)

func TestServeCmd_ProcessesEvents(t *testing.T) {
	ws := t.TempDir()
	testutils.MakeVenv(t, filepath.Join(ws, "api"), ".venv")
	testutils.MakeVenv(t, filepath.Join(ws, "web"), ".venv")
	apiFile := filepath.Join(ws, "api", "main.py")
	webFile := filepath.Join(ws, "web", "app.py")
	testutils.WriteFile(t, apiFile, "")
	testutils.WriteFile(t, webFile, "")

	events := strings.Join([]string{
		fmt.Sprintf(`{"event":"activeEditorChanged","file":%q,"language":"python"}`, apiFile),
		`not json`,
		fmt.Sprintf(`{"event":"activeEditorChanged","file":%q,"language":"markdown"}`, filepath.Join(ws, "README.md")),
		fmt.Sprintf(`{"event":"activeEditorChanged","file":%q}`, webFile),
		`{"event":"refresh"}`,
	}, "\n")

	var logs bytes.Buffer
	a := &app.App{Stdin: strings.NewReader(events), LogWriter: &logs}
	root := testutils.BuildCLIForTests(a, ws, []*cli.Command{Run(a)})

	if _, err := testutils.RunCLI(t, root, []string{"venvsync", "serve", "--no-watch"}); err != nil {
		t.Fatalf("serve error = %v", err)
	}

	data := testutils.ReadFile(t, filepath.Join(ws, ".vscode", "settings.json"))
	want := filepath.Join(ws, "web", ".venv", "bin", "python")
	if got := gjson.Get(data, `python\.defaultInterpreterPath`).String(); got != want {
		t.Errorf("interpreter = %q, want the last python file's venv %q", got, want)
	}
	if !strings.Contains(logs.String(), "ignoring malformed event") {
		t.Errorf("expected malformed event warning in logs:\n%s", logs.String())
	}
	if !strings.Contains(logs.String(), "stopped") {
		t.Errorf("expected stop record in logs:\n%s", logs.String())
	}
}

func TestServeCmd_WatchEmptyInput(t *testing.T) {
	ws := t.TempDir()
	var logs bytes.Buffer
	a := &app.App{Stdin: strings.NewReader(""), LogWriter: &logs}
	root := testutils.BuildCLIForTests(a, ws, []*cli.Command{Run(a)})

	if _, err := testutils.RunCLI(t, root, []string{"venvsync", "serve", "--debounce", "10ms"}); err != nil {
		t.Fatalf("serve error = %v", err)
	}
	if !strings.Contains(logs.String(), "serving") {
		t.Errorf("expected serving record in logs:\n%s", logs.String())
	}
}
