package initialize

import (
	"context"
	"path/filepath"
	"slices"

	"github.com/indaco/venvsync/internal/core"
	"github.com/pelletier/go-toml/v2"
)

// venvMarker is written by `python -m venv` and virtualenv into every
// environment root.
const venvMarker = "pyvenv.cfg"

// CommonVenvFolders are offered in the interactive folder picker.
var CommonVenvFolders = []string{".venv", "venv", "env", ".env"}

// DetectVenvFolders returns the names of virtual environment folders found
// in workspace and its direct subdirectories, in first-seen order.
func DetectVenvFolders(ctx context.Context, fs core.FileSystem, workspace string) []string {
	var names []string
	add := func(name string) {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}

	entries, err := fs.ReadDir(ctx, workspace)
	if err != nil {
		return nil
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(workspace, e.Name())
		if isVenv(ctx, fs, dir) {
			add(e.Name())
			continue
		}
		children, err := fs.ReadDir(ctx, dir)
		if err != nil {
			continue
		}
		for _, c := range children {
			if c.IsDir() && isVenv(ctx, fs, filepath.Join(dir, c.Name())) {
				add(c.Name())
			}
		}
	}
	return names
}

func isVenv(ctx context.Context, fs core.FileSystem, dir string) bool {
	info, err := fs.Stat(ctx, filepath.Join(dir, venvMarker))
	return err == nil && !info.IsDir()
}

// DetectTemplate suggests a template: "pyproject" when pyproject.toml
// already carries a [tool.pyright] table, "interpreter" otherwise.
func DetectTemplate(ctx context.Context, fs core.FileSystem, workspace string) string {
	data, err := fs.ReadFile(ctx, filepath.Join(workspace, "pyproject.toml"))
	if err != nil {
		return "interpreter"
	}
	var doc struct {
		Tool map[string]any `toml:"tool"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return "interpreter"
	}
	if _, ok := doc.Tool["pyright"]; ok {
		return "pyproject"
	}
	return "interpreter"
}
