package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/indaco/venvsync/internal/core"
	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pyproject = `[project]
name = "demo"
version = "0.1.0"

[tool.pyright]
include = ["src"]
typeCheckingMode = "off"
exclude = "build"
`

func TestTOMLStore_ReadNested(t *testing.T) {
	fs := core.NewMockFileSystem()
	fs.SetFile("/ws/pyproject.toml", []byte(pyproject))

	s := NewTOMLStore(fs, "/ws/pyproject.toml")
	require.NoError(t, s.Load(context.Background()))

	list, ok, err := s.Strings("tool.pyright.include")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"src"}, list)

	mode, ok := s.String("tool.pyright.typeCheckingMode")
	assert.True(t, ok)
	assert.Equal(t, "off", mode)

	_, ok, err = s.Strings("tool.pyright.exclude")
	assert.True(t, ok)
	assert.True(t, errors.Is(err, ErrNotList))

	_, ok, err = s.Strings("tool.pyright.extraPaths")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTOMLStore_SetAndSave(t *testing.T) {
	fs := core.NewMockFileSystem()
	fs.SetFile("/ws/pyproject.toml", []byte(pyproject))

	ctx := context.Background()
	s := NewTOMLStore(fs, "/ws/pyproject.toml")
	require.NoError(t, s.Load(ctx))
	require.NoError(t, s.Set("tool.pyright.extraPaths", []string{".venv/lib/python3.12/site-packages"}))
	require.NoError(t, s.Set("tool.pyright.typeCheckingMode", "standard"))
	require.NoError(t, s.Save(ctx))

	data, ok := fs.GetFile("/ws/pyproject.toml")
	require.True(t, ok)

	var doc struct {
		Project struct {
			Name string `toml:"name"`
		} `toml:"project"`
		Tool struct {
			Pyright struct {
				Include          []string `toml:"include"`
				ExtraPaths       []string `toml:"extraPaths"`
				TypeCheckingMode string   `toml:"typeCheckingMode"`
			} `toml:"pyright"`
		} `toml:"tool"`
	}
	require.NoError(t, toml.Unmarshal(data, &doc))
	assert.Equal(t, "demo", doc.Project.Name)
	assert.Equal(t, []string{"src"}, doc.Tool.Pyright.Include)
	assert.Equal(t, []string{".venv/lib/python3.12/site-packages"}, doc.Tool.Pyright.ExtraPaths)
	assert.Equal(t, "standard", doc.Tool.Pyright.TypeCheckingMode)
}

func TestTOMLStore_SetThroughScalarFails(t *testing.T) {
	fs := core.NewMockFileSystem()
	fs.SetFile("/ws/pyproject.toml", []byte("tool = 1\n"))

	s := NewTOMLStore(fs, "/ws/pyproject.toml")
	require.NoError(t, s.Load(context.Background()))
	err := s.Set("tool.pyright.include", []string{"."})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a table")
}

func TestTOMLStore_MissingFileAndParseError(t *testing.T) {
	fs := core.NewMockFileSystem()
	s := NewTOMLStore(fs, "/ws/pyproject.toml")
	require.NoError(t, s.Load(context.Background()))
	_, ok := s.String("tool.pyright.include")
	assert.False(t, ok)

	fs.SetFile("/ws/bad.toml", []byte("[tool\n"))
	err := NewTOMLStore(fs, "/ws/bad.toml").Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse TOML")
}
