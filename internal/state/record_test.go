package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_CurrentVersion(t *testing.T) {
	data := []byte(`{
  "version": 2,
  "roots": {
    "/ws/proj": {
      "python.analysis": {"include": ["proj"], "extraPaths": ["proj/.venv/lib/python3.12/site-packages"]}
    }
  }
}`)
	rec, migrated, err := Parse(data)
	require.NoError(t, err)
	assert.False(t, migrated)
	assert.Equal(t, Managed{
		Include:    []string{"proj"},
		ExtraPaths: []string{"proj/.venv/lib/python3.12/site-packages"},
	}, rec.Get("/ws/proj", "python.analysis"))
	assert.True(t, rec.Get("/ws/proj", "basedpyright.analysis").IsEmpty())
}

func TestParse_LegacyShapes(t *testing.T) {
	data := []byte(`{
  "python.analysis|/ws/a": "a/.venv/lib/python3.11/site-packages",
  "basedpyright.analysis|/ws/a": ["x", 7, "y"],
  "python.analysis|/ws/b": {"include": ["b"], "extraPaths": "b/site", "exclude": ["**/.*"]},
  "no-separator": ["ignored"],
  "python.analysis|/ws/c": 42
}`)
	rec, migrated, err := Parse(data)
	require.NoError(t, err)
	assert.True(t, migrated)
	assert.Equal(t, CurrentVersion, rec.Version)

	assert.Equal(t, []string{"a/.venv/lib/python3.11/site-packages"}, rec.Get("/ws/a", "python.analysis").ExtraPaths)
	assert.Equal(t, []string{"x", "y"}, rec.Get("/ws/a", "basedpyright.analysis").ExtraPaths)
	assert.Equal(t, Managed{
		Include:    []string{"b"},
		Exclude:    []string{"**/.*"},
		ExtraPaths: []string{"b/site"},
	}, rec.Get("/ws/b", "python.analysis"))
	assert.True(t, rec.Get("/ws/c", "python.analysis").IsEmpty())
	assert.NotContains(t, rec.Roots, "/ws/c")
	assert.Len(t, rec.Roots, 2)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"invalid json", `{"version":`, "not valid JSON"},
		{"not an object", `["a"]`, "must be a JSON object"},
		{"future version", `{"version": 3, "roots": {}}`, "newer than supported"},
		{"unknown version", `{"version": 1, "roots": {}}`, "unknown state version"},
		{"bad roots", `{"version": 2, "roots": []}`, "failed to decode state"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	rec, migrated, err := Parse([]byte("\n"))
	require.NoError(t, err)
	assert.False(t, migrated)
	assert.Empty(t, rec.Roots)
}

func TestRecord_PutEmptyRemoves(t *testing.T) {
	rec := NewRecord()
	rec.Put("/ws/proj/", "python.analysis", Managed{Include: []string{"proj"}})
	rec.Put("/ws/proj", "basedpyright.analysis", Managed{Include: []string{"proj"}})
	assert.Equal(t, []string{"basedpyright.analysis", "python.analysis"}, rec.Namespaces("/ws/proj"))

	rec.Put("/ws/proj", "python.analysis", Managed{})
	assert.Equal(t, []string{"basedpyright.analysis"}, rec.Namespaces("/ws/proj"))

	rec.Put("/ws/proj", "basedpyright.analysis", Managed{})
	assert.Empty(t, rec.Roots)
}

func TestRecord_PutCopies(t *testing.T) {
	rec := NewRecord()
	include := []string{"a"}
	rec.Put("/r", "ns", Managed{Include: include})
	include[0] = "mutated"
	assert.Equal(t, []string{"a"}, rec.Get("/r", "ns").Include)
}
