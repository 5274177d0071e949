package settings

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/indaco/venvsync/internal/core"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// JSONStore is a settings.json file whose keys are flat dotted names
// ("python.analysis.extraPaths"). Edits go through sjson so the rest of the
// document keeps its layout and key order.
type JSONStore struct {
	fs      core.FileSystem
	path    string
	data    []byte
	existed bool
	dirty   bool

	// canonical is set when the file is missing or already laid out the
	// way prettify writes it; such files are re-indented on save.
	canonical bool
}

var prettyOptions = &pretty.Options{Width: 80, Prefix: "", Indent: "    "}

func prettify(data []byte) []byte {
	return pretty.PrettyOptions(data, prettyOptions)
}

// NewJSONStore creates a store for the JSON file at path.
func NewJSONStore(fs core.FileSystem, path string) *JSONStore {
	return &JSONStore{fs: fs, path: path}
}

func (s *JSONStore) Path() string { return s.path }

func (s *JSONStore) Load(ctx context.Context) error {
	data, err := s.fs.ReadFile(ctx, s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.data, s.existed, s.dirty, s.canonical = nil, false, false, true
			return nil
		}
		return fmt.Errorf("failed to read settings %q: %w", s.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		s.data, s.existed, s.dirty, s.canonical = nil, true, false, true
		return nil
	}
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("settings %q is not valid JSON", s.path)
	}
	if !gjson.ParseBytes(data).IsObject() {
		return fmt.Errorf("settings %q must contain a JSON object", s.path)
	}

	s.data, s.existed, s.dirty = data, true, false
	s.canonical = bytes.Equal(bytes.TrimRight(prettify(data), "\n"), bytes.TrimRight(data, "\n"))
	return nil
}

func (s *JSONStore) String(key string) (string, bool) {
	r := gjson.GetBytes(s.data, escapeKey(key))
	if !r.Exists() || r.Type == gjson.Null {
		return "", false
	}
	return r.String(), true
}

func (s *JSONStore) Strings(key string) ([]string, bool, error) {
	r := gjson.GetBytes(s.data, escapeKey(key))
	if !r.Exists() {
		return nil, false, nil
	}
	if !r.IsArray() {
		return nil, true, fmt.Errorf("%q: %w", key, ErrNotList)
	}

	var (
		out    []string
		badErr error
	)
	r.ForEach(func(_, item gjson.Result) bool {
		if item.Type != gjson.String {
			badErr = fmt.Errorf("%q holds a %s item: %w", key, item.Type, ErrNotList)
			return false
		}
		out = append(out, item.Str)
		return true
	})
	if badErr != nil {
		return nil, true, badErr
	}
	return out, true, nil
}

func (s *JSONStore) Set(key string, value any) error {
	doc := s.data
	if len(doc) == 0 {
		doc = []byte("{}")
	}
	updated, err := sjson.SetBytes(doc, escapeKey(key), value)
	if err != nil {
		return fmt.Errorf("failed to set %q in %q: %w", key, s.path, err)
	}
	s.data = updated
	s.dirty = true
	return nil
}

func (s *JSONStore) Save(ctx context.Context) error {
	if !s.dirty {
		return nil
	}

	out := s.data
	if s.canonical {
		// sjson inserts new keys compactly; keep editor-formatted files
		// in the editor's layout. Hand-formatted files are left as is.
		out = prettify(out)
	}
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}

	if err := s.fs.MkdirAll(ctx, filepath.Dir(s.path), core.PermDir); err != nil {
		return fmt.Errorf("failed to create directory for %q: %w", s.path, err)
	}
	if err := s.fs.WriteFile(ctx, s.path, out, core.PermOwnerRW); err != nil {
		return fmt.Errorf("failed to write settings %q: %w", s.path, err)
	}

	s.data = out
	s.existed = true
	s.dirty = false
	return nil
}

// escapeKey turns a literal settings key into a gjson/sjson path.
func escapeKey(key string) string {
	var sb strings.Builder
	for _, r := range key {
		switch r {
		case '\\', '.', '*', '?', '|', '#', '@':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
