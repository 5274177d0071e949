package settings

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/indaco/venvsync/internal/core"
	"github.com/pelletier/go-toml/v2"
)

// TOMLStore is a TOML document (typically pyproject.toml) whose dotted keys
// address nested tables: "tool.pyright.include" is [tool.pyright] include.
// The document is re-encoded on save, so comments are not preserved.
type TOMLStore struct {
	fs    core.FileSystem
	path  string
	doc   map[string]any
	dirty bool
}

// NewTOMLStore creates a store for the TOML file at path.
func NewTOMLStore(fs core.FileSystem, path string) *TOMLStore {
	return &TOMLStore{fs: fs, path: path, doc: map[string]any{}}
}

func (s *TOMLStore) Path() string { return s.path }

func (s *TOMLStore) Load(ctx context.Context) error {
	data, err := s.fs.ReadFile(ctx, s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.doc, s.dirty = map[string]any{}, false
			return nil
		}
		return fmt.Errorf("failed to read settings %q: %w", s.path, err)
	}

	doc := map[string]any{}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse TOML in %q: %w", s.path, err)
	}
	s.doc, s.dirty = doc, false
	return nil
}

func (s *TOMLStore) String(key string) (string, bool) {
	v, ok := lookup(s.doc, key)
	if !ok || v == nil {
		return "", false
	}
	if str, isStr := v.(string); isStr {
		return str, true
	}
	return fmt.Sprint(v), true
}

func (s *TOMLStore) Strings(key string) ([]string, bool, error) {
	v, ok := lookup(s.doc, key)
	if !ok {
		return nil, false, nil
	}
	list, err := toStrings(key, v)
	return list, true, err
}

func (s *TOMLStore) Set(key string, value any) error {
	if err := assign(s.doc, key, value); err != nil {
		return fmt.Errorf("in file %q: %w", s.path, err)
	}
	s.dirty = true
	return nil
}

func (s *TOMLStore) Save(ctx context.Context) error {
	if !s.dirty {
		return nil
	}
	data, err := toml.Marshal(s.doc)
	if err != nil {
		return fmt.Errorf("failed to marshal TOML for %q: %w", s.path, err)
	}
	if err := s.fs.MkdirAll(ctx, filepath.Dir(s.path), core.PermDir); err != nil {
		return fmt.Errorf("failed to create directory for %q: %w", s.path, err)
	}
	if err := s.fs.WriteFile(ctx, s.path, data, core.PermOwnerRW); err != nil {
		return fmt.Errorf("failed to write settings %q: %w", s.path, err)
	}
	s.dirty = false
	return nil
}

// lookup retrieves a value from nested tables using dot notation.
func lookup(doc map[string]any, key string) (any, bool) {
	parts := strings.Split(key, ".")
	current := any(doc)
	for _, part := range parts {
		table, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = table[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// assign sets a value in nested tables using dot notation, creating
// intermediate tables as needed.
func assign(doc map[string]any, key string, value any) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	parts := strings.Split(key, ".")
	current := doc
	for i, part := range parts[:len(parts)-1] {
		next, exists := current[part]
		if !exists {
			table := make(map[string]any)
			current[part] = table
			current = table
			continue
		}
		table, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("key %q is not a table", strings.Join(parts[:i+1], "."))
		}
		current = table
	}
	current[parts[len(parts)-1]] = value
	return nil
}

// toStrings converts a decoded list into []string, rejecting other shapes.
func toStrings(key string, v any) ([]string, error) {
	switch list := v.(type) {
	case []string:
		return append([]string(nil), list...), nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%q holds a %T item: %w", key, item, ErrNotList)
			}
			out = append(out, str)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%q: %w", key, ErrNotList)
	}
}
