package settings

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/indaco/venvsync/internal/core"
)

// ErrNotList is returned by Strings when a key holds something other than a
// list of strings. Callers skip reconciliation of that key.
var ErrNotList = errors.New("setting is not a list of strings")

// Store is a host configuration surface.
type Store interface {
	// Path is the backing file.
	Path() string

	// Load reads the backing file. A missing file is an empty store.
	Load(ctx context.Context) error

	// String returns a scalar value rendered as a string.
	String(key string) (string, bool)

	// Strings returns a list value. The bool reports presence; ErrNotList
	// is returned for present values of another type.
	Strings(key string) ([]string, bool, error)

	// Set replaces the value of key in memory.
	Set(key string, value any) error

	// Save writes pending changes. It is a no-op when nothing changed.
	Save(ctx context.Context) error
}

// Format identifies the backing file format of a Store.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFor detects the store format from a settings file name.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatJSON
}

// Open returns an unloaded Store for path, chosen by extension.
func Open(fs core.FileSystem, path string) Store {
	if FormatFor(path) == FormatTOML {
		return NewTOMLStore(fs, path)
	}
	return NewJSONStore(fs, path)
}

// Section is a view onto one dotted namespace of a Store, such as
// "python.analysis".
type Section struct {
	store  Store
	prefix string
}

// NewSection scopes store to prefix. An empty prefix addresses top-level keys.
func NewSection(store Store, prefix string) Section {
	return Section{store: store, prefix: strings.Trim(prefix, ".")}
}

// Key returns the fully qualified key for name.
func (s Section) Key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "." + name
}

// Prefix returns the section namespace.
func (s Section) Prefix() string {
	return s.prefix
}

func (s Section) String(name string) (string, bool) {
	return s.store.String(s.Key(name))
}

func (s Section) Strings(name string) ([]string, bool, error) {
	return s.store.Strings(s.Key(name))
}

func (s Section) Set(name string, value any) error {
	return s.store.Set(s.Key(name), value)
}
