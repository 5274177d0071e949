package core

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// MockFileSystem is an in-memory FileSystem for tests. Parent directories of
// every file are created implicitly.
type MockFileSystem struct {
	mu     sync.RWMutex
	files  map[string][]byte
	modes  map[string]os.FileMode
	dirs   map[string]bool
	errors map[string]error
}

// NewMockFileSystem returns an empty in-memory filesystem.
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		files:  make(map[string][]byte),
		modes:  make(map[string]os.FileMode),
		dirs:   map[string]bool{string(filepath.Separator): true},
		errors: make(map[string]error),
	}
}

// SetFile stores data at path with mode 0644.
func (m *MockFileSystem) SetFile(path string, data []byte) {
	m.SetFileMode(path, data, 0o644)
}

// SetFileMode stores data at path with an explicit mode.
func (m *MockFileSystem) SetFileMode(path string, data []byte, mode os.FileMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	m.files[path] = data
	m.modes[path] = mode
	m.addParents(path)
}

// SetDir creates an empty directory and its parents.
func (m *MockFileSystem) SetDir(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	m.dirs[path] = true
	m.addParents(path)
}

// SetError makes every operation on path fail with err.
func (m *MockFileSystem) SetError(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[filepath.Clean(path)] = err
}

// GetFile returns the stored content of path.
func (m *MockFileSystem) GetFile(path string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[filepath.Clean(path)]
	return data, ok
}

func (m *MockFileSystem) addParents(path string) {
	for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
		m.dirs[dir] = true
		if filepath.Dir(dir) == dir {
			return
		}
	}
}

func (m *MockFileSystem) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	path = filepath.Clean(path)
	if err, ok := m.errors[path]; ok {
		return nil, err
	}
	data, ok := m.files[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return slices.Clone(data), nil
}

func (m *MockFileSystem) WriteFile(ctx context.Context, path string, data []byte, perm os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	if err, ok := m.errors[path]; ok {
		return err
	}
	if !m.dirs[filepath.Dir(path)] {
		return &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	m.files[path] = slices.Clone(data)
	m.modes[path] = perm
	return nil
}

func (m *MockFileSystem) Stat(ctx context.Context, path string) (os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	path = filepath.Clean(path)
	if err, ok := m.errors[path]; ok {
		return nil, err
	}
	if data, ok := m.files[path]; ok {
		return mockFileInfo{name: filepath.Base(path), size: int64(len(data)), mode: m.modes[path]}, nil
	}
	if m.dirs[path] {
		return mockFileInfo{name: filepath.Base(path), mode: fs.ModeDir | PermDir}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
}

func (m *MockFileSystem) ReadDir(ctx context.Context, path string) ([]os.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	path = filepath.Clean(path)
	if err, ok := m.errors[path]; ok {
		return nil, err
	}
	if !m.dirs[path] {
		return nil, &fs.PathError{Op: "readdir", Path: path, Err: fs.ErrNotExist}
	}

	seen := make(map[string]os.DirEntry)
	for p, data := range m.files {
		if filepath.Dir(p) == path {
			info := mockFileInfo{name: filepath.Base(p), size: int64(len(data)), mode: m.modes[p]}
			seen[info.name] = fs.FileInfoToDirEntry(info)
		}
	}
	for d := range m.dirs {
		if d != path && filepath.Dir(d) == path {
			info := mockFileInfo{name: filepath.Base(d), mode: fs.ModeDir | PermDir}
			seen[info.name] = fs.FileInfoToDirEntry(info)
		}
	}

	entries := make([]os.DirEntry, 0, len(seen))
	for _, e := range seen {
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(a, b os.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return entries, nil
}

func (m *MockFileSystem) MkdirAll(ctx context.Context, path string, perm os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	if err, ok := m.errors[path]; ok {
		return err
	}
	if _, ok := m.files[path]; ok {
		return &fs.PathError{Op: "mkdir", Path: path, Err: fs.ErrExist}
	}
	m.dirs[path] = true
	m.addParents(path)
	return nil
}

func (m *MockFileSystem) Glob(ctx context.Context, pattern string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []string
	for p := range m.files {
		if ok, _ := filepath.Match(pattern, p); ok {
			matches = append(matches, p)
		}
	}
	for d := range m.dirs {
		if ok, _ := filepath.Match(pattern, d); ok {
			matches = append(matches, d)
		}
	}
	slices.Sort(matches)
	return matches, nil
}

type mockFileInfo struct {
	name string
	size int64
	mode os.FileMode
}

func (i mockFileInfo) Name() string       { return i.name }
func (i mockFileInfo) Size() int64        { return i.size }
func (i mockFileInfo) Mode() os.FileMode  { return i.mode }
func (i mockFileInfo) ModTime() time.Time { return time.Time{} }
func (i mockFileInfo) IsDir() bool        { return i.mode.IsDir() }
func (i mockFileInfo) Sys() any           { return nil }
