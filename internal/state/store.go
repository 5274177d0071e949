package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/indaco/venvsync/internal/core"
)

// Store loads and saves the Record at a fixed path.
type Store struct {
	fs       core.FileSystem
	path     string
	record   *Record
	migrated bool
}

// NewStore creates a Store for the state file at path.
func NewStore(fs core.FileSystem, path string) *Store {
	return &Store{fs: fs, path: path, record: NewRecord()}
}

// Path returns the state file location.
func (s *Store) Path() string { return s.path }

// Load reads the state file, migrating legacy layouts. A missing file is an
// empty record.
func (s *Store) Load(ctx context.Context) error {
	data, err := s.fs.ReadFile(ctx, s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.record, s.migrated = NewRecord(), false
			return nil
		}
		return fmt.Errorf("failed to read state %q: %w", s.path, err)
	}

	rec, migrated, err := Parse(data)
	if err != nil {
		return fmt.Errorf("in state %q: %w", s.path, err)
	}
	s.record, s.migrated = rec, migrated
	return nil
}

// Migrated reports whether the last Load converted a legacy layout.
func (s *Store) Migrated() bool { return s.migrated }

// Record exposes the loaded record.
func (s *Store) Record() *Record { return s.record }

// Get returns the managed values for (root, namespace).
func (s *Store) Get(root, namespace string) Managed {
	return s.record.Get(root, namespace)
}

// Put updates the managed values for (root, namespace) in memory.
func (s *Store) Put(root, namespace string, m Managed) {
	s.record.Put(root, namespace, m)
}

// Save writes the record in the current layout.
func (s *Store) Save(ctx context.Context) error {
	s.record.Version = CurrentVersion
	data, err := json.MarshalIndent(s.record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	data = append(data, '\n')

	if err := s.fs.MkdirAll(ctx, filepath.Dir(s.path), core.PermDir); err != nil {
		return fmt.Errorf("failed to create directory for %q: %w", s.path, err)
	}
	if err := s.fs.WriteFile(ctx, s.path, data, core.PermOwnerRW); err != nil {
		return fmt.Errorf("failed to write state %q: %w", s.path, err)
	}
	s.migrated = false
	return nil
}
