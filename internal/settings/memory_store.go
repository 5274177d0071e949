package settings

import (
	"context"
	"fmt"
)

// MemoryStore is an in-memory Store with flat keys, used in tests.
type MemoryStore struct {
	Values map[string]any

	// SaveErr, when set, is returned by Save.
	SaveErr error

	// Saves counts successful saves that had pending changes.
	Saves int

	dirty bool
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{Values: map[string]any{}}
}

func (s *MemoryStore) Path() string { return "memory" }

func (s *MemoryStore) Load(context.Context) error { return nil }

func (s *MemoryStore) String(key string) (string, bool) {
	v, ok := s.Values[key]
	if !ok || v == nil {
		return "", false
	}
	if str, isStr := v.(string); isStr {
		return str, true
	}
	return fmt.Sprint(v), true
}

func (s *MemoryStore) Strings(key string) ([]string, bool, error) {
	v, ok := s.Values[key]
	if !ok {
		return nil, false, nil
	}
	list, err := toStrings(key, v)
	return list, true, err
}

func (s *MemoryStore) Set(key string, value any) error {
	s.Values[key] = value
	s.dirty = true
	return nil
}

func (s *MemoryStore) Save(context.Context) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	if s.dirty {
		s.Saves++
		s.dirty = false
	}
	return nil
}
