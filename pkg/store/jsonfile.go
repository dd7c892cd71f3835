package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// JSONFile is a string-keyed map persisted as one JSON document. Every
// change rewrites the whole file through a temp file and rename.
type JSONFile[V any] struct {
	path string

	mu   sync.RWMutex
	data map[string]V
}

// Open loads path. A missing or empty file starts an empty map; a corrupt
// one is logged and also starts empty so the bot can still come up.
func Open[V any](path string) (*JSONFile[V], error) {
	s := &JSONFile[V]{path: path, data: make(map[string]V)}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		zap.S().Infof("[Store] %s not found, starting empty", path)
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(raw) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		zap.S().Errorf("[Store] %s is not valid JSON, starting empty: %v", path, err)
		s.data = make(map[string]V)
	}
	if s.data == nil {
		s.data = make(map[string]V)
	}
	return s, nil
}

func (s *JSONFile[V]) Path() string { return s.path }

func (s *JSONFile[V]) Get(key string) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *JSONFile[V]) Set(key string, value V) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, existed := s.data[key]
	s.data[key] = value
	return s.commitLocked(key, prev, existed)
}

// Delete removes key and reports whether it was present.
func (s *JSONFile[V]) Delete(key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return false, nil
	}
	prev := s.data[key]
	delete(s.data, key)
	return true, s.commitLocked(key, prev, true)
}

// Update runs fn on the stored value for key (the zero value when absent).
// fn returns the new value and whether to keep the key at all. Nothing is
// written when fn returns an error. Values handed out by Get may be read
// concurrently, so fn must return a new value instead of mutating current.
func (s *JSONFile[V]) Update(key string, fn func(current V, exists bool) (V, bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.data[key]
	next, keep, err := fn(current, exists)
	if err != nil {
		return err
	}
	if keep {
		s.data[key] = next
	} else {
		delete(s.data, key)
	}
	return s.commitLocked(key, current, exists)
}

func (s *JSONFile[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Keys returns the stored keys in sorted order.
func (s *JSONFile[V]) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// commitLocked writes the file, restoring key to prev when that fails so
// memory never runs ahead of disk.
func (s *JSONFile[V]) commitLocked(key string, prev V, existed bool) error {
	if err := s.saveLocked(); err != nil {
		if existed {
			s.data[key] = prev
		} else {
			delete(s.data, key)
		}
		return err
	}
	return nil
}

func (s *JSONFile[V]) saveLocked() error {
	raw, err := json.MarshalIndent(s.data, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", s.path, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		zap.S().Errorf("[Store] Failed to save %s: %v", s.path, err)
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}
