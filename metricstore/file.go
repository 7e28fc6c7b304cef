package metricstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	recipehub "github.com/DavidDuveau/RecipeHub-sub000"
)

// File persists metrics as a single JSON document keyed by provider
// name, written atomically via a temp file and rename. A missing file
// reads as an empty store.
type File struct {
	mu      sync.Mutex
	path    string
	records map[string]recipehub.UsageMetrics
	loaded  bool
}

var _ recipehub.MetricsStore = (*File)(nil)

// NewFile creates a file-backed store at path. The file is created on
// first save.
func NewFile(path string) *File {
	return &File{path: path}
}

func (s *File) Save(_ context.Context, m recipehub.UsageMetrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return err
	}
	s.records[m.Provider] = m
	return s.flush()
}

func (s *File) SaveAll(_ context.Context, all []recipehub.UsageMetrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]recipehub.UsageMetrics, len(all))
	for _, m := range all {
		s.records[m.Provider] = m
	}
	s.loaded = true
	return s.flush()
}

func (s *File) LoadAll(context.Context) ([]recipehub.UsageMetrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	out := make([]recipehub.UsageMetrics, 0, len(s.records))
	for _, m := range s.records {
		out = append(out, m)
	}
	return out, nil
}

// ensureLoaded reads the file into memory once. Caller holds s.mu.
func (s *File) ensureLoaded() error {
	if s.loaded {
		return nil
	}

	s.records = make(map[string]recipehub.UsageMetrics)
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("metricstore: read %s: %w", s.path, err)
	}
	if err := json.Unmarshal(data, &s.records); err != nil {
		return fmt.Errorf("metricstore: parse %s: %w", s.path, err)
	}
	s.loaded = true
	return nil
}

// flush writes the whole document atomically. Caller holds s.mu.
func (s *File) flush() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("metricstore: encode: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("metricstore: mkdir: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("metricstore: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("metricstore: rename %s: %w", tmp, err)
	}
	return nil
}
