package waypoint

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileStore keeps all records in one YAML file, rewritten on every change.
type FileStore struct {
	path string

	mu      sync.Mutex
	records map[string]Record
}

type fileDocument struct {
	Waypoints []Record `yaml:"waypoints"`
}

// OpenFileStore loads path, or starts empty when it does not exist yet.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, records: map[string]Record{}}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read waypoints: %w", err)
	}

	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse waypoints %s: %w", path, err)
	}
	for _, r := range doc.Waypoints {
		s.records[r.Name] = r
	}
	return s, nil
}

func (s *FileStore) Save(_ context.Context, r Record) error {
	if r.Name == "" {
		return ErrInvalidName
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.records[r.Name]
	s.records[r.Name] = r
	if err := s.flushLocked(); err != nil {
		if had {
			s.records[r.Name] = prev
		} else {
			delete(s.records, r.Name)
		}
		return err
	}
	return nil
}

func (s *FileStore) List(_ context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked(), nil
}

func (s *FileStore) Get(_ context.Context, name string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[name]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return r, nil
}

func (s *FileStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	delete(s.records, name)
	if err := s.flushLocked(); err != nil {
		s.records[name] = r
		return err
	}
	return nil
}

func (s *FileStore) SetVisible(_ context.Context, name string, visible bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	prev := r
	r.IsVisible = visible
	s.records[name] = r
	if err := s.flushLocked(); err != nil {
		s.records[name] = prev
		return err
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) listLocked() []Record {
	out := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	sortRecords(out)
	return out
}

// flushLocked writes to a temp file in the same directory and renames it
// over the store file.
func (s *FileStore) flushLocked() error {
	data, err := yaml.Marshal(fileDocument{Waypoints: s.listLocked()})
	if err != nil {
		return fmt.Errorf("encode waypoints: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create waypoint dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".waypoints-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write waypoints: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close waypoints: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace waypoints: %w", err)
	}
	return nil
}
