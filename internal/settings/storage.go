package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	defaultFileMode = 0644
	defaultDirMode  = 0755
)

// Storage persists the encoded settings record.
// Load returns nil data and a nil error when nothing has been saved yet.
type Storage interface {
	Load() ([]byte, error)
	Save(data []byte) error
}

// FileStorage keeps the record in a single YAML file.
type FileStorage struct {
	path string
}

// NewFileStorage returns a file-backed storage at path.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Path returns the backing file path.
func (f *FileStorage) Path() string { return f.path }

func (f *FileStorage) Load() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("settings: read %s: %w", f.path, err)
	}
	return data, nil
}

// Save writes through a temp file and rename so readers never see a torn file.
func (f *FileStorage) Save(data []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, defaultDirMode); err != nil {
		return fmt.Errorf("settings: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.tmp")
	if err != nil {
		return fmt.Errorf("settings: create temp: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("settings: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("settings: close temp: %w", err)
	}
	if err := os.Chmod(tmpPath, defaultFileMode); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("settings: chmod: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("settings: rename: %w", err)
	}
	return nil
}

// MemoryStorage keeps the record in memory. Used by tests and by
// one-shot commands that must not touch the user's file.
type MemoryStorage struct {
	Data    []byte
	SaveErr error
	Saves   int
}

func (m *MemoryStorage) Load() ([]byte, error) {
	return append([]byte(nil), m.Data...), nil
}

func (m *MemoryStorage) Save(data []byte) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Saves++
	m.Data = append([]byte(nil), data...)
	return nil
}
