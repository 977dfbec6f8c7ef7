package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"dtek-outage-monitor/internal/models"
)

// Storage keeps the single NotificationState record. Load returns nil, nil
// when there is no active notification; after Clear the store is
// indistinguishable from one that was never written.
type Storage interface {
	Load() (*models.NotificationState, error)
	Save(state models.NotificationState) error
	Clear() error
	Close() error
}

type fileStorage struct {
	path string
}

func NewFileStorage(path string) Storage {
	return &fileStorage{path: path}
}

func (s *fileStorage) Save(state models.NotificationState) error {
	jsonData, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("%w: encode state: %w", models.ErrStore, err)
	}
	return s.write(jsonData)
}

// Clear writes an empty object rather than removing the file so the path
// stays in place for whatever mounts or tracks it.
func (s *fileStorage) Clear() error {
	return s.write([]byte("{}"))
}

func (s *fileStorage) Load() (*models.NotificationState, error) {
	jsonData, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", models.ErrStore, s.path, err)
	}

	jsonData = bytes.TrimSpace(jsonData)
	if len(jsonData) == 0 {
		return nil, nil
	}

	var state models.NotificationState
	if err := json.Unmarshal(jsonData, &state); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", models.ErrStore, s.path, err)
	}
	if state.MessageID == 0 {
		return nil, nil
	}
	return &state, nil
}

func (s *fileStorage) Close() error { return nil }

// write replaces the file atomically so a crash mid-write never leaves a
// truncated record behind.
func (s *fileStorage) write(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: create dir: %w", models.ErrStore, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", models.ErrStore, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write temp file: %w", models.ErrStore, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp file: %w", models.ErrStore, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("%w: chmod: %w", models.ErrStore, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("%w: rename: %w", models.ErrStore, err)
	}
	return nil
}

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open returns the store for the configured backend.
func Open(backend, filePath, dbPath string) (Storage, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStorage(filePath), nil
	case BackendSQLite:
		return NewSQLiteStorage(dbPath)
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", models.ErrStore, backend)
	}
}
