// Package filestore persists document sections as individual JSON files in
// a directory, one file per logical key. Writes go through a temp file and
// rename so a crash mid-write never leaves a half-written section behind;
// a torn section would otherwise be loaded as corrupt and silently dropped.
package filestore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/oasdraft/oasdraft/internal/usecase"
)

// Store writes each section under <dir>/<key>.json.
type Store struct {
	dir    string
	logger *slog.Logger
}

// New creates the store, making the directory if needed.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory %s: %w", dir, err)
	}
	return &Store{
		dir:    dir,
		logger: logger.With("component", "file_store", "dir", dir),
	}, nil
}

// Save overwrites the file for key atomically.
func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	key = filepath.Base(key)
	target := s.path(key)
	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", key, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", key, err)
	}
	s.logger.Debug("Stored section file.", slog.String("key", key), slog.Int("bytes", len(data)))
	return nil
}

// Load reads the file for key. A missing file maps to ErrSectionNotFound.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, usecase.ErrSectionNotFound
		}
		return nil, fmt.Errorf("read section %s: %w", key, err)
	}
	return data, nil
}

func (s *Store) path(key string) string {
	// Keys are the fixed logical section names, but never trust them as
	// path components outright.
	return filepath.Join(s.dir, filepath.Base(key)+".json")
}
