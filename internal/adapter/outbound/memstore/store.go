// Package memstore provides an in-memory implementation of the section
// store port.
// NOTE: This implementation is not persistent and data will be lost on
// restart. It backs tests and the default configuration.
package memstore

import (
	"context"
	"log/slog"
	"sync"

	"github.com/oasdraft/oasdraft/internal/usecase"
)

// Store keeps section payloads in a mutex-guarded map.
type Store struct {
	mu       sync.RWMutex
	sections map[string][]byte
	logger   *slog.Logger
}

// New creates an empty in-memory store.
func New(logger *slog.Logger) *Store {
	return &Store{
		sections: make(map[string][]byte),
		logger:   logger.With("component", "mem_store"),
	}
}

// Save overwrites the value stored under key. The data is copied so later
// caller mutations cannot corrupt the stored value.
func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, len(data))
	copy(buf, data)
	s.sections[key] = buf
	s.logger.Debug("Stored section.", slog.String("key", key), slog.Int("bytes", len(data)))
	return nil
}

// Load returns a copy of the value stored under key.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.sections[key]
	if !ok {
		return nil, usecase.ErrSectionNotFound
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, nil
}
