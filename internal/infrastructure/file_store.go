package infrastructure

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"margemreal/pkg/logger"
	"margemreal/pkg/metrics"
)

// FileStore is a key-value store with one file per key under a data
// directory. Keys are sanitized to safe file names. Read reports absence for
// any failure so callers degrade to an empty collection instead of crashing.
type FileStore struct {
	dir     string
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// NewFileStore creates the data directory and returns the store.
func NewFileStore(dir string, logger *logger.Logger, metrics *metrics.Metrics) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{
		dir:     dir,
		logger:  logger,
		metrics: metrics,
	}, nil
}

func (s *FileStore) path(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return filepath.Join(s.dir, b.String()+".json")
}

// Read returns the stored value for key. Missing or unreadable files report
// absence, never an error.
func (s *FileStore) Read(ctx context.Context, key string) (string, bool) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			s.metrics.RecordStorageOperation("read", "error")
			s.logger.WithContext(ctx).WithError(err).WithField("key", key).Warn("Failed to read key")
		}
		return "", false
	}
	s.metrics.RecordStorageOperation("read", "success")
	return string(data), true
}

// Write replaces the value for key atomically via a temp file rename.
func (s *FileStore) Write(ctx context.Context, key, value string) error {
	path := s.path(key)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, []byte(value), 0o644); err != nil {
		s.metrics.RecordStorageOperation("write", "error")
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		s.metrics.RecordStorageOperation("write", "error")
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}

	s.metrics.RecordStorageOperation("write", "success")
	s.logger.WithContext(ctx).WithField("key", key).Debug("Key written")
	return nil
}

// Delete removes the key. Deleting an absent key is a no-op.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		s.metrics.RecordStorageOperation("delete", "error")
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	s.metrics.RecordStorageOperation("delete", "success")
	s.logger.WithContext(ctx).WithField("key", key).Debug("Key deleted")
	return nil
}
