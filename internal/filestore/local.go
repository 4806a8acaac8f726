package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
)

// LocalStore handles references that are plain filesystem paths
type LocalStore struct {
	logger *slog.Logger
}

// NewLocalStore creates a new local store
func NewLocalStore(logger *slog.Logger) *LocalStore {
	return &LocalStore{logger: logger}
}

// Remove deletes the file at ref. Missing files are ignored.
func (s *LocalStore) Remove(ctx context.Context, ref string) error {
	if IsRemote(ref) {
		return fmt.Errorf("remove %s: object storage is not configured", ref)
	}

	err := os.Remove(ref)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", ref, err)
	}

	s.logger.Debug("file removed", "file", ref, "existed", err == nil)
	return nil
}

// Localize returns ref unchanged; local files need no copy
func (s *LocalStore) Localize(ctx context.Context, ref string) (string, func(), error) {
	if IsRemote(ref) {
		return "", nil, fmt.Errorf("localize %s: object storage is not configured", ref)
	}
	return ref, func() {}, nil
}
