// Package filestore resolves the file references stored on documents.
// References are local paths or s3://bucket/key URLs.
package filestore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"docarchive/internal/config"
)

// Store removes and fetches document files. A missing file is never an
// error for Remove.
type Store interface {
	Remove(ctx context.Context, ref string) error

	// Localize returns a local path for ref. cleanup deletes any temporary
	// copy and must be called once the path is no longer needed.
	Localize(ctx context.Context, ref string) (path string, cleanup func(), err error)
}

// S3Scheme prefixes object references
const S3Scheme = "s3://"

// IsRemote reports whether ref points at object storage
func IsRemote(ref string) bool {
	return strings.HasPrefix(ref, S3Scheme)
}

// New builds the store selected by cfg.FileStore
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	switch cfg.FileStore {
	case "", "local":
		return NewLocalStore(logger), nil
	case "s3":
		return NewS3Store(ctx, S3Options{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown file store %q", cfg.FileStore)
	}
}
