package archive

import (
	"context"

	"docarchive/internal/domain/models/archive"
)

// DocumentRepository defines data access operations for documents
type DocumentRepository interface {
	// Create inserts a document. Unknown folder_path → domain.ErrNotFound.
	Create(ctx context.Context, doc *archive.Document) error

	// GetByID retrieves a document by ID
	GetByID(ctx context.Context, id string) (*archive.Document, error)

	// ListByFolder lists documents directly inside folderPath (non-recursive)
	ListByFolder(ctx context.Context, folderPath string, opts *archive.ListOptions) ([]archive.Document, error)

	// Update applies a partial update. Empty patch → domain.ErrValidation.
	Update(ctx context.Context, id string, patch *archive.DocumentPatch) error

	// Delete removes the row and returns the file reference it pointed to
	Delete(ctx context.Context, id string) (filePath string, err error)

	// Search matches metadata fields case-insensitively, in insertion order
	Search(ctx context.Context, opts *archive.SearchOptions) ([]archive.Document, error)

	// CountByFolder counts documents directly inside folderPath
	CountByFolder(ctx context.Context, folderPath string) (int, error)

	// RewriteFolderPaths moves every document in oldPath or below it to the
	// matching location under newPath. Returns rows changed.
	RewriteFolderPaths(ctx context.Context, oldPath, newPath string) (int64, error)

	// StoreDerived records preview pipeline output (last write wins)
	StoreDerived(ctx context.Context, id string, derived *archive.DerivedFields) error

	// Count returns the total number of documents
	Count(ctx context.Context) (int, error)
}
