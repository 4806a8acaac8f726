package archive

import (
	"context"

	"docarchive/internal/domain/models/archive"
)

// FolderRepository defines data access operations for folders.
// Paths passed in are expected to be normalized (see pathutil.Normalize).
type FolderRepository interface {
	// Create inserts a folder. Duplicate path → domain.ErrConflict.
	Create(ctx context.Context, folder *archive.Folder) error

	// GetByPath retrieves a folder by its path
	GetByPath(ctx context.Context, path string) (*archive.Folder, error)

	// Exists reports whether a folder with this path is stored
	Exists(ctx context.Context, path string) (bool, error)

	// ListChildren lists direct child folders (nil parent = root level), ordered by path
	ListChildren(ctx context.Context, parentPath *string) ([]archive.Folder, error)

	// GetAll retrieves every folder (flat list), ordered by path
	GetAll(ctx context.Context) ([]archive.Folder, error)

	// CountChildren counts folders whose parent_path is path
	CountChildren(ctx context.Context, path string) (int, error)

	// Relocate changes one folder's name, path and parent_path
	Relocate(ctx context.Context, oldPath, newName, newPath string, newParentPath *string) error

	// RewriteDescendants rewrites path and parent_path of every folder strictly
	// below oldPath so the oldPath prefix becomes newPath. Returns rows changed.
	RewriteDescendants(ctx context.Context, oldPath, newPath string) (int64, error)

	// Delete removes the folder unless it still has documents or child folders.
	// Returns false (and no error) when the delete was refused.
	Delete(ctx context.Context, path string) (bool, error)

	// Count returns the total number of folders
	Count(ctx context.Context) (int, error)
}
