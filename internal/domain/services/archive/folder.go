package archive

import (
	"context"

	"docarchive/internal/access"
	"docarchive/internal/domain/models/archive"
)

// FolderService maintains the folder hierarchy
type FolderService interface {
	// CreateFolder creates a folder under ParentPath (nil or "/" = root level)
	CreateFolder(ctx context.Context, actor access.Actor, req *CreateFolderRequest) (*archive.Folder, error)

	// RenameFolder changes the final path segment and rewrites all descendants
	RenameFolder(ctx context.Context, actor access.Actor, path, newName string) (*archive.Folder, error)

	// MoveFolder re-parents a folder (nil = root level) and rewrites all descendants
	MoveFolder(ctx context.Context, actor access.Actor, path string, newParentPath *string) (*archive.Folder, error)

	// DeleteFolder removes an empty folder; non-empty folders yield domain.ErrGuarded
	DeleteFolder(ctx context.Context, actor access.Actor, path string) error

	// GetFolder retrieves a folder by path
	GetFolder(ctx context.Context, path string) (*archive.Folder, error)

	// FolderName returns the display name of a folder ("Root folder" for "/")
	FolderName(ctx context.Context, path string) (string, error)

	// ListChildren returns the paths of direct children of parentPath
	ListChildren(ctx context.Context, parentPath string) ([]string, error)

	// GetAll returns a snapshot of every folder keyed by path
	GetAll(ctx context.Context) (map[string]archive.FolderNode, error)

	// Tree returns the nested hierarchy below the implicit root
	Tree(ctx context.Context) (*archive.FolderTree, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	Name       string  `json:"name"`
	ParentPath *string `json:"parent_path,omitempty"` // nil for root level
}
