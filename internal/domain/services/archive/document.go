package archive

import (
	"context"

	"docarchive/internal/access"
	"docarchive/internal/domain/models/archive"
)

// DocumentService handles document business logic
type DocumentService interface {
	// AddDocument stores a new document and queues its file for preview processing
	AddDocument(ctx context.Context, actor access.Actor, req *CreateDocumentRequest) (*archive.Document, error)

	// GetDocument retrieves a document by ID
	GetDocument(ctx context.Context, id string) (*archive.Document, error)

	// ListByFolder lists documents directly inside a folder, newest first by default
	ListByFolder(ctx context.Context, folderPath string, opts *archive.ListOptions) ([]archive.Document, error)

	// UpdateDocument applies a partial update
	UpdateDocument(ctx context.Context, actor access.Actor, id string, patch *archive.DocumentPatch) (*archive.Document, error)

	// DeleteDocument removes the document and, best effort, its file
	DeleteDocument(ctx context.Context, actor access.Actor, id string) error

	// Search matches document metadata, optionally scoped to one folder
	Search(ctx context.Context, opts *archive.SearchOptions) ([]archive.Document, error)

	// Count returns the total number of documents
	Count(ctx context.Context) (int, error)

	// StoreDerived records preview pipeline output against a document
	StoreDerived(ctx context.Context, id string, derived *archive.DerivedFields) error
}

// CreateDocumentRequest represents a document creation request
type CreateDocumentRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	FilePath    string   `json:"file_path"`
	FolderPath  string   `json:"folder_path"`
	Status      string   `json:"status"`
	Author      string   `json:"author"`
	Cabinet     *string  `json:"cabinet,omitempty"`
	Shelf       *string  `json:"shelf,omitempty"`
	Box         *string  `json:"box,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// PreviewQueue accepts files for asynchronous preview processing.
// Submit must not block the caller.
type PreviewQueue interface {
	Submit(documentID, filePath string) error
}

// FileStore removes the files documents point at. A missing file is not an error.
type FileStore interface {
	Remove(ctx context.Context, ref string) error
}
