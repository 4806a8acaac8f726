package archive

import (
	"time"
)

type Folder struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Path       string    `json:"path" db:"path"`               // Unique, "/"-delimited, e.g. "/Legal/Contracts"
	ParentPath *string   `json:"parent_path" db:"parent_path"` // NULL = directly under root
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// FolderNode is one entry of the full folder snapshot. Subfolders is derived
// by grouping folders on parent_path, never stored.
type FolderNode struct {
	Name       string   `json:"name"`
	ParentPath *string  `json:"parent_path"`
	Subfolders []string `json:"subfolders"`
}

// FolderTree is a nested view of the hierarchy used for display.
type FolderTree struct {
	Name    string        `json:"name"`
	Path    string        `json:"path"`
	Folders []*FolderTree `json:"folders"`
}
