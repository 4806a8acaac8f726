package archive

import (
	"fmt"
)

// SortField selects the ordering of a folder listing
type SortField string

const (
	// SortByDate lists newest documents first (default)
	SortByDate SortField = "date"

	// SortByTitle lists documents alphabetically by title
	SortByTitle SortField = "title"

	// SortByStatus groups documents by status label
	SortByStatus SortField = "status"
)

// ListOptions configures ListByFolder
type ListOptions struct {
	// Status optionally keeps only documents with exactly this status
	Status string

	// Sort defaults to SortByDate
	Sort SortField
}

// ApplyDefaults fills in default values for unset fields
func (opts *ListOptions) ApplyDefaults() {
	if opts.Sort == "" {
		opts.Sort = SortByDate
	}
}

// Validate checks the sort field
func (opts *ListOptions) Validate() error {
	switch opts.Sort {
	case SortByDate, SortByTitle, SortByStatus:
		return nil
	default:
		return fmt.Errorf("invalid sort field: %s (must be date, title or status)", opts.Sort)
	}
}

// SearchOptions configures a metadata search.
//
// Matching is a case-insensitive substring test across title, description,
// status, author, tags, cabinet, shelf and box (any field may match). An
// empty query matches every document, so clearing a search box lists the
// whole archive or folder again. Results come back in insertion order,
// unranked.
type SearchOptions struct {
	// Query is the search string; empty matches everything
	Query string

	// FolderPath optionally restricts results to one folder (non-recursive)
	FolderPath *string

	// IncludeText also matches against text extracted by the preview pipeline
	IncludeText bool
}

// MatchesAll reports whether the query places no restriction on metadata
func (opts *SearchOptions) MatchesAll() bool {
	return opts.Query == ""
}
