package archive

import (
	"fmt"
	"strings"
	"time"
)

// TagSeparator joins tags into the single stored column.
const TagSeparator = ","

type Document struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	FilePath    string    `json:"file_path" db:"file_path"`     // External file reference (local path or s3://bucket/key)
	FolderPath  string    `json:"folder_path" db:"folder_path"` // Owning folder
	Status      string    `json:"status" db:"status"`           // Free-text label
	CreatedDate time.Time `json:"created_date" db:"created_date"`
	Author      string    `json:"author" db:"author"`
	Tags        []string  `json:"tags" db:"tags"` // Stored comma-joined, NULL when empty
	Cabinet     *string   `json:"cabinet,omitempty" db:"cabinet"`
	Shelf       *string   `json:"shelf,omitempty" db:"shelf"`
	Box         *string   `json:"box,omitempty" db:"box"`

	Derived DerivedFields `json:"derived"`
}

// DerivedFields are produced asynchronously by the preview pipeline and
// stored against the document when processing finishes.
type DerivedFields struct {
	PreviewPath    *string    `json:"preview_path,omitempty" db:"preview_path"`
	ExtractedText  *string    `json:"extracted_text,omitempty" db:"extracted_text"`
	FileSize       *int64     `json:"file_size,omitempty" db:"file_size"`
	FileType       *string    `json:"file_type,omitempty" db:"file_type"`
	FileCreatedAt  *time.Time `json:"file_created_at,omitempty" db:"file_created_at"`
	FileModifiedAt *time.Time `json:"file_modified_at,omitempty" db:"file_modified_at"`
}

// DocumentPatch carries a partial update. Each non-nil field overwrites the
// matching column; nil fields are left untouched.
type DocumentPatch struct {
	Title       *string
	Description *string
	FilePath    *string
	FolderPath  *string
	Status      *string
	Author      *string
	Tags        *[]string // Pointer to an empty slice clears the tags
	Cabinet     *string
	Shelf       *string
	Box         *string
}

// IsEmpty reports whether the patch would change nothing.
func (p *DocumentPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.FilePath == nil &&
		p.FolderPath == nil && p.Status == nil && p.Author == nil &&
		p.Tags == nil && p.Cabinet == nil && p.Shelf == nil && p.Box == nil
}

// CleanTags trims whitespace and drops empty entries, keeping order.
func CleanTags(tags []string) []string {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			cleaned = append(cleaned, tag)
		}
	}
	return cleaned
}

// ValidateTags rejects tags that would not survive the comma-joined storage.
func ValidateTags(tags []string) error {
	for _, tag := range tags {
		if strings.Contains(tag, TagSeparator) {
			return fmt.Errorf("tag %q cannot contain %q", tag, TagSeparator)
		}
	}
	return nil
}

// JoinTags encodes tags for storage. An empty list is stored as NULL.
func JoinTags(tags []string) *string {
	cleaned := CleanTags(tags)
	if len(cleaned) == 0 {
		return nil
	}
	joined := strings.Join(cleaned, TagSeparator)
	return &joined
}

// SplitTags decodes the stored column. NULL and "" both yield an empty list.
func SplitTags(stored *string) []string {
	if stored == nil || *stored == "" {
		return []string{}
	}
	return CleanTags(strings.Split(*stored, TagSeparator))
}
