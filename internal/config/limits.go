package config

const (
	// MaxFolderNameLength is the maximum length of one folder path segment.
	MaxFolderNameLength = 255

	// MaxFolderPathLength bounds full folder paths. Deeper hierarchies than
	// this are almost always an import mistake.
	MaxFolderPathLength = 1024

	// MaxTitleLength is the maximum length for document titles.
	MaxTitleLength = 255

	// MaxUsernameLength is the maximum length for account names.
	MaxUsernameLength = 64

	// MinPasswordLength is the shortest accepted password for new accounts.
	MinPasswordLength = 4

	// MaxExtractedTextBytes caps text pulled from a file by the preview pipeline.
	MaxExtractedTextBytes = 1 << 20

	// PreviewSize is the bounding box (pixels) of generated thumbnails.
	PreviewSize = 200
)
