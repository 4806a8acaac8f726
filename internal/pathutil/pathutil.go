package pathutil

import (
	"fmt"
	"strings"
)

// Root is the implicit top of the folder hierarchy. It is never stored.
const Root = "/"

// Normalize returns the canonical form of a folder path: absolute, no
// repeated slashes, no trailing slash. An empty path normalizes to Root.
//
// Examples:
//   - Normalize("a//b/") → "/a/b"
//   - Normalize("") → "/"
func Normalize(path string) string {
	segments := Split(path)
	if len(segments) == 0 {
		return Root
	}
	return Root + strings.Join(segments, "/")
}

// Split returns the non-empty segments of a path.
func Split(path string) []string {
	parts := strings.Split(path, "/")
	segments := parts[:0]
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

// Join appends name to parent. A nil or root parent yields a root-level path.
func Join(parent *string, name string) string {
	if parent == nil {
		return Normalize(name)
	}
	return Normalize(*parent + "/" + name)
}

// IsRoot reports whether path denotes the implicit root.
func IsRoot(path string) bool {
	return Normalize(path) == Root
}

// Base returns the final segment of path, or "" for the root.
func Base(path string) string {
	segments := Split(path)
	if len(segments) == 0 {
		return ""
	}
	return segments[len(segments)-1]
}

// Parent returns the parent path, or nil when path is root-level (or root).
func Parent(path string) *string {
	segments := Split(path)
	if len(segments) <= 1 {
		return nil
	}
	parent := Root + strings.Join(segments[:len(segments)-1], "/")
	return &parent
}

// Depth returns the number of segments in path. Root has depth 0.
func Depth(path string) int {
	return len(Split(path))
}

// IsDescendant reports whether path lies strictly below ancestor. Matching is
// done segment by segment, so "/ab" is not a descendant of "/a".
func IsDescendant(path, ancestor string) bool {
	p := Split(path)
	a := Split(ancestor)
	if len(p) <= len(a) {
		return false
	}
	for i := range a {
		if p[i] != a[i] {
			return false
		}
	}
	return true
}

// IsWithin reports whether path equals ancestor or is one of its descendants.
func IsWithin(path, ancestor string) bool {
	return Normalize(path) == Normalize(ancestor) || IsDescendant(path, ancestor)
}

// ReplacePrefix rewrites path so that its oldPrefix segments become
// newPrefix. Paths outside oldPrefix are returned unchanged (normalized).
//
// Examples:
//   - ReplacePrefix("/a/b", "/a", "/x") → "/x/b"
//   - ReplacePrefix("/ab/c", "/a", "/x") → "/ab/c"
func ReplacePrefix(path, oldPrefix, newPrefix string) string {
	if !IsWithin(path, oldPrefix) {
		return Normalize(path)
	}
	rest := Split(path)[len(Split(oldPrefix)):]
	return Normalize(newPrefix + "/" + strings.Join(rest, "/"))
}

// ValidateName checks that name can be used as a single path segment.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("name cannot be empty")
	case strings.Contains(name, "/"):
		return fmt.Errorf("name cannot contain slashes")
	case name == "." || name == "..":
		return fmt.Errorf("name cannot be %q", name)
	}
	return nil
}
