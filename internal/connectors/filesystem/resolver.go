package filesystem

import (
	"path/filepath"
	"strings"
)

// ResolvePath converts a document URI to a local path.
// Handles file:// URIs and bare paths.
func ResolvePath(uri string) string {
	if strings.HasPrefix(uri, "file://") {
		return strings.TrimPrefix(uri, "file://")
	}
	return uri
}

// DisplayPath shortens a document URI for display, relative to root when
// the document lives under it.
func DisplayPath(root, uri string) string {
	path := ResolvePath(uri)
	if root == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
