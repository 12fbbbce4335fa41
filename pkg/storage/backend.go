package storage

import (
	"context"
	"io"
	"path"
	"strings"
	"time"
)

// FileInfo represents metadata about a tree entry
type FileInfo struct {
	Name         string
	Path         string
	RelativePath string
	Size         int64
	ModTime      time.Time
	IsDir        bool
	// IsRegular is false for directories and special files (sockets, devices...)
	IsRegular   bool
	Permissions uint32
}

// Backend gives access to one rooted directory tree.
// All path arguments are slash-separated and relative to the root;
// "" and "." both denote the root itself.
type Backend interface {
	// Root returns a display name for the tree root
	Root() string

	// FullPath returns the display path of a tree entry, used in diagnostics
	FullPath(path string) string

	// List returns all entries below the specified directory recursively
	List(ctx context.Context, path string) ([]FileInfo, error)

	// ReadDir returns the immediate children of a directory
	ReadDir(ctx context.Context, path string) ([]FileInfo, error)

	// Read opens a file for reading
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write creates or overwrites a file with the given content
	// If metadata is provided, permissions are applied and the modification
	// time is preserved where the underlying filesystem supports it
	Write(ctx context.Context, path string, reader io.Reader, size int64, metadata *FileInfo) error

	// Delete removes a file or directory tree
	Delete(ctx context.Context, path string) error

	// Exists checks if a file or directory exists
	Exists(ctx context.Context, path string) (bool, error)

	// Stat returns entry metadata
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// MkdirAll creates a directory and all necessary parents
	MkdirAll(ctx context.Context, path string) error

	// Close releases any resources held by the backend
	Close() error
}

// cleanRel normalizes a relative path, mapping the root to "".
func cleanRel(p string) string {
	p = path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	return strings.TrimPrefix(p, "/")
}
