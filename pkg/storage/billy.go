package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// Billy is a storage backend over a go-billy filesystem.
// It serves in-memory trees as well as chrooted OS directories.
type Billy struct {
	fs   billy.Filesystem
	name string
}

// NewBilly wraps an existing billy filesystem; name is used in diagnostics
func NewBilly(fsys billy.Filesystem, name string) *Billy {
	if name == "" {
		name = fsys.Root()
	}
	return &Billy{fs: fsys, name: name}
}

// NewMemory creates an empty in-memory tree
func NewMemory(name string) *Billy {
	return NewBilly(memfs.New(), name)
}

// NewOS creates a billy backend chrooted at dir
func NewOS(dir string) *Billy {
	return NewBilly(osfs.New(dir), dir)
}

// Root returns the display name of the tree
func (b *Billy) Root() string {
	return b.name
}

// FullPath returns the display path of a tree entry
func (b *Billy) FullPath(p string) string {
	rel := cleanRel(p)
	if rel == "" {
		return b.name
	}
	return path.Join(filepath.ToSlash(b.name), rel)
}

// List returns all entries below the directory recursively
func (b *Billy) List(ctx context.Context, p string) ([]FileInfo, error) {
	root := b.billyPath(p)
	var files []FileInfo

	err := util.Walk(b.fs, root, func(walked string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rel := cleanRel(filepath.ToSlash(walked))
		if rel == cleanRel(p) {
			return nil
		}
		files = append(files, b.fileInfo(rel, info))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("billy: list %q: %w", p, err)
	}

	return files, nil
}

// ReadDir returns the immediate children of a directory
func (b *Billy) ReadDir(ctx context.Context, p string) ([]FileInfo, error) {
	infos, err := b.fs.ReadDir(b.billyPath(p))
	if err != nil {
		return nil, fmt.Errorf("billy: readdir %q: %w", p, err)
	}

	rel := cleanRel(p)
	children := make([]FileInfo, 0, len(infos))
	for _, info := range infos {
		children = append(children, b.fileInfo(path.Join(rel, info.Name()), info))
	}
	return children, nil
}

// Read opens a file for reading
func (b *Billy) Read(ctx context.Context, p string) (io.ReadCloser, error) {
	f, err := b.fs.Open(b.billyPath(p))
	if err != nil {
		return nil, fmt.Errorf("billy: open %q: %w", p, err)
	}
	return f, nil
}

// Write creates or overwrites a file, creating parent directories
func (b *Billy) Write(ctx context.Context, p string, reader io.Reader, size int64, metadata *FileInfo) error {
	name := b.billyPath(p)
	if err := b.fs.MkdirAll(path.Dir(name), 0755); err != nil {
		return fmt.Errorf("billy: mkdirall %q: %w", path.Dir(name), err)
	}

	perm := os.FileMode(0644)
	if metadata != nil && metadata.Permissions != 0 {
		perm = os.FileMode(metadata.Permissions)
	}

	f, err := b.fs.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("billy: create %q: %w", p, err)
	}

	written, err := io.Copy(f, reader)
	if err != nil {
		f.Close()
		return fmt.Errorf("billy: write %q: %w", p, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("billy: close %q: %w", p, err)
	}
	if size >= 0 && written != size {
		return fmt.Errorf("incomplete write: expected %d bytes, wrote %d", size, written)
	}

	// Timestamps are kept only where the filesystem supports changing them
	if metadata != nil && !metadata.ModTime.IsZero() {
		if change, ok := b.fs.(billy.Change); ok {
			err := change.Chtimes(name, metadata.ModTime, metadata.ModTime)
			if err != nil && !errors.Is(err, billy.ErrNotSupported) {
				return fmt.Errorf("billy: chtimes %q: %w", p, err)
			}
		}
	}
	return nil
}

// Delete removes a file or directory tree
func (b *Billy) Delete(ctx context.Context, p string) error {
	if cleanRel(p) == "" {
		return fmt.Errorf("refusing to delete backend root: %s", b.name)
	}
	if err := util.RemoveAll(b.fs, b.billyPath(p)); err != nil {
		return fmt.Errorf("billy: remove %q: %w", p, err)
	}
	return nil
}

// Exists checks if a file or directory exists
func (b *Billy) Exists(ctx context.Context, p string) (bool, error) {
	_, err := b.fs.Stat(b.billyPath(p))
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, fmt.Errorf("billy: stat %q: %w", p, err)
	}
}

// Stat returns entry metadata
func (b *Billy) Stat(ctx context.Context, p string) (*FileInfo, error) {
	info, err := b.fs.Stat(b.billyPath(p))
	if err != nil {
		return nil, fmt.Errorf("billy: stat %q: %w", p, err)
	}
	fi := b.fileInfo(cleanRel(p), info)
	return &fi, nil
}

// MkdirAll creates a directory and all necessary parents
func (b *Billy) MkdirAll(ctx context.Context, p string) error {
	if err := b.fs.MkdirAll(b.billyPath(p), 0755); err != nil {
		return fmt.Errorf("billy: mkdirall %q: %w", p, err)
	}
	return nil
}

// Close is a no-op
func (b *Billy) Close() error {
	return nil
}

// billyPath maps a relative path onto the chrooted filesystem
func (b *Billy) billyPath(p string) string {
	return "/" + cleanRel(p)
}

func (b *Billy) fileInfo(rel string, info os.FileInfo) FileInfo {
	return FileInfo{
		Name:         info.Name(),
		Path:         b.FullPath(rel),
		RelativePath: rel,
		Size:         info.Size(),
		ModTime:      info.ModTime(),
		IsDir:        info.IsDir(),
		IsRegular:    info.Mode().IsRegular(),
		Permissions:  uint32(info.Mode().Perm()),
	}
}
