package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// newTempTree creates a temporary directory with the given files (slash paths)
func newTempTree(t *testing.T, files map[string]string) string {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "hdrcheck-storage-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	for name, content := range files {
		path := filepath.Join(tempDir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create parent dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}
	}

	return tempDir
}

// TestNewLocal tests the Local backend constructor
func TestNewLocal(t *testing.T) {
	t.Run("ValidDirectory", func(t *testing.T) {
		local, err := NewLocal(newTempTree(t, nil))
		if err != nil {
			t.Fatalf("NewLocal() error = %v", err)
		}
		defer local.Close()

		if !filepath.IsAbs(local.Root()) {
			t.Errorf("Root() = %s, want absolute path", local.Root())
		}
	})

	t.Run("NonExistentPath", func(t *testing.T) {
		_, err := NewLocal("/nonexistent/path/that/does/not/exist")
		if err == nil {
			t.Error("NewLocal() should fail for non-existent path")
		}
	})

	t.Run("FileNotDirectory", func(t *testing.T) {
		dir := newTempTree(t, map[string]string{"file.h": "x"})

		_, err := NewLocal(filepath.Join(dir, "file.h"))
		if err == nil {
			t.Error("NewLocal() should fail for file path (not directory)")
		}
	})
}

func TestLocalFullPath(t *testing.T) {
	dir := newTempTree(t, nil)
	local, err := NewLocal(dir)
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}

	abs, _ := filepath.Abs(dir)
	tests := []struct {
		rel  string
		want string
	}{
		{"", abs},
		{".", abs},
		{"a/b.h", filepath.Join(abs, "a", "b.h")},
		{"/a/../c.h", filepath.Join(abs, "c.h")},
	}

	for _, tt := range tests {
		if got := local.FullPath(tt.rel); got != tt.want {
			t.Errorf("FullPath(%q) = %s, want %s", tt.rel, got, tt.want)
		}
	}
}

func TestLocalReadDir(t *testing.T) {
	dir := newTempTree(t, map[string]string{
		"A.h":       "a",
		"B.h":       "b",
		"sub/C.h":   "c",
		"sub/d/E.h": "e",
	})
	local, _ := NewLocal(dir)
	ctx := context.Background()

	t.Run("Root", func(t *testing.T) {
		children, err := local.ReadDir(ctx, "")
		if err != nil {
			t.Fatalf("ReadDir() error = %v", err)
		}

		var names []string
		for _, c := range children {
			names = append(names, c.Name)
		}
		sort.Strings(names)
		if len(names) != 3 || names[0] != "A.h" || names[1] != "B.h" || names[2] != "sub" {
			t.Errorf("ReadDir() names = %v, want [A.h B.h sub]", names)
		}
	})

	t.Run("Subdir", func(t *testing.T) {
		children, err := local.ReadDir(ctx, "sub")
		if err != nil {
			t.Fatalf("ReadDir() error = %v", err)
		}
		for _, c := range children {
			switch c.Name {
			case "C.h":
				if !c.IsRegular || c.RelativePath != "sub/C.h" {
					t.Errorf("C.h entry = %+v", c)
				}
			case "d":
				if !c.IsDir || c.RelativePath != "sub/d" {
					t.Errorf("d entry = %+v", c)
				}
			default:
				t.Errorf("unexpected child %s", c.Name)
			}
		}
	})

	t.Run("Missing", func(t *testing.T) {
		if _, err := local.ReadDir(ctx, "nope"); err == nil {
			t.Error("ReadDir() should fail for missing directory")
		}
	})
}

func TestLocalList(t *testing.T) {
	dir := newTempTree(t, map[string]string{
		"A.h":     "a",
		"sub/C.h": "c",
	})
	local, _ := NewLocal(dir)

	files, err := local.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	// A.h, sub, sub/C.h; the root itself is excluded
	if len(files) != 3 {
		t.Errorf("List() returned %d entries, want 3", len(files))
	}

	t.Run("ContextCancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := local.List(ctx, ""); err == nil {
			t.Error("List() should fail with cancelled context")
		}
	})
}

func TestLocalReadWrite(t *testing.T) {
	local, _ := NewLocal(newTempTree(t, nil))
	ctx := context.Background()
	content := []byte("#include <jni.h>\n")

	if err := local.Write(ctx, "nested/Test.h", bytes.NewReader(content), int64(len(content)), nil); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	reader, err := local.Read(ctx, "nested/Test.h")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	defer reader.Close()

	got, _ := io.ReadAll(reader)
	if !bytes.Equal(got, content) {
		t.Errorf("Read() = %q, want %q", got, content)
	}

	t.Run("IncompleteWrite", func(t *testing.T) {
		err := local.Write(ctx, "short.h", bytes.NewReader([]byte("ab")), 10, nil)
		if err == nil {
			t.Error("Write() should fail when size does not match")
		}
	})

	t.Run("ReadNonExistentFile", func(t *testing.T) {
		if _, err := local.Read(ctx, "missing.h"); err == nil {
			t.Error("Read() should fail for non-existent file")
		}
	})
}

func TestLocalStatExists(t *testing.T) {
	local, _ := NewLocal(newTempTree(t, map[string]string{"dir/F.h": "f"}))
	ctx := context.Background()

	info, err := local.Stat(ctx, "dir/F.h")
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.IsDir || !info.IsRegular || info.Size != 1 {
		t.Errorf("Stat() = %+v, want regular file of size 1", info)
	}

	info, err = local.Stat(ctx, "dir")
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if !info.IsDir || info.IsRegular {
		t.Errorf("Stat() = %+v, want directory", info)
	}

	exists, err := local.Exists(ctx, "dir/missing.h")
	if err != nil || exists {
		t.Errorf("Exists() = %v, %v; want false, nil", exists, err)
	}
}

func TestLocalDelete(t *testing.T) {
	local, _ := NewLocal(newTempTree(t, map[string]string{"out/A.h": "a"}))
	ctx := context.Background()

	if err := local.Delete(ctx, "out"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if exists, _ := local.Exists(ctx, "out"); exists {
		t.Error("directory should be deleted")
	}

	t.Run("RefuseRoot", func(t *testing.T) {
		if err := local.Delete(ctx, ""); err == nil {
			t.Error("Delete() should refuse the root")
		}
	})

	t.Run("MkdirAll", func(t *testing.T) {
		if err := local.MkdirAll(ctx, "x/y/z"); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
		info, err := local.Stat(ctx, "x/y/z")
		if err != nil || !info.IsDir {
			t.Errorf("Stat() = %+v, %v; want directory", info, err)
		}
	})
}

// TestBackendInterface verifies that implementations satisfy Backend
func TestBackendInterface(t *testing.T) {
	var _ Backend = (*Local)(nil)
	var _ Backend = (*Billy)(nil)
}
