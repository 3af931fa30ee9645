package fsutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"docchat/src/fsutil"
)

func TestListFilesSkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}

	store := fsutil.NewLocalFileStore()
	files, err := store.ListFiles(dir)
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}

	if len(files) != 1 || files[0] != "a.txt" {
		t.Errorf("ListFiles() = %v, want [a.txt]", files)
	}
}

func TestMakeDirectoryThenRead(t *testing.T) {
	dir := t.TempDir()
	store := fsutil.NewLocalFileStore()

	nested := filepath.Join(dir, "x", "y")
	if err := store.MakeDirectory(nested); err != nil {
		t.Fatalf("MakeDirectory() error = %v", err)
	}

	path := filepath.Join(nested, "f.txt")
	if err := os.WriteFile(path, []byte("content"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	data, err := store.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "content" {
		t.Errorf("ReadFile() = %q, want %q", data, "content")
	}
}
