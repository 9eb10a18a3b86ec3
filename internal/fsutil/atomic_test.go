package fsutil

import (
	"strings"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Run("lands file without tmp sibling", func(t *testing.T) {
		mfs := NewMemoryFileSystem()

		if err := WriteFileAtomic(mfs, "/out/session.csv", []byte("frame_number\n0\n"), 0644); err != nil {
			t.Fatalf("WriteFileAtomic failed: %v", err)
		}

		data, err := mfs.ReadFile("/out/session.csv")
		if err != nil {
			t.Fatalf("ReadFile failed: %v", err)
		}
		if string(data) != "frame_number\n0\n" {
			t.Errorf("unexpected content %q", data)
		}
		if mfs.Exists("/out/session.csv.tmp") {
			t.Error("temporary file left behind")
		}
	})

	t.Run("replaces existing file", func(t *testing.T) {
		mfs := NewMemoryFileSystem()
		if err := mfs.WriteFile("/out/session.csv", []byte("old"), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}

		if err := WriteFileAtomic(mfs, "/out/session.csv", []byte("new"), 0644); err != nil {
			t.Fatalf("WriteFileAtomic failed: %v", err)
		}

		data, err := mfs.ReadFile("/out/session.csv")
		if err != nil {
			t.Fatalf("ReadFile failed: %v", err)
		}
		if string(data) != "new" {
			t.Errorf("expected replaced content, got %q", data)
		}
	})

	t.Run("write failure names the tmp path", func(t *testing.T) {
		osfs := OSFileSystem{}

		err := WriteFileAtomic(osfs, "/nonexistent-dir/out.csv", []byte("x"), 0644)
		if err == nil {
			t.Fatal("expected error writing into missing directory")
		}
		if !strings.Contains(err.Error(), "/nonexistent-dir/out.csv.tmp") {
			t.Errorf("expected tmp path in error, got %v", err)
		}
	})
}
