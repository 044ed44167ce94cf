package storage_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/iconforge/iconforge/adapters/storage"
)

func TestOpenDir_CreatesMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b")
	dir, err := storage.OpenDir(path, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("directory not created: %v", err)
	}

	// Probe must be cleaned up.
	entries, err := os.ReadDir(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("directory not empty after open: %v", entries)
	}
	_ = dir
}

func TestDir_WriteReadRemove(t *testing.T) {
	dir, err := storage.OpenDir(t.TempDir(), 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := context.Background()

	if err := dir.Write(ctx, "out.bin", []byte("payload")); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := dir.Open("out.bin")
	if err != nil {
		t.Fatalf("open file: %v", err)
	}
	got, err := io.ReadAll(f)
	f.Close()
	if err != nil || string(got) != "payload" {
		t.Fatalf("read back: %q, %v", got, err)
	}

	// Overwrite truncates.
	if err := dir.Write(ctx, "out.bin", []byte("x")); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	raw, err := os.ReadFile(dir.Path("out.bin"))
	if err != nil || string(raw) != "x" {
		t.Fatalf("after rewrite: %q, %v", raw, err)
	}

	if err := dir.Remove("out.bin"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := dir.Remove("out.bin"); err != nil {
		t.Errorf("removing a missing file errored: %v", err)
	}
}

func TestDir_WriteCancelledContext(t *testing.T) {
	dir, err := storage.OpenDir(t.TempDir(), 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := dir.Write(ctx, "never.bin", []byte("data")); err == nil {
		t.Error("write succeeded on cancelled context")
	}
}
