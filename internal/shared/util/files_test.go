package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "snapshots", "geo.hltree.yaml")

	if err := WriteFile(path, []byte("label: Module\n"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := WriteFile(path, []byte("label: Module\nchildren: []\n"), 0o600); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(got) != "label: Module\nchildren: []\n" {
		t.Fatalf("unexpected content %q", got)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the snapshot, found %d entries", len(entries))
	}
}

func TestWriteFileFailsOnFileParent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	parent := filepath.Join(dir, "geo.hl")
	if err := os.WriteFile(parent, []byte("module geo"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(filepath.Join(parent, "child.yaml"), []byte("x"), 0o644); err == nil {
		t.Fatal("expected an error when the parent is a file")
	}
}
