package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name string, mtime time.Time) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
}

func TestScanOrdersNewestFirst(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	writeFile(t, dir, "old.png", base)
	writeFile(t, dir, "guild/mid.png", base.Add(time.Minute))
	writeFile(t, dir, "guild/new.png", base.Add(2*time.Minute))

	images, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(images) != 3 {
		t.Fatalf("Scan found %d files, want 3", len(images))
	}

	wantPaths := []string{"guild/new.png", "guild/mid.png", "old.png"}
	for i, want := range wantPaths {
		if images[i].Path != want {
			t.Errorf("images[%d].Path = %q, want %q", i, images[i].Path, want)
		}
	}
	if images[0].Filename != "new.png" {
		t.Errorf("Filename = %q, want new.png", images[0].Filename)
	}
}

func TestScanMissingDirectory(t *testing.T) {
	images, err := Scan(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("Scan of missing dir returned error: %v", err)
	}
	if len(images) != 0 {
		t.Errorf("Scan of missing dir found %d files, want 0", len(images))
	}
}

func TestScanSkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "empty", "nested"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, dir, "a.png", time.Now())

	images, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(images) != 1 {
		t.Fatalf("Scan found %d entries, want 1 (directories skipped)", len(images))
	}
}
