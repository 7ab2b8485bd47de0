package keyframe

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestExportPath(t *testing.T) {
	path := ExportPath("output", ".yaml")

	if !strings.Contains(path, "camera_") {
		t.Errorf("Path should contain 'camera_': %s", path)
	}
	if filepath.Dir(path) != "output" {
		t.Errorf("Path should be in output: %s", path)
	}
	if filepath.Ext(path) != ".yaml" {
		t.Errorf("Path should end in .yaml: %s", path)
	}
}

func TestFindLatest(t *testing.T) {
	testDir := t.TempDir()

	files := []string{
		filepath.Join(testDir, "orbit.txt"),
		filepath.Join(testDir, "flyby.yaml"),
		filepath.Join(testDir, "spiral.tengo"),
	}
	for i, f := range files {
		if err := os.WriteFile(f, []byte("t=0"), 0644); err != nil {
			t.Fatal(err)
		}
		modTime := time.Now().Add(time.Duration(i) * time.Hour)
		os.Chtimes(f, modTime, modTime)
	}
	// Newer but not a keyframe file
	notes := filepath.Join(testDir, "notes.md")
	os.WriteFile(notes, []byte("x"), 0644)
	later := time.Now().Add(10 * time.Hour)
	os.Chtimes(notes, later, later)

	latest, err := FindLatest(testDir)
	if err != nil {
		t.Fatalf("FindLatest failed: %v", err)
	}
	if latest != files[len(files)-1] {
		t.Errorf("Expected latest to be %s, got %s", files[len(files)-1], latest)
	}
}

func TestFindLatestEmpty(t *testing.T) {
	if _, err := FindLatest(t.TempDir()); err == nil {
		t.Error("Expected error for directory without keyframe files")
	}
}

func TestFindLatestSkipsUnreadable(t *testing.T) {
	testDir := t.TempDir()
	orbit := filepath.Join(testDir, "orbit.txt")
	if err := os.WriteFile(orbit, []byte("t=0"), 0644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-time.Hour)
	os.Chtimes(orbit, old, old)

	if err := os.Symlink(filepath.Join(testDir, "gone.txt"), filepath.Join(testDir, "broken.txt")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	latest, err := FindLatest(testDir)
	if err != nil {
		t.Fatalf("FindLatest failed: %v", err)
	}
	if latest != orbit {
		t.Errorf("Expected %s, got %s", orbit, latest)
	}
}
