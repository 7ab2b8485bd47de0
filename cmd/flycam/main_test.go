package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPrepareOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "renders", "frames", "frame_%05d.png")
	if err := prepareOutput(path); err != nil {
		t.Fatalf("prepareOutput failed: %v", err)
	}
	if info, err := os.Stat(filepath.Dir(path)); err != nil || !info.IsDir() {
		t.Errorf("output directory not created: %v", err)
	}
}

func TestPrepareOutputUnderFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "output")
	if err := os.WriteFile(blocker, []byte("not a dir"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := prepareOutput(filepath.Join(blocker, "path.yaml")); err == nil {
		t.Error("expected error when the parent is a regular file")
	}
}
