package keyframe

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

var fileExtensions = []string{".txt", ".cam", ".yaml", ".yml", ".tengo"}

// ExportPath creates a timestamped keyframe filename in dir
func ExportPath(dir, ext string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("camera_%s%s", timestamp, ext))
}

// FindLatest finds the most recently modified keyframe file in dir
func FindLatest(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read keyframe directory: %w", err)
	}

	type candidate struct {
		path    string
		modTime time.Time
	}
	var files []candidate
	for _, entry := range entries {
		if entry.IsDir() || !isKeyframeFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		info, err := os.Stat(path)
		if err != nil {
			// removed since ReadDir, or a dangling link
			continue
		}
		files = append(files, candidate{path, info.ModTime()})
	}

	if len(files) == 0 {
		return "", fmt.Errorf("no keyframe files found in %s", dir)
	}

	// Newest first
	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.After(files[j].modTime)
	})

	return files[0].path, nil
}

func isKeyframeFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range fileExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
