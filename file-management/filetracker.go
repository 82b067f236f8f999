// Package filemanagement prepares the clip output directory and removes files from it.
package filemanagement

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/yeti47/fer-collector/logging"
)

// FileTracker manages the files in the clip output directory
type FileTracker interface {
	// DeleteFile removes a file from disk
	DeleteFile(filePath string)

	// EnsureDirectory creates dir if it doesn't exist and checks that it is writable
	EnsureDirectory(dir string) error

	// CleanupPartialFiles removes leftovers of interrupted post-processing runs in dir
	CleanupPartialFiles(dir string) int

	// CountClips returns the number of recorded clips in dir per label.
	// A clip and its processed copy count once.
	CountClips(dir string) (map[string]int, error)
}

// LocalFileTracker implements FileTracker for local filesystem
type LocalFileTracker struct {
	logger logging.Logger
	mu     sync.Mutex
}

// NewLocalFileTracker creates a new local file tracker
func NewLocalFileTracker(logger logging.Logger) *LocalFileTracker {
	if logger == nil {
		logger = logging.NopLogger
	}
	return &LocalFileTracker{logger: logger}
}

func (t *LocalFileTracker) DeleteFile(filePath string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		t.logger.Warn("Failed to remove file", "path", filePath, "error", err)
	} else {
		t.logger.Debug("Deleted file", "path", filePath)
	}
}

func (t *LocalFileTracker) EnsureDirectory(dir string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write-check-*")
	if err != nil {
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)

	t.logger.Info("Output directory ready", "path", dir)
	return nil
}

func (t *LocalFileTracker) CleanupPartialFiles(dir string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.logger.Warn("Failed to read output directory", "path", dir, "error", err)
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.Contains(entry.Name(), ".processing.") {
			continue
		}
		filePath := filepath.Join(dir, entry.Name())
		t.logger.Info("Cleaning up partial file", "path", filePath)
		if err := os.Remove(filePath); err != nil {
			t.logger.Warn("Failed to remove partial file", "path", filePath, "error", err)
			continue
		}
		removed++
	}
	return removed
}

func (t *LocalFileTracker) CountClips(dir string) (map[string]int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read output directory %s: %w", dir, err)
	}

	seen := make(map[string]bool)
	counts := make(map[string]int)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		stem, label, ok := parseClipName(entry.Name())
		if !ok || seen[stem] {
			continue
		}
		seen[stem] = true
		counts[label]++
	}
	return counts, nil
}

// ClipLabel extracts the label from a clip name of the form <Label><unix seconds>[_processed].<ext>.
// Partial files are not clips.
func ClipLabel(fileName string) (string, bool) {
	_, label, ok := parseClipName(fileName)
	return label, ok
}

// parseClipName splits a clip name into its recording stem (<Label><unix seconds>) and label
func parseClipName(fileName string) (stem, label string, ok bool) {
	if strings.Contains(fileName, ".processing.") {
		return "", "", false
	}
	stem = strings.TrimSuffix(fileName, filepath.Ext(fileName))
	stem = strings.TrimSuffix(stem, "_processed")

	label = strings.TrimRightFunc(stem, unicode.IsDigit)
	if label == "" || label == stem {
		return "", "", false
	}
	return stem, label, true
}
