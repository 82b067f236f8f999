package filemanagement

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/yeti47/fer-collector/logging"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("clip"), 0644); err != nil {
		t.Fatalf("Failed to create %s: %v", name, err)
	}
	return path
}

func TestEnsureDirectory(t *testing.T) {
	tracker := NewLocalFileTracker(logging.NopLogger)
	dir := filepath.Join(t.TempDir(), "clips", "session")

	if err := tracker.EnsureDirectory(dir); err != nil {
		t.Fatalf("EnsureDirectory failed: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Directory missing: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected the write probe to be removed, found %d entries", len(entries))
	}
}

func TestEnsureDirectoryOnFile(t *testing.T) {
	tracker := NewLocalFileTracker(nil)
	file := touch(t, t.TempDir(), "not-a-dir")

	if err := tracker.EnsureDirectory(file); err == nil {
		t.Error("Expected error for a path that is a file")
	}
}

func TestDeleteFile(t *testing.T) {
	tracker := NewLocalFileTracker(nil)
	path := touch(t, t.TempDir(), "Happy1700000000.mp4")

	tracker.DeleteFile(path)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected file to be deleted")
	}

	// deleting again is not an error
	tracker.DeleteFile(path)
}

func TestCleanupPartialFiles(t *testing.T) {
	tracker := NewLocalFileTracker(nil)
	dir := t.TempDir()
	touch(t, dir, "Happy1700000000.mp4")
	touch(t, dir, "Happy1700000000.processing.mp4")
	touch(t, dir, "Sad1700000005.processing.mkv")

	if removed := tracker.CleanupPartialFiles(dir); removed != 2 {
		t.Errorf("Expected 2 removed files, got %d", removed)
	}
	if _, err := os.Stat(filepath.Join(dir, "Happy1700000000.mp4")); err != nil {
		t.Error("Expected the clip to be kept")
	}
}

func TestCountClips(t *testing.T) {
	tracker := NewLocalFileTracker(nil)
	dir := t.TempDir()
	touch(t, dir, "Happy1700000000.mp4")
	touch(t, dir, "Happy1700000000_processed.mp4")
	touch(t, dir, "Happy1700000042.mp4")
	touch(t, dir, "Engaged1700000001.avi")
	touch(t, dir, "Sad1700000002.processing.mp4")
	touch(t, dir, "notes.txt")
	if err := os.Mkdir(filepath.Join(dir, "Neutral1700000003"), 0755); err != nil {
		t.Fatal(err)
	}

	counts, err := tracker.CountClips(dir)
	if err != nil {
		t.Fatalf("CountClips failed: %v", err)
	}
	if counts["Happy"] != 2 || counts["Engaged"] != 1 || len(counts) != 2 {
		t.Errorf("Unexpected counts: %v", counts)
	}
}

func TestCountClipsCountsProcessedCopyOnce(t *testing.T) {
	tracker := NewLocalFileTracker(nil)
	dir := t.TempDir()
	touch(t, dir, "Happy1700000000.mp4")
	touch(t, dir, "Happy1700000000_processed.mp4")
	touch(t, dir, "Sad1700000009_processed.mkv")

	counts, err := tracker.CountClips(dir)
	if err != nil {
		t.Fatalf("CountClips failed: %v", err)
	}
	if counts["Happy"] != 1 {
		t.Errorf("Expected one Happy clip, got %d", counts["Happy"])
	}
	if counts["Sad"] != 1 {
		t.Errorf("Expected the replaced Sad clip to count once, got %d", counts["Sad"])
	}
}

func TestClipLabel(t *testing.T) {
	tests := []struct {
		name  string
		label string
		ok    bool
	}{
		{"Surprise1718000000.mp4", "Surprise", true},
		{"Calm1718000000_processed.mkv", "Calm", true},
		{"Calm1718000000.processing.mp4", "", false},
		{"1718000000.mp4", "", false},
		{"Happy.mp4", "", false},
	}
	for _, tt := range tests {
		label, ok := ClipLabel(tt.name)
		if label != tt.label || ok != tt.ok {
			t.Errorf("ClipLabel(%q) = (%q, %v), want (%q, %v)", tt.name, label, ok, tt.label, tt.ok)
		}
	}
}
