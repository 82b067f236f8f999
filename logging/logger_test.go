package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LogLevelDebug},
		{"DEBUG", LogLevelDebug},
		{" warn ", LogLevelWarn},
		{"error", LogLevelError},
		{"info", LogLevelInfo},
		{"", LogLevelInfo},
		{"verbose", LogLevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDailyRotatingWriterRotatesOnDateChange(t *testing.T) {
	dir := t.TempDir()
	w := newDailyRotatingWriter(dir, "collector")
	defer w.Close()

	day := time.Date(2024, 3, 1, 23, 59, 0, 0, time.Local)
	w.now = func() time.Time { return day }

	if _, err := w.Write([]byte("first\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	day = day.Add(2 * time.Minute)
	if _, err := w.Write([]byte("second\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	first, err := os.ReadFile(filepath.Join(dir, "collector-2024-03-01.log"))
	if err != nil {
		t.Fatalf("Expected first log file: %v", err)
	}
	if strings.TrimSpace(string(first)) != "first" {
		t.Errorf("Unexpected first file content: %q", first)
	}

	second, err := os.ReadFile(filepath.Join(dir, "collector-2024-03-02.log"))
	if err != nil {
		t.Fatalf("Expected second log file: %v", err)
	}
	if strings.TrimSpace(string(second)) != "second" {
		t.Errorf("Unexpected second file content: %q", second)
	}
}

func TestCreateLoggerWritesJSON(t *testing.T) {
	dir := t.TempDir()
	logger := CreateLogger(LogLevelInfo, dir, "collector", false)

	logger.Debug("hidden")
	logger.Info("clip saved", "label", "Happy")

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected one log file, got %d", len(entries))
	}

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	content := string(data)
	if strings.Contains(content, "hidden") {
		t.Error("Debug message should be filtered at info level")
	}
	if !strings.Contains(content, `"msg":"clip saved"`) || !strings.Contains(content, `"label":"Happy"`) {
		t.Errorf("Unexpected log content: %s", content)
	}
}

func TestWithOnNopLogger(t *testing.T) {
	if With(NopLogger, "session", "x") != NopLogger {
		t.Error("With should return the NopLogger unchanged")
	}
}
