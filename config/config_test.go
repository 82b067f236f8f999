package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/yeti47/fer-collector/labels"
)

func TestLoadConfigCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Expected default config file to be written: %v", err)
	}
	if cfg.ClipDurationSeconds != 5 {
		t.Errorf("Expected default duration 5, got %d", cfg.ClipDurationSeconds)
	}
	if cfg.CameraDevice != "0" {
		t.Errorf("Expected default camera device 0, got %s", cfg.CameraDevice)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

func TestLoadConfigFillsMissingValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"output_dir": "/data/clips", "category": "Engagement"}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.OutputDir != "/data/clips" {
		t.Errorf("Expected output dir from file, got %s", cfg.OutputDir)
	}
	if cfg.LabelCategory() != labels.Engagement {
		t.Errorf("Expected Engagement, got %s", cfg.LabelCategory())
	}
	if cfg.ClipDurationSeconds != 5 || cfg.CameraDevice != "0" || cfg.LogPath != "logs" {
		t.Errorf("Expected defaults for missing values, got %+v", cfg)
	}
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{not json`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected parse error")
	}
}

func TestOverride(t *testing.T) {
	cfg := DefaultConfig()

	dir := "/tmp/out"
	duration := 8
	empty := ""
	enabled := true
	cfg.Override(ConfigOverrides{
		OutputDir:           &dir,
		ClipDurationSeconds: &duration,
		Category:            &empty,
		PostProcess:         &enabled,
	})

	if cfg.OutputDir != dir {
		t.Errorf("Expected output dir override, got %s", cfg.OutputDir)
	}
	if cfg.ClipDurationSeconds != 8 {
		t.Errorf("Expected duration override, got %d", cfg.ClipDurationSeconds)
	}
	if cfg.Category != "Emotions" {
		t.Errorf("Empty override must keep category, got %s", cfg.Category)
	}
	if !cfg.PostProcessing.Enabled {
		t.Error("Expected post-processing to be enabled")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"duration too short", func(c *Config) { c.ClipDurationSeconds = 2 }},
		{"duration too long", func(c *Config) { c.ClipDurationSeconds = 11 }},
		{"unknown category", func(c *Config) { c.Category = "Gestures" }},
		{"bad capture frame rate", func(c *Config) { c.CaptureFrameRate = -1 }},
		{"bad frame size", func(c *Config) { c.FrameWidth = -640 }},
		{"empty output dir", func(c *Config) { c.OutputDir = " " }},
		{"post-processing without codec", func(c *Config) {
			c.PostProcessing.Enabled = true
			c.PostProcessing.OutputCodec = ""
		}},
		{"post-processing with bad resolution", func(c *Config) {
			c.PostProcessing.Enabled = true
			c.PostProcessing.DownscaleResolution = "999p"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestLoadConfigIgnoresClipFormatKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"clip_duration_seconds": 4, "capture_codec": "MJPG", "output_frame_rate": 30}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.ClipDurationSeconds != 4 {
		t.Errorf("Expected duration 4, got %d", cfg.ClipDurationSeconds)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Unknown keys must not fail validation: %v", err)
	}
}

func TestStaticSettingsProvider(t *testing.T) {
	p := NewStaticSettingsProvider(42)
	if p.GetSettings() != 42 {
		t.Errorf("Expected 42, got %d", p.GetSettings())
	}
}
