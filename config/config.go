package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/yeti47/fer-collector/labels"
	"github.com/yeti47/fer-collector/resolution"
)

const (
	MinClipDurationSeconds = 3
	MaxClipDurationSeconds = 10
)

// Config holds the application configuration
type Config struct {
	CameraDevice        string               `json:"camera_device"`         // Device index, "0" is the default webcam
	FrameWidth          int                  `json:"frame_width"`           // Requested capture width, 0 keeps the device default
	FrameHeight         int                  `json:"frame_height"`          // Requested capture height, 0 keeps the device default
	OutputDir           string               `json:"output_dir"`            // Where clips are written
	ClipDurationSeconds int                  `json:"clip_duration_seconds"` // Initial clip length (3-10)
	Category            string               `json:"category"`              // Initial label category
	CaptureFrameRate    float64              `json:"capture_frame_rate"`    // Recording poll rate, 0 reads as fast as the device delivers
	LogPath             string               `json:"log_path"`
	LogLevel            string               `json:"log_level"`
	LogToConsole        bool                 `json:"log_to_console"`
	PostProcessing      PostProcessingConfig `json:"post_processing"`
}

// PostProcessingConfig controls the optional ffmpeg pass over saved clips
type PostProcessingConfig struct {
	Enabled             bool   `json:"enabled"`
	OutputFormat        string `json:"output_format"`        // e.g. "mp4"
	OutputCodec         string `json:"output_codec"`         // ffmpeg encoder, e.g. "libx264"
	VideoBitRate        string `json:"video_bitrate"`        // e.g. "1000k"
	Grayscale           bool   `json:"grayscale"`
	DownscaleResolution string `json:"downscale_resolution"` // e.g. "480p" or "640x480", empty keeps size
	KeepOriginal        bool   `json:"keep_original"`
	QueueSize           int    `json:"queue_size"`
	MaxRetries          int    `json:"max_retries"`
	DrainTimeoutSeconds int    `json:"drain_timeout_seconds"`
}

// DefaultConfig returns a new Config with default values
func DefaultConfig() *Config {
	outputDir, err := os.Getwd()
	if err != nil {
		outputDir = "."
	}

	return &Config{
		CameraDevice:        "0",
		OutputDir:           outputDir,
		ClipDurationSeconds: 5,
		Category:            labels.Emotions.String(),
		LogPath:             "logs",
		LogLevel:            "info",
		PostProcessing: PostProcessingConfig{
			Enabled:             false,
			OutputFormat:        "mp4",
			OutputCodec:         "libx264",
			VideoBitRate:        "1000k",
			QueueSize:           8,
			MaxRetries:          2,
			DrainTimeoutSeconds: 30,
			KeepOriginal:        true,
		},
	}
}

// LoadConfig loads configuration from a JSON file.
// A missing file is created with the default configuration.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			defaultConfig := DefaultConfig()
			if err := defaultConfig.SaveConfig(filename); err != nil {
				return nil, fmt.Errorf("failed to create default config file: %w", err)
			}
			fmt.Printf("Default config file created at %s\n", filename)
			return defaultConfig, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return parseConfig(data)
}

func parseConfig(data []byte) (*Config, error) {
	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults for zeroed values
	defaults := DefaultConfig()
	if config.CameraDevice == "" {
		config.CameraDevice = defaults.CameraDevice
	}
	if config.OutputDir == "" {
		config.OutputDir = defaults.OutputDir
	}
	if config.ClipDurationSeconds == 0 {
		config.ClipDurationSeconds = defaults.ClipDurationSeconds
	}
	if config.LogPath == "" {
		config.LogPath = defaults.LogPath
	}
	if config.PostProcessing.QueueSize == 0 {
		config.PostProcessing.QueueSize = defaults.PostProcessing.QueueSize
	}
	if config.PostProcessing.DrainTimeoutSeconds == 0 {
		config.PostProcessing.DrainTimeoutSeconds = defaults.PostProcessing.DrainTimeoutSeconds
	}

	return config, nil
}

// ConfigOverrides holds potential override values for configuration
type ConfigOverrides struct {
	CameraDevice        *string
	OutputDir           *string
	ClipDurationSeconds *int
	Category            *string
	LogLevel            *string
	PostProcess         *bool
}

// Override allows overriding specific configuration values using ConfigOverrides struct
func (c *Config) Override(overrides ConfigOverrides) {
	if overrides.CameraDevice != nil && *overrides.CameraDevice != "" {
		c.CameraDevice = *overrides.CameraDevice
	}
	if overrides.OutputDir != nil && *overrides.OutputDir != "" {
		c.OutputDir = *overrides.OutputDir
	}
	if overrides.ClipDurationSeconds != nil && *overrides.ClipDurationSeconds > 0 {
		c.ClipDurationSeconds = *overrides.ClipDurationSeconds
	}
	if overrides.Category != nil && *overrides.Category != "" {
		c.Category = *overrides.Category
	}
	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		c.LogLevel = *overrides.LogLevel
	}
	if overrides.PostProcess != nil {
		c.PostProcessing.Enabled = *overrides.PostProcess
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.ClipDurationSeconds < MinClipDurationSeconds || c.ClipDurationSeconds > MaxClipDurationSeconds {
		return fmt.Errorf("clip duration must be between %d and %d seconds, got %d",
			MinClipDurationSeconds, MaxClipDurationSeconds, c.ClipDurationSeconds)
	}
	if _, err := labels.Parse(c.Category); err != nil {
		return err
	}
	if c.CaptureFrameRate < 0 {
		return fmt.Errorf("invalid capture frame rate: %v", c.CaptureFrameRate)
	}
	if c.FrameWidth < 0 || c.FrameHeight < 0 {
		return fmt.Errorf("invalid frame size: %dx%d", c.FrameWidth, c.FrameHeight)
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("output directory must not be empty")
	}
	if c.PostProcessing.Enabled {
		if c.PostProcessing.OutputFormat == "" || c.PostProcessing.OutputCodec == "" {
			return fmt.Errorf("post-processing needs an output format and codec")
		}
		if _, err := resolution.Parse(c.PostProcessing.DownscaleResolution); err != nil {
			return fmt.Errorf("invalid downscale resolution: %w", err)
		}
		if c.PostProcessing.MaxRetries < 0 {
			return fmt.Errorf("invalid post-processing retry count: %d", c.PostProcessing.MaxRetries)
		}
	}
	return nil
}

// FrameSize is the capture size requested from the camera
func (c *Config) FrameSize() resolution.Resolution {
	return resolution.New(c.FrameWidth, c.FrameHeight)
}

// LabelCategory returns the parsed initial category
func (c *Config) LabelCategory() labels.Category {
	category, err := labels.Parse(c.Category)
	if err != nil {
		return labels.Emotions
	}
	return category
}

// SaveConfig saves the configuration to a JSON file
func (c *Config) SaveConfig(filename string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
