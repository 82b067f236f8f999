package recording

import (
	"time"

	"github.com/yeti47/fer-collector/config"
)

var DefaultRecordingSettings = RecordingSettings{
	FrameRate:      0, // read as fast as the device delivers
	Overlay:        "Recording...",
	ReadRetryDelay: 5 * time.Millisecond,
}

type RecordingSettings struct {
	FrameRate      float64       // Target capture rate, 0 polls the device continuously
	Overlay        string        // Caption shown on the preview while recording
	ReadRetryDelay time.Duration // Pause after a poll that produced no frame
}

// RecordingSettingsProvider implements SettingsProvider for RecordingSettings
type RecordingSettingsProvider struct {
	configProvider config.SettingsProvider[config.Config]
}

// NewRecordingSettingsProvider creates a new RecordingSettingsProvider
func NewRecordingSettingsProvider(configProvider config.SettingsProvider[config.Config]) *RecordingSettingsProvider {
	return &RecordingSettingsProvider{
		configProvider: configProvider,
	}
}

// GetSettings returns the current recording settings mapped from the config
func (p *RecordingSettingsProvider) GetSettings() RecordingSettings {
	cfg := p.configProvider.GetSettings()

	settings := DefaultRecordingSettings
	if cfg.CaptureFrameRate > 0 {
		settings.FrameRate = cfg.CaptureFrameRate
	}
	return settings
}
