package postprocessing

import (
	"github.com/yeti47/fer-collector/config"
	"github.com/yeti47/fer-collector/resolution"
)

type PostProcessingSettings struct {
	Enabled             bool
	OutputFormat        string                // Output container format (e.g., "mp4", "avi")
	OutputCodec         string                // ffmpeg encoder to use (e.g., "libx264")
	VideoBitRate        string                // Bitrate for video compression (e.g., "1000k")
	Grayscale           bool                  // Whether to convert video to grayscale
	DownscaleResolution resolution.Resolution // Resolution to downscale video to (e.g., "1280x720")
	KeepOriginal        bool                  // Keep the OpenCV-written clip next to the processed one
}

// PostProcessingSettingsProvider implements SettingsProvider for PostProcessingSettings
type PostProcessingSettingsProvider struct {
	configProvider config.SettingsProvider[config.Config]
}

// NewPostProcessingSettingsProvider creates a new PostProcessingSettingsProvider
func NewPostProcessingSettingsProvider(configProvider config.SettingsProvider[config.Config]) *PostProcessingSettingsProvider {
	return &PostProcessingSettingsProvider{
		configProvider: configProvider,
	}
}

// GetSettings returns the current post-processing settings mapped from the config
func (p *PostProcessingSettingsProvider) GetSettings() PostProcessingSettings {
	pp := p.configProvider.GetSettings().PostProcessing

	// Parse the downscale resolution string, fallback to empty resolution if parsing fails
	downscaleRes := resolution.EmptyResolution()
	if parsedRes, err := resolution.Parse(pp.DownscaleResolution); err == nil {
		downscaleRes = parsedRes
	}

	return PostProcessingSettings{
		Enabled:             pp.Enabled,
		OutputFormat:        pp.OutputFormat,
		OutputCodec:         pp.OutputCodec,
		VideoBitRate:        pp.VideoBitRate,
		Grayscale:           pp.Grayscale,
		DownscaleResolution: downscaleRes,
		KeepOriginal:        pp.KeepOriginal,
	}
}
