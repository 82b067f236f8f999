// Package postprocessing re-encodes saved clips with ffmpeg.
package postprocessing

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xfrr/goffmpeg/transcoder"

	"github.com/yeti47/fer-collector/common"
	"github.com/yeti47/fer-collector/config"
	"github.com/yeti47/fer-collector/logging"
)

type PostProcessor interface {
	// ProcessVideo transcodes the clip at sourcePath and returns the processed clip.
	ProcessVideo(sourcePath string) (*VideoClip, error)
}

type FfmpegPostProcessor struct {
	settingsProvider config.SettingsProvider[PostProcessingSettings]
	codecProvider    common.CodecProvider
	logger           logging.Logger
}

func NewFfmpegPostProcessor(settingsProvider config.SettingsProvider[PostProcessingSettings], codecProvider common.CodecProvider, logger logging.Logger) *FfmpegPostProcessor {
	if logger == nil {
		logger = logging.NopLogger
	}
	return &FfmpegPostProcessor{
		settingsProvider: settingsProvider,
		codecProvider:    codecProvider,
		logger:           logger,
	}
}

func (p *FfmpegPostProcessor) ProcessVideo(sourcePath string) (*VideoClip, error) {
	// Get the latest settings for this operation.
	settings := p.settingsProvider.GetSettings()

	codec := settings.OutputCodec
	if p.codecProvider != nil {
		resolved, err := p.codecProvider.GetFallbackCodec(codec)
		if err != nil {
			return nil, fmt.Errorf("no usable encoder: %w", err)
		}
		codec = resolved
	}

	tmpPath, finalPath := outputPaths(sourcePath, settings.OutputFormat, settings.KeepOriginal)

	trans := new(transcoder.Transcoder)
	if err := trans.Initialize(sourcePath, tmpPath); err != nil {
		return nil, fmt.Errorf("failed to initialize transcoder: %w", err)
	}

	// video only, the capture has no audio
	trans.MediaFile().SetVideoCodec(codec)
	trans.MediaFile().SetOutputFormat(strings.TrimLeft(settings.OutputFormat, "."))
	trans.MediaFile().SetSkipAudio(true)

	if filters := buildFilterChain(settings); filters != "" {
		trans.MediaFile().SetVideoFilter(filters)
	}
	if settings.VideoBitRate != "" {
		trans.MediaFile().SetVideoBitRate(settings.VideoBitRate)
	}

	done := trans.Run(false)

	// Duration comes from the probe Initialize already ran
	duration, durationErr := parseDuration(trans.MediaFile().Metadata().Format.Duration)

	if err := <-done; err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to process video: %w", err)
	}
	if durationErr != nil {
		p.logger.Debug("Could not read clip duration", "path", sourcePath, "error", durationErr)
	}

	if !settings.KeepOriginal {
		if err := os.Remove(sourcePath); err != nil && !os.IsNotExist(err) {
			os.Remove(tmpPath)
			return nil, fmt.Errorf("failed to replace original clip: %w", err)
		}
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return nil, fmt.Errorf("failed to move processed clip into place: %w", err)
	}

	return &VideoClip{
		Path:       finalPath,
		SourcePath: sourcePath,
		Codec:      codec,
		Format:     settings.OutputFormat,
		Duration:   duration,
	}, nil
}

// outputPaths returns where ffmpeg writes and where the finished clip ends up.
// Processed clips keep the dataset name (<label><timestamp>) so the label stays recoverable.
func outputPaths(sourcePath, format string, keepOriginal bool) (tmpPath, finalPath string) {
	base := strings.TrimSuffix(sourcePath, filepath.Ext(sourcePath))
	ext := "." + strings.TrimLeft(format, ".")

	tmpPath = base + ".processing" + ext
	if keepOriginal {
		finalPath = base + "_processed" + ext
	} else {
		finalPath = base + ext
	}
	return tmpPath, finalPath
}

func buildFilterChain(settings PostProcessingSettings) string {
	var filters []string
	if settings.Grayscale {
		filters = append(filters, "format=gray")
	}
	if !settings.DownscaleResolution.IsEmpty() {
		filters = append(filters, settings.DownscaleResolution.ScaleFilter())
	}
	return strings.Join(filters, ",")
}

func parseDuration(durationStr string) (time.Duration, error) {
	if durationStr == "" {
		return 0, fmt.Errorf("empty duration in video metadata")
	}

	durationSeconds, err := strconv.ParseFloat(durationStr, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration '%s': %w", durationStr, err)
	}
	if durationSeconds <= 0 {
		return 0, fmt.Errorf("invalid or zero duration: %f seconds", durationSeconds)
	}

	return time.Duration(durationSeconds * float64(time.Second)), nil
}
