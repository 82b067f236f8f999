package common

import (
	"fmt"
	"maps"
	"os/exec"
	"regexp"
	"strings"

	"github.com/yeti47/fer-collector/logging"
)

// CodecFallbackMap defines fallback chains for video codecs
var CodecFallbackMap = map[string][]string{
	// H.264 codecs in preference order
	"libx264":      {"libx264", "libopenh264", "h264_vaapi", "h264_qsv", "h264_v4l2m2m"},
	"libopenh264":  {"libopenh264", "libx264", "h264_vaapi", "h264_qsv", "h264_v4l2m2m"},
	"h264_vaapi":   {"h264_vaapi", "libx264", "libopenh264", "h264_qsv", "h264_v4l2m2m"},
	"h264_qsv":     {"h264_qsv", "libx264", "libopenh264", "h264_vaapi", "h264_v4l2m2m"},
	"h264_v4l2m2m": {"h264_v4l2m2m", "libx264", "libopenh264", "h264_vaapi", "h264_qsv"},

	// H.265 falls back to H.264 codecs
	"libx265": {"libx265", "libx264", "libopenh264", "h264_vaapi", "h264_qsv", "h264_v4l2m2m"},

	// MPEG-4 part 2 is what OpenCV's mp4v writes; offer H.264 when it is missing
	"mpeg4": {"mpeg4", "libx264", "libopenh264"},
}

// CodecProvider interface for managing codec availability and fallbacks
type CodecProvider interface {
	IsCodecAvailable(codec string) bool
	GetFallbackCodec(requestedCodec string) (string, error)
	GetAvailableCodecs() map[string]bool
}

// FFmpegCodecProvider implements CodecProvider using FFmpeg
type FFmpegCodecProvider struct {
	// Cache to avoid repeated FFmpeg calls
	availableCodecs map[string]bool
	logger          logging.Logger
}

// NewFFmpegCodecProvider creates a new FFmpeg-based codec provider
func NewFFmpegCodecProvider(logger logging.Logger) *FFmpegCodecProvider {
	if logger == nil {
		logger = logging.NopLogger
	}
	provider := &FFmpegCodecProvider{
		availableCodecs: make(map[string]bool),
		logger:          logger,
	}

	provider.loadAvailableCodecs()

	return provider
}

// NewStaticCodecProvider creates a provider from a known encoder list, skipping the FFmpeg query
func NewStaticCodecProvider(codecs []string, logger logging.Logger) *FFmpegCodecProvider {
	if logger == nil {
		logger = logging.NopLogger
	}
	provider := &FFmpegCodecProvider{
		availableCodecs: make(map[string]bool, len(codecs)),
		logger:          logger,
	}
	for _, codec := range codecs {
		provider.availableCodecs[codec] = true
	}
	return provider
}

// IsCodecAvailable checks if a codec is available by querying FFmpeg
func (c *FFmpegCodecProvider) IsCodecAvailable(codec string) bool {
	available, exists := c.availableCodecs[codec]
	return exists && available
}

// GetAvailableCodecs returns a copy of all available codecs
func (c *FFmpegCodecProvider) GetAvailableCodecs() map[string]bool {
	// Return a copy to prevent external modification
	result := make(map[string]bool)
	maps.Copy(result, c.availableCodecs)
	return result
}

// encoderPattern matches lines like:
// " V....D libopenh264          OpenH264 H.264 / AVC / MPEG-4 AVC / MPEG-4 part 10 (codec h264)"
var encoderPattern = regexp.MustCompile(`^ ([VA][.SFXBD]{5})\s+([a-zA-Z0-9_-]+)\s+`)

// loadAvailableCodecs queries FFmpeg for all available encoders and caches the result
func (c *FFmpegCodecProvider) loadAvailableCodecs() {
	output, err := exec.Command("ffmpeg", "-encoders").Output()
	if err != nil {
		c.logger.Warn("Failed to query FFmpeg encoders", "error", err)
		return
	}

	maps.Copy(c.availableCodecs, parseEncoderList(string(output)))
	c.logger.Debug("Loaded available codecs from FFmpeg", "count", len(c.availableCodecs))
}

// parseEncoderList extracts encoder names from `ffmpeg -encoders` output
func parseEncoderList(output string) map[string]bool {
	codecs := make(map[string]bool)
	for _, line := range strings.Split(output, "\n") {
		// legend lines look like " V..... = Video"
		if strings.Contains(line, " = ") {
			continue
		}

		matches := encoderPattern.FindStringSubmatch(line)
		if len(matches) >= 3 && matches[2] != "" {
			codecs[matches[2]] = true
		}
	}
	return codecs
}

// GetFallbackCodec finds the first available codec from the fallback chain
func (c *FFmpegCodecProvider) GetFallbackCodec(requestedCodec string) (string, error) {
	// Check if the requested codec is available first
	if c.IsCodecAvailable(requestedCodec) {
		return requestedCodec, nil
	}

	// Look up fallback chain
	fallbackChain, exists := CodecFallbackMap[requestedCodec]
	if !exists {
		// No fallback defined for this codec
		return "", fmt.Errorf("codec '%s' is not available and no fallback is defined", requestedCodec)
	}

	c.logger.Info("Codec not available, trying fallbacks", "codec", requestedCodec, "fallbacks", fallbackChain)

	// Try each codec in the fallback chain
	for _, codec := range fallbackChain {
		if c.IsCodecAvailable(codec) {
			c.logger.Info("Using fallback codec", "codec", codec)
			return codec, nil
		}
	}

	return "", fmt.Errorf("no suitable codec available from fallback chain: %v", fallbackChain)
}
