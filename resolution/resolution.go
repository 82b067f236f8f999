// Package resolution parses frame sizes given as presets ("720p") or dimensions ("1280x720", "1280:720").
package resolution

import (
	"fmt"
	"strconv"
	"strings"
)

type Resolution struct {
	Width  int
	Height int
}

// presets maps the common 16:9 names to their frame size
var presets = map[string]Resolution{
	"240p":  {Width: 426, Height: 240},
	"360p":  {Width: 640, Height: 360},
	"480p":  {Width: 854, Height: 480},
	"720p":  {Width: 1280, Height: 720},
	"1080p": {Width: 1920, Height: 1080},
}

func EmptyResolution() Resolution {
	return Resolution{}
}

func Resolution480p() Resolution  { return presets["480p"] }
func Resolution720p() Resolution  { return presets["720p"] }
func Resolution1080p() Resolution { return presets["1080p"] }

// New returns the resolution for width and height; zero for both means "keep the device default"
func New(width, height int) Resolution {
	return Resolution{Width: width, Height: height}
}

// String returns the size as WIDTHxHEIGHT (e.g. 640x480)
func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Format replaces "w" and "h" in formatString with the width and height
func (r Resolution) Format(formatString string) string {
	result := strings.ReplaceAll(formatString, "w", strconv.Itoa(r.Width))
	return strings.ReplaceAll(result, "h", strconv.Itoa(r.Height))
}

// ScaleFilter is the ffmpeg video filter that resizes to r
func (r Resolution) ScaleFilter() string {
	return "scale=" + r.Format("w:h")
}

func (r Resolution) AspectRatio() float64 {
	if r.Height == 0 {
		return 0
	}
	return float64(r.Width) / float64(r.Height)
}

// IsEmpty reports whether both dimensions are zero
func (r Resolution) IsEmpty() bool {
	return r.Width == 0 && r.Height == 0
}

// Valid reports whether both dimensions are positive
func (r Resolution) Valid() bool {
	return r.Width > 0 && r.Height > 0
}

// Parse converts "1920x1080", "1920:1080" or a preset such as "720p" into a Resolution.
// An empty string yields the empty resolution.
func Parse(s string) (Resolution, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return EmptyResolution(), nil
	case strings.Contains(s, "x"):
		return parseDimensions(s, "x")
	case strings.Contains(s, ":"):
		return parseDimensions(s, ":")
	case strings.HasSuffix(s, "p"):
		res, ok := presets[s]
		if !ok {
			return Resolution{}, fmt.Errorf("unsupported resolution preset: %s", s)
		}
		return res, nil
	default:
		return Resolution{}, fmt.Errorf("invalid resolution format: %s", s)
	}
}

func parseDimensions(s, sep string) (Resolution, error) {
	parts := strings.Split(s, sep)
	if len(parts) != 2 {
		return Resolution{}, fmt.Errorf("invalid dimensions: %s", s)
	}

	width, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || width <= 0 {
		return Resolution{}, fmt.Errorf("invalid width: %s", parts[0])
	}
	height, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || height <= 0 {
		return Resolution{}, fmt.Errorf("invalid height: %s", parts[1])
	}

	return Resolution{Width: width, Height: height}, nil
}
