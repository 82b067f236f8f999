// Package video writes recorded frames to clip files with OpenCV's VideoWriter.
package video

import (
	"context"
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"

	"github.com/yeti47/fer-collector/logging"
	"github.com/yeti47/fer-collector/recording"
)

// GoCVEncoder implements session.ClipEncoder. Its settings are fixed for its lifetime.
type GoCVEncoder struct {
	settings EncodingSettings
	logger   logging.Logger
}

// NewGoCVEncoder creates an encoder writing the fixed clip format
func NewGoCVEncoder(logger logging.Logger) *GoCVEncoder {
	return newGoCVEncoder(ClipEncodingSettings(), logger)
}

func newGoCVEncoder(settings EncodingSettings, logger logging.Logger) *GoCVEncoder {
	if logger == nil {
		logger = logging.NopLogger
	}
	return &GoCVEncoder{
		settings: settings,
		logger:   logger,
	}
}

// Codec returns the fourcc written to every clip
func (e *GoCVEncoder) Codec() string {
	return e.settings.Codec
}

// Encode writes frames to path. The clip takes its size from the first frame;
// later frames of a different size are scaled to match.
// A partially written file is removed when encoding fails.
func (e *GoCVEncoder) Encode(ctx context.Context, path string, frames []recording.Frame) (err error) {
	if len(frames) == 0 {
		return fmt.Errorf("no frames to encode")
	}

	first, ok := frames[0].(*gocv.Mat)
	if !ok {
		return fmt.Errorf("unsupported frame type %T", frames[0])
	}
	width, height := first.Cols(), first.Rows()
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid frame size %dx%d", width, height)
	}

	settings := e.settings

	e.logger.Debug("Encoding clip", "path", path, "codec", settings.Codec,
		"fps", settings.FrameRate, "width", width, "height", height, "frames", len(frames))

	writer, err := gocv.VideoWriterFile(path, settings.Codec, settings.FrameRate, width, height, true)
	if err != nil {
		return fmt.Errorf("failed to create video writer: %w", err)
	}
	defer func() {
		if closeErr := writer.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close video writer: %w", closeErr)
		}
		if err != nil {
			if removeErr := os.Remove(path); removeErr != nil && !os.IsNotExist(removeErr) {
				e.logger.Warn("Failed to remove partial clip", "path", path, "error", removeErr)
			}
		}
	}()

	if !writer.IsOpened() {
		return fmt.Errorf("video writer for %s did not open (codec %s)", path, settings.Codec)
	}

	resized := gocv.NewMat()
	defer resized.Close()

	for i, f := range frames {
		if err := ctx.Err(); err != nil {
			return err
		}

		mat, ok := f.(*gocv.Mat)
		if !ok {
			return fmt.Errorf("unsupported frame type %T at index %d", f, i)
		}
		if mat.Empty() {
			continue
		}

		img := *mat
		if mat.Cols() != width || mat.Rows() != height {
			gocv.Resize(*mat, &resized, image.Pt(width, height), 0, 0, gocv.InterpolationLinear)
			img = resized
		}

		if err := writer.Write(img); err != nil {
			return fmt.Errorf("failed to write frame %d: %w", i, err)
		}
	}

	return nil
}
