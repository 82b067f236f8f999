// Package camera adapts a gocv VideoCapture to the recording.FrameSource interface.
package camera

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"gocv.io/x/gocv"

	"github.com/yeti47/fer-collector/logging"
	"github.com/yeti47/fer-collector/recording"
	"github.com/yeti47/fer-collector/resolution"
)

// GoCVCamera reads frames from a webcam. Reads are serialized, so the live preview
// and the recorder can share one handle.
type GoCVCamera struct {
	device string
	webcam *gocv.VideoCapture
	logger logging.Logger
	mu     sync.Mutex
	closed bool
}

// DeviceArgument converts a configured device into what gocv.OpenVideoCapture expects:
// an index for numeric values ("" and "0" mean the default camera), the string otherwise
func DeviceArgument(device string) any {
	device = strings.TrimSpace(device)
	if device == "" {
		return 0
	}
	if id, err := strconv.Atoi(device); err == nil && id >= 0 {
		return id
	}
	return device
}

// Open opens the device. A valid size is requested from the driver; the empty resolution keeps its default.
func Open(device string, size resolution.Resolution, logger logging.Logger) (*GoCVCamera, error) {
	if logger == nil {
		logger = logging.NopLogger
	}

	webcam, err := gocv.OpenVideoCapture(DeviceArgument(device))
	if err != nil {
		return nil, fmt.Errorf("failed to open webcam %q: %w", device, err)
	}
	if !webcam.IsOpened() {
		webcam.Close()
		return nil, fmt.Errorf("webcam %q could not be opened", device)
	}

	if size.Valid() {
		webcam.Set(gocv.VideoCaptureFrameWidth, float64(size.Width))
		webcam.Set(gocv.VideoCaptureFrameHeight, float64(size.Height))
	}

	cam := &GoCVCamera{
		device: device,
		webcam: webcam,
		logger: logger,
	}

	logger.Info("Webcam opened", "device", device, "resolution", cam.Resolution().String(),
		"fps", webcam.Get(gocv.VideoCaptureFPS))

	return cam, nil
}

// Resolution reports the frame size the driver delivers
func (c *GoCVCamera) Resolution() resolution.Resolution {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return resolution.EmptyResolution()
	}
	return resolution.New(int(c.webcam.Get(gocv.VideoCaptureFrameWidth)), int(c.webcam.Get(gocv.VideoCaptureFrameHeight)))
}

// Read grabs the next frame into a new Mat owned by the caller.
// ok is false when the device returned nothing.
func (c *GoCVCamera) Read() (recording.Frame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, false
	}

	img := gocv.NewMat()
	if ok := c.webcam.Read(&img); !ok || img.Empty() {
		img.Close()
		return nil, false
	}
	return &img, true
}

// Close releases the device
func (c *GoCVCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.logger.Info("Closing webcam", "device", c.device)
	return c.webcam.Close()
}
