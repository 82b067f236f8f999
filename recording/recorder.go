package recording

import (
	"context"
	"fmt"
	"time"

	"github.com/yeti47/fer-collector/config"
	"github.com/yeti47/fer-collector/logging"
)

// Recorder fills a FrameBuffer from a FrameSource for a fixed wall-clock duration
type Recorder struct {
	source           FrameSource
	settingsProvider config.SettingsProvider[RecordingSettings]
	logger           logging.Logger
}

func NewRecorder(source FrameSource, provider config.SettingsProvider[RecordingSettings], logger logging.Logger) *Recorder {
	if logger == nil {
		logger = logging.NopLogger
	}
	return &Recorder{
		source:           source,
		settingsProvider: provider,
		logger:           logger,
	}
}

// Record polls the source until duration has elapsed, appending every frame it gets.
// Polls that return no frame are skipped and do not extend the recording.
// Each captured frame is also handed to display, when set.
func (r *Recorder) Record(ctx context.Context, duration time.Duration, buffer *FrameBuffer, display Display) (int, error) {
	if r.source == nil {
		return 0, fmt.Errorf("no frame source configured")
	}
	if duration <= 0 {
		return 0, fmt.Errorf("invalid recording duration: %v", duration)
	}

	settings := r.settingsProvider.GetSettings()

	var frameInterval time.Duration
	if settings.FrameRate > 0 {
		frameInterval = time.Duration(float64(time.Second) / settings.FrameRate)
	}

	startTime := time.Now()
	nextFrameTime := startTime
	frameCount := 0
	missed := 0

	for time.Since(startTime) < duration {
		if err := ctx.Err(); err != nil {
			return frameCount, err
		}

		if frameInterval > 0 {
			if err := sleep(ctx, time.Until(nextFrameTime)); err != nil {
				return frameCount, err
			}
		}

		frame, ok := r.source.Read()
		if !ok {
			missed++
			if err := sleep(ctx, settings.ReadRetryDelay); err != nil {
				return frameCount, err
			}
			// Don't advance nextFrameTime on failed reads
			continue
		}

		if display != nil {
			display.Show(frame, settings.Overlay)
		}
		buffer.Append(frame)
		frameCount++

		nextFrameTime = nextFrameTime.Add(frameInterval)
	}

	r.logger.Debug("Recording finished",
		"frames", frameCount, "missed_reads", missed, "elapsed", time.Since(startTime).String())

	return frameCount, nil
}

// sleep waits d or until ctx is cancelled, whichever comes first
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
