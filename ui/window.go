// Package ui shows the camera feed with the session overlay in an OpenCV window
// and turns key presses into controller commands.
package ui

import (
	"context"
	"errors"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/yeti47/fer-collector/logging"
	"github.com/yeti47/fer-collector/recording"
	"github.com/yeti47/fer-collector/session"
)

// Controller is what the window needs from the session controller
type Controller interface {
	Commands
	Snapshot() session.Snapshot
	LiveSuspended() bool
}

type WindowSettings struct {
	Title        string
	PollInterval time.Duration // live feed read interval
	KeyWait      int           // milliseconds WaitKey blocks per render pass
}

func DefaultWindowSettings() WindowSettings {
	return WindowSettings{
		Title:        "FER Collector",
		PollInterval: 30 * time.Millisecond,
		KeyWait:      15,
	}
}

type Window struct {
	settings WindowSettings
	slot     *FrameSlot
	logger   logging.Logger
}

func NewWindow(settings WindowSettings, slot *FrameSlot, logger logging.Logger) *Window {
	if logger == nil {
		logger = logging.NopLogger
	}
	return &Window{settings: settings, slot: slot, logger: logger}
}

// Run opens the window and renders until the operator quits, the window is closed or ctx is cancelled.
// It must be called from the main goroutine; highgui is not thread safe.
func (w *Window) Run(ctx context.Context, ctrl Controller, source recording.FrameSource) error {
	window := gocv.NewWindow(w.settings.Title)
	defer window.Close()

	pollCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.pollLive(pollCtx, ctrl, source)
	}()
	defer wg.Wait()

	img := gocv.NewMat()
	defer img.Close()

	for {
		if ctx.Err() != nil {
			return nil
		}

		if caption, _, ok := w.slot.CopyTo(&img); ok {
			drawOverlay(&img, caption, OverlayLines(ctrl.Snapshot()))
			window.IMShow(img)
		}

		key := window.WaitKey(w.settings.KeyWait)
		if window.GetWindowProperty(gocv.WindowPropertyVisible) < 1 {
			w.logger.Info("Window closed")
			return nil
		}

		action := ActionForKey(key)
		quit, err := Dispatch(ctrl, action)
		if quit {
			w.logger.Info("Quit requested")
			return nil
		}
		if err != nil {
			if errors.Is(err, session.ErrStopped) {
				return nil
			}
			w.logger.Debug("Command rejected", "action", int(action), "error", err)
		}
	}
}

// pollLive keeps the slot fed with live frames while no worker owns the camera
func (w *Window) pollLive(ctx context.Context, ctrl Controller, source recording.FrameSource) {
	ticker := time.NewTicker(w.settings.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if ctrl.LiveSuspended() {
			continue
		}
		frame, ok := source.Read()
		if !ok {
			continue
		}
		w.slot.Show(frame, "")
		frame.Close()
	}
}
