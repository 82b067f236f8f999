package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yeti47/fer-collector/common"
	"github.com/yeti47/fer-collector/labels"
	"github.com/yeti47/fer-collector/logging"
	"github.com/yeti47/fer-collector/recording"
)

// FrameRecorder captures frames into a buffer for a fixed duration
type FrameRecorder interface {
	Record(ctx context.Context, duration time.Duration, buffer *recording.FrameBuffer, display recording.Display) (int, error)
}

// ClipEncoder writes frames to a video file
type ClipEncoder interface {
	Encode(ctx context.Context, path string, frames []recording.Frame) error
	// Codec is the fourcc the encoder writes; it selects the clip's file extension
	Codec() string
}

// SavedClip describes a clip written to the output directory
type SavedClip struct {
	Path      string
	Label     string
	Category  labels.Category
	Frames    int
	SavedAt   time.Time
	SessionID string
}

// Options configures a Controller
type Options struct {
	Recorder FrameRecorder
	Encoder  ClipEncoder
	Display  recording.Display

	// Tick is the length of one countdown second. Recording lasts DurationSeconds ticks.
	Tick time.Duration
	// OnClipSaved is called from the save worker after a clip was written
	OnClipSaved func(SavedClip)

	Logger logging.Logger
	Now    func() time.Time
}

type request struct {
	apply func() error
	reply chan error
}

// Controller owns a Session and is the only goroutine that mutates it.
// Operator commands and worker completions are posted to its event loop.
type Controller struct {
	session *Session
	opts    Options
	logger  logging.Logger

	events  chan request
	done    chan struct{}
	running atomic.Bool

	// set once Run starts; workers derive from it
	ctx context.Context

	snapshotMu    sync.RWMutex
	snapshot      Snapshot
	liveSuspended atomic.Bool

	workers sync.WaitGroup

	// loop-owned
	captureRate float64
}

// NewController wires a session to its workers
func NewController(s *Session, opts Options) (*Controller, error) {
	if s == nil {
		return nil, fmt.Errorf("session is required")
	}
	if opts.Recorder == nil {
		return nil, fmt.Errorf("recorder is required")
	}
	if opts.Encoder == nil {
		return nil, fmt.Errorf("encoder is required")
	}
	if opts.Tick <= 0 {
		opts.Tick = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	c := &Controller{
		session: s,
		opts:    opts,
		logger:  opts.Logger,
		events:  make(chan request, 16),
		done:    make(chan struct{}),
		ctx:     context.Background(),
	}
	c.publish()
	return c, nil
}

// Run processes commands and worker completions until ctx is cancelled.
// On return all workers have finished and buffered frames are released.
func (c *Controller) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return fmt.Errorf("controller is already running")
	}
	c.ctx = ctx

	defer func() {
		close(c.done)
		c.workers.Wait()
		c.session.Close()
		c.liveSuspended.Store(false)
	}()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Controller stopping", "state", c.session.State().String())
			return nil
		case req := <-c.events:
			err := req.apply()
			c.publish()
			if req.reply != nil {
				req.reply <- err
			}
		}
	}
}

// Snapshot returns the latest published session state
func (c *Controller) Snapshot() Snapshot {
	c.snapshotMu.RLock()
	defer c.snapshotMu.RUnlock()
	return c.snapshot
}

// LiveSuspended reports whether the live camera feed must stay paused
func (c *Controller) LiveSuspended() bool {
	return c.liveSuspended.Load()
}

func (c *Controller) publish() {
	snap := c.session.Snapshot()
	c.liveSuspended.Store(snap.State.LiveFeedSuspended())
	c.snapshotMu.Lock()
	c.snapshot = snap
	c.snapshotMu.Unlock()
}

// do runs fn on the event loop and waits for its result
func (c *Controller) do(fn func() error) error {
	req := request{apply: fn, reply: make(chan error, 1)}
	select {
	case c.events <- req:
	case <-c.done:
		return ErrStopped
	}
	select {
	case err := <-req.reply:
		return err
	case <-c.done:
		return ErrStopped
	}
}

// post queues fn on the event loop without waiting
func (c *Controller) post(fn func() error) {
	select {
	case c.events <- request{apply: fn}:
	case <-c.done:
	}
}

// spawn starts a background worker tracked for shutdown
func (c *Controller) spawn(worker func(ctx context.Context)) {
	c.workers.Add(1)
	ctx := c.ctx
	go func() {
		defer c.workers.Done()
		worker(ctx)
	}()
}

// sleep waits d or until ctx is cancelled; false means cancelled
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// ToggleCollection starts or stops a collection session
func (c *Controller) ToggleCollection() error {
	return c.do(func() error {
		if err := c.session.ToggleCollection(); err != nil {
			return err
		}
		if c.session.Collecting() {
			c.logger.Info("Data collection started",
				"session", c.session.ID(),
				"category", c.session.Category().String(),
				"duration_seconds", c.session.DurationSeconds(),
				"output_dir", c.session.OutputDir())
		} else {
			c.logger.Info("Data collection stopped")
		}
		return nil
	})
}

func (c *Controller) SetCategory(category labels.Category) error {
	return c.do(func() error { return c.session.SetCategory(category) })
}

// CycleCategory switches to the next category
func (c *Controller) CycleCategory() error {
	return c.do(func() error { return c.session.SetCategory(c.session.Category().Next()) })
}

func (c *Controller) SetDuration(seconds int) error {
	return c.do(func() error { return c.session.SetDuration(seconds) })
}

// AdjustDuration changes the clip duration by delta seconds
func (c *Controller) AdjustDuration(delta int) error {
	return c.do(func() error { return c.session.SetDuration(c.session.DurationSeconds() + delta) })
}

func (c *Controller) SetOutputDir(dir string) error {
	return c.do(func() error { return c.session.SetOutputDir(dir) })
}

// ReportStatus shows a message on the status line
func (c *Controller) ReportStatus(text string, isError bool) error {
	return c.do(func() error {
		c.session.SetStatus(text, isError)
		return nil
	})
}

// BeginRecording clears the buffer and starts the countdown that leads into recording.
// It returns as soon as the countdown is scheduled.
func (c *Controller) BeginRecording() error {
	return c.do(func() error {
		if err := c.session.BeginCountdown(); err != nil {
			return err
		}
		c.logger.Debug("Countdown started", "label", c.session.CurrentLabel())
		c.spawn(c.countdown)
		return nil
	})
}

func (c *Controller) countdown(ctx context.Context) {
	for n := CountdownSeconds - 1; n > 0; n-- {
		if !sleep(ctx, c.opts.Tick) {
			return
		}
		remaining := n
		c.post(func() error {
			if c.session.State() == StateCountdown {
				c.session.SetStatus(countdownStatus("begin", remaining), false)
			}
			return nil
		})
	}
	if !sleep(ctx, c.opts.Tick) {
		return
	}
	c.post(c.startRecording)
}

// startRecording runs on the loop when the countdown elapsed
func (c *Controller) startRecording() error {
	if err := c.session.BeginRecording(); err != nil {
		return err
	}

	seconds := c.session.DurationSeconds()
	duration := time.Duration(seconds) * c.opts.Tick
	buffer := c.session.Buffer()
	label := c.session.CurrentLabel()

	c.logger.Info("Recording started", "label", label, "duration", duration.String())

	c.spawn(func(ctx context.Context) {
		recordCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		go c.recordingCountdown(recordCtx, seconds)

		start := time.Now()
		n, err := c.opts.Recorder.Record(recordCtx, duration, buffer, c.opts.Display)
		elapsed := time.Since(start)

		c.post(func() error { return c.finishRecording(n, elapsed, err) })
	})
	return nil
}

// recordingCountdown updates the status once per tick while the recorder runs.
// It is informational only; the recorder decides when capture ends.
func (c *Controller) recordingCountdown(ctx context.Context, seconds int) {
	for n := seconds - 1; n > 0; n-- {
		if !sleep(ctx, c.opts.Tick) {
			return
		}
		remaining := n
		c.post(func() error {
			if c.session.State() == StateRecording {
				c.session.SetStatus(countdownStatus("stop", remaining), false)
			}
			return nil
		})
	}
}

func (c *Controller) finishRecording(frames int, elapsed time.Duration, recordErr error) error {
	if recordErr != nil {
		c.logger.Warn("Recording aborted", "error", recordErr)
		reason := ""
		if !errors.Is(recordErr, context.Canceled) {
			reason = fmt.Sprintf("Error! Recording failed: %v", recordErr)
		}
		return c.session.AbortRecording(reason)
	}

	if elapsed > 0 {
		c.captureRate = float64(frames) / elapsed.Seconds()
	}
	c.logger.Info("Recording complete", "frames", frames, "elapsed", elapsed.String())
	return c.session.FinishRecording()
}

// PlayVideo replays the recorded frames with the current label as caption.
// With nothing recorded it reports ErrEmptyBuffer and changes nothing else.
func (c *Controller) PlayVideo() error {
	return c.do(func() error {
		if err := c.session.BeginPlayback(); err != nil {
			if errors.Is(err, ErrEmptyBuffer) {
				c.logger.Warn("Playback requested with empty buffer")
			}
			return err
		}

		frames := c.session.Buffer().Frames()
		overlay := "Playback... Recorded class: " + c.session.CurrentLabel()

		var interval time.Duration
		if c.captureRate > 0 {
			interval = time.Duration(float64(time.Second) / c.captureRate)
		}

		c.spawn(func(ctx context.Context) {
			next := time.Now()
			for _, frame := range frames {
				if ctx.Err() != nil {
					return
				}
				if c.opts.Display != nil {
					c.opts.Display.Show(frame, overlay)
				}
				if interval > 0 {
					next = next.Add(interval)
					if wait := time.Until(next); wait > 0 && !sleep(ctx, wait) {
						return
					}
				}
			}
			c.post(c.session.FinishPlayback)
		})
		return nil
	})
}

// SaveVideo encodes the recorded frames to <output dir>/<label><unix time>.<ext>.
// With nothing recorded it reports ErrEmptyBuffer and leaves the label cursor alone.
func (c *Controller) SaveVideo() error {
	return c.do(func() error {
		if err := c.session.BeginSave(); err != nil {
			if errors.Is(err, ErrEmptyBuffer) {
				c.logger.Warn("Save requested with empty buffer")
			}
			return err
		}

		savedAt := c.opts.Now()
		label := c.session.CurrentLabel()
		clip := SavedClip{
			Path:      filepath.Join(c.session.OutputDir(), common.ClipFileName(label, savedAt, c.opts.Encoder.Codec())),
			Label:     label,
			Category:  c.session.Category(),
			SavedAt:   savedAt,
			SessionID: c.session.ID(),
		}
		frames := c.session.Buffer().Frames()
		clip.Frames = len(frames)

		c.spawn(func(ctx context.Context) {
			err := c.opts.Encoder.Encode(ctx, clip.Path, frames)
			if err != nil {
				c.logger.Error("Failed to save clip", "path", clip.Path, "error", err)
			} else {
				c.logger.Info("Clip saved", "path", clip.Path, "label", clip.Label, "frames", clip.Frames)
				if c.opts.OnClipSaved != nil {
					c.opts.OnClipSaved(clip)
				}
			}
			c.post(func() error { return c.session.FinishSave(err) })
		})
		return nil
	})
}
