package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/yeti47/fer-collector/config"
	filemanagement "github.com/yeti47/fer-collector/file-management"
	"github.com/yeti47/fer-collector/logging"
	postprocessing "github.com/yeti47/fer-collector/post-processing"
	processingqueue "github.com/yeti47/fer-collector/processing-queue"
	"github.com/yeti47/fer-collector/session"
)

// SessionRunner runs the session event loop until ctx is cancelled
type SessionRunner interface {
	Run(ctx context.Context) error
}

// Collector runs the session controller and the post-processing queue in the background
// and hands saved clips from one to the other
type Collector struct {
	// Core components
	processingQueue        processingqueue.ProcessingQueue
	fileTracker            filemanagement.FileTracker
	postProcessingSettings config.SettingsProvider[postprocessing.PostProcessingSettings]
	outputDir              string
	logger                 logging.Logger

	// State management
	isRunning    bool
	mu           sync.RWMutex
	cancel       context.CancelFunc
	shutdownChan chan struct{}
	sessionDone  chan struct{}
	wg           sync.WaitGroup
}

// NewCollector creates a collector. processingQueue may be nil when post-processing is not configured.
func NewCollector(
	processingQueue processingqueue.ProcessingQueue,
	fileTracker filemanagement.FileTracker,
	postProcessingSettings config.SettingsProvider[postprocessing.PostProcessingSettings],
	outputDir string,
	logger logging.Logger,
) *Collector {
	if logger == nil {
		logger = logging.NopLogger
	}
	return &Collector{
		processingQueue:        processingQueue,
		fileTracker:            fileTracker,
		postProcessingSettings: postProcessingSettings,
		outputDir:              outputDir,
		logger:                 logger,
		shutdownChan:           make(chan struct{}),
		sessionDone:            make(chan struct{}),
	}
}

// Start prepares the output directory and starts the session loop and the processing queue
func (c *Collector) Start(ctx context.Context, runner SessionRunner) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isRunning {
		return fmt.Errorf("collector is already running")
	}

	if err := c.fileTracker.EnsureDirectory(c.outputDir); err != nil {
		return fmt.Errorf("failed to prepare output directory: %w", err)
	}
	if removed := c.fileTracker.CleanupPartialFiles(c.outputDir); removed > 0 {
		c.logger.Info("Removed partial files from an earlier run", "count", removed)
	}
	if counts, err := c.fileTracker.CountClips(c.outputDir); err == nil && len(counts) > 0 {
		c.logger.Info("Existing clips in output directory", "counts", counts)
	}

	if c.processingQueue != nil {
		c.wg.Add(1)
		go c.processingQueue.Start(c.shutdownChan, &c.wg, processingqueue.Callbacks{
			OnSuccess: func(job *processingqueue.ProcessingJob, clip *postprocessing.VideoClip) {
				c.logger.Info("Clip post-processed", "source", job.ClipPath, "path", clip.Path, "label", clip.Label)
			},
			OnFailure: func(job *processingqueue.ProcessingJob, err error) {
				// the original clip stays in place
				c.logger.Error("Post-processing permanently failed, keeping original clip", "path", job.ClipPath, "error", err)
			},
		})
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	go func() {
		defer close(c.sessionDone)
		if err := runner.Run(sessionCtx); err != nil {
			c.logger.Error("Session loop stopped with error", "error", err)
		}
	}()

	c.isRunning = true
	c.logger.Info("Collector started", "output_dir", c.outputDir, "post_processing", c.processingQueue != nil)
	return nil
}

// OnClipSaved queues a saved clip for post-processing when it is enabled.
// It is called from the session's save worker.
func (c *Collector) OnClipSaved(clip session.SavedClip) {
	if c.processingQueue == nil || !c.postProcessingSettings.GetSettings().Enabled {
		return
	}

	select {
	case <-c.shutdownChan:
		c.logger.Warn("Skipping post-processing of clip due to shutdown", "path", clip.Path)
		return
	default:
	}

	c.processingQueue.Queue(&processingqueue.ProcessingJob{
		ClipPath:  clip.Path,
		Label:     clip.Label,
		SessionID: clip.SessionID,
		SavedAt:   clip.SavedAt,
	})
}

// Stop cancels the session loop, waits for its workers and drains the processing queue
func (c *Collector) Stop() {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return
	}
	c.isRunning = false
	c.mu.Unlock()

	c.logger.Info("Stopping collector...")

	c.cancel()
	<-c.sessionDone

	// Signal shutdown to the queue; it drains what is left
	close(c.shutdownChan)
	c.wg.Wait()

	c.fileTracker.CleanupPartialFiles(c.outputDir)
	c.logger.Info("Collector stopped")
}

func (c *Collector) IsRunning() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isRunning
}
