// Package processingqueue feeds saved clips to the post-processor in the background.
package processingqueue

import (
	"sync"
	"time"

	"github.com/yeti47/fer-collector/logging"
	postprocessing "github.com/yeti47/fer-collector/post-processing"
)

// ProcessingQueue runs post-processing off the capture path
type ProcessingQueue interface {
	// Queue adds a job to the queue; false means the queue was full and the job was dropped
	Queue(job *ProcessingJob) bool

	// Start begins processing the queue. Once stopChan is closed the remaining jobs
	// are processed until the drain timeout passes.
	Start(stopChan <-chan struct{}, wg *sync.WaitGroup, callbacks Callbacks)
}

// Callbacks are invoked from the queue goroutine after a job finished
type Callbacks struct {
	OnSuccess func(job *ProcessingJob, clip *postprocessing.VideoClip)
	OnFailure func(job *ProcessingJob, err error)
}

type processingQueue struct {
	processor    postprocessing.PostProcessor
	jobs         chan *ProcessingJob
	maxRetries   int
	retryDelay   time.Duration
	drainTimeout time.Duration
	logger       logging.Logger
}

// NewProcessingQueue creates a queue holding up to bufferSize jobs.
// A failed job is attempted again up to maxRetries times.
func NewProcessingQueue(processor postprocessing.PostProcessor, bufferSize, maxRetries int, drainTimeout time.Duration, logger logging.Logger) ProcessingQueue {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	if logger == nil {
		logger = logging.NopLogger
	}
	return &processingQueue{
		processor:    processor,
		jobs:         make(chan *ProcessingJob, bufferSize),
		maxRetries:   maxRetries,
		retryDelay:   time.Second,
		drainTimeout: drainTimeout,
		logger:       logger,
	}
}

func (q *processingQueue) Queue(job *ProcessingJob) bool {
	select {
	case q.jobs <- job:
		q.logger.Info("Queued clip for post-processing", "path", job.ClipPath, "label", job.Label)
		return true
	default:
		q.logger.Warn("Processing queue full, skipping clip", "path", job.ClipPath)
		return false
	}
}

func (q *processingQueue) Start(stopChan <-chan struct{}, wg *sync.WaitGroup, callbacks Callbacks) {
	defer wg.Done()

	for {
		select {
		case job := <-q.jobs:
			q.process(job, stopChan, time.Time{}, callbacks)
		case <-stopChan:
			q.drain(callbacks)
			return
		}
	}
}

// drain processes the jobs still queued until the queue is empty or the drain timeout passes.
// A transcode that is already running when the timeout passes is not interrupted.
func (q *processingQueue) drain(callbacks Callbacks) {
	deadline := time.Now().Add(q.drainTimeout)

	for {
		if time.Now().After(deadline) {
			if remaining := len(q.jobs); remaining > 0 {
				q.logger.Warn("Processing queue drain timeout, leaving remaining clips unprocessed", "remaining", remaining)
			}
			return
		}
		select {
		case job := <-q.jobs:
			// no retry pauses while shutting down
			q.process(job, nil, deadline, callbacks)
		default:
			return
		}
	}
}

// process runs a job until it succeeds, its retries are used up or deadline passes.
// A zero deadline means no limit. Retries wait retryDelay unless stop is closed or nil.
func (q *processingQueue) process(job *ProcessingJob, stop <-chan struct{}, deadline time.Time, callbacks Callbacks) {
	for {
		q.logger.Info("Post-processing clip", "path", job.ClipPath, "label", job.Label, "attempt", job.RetryCount+1)

		clip, err := q.processor.ProcessVideo(job.ClipPath)
		if err == nil {
			clip.Label = job.Label
			q.logger.Info("Post-processing complete", "path", clip.Path, "duration", clip.Duration.String())
			if callbacks.OnSuccess != nil {
				callbacks.OnSuccess(job, clip)
			}
			return
		}

		expired := !deadline.IsZero() && time.Now().After(deadline)
		if job.RetryCount >= q.maxRetries || expired {
			q.logger.Error("Post-processing failed, giving up", "path", job.ClipPath,
				"attempts", job.RetryCount+1, "drain_timeout", expired, "error", err)
			if callbacks.OnFailure != nil {
				callbacks.OnFailure(job, err)
			}
			return
		}

		job.RetryCount++
		q.logger.Warn("Post-processing failed, retrying", "path", job.ClipPath, "retry", job.RetryCount, "error", err)

		if stop != nil && !q.wait(stop) {
			// stopping: remaining retries run back to back within the drain timeout
			stop = nil
			deadline = time.Now().Add(q.drainTimeout)
		}
	}
}

func (q *processingQueue) wait(stop <-chan struct{}) bool {
	timer := time.NewTimer(q.retryDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-stop:
		return false
	}
}
