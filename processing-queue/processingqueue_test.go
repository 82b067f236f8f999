package processingqueue

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yeti47/fer-collector/logging"
	postprocessing "github.com/yeti47/fer-collector/post-processing"
)

type fakeProcessor struct {
	mu       sync.Mutex
	failures map[string]int // remaining failures per path
	calls    []string
	delay    time.Duration
}

func (p *fakeProcessor) ProcessVideo(sourcePath string) (*postprocessing.VideoClip, error) {
	time.Sleep(p.delay)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, sourcePath)
	if p.failures[sourcePath] > 0 {
		p.failures[sourcePath]--
		return nil, errors.New("ffmpeg exited with status 1")
	}
	return &postprocessing.VideoClip{Path: sourcePath + ".processed", SourcePath: sourcePath}, nil
}

func (p *fakeProcessor) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func newTestQueue(processor postprocessing.PostProcessor, size, retries int) *processingQueue {
	q := NewProcessingQueue(processor, size, retries, time.Second, logging.NopLogger).(*processingQueue)
	q.retryDelay = time.Millisecond
	return q
}

func TestQueueRejectsWhenFull(t *testing.T) {
	q := newTestQueue(&fakeProcessor{}, 1, 0)

	if !q.Queue(&ProcessingJob{ClipPath: "a.mp4"}) {
		t.Fatal("Expected first job to be queued")
	}
	if q.Queue(&ProcessingJob{ClipPath: "b.mp4"}) {
		t.Error("Expected second job to be rejected")
	}
}

func TestStartProcessesJobs(t *testing.T) {
	processor := &fakeProcessor{}
	q := newTestQueue(processor, 4, 0)

	var mu sync.Mutex
	var labels []string
	done := make(chan struct{}, 2)
	callbacks := Callbacks{
		OnSuccess: func(job *ProcessingJob, clip *postprocessing.VideoClip) {
			mu.Lock()
			labels = append(labels, clip.Label)
			mu.Unlock()
			done <- struct{}{}
		},
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go q.Start(stop, &wg, callbacks)

	q.Queue(&ProcessingJob{ClipPath: "Happy1.mp4", Label: "Happy"})
	q.Queue(&ProcessingJob{ClipPath: "Sad2.mp4", Label: "Sad"})

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Timed out waiting for jobs")
		}
	}
	close(stop)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(labels) != 2 || labels[0] != "Happy" || labels[1] != "Sad" {
		t.Errorf("Unexpected processed labels: %v", labels)
	}
}

func TestRetriesUntilSuccess(t *testing.T) {
	processor := &fakeProcessor{failures: map[string]int{"Calm1.mp4": 2}}
	q := newTestQueue(processor, 1, 2)

	var succeeded bool
	job := &ProcessingJob{ClipPath: "Calm1.mp4", Label: "Calm"}
	q.process(job, make(chan struct{}), time.Time{}, Callbacks{
		OnSuccess: func(*ProcessingJob, *postprocessing.VideoClip) { succeeded = true },
		OnFailure: func(*ProcessingJob, error) { t.Error("Unexpected failure callback") },
	})

	if !succeeded {
		t.Error("Expected success after retries")
	}
	if job.RetryCount != 2 {
		t.Errorf("Expected 2 retries, got %d", job.RetryCount)
	}
	if processor.callCount() != 3 {
		t.Errorf("Expected 3 attempts, got %d", processor.callCount())
	}
}

func TestGivesUpAfterMaxRetries(t *testing.T) {
	processor := &fakeProcessor{failures: map[string]int{"Fear1.mp4": 5}}
	q := newTestQueue(processor, 1, 1)

	var failErr error
	q.process(&ProcessingJob{ClipPath: "Fear1.mp4"}, nil, time.Time{}, Callbacks{
		OnFailure: func(_ *ProcessingJob, err error) { failErr = err },
	})

	if failErr == nil {
		t.Error("Expected failure callback")
	}
	if processor.callCount() != 2 {
		t.Errorf("Expected 2 attempts, got %d", processor.callCount())
	}
}

func TestDrainProcessesRemainingJobs(t *testing.T) {
	processor := &fakeProcessor{}
	q := newTestQueue(processor, 3, 0)

	q.Queue(&ProcessingJob{ClipPath: "a.mp4"})
	q.Queue(&ProcessingJob{ClipPath: "b.mp4"})
	q.drain(Callbacks{})

	if processor.callCount() != 2 {
		t.Errorf("Expected 2 processed jobs, got %d", processor.callCount())
	}
	if len(q.jobs) != 0 {
		t.Errorf("Expected empty queue, got %d", len(q.jobs))
	}
}

func TestDrainStopsRetryingAtTimeout(t *testing.T) {
	processor := &fakeProcessor{failures: map[string]int{"slow.mp4": 1000}, delay: 10 * time.Millisecond}
	q := newTestQueue(processor, 2, 1000)
	q.drainTimeout = 50 * time.Millisecond

	q.Queue(&ProcessingJob{ClipPath: "slow.mp4"})
	q.Queue(&ProcessingJob{ClipPath: "next.mp4"})

	var failed []string
	start := time.Now()
	q.drain(Callbacks{
		OnFailure: func(job *ProcessingJob, err error) { failed = append(failed, job.ClipPath) },
	})

	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Drain ran %v past a 50ms timeout", elapsed)
	}
	if len(failed) != 1 || failed[0] != "slow.mp4" {
		t.Errorf("Expected slow.mp4 to fail at the timeout, got %v", failed)
	}
	if len(q.jobs) != 1 {
		t.Errorf("Expected next.mp4 to stay queued, got %d jobs", len(q.jobs))
	}
}

func TestStartDrainsQueuedJobsOnStop(t *testing.T) {
	processor := &fakeProcessor{}
	q := newTestQueue(processor, 3, 0)
	q.Queue(&ProcessingJob{ClipPath: "a.mp4"})
	q.Queue(&ProcessingJob{ClipPath: "b.mp4"})

	stop := make(chan struct{})
	close(stop)
	var wg sync.WaitGroup
	wg.Add(1)
	q.Start(stop, &wg, Callbacks{})
	wg.Wait()

	if processor.callCount() != 2 {
		t.Errorf("Expected both queued jobs processed on stop, got %d", processor.callCount())
	}
}
