package processingqueue

import (
	"time"
)

// ProcessingJob is a saved clip waiting for post-processing
type ProcessingJob struct {
	ClipPath   string
	Label      string
	SessionID  string
	SavedAt    time.Time
	RetryCount int // Number of retry attempts made
}
