package postprocessing

import "time"

// VideoClip is a clip produced by the post-processor
type VideoClip struct {
	Path       string
	SourcePath string
	Codec      string
	Format     string
	Label      string
	Duration   time.Duration
}
