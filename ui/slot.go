package ui

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/yeti47/fer-collector/recording"
)

// FrameSlot holds the most recent frame and its caption. The live poll loop and the
// session workers write to it, the render loop reads from it.
type FrameSlot struct {
	mu      sync.Mutex
	frame   gocv.Mat
	caption string
	version uint64
}

func NewFrameSlot() *FrameSlot {
	return &FrameSlot{frame: gocv.NewMat()}
}

// Show copies frame into the slot. It implements recording.Display.
func (s *FrameSlot) Show(frame recording.Frame, caption string) {
	mat, ok := frame.(*gocv.Mat)
	if !ok || mat.Empty() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	mat.CopyTo(&s.frame)
	s.caption = caption
	s.version++
}

// CopyTo copies the latest frame into dst. ok is false until a frame was shown.
func (s *FrameSlot) CopyTo(dst *gocv.Mat) (caption string, version uint64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version == 0 {
		return "", 0, false
	}
	s.frame.CopyTo(dst)
	return s.caption, s.version, true
}

func (s *FrameSlot) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame.Close()
}
