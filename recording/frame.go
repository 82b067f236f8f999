package recording

import "sync"

// Frame is a captured image. Whoever holds it last must Close it.
type Frame interface {
	Close() error
}

// FrameSource yields captured frames one at a time.
// ok is false when the device produced no frame for this poll.
type FrameSource interface {
	Read() (frame Frame, ok bool)
}

// Display receives frames to show on screen together with an overlay caption.
// Implementations must copy what they keep; the caller retains ownership of frame.
type Display interface {
	Show(frame Frame, overlay string)
}

// FrameBuffer is the ordered in-memory clip being recorded, previewed and saved
type FrameBuffer struct {
	mu     sync.Mutex
	frames []Frame
}

func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

// Append adds a frame at the end; the buffer takes ownership
func (b *FrameBuffer) Append(frame Frame) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frames = append(b.frames, frame)
}

func (b *FrameBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.frames)
}

// Frames returns the buffered frames in capture order.
// The frames stay owned by the buffer.
func (b *FrameBuffer) Frames() []Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Frame, len(b.frames))
	copy(out, b.frames)
	return out
}

// Clear closes and drops every buffered frame
func (b *FrameBuffer) Clear() {
	b.mu.Lock()
	frames := b.frames
	b.frames = nil
	b.mu.Unlock()

	for _, f := range frames {
		if f != nil {
			f.Close()
		}
	}
}
