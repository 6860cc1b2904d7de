package audio

import (
	"context"
	"sync"
)

type capture struct {
	clips  chan Clip
	fed    bool
	active bool
}

func newCapture() *capture {
	return &capture{clips: make(chan Clip, 1)}
}

// ClipRecognizer adapts a Transcriber to a capture cycle: Recognize waits
// for the clip fed to its own capture and transcribes it. A clip belongs to
// exactly one capture and is dropped when that capture ends.
type ClipRecognizer struct {
	transcriber Transcriber

	mu      sync.Mutex
	current *capture
}

func NewClipRecognizer(transcriber Transcriber) *ClipRecognizer {
	return &ClipRecognizer{transcriber: transcriber}
}

// Open starts accepting a clip for the next capture. It discards anything
// left from an earlier Open that no capture picked up, and leaves a capture
// already waiting in Recognize untouched.
func (r *ClipRecognizer) Open() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil && r.current.active {
		return
	}
	r.current = newCapture()
}

// Feed hands a clip to the open capture without blocking. It reports false
// when no capture is open or the capture already has its clip.
func (r *ClipRecognizer) Feed(clip Clip) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil || r.current.fed {
		return false
	}
	r.current.fed = true
	r.current.clips <- clip
	return true
}

func (r *ClipRecognizer) Recognize(ctx context.Context) (string, error) {
	c := r.begin()
	defer r.end(c)

	if err := ctx.Err(); err != nil {
		return "", err
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case clip := <-c.clips:
		if len(clip.Data) == 0 {
			return "", ErrEmptyClip
		}
		return r.transcriber.Transcribe(ctx, clip)
	}
}

func (r *ClipRecognizer) begin() *capture {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil || r.current.active {
		r.current = newCapture()
	}
	r.current.active = true
	return r.current
}

func (r *ClipRecognizer) end(c *capture) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == c {
		r.current = nil
	}
}
