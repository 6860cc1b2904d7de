package speech

import (
	"context"
	"sync"

	contextPkg "Edunabha/pkg/context"

	"github.com/sirupsen/logrus"
)

type Status uint8

const (
	StatusIdle Status = iota
	StatusListening
)

func (s Status) String() string {
	if s == StatusListening {
		return "listening"
	}
	return "idle"
}

// Session owns one recognizer and runs at most one capture at a time.
type Session struct {
	log        *logrus.Logger
	recognizer Recognizer

	mu     sync.Mutex
	status Status
	cancel context.CancelFunc
	done   chan struct{}
	closed bool
}

func NewSession(log *logrus.Logger, recognizer Recognizer) *Session {
	return &Session{
		log:        log,
		recognizer: recognizer,
	}
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Start begins a capture and returns the channel that will carry its single
// result. It returns false, and does nothing, while another capture is in
// progress or after Close.
func (s *Session) Start(ctx context.Context) (<-chan Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.status == StatusListening {
		return nil, false
	}

	captureCtx, cancel := context.WithCancel(ctx)
	results := make(chan Result, 1)
	done := make(chan struct{})

	s.status = StatusListening
	s.cancel = cancel
	s.done = done

	go s.capture(captureCtx, cancel, results, done)

	return results, true
}

func (s *Session) capture(ctx context.Context, cancel context.CancelFunc, results chan<- Result, done chan struct{}) {
	defer close(done)
	defer cancel()

	hypothesis, err := s.recognizer.Recognize(ctx)
	transcript := Normalize(hypothesis)
	if err == nil && transcript == "" {
		err = ErrNoSpeech
	}

	var result Result
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Warn("Speech recognition produced no transcript")
		result = Result{Err: &RecognitionError{Err: err}}
	} else {
		result = Result{Transcript: transcript}
	}

	s.mu.Lock()
	s.status = StatusIdle
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	results <- result
	close(results)
}

// Listen runs one capture and waits for its result. The capture is
// cancelled if ctx ends first.
func (s *Session) Listen(ctx context.Context) Result {
	results, ok := s.Start(ctx)
	if !ok {
		if s.isClosed() {
			return Result{Err: ErrSessionClosed}
		}
		return Result{Err: ErrAlreadyListening}
	}
	defer s.Stop()

	select {
	case result := <-results:
		return result
	case <-ctx.Done():
		s.Stop()
		return Result{Err: &RecognitionError{Err: ctx.Err()}}
	}
}

// Stop cancels an in-progress capture and waits until the recognizer has
// released the microphone. It is a no-op when idle.
func (s *Session) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Close stops any capture and rejects further starts.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.Stop()
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
