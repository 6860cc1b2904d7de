package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const DefaultLanguage = "en-US"

var (
	ErrNoSpeech         = errors.New("no speech detected")
	ErrAlreadyListening = errors.New("a capture is already in progress")
	ErrSessionClosed    = errors.New("speech session closed")
)

// Recognizer performs one capture cycle and returns the best hypothesis.
// Implementations must stop capturing and release the microphone as soon
// as ctx is done.
type Recognizer interface {
	Recognize(ctx context.Context) (string, error)
}

// Synthesizer plays one utterance at a time. Speak blocks until playback
// ends or ctx is done; on ctx done the utterance must be silenced.
type Synthesizer interface {
	Speak(ctx context.Context, text string) error
	Pause() error
	Resume() error
}

// RecognitionError wraps a transient capture failure. Callers are expected
// to ask the user to try again rather than treat it as fatal.
type RecognitionError struct {
	Err error
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("speech recognition: %v", e.Err)
}

func (e *RecognitionError) Unwrap() error {
	return e.Err
}

// Result is exactly one of a transcript or an error.
type Result struct {
	Transcript string
	Err        error
}

func (r Result) OK() bool {
	return r.Err == nil
}

// Normalize turns a raw hypothesis into a transcript.
func Normalize(hypothesis string) string {
	return strings.TrimSpace(strings.ToLower(norm.NFC.String(hypothesis)))
}
