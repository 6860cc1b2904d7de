package speech

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeRecognizer returns its queued hypothesis once released, or blocks
// until ctx is done when block is set.
type fakeRecognizer struct {
	hypothesis string
	err        error
	block      bool

	mu       sync.Mutex
	active   int
	released int
}

func (r *fakeRecognizer) Recognize(ctx context.Context) (string, error) {
	r.mu.Lock()
	r.active++
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.active--
		r.released++
		r.mu.Unlock()
	}()

	if r.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return r.hypothesis, r.err
}

func (r *fakeRecognizer) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active, r.released
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "open lesson 2", Normalize("  Open Lesson 2 \n"))
	assert.Equal(t, "", Normalize("   "))
	assert.Equal(t, "café", Normalize("CAFÉ"))
}

func TestSession_ListenDeliversNormalisedTranscript(t *testing.T) {
	s := NewSession(quietLogger(), &fakeRecognizer{hypothesis: " Start Quiz "})
	defer s.Close()

	result := s.Listen(context.Background())

	require.True(t, result.OK())
	assert.Equal(t, "start quiz", result.Transcript)
	assert.Equal(t, StatusIdle, s.Status())
}

func TestSession_RecognitionErrors(t *testing.T) {
	tests := []struct {
		name string
		rec  *fakeRecognizer
		want error
	}{
		{"platform error", &fakeRecognizer{err: errors.New("network")}, nil},
		{"empty hypothesis", &fakeRecognizer{hypothesis: "  "}, ErrNoSpeech},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(quietLogger(), tt.rec)
			defer s.Close()

			result := s.Listen(context.Background())

			var recErr *RecognitionError
			require.ErrorAs(t, result.Err, &recErr)
			assert.Empty(t, result.Transcript)
			if tt.want != nil {
				assert.ErrorIs(t, result.Err, tt.want)
			}
			assert.Equal(t, StatusIdle, s.Status())
		})
	}
}

func TestSession_StartWhileListeningIsNoOp(t *testing.T) {
	rec := &fakeRecognizer{block: true}
	s := NewSession(quietLogger(), rec)

	results, ok := s.Start(context.Background())
	require.True(t, ok)
	assert.Equal(t, StatusListening, s.Status())

	_, again := s.Start(context.Background())
	assert.False(t, again)
	assert.ErrorIs(t, s.Listen(context.Background()).Err, ErrAlreadyListening)

	s.Stop()
	result := <-results
	assert.False(t, result.OK())

	active, released := rec.counts()
	assert.Zero(t, active)
	assert.Equal(t, 1, released)
	s.Close()
}

func TestSession_StopWhenIdleIsNoOp(t *testing.T) {
	s := NewSession(quietLogger(), &fakeRecognizer{hypothesis: "back"})
	s.Stop()
	s.Stop()
	assert.Equal(t, StatusIdle, s.Status())
	s.Close()
}

func TestSession_CloseReleasesMicrophone(t *testing.T) {
	rec := &fakeRecognizer{block: true}
	s := NewSession(quietLogger(), rec)

	_, ok := s.Start(context.Background())
	require.True(t, ok)

	s.Close()

	active, _ := rec.counts()
	assert.Zero(t, active)
	assert.ErrorIs(t, s.Listen(context.Background()).Err, ErrSessionClosed)
}

func TestSession_ListenHonoursContext(t *testing.T) {
	rec := &fakeRecognizer{block: true}
	s := NewSession(quietLogger(), rec)
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	result := s.Listen(ctx)

	assert.ErrorIs(t, result.Err, context.DeadlineExceeded)
	active, _ := rec.counts()
	assert.Zero(t, active)
}

// fakeSynth blocks in Speak until ctx is done or finish is called.
type fakeSynth struct {
	mu       sync.Mutex
	spoken   []string
	speaking int
	paused   int
	resumed  int
	finish   chan struct{}
}

func newFakeSynth() *fakeSynth {
	return &fakeSynth{finish: make(chan struct{})}
}

func (s *fakeSynth) Speak(ctx context.Context, text string) error {
	s.mu.Lock()
	s.spoken = append(s.spoken, text)
	s.speaking++
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.speaking--
		s.mu.Unlock()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.finish:
		return nil
	}
}

func (s *fakeSynth) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused++
	return nil
}

func (s *fakeSynth) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resumed++
	return nil
}

func (s *fakeSynth) snapshot() ([]string, int, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.spoken...), s.speaking, s.paused, s.resumed
}

func waitSpeaking(t *testing.T, s *fakeSynth, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		_, speaking, _, _ := s.snapshot()
		return speaking == n
	}, time.Second, time.Millisecond)
}

func TestPlayer_PlayPauseResume(t *testing.T) {
	synth := newFakeSynth()
	p := NewPlayer(quietLogger(), synth)
	defer p.Close()

	p.Play(context.Background(), "lesson one")
	waitSpeaking(t, synth, 1)
	assert.Equal(t, PlaybackSpeaking, p.State())

	p.Pause()
	assert.Equal(t, PlaybackPaused, p.State())

	p.Play(context.Background(), "lesson one")
	assert.Equal(t, PlaybackSpeaking, p.State())

	spoken, _, paused, resumed := synth.snapshot()
	assert.Equal(t, []string{"lesson one"}, spoken)
	assert.Equal(t, 1, paused)
	assert.Equal(t, 1, resumed)
}

func TestPlayer_NewTextReplacesCurrent(t *testing.T) {
	synth := newFakeSynth()
	p := NewPlayer(quietLogger(), synth)
	defer p.Close()

	p.Play(context.Background(), "first")
	waitSpeaking(t, synth, 1)
	p.Play(context.Background(), "second")
	waitSpeaking(t, synth, 1)

	spoken, _, _, _ := synth.snapshot()
	assert.Equal(t, []string{"first", "second"}, spoken)
	assert.Equal(t, PlaybackSpeaking, p.State())
}

func TestPlayer_StopIsIdempotent(t *testing.T) {
	synth := newFakeSynth()
	p := NewPlayer(quietLogger(), synth)

	p.Stop()
	p.Play(context.Background(), "text")
	waitSpeaking(t, synth, 1)

	p.Stop()
	p.Stop()

	_, speaking, _, _ := synth.snapshot()
	assert.Zero(t, speaking)
	assert.Equal(t, PlaybackIdle, p.State())
	p.Close()
}

func TestPlayer_FinishedUtteranceReturnsToIdle(t *testing.T) {
	synth := newFakeSynth()
	p := NewPlayer(quietLogger(), synth)
	defer p.Close()

	p.Play(context.Background(), "short")
	waitSpeaking(t, synth, 1)
	close(synth.finish)

	require.Eventually(t, func() bool { return p.State() == PlaybackIdle }, time.Second, time.Millisecond)
}

func TestPlayer_CloseSilencesAndRejectsPlay(t *testing.T) {
	synth := newFakeSynth()
	p := NewPlayer(quietLogger(), synth)

	p.Play(context.Background(), "text")
	waitSpeaking(t, synth, 1)
	p.Close()

	p.Play(context.Background(), "again")

	spoken, speaking, _, _ := synth.snapshot()
	assert.Zero(t, speaking)
	assert.Equal(t, []string{"text"}, spoken)
}
