package speech

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

type PlaybackState uint8

const (
	PlaybackIdle PlaybackState = iota
	PlaybackSpeaking
	PlaybackPaused
)

func (s PlaybackState) String() string {
	switch s {
	case PlaybackSpeaking:
		return "speaking"
	case PlaybackPaused:
		return "paused"
	default:
		return "idle"
	}
}

type utterance struct {
	text   string
	cancel context.CancelFunc
	done   chan struct{}
}

// Player plays at most one utterance. A new Play cancels whatever is
// speaking, and Stop or Close always leaves the synthesizer silent.
type Player struct {
	log   *logrus.Logger
	synth Synthesizer

	mu      sync.Mutex
	state   PlaybackState
	current *utterance
	closed  bool
}

func NewPlayer(log *logrus.Logger, synth Synthesizer) *Player {
	return &Player{
		log:   log,
		synth: synth,
	}
}

func (p *Player) State() PlaybackState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Play resumes a paused utterance of the same text, otherwise it cancels the
// current one and starts speaking text from the beginning.
func (p *Player) Play(ctx context.Context, text string) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	if p.state == PlaybackPaused && p.current != nil && p.current.text == text {
		if err := p.synth.Resume(); err != nil {
			p.log.WithField("error", err.Error()).Warn("Failed to resume playback")
		} else {
			p.state = PlaybackSpeaking
		}
		p.mu.Unlock()
		return
	}
	previous := p.current
	p.current = nil
	p.state = PlaybackIdle
	p.mu.Unlock()

	cancelUtterance(previous)

	if text == "" {
		return
	}

	speakCtx, cancel := context.WithCancel(ctx)
	u := &utterance{text: text, cancel: cancel, done: make(chan struct{})}

	p.mu.Lock()
	if p.closed || p.current != nil {
		p.mu.Unlock()
		cancel()
		return
	}
	p.current = u
	p.state = PlaybackSpeaking
	p.mu.Unlock()

	go p.speak(speakCtx, u)
}

func (p *Player) speak(ctx context.Context, u *utterance) {
	defer close(u.done)
	defer u.cancel()

	if err := p.synth.Speak(ctx, u.text); err != nil && ctx.Err() == nil {
		p.log.WithField("error", err.Error()).Warn("Speech playback failed")
	}

	p.mu.Lock()
	if p.current == u {
		p.current = nil
		p.state = PlaybackIdle
	}
	p.mu.Unlock()
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != PlaybackSpeaking {
		return
	}
	if err := p.synth.Pause(); err != nil {
		p.log.WithField("error", err.Error()).Warn("Failed to pause playback")
		return
	}
	p.state = PlaybackPaused
}

// Stop silences any utterance and waits for the synthesizer to let go of
// it. Calling Stop when nothing is playing has no effect.
func (p *Player) Stop() {
	p.mu.Lock()
	current := p.current
	p.current = nil
	p.state = PlaybackIdle
	p.mu.Unlock()

	cancelUtterance(current)
}

func (p *Player) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.Stop()
}

func cancelUtterance(u *utterance) {
	if u == nil {
		return
	}
	u.cancel()
	<-u.done
}
