package audio

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type PlaybackType string

const (
	PlaybackPlay   PlaybackType = "play"
	PlaybackSpeak  PlaybackType = "speak"
	PlaybackPause  PlaybackType = "pause"
	PlaybackResume PlaybackType = "resume"
	PlaybackCancel PlaybackType = "cancel"
)

// PlaybackEvent instructs the browser. A play event carries a URL of
// rendered audio; a speak event asks the browser to synthesize Text itself.
type PlaybackEvent struct {
	Type PlaybackType `json:"type"`
	ID   string       `json:"id"`
	URL  string       `json:"url,omitempty"`
	Text string       `json:"text,omitempty"`
}

type Sink func(PlaybackEvent) error

// Storage keeps rendered narration where the browser can fetch it.
type Storage interface {
	UploadAudio(ctx context.Context, key string, audio []byte, contentType string) (string, error)
}

// Narrator is a speech.Synthesizer whose speaker is the connected browser.
// Speak returns once the browser reports the utterance ended through Ended.
type Narrator struct {
	log   *logrus.Logger
	tts   ITTS
	store Storage
	send  Sink

	mu      sync.Mutex
	current string
	ended   chan string
}

// NewNarrator renders audio with tts into store when both are set,
// otherwise the browser's own synthesizer reads the text.
func NewNarrator(log *logrus.Logger, tts ITTS, store Storage, send Sink) *Narrator {
	return &Narrator{
		log:   log,
		tts:   tts,
		store: store,
		send:  send,
		ended: make(chan string, 4),
	}
}

func (n *Narrator) Speak(ctx context.Context, text string) error {
	id := uuid.NewString()
	event := PlaybackEvent{Type: PlaybackSpeak, ID: id, Text: text}

	if n.tts != nil && n.store != nil {
		url, err := n.render(ctx, id, text)
		if err != nil {
			n.log.WithFields(logrus.Fields{
				"playback_id": id,
				"error":       err.Error(),
			}).Warn("Narration rendering failed, falling back to browser speech")
		} else {
			event.Type = PlaybackPlay
			event.URL = url
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := n.send(event); err != nil {
		return fmt.Errorf("send playback: %w", err)
	}

	n.setCurrent(id)
	defer n.setCurrent("")

	for {
		select {
		case <-ctx.Done():
			if err := n.send(PlaybackEvent{Type: PlaybackCancel, ID: id}); err != nil {
				n.log.WithField("error", err.Error()).Debug("Failed to send playback cancel")
			}
			return ctx.Err()
		case endedID := <-n.ended:
			if endedID == id {
				return nil
			}
		}
	}
}

func (n *Narrator) render(ctx context.Context, id, text string) (string, error) {
	audio, err := n.tts.GenerateAudio(ctx, text)
	if err != nil {
		return "", err
	}
	return n.store.UploadAudio(ctx, "narration/"+id+".mp3", audio, "audio/mpeg")
}

func (n *Narrator) Pause() error {
	return n.control(PlaybackPause)
}

func (n *Narrator) Resume() error {
	return n.control(PlaybackResume)
}

func (n *Narrator) control(kind PlaybackType) error {
	id := n.Current()
	if id == "" {
		return nil
	}
	return n.send(PlaybackEvent{Type: kind, ID: id})
}

// Ended records that the browser finished the utterance id. Unknown or
// stale ids are ignored.
func (n *Narrator) Ended(id string) {
	select {
	case n.ended <- id:
	default:
	}
}

func (n *Narrator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

func (n *Narrator) setCurrent(id string) {
	n.mu.Lock()
	n.current = id
	n.mu.Unlock()
}
