package audio

import (
	"context"
	"errors"
	"mime"
	"strings"
)

var ErrEmptyClip = errors.New("audio clip is empty")

// Clip is one recorded utterance as uploaded by the browser.
type Clip struct {
	Data     []byte
	MimeType string
}

// Filename gives the clip a name whose extension matches its container,
// which transcription APIs use to pick a decoder.
func (c Clip) Filename() string {
	ext := "webm"
	if mt, _, err := mime.ParseMediaType(c.MimeType); err == nil {
		switch mt {
		case "audio/wav", "audio/x-wav", "audio/wave":
			ext = "wav"
		case "audio/mpeg", "audio/mp3":
			ext = "mp3"
		case "audio/ogg", "application/ogg":
			ext = "ogg"
		case "audio/mp4", "audio/m4a", "audio/x-m4a":
			ext = "m4a"
		case "audio/flac":
			ext = "flac"
		}
	}
	return "clip." + ext
}

// Transcriber turns a clip into text.
type Transcriber interface {
	Transcribe(ctx context.Context, clip Clip) (string, error)
}

// LanguageBase reduces a BCP-47 tag such as en-US to its language, which
// is what Whisper expects.
func LanguageBase(tag string) string {
	base, _, _ := strings.Cut(tag, "-")
	return strings.ToLower(base)
}
