package voice

import (
	"time"

	"Edunabha/internal/api/course"
	"Edunabha/pkg/navigation"
)

type SessionResponse struct {
	ID        string             `json:"id"`
	Context   navigation.Context `json:"context"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// InterpretRequest classifies a transcript against a client-held context
// without touching any stored session.
type InterpretRequest struct {
	Transcript string             `json:"transcript"`
	Context    navigation.Context `json:"context"`
}

type InterpretResponse struct {
	Transcript string            `json:"transcript"`
	Action     navigation.Action `json:"action"`
}

type TranscriptRequest struct {
	Transcript string `json:"transcript" validate:"required,max=500"`
}

type CommandResponse struct {
	Transcript string                       `json:"transcript"`
	Action     navigation.Action            `json:"action"`
	Context    *navigation.Context          `json:"context,omitempty"`
	Outcome    navigation.Outcome           `json:"outcome"`
	AudioURL   string                       `json:"audio_url,omitempty"`
	Quiz       *course.CompleteQuizResponse `json:"quiz_result,omitempty"`
	Ended      bool                         `json:"ended"`
}

type QuizAnswerRequest struct {
	Answer string `json:"answer" validate:"required,max=500"`
}

type QuizAnswerResponse struct {
	Correct bool               `json:"correct"`
	Context navigation.Context `json:"context"`
}

type ClientMessageType string

const (
	ClientListen        ClientMessageType = "listen"
	ClientStop          ClientMessageType = "stop"
	ClientTranscript    ClientMessageType = "transcript"
	ClientQuizAnswer    ClientMessageType = "quiz_answer"
	ClientPlay          ClientMessageType = "play"
	ClientPause         ClientMessageType = "pause"
	ClientStopSpeaking  ClientMessageType = "stop_speaking"
	ClientPlaybackEnded ClientMessageType = "playback_ended"
)

// ClientMessage is a text frame from the dashboard. Audio clips arrive as
// binary frames with MimeType announced by the preceding listen message.
type ClientMessage struct {
	Type       ClientMessageType `json:"type"`
	Transcript string            `json:"transcript,omitempty"`
	Answer     string            `json:"answer,omitempty"`
	PlaybackID string            `json:"playback_id,omitempty"`
	MimeType   string            `json:"mime_type,omitempty"`
}

type ServerMessageType string

const (
	ServerState      ServerMessageType = "state"
	ServerTranscript ServerMessageType = "transcript"
	ServerAction     ServerMessageType = "action"
	ServerQuiz       ServerMessageType = "quiz"
	ServerPlayback   ServerMessageType = "playback"
	ServerError      ServerMessageType = "error"
)

type ServerMessage struct {
	Type       ServerMessageType   `json:"type"`
	Listening  *bool               `json:"listening,omitempty"`
	Transcript string              `json:"transcript,omitempty"`
	Command    *CommandResponse    `json:"command,omitempty"`
	Quiz       *QuizAnswerResponse `json:"quiz,omitempty"`
	Playback   interface{}         `json:"playback,omitempty"`
	Error      string              `json:"error,omitempty"`
}
