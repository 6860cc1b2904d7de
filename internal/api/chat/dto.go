package chat

import "Edunabha/internal/entity"

const Greeting = "Hello! Ask me a question about your subjects."

// AskRequest carries the client's own connectivity reading. Online is
// assumed when omitted.
type AskRequest struct {
	Question string `json:"question" validate:"required,max=2000"`
	Online   *bool  `json:"online,omitempty"`
}

func (r AskRequest) Connectivity() bool {
	return r.Online == nil || *r.Online
}

type AskResponse struct {
	Answer     string `json:"answer"`
	Provenance string `json:"provenance"`
	Online     bool   `json:"online"`
}

type MessagesResponse struct {
	Messages []entity.ChatMessage `json:"messages"`
}
