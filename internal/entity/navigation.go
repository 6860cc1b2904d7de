package entity

import (
	"time"

	"Edunabha/pkg/navigation"
)

// NavigationSession is the voice navigation state of one dashboard visit.
type NavigationSession struct {
	ID        string             `json:"id"`
	StudentID string             `json:"student_id"`
	Context   navigation.Context `json:"context"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

type ChatMessage struct {
	Role       ChatRole  `json:"role"`
	Text       string    `json:"text"`
	Provenance string    `json:"provenance,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
