package chatService

import (
	"context"
	"errors"
	"strings"
	"time"

	"Edunabha/internal/api/chat"
	chatRepository "Edunabha/internal/api/chat/repository"
	"Edunabha/internal/api/voice"
	"Edunabha/internal/entity"
	"Edunabha/pkg/answer"
	contextPkg "Edunabha/pkg/context"

	"github.com/sirupsen/logrus"
)

type IChatService interface {
	Ask(ctx context.Context, studentID, sessionID string, req chat.AskRequest) (*chat.AskResponse, error)
	Messages(ctx context.Context, studentID, sessionID string) (*chat.MessagesResponse, error)
	Clear(ctx context.Context, studentID, sessionID string) error
}

// Sessions resolves the navigation session a conversation belongs to.
type Sessions interface {
	GetSession(ctx context.Context, studentID, sessionID string) (*voice.SessionResponse, error)
}

type chatService struct {
	log      *logrus.Logger
	chatRepo chatRepository.Repository
	resolver answer.IResolver
	sessions Sessions
	now      func() time.Time
}

type Option func(*chatService)

// WithSessions ties every conversation to a live navigation session of the
// same id; a conversation outlives neither.
func WithSessions(sessions Sessions) Option {
	return func(s *chatService) {
		s.sessions = sessions
	}
}

func New(log *logrus.Logger, chatRepo chatRepository.Repository, resolver answer.IResolver, opts ...Option) IChatService {
	s := &chatService{
		log:      log,
		chatRepo: chatRepo,
		resolver: resolver,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func conversationKey(studentID, sessionID string) string {
	return studentID + ":" + sessionID
}

// checkSession fails when the navigation session is gone and drops any
// history still kept for it.
func (s *chatService) checkSession(ctx context.Context, studentID, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return chat.ErrInvalidSession
	}
	if s.sessions == nil {
		return nil
	}

	_, err := s.sessions.GetSession(ctx, studentID, sessionID)
	if errors.Is(err, voice.ErrSessionNotFound) {
		if clearErr := s.chatRepo.Clear(ctx, conversationKey(studentID, sessionID)); clearErr != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": contextPkg.GetRequestID(ctx),
				"session_id": sessionID,
				"error":      clearErr.Error(),
			}).Warn("Failed to drop conversation of ended session")
		}
	}
	return err
}

// Ask records the question, answers it and records the answer. It never
// fails because of the remote service; a local answer is used instead.
func (s *chatService) Ask(ctx context.Context, studentID, sessionID string, req chat.AskRequest) (*chat.AskResponse, error) {
	if err := s.checkSession(ctx, studentID, sessionID); err != nil {
		return nil, err
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, chat.ErrEmptyQuestion
	}

	key := conversationKey(studentID, sessionID)
	if err := s.chatRepo.Append(ctx, key, entity.ChatMessage{
		Role:      entity.ChatRoleUser,
		Text:      question,
		CreatedAt: s.now(),
	}); err != nil {
		return nil, err
	}

	online := req.Connectivity()
	result := s.resolver.Resolve(ctx, question, online, s.resolver.RemoteConfigured())

	if err := s.chatRepo.Append(ctx, key, entity.ChatMessage{
		Role:       entity.ChatRoleAssistant,
		Text:       result.Answer,
		Provenance: string(result.Provenance),
		CreatedAt:  s.now(),
	}); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"session_id": sessionID,
		"online":     online,
		"provenance": result.Provenance,
	}).Debug("Question answered")

	return &chat.AskResponse{
		Answer:     result.Answer,
		Provenance: string(result.Provenance),
		Online:     online,
	}, nil
}

// Messages lists the conversation, always opening with the greeting.
func (s *chatService) Messages(ctx context.Context, studentID, sessionID string) (*chat.MessagesResponse, error) {
	if err := s.checkSession(ctx, studentID, sessionID); err != nil {
		return nil, err
	}

	history, err := s.chatRepo.List(ctx, conversationKey(studentID, sessionID))
	if err != nil {
		return nil, err
	}

	greetingAt := s.now()
	if len(history) > 0 {
		greetingAt = history[0].CreatedAt
	}

	messages := make([]entity.ChatMessage, 0, len(history)+1)
	messages = append(messages, entity.ChatMessage{
		Role:      entity.ChatRoleAssistant,
		Text:      chat.Greeting,
		CreatedAt: greetingAt,
	})
	messages = append(messages, history...)

	return &chat.MessagesResponse{Messages: messages}, nil
}

// Clear forgets a conversation. It does not require the session to exist,
// so it also serves as the end-of-session cleanup.
func (s *chatService) Clear(ctx context.Context, studentID, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return chat.ErrInvalidSession
	}
	return s.chatRepo.Clear(ctx, conversationKey(studentID, sessionID))
}
