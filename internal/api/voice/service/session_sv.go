package voiceService

import (
	"context"
	"errors"
	"fmt"

	"Edunabha/internal/api/voice"
	"Edunabha/internal/entity"
	contextPkg "Edunabha/pkg/context"
	"Edunabha/pkg/navigation"

	"github.com/sirupsen/logrus"
)

// CreateSession starts navigation on the root screen with the course list
// loaded.
func (s *voiceService) CreateSession(ctx context.Context, studentID string) (*voice.SessionResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	courses, err := s.catalog.Courses(ctx)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to load courses for navigation session")
		return nil, fmt.Errorf("%w: %v", voice.ErrCatalogUnavailable, err)
	}

	refs := make([]navigation.CourseRef, 0, len(courses))
	for _, c := range courses {
		refs = append(refs, c.Ref())
	}

	now := s.now()
	id, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		return nil, err
	}

	session := entity.NavigationSession{
		ID:        id,
		StudentID: studentID,
		Context:   navigation.NewContext(refs),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.voiceRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"session_id": id,
		"courses":    len(refs),
	}).Info("Navigation session created")

	return toSessionResponse(session), nil
}

func (s *voiceService) GetSession(ctx context.Context, studentID, sessionID string) (*voice.SessionResponse, error) {
	session, err := s.load(ctx, studentID, sessionID)
	if err != nil {
		return nil, err
	}
	return toSessionResponse(session), nil
}

func (s *voiceService) DeleteSession(ctx context.Context, studentID, sessionID string) error {
	release, err := s.locks.acquire(ctx, sessionID)
	if err != nil {
		return err
	}
	defer release()

	if _, err := s.load(ctx, studentID, sessionID); err != nil {
		return err
	}
	if err := s.voiceRepo.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.ended(ctx, studentID, sessionID)
	return nil
}

func (s *voiceService) ended(ctx context.Context, studentID, sessionID string) {
	for _, fn := range s.onEnd {
		fn(ctx, studentID, sessionID)
	}
}

func (s *voiceService) load(ctx context.Context, studentID, sessionID string) (entity.NavigationSession, error) {
	session, err := s.voiceRepo.Get(ctx, sessionID)
	if err != nil {
		return entity.NavigationSession{}, err
	}
	if session.StudentID != studentID {
		return entity.NavigationSession{}, voice.ErrSessionForbidden
	}
	return session, nil
}

func (s *voiceService) save(ctx context.Context, session entity.NavigationSession, next navigation.Context) (entity.NavigationSession, error) {
	session.Context = next
	session.UpdatedAt = s.now()
	if err := s.voiceRepo.Save(ctx, session); err != nil {
		return entity.NavigationSession{}, err
	}
	return session, nil
}

func toSessionResponse(session entity.NavigationSession) *voice.SessionResponse {
	return &voice.SessionResponse{
		ID:        session.ID,
		Context:   session.Context,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, voice.ErrSessionNotFound)
}
