package voiceService

import (
	"context"
	"errors"
	"fmt"

	"Edunabha/internal/api/course"
	"Edunabha/internal/api/voice"
	"Edunabha/internal/entity"
	"Edunabha/pkg/audio"
	contextPkg "Edunabha/pkg/context"
	"Edunabha/pkg/navigation"
	"Edunabha/pkg/speech"

	"github.com/sirupsen/logrus"
)

func (s *voiceService) Interpret(ctx context.Context, req voice.InterpretRequest) (*voice.InterpretResponse, error) {
	if err := req.Context.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", voice.ErrInvalidContext, err)
	}

	transcript := speech.Normalize(req.Transcript)
	return &voice.InterpretResponse{
		Transcript: transcript,
		Action:     navigation.Interpret(transcript, req.Context),
	}, nil
}

func (s *voiceService) Navigate(ctx context.Context, studentID, sessionID, transcript string) (*voice.CommandResponse, error) {
	release, err := s.locks.acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	session, err := s.load(ctx, studentID, sessionID)
	if err != nil {
		return nil, err
	}

	log := s.log.WithFields(logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"session_id": sessionID,
	})

	transcript = speech.Normalize(transcript)
	action := navigation.Interpret(transcript, session.Context)
	next, outcome := navigation.Apply(session.Context, action)

	if action.Kind == navigation.ActionNoOp {
		log.WithField("transcript", transcript).Debug("Transcript matched no command")
	}

	if outcome.LoadCourse != nil {
		next, err = s.selectCourse(ctx, next, *outcome.LoadCourse)
		if err != nil {
			return nil, err
		}
	}

	resp := &voice.CommandResponse{
		Transcript: transcript,
		Action:     action,
		Outcome:    outcome,
	}

	if outcome.QuizFinished {
		resp.Quiz = s.recordQuiz(ctx, studentID, next)
	}

	if outcome.EndSession {
		if err := s.voiceRepo.Delete(ctx, sessionID); err != nil && !isNotFound(err) {
			return nil, err
		}
		s.ended(ctx, studentID, sessionID)
		resp.Ended = true
		log.Info("Navigation session ended by voice command")
		return resp, nil
	}

	session, err = s.save(ctx, session, next)
	if err != nil {
		return nil, err
	}
	resp.Context = &session.Context

	log.WithField("action", action.String()).Info("Voice command applied")
	return resp, nil
}

func (s *voiceService) selectCourse(ctx context.Context, current navigation.Context, ref navigation.CourseRef) (navigation.Context, error) {
	lessons, err := s.catalog.Lessons(ctx, ref.ID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"course_id":  ref.ID,
			"error":      err.Error(),
		}).Error("Failed to load lessons for course")
		return current, fmt.Errorf("%w: %v", voice.ErrCatalogUnavailable, err)
	}

	refs := make([]navigation.LessonRef, 0, len(lessons))
	for _, l := range lessons {
		refs = append(refs, l.Ref())
	}
	return current.SelectCourse(ref, refs), nil
}

// recordQuiz stores a finished quiz. A failure is logged and the command
// still succeeds; the student has already seen their score.
func (s *voiceService) recordQuiz(ctx context.Context, studentID string, next navigation.Context) *course.CompleteQuizResponse {
	if next.CurrentCourse == nil || next.CurrentLesson == nil {
		return nil
	}

	result, err := s.catalog.CompleteQuiz(ctx, course.CompleteQuizRequest{
		StudentID: studentID,
		CourseID:  next.CurrentCourse.ID,
		LessonID:  next.CurrentLesson.ID,
		Score:     next.Quiz.Score,
		Total:     len(next.CurrentLesson.Quiz),
	})
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"lesson_id":  next.CurrentLesson.ID,
			"error":      err.Error(),
		}).Error("Failed to record quiz attempt")
		return nil
	}
	return result
}

func (s *voiceService) HandleTranscript(ctx context.Context, studentID, sessionID, transcript string) (*voice.CommandResponse, error) {
	resp, err := s.Navigate(ctx, studentID, sessionID, transcript)
	if err != nil {
		return nil, err
	}

	if resp.Outcome.ReadAloud != "" && s.tts != nil && s.storage != nil {
		url, err := s.renderNarration(ctx, sessionID, resp.Outcome.ReadAloud)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": contextPkg.GetRequestID(ctx),
				"session_id": sessionID,
				"error":      err.Error(),
			}).Warn("Narration rendering failed, client will read the text itself")
		} else {
			resp.AudioURL = url
		}
	}
	return resp, nil
}

func (s *voiceService) renderNarration(ctx context.Context, sessionID, text string) (string, error) {
	data, err := s.tts.GenerateAudio(ctx, text)
	if err != nil {
		return "", err
	}
	id, err := s.utils.NewULIDFromTimestamp(s.now())
	if err != nil {
		return "", err
	}
	return s.storage.UploadAudio(ctx, "narration/"+sessionID+"/"+id+".mp3", data, "audio/mpeg")
}

// HandleAudio runs one recognition cycle over an uploaded clip and applies
// the resulting transcript.
func (s *voiceService) HandleAudio(ctx context.Context, studentID, sessionID string, clip audio.Clip) (*voice.CommandResponse, error) {
	if _, err := s.load(ctx, studentID, sessionID); err != nil {
		return nil, err
	}

	recognizer, err := s.NewRecognizer()
	if err != nil {
		return nil, err
	}
	recognizer.Open()
	if !recognizer.Feed(clip) {
		return nil, voice.ErrRecognitionFailed
	}

	captureCtx, cancel := context.WithTimeout(ctx, s.captureWait)
	defer cancel()

	listener := speech.NewSession(s.log, recognizer)
	defer listener.Close()

	result := listener.Listen(captureCtx)
	if !result.OK() {
		return nil, recognitionError(result.Err)
	}

	return s.HandleTranscript(ctx, studentID, sessionID, result.Transcript)
}

func recognitionError(err error) error {
	if errors.Is(err, speech.ErrNoSpeech) || errors.Is(err, audio.ErrEmptyClip) {
		return voice.ErrRecognitionFailed
	}
	return fmt.Errorf("%w: %v", voice.ErrRecognitionFailed, err)
}

func (s *voiceService) NewRecognizer() (*audio.ClipRecognizer, error) {
	if s.transcriber == nil {
		return nil, voice.ErrSpeechUnavailable
	}
	return audio.NewClipRecognizer(s.transcriber), nil
}

func (s *voiceService) NewNarrator(send audio.Sink) *audio.Narrator {
	return audio.NewNarrator(s.log, s.tts, s.storage, send)
}

func (s *voiceService) AnswerQuiz(ctx context.Context, studentID, sessionID, answer string) (*voice.QuizAnswerResponse, error) {
	release, err := s.locks.acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	session, err := s.load(ctx, studentID, sessionID)
	if err != nil {
		return nil, err
	}

	next, correct, err := session.Context.AnswerQuiz(answer)
	switch {
	case errors.Is(err, navigation.ErrNoActiveQuiz):
		return nil, voice.ErrNoActiveQuiz
	case errors.Is(err, navigation.ErrAlreadyAnswered):
		return nil, voice.ErrAlreadyAnswered
	case err != nil:
		return nil, err
	}

	var saved entity.NavigationSession
	if saved, err = s.save(ctx, session, next); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"session_id": sessionID,
		"correct":    correct,
	}).Info("Quiz answer recorded")

	return &voice.QuizAnswerResponse{Correct: correct, Context: saved.Context}, nil
}
