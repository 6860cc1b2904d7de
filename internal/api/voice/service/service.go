package voiceService

import (
	"context"
	"time"

	"Edunabha/internal/api/course"
	voiceRepository "Edunabha/internal/api/voice/repository"
	"Edunabha/internal/api/voice"
	"Edunabha/internal/entity"
	"Edunabha/pkg/audio"
	"Edunabha/pkg/utils"

	"github.com/sirupsen/logrus"
)

type IVoiceService interface {
	CreateSession(ctx context.Context, studentID string) (*voice.SessionResponse, error)
	GetSession(ctx context.Context, studentID, sessionID string) (*voice.SessionResponse, error)
	DeleteSession(ctx context.Context, studentID, sessionID string) error

	Interpret(ctx context.Context, req voice.InterpretRequest) (*voice.InterpretResponse, error)

	// Navigate interprets and applies a transcript to the stored session.
	Navigate(ctx context.Context, studentID, sessionID, transcript string) (*voice.CommandResponse, error)
	// HandleTranscript is Navigate plus rendered narration for clients that
	// play audio from a URL.
	HandleTranscript(ctx context.Context, studentID, sessionID, transcript string) (*voice.CommandResponse, error)
	HandleAudio(ctx context.Context, studentID, sessionID string, clip audio.Clip) (*voice.CommandResponse, error)
	AnswerQuiz(ctx context.Context, studentID, sessionID, answer string) (*voice.QuizAnswerResponse, error)

	NewRecognizer() (*audio.ClipRecognizer, error)
	// NewNarrator returns a synthesizer that speaks through the browser
	// behind send, rendering audio first when narration is configured.
	NewNarrator(send audio.Sink) *audio.Narrator
}

// Catalog is the read side of courses plus quiz completion.
type Catalog interface {
	Courses(ctx context.Context) ([]entity.Course, error)
	Lessons(ctx context.Context, courseID string) ([]entity.Lesson, error)
	CompleteQuiz(ctx context.Context, req course.CompleteQuizRequest) (*course.CompleteQuizResponse, error)
}

type voiceService struct {
	log         *logrus.Logger
	voiceRepo   voiceRepository.Repository
	catalog     Catalog
	transcriber audio.Transcriber
	tts         audio.ITTS
	storage     audio.Storage
	utils       utils.IUtils
	captureWait time.Duration
	now         func() time.Time
	locks       *sessionLocks
	onEnd       []SessionEndFunc
}

// SessionEndFunc is told about a session that was deleted or ended by a
// logout command.
type SessionEndFunc func(ctx context.Context, studentID, sessionID string)

type Option func(*voiceService)

// WithSessionEndHook registers fn to run after a session is removed.
func WithSessionEndHook(fn SessionEndFunc) Option {
	return func(s *voiceService) {
		s.onEnd = append(s.onEnd, fn)
	}
}

// WithTranscriber enables audio commands.
func WithTranscriber(t audio.Transcriber) Option {
	return func(s *voiceService) {
		s.transcriber = t
	}
}

// WithNarration renders read-aloud text to audio stored in storage.
func WithNarration(tts audio.ITTS, storage audio.Storage) Option {
	return func(s *voiceService) {
		s.tts = tts
		s.storage = storage
	}
}

func WithCaptureTimeout(d time.Duration) Option {
	return func(s *voiceService) {
		s.captureWait = d
	}
}

func NewVoiceService(
	log *logrus.Logger,
	voiceRepo voiceRepository.Repository,
	catalog Catalog,
	utils utils.IUtils,
	opts ...Option,
) IVoiceService {
	s := &voiceService{
		log:         log,
		voiceRepo:   voiceRepo,
		catalog:     catalog,
		utils:       utils,
		captureWait: 30 * time.Second,
		now:         time.Now,
		locks:       newSessionLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
