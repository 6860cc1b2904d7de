package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"Edunabha/database/postgres"
	authHandler "Edunabha/internal/api/auth/handler"
	authRepository "Edunabha/internal/api/auth/repository"
	authService "Edunabha/internal/api/auth/service"
	chatHandler "Edunabha/internal/api/chat/handler"
	chatRepository "Edunabha/internal/api/chat/repository"
	chatService "Edunabha/internal/api/chat/service"
	courseHandler "Edunabha/internal/api/course/handler"
	courseRepository "Edunabha/internal/api/course/repository"
	courseService "Edunabha/internal/api/course/service"
	voiceHandler "Edunabha/internal/api/voice/handler"
	voiceRepository "Edunabha/internal/api/voice/repository"
	voiceService "Edunabha/internal/api/voice/service"
	"Edunabha/internal/middleware"
	"Edunabha/pkg/answer"
	"Edunabha/pkg/audio"
	"Edunabha/pkg/bcrypt"
	"Edunabha/pkg/gcpspeech"
	"Edunabha/pkg/gemini"
	"Edunabha/pkg/knowledge"
	openaiPkg "Edunabha/pkg/openai"
	"Edunabha/pkg/redis"
	"Edunabha/pkg/s3"
	"Edunabha/pkg/speech"
	"Edunabha/pkg/utils"
	websocketPkg "Edunabha/pkg/websocket"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

const (
	providerNone    = "none"
	providerGemini  = "gemini"
	providerOpenAI  = "openai"
	providerWhisper = "whisper"
	providerGoogle  = "google"
	providerStream  = "stream"
)

type ServerOption func(*Server) error

type Server struct {
	engine      *fiber.App
	db          *sqlx.DB
	log         *logrus.Logger
	middleware  middleware.Middleware
	validator   *validator.Validate
	utils       utils.IUtils
	bcrypt      bcrypt.IBcrypt
	handlers    []handler
	redisServer redis.IRedis
	s3Client    s3.ItfS3
	generator   answer.Generator
	transcriber audio.Transcriber
	tts         audio.ITTS
	closers     []func() error
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		s.closers = append(s.closers, db.Close)
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		s.closers = append(s.closers, redisServer.Close)
		return nil
	}
}

// WithS3Client is optional: without AWS_BUCKET_NAME narration falls back to
// the browser's own speech synthesis.
func WithS3Client() ServerOption {
	return func(s *Server) error {
		if Env("AWS_BUCKET_NAME", "") == "" {
			s.log.Info("AWS_BUCKET_NAME not set, rendered narration disabled")
			return nil
		}
		client, err := s3.New()
		if err != nil {
			s.log.Errorf("Failed to initialize S3 client: %v", err)
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

func answerProvider() string {
	if p := strings.ToLower(Env("ANSWER_PROVIDER", "")); p != "" {
		return p
	}
	switch {
	case Env("GEMINI_API_KEY", "") != "":
		return providerGemini
	case Env("OPENAI_API_KEY", "") != "":
		return providerOpenAI
	default:
		return providerNone
	}
}

// WithGenerator picks the remote answer service. With none configured the
// chat answers from the offline knowledge base only.
func WithGenerator() ServerOption {
	return func(s *Server) error {
		switch p := answerProvider(); p {
		case providerGemini:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			client, err := gemini.NewGeminiClient(ctx)
			if err != nil {
				s.log.Errorf("Failed to create Gemini client: %v", err)
				return fmt.Errorf("failed to create Gemini client: %w", err)
			}
			s.generator = client
			s.closers = append(s.closers, client.Close)
		case providerOpenAI:
			s.generator = openaiPkg.NewChatGPT()
		case providerNone:
			s.log.Warn("No answer provider configured, chat will answer offline only")
		default:
			return fmt.Errorf("unknown ANSWER_PROVIDER %q", p)
		}
		return nil
	}
}

func sttProvider() string {
	if p := strings.ToLower(Env("STT_PROVIDER", "")); p != "" {
		return p
	}
	switch {
	case Env("OPENAI_API_KEY", "") != "":
		return providerWhisper
	case Env("GOOGLE_APPLICATION_CREDENTIALS", "") != "":
		return providerGoogle
	default:
		return providerNone
	}
}

// WithTranscriber picks the speech-to-text backend for recorded clips.
func WithTranscriber() ServerOption {
	return func(s *Server) error {
		language := Env("SPEECH_LANGUAGE", speech.DefaultLanguage)

		switch p := sttProvider(); p {
		case providerWhisper:
			s.transcriber = audio.NewWhisperTranscriber(openaiPkg.NewClient(), language)
		case providerGoogle:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			client, err := gcpspeech.New(ctx, language)
			if err != nil {
				s.log.Errorf("Failed to create Google Speech client: %v", err)
				return fmt.Errorf("failed to create speech client: %w", err)
			}
			s.transcriber = client
			s.closers = append(s.closers, client.Close)
		case providerStream:
			client := websocketPkg.NewStreamTranscriber(s.log, language)
			s.transcriber = client
			s.closers = append(s.closers, func() error {
				client.Close()
				return nil
			})
		case providerNone:
			s.log.Warn("No speech-to-text provider configured, audio commands disabled")
		default:
			return fmt.Errorf("unknown STT_PROVIDER %q", p)
		}
		return nil
	}
}

func WithTTS() ServerOption {
	return func(s *Server) error {
		apiKey := Env("ELEVENLABS_API_KEY", "")
		if apiKey == "" {
			return nil
		}
		s.tts = audio.NewTTSService(apiKey, Env("ELEVENLABS_VOICE_ID", ""))
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func WithBcryptUtils() ServerOption {
	return func(s *Server) error {
		s.bcrypt = bcrypt.NewWithCost(EnvInt("BCRYPT_COST", 10))
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Accounts
	authRepo := authRepository.New(s.db, s.log)
	authServices := authService.New(s.log, authRepo, s.bcrypt, s.utils,
		authService.WithTokenTTL(EnvDuration("ACCESS_TOKEN_TTL", 24*time.Hour)))
	authHandlers := authHandler.New(s.log, s.validator, s.middleware, authServices)

	// Course catalog and progress
	courseRepo := courseRepository.New(s.db, s.log)
	courseServices := courseService.New(s.log, courseRepo, s.validator, s.utils)
	courseHandlers := courseHandler.New(s.log, s.middleware, courseServices)

	// Voice navigation
	voiceOpts := []voiceService.Option{}
	if s.transcriber != nil {
		voiceOpts = append(voiceOpts, voiceService.WithTranscriber(s.transcriber))
	}
	if s.tts != nil && s.s3Client != nil {
		voiceOpts = append(voiceOpts, voiceService.WithNarration(s.tts, s.s3Client))
	}
	sessionTTL := EnvDuration("NAVIGATION_SESSION_TTL", 2*time.Hour)
	var chatServices chatService.IChatService
	voiceOpts = append(voiceOpts, voiceService.WithSessionEndHook(func(ctx context.Context, studentID, sessionID string) {
		if chatServices != nil {
			_ = chatServices.Clear(ctx, studentID, sessionID)
		}
	}))
	voiceRepo := voiceRepository.New(s.redisServer, s.log, sessionTTL)
	voiceServices := voiceService.NewVoiceService(s.log, voiceRepo, courseServices, s.utils, voiceOpts...)
	voiceHandlers := voiceHandler.New(s.log, s.validator, s.middleware, voiceServices, s.utils)

	// Chat
	resolver := answer.NewResolver(s.log, s.generator, knowledge.Default(),
		answer.WithTimeout(EnvDuration("ANSWER_TIMEOUT", 15*time.Second)))
	chatRepo := chatRepository.New(EnvInt("CHAT_HISTORY_LIMIT", 100), sessionTTL)
	chatServices = chatService.New(s.log, chatRepo, resolver, chatService.WithSessions(voiceServices))
	chatHandlers := chatHandler.New(s.log, s.validator, s.middleware, chatServices)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, authHandlers, courseHandlers, voiceHandlers, chatHandlers)
}

// Run blocks serving HTTP until Shutdown is called or the listener fails.
func (s *Server) Run() error {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware())
	s.engine.Use(s.middleware.NewRateLimiter)

	router := s.engine.Group("/api/v1")
	for _, h := range s.handlers {
		h.Start(router)
	}

	port := Env("APP_PORT", "3000")
	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

// Shutdown stops accepting requests, waits for in-flight ones up to ctx and
// then releases every client the options opened.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if err := s.engine.ShutdownWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http: %w", err))
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})

	s.engine.Get("/health", func(ctx *fiber.Ctx) error {
		c, cancel := context.WithTimeout(ctx.UserContext(), 3*time.Second)
		defer cancel()

		status := fiber.Map{"database": "ok", "redis": "ok"}
		code := fiber.StatusOK
		if s.db != nil {
			if err := s.db.PingContext(c); err != nil {
				status["database"] = err.Error()
				code = fiber.StatusServiceUnavailable
			}
		}
		if s.redisServer != nil {
			if err := s.redisServer.Ping(c); err != nil {
				status["redis"] = err.Error()
				code = fiber.StatusServiceUnavailable
			}
		}
		return ctx.Status(code).JSON(status)
	})
}
