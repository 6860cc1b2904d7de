package voiceHandler

import (
	voiceService "Edunabha/internal/api/voice/service"
	"Edunabha/internal/middleware"
	"Edunabha/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type VoiceHandler struct {
	log          *logrus.Logger
	validator    *validator.Validate
	middleware   middleware.Middleware
	voiceService voiceService.IVoiceService
	utils        utils.IUtils
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	vs voiceService.IVoiceService,
	utils utils.IUtils,
) *VoiceHandler {
	return &VoiceHandler{
		log:          log,
		validator:    validate,
		middleware:   middleware,
		voiceService: vs,
		utils:        utils,
	}
}

func (h *VoiceHandler) Start(srv fiber.Router) {
	voice := srv.Group("/voice")
	voice.Use(h.middleware.NewTokenMiddleware, h.middleware.NewStudentOnly)

	voice.Post("/interpret", h.Interpret)

	sessions := voice.Group("/sessions")
	sessions.Post("", h.CreateSession)
	sessions.Get("/:id", h.GetSession)
	sessions.Delete("/:id", h.DeleteSession)
	sessions.Post("/:id/transcript", h.HandleTranscript)
	sessions.Post("/:id/command", h.HandleCommand)
	sessions.Post("/:id/quiz/answer", h.AnswerQuiz)

	voice.Use("/ws", h.upgradeMiddleware)
	voice.Get("/ws", websocket.New(h.handleLiveSocket))
}
