package chatHandler

import (
	chatService "Edunabha/internal/api/chat/service"
	"Edunabha/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ChatHandler struct {
	log         *logrus.Logger
	validator   *validator.Validate
	middleware  middleware.Middleware
	chatService chatService.IChatService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	cs chatService.IChatService,
) *ChatHandler {
	return &ChatHandler{
		log:         log,
		validator:   validate,
		middleware:  middleware,
		chatService: cs,
	}
}

func (h *ChatHandler) Start(srv fiber.Router) {
	chat := srv.Group("/chat")
	chat.Use(h.middleware.NewTokenMiddleware, h.middleware.NewStudentOnly)

	sessions := chat.Group("/sessions")
	sessions.Post("/:id/messages", h.Ask)
	sessions.Get("/:id/messages", h.Messages)
	sessions.Delete("/:id", h.Clear)
}
