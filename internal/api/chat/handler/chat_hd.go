package chatHandler

import (
	"context"
	"time"

	"Edunabha/internal/api/chat"
	contextPkg "Edunabha/pkg/context"
	"Edunabha/pkg/handlerUtil"
	jwtPkg "Edunabha/pkg/jwt"
	"Edunabha/pkg/log"

	"github.com/gofiber/fiber/v2"
)

// Ask answers a question. The remote generator gets its own deadline inside
// the resolver, so this timeout only bounds a stuck request.
func (h *ChatHandler) Ask(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 60*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	student, err := jwtPkg.GetStudentLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	var req chat.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"online":     req.Connectivity(),
	}).Debug("Processing chat question")

	resp, err := h.chatService.Ask(c, student.ID, ctx.Params("id"), req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "ask")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, resp)
}

func (h *ChatHandler) Messages(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	student, err := jwtPkg.GetStudentLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	resp, err := h.chatService.Messages(contextPkg.FromFiberCtx(ctx), student.ID, ctx.Params("id"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "list_messages")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, resp)
}

func (h *ChatHandler) Clear(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	student, err := jwtPkg.GetStudentLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	if err := h.chatService.Clear(contextPkg.FromFiberCtx(ctx), student.ID, ctx.Params("id")); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "clear_conversation")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusNoContent, nil)
}
