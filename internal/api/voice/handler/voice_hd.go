package voiceHandler

import (
	"context"
	"errors"
	"io"
	"time"

	"Edunabha/internal/api/voice"
	"Edunabha/pkg/audio"
	contextPkg "Edunabha/pkg/context"
	"Edunabha/pkg/handlerUtil"
	jwtPkg "Edunabha/pkg/jwt"
	"Edunabha/pkg/log"

	"github.com/gofiber/fiber/v2"
)

func (h *VoiceHandler) CreateSession(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	student, err := jwtPkg.GetStudentLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	session, err := h.voiceService.CreateSession(c, student.ID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "create_session")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, session)
	}
}

func (h *VoiceHandler) GetSession(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 5*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	student, err := jwtPkg.GetStudentLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	session, err := h.voiceService.GetSession(c, student.ID, ctx.Params("id"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_session")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, session)
}

func (h *VoiceHandler) DeleteSession(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 5*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	student, err := jwtPkg.GetStudentLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	if err := h.voiceService.DeleteSession(c, student.ID, ctx.Params("id")); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "delete_session")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusNoContent, nil)
}

func (h *VoiceHandler) Interpret(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	var req voice.InterpretRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	resp, err := h.voiceService.Interpret(contextPkg.FromFiberCtx(ctx), req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "interpret")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, resp)
}

func (h *VoiceHandler) HandleTranscript(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	student, err := jwtPkg.GetStudentLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	var req voice.TranscriptRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	resp, err := h.voiceService.HandleTranscript(c, student.ID, ctx.Params("id"), req.Transcript)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "handle_transcript")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, resp)
	}
}

// HandleCommand accepts a recorded clip in the "audio" form field.
func (h *VoiceHandler) HandleCommand(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	student, err := jwtPkg.GetStudentLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	file, err := ctx.FormFile("audio")
	if err != nil {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("audio file is required"), ctx.Path())
	}
	if err := h.utils.ValidateAudioFile(file); err != nil {
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"file_size":  file.Size,
			"error":      err.Error(),
		}).Debug("Rejected audio upload")
		return errHandler.Handle(ctx, requestID, voice.ErrInvalidAudioFile, ctx.Path(), "validate_audio_file")
	}

	f, err := file.Open()
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "open_file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_file")
	}

	clip := audio.Clip{Data: data, MimeType: file.Header.Get(fiber.HeaderContentType)}
	resp, err := h.voiceService.HandleAudio(c, student.ID, ctx.Params("id"), clip)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "handle_audio")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, resp)
	}
}

func (h *VoiceHandler) AnswerQuiz(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	student, err := jwtPkg.GetStudentLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	var req voice.QuizAnswerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	resp, err := h.voiceService.AnswerQuiz(c, student.ID, ctx.Params("id"), req.Answer)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "answer_quiz")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, resp)
}
