package handlerUtil

import (
	"errors"

	"Edunabha/internal/api/auth"
	"Edunabha/internal/api/chat"
	"Edunabha/internal/api/course"
	"Edunabha/internal/api/voice"
	"Edunabha/pkg/log"
	"Edunabha/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

// errorCodes gives clients a stable identifier for the domain errors they
// are expected to branch on.
var errorCodes = []struct {
	err  error
	code string
}{
	{voice.ErrSessionNotFound, "SESSION_NOT_FOUND"},
	{voice.ErrSessionForbidden, "SESSION_FORBIDDEN"},
	{voice.ErrInvalidAudioFile, "INVALID_AUDIO_FILE"},
	{voice.ErrRecognitionFailed, "RECOGNITION_FAILED"},
	{voice.ErrSpeechUnavailable, "SPEECH_UNAVAILABLE"},
	{voice.ErrNoActiveQuiz, "NO_ACTIVE_QUIZ"},
	{voice.ErrAlreadyAnswered, "ALREADY_ANSWERED"},
	{voice.ErrInvalidContext, "INVALID_CONTEXT"},
	{voice.ErrCatalogUnavailable, "CATALOG_UNAVAILABLE"},
	{course.ErrCourseNotFound, "COURSE_NOT_FOUND"},
	{course.ErrLessonNotFound, "LESSON_NOT_FOUND"},
	{course.ErrInvalidQuizResult, "INVALID_QUIZ_RESULT"},
	{course.ErrCatalogUnavailable, "CATALOG_UNAVAILABLE"},
	{chat.ErrEmptyQuestion, "EMPTY_QUESTION"},
	{chat.ErrInvalidSession, "INVALID_CONVERSATION"},
	{auth.ErrEmailAlreadyExists, "EMAIL_ALREADY_EXISTS"},
	{auth.ErrInvalidEmailOrPassword, "INVALID_CREDENTIALS"},
	{auth.ErrUserNotFound, "USER_NOT_FOUND"},
}

func codeFor(err error) string {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return ""
}

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	var respErr *response.Error
	if errors.As(err, &respErr) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"code":       respErr.Code,
			"path":       path,
			"operation":  operation,
		}).Warn("Operation failed with error response")
		return c.Status(respErr.Code).JSON(ErrorResponse{
			Error: respErr.Error(),
			Code:  codeFor(err),
		})
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return h.HandleValidationError(c, requestID, err, path)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(ErrorResponse{Error: fiberErr.Message})
	}

	traceID := log.ErrorWithTraceID(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
		"operation":  operation,
	}, "Unhandled error")

	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   utils.StatusMessage(fiber.StatusInternalServerError),
		Code:    "INTERNAL_ERROR",
		TraceID: traceID,
	})
}

func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, err error, path string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
	}).Warn("Validation failed")

	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error: "Validation failed: " + err.Error(),
		Code:  "VALIDATION_ERROR",
	})
}

func (h *ErrorHandler) HandleRequestTimeout(c *fiber.Ctx) error {
	return c.Status(fiber.StatusRequestTimeout).JSON(ErrorResponse{
		Error: utils.StatusMessage(fiber.StatusRequestTimeout),
		Code:  "REQUEST_TIMEOUT",
	})
}

func (h *ErrorHandler) HandleUnauthorized(c *fiber.Ctx, requestID string, message string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"path":       c.Path(),
		"message":    message,
	}).Warn("Unauthorized access")

	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Error: message,
		Code:  "UNAUTHORIZED",
	})
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}
