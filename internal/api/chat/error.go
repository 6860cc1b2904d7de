package chat

import "Edunabha/pkg/response"

var (
	ErrEmptyQuestion  = response.NewError(400, "question must not be empty")
	ErrInvalidSession = response.NewError(400, "invalid conversation id")
)
