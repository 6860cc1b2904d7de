package voice

import "Edunabha/pkg/response"

var (
	ErrSessionNotFound    = response.NewError(404, "navigation session not found")
	ErrSessionForbidden   = response.NewError(403, "navigation session belongs to another student")
	ErrInvalidAudioFile   = response.NewError(400, "invalid audio file")
	ErrRecognitionFailed  = response.NewError(422, "voice recognition error, please try again")
	ErrSpeechUnavailable  = response.NewError(503, "speech recognition is not configured")
	ErrNoActiveQuiz       = response.NewError(409, "no quiz question is awaiting an answer")
	ErrAlreadyAnswered    = response.NewError(409, "quiz question already answered")
	ErrInvalidContext     = response.NewError(400, "invalid navigation context")
	ErrCatalogUnavailable = response.NewError(503, "course catalog unavailable")
)
