package course

import "Edunabha/pkg/response"

var (
	ErrCourseNotFound     = response.NewError(404, "course not found")
	ErrLessonNotFound     = response.NewError(404, "lesson not found")
	ErrInvalidQuizResult  = response.NewError(400, "invalid quiz result")
	ErrCatalogUnavailable = response.NewError(503, "course catalog unavailable")
)
