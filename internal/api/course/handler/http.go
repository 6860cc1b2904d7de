package courseHandler

import (
	courseService "Edunabha/internal/api/course/service"
	"Edunabha/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type CourseHandler struct {
	log           *logrus.Logger
	middleware    middleware.Middleware
	courseService courseService.ICourseService
}

func New(
	log *logrus.Logger,
	middleware middleware.Middleware,
	cs courseService.ICourseService,
) *CourseHandler {
	return &CourseHandler{
		log:           log,
		middleware:    middleware,
		courseService: cs,
	}
}

func (h *CourseHandler) Start(srv fiber.Router) {
	courses := srv.Group("/courses")
	courses.Use(h.middleware.NewTokenMiddleware, h.middleware.NewStudentOnly)

	courses.Get("", h.ListCourses)
	courses.Get("/badges", h.ListBadges)
	courses.Get("/:id/lessons", h.ListLessons)
}
