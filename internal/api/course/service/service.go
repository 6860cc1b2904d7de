package courseService

import (
	"context"

	"Edunabha/internal/api/course"
	courseRepository "Edunabha/internal/api/course/repository"
	"Edunabha/internal/entity"
	"Edunabha/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

type ICourseService interface {
	ListCourses(ctx context.Context, studentID string) ([]course.CourseResponse, error)
	ListLessons(ctx context.Context, courseID string) ([]course.LessonResponse, error)
	ListBadges(ctx context.Context, studentID string) ([]course.BadgeResponse, error)

	// Catalog lookups used by voice navigation.
	Courses(ctx context.Context) ([]entity.Course, error)
	Lessons(ctx context.Context, courseID string) ([]entity.Lesson, error)

	CompleteQuiz(ctx context.Context, req course.CompleteQuizRequest) (*course.CompleteQuizResponse, error)
}

type courseService struct {
	log        *logrus.Logger
	courseRepo courseRepository.Repository
	validator  *validator.Validate
	utils      utils.IUtils
}

func New(
	log *logrus.Logger,
	courseRepo courseRepository.Repository,
	validate *validator.Validate,
	utils utils.IUtils,
) ICourseService {
	return &courseService{
		log:        log,
		courseRepo: courseRepo,
		validator:  validate,
		utils:      utils,
	}
}
