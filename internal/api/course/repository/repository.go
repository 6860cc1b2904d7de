package courseRepository

import (
	"context"

	"Edunabha/internal/entity"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type SQLExecutor interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Rebind(query string) string
}

func New(db *sqlx.DB, log *logrus.Logger) Repository {
	return &repository{
		DB:  db,
		log: log,
	}
}

type repository struct {
	DB  *sqlx.DB
	log *logrus.Logger
}

type Repository interface {
	NewClient(ctx context.Context, tx bool) (Client, error)
}

func (r *repository) NewClient(ctx context.Context, tx bool) (Client, error) {
	var sqlExecutor SQLExecutor
	var commitFunc, rollbackFunc func() error

	sqlExecutor = r.DB

	if tx {
		txx, err := r.DB.BeginTxx(ctx, nil)
		if err != nil {
			return Client{}, err
		}

		sqlExecutor = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	} else {
		commitFunc = func() error { return nil }
		rollbackFunc = func() error { return nil }
	}

	return Client{
		Courses:  &courseRepository{q: sqlExecutor, log: r.log},
		Progress: &progressRepository{q: sqlExecutor, log: r.log},
		Commit:   commitFunc,
		Rollback: rollbackFunc,
	}, nil
}

type Client struct {
	Courses interface {
		ListCourses(ctx context.Context) ([]entity.Course, error)
		GetCourseByID(ctx context.Context, id string) (entity.Course, error)
		ListLessonsByCourse(ctx context.Context, courseID string) ([]entity.Lesson, error)
		CountLessonsByCourse(ctx context.Context, courseID string) (int, error)
	}

	Progress interface {
		CreateQuizAttempt(ctx context.Context, attempt entity.QuizAttempt) error
		MarkLessonComplete(ctx context.Context, studentID, lessonID string) error
		CountCompletedLessons(ctx context.Context, studentID, courseID string) (int, error)
		CreateBadge(ctx context.Context, badge entity.Badge) (bool, error)
		ListBadges(ctx context.Context, studentID string) ([]entity.Badge, error)
	}

	Commit   func() error
	Rollback func() error
}

type courseRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type progressRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}
