package courseRepository

import (
	"context"
	"database/sql"
	"errors"

	"Edunabha/internal/api/course"
	"Edunabha/internal/entity"
	contextPkg "Edunabha/pkg/context"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

func (r *courseRepository) ListCourses(ctx context.Context) ([]entity.Course, error) {
	var courses []entity.Course
	if err := r.q.SelectContext(ctx, &courses, queryListCourses); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Error("Database error when listing courses")
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) GetCourseByID(ctx context.Context, id string) (entity.Course, error) {
	requestID := contextPkg.GetRequestID(ctx)

	query, args, err := sqlx.Named(queryGetCourseByID, map[string]interface{}{"id": id})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetCourseByID named query preparation err")
		return entity.Course{}, err
	}

	var c entity.Course
	if err := r.q.GetContext(ctx, &c, r.q.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Course{}, course.ErrCourseNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"course_id":  id,
			"error":      err.Error(),
		}).Error("Database error when getting course")
		return entity.Course{}, err
	}

	return c, nil
}

func (r *courseRepository) ListLessonsByCourse(ctx context.Context, courseID string) ([]entity.Lesson, error) {
	requestID := contextPkg.GetRequestID(ctx)

	query, args, err := sqlx.Named(queryListLessonsByCourse, map[string]interface{}{"course_id": courseID})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListLessonsByCourse named query preparation err")
		return nil, err
	}

	var lessons []entity.Lesson
	if err := r.q.SelectContext(ctx, &lessons, r.q.Rebind(query), args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"course_id":  courseID,
			"error":      err.Error(),
		}).Error("Database error when listing lessons")
		return nil, err
	}

	return lessons, nil
}

func (r *courseRepository) CountLessonsByCourse(ctx context.Context, courseID string) (int, error) {
	query, args, err := sqlx.Named(queryCountLessonsByCourse, map[string]interface{}{"course_id": courseID})
	if err != nil {
		return 0, err
	}

	var count int
	if err := r.q.GetContext(ctx, &count, r.q.Rebind(query), args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"course_id":  courseID,
			"error":      err.Error(),
		}).Error("Database error when counting lessons")
		return 0, err
	}

	return count, nil
}
