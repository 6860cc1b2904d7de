package courseRepository

import (
	"context"

	"Edunabha/internal/entity"
	contextPkg "Edunabha/pkg/context"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

func (r *progressRepository) exec(ctx context.Context, op, namedQuery string, arg interface{}) (int64, error) {
	requestID := contextPkg.GetRequestID(ctx)

	query, args, err := sqlx.Named(namedQuery, arg)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Errorf("%s named query preparation err", op)
		return 0, err
	}

	res, err := r.q.ExecContext(ctx, r.q.Rebind(query), args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Errorf("Database error in %s", op)
		return 0, err
	}

	return res.RowsAffected()
}

func (r *progressRepository) CreateQuizAttempt(ctx context.Context, attempt entity.QuizAttempt) error {
	_, err := r.exec(ctx, "CreateQuizAttempt", queryCreateQuizAttempt, attempt)
	return err
}

func (r *progressRepository) MarkLessonComplete(ctx context.Context, studentID, lessonID string) error {
	_, err := r.exec(ctx, "MarkLessonComplete", queryMarkLessonComplete, map[string]interface{}{
		"student_id": studentID,
		"lesson_id":  lessonID,
	})
	return err
}

func (r *progressRepository) CountCompletedLessons(ctx context.Context, studentID, courseID string) (int, error) {
	query, args, err := sqlx.Named(queryCountCompletedLessons, map[string]interface{}{
		"student_id": studentID,
		"course_id":  courseID,
	})
	if err != nil {
		return 0, err
	}

	var count int
	if err := r.q.GetContext(ctx, &count, r.q.Rebind(query), args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Error("Database error when counting completed lessons")
		return 0, err
	}

	return count, nil
}

// CreateBadge reports false when the student already holds the badge.
func (r *progressRepository) CreateBadge(ctx context.Context, badge entity.Badge) (bool, error) {
	affected, err := r.exec(ctx, "CreateBadge", queryCreateBadge, badge)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *progressRepository) ListBadges(ctx context.Context, studentID string) ([]entity.Badge, error) {
	query, args, err := sqlx.Named(queryListBadges, map[string]interface{}{"student_id": studentID})
	if err != nil {
		return nil, err
	}

	var badges []entity.Badge
	if err := r.q.SelectContext(ctx, &badges, r.q.Rebind(query), args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Error("Database error when listing badges")
		return nil, err
	}

	return badges, nil
}
