package courseService

import (
	"context"
	"time"

	"Edunabha/internal/api/course"
	"Edunabha/internal/entity"
	contextPkg "Edunabha/pkg/context"

	"github.com/sirupsen/logrus"
)

// CompleteQuiz records the attempt, marks the lesson complete and awards
// the course badge once every lesson of the course is complete. A badge is
// only returned the first time it is earned.
func (s *courseService) CompleteQuiz(ctx context.Context, req course.CompleteQuizRequest) (*course.CompleteQuizResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if err := s.validator.Struct(req); err != nil {
		return nil, course.ErrInvalidQuizResult
	}

	now := time.Now()
	attemptID, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		return nil, err
	}

	client, err := s.courseRepo.NewClient(ctx, true)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to begin transaction")
		return nil, err
	}
	defer func() {
		if err != nil {
			if rbErr := client.Rollback(); rbErr != nil {
				s.log.WithFields(logrus.Fields{
					"request_id": requestID,
					"error":      rbErr.Error(),
				}).Error("Failed to rollback transaction")
			}
		}
	}()

	courseEntity, err := client.Courses.GetCourseByID(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}

	if err = client.Progress.CreateQuizAttempt(ctx, entity.QuizAttempt{
		ID:        attemptID,
		StudentID: req.StudentID,
		LessonID:  req.LessonID,
		Score:     req.Score,
		Total:     req.Total,
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}

	if err = client.Progress.MarkLessonComplete(ctx, req.StudentID, req.LessonID); err != nil {
		return nil, err
	}

	total, err := client.Courses.CountLessonsByCourse(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	completed, err := client.Progress.CountCompletedLessons(ctx, req.StudentID, req.CourseID)
	if err != nil {
		return nil, err
	}

	resp := &course.CompleteQuizResponse{
		AttemptID:       attemptID,
		Score:           req.Score,
		Total:           req.Total,
		CourseCompleted: total > 0 && completed >= total,
	}

	if resp.CourseCompleted {
		var badgeID string
		badgeID, err = s.utils.NewULIDFromTimestamp(now)
		if err != nil {
			return nil, err
		}

		badge := entity.Badge{
			ID:        badgeID,
			StudentID: req.StudentID,
			CourseID:  req.CourseID,
			Name:      courseEntity.Name + " Master",
			AwardedAt: now,
		}

		var created bool
		created, err = client.Progress.CreateBadge(ctx, badge)
		if err != nil {
			return nil, err
		}
		if created {
			resp.Badge = &course.BadgeResponse{CourseID: badge.CourseID, Name: badge.Name, AwardedAt: badge.AwardedAt}
		}
	}

	if err = client.Commit(); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id":       requestID,
		"student_id":       req.StudentID,
		"lesson_id":        req.LessonID,
		"score":            req.Score,
		"total":            req.Total,
		"course_completed": resp.CourseCompleted,
	}).Info("Quiz attempt recorded")

	return resp, nil
}
