package courseService

import (
	"context"

	"Edunabha/internal/api/course"
	"Edunabha/internal/entity"
	contextPkg "Edunabha/pkg/context"

	"github.com/sirupsen/logrus"
)

func (s *courseService) Courses(ctx context.Context) ([]entity.Course, error) {
	client, err := s.courseRepo.NewClient(ctx, false)
	if err != nil {
		return nil, err
	}
	return client.Courses.ListCourses(ctx)
}

func (s *courseService) Lessons(ctx context.Context, courseID string) ([]entity.Lesson, error) {
	client, err := s.courseRepo.NewClient(ctx, false)
	if err != nil {
		return nil, err
	}

	if _, err := client.Courses.GetCourseByID(ctx, courseID); err != nil {
		return nil, err
	}

	return client.Courses.ListLessonsByCourse(ctx, courseID)
}

func (s *courseService) ListCourses(ctx context.Context, studentID string) ([]course.CourseResponse, error) {
	courses, err := s.Courses(ctx)
	if err != nil {
		return nil, err
	}

	earned := map[string]bool{}
	if studentID != "" {
		badges, err := s.ListBadges(ctx, studentID)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": contextPkg.GetRequestID(ctx),
				"error":      err.Error(),
			}).Warn("Failed to load badges for course list")
		}
		for _, b := range badges {
			earned[b.CourseID] = true
		}
	}

	resp := make([]course.CourseResponse, 0, len(courses))
	for _, c := range courses {
		resp = append(resp, course.CourseResponse{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			BadgeEarned: earned[c.ID],
		})
	}
	return resp, nil
}

func (s *courseService) ListLessons(ctx context.Context, courseID string) ([]course.LessonResponse, error) {
	lessons, err := s.Lessons(ctx, courseID)
	if err != nil {
		return nil, err
	}

	resp := make([]course.LessonResponse, 0, len(lessons))
	for _, l := range lessons {
		ref := l.Ref()
		resp = append(resp, course.LessonResponse{
			ID:          ref.ID,
			Title:       ref.Title,
			Description: ref.Description,
			LessonText:  ref.LessonText,
			VideoURL:    ref.VideoURL,
			Order:       ref.Order,
			Quiz:        ref.Quiz,
		})
	}
	return resp, nil
}

func (s *courseService) ListBadges(ctx context.Context, studentID string) ([]course.BadgeResponse, error) {
	client, err := s.courseRepo.NewClient(ctx, false)
	if err != nil {
		return nil, err
	}

	badges, err := client.Progress.ListBadges(ctx, studentID)
	if err != nil {
		return nil, err
	}

	resp := make([]course.BadgeResponse, 0, len(badges))
	for _, b := range badges {
		resp = append(resp, course.BadgeResponse{CourseID: b.CourseID, Name: b.Name, AwardedAt: b.AwardedAt})
	}
	return resp, nil
}
