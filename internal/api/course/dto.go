package course

import (
	"time"

	"Edunabha/pkg/navigation"
)

type CourseResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	BadgeEarned bool   `json:"badge_earned"`
}

type LessonResponse struct {
	ID          string                    `json:"id"`
	Title       string                    `json:"title"`
	Description string                    `json:"description"`
	LessonText  string                    `json:"lesson_text"`
	VideoURL    string                    `json:"video_url"`
	Order       int                       `json:"order"`
	Quiz        []navigation.QuizQuestion `json:"quiz"`
}

type CompleteQuizRequest struct {
	StudentID string `validate:"required"`
	CourseID  string `validate:"required"`
	LessonID  string `validate:"required"`
	Score     int    `validate:"gte=0,ltefield=Total"`
	Total     int    `validate:"gte=0"`
}

type BadgeResponse struct {
	CourseID  string    `json:"course_id"`
	Name      string    `json:"name"`
	AwardedAt time.Time `json:"awarded_at"`
}

type CompleteQuizResponse struct {
	AttemptID       string         `json:"attempt_id"`
	Score           int            `json:"score"`
	Total           int            `json:"total"`
	CourseCompleted bool           `json:"course_completed"`
	Badge           *BadgeResponse `json:"badge,omitempty"`
}
