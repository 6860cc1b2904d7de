package entity

import (
	"database/sql/driver"
	"errors"
	"time"

	"Edunabha/pkg/navigation"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Course struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

func (c Course) Ref() navigation.CourseRef {
	return navigation.CourseRef{ID: c.ID, Name: c.Name}
}

// QuizQuestions is stored as a jsonb column on lessons.
type QuizQuestions []navigation.QuizQuestion

func (q QuizQuestions) Value() (driver.Value, error) {
	if q == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(q)
}

func (q *QuizQuestions) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*q = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("quiz questions: unsupported column type")
	}
	return json.Unmarshal(raw, q)
}

type Lesson struct {
	ID          string        `db:"id" json:"id"`
	CourseID    string        `db:"course_id" json:"course_id"`
	Title       string        `db:"title" json:"title"`
	Description string        `db:"description" json:"description"`
	LessonText  string        `db:"lesson_text" json:"lesson_text"`
	VideoURL    string        `db:"video_url" json:"video_url"`
	Order       int           `db:"order" json:"order"`
	Quiz        QuizQuestions `db:"quiz" json:"quiz"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
}

func (l Lesson) Ref() navigation.LessonRef {
	return navigation.LessonRef{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		LessonText:  l.LessonText,
		VideoURL:    l.VideoURL,
		Order:       l.Order,
		Quiz:        append([]navigation.QuizQuestion(nil), l.Quiz...),
	}
}

type QuizAttempt struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	LessonID  string    `db:"lesson_id" json:"lesson_id"`
	Score     int       `db:"score" json:"score"`
	Total     int       `db:"total" json:"total"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Badge struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	Name      string    `db:"name" json:"name"`
	AwardedAt time.Time `db:"awarded_at" json:"awarded_at"`
}
