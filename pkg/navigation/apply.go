package navigation

import (
	"errors"
	"strings"
)

var (
	ErrNoActiveQuiz    = errors.New("no quiz question is awaiting an answer")
	ErrAlreadyAnswered = errors.New("quiz question already answered")
)

// Outcome lists the side effects a transition asks the host to perform.
type Outcome struct {
	EndSession   bool       `json:"end_session,omitempty"`
	StopPlayback bool       `json:"stop_playback,omitempty"`
	ReadAloud    string     `json:"read_aloud,omitempty"`
	LoadCourse   *CourseRef `json:"load_course,omitempty"`
	QuizFinished bool       `json:"quiz_finished,omitempty"`
}

// Apply performs the host side of an action and returns the next context.
// The input context is never modified. Actions that do not make sense on
// the current screen leave the context as it is.
func Apply(ctx Context, action Action) (Context, Outcome) {
	var out Outcome

	switch action.Kind {
	case ActionLogout:
		out.EndSession = true
		out.StopPlayback = true

	case ActionStopSpeaking:
		out.StopPlayback = true

	case ActionNavigateBack:
		switch ctx.State {
		case StateLessonDetail:
			ctx = ctx.leaveLesson()
			out.StopPlayback = true
		case StateLessonList:
			ctx = ctx.toRoot()
		}

	case ActionNavigateToRoot:
		out.StopPlayback = ctx.State == StateLessonDetail
		ctx = ctx.toRoot()

	case ActionOpenTextbook:
		if ctx.State == StateLessonList {
			ctx.ListTab = ListTabTextbook
		}

	case ActionShowLessons:
		if ctx.State == StateLessonList {
			ctx.ListTab = ListTabLessons
		}

	case ActionOpenLesson:
		if ctx.State == StateLessonList && action.LessonIndex >= 0 && action.LessonIndex < len(ctx.LessonList) {
			lesson := ctx.LessonList[action.LessonIndex]
			ctx.State = StateLessonDetail
			ctx.CurrentLesson = &lesson
			ctx.DetailTab = DetailTabLesson
			ctx.Quiz = QuizProgress{}
		}

	case ActionStartQuiz:
		if ctx.State == StateLessonDetail {
			out.StopPlayback = ctx.DetailTab == DetailTabLesson
			ctx.DetailTab = DetailTabQuiz
			ctx.Quiz = QuizProgress{}
		}

	case ActionPlayVideo:
		if ctx.State == StateLessonDetail {
			out.StopPlayback = ctx.DetailTab == DetailTabLesson
			ctx.DetailTab = DetailTabVideo
		}

	case ActionReadLesson:
		if ctx.State == StateLessonDetail && ctx.CurrentLesson != nil {
			ctx.DetailTab = DetailTabLesson
			out.ReadAloud = ctx.CurrentLesson.LessonText
		}

	case ActionNextQuizQuestion:
		ctx, out.QuizFinished = ctx.nextQuestion()

	case ActionOpenCourse:
		if ctx.State == StateRoot {
			if course, ok := ctx.findCourse(action.CourseName); ok {
				out.LoadCourse = &course
			}
		}
	}

	return ctx, out
}

// SelectCourse finishes an OpenCourse transition once the host has loaded
// the ordered lessons of the course.
func (c Context) SelectCourse(course CourseRef, lessons []LessonRef) Context {
	c.State = StateLessonList
	c.CurrentCourse = &course
	c.CurrentLesson = nil
	c.LessonList = append([]LessonRef(nil), lessons...)
	c.ListTab = ListTabLessons
	c.Quiz = QuizProgress{}
	return c
}

// QuizFinished reports whether the cursor has moved past the last question.
func (c Context) QuizFinished() bool {
	if c.CurrentLesson == nil {
		return false
	}
	return c.Quiz.Index >= len(c.CurrentLesson.Quiz)
}

// CurrentQuestion returns the question under the quiz cursor.
func (c Context) CurrentQuestion() (QuizQuestion, bool) {
	if c.State != StateLessonDetail || c.DetailTab != DetailTabQuiz || c.CurrentLesson == nil {
		return QuizQuestion{}, false
	}
	if c.QuizFinished() {
		return QuizQuestion{}, false
	}
	return c.CurrentLesson.Quiz[c.Quiz.Index], true
}

// AnswerQuiz records the answer to the current question. Only the first
// answer to a question counts.
func (c Context) AnswerQuiz(answer string) (Context, bool, error) {
	question, ok := c.CurrentQuestion()
	if !ok {
		return c, false, ErrNoActiveQuiz
	}
	if c.Quiz.Answered {
		return c, false, ErrAlreadyAnswered
	}

	correct := strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(question.CorrectAnswer))
	c.Quiz.Answered = true
	if correct {
		c.Quiz.Score++
	}
	return c, correct, nil
}

func (c Context) nextQuestion() (Context, bool) {
	if c.State != StateLessonDetail || c.DetailTab != DetailTabQuiz || c.CurrentLesson == nil {
		return c, false
	}
	if c.QuizFinished() || !c.Quiz.Answered {
		return c, false
	}

	c.Quiz.Index++
	c.Quiz.Answered = false
	return c, c.QuizFinished()
}

func (c Context) leaveLesson() Context {
	c.State = StateLessonList
	c.CurrentLesson = nil
	c.DetailTab = DetailTabLesson
	c.Quiz = QuizProgress{}
	return c
}

func (c Context) toRoot() Context {
	c.State = StateRoot
	c.CurrentCourse = nil
	c.CurrentLesson = nil
	c.LessonList = nil
	c.ListTab = ListTabLessons
	c.DetailTab = DetailTabLesson
	c.Quiz = QuizProgress{}
	return c
}

func (c Context) findCourse(name string) (CourseRef, bool) {
	for _, course := range c.Courses {
		if strings.EqualFold(course.Name, name) {
			return course, true
		}
	}
	return CourseRef{}, false
}
