package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func lessons(n int) []LessonRef {
	out := make([]LessonRef, n)
	for i := range out {
		out[i] = LessonRef{ID: string(rune('a' + i)), Title: "Lesson", Order: i + 1}
	}
	return out
}

func rootCtx() Context {
	return NewContext([]CourseRef{{ID: "c1", Name: "Math"}, {ID: "c2", Name: "Science"}})
}

func listCtx(n int) Context {
	return rootCtx().SelectCourse(CourseRef{ID: "c1", Name: "Math"}, lessons(n))
}

func detailCtx() Context {
	ctx, _ := Apply(listCtx(3), OpenLesson(0))
	return ctx
}

func allStates() []Context {
	quiz := detailCtx()
	quiz.State = StateQuizActive
	quiz.CurrentLesson = nil
	return []Context{
		rootCtx(),
		{State: StateCourseList},
		listCtx(3),
		detailCtx(),
		quiz,
	}
}

func TestInterpret_GlobalCommandsInEveryState(t *testing.T) {
	for _, ctx := range allStates() {
		t.Run(ctx.State.String(), func(t *testing.T) {
			assert.Equal(t, simple(ActionLogout), Interpret("logout", ctx))
			assert.Equal(t, simple(ActionLogout), Interpret("sign out", ctx))
			assert.Equal(t, simple(ActionStopSpeaking), Interpret("stop", ctx))
			assert.Equal(t, simple(ActionStopSpeaking), Interpret("stop reading", ctx))
			assert.Equal(t, simple(ActionNavigateToRoot), Interpret("take me to courses", ctx))
			assert.Equal(t, simple(ActionNavigateToRoot), Interpret("show me the courses", ctx))
			assert.Equal(t, simple(ActionNavigateToRoot), Interpret("please go to courses", ctx))
		})
	}
}

func TestInterpret_ResolutionOrder(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		ctx        Context
		want       Action
	}{
		{"stop beats start quiz", "stop and start quiz", detailCtx(), simple(ActionStopSpeaking)},
		{"logout beats stop", "stop and logout", detailCtx(), simple(ActionLogout)},
		{"back beats courses", "go back to courses", detailCtx(), simple(ActionNavigateBack)},
		{"back at root is claimed as noop", "go back and open math", rootCtx(), NoOp},
		{"courses beats lesson rules", "show me the courses and play video", detailCtx(), simple(ActionNavigateToRoot)},
		{"start quiz beats next question", "start quiz next question", detailCtx(), simple(ActionStartQuiz)},
		{"textbook beats lesson number", "open textbook open lesson 1", listCtx(3), simple(ActionOpenTextbook)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Interpret(tt.transcript, tt.ctx))
		})
	}
}

func TestInterpret_Back(t *testing.T) {
	assert.Equal(t, simple(ActionNavigateBack), Interpret("back", detailCtx()))
	assert.Equal(t, simple(ActionNavigateBack), Interpret("go back", listCtx(2)))
	assert.Equal(t, NoOp, Interpret("back", rootCtx()))
	assert.Equal(t, NoOp, Interpret("back", Context{State: StateCourseList}))
}

func TestInterpret_LessonDetail(t *testing.T) {
	ctx := detailCtx()

	tests := []struct {
		transcript string
		want       Action
	}{
		{"start quiz", simple(ActionStartQuiz)},
		{"open quiz please", simple(ActionStartQuiz)},
		{"play video", simple(ActionPlayVideo)},
		{"next question", simple(ActionNextQuizQuestion)},
		{"explain this", simple(ActionReadLesson)},
		{"can you clarify", simple(ActionReadLesson)},
		{"what is photosynthesis", simple(ActionReadLesson)},
		{"read the lesson", simple(ActionReadLesson)},
		{"open textbook", NoOp},
		{"open lesson 1", NoOp},
		{"open math", NoOp},
		{"sing a song", NoOp},
	}

	for _, tt := range tests {
		t.Run(tt.transcript, func(t *testing.T) {
			assert.Equal(t, tt.want, Interpret(tt.transcript, ctx))
		})
	}
}

func TestInterpret_LessonList(t *testing.T) {
	ctx := listCtx(3)

	tests := []struct {
		transcript string
		want       Action
	}{
		{"open textbook", simple(ActionOpenTextbook)},
		{"show lessons", simple(ActionShowLessons)},
		{"open lesson 2", OpenLesson(1)},
		{"show lesson 1", OpenLesson(0)},
		{"please open lesson 3 now", OpenLesson(2)},
		{"open lesson 5", NoOp},
		{"open lesson 0", NoOp},
		{"open lesson 99999999999999999999", NoOp},
		{"open lesson two", NoOp},
		{"start quiz", NoOp},
		{"open math", NoOp},
	}

	for _, tt := range tests {
		t.Run(tt.transcript, func(t *testing.T) {
			assert.Equal(t, tt.want, Interpret(tt.transcript, ctx))
		})
	}
}

func TestInterpret_Root(t *testing.T) {
	ctx := rootCtx()

	assert.Equal(t, OpenCourse("Math"), Interpret("open math please", ctx))
	assert.Equal(t, OpenCourse("Science"), Interpret("open science", ctx))
	assert.Equal(t, NoOp, Interpret("open history", ctx))
	assert.Equal(t, NoOp, Interpret("show me math", ctx))
	assert.Equal(t, NoOp, Interpret("open lesson 1", ctx))
}

func TestInterpret_RootFirstCourseWins(t *testing.T) {
	ctx := NewContext([]CourseRef{{Name: "Math"}, {Name: "Advanced Math"}, {Name: ""}})

	assert.Equal(t, OpenCourse("Math"), Interpret("open advanced math", ctx))
}

func TestInterpret_NormalisesInput(t *testing.T) {
	assert.Equal(t, simple(ActionLogout), Interpret("  LOGOUT ", rootCtx()))
	assert.Equal(t, NoOp, Interpret("   ", rootCtx()))
}

func TestInterpret_ShowCoursesIgnoresSelection(t *testing.T) {
	ctx := detailCtx()
	other := ctx
	other.CurrentLesson = &LessonRef{ID: "zzz"}
	other.CurrentCourse = &CourseRef{ID: "other"}

	assert.Equal(t, simple(ActionNavigateToRoot), Interpret("show me the courses", ctx))
	assert.Equal(t, simple(ActionNavigateToRoot), Interpret("show me the courses", other))
}
