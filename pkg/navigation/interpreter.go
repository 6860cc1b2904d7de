package navigation

import (
	"regexp"
	"strconv"
	"strings"
)

// rule inspects a transcript and, when it claims it, returns the action to
// dispatch. A claimed transcript stops evaluation even when the action is
// NoOp.
type rule func(transcript string, ctx Context) (Action, bool)

var lessonNumberPattern = regexp.MustCompile(`(?:show|open) lesson (\d+)`)

var (
	globalRules = []rule{
		phrases(simple(ActionLogout), "logout", "sign out"),
		phrases(simple(ActionStopSpeaking), "stop reading", "stop"),
		back,
		phrases(simple(ActionNavigateToRoot), "take me to courses", "show me the courses", "go to courses"),
	}

	stateRules = map[State][]rule{
		StateLessonDetail: {
			phrases(simple(ActionStartQuiz), "start quiz", "open quiz"),
			phrases(simple(ActionPlayVideo), "play video"),
			phrases(simple(ActionNextQuizQuestion), "next question"),
			phrases(simple(ActionReadLesson), "explain", "clarify", "what is", "read the lesson"),
		},
		StateLessonList: {
			phrases(simple(ActionOpenTextbook), "open textbook"),
			phrases(simple(ActionShowLessons), "show lessons"),
			lessonByNumber,
		},
		StateRoot: {
			courseByName,
		},
	}
)

// Interpret maps a transcript to exactly one action for the given screen.
// Global commands are tried first, then the rules of the active state, in
// table order; the first rule that claims the transcript wins.
func Interpret(transcript string, ctx Context) Action {
	transcript = strings.ToLower(strings.TrimSpace(transcript))
	if transcript == "" {
		return NoOp
	}

	for _, r := range globalRules {
		if action, ok := r(transcript, ctx); ok {
			return action
		}
	}

	for _, r := range stateRules[ctx.State] {
		if action, ok := r(transcript, ctx); ok {
			return action
		}
	}

	return NoOp
}

func phrases(action Action, needles ...string) rule {
	return func(transcript string, _ Context) (Action, bool) {
		for _, needle := range needles {
			if strings.Contains(transcript, needle) {
				return action, true
			}
		}
		return Action{}, false
	}
}

func back(transcript string, ctx Context) (Action, bool) {
	if !strings.Contains(transcript, "back") {
		return Action{}, false
	}
	switch ctx.State {
	case StateLessonDetail, StateLessonList:
		return simple(ActionNavigateBack), true
	default:
		return NoOp, true
	}
}

func lessonByNumber(transcript string, ctx Context) (Action, bool) {
	match := lessonNumberPattern.FindStringSubmatch(transcript)
	if match == nil {
		return Action{}, false
	}

	number, err := strconv.Atoi(match[1])
	if err != nil || number < 1 || number > len(ctx.LessonList) {
		return NoOp, true
	}

	return OpenLesson(number - 1), true
}

func courseByName(transcript string, ctx Context) (Action, bool) {
	if !strings.HasPrefix(transcript, "open") {
		return Action{}, false
	}

	for _, course := range ctx.Courses {
		name := strings.ToLower(strings.TrimSpace(course.Name))
		if name == "" {
			continue
		}
		if strings.Contains(transcript, name) {
			return OpenCourse(course.Name), true
		}
	}

	return NoOp, true
}
