package navigation

import "fmt"

type State uint8

const (
	StateRoot State = iota
	StateCourseList
	StateLessonList
	StateLessonDetail
	StateQuizActive
)

var stateNames = map[State]string{
	StateRoot:         "root",
	StateCourseList:   "course_list",
	StateLessonList:   "lesson_list",
	StateLessonDetail: "lesson_detail",
	StateQuizActive:   "quiz_active",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for state, name := range stateNames {
		if name == string(text) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown navigation state %q", string(text))
}

type ListTab uint8

const (
	ListTabLessons ListTab = iota
	ListTabTextbook
)

type DetailTab uint8

const (
	DetailTabLesson DetailTab = iota
	DetailTabVideo
	DetailTabQuiz
)

type CourseRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

type LessonRef struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	LessonText  string         `json:"lesson_text,omitempty"`
	VideoURL    string         `json:"video_url,omitempty"`
	Order       int            `json:"order"`
	Quiz        []QuizQuestion `json:"quiz,omitempty"`
}

// QuizProgress is the cursor of the quiz shown on the lesson detail screen.
type QuizProgress struct {
	Index    int  `json:"index"`
	Answered bool `json:"answered"`
	Score    int  `json:"score"`
}

// Context is the screen the student is on plus the selection needed to
// resolve commands against it. The zero value is the root screen.
type Context struct {
	State         State        `json:"state"`
	Courses       []CourseRef  `json:"courses,omitempty"`
	CurrentCourse *CourseRef   `json:"current_course,omitempty"`
	CurrentLesson *LessonRef   `json:"current_lesson,omitempty"`
	LessonList    []LessonRef  `json:"lesson_list,omitempty"`
	ListTab       ListTab      `json:"list_tab"`
	DetailTab     DetailTab    `json:"detail_tab"`
	Quiz          QuizProgress `json:"quiz"`
}

// QuizIndex is the position of the quiz cursor.
func (c Context) QuizIndex() int {
	return c.Quiz.Index
}

func NewContext(courses []CourseRef) Context {
	return Context{
		State:   StateRoot,
		Courses: courses,
	}
}

// Validate reports whether the context satisfies the selection invariants.
func (c Context) Validate() error {
	if c.CurrentLesson != nil && c.State != StateLessonDetail {
		return fmt.Errorf("current lesson set in state %s", c.State)
	}
	if (c.State == StateLessonList || c.State == StateLessonDetail) && c.CurrentCourse == nil {
		return fmt.Errorf("state %s requires a current course", c.State)
	}
	if len(c.LessonList) > 0 && c.CurrentCourse == nil {
		return fmt.Errorf("lesson list present without a selected course")
	}
	return nil
}

type ActionKind uint8

const (
	ActionNoOp ActionKind = iota
	ActionLogout
	ActionStopSpeaking
	ActionNavigateBack
	ActionNavigateToRoot
	ActionOpenTextbook
	ActionShowLessons
	ActionOpenLesson
	ActionStartQuiz
	ActionPlayVideo
	ActionNextQuizQuestion
	ActionReadLesson
	ActionOpenCourse
)

var actionNames = map[ActionKind]string{
	ActionNoOp:             "noop",
	ActionLogout:           "logout",
	ActionStopSpeaking:     "stop_speaking",
	ActionNavigateBack:     "navigate_back",
	ActionNavigateToRoot:   "navigate_to_root",
	ActionOpenTextbook:     "open_textbook",
	ActionShowLessons:      "show_lessons",
	ActionOpenLesson:       "open_lesson",
	ActionStartQuiz:        "start_quiz",
	ActionPlayVideo:        "play_video",
	ActionNextQuizQuestion: "next_quiz_question",
	ActionReadLesson:       "read_lesson",
	ActionOpenCourse:       "open_course",
}

func (k ActionKind) String() string {
	if name, ok := actionNames[k]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", uint8(k))
}

func (k ActionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ActionKind) UnmarshalText(text []byte) error {
	for kind, name := range actionNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown action %q", string(text))
}

// Action is one host-applied instruction. LessonIndex is meaningful only
// for ActionOpenLesson and CourseName only for ActionOpenCourse.
type Action struct {
	Kind        ActionKind `json:"kind"`
	LessonIndex int        `json:"lesson_index,omitempty"`
	CourseName  string     `json:"course_name,omitempty"`
}

func (a Action) String() string {
	switch a.Kind {
	case ActionOpenLesson:
		return fmt.Sprintf("%s(%d)", a.Kind, a.LessonIndex)
	case ActionOpenCourse:
		return fmt.Sprintf("%s(%q)", a.Kind, a.CourseName)
	default:
		return a.Kind.String()
	}
}

var NoOp = Action{Kind: ActionNoOp}

func OpenLesson(index int) Action {
	return Action{Kind: ActionOpenLesson, LessonIndex: index}
}

func OpenCourse(name string) Action {
	return Action{Kind: ActionOpenCourse, CourseName: name}
}

func simple(kind ActionKind) Action {
	return Action{Kind: kind}
}
