package voiceHandler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"Edunabha/internal/api/voice"
	"Edunabha/internal/middleware"
	"Edunabha/pkg/audio"
	jwtPkg "Edunabha/pkg/jwt"
	"Edunabha/pkg/navigation"
	"Edunabha/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type transcriberFunc func(ctx context.Context, clip audio.Clip) (string, error)

func (f transcriberFunc) Transcribe(ctx context.Context, clip audio.Clip) (string, error) {
	return f(ctx, clip)
}

type fakeService struct {
	mu          sync.Mutex
	transcripts []string
	clips       []audio.Clip
	transcriber audio.Transcriber
	ownerID     string
	leftLesson  bool
}

func (f *fakeService) CreateSession(ctx context.Context, studentID string) (*voice.SessionResponse, error) {
	return &voice.SessionResponse{ID: "sess-1", Context: navigation.NewContext(nil)}, nil
}

func (f *fakeService) GetSession(ctx context.Context, studentID, sessionID string) (*voice.SessionResponse, error) {
	if sessionID != "sess-1" {
		return nil, voice.ErrSessionNotFound
	}
	if f.ownerID != "" && studentID != f.ownerID {
		return nil, voice.ErrSessionForbidden
	}
	f.mu.Lock()
	left := f.leftLesson
	f.mu.Unlock()
	return &voice.SessionResponse{ID: sessionID, Context: lessonContext(left)}, nil
}

func (f *fakeService) DeleteSession(ctx context.Context, studentID, sessionID string) error {
	_, err := f.GetSession(ctx, studentID, sessionID)
	return err
}

func (f *fakeService) Interpret(ctx context.Context, req voice.InterpretRequest) (*voice.InterpretResponse, error) {
	return &voice.InterpretResponse{Transcript: req.Transcript, Action: navigation.Interpret(req.Transcript, req.Context)}, nil
}

func (f *fakeService) Navigate(ctx context.Context, studentID, sessionID, transcript string) (*voice.CommandResponse, error) {
	f.mu.Lock()
	f.transcripts = append(f.transcripts, transcript)
	f.mu.Unlock()

	resp := &voice.CommandResponse{Transcript: transcript, Action: navigation.NoOp}
	current := lessonContext(false)
	resp.Context = &current
	switch {
	case strings.Contains(transcript, "logout"):
		resp.Action = navigation.Action{Kind: navigation.ActionLogout}
		resp.Outcome = navigation.Outcome{EndSession: true, StopPlayback: true}
		resp.Ended = true
	case strings.Contains(transcript, "read"):
		resp.Action = navigation.Action{Kind: navigation.ActionReadLesson}
		resp.Outcome = navigation.Outcome{ReadAloud: "Forces push."}
	case strings.Contains(transcript, "stop"):
		resp.Action = navigation.Action{Kind: navigation.ActionStopSpeaking}
		resp.Outcome = navigation.Outcome{StopPlayback: true}
	case strings.Contains(transcript, "back"):
		f.mu.Lock()
		f.leftLesson = true
		f.mu.Unlock()
		resp.Action = navigation.Action{Kind: navigation.ActionNavigateBack}
		back := lessonContext(true)
		resp.Context = &back
	}
	if resp.Ended {
		resp.Context = nil
	}
	return resp, nil
}

// lessonContext is the Forces lesson of Science, or its lesson list once
// the student has gone back.
func lessonContext(left bool) navigation.Context {
	course := &navigation.CourseRef{ID: "c1", Name: "Science"}
	if left {
		return navigation.Context{State: navigation.StateLessonList, CurrentCourse: course}
	}
	lesson := navigation.LessonRef{ID: "l1", Title: "Forces", LessonText: "Forces push."}
	return navigation.Context{State: navigation.StateLessonDetail, CurrentCourse: course, CurrentLesson: &lesson}
}

func (f *fakeService) HandleTranscript(ctx context.Context, studentID, sessionID, transcript string) (*voice.CommandResponse, error) {
	return f.Navigate(ctx, studentID, sessionID, transcript)
}

func (f *fakeService) HandleAudio(ctx context.Context, studentID, sessionID string, clip audio.Clip) (*voice.CommandResponse, error) {
	f.mu.Lock()
	f.clips = append(f.clips, clip)
	f.mu.Unlock()
	return f.Navigate(ctx, studentID, sessionID, "read the lesson")
}

func (f *fakeService) AnswerQuiz(ctx context.Context, studentID, sessionID, answer string) (*voice.QuizAnswerResponse, error) {
	if answer == "" {
		return nil, voice.ErrNoActiveQuiz
	}
	return &voice.QuizAnswerResponse{Correct: answer == "yes"}, nil
}

func (f *fakeService) NewRecognizer() (*audio.ClipRecognizer, error) {
	if f.transcriber == nil {
		return nil, voice.ErrSpeechUnavailable
	}
	return audio.NewClipRecognizer(f.transcriber), nil
}

func (f *fakeService) NewNarrator(send audio.Sink) *audio.Narrator {
	return audio.NewNarrator(quietLogger(), nil, nil, send)
}

func (f *fakeService) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.transcripts...)
}

func newTestApp(t *testing.T, svc *fakeService) (*fiber.App, string) {
	t.Helper()
	t.Setenv(jwtPkg.AccessTokenSecret, "secret")
	token, _, err := jwtPkg.Sign(map[string]interface{}{"id": "stu-1", "name": "Asha"}, time.Hour)
	require.NoError(t, err)

	logger := quietLogger()
	app := fiber.New()
	New(logger, validator.New(), middleware.New(logger), svc, utils.New()).Start(app)
	return app, token
}

func doJSON(t *testing.T, app *fiber.App, token, method, target, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		require.NoError(t, jsoniter.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func TestSessionRoutes(t *testing.T) {
	app, token := newTestApp(t, &fakeService{ownerID: "stu-1"})

	status, body := doJSON(t, app, token, "POST", "/voice/sessions", "")
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "sess-1", body["id"])

	status, _ = doJSON(t, app, token, "GET", "/voice/sessions/sess-1", "")
	assert.Equal(t, fiber.StatusOK, status)

	status, body = doJSON(t, app, token, "GET", "/voice/sessions/missing", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "SESSION_NOT_FOUND", body["code"])

	status, _ = doJSON(t, app, token, "DELETE", "/voice/sessions/sess-1", "")
	assert.Equal(t, fiber.StatusNoContent, status)
}

func TestSessionRoutes_RequireToken(t *testing.T) {
	app, _ := newTestApp(t, &fakeService{})

	status, _ := doJSON(t, app, "bogus", "POST", "/voice/sessions", "")

	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestInterpretRoute(t *testing.T) {
	app, token := newTestApp(t, &fakeService{})

	status, body := doJSON(t, app, token, "POST", "/voice/interpret",
		`{"transcript":"logout","context":{"state":"lesson_list","current_course":{"id":"c1","name":"Science"}}}`)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "logout", body["action"].(map[string]interface{})["kind"])
}

func TestTranscriptRoute(t *testing.T) {
	svc := &fakeService{}
	app, token := newTestApp(t, svc)

	status, body := doJSON(t, app, token, "POST", "/voice/sessions/sess-1/transcript", `{"transcript":""}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])

	status, body = doJSON(t, app, token, "POST", "/voice/sessions/sess-1/transcript", `{"transcript":"read the lesson"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Forces push.", body["outcome"].(map[string]interface{})["read_aloud"])
	assert.Equal(t, []string{"read the lesson"}, svc.seen())
}

func TestQuizAnswerRoute(t *testing.T) {
	app, token := newTestApp(t, &fakeService{})

	status, body := doJSON(t, app, token, "POST", "/voice/sessions/sess-1/quiz/answer", `{"answer":"yes"}`)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["correct"])
}

func multipartAudio(t *testing.T, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="audio"; filename="clip.webm"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestCommandRoute(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		wantStatus  int
		wantClips   int
	}{
		{"audio clip", "audio/webm", fiber.StatusOK, 1},
		{"not audio", "image/png", fiber.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			app, token := newTestApp(t, svc)

			body, contentType := multipartAudio(t, tt.contentType, []byte("clip-bytes"))
			req := httptest.NewRequest("POST", "/voice/sessions/sess-1/command", body)
			req.Header.Set("Content-Type", contentType)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Len(t, svc.clips, tt.wantClips)
			if tt.wantClips > 0 {
				assert.Equal(t, "audio/webm", svc.clips[0].MimeType)
				assert.Equal(t, []byte("clip-bytes"), svc.clips[0].Data)
			}
		})
	}
}

func TestLiveSocket_RejectsPlainRequests(t *testing.T) {
	app, token := newTestApp(t, &fakeService{})

	req := httptest.NewRequest("GET", "/voice/ws?session_id=sess-1", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

type frame struct {
	messageType int
	data        []byte
}

// pipeConn is an in-memory liveConn. Frames pushed to in are read by the
// loop; every text frame the loop writes is decoded onto out.
type pipeConn struct {
	in      chan frame
	out     chan voice.ServerMessage
	expired chan struct{}
	once    sync.Once
}

func newPipeConn() *pipeConn {
	return &pipeConn{
		in:      make(chan frame, 8),
		out:     make(chan voice.ServerMessage, 64),
		expired: make(chan struct{}),
	}
}

func (c *pipeConn) ReadMessage() (int, []byte, error) {
	select {
	case f, ok := <-c.in:
		if !ok {
			return 0, nil, io.EOF
		}
		return f.messageType, f.data, nil
	case <-c.expired:
		return 0, nil, errors.New("i/o timeout")
	}
}

func (c *pipeConn) WriteMessage(messageType int, data []byte) error {
	if messageType != websocket.TextMessage {
		return nil
	}
	var msg voice.ServerMessage
	if err := jsoniter.Unmarshal(data, &msg); err != nil {
		return err
	}
	select {
	case c.out <- msg:
	default:
	}
	return nil
}

func (c *pipeConn) SetReadDeadline(t time.Time) error {
	if !t.After(time.Now()) {
		c.once.Do(func() { close(c.expired) })
	}
	return nil
}

func (c *pipeConn) SetWriteDeadline(time.Time) error { return nil }

func (c *pipeConn) sendJSON(t *testing.T, msg voice.ClientMessage) {
	t.Helper()
	data, err := jsoniter.Marshal(msg)
	require.NoError(t, err)
	c.in <- frame{messageType: websocket.TextMessage, data: data}
}

func (c *pipeConn) next(t *testing.T, want voice.ServerMessageType) voice.ServerMessage {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case msg := <-c.out:
			if msg.Type == want {
				return msg
			}
		case <-timeout:
			t.Fatalf("no %s message received", want)
			return voice.ServerMessage{}
		}
	}
}

func playbackField(msg voice.ServerMessage, key string) string {
	fields, _ := msg.Playback.(map[string]interface{})
	value, _ := fields[key].(string)
	return value
}

func startLive(t *testing.T, svc *fakeService) (*pipeConn, <-chan error) {
	t.Helper()
	ignore := goleak.IgnoreCurrent()
	t.Cleanup(func() { goleak.VerifyNone(t, ignore) })

	logger := quietLogger()
	h := New(logger, validator.New(), middleware.New(logger), svc, utils.New())
	conn := newPipeConn()

	done := make(chan error, 1)
	go func() {
		done <- h.serveLive(context.Background(), conn, "stu-1", "sess-1")
	}()
	return conn, done
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("live loop did not stop")
		return nil
	}
}

func TestLive_TranscriptReadsAloudUntilEnded(t *testing.T) {
	conn, done := startLive(t, &fakeService{})

	state := conn.next(t, voice.ServerState)
	require.NotNil(t, state.Listening)
	assert.False(t, *state.Listening)

	conn.sendJSON(t, voice.ClientMessage{Type: voice.ClientTranscript, Transcript: "Read the lesson"})

	assert.Equal(t, "read the lesson", conn.next(t, voice.ServerTranscript).Transcript)
	action := conn.next(t, voice.ServerAction)
	require.NotNil(t, action.Command)
	assert.Equal(t, navigation.ActionReadLesson, action.Command.Action.Kind)

	speak := conn.next(t, voice.ServerPlayback)
	assert.Equal(t, "speak", playbackField(speak, "type"))
	assert.Equal(t, "Forces push.", playbackField(speak, "text"))

	conn.sendJSON(t, voice.ClientMessage{Type: voice.ClientPlaybackEnded, PlaybackID: playbackField(speak, "id")})
	close(conn.in)

	assert.ErrorIs(t, waitDone(t, done), io.EOF)
}

func TestLive_PlayAfterLeavingLessonStaysSilent(t *testing.T) {
	conn, done := startLive(t, &fakeService{})

	conn.sendJSON(t, voice.ClientMessage{Type: voice.ClientTranscript, Transcript: "read the lesson"})
	speak := conn.next(t, voice.ServerPlayback)
	conn.sendJSON(t, voice.ClientMessage{Type: voice.ClientPlaybackEnded, PlaybackID: playbackField(speak, "id")})

	conn.sendJSON(t, voice.ClientMessage{Type: voice.ClientTranscript, Transcript: "go back"})
	action := conn.next(t, voice.ServerAction)
	require.NotNil(t, action.Command.Context)
	assert.Equal(t, navigation.StateLessonList, action.Command.Context.State)

	conn.sendJSON(t, voice.ClientMessage{Type: voice.ClientPlay})
	conn.sendJSON(t, voice.ClientMessage{Type: voice.ClientQuizAnswer, Answer: "yes"})

	timeout := time.After(2 * time.Second)
	for quiz := false; !quiz; {
		select {
		case msg := <-conn.out:
			require.NotEqual(t, voice.ServerPlayback, msg.Type, "play must not replay a lesson that was left")
			quiz = msg.Type == voice.ServerQuiz
		case <-timeout:
			t.Fatal("no quiz message received")
		}
	}
	select {
	case msg := <-conn.out:
		assert.NotEqual(t, voice.ServerPlayback, msg.Type)
	case <-time.After(50 * time.Millisecond):
	}

	close(conn.in)
	waitDone(t, done)
}

func TestLive_DisconnectCancelsPlayback(t *testing.T) {
	conn, done := startLive(t, &fakeService{})

	conn.sendJSON(t, voice.ClientMessage{Type: voice.ClientTranscript, Transcript: "read the lesson"})
	speak := conn.next(t, voice.ServerPlayback)
	close(conn.in)

	waitDone(t, done)
	cancel := conn.next(t, voice.ServerPlayback)
	assert.Equal(t, "cancel", playbackField(cancel, "type"))
	assert.Equal(t, playbackField(speak, "id"), playbackField(cancel, "id"))
}

func TestLive_ListenTranscribesClip(t *testing.T) {
	svc := &fakeService{transcriber: transcriberFunc(func(ctx context.Context, clip audio.Clip) (string, error) {
		return "Stop Reading", nil
	})}
	conn, done := startLive(t, svc)
	conn.next(t, voice.ServerState)

	conn.sendJSON(t, voice.ClientMessage{Type: voice.ClientListen, MimeType: "audio/webm"})
	listening := conn.next(t, voice.ServerState)
	require.NotNil(t, listening.Listening)
	assert.True(t, *listening.Listening)

	conn.in <- frame{messageType: websocket.BinaryMessage, data: []byte("clip")}

	assert.Equal(t, "stop reading", conn.next(t, voice.ServerTranscript).Transcript)
	action := conn.next(t, voice.ServerAction)
	assert.Equal(t, navigation.ActionStopSpeaking, action.Command.Action.Kind)

	close(conn.in)
	waitDone(t, done)
	assert.Equal(t, []string{"stop reading"}, svc.seen())
}

func TestLive_StopCancelsCapture(t *testing.T) {
	svc := &fakeService{transcriber: transcriberFunc(func(ctx context.Context, clip audio.Clip) (string, error) {
		return "unused", nil
	})}
	conn, done := startLive(t, svc)
	conn.next(t, voice.ServerState)

	conn.sendJSON(t, voice.ClientMessage{Type: voice.ClientListen})
	conn.next(t, voice.ServerState)
	conn.sendJSON(t, voice.ClientMessage{Type: voice.ClientStop})

	stopped := conn.next(t, voice.ServerState)
	require.NotNil(t, stopped.Listening)
	assert.False(t, *stopped.Listening)

	close(conn.in)
	waitDone(t, done)
	assert.Empty(t, svc.seen())
}

func TestLive_ListenWithoutRecognizer(t *testing.T) {
	conn, done := startLive(t, &fakeService{})

	conn.sendJSON(t, voice.ClientMessage{Type: voice.ClientListen})

	assert.Equal(t, voice.ErrSpeechUnavailable.Error(), conn.next(t, voice.ServerError).Error)
	close(conn.in)
	waitDone(t, done)
}

func TestLive_LogoutEndsLoop(t *testing.T) {
	conn, done := startLive(t, &fakeService{})

	conn.sendJSON(t, voice.ClientMessage{Type: voice.ClientTranscript, Transcript: "logout"})

	assert.ErrorIs(t, waitDone(t, done), errSessionEnded)
	assert.True(t, conn.next(t, voice.ServerAction).Command.Ended)
}

func TestLive_QuizAnswerAndBadFrames(t *testing.T) {
	conn, done := startLive(t, &fakeService{})

	conn.in <- frame{messageType: websocket.TextMessage, data: []byte("{not json")}
	assert.Equal(t, "malformed message", conn.next(t, voice.ServerError).Error)

	conn.sendJSON(t, voice.ClientMessage{Type: voice.ClientQuizAnswer, Answer: "yes"})
	quiz := conn.next(t, voice.ServerQuiz)
	require.NotNil(t, quiz.Quiz)
	assert.True(t, quiz.Quiz.Correct)

	conn.sendJSON(t, voice.ClientMessage{Type: voice.ClientQuizAnswer})
	assert.Equal(t, voice.ErrNoActiveQuiz.Error(), conn.next(t, voice.ServerError).Error)

	close(conn.in)
	waitDone(t, done)
}
