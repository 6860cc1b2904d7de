package voiceHandler

import (
	"context"
	"errors"
	"sync"
	"time"

	"Edunabha/internal/api/voice"
	"Edunabha/internal/entity"
	"Edunabha/internal/middleware"
	"Edunabha/pkg/audio"
	contextPkg "Edunabha/pkg/context"
	"Edunabha/pkg/handlerUtil"
	jwtPkg "Edunabha/pkg/jwt"
	"Edunabha/pkg/log"
	"Edunabha/pkg/navigation"
	"Edunabha/pkg/response"
	"Edunabha/pkg/speech"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/sync/errgroup"
)

const (
	liveReadTimeout  = 90 * time.Second
	liveWriteTimeout = 10 * time.Second
	sessionLocalsKey = "voice_session_id"
)

var errSessionEnded = errors.New("navigation session ended")

// liveConn is the part of a websocket connection the live loop needs.
type liveConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
}

// upgradeMiddleware checks the session before the handshake so a bad
// request still gets a JSON error instead of a closed socket.
func (h *VoiceHandler) upgradeMiddleware(ctx *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}

	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	student, err := jwtPkg.GetStudentLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	sessionID := ctx.Query("session_id")
	if sessionID == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("session_id is required"), ctx.Path())
	}

	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 5*time.Second)
	defer cancel()
	if _, err := h.voiceService.GetSession(c, student.ID, sessionID); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "open_live_socket")
	}

	ctx.Locals(sessionLocalsKey, sessionID)
	return ctx.Next()
}

func (h *VoiceHandler) handleLiveSocket(c *websocket.Conn) {
	student, _ := c.Locals(jwtPkg.StudentLocalsKey).(entity.StudentLoginData)
	sessionID, _ := c.Locals(sessionLocalsKey).(string)
	requestID, _ := c.Locals(middleware.RequestIDKey).(string)

	c.SetPingHandler(func(data string) error {
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			h.log.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	ctx := contextPkg.WithSessionID(contextPkg.WithRequestID(context.Background(), requestID), sessionID)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"session_id": sessionID,
	}).Info("Live voice socket connected")
	defer h.log.WithFields(log.Fields{
		"request_id": requestID,
		"session_id": sessionID,
	}).Info("Live voice socket disconnected")

	if err := h.serveLive(ctx, c, student.ID, sessionID); errors.Is(err, errSessionEnded) {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended")
		_ = c.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	}
}

type liveSession struct {
	h         *VoiceHandler
	conn      liveConn
	studentID string
	sessionID string

	writeMu sync.Mutex

	// cmdMu orders commands against the stored navigation context.
	cmdMu         sync.Mutex
	lastReadAloud string

	recognizer *audio.ClipRecognizer
	listener   *speech.Session
	narrator   *audio.Narrator
	player     *speech.Player

	mimeType string
}

// serveLive runs the socket until the client goes away or the session
// ends. Any capture or playback still running is cancelled on return.
func (h *VoiceHandler) serveLive(ctx context.Context, conn liveConn, studentID, sessionID string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s := &liveSession{
		h:         h,
		conn:      conn,
		studentID: studentID,
		sessionID: sessionID,
	}
	s.narrator = h.voiceService.NewNarrator(func(e audio.PlaybackEvent) error {
		return s.send(voice.ServerMessage{Type: voice.ServerPlayback, Playback: e})
	})
	s.player = speech.NewPlayer(h.log, s.narrator)
	if recognizer, err := h.voiceService.NewRecognizer(); err == nil {
		s.recognizer = recognizer
		s.listener = speech.NewSession(h.log, recognizer)
	}

	g, gctx := errgroup.WithContext(ctx)
	stopUnblock := context.AfterFunc(gctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stopUnblock()

	g.Go(func() error {
		defer cancel()
		return s.readLoop(gctx, g)
	})

	err := g.Wait()

	s.player.Close()
	if s.listener != nil {
		s.listener.Close()
	}

	if err != nil && !errors.Is(err, errSessionEnded) && ctx.Err() == nil {
		h.log.WithFields(log.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"session_id": sessionID,
			"error":      err.Error(),
		}).Debug("Live voice loop stopped")
	}
	return err
}

func (s *liveSession) readLoop(ctx context.Context, g *errgroup.Group) error {
	s.sendState(false)

	for {
		if err := s.conn.SetReadDeadline(time.Now().Add(liveReadTimeout)); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			return err
		}

		switch messageType {
		case websocket.BinaryMessage:
			s.feed(data)
		case websocket.TextMessage:
			var msg voice.ClientMessage
			if err := jsoniter.Unmarshal(data, &msg); err != nil {
				s.sendError("malformed message")
				continue
			}
			if err := s.dispatch(ctx, g, msg); err != nil {
				return err
			}
		}
	}
}

func (s *liveSession) dispatch(ctx context.Context, g *errgroup.Group, msg voice.ClientMessage) error {
	switch msg.Type {
	case voice.ClientListen:
		s.listen(ctx, g, msg.MimeType)
	case voice.ClientStop:
		if s.listener != nil {
			s.listener.Stop()
		}
	case voice.ClientTranscript:
		return s.command(ctx, msg.Transcript)
	case voice.ClientQuizAnswer:
		return s.answer(ctx, msg.Answer)
	case voice.ClientPlay:
		s.play(ctx)
	case voice.ClientPause:
		s.player.Pause()
	case voice.ClientStopSpeaking:
		s.player.Stop()
	case voice.ClientPlaybackEnded:
		s.narrator.Ended(msg.PlaybackID)
	default:
		s.sendError("unknown message type")
	}
	return nil
}

func (s *liveSession) listen(ctx context.Context, g *errgroup.Group, mimeType string) {
	if s.listener == nil {
		s.sendError(voice.ErrSpeechUnavailable.Error())
		return
	}

	results, ok := s.listener.Start(ctx)
	if !ok {
		s.sendState(true)
		return
	}
	s.recognizer.Open()
	s.mimeType = mimeType
	s.sendState(true)

	g.Go(func() error {
		result := <-results
		s.sendState(false)

		if !result.OK() {
			if ctx.Err() != nil || errors.Is(result.Err, context.Canceled) {
				return nil
			}
			s.sendError(voice.ErrRecognitionFailed.Error())
			return nil
		}
		return s.command(ctx, result.Transcript)
	})
}

func (s *liveSession) feed(data []byte) {
	if s.listener == nil || s.listener.Status() != speech.StatusListening {
		s.sendError("not listening")
		return
	}
	if !s.recognizer.Feed(audio.Clip{Data: data, MimeType: s.mimeType}) {
		s.sendError("still processing the previous clip")
	}
}

// command applies one transcript and performs its side effects on this
// connection: playback control and read-aloud.
func (s *liveSession) command(ctx context.Context, transcript string) error {
	s.send(voice.ServerMessage{Type: voice.ServerTranscript, Transcript: speech.Normalize(transcript)})

	s.cmdMu.Lock()
	resp, err := s.h.voiceService.Navigate(ctx, s.studentID, s.sessionID, transcript)
	if err == nil {
		switch {
		case resp.Context == nil || resp.Context.State != navigation.StateLessonDetail:
			s.lastReadAloud = ""
		case resp.Outcome.ReadAloud != "":
			s.lastReadAloud = resp.Outcome.ReadAloud
		}
	}
	s.cmdMu.Unlock()

	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		s.sendError(publicMessage(err))
		if errors.Is(err, voice.ErrSessionNotFound) || errors.Is(err, voice.ErrSessionForbidden) {
			return errSessionEnded
		}
		return nil
	}

	if resp.Outcome.StopPlayback {
		s.player.Stop()
	}
	s.send(voice.ServerMessage{Type: voice.ServerAction, Command: resp})

	if resp.Ended {
		return errSessionEnded
	}
	if resp.Outcome.ReadAloud != "" {
		s.player.Play(ctx, resp.Outcome.ReadAloud)
	}
	return nil
}

func (s *liveSession) answer(ctx context.Context, answer string) error {
	s.cmdMu.Lock()
	resp, err := s.h.voiceService.AnswerQuiz(ctx, s.studentID, s.sessionID, answer)
	s.cmdMu.Unlock()

	if err != nil {
		s.sendError(publicMessage(err))
		if errors.Is(err, voice.ErrSessionNotFound) {
			return errSessionEnded
		}
		return nil
	}
	s.send(voice.ServerMessage{Type: voice.ServerQuiz, Quiz: resp})
	return nil
}

// play resumes or restarts the last narration, falling back to the text
// of the open lesson.
func (s *liveSession) play(ctx context.Context) {
	s.cmdMu.Lock()
	text := s.lastReadAloud
	s.cmdMu.Unlock()

	if text == "" {
		session, err := s.h.voiceService.GetSession(ctx, s.studentID, s.sessionID)
		if err != nil {
			s.sendError(publicMessage(err))
			return
		}
		if session.Context.State == navigation.StateLessonDetail && session.Context.CurrentLesson != nil {
			text = session.Context.CurrentLesson.LessonText
		}
	}
	if text == "" {
		return
	}
	s.player.Play(ctx, text)
}

func (s *liveSession) sendState(listening bool) {
	s.send(voice.ServerMessage{Type: voice.ServerState, Listening: &listening})
}

func (s *liveSession) sendError(message string) {
	s.send(voice.ServerMessage{Type: voice.ServerError, Error: message})
}

// publicMessage hides internal error detail from the client.
func publicMessage(err error) string {
	var respErr *response.Error
	if errors.As(err, &respErr) {
		return respErr.Error()
	}
	return "internal error"
}

func (s *liveSession) send(msg voice.ServerMessage) error {
	data, err := jsoniter.Marshal(msg)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}
