package websocketPkg

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"Edunabha/pkg/audio"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

const defaultStreamURL = "ws://localhost:8000/api/v1/stt/ws"

var ErrClosed = errors.New("stream transcriber closed")

// IStreamTranscriber sends clips to a remote speech-to-text service over a
// persistent websocket.
type IStreamTranscriber interface {
	audio.Transcriber
	IsConnected() bool
	Reconnect() error
	Close()
}

type sttRequest struct {
	Language string `json:"language"`
	MimeType string `json:"mime_type"`
}

type sttResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

type streamClient struct {
	log      *logrus.Logger
	url      string
	language string
	header   http.Header

	mu   sync.Mutex
	conn *websocket.Conn
	stop chan struct{}
	// serializes request/response exchanges on the shared connection
	exchange sync.Mutex
	closed   bool

	pingInterval time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewStreamTranscriber targets STT_STREAM_URL. The connection is opened on
// first use and re-dialed after any transport error.
func NewStreamTranscriber(log *logrus.Logger, language string) IStreamTranscriber {
	url := os.Getenv("STT_STREAM_URL")
	if url == "" {
		url = defaultStreamURL
	}
	return newStreamClient(log, url, language)
}

func newStreamClient(log *logrus.Logger, url, language string) *streamClient {
	return &streamClient{
		log:          log,
		url:          url,
		language:     language,
		pingInterval: 30 * time.Second,
		readTimeout:  15 * time.Second,
		writeTimeout: 5 * time.Second,
	}
}

func (c *streamClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *streamClient) Reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	c.dropLocked()

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.Dial(c.url, c.header)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		if err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.writeTimeout)); err != nil {
			c.log.WithField("error", err.Error()).Debug("Error sending pong")
		}
		return nil
	})

	stop := make(chan struct{})
	c.conn = conn
	c.stop = stop
	go c.keepAlive(conn, stop)

	c.log.WithField("url", c.url).Info("Connected to speech-to-text stream")
	return nil
}

func (c *streamClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.dropLocked()
}

func (c *streamClient) dropLocked() {
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *streamClient) drop(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == conn {
		c.dropLocked()
	}
}

func (c *streamClient) keepAlive(conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeTimeout))
			if err != nil {
				c.log.WithField("error", err.Error()).Warn("Ping failed, marking stream connection as dead")
				go c.drop(conn)
				return
			}
		}
	}
}

func (c *streamClient) connection() (*websocket.Conn, error) {
	c.mu.Lock()
	conn, closed := c.conn, c.closed
	c.mu.Unlock()

	if closed {
		return nil, ErrClosed
	}
	if conn != nil {
		return conn, nil
	}

	if err := c.Reconnect(); err != nil {
		return nil, fmt.Errorf("cannot connect to speech-to-text service: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil, ErrClosed
	}
	return c.conn, nil
}

// Transcribe sends a JSON header frame followed by the clip as a binary
// frame and waits for one JSON result frame.
func (c *streamClient) Transcribe(ctx context.Context, clip audio.Clip) (string, error) {
	if len(clip.Data) == 0 {
		return "", audio.ErrEmptyClip
	}

	c.exchange.Lock()
	defer c.exchange.Unlock()

	conn, err := c.connection()
	if err != nil {
		return "", err
	}

	// the exchange deadline is set first so cancellation can only shorten it
	_ = conn.SetReadDeadline(time.Now().Add(c.writeTimeout + c.readTimeout))
	stopWatch := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stopWatch()

	header, err := jsoniter.Marshal(sttRequest{Language: c.language, MimeType: clip.MimeType})
	if err != nil {
		return "", err
	}

	_ = conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, header); err != nil {
		c.drop(conn)
		return "", fmt.Errorf("error sending clip header: %w", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, clip.Data); err != nil {
		c.drop(conn)
		return "", fmt.Errorf("error sending clip: %w", err)
	}
	if err := ctx.Err(); err != nil {
		c.drop(conn)
		return "", err
	}

	_, message, err := conn.ReadMessage()
	if err != nil {
		c.drop(conn)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("error reading transcript: %w", err)
	}
	_ = conn.SetReadDeadline(time.Time{})
	_ = conn.SetWriteDeadline(time.Time{})

	var result sttResponse
	if err := jsoniter.Unmarshal(message, &result); err != nil {
		return "", fmt.Errorf("error unmarshaling transcript: %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("speech-to-text service: %s", result.Error)
	}

	return result.Text, nil
}
