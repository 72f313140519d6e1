package realtime

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeTimeout = 5 * time.Second

// WebSocket is a Subscriber speaking JSON event frames over a websocket. The connection is
// opened on first use.
type WebSocket struct {
	dispatcher

	url    string
	creds  CredentialSource
	dialer *websocket.Dialer

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
	done   chan struct{}
}

// NewWebSocket creates a WebSocket subscriber for the given ws:// or wss:// url.
func NewWebSocket(url string, creds CredentialSource) *WebSocket {
	return &WebSocket{
		url:    url,
		creds:  creds,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}
}

func (w *WebSocket) connect(ctx context.Context) (*websocket.Conn, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, ErrDisconnected
	}

	if w.conn != nil {
		return w.conn, nil
	}

	header := http.Header{}

	if w.creds != nil {
		if token, ok := w.creds.Token(); ok {
			header.Set("Authorization", "Bearer "+token)
		}
	}

	conn, resp, err := w.dialer.DialContext(ctx, w.url, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	if err != nil {
		return nil, fmt.Errorf("error connecting to %s: %w", w.url, err)
	}

	w.conn = conn
	w.done = make(chan struct{})

	go w.readLoop(conn, w.done)

	log.Info().Str("url", w.url).Msg("realtime connected")

	return conn, nil
}

func (w *WebSocket) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			w.mu.Lock()
			closed := w.closed
			if w.conn == conn {
				w.conn = nil
			}
			w.mu.Unlock()

			if !closed {
				log.Warn().Err(err).Msg("realtime connection lost")
			}

			return
		}

		w.dispatch(data)
	}
}

func (w *WebSocket) send(ctx context.Context, name string, data any) error {
	buf, err := encodeFrame(name, data)
	if err != nil {
		return err
	}

	conn, err := w.connect(ctx)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	deadline := time.Now().Add(writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	_ = conn.SetWriteDeadline(deadline)

	if err := conn.WriteMessage(websocket.TextMessage, buf); err != nil {
		return fmt.Errorf("error sending %s: %w", name, err)
	}

	return nil
}

// Join subscribes to a board's notifications. Joining the current board again is a no-op.
func (w *WebSocket) Join(ctx context.Context, boardID string) error {
	if w.joined() == boardID {
		w.mu.Lock()
		connected := w.conn != nil
		w.mu.Unlock()

		if connected {
			return nil
		}
	}

	if err := w.send(ctx, joinBoard, boardID); err != nil {
		return err
	}

	w.join(boardID)

	log.Debug().Str("board", boardID).Msg("joined board channel")

	return nil
}

// Emit publishes a notification to the other clients on the board.
func (w *WebSocket) Emit(ctx context.Context, kind Kind, event Event) error {
	return w.send(ctx, string(kind), event)
}

// Disconnect closes the connection. The subscriber cannot be reused afterwards.
func (w *WebSocket) Disconnect() error {
	w.mu.Lock()
	w.closed = true
	conn := w.conn
	done := w.done
	w.conn = nil
	w.mu.Unlock()

	if conn == nil {
		return nil
	}

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
	err := conn.Close()

	<-done

	return err
}
