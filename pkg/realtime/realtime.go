// Package realtime delivers board change notifications between clients viewing the same board.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"
)

// ErrDisconnected is returned by a subscriber used after Disconnect.
var ErrDisconnected = errors.New("realtime subscriber is disconnected")

// Kind names a change notification.
type Kind string

// These are the notifications exchanged on a board channel.
const (
	TaskMoved     Kind = "taskMoved"
	TaskCreated   Kind = "taskCreated"
	TaskUpdated   Kind = "taskUpdated"
	ColumnUpdated Kind = "columnUpdated"

	joinBoard = "joinBoard"
)

// Kinds lists every notification kind.
func Kinds() []Kind {
	return []Kind{TaskMoved, TaskCreated, TaskUpdated, ColumnUpdated}
}

// Event is the payload of a notification. Only BoardID is guaranteed; the move fields are
// set for TaskMoved.
type Event struct {
	Kind         Kind   `json:"-"`
	BoardID      string `json:"boardId"`
	TaskID       string `json:"taskId,omitempty"`
	FromColumnID string `json:"fromColumnId,omitempty"`
	ToColumnID   string `json:"toColumnId,omitempty"`
	ToIndex      int    `json:"toIndex"`
}

// Handler receives notifications for the joined board.
type Handler func(Event)

// Subscriber joins one board's channel at a time.
type Subscriber interface {
	Join(ctx context.Context, boardID string) error
	On(kind Kind, handler Handler)
	Emit(ctx context.Context, kind Kind, event Event) error
	Disconnect() error
}

// CredentialSource supplies the bearer token presented when connecting.
type CredentialSource interface {
	Token() (string, bool)
}

// frame is the envelope used on the wire.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func encodeFrame(name string, data any) ([]byte, error) {
	raw, err := sonic.ConfigStd.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("error encoding %s payload: %w", name, err)
	}

	buf, err := sonic.ConfigStd.Marshal(frame{Event: name, Data: raw})
	if err != nil {
		return nil, fmt.Errorf("error encoding %s frame: %w", name, err)
	}

	return buf, nil
}

// dispatcher routes decoded frames to handlers, dropping events for other boards.
type dispatcher struct {
	mu       sync.RWMutex
	boardID  string
	handlers map[Kind][]Handler
}

func (d *dispatcher) On(kind Kind, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.handlers == nil {
		d.handlers = map[Kind][]Handler{}
	}

	d.handlers[kind] = append(d.handlers[kind], handler)
}

func (d *dispatcher) joined() string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.boardID
}

func (d *dispatcher) join(boardID string) {
	d.mu.Lock()
	d.boardID = boardID
	d.mu.Unlock()
}

func (d *dispatcher) dispatch(raw []byte) {
	var f frame

	if err := sonic.ConfigStd.Unmarshal(raw, &f); err != nil {
		log.Warn().Err(err).Msg("dropping malformed realtime frame")

		return
	}

	kind := Kind(f.Event)

	d.mu.RLock()
	boardID := d.boardID
	handlers := append([]Handler(nil), d.handlers[kind]...)
	d.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	var event Event

	if err := sonic.ConfigStd.Unmarshal(f.Data, &event); err != nil {
		log.Warn().Err(err).Str("event", f.Event).Msg("dropping malformed realtime payload")

		return
	}

	event.Kind = kind

	if boardID == "" || event.BoardID != boardID {
		log.Debug().Str("event", f.Event).Str("board", event.BoardID).Msg("ignoring event for another board")

		return
	}

	for _, handler := range handlers {
		handler(event)
	}
}
