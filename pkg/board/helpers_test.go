package board_test

import (
	"context"
	"sync"
	"testing"

	"github.com/matt-steen/taskboard/pkg/api"
	"github.com/matt-steen/taskboard/pkg/apitest"
	"github.com/matt-steen/taskboard/pkg/board"
	"github.com/matt-steen/taskboard/pkg/realtime"
)

type staticToken string

func (s staticToken) Token() (string, bool) {
	return string(s), s != ""
}

// fakeSub records joins and emits and lets tests deliver events directly to handlers.
type fakeSub struct {
	mu           sync.Mutex
	handlers     map[realtime.Kind][]realtime.Handler
	joined       []string
	emitted      []realtime.Event
	disconnected bool
}

func newFakeSub() *fakeSub {
	return &fakeSub{handlers: map[realtime.Kind][]realtime.Handler{}}
}

func (f *fakeSub) Join(ctx context.Context, boardID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.joined = append(f.joined, boardID)

	return nil
}

func (f *fakeSub) On(kind realtime.Kind, handler realtime.Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.handlers[kind] = append(f.handlers[kind], handler)
}

func (f *fakeSub) Emit(ctx context.Context, kind realtime.Kind, event realtime.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	event.Kind = kind
	f.emitted = append(f.emitted, event)

	return nil
}

func (f *fakeSub) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.disconnected = true

	return nil
}

func (f *fakeSub) deliver(event realtime.Event) {
	f.mu.Lock()
	handlers := append([]realtime.Handler(nil), f.handlers[event.Kind]...)
	f.mu.Unlock()

	for _, h := range handlers {
		h(event)
	}
}

func (f *fakeSub) events() []realtime.Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]realtime.Event(nil), f.emitted...)
}

type fixture struct {
	server  *apitest.Server
	client  *api.Client
	sub     *fakeSub
	boardID string
	c1      string
	c2      string
	bob     string
}

// newFixture seeds board b1 with columns c1 [t1, t2] and c2 [], owned by Ada, with Bob
// registered but not a member.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	server := apitest.New(t)
	ada, token := server.AddUser("Ada", "ada@example.com", "pw")
	bob, _ := server.AddUser("Bob", "bob@example.com", "pw")

	boardID := server.AddBoard("Sprint", ada)
	c1 := server.AddColumn(boardID, "Todo")
	c2 := server.AddColumn(boardID, "Done")
	server.AddTask(c1, "t1", "first")
	server.AddTask(c1, "t2", "second")

	return &fixture{
		server:  server,
		client:  api.New(server.URL, staticToken(token)),
		sub:     newFakeSub(),
		boardID: boardID,
		c1:      c1,
		c2:      c2,
		bob:     bob,
	}
}

func (f *fixture) reconciler(t *testing.T) *board.Reconciler {
	t.Helper()

	r := board.NewReconciler(f.boardID, f.client, f.sub)
	t.Cleanup(func() { r.Close() })

	return r
}

func (f *fixture) loaded(t *testing.T) *board.Reconciler {
	t.Helper()

	r := f.reconciler(t)
	if err := r.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	return r
}

func taskIDs(t *testing.T, view board.View, columnID string) []string {
	t.Helper()

	col, _, ok := view.Column(columnID)
	if !ok {
		t.Fatalf("column %s not in view", columnID)
	}

	return col.TaskIDs()
}
