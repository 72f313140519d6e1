package board

import (
	"context"
	"slices"
	"sync"

	"github.com/matt-steen/taskboard/pkg/api"
	"github.com/matt-steen/taskboard/pkg/realtime"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// hydrateLimit bounds concurrent task fetches per column.
const hydrateLimit = 8

// API is the part of the API client used by a board view.
type API interface {
	ListBoards(ctx context.Context) ([]api.Board, error)
	ListColumns(ctx context.Context, boardID string) ([]api.Column, error)
	ListUsers(ctx context.Context, boardID string) ([]api.User, error)
	Me(ctx context.Context) (api.User, error)
	GetTask(ctx context.Context, taskID string) (api.Task, error)
	CreateTask(ctx context.Context, task api.NewTask) error
	UpdateTask(ctx context.Context, taskID string, update api.TaskUpdate) error
	MoveTask(ctx context.Context, taskID string, move api.Move) error
	DeleteTask(ctx context.Context, taskID string) error
	CreateColumn(ctx context.Context, boardID, title string) error
	RenameColumn(ctx context.Context, columnID, title string) error
	DeleteColumn(ctx context.Context, columnID string) error
	Invite(ctx context.Context, boardID, userID string) error
}

// Reconciler owns the in-memory state of one board view. Loads replace the whole state;
// drag moves are applied optimistically and reverted by a load if the server rejects them.
// Any peer notification for the board triggers a load.
type Reconciler struct {
	boardID string
	api     API
	sub     realtime.Subscriber

	// peer-triggered loads run under ctx, cancelled by Close
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.RWMutex
	state     State
	board     *api.Board
	columns   []*Column
	users     []api.User
	me        *api.User
	loaded    bool
	closed    bool
	pending   int
	listeners []func()
}

// NewReconciler creates a Reconciler for boardID and registers it for peer notifications.
// Nothing is fetched until Load.
func NewReconciler(boardID string, client API, sub realtime.Subscriber) *Reconciler {
	ctx, cancel := context.WithCancel(context.Background())

	r := &Reconciler{
		boardID: boardID,
		api:     client,
		sub:     sub,
		ctx:     ctx,
		cancel:  cancel,
		state:   Loading,
	}

	for _, kind := range realtime.Kinds() {
		sub.On(kind, r.handlePeer)
	}

	return r
}

// BoardID returns the id of the board being viewed.
func (r *Reconciler) BoardID() string {
	return r.boardID
}

// OnChange registers fn to be called after every state change. fn must not block.
func (r *Reconciler) OnChange(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.listeners = append(r.listeners, fn)
}

func (r *Reconciler) notify() {
	r.mu.RLock()
	listeners := slices.Clone(r.listeners)
	r.mu.RUnlock()

	for _, fn := range listeners {
		fn()
	}
}

// State returns the current lifecycle state.
func (r *Reconciler) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.state
}

// Snapshot returns the current state. The returned columns must not be modified.
func (r *Reconciler) Snapshot() View {
	r.mu.RLock()
	defer r.mu.RUnlock()

	view := View{
		State:   r.state,
		Columns: slices.Clone(r.columns),
		Users:   slices.Clone(r.users),
	}

	if r.board != nil {
		b := *r.board
		view.Board = &b
	}

	if r.me != nil {
		me := *r.me
		view.Me = &me
	}

	return view
}

func (r *Reconciler) handlePeer(event realtime.Event) {
	if event.BoardID != r.boardID {
		return
	}

	log.Debug().Str("board", r.boardID).Str("event", string(event.Kind)).Msg("peer change, reloading")

	if err := r.Load(r.ctx); err != nil {
		log.Warn().Err(err).Str("board", r.boardID).Msg("reload after peer change failed")
	}
}

// Close ends the view. Work still in flight completes without touching the state.
func (r *Reconciler) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()

		return nil
	}

	r.closed = true
	r.mu.Unlock()

	r.cancel()

	return r.sub.Disconnect()
}

func (r *Reconciler) isClosed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.closed
}

// Load fetches the board, its columns and every task they reference, replacing the
// current state. Tasks that cannot be fetched are dropped. A board missing from the
// board list moves the view to Absent and returns ErrBoardNotFound.
func (r *Reconciler) Load(ctx context.Context) error {
	if r.isClosed() {
		return nil
	}

	boards, err := r.api.ListBoards(ctx)
	if err != nil {
		r.fail(err)

		return err
	}

	idx := slices.IndexFunc(boards, func(b api.Board) bool { return b.ID == r.boardID })
	if idx < 0 {
		r.commit(func() {
			r.state = Absent
			r.board = nil
			r.columns = nil
		})

		return ErrBoardNotFound
	}

	board := boards[idx]

	cols, err := r.api.ListColumns(ctx, r.boardID)
	if err != nil {
		r.fail(err)

		return err
	}

	columns := make([]*Column, len(cols))
	for i, col := range cols {
		columns[i] = &Column{Column: col, Tasks: r.hydrate(ctx, col)}
	}

	users, me := r.loadUsers(ctx)

	r.commit(func() {
		r.board = &board
		r.columns = columns
		r.loaded = true

		if users != nil {
			r.users = users
		}

		if me != nil {
			r.me = me
		}

		if r.pending == 0 {
			r.state = Ready
		}
	})

	if err := r.sub.Join(ctx, r.boardID); err != nil {
		log.Warn().Err(err).Str("board", r.boardID).Msg("unable to join board channel")
	}

	return nil
}

// commit applies fn under the lock unless the view was closed, then notifies listeners.
func (r *Reconciler) commit(fn func()) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()

		return
	}

	fn()
	r.mu.Unlock()

	r.notify()
}

// fail records a load failure. Only the first load can put the view into Error; later
// failures keep the last good state.
func (r *Reconciler) fail(err error) {
	log.Warn().Err(err).Str("board", r.boardID).Msg("load failed")

	r.commit(func() {
		if !r.loaded {
			r.state = Error
		}
	})
}

// hydrate fetches a column's tasks in parallel, preserving order and dropping failures.
func (r *Reconciler) hydrate(ctx context.Context, col api.Column) []api.Task {
	fetched := make([]*api.Task, len(col.TaskOrder))

	var group errgroup.Group

	group.SetLimit(hydrateLimit)

	for i, id := range col.TaskOrder {
		group.Go(func() error {
			task, err := r.api.GetTask(ctx, id)
			if err != nil {
				log.Debug().Err(err).Str("column", col.ID).Str("task", id).Msg("dropping task that failed to load")

				return nil
			}

			fetched[i] = &task

			return nil
		})
	}

	_ = group.Wait()

	tasks := make([]api.Task, 0, len(fetched))

	for _, task := range fetched {
		if task != nil {
			tasks = append(tasks, *task)
		}
	}

	return tasks
}

// loadUsers fetches the board's users and, once, the current user. Failures leave the
// previous values in place.
func (r *Reconciler) loadUsers(ctx context.Context) ([]api.User, *api.User) {
	users, err := r.api.ListUsers(ctx, r.boardID)
	if err != nil {
		log.Warn().Err(err).Str("board", r.boardID).Msg("unable to load users")

		users = nil
	}

	r.mu.RLock()
	known := r.me != nil
	r.mu.RUnlock()

	if known {
		return users, nil
	}

	me, err := r.api.Me(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("unable to load current user")

		return users, nil
	}

	return users, &me
}
