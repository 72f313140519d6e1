package board

import (
	"context"
	"fmt"
	"slices"

	"github.com/matt-steen/taskboard/pkg/api"
	"github.com/matt-steen/taskboard/pkg/realtime"
	"github.com/rs/zerolog/log"
)

// Position is a slot in a column.
type Position struct {
	ColumnID string
	Index    int
}

// Move describes a drag from one position to another. TaskID must be the task at From.
type Move struct {
	TaskID string
	From   Position
	To     Position
}

// Move applies m locally, then asks the server to persist it. On success the move is
// broadcast to peers; on failure the local change is discarded by reloading and the
// server's error is returned. Moving a task onto its own position does nothing.
func (r *Reconciler) Move(ctx context.Context, m Move) error {
	if m.From == m.To {
		return nil
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()

		return ErrClosed
	}

	next, err := applyMove(r.columns, m)
	if err != nil {
		r.mu.Unlock()

		return err
	}

	r.columns = next
	r.state = Reconciling
	r.pending++
	r.mu.Unlock()

	r.notify()

	err = r.api.MoveTask(ctx, m.TaskID, api.Move{
		FromColumnID: m.From.ColumnID,
		ToColumnID:   m.To.ColumnID,
		ToIndex:      m.To.Index,
	})

	r.settle()

	if err != nil {
		log.Warn().Err(err).Str("task", m.TaskID).Msg("move rejected, reloading")

		if loadErr := r.Load(ctx); loadErr != nil {
			log.Warn().Err(loadErr).Msg("reload after rejected move failed")
		}

		return fmt.Errorf("move of task %s reverted: %w", m.TaskID, err)
	}

	r.emit(ctx, realtime.TaskMoved, realtime.Event{
		TaskID:       m.TaskID,
		FromColumnID: m.From.ColumnID,
		ToColumnID:   m.To.ColumnID,
		ToIndex:      m.To.Index,
	})

	return nil
}

// settle ends one in-flight move.
func (r *Reconciler) settle() {
	r.commit(func() {
		r.pending--
		if r.pending == 0 && r.state == Reconciling {
			r.state = Ready
		}
	})
}

func (r *Reconciler) emit(ctx context.Context, kind realtime.Kind, event realtime.Event) {
	if r.isClosed() {
		return
	}

	event.BoardID = r.boardID

	if err := r.sub.Emit(ctx, kind, event); err != nil {
		log.Warn().Err(err).Str("event", string(kind)).Msg("unable to notify peers")
	}
}

// applyMove returns a new column list with m applied. Only the affected columns are
// copied; columns is left untouched.
func applyMove(columns []*Column, m Move) ([]*Column, error) {
	si := slices.IndexFunc(columns, func(c *Column) bool { return c.ID == m.From.ColumnID })
	di := slices.IndexFunc(columns, func(c *Column) bool { return c.ID == m.To.ColumnID })

	if si < 0 || di < 0 {
		return nil, fmt.Errorf("%w: unknown column", ErrInvalidMove)
	}

	source := columns[si].clone()
	if m.From.Index < 0 || m.From.Index >= len(source.Tasks) {
		return nil, fmt.Errorf("%w: no task at index %d of column %s", ErrInvalidMove, m.From.Index, source.ID)
	}

	if source.Tasks[m.From.Index].ID != m.TaskID {
		return nil, fmt.Errorf("%w: task %s is not at index %d", ErrInvalidMove, m.TaskID, m.From.Index)
	}

	dest := source
	if di != si {
		dest = columns[di].clone()
	}

	task := source.Tasks[m.From.Index]
	source.Tasks = slices.Delete(source.Tasks, m.From.Index, m.From.Index+1)

	index := min(max(m.To.Index, 0), len(dest.Tasks))
	dest.Tasks = slices.Insert(dest.Tasks, index, task)

	next := slices.Clone(columns)
	next[si] = source
	next[di] = dest

	return next, nil
}
