package board

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/matt-steen/taskboard/pkg/api"
	"github.com/matt-steen/taskboard/pkg/realtime"
	"golang.org/x/sync/errgroup"
)

// TaskInput holds the editable fields of a task.
type TaskInput struct {
	Title       string
	Description string
	Assignee    string
	DueDate     string
}

func (in TaskInput) validate() (TaskInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.DueDate = strings.TrimSpace(in.DueDate)

	if in.Title == "" {
		return in, ErrTitleRequired
	}

	if in.DueDate != "" {
		if _, err := time.Parse(DueDateFormat, in.DueDate); err != nil {
			return in, ErrInvalidDueDate
		}
	}

	return in, nil
}

func cleanTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrTitleRequired
	}

	return title, nil
}

// after runs once a write has succeeded: peers are told and the board is reloaded.
func (r *Reconciler) after(ctx context.Context, kind realtime.Kind, event realtime.Event) error {
	r.emit(ctx, kind, event)

	return r.Load(ctx)
}

// CreateTask adds a task to the end of a column.
func (r *Reconciler) CreateTask(ctx context.Context, columnID string, in TaskInput) error {
	in, err := in.validate()
	if err != nil {
		return err
	}

	err = r.api.CreateTask(ctx, api.NewTask{
		BoardID:     r.boardID,
		ColumnID:    columnID,
		Title:       in.Title,
		Description: in.Description,
		Assignee:    in.Assignee,
		DueDate:     in.DueDate,
	})
	if err != nil {
		return err
	}

	return r.after(ctx, realtime.TaskCreated, realtime.Event{ToColumnID: columnID})
}

// UpdateTask replaces a task's editable fields.
func (r *Reconciler) UpdateTask(ctx context.Context, taskID string, in TaskInput) error {
	in, err := in.validate()
	if err != nil {
		return err
	}

	err = r.api.UpdateTask(ctx, taskID, api.TaskUpdate{
		Title:       in.Title,
		Description: in.Description,
		Assignee:    in.Assignee,
		DueDate:     in.DueDate,
	})
	if err != nil {
		return err
	}

	return r.after(ctx, realtime.TaskUpdated, realtime.Event{TaskID: taskID})
}

// DeleteTask removes a task.
func (r *Reconciler) DeleteTask(ctx context.Context, taskID string) error {
	if err := r.api.DeleteTask(ctx, taskID); err != nil {
		return err
	}

	return r.after(ctx, realtime.TaskUpdated, realtime.Event{TaskID: taskID})
}

// CreateColumn appends a column to the board.
func (r *Reconciler) CreateColumn(ctx context.Context, title string) error {
	title, err := cleanTitle(title)
	if err != nil {
		return err
	}

	if err := r.api.CreateColumn(ctx, r.boardID, title); err != nil {
		return err
	}

	return r.after(ctx, realtime.ColumnUpdated, realtime.Event{})
}

// RenameColumn changes a column's title.
func (r *Reconciler) RenameColumn(ctx context.Context, columnID, title string) error {
	title, err := cleanTitle(title)
	if err != nil {
		return err
	}

	if err := r.api.RenameColumn(ctx, columnID, title); err != nil {
		return err
	}

	return r.after(ctx, realtime.ColumnUpdated, realtime.Event{ToColumnID: columnID})
}

// DeleteColumn removes a column. A column that still holds tasks locally is refused
// without contacting the server.
func (r *Reconciler) DeleteColumn(ctx context.Context, columnID string) error {
	col, _, ok := r.Snapshot().Column(columnID)
	if !ok {
		return ErrColumnNotFound
	}

	if len(col.Tasks) > 0 {
		return fmt.Errorf("%w: %q has %d", ErrColumnNotEmpty, col.Title, len(col.Tasks))
	}

	if err := r.api.DeleteColumn(ctx, columnID); err != nil {
		return err
	}

	return r.after(ctx, realtime.ColumnUpdated, realtime.Event{FromColumnID: columnID})
}

// Invite adds users to the board. Invitations are sent concurrently; the board is
// reloaded once all of them succeed.
func (r *Reconciler) Invite(ctx context.Context, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}

	group, gctx := errgroup.WithContext(ctx)

	for _, id := range userIDs {
		group.Go(func() error {
			return r.api.Invite(gctx, r.boardID, id)
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	return r.Load(ctx)
}
