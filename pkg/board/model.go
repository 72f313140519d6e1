package board

import (
	"slices"

	"github.com/matt-steen/taskboard/pkg/api"
)

// DueDateFormat is the layout accepted for task due dates.
const DueDateFormat = "2006-01-02"

// State is the lifecycle state of a board view.
type State int

// These are the states of a board view.
const (
	Loading State = iota
	Ready
	Reconciling
	Error
	Absent
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Reconciling:
		return "reconciling"
	case Error:
		return "error"
	case Absent:
		return "absent"
	}

	return "unknown"
}

// Column is a column with its tasks hydrated. Columns held by a View are never modified;
// every change produces a new Column.
type Column struct {
	api.Column
	// Tasks follows TaskOrder as of the last load, minus tasks that could not be fetched,
	// with any optimistic moves applied since.
	Tasks []api.Task
}

func (c *Column) clone() *Column {
	out := *c
	out.TaskOrder = slices.Clone(c.TaskOrder)
	out.Tasks = slices.Clone(c.Tasks)

	return &out
}

// TaskIDs returns the ids of the column's tasks in order.
func (c *Column) TaskIDs() []string {
	ids := make([]string, len(c.Tasks))

	for i, task := range c.Tasks {
		ids[i] = task.ID
	}

	return ids
}

// View is a consistent snapshot of a board view.
type View struct {
	State   State
	Board   *api.Board
	Columns []*Column
	Users   []api.User
	Me      *api.User
}

// Column looks up a column by id.
func (v View) Column(id string) (*Column, int, bool) {
	for i, col := range v.Columns {
		if col.ID == id {
			return col, i, true
		}
	}

	return nil, -1, false
}

// AssigneeName resolves a task's assignee to a display name.
func (v View) AssigneeName(task api.Task) string {
	for _, user := range v.Users {
		if user.ID == string(task.Assignee) {
			return user.Name
		}
	}

	return "Unknown"
}

// InviteCandidates lists the users that can be invited or assigned, excluding the current user.
func (v View) InviteCandidates() []api.User {
	out := make([]api.User, 0, len(v.Users))

	for _, user := range v.Users {
		if v.Me != nil && user.ID == v.Me.ID {
			continue
		}

		out = append(out, user)
	}

	return out
}
