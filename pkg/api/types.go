package api

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

var errMissingID = errors.New("missing _id")

// Ref is an identifier that the API sends either as a bare string or as an embedded
// document carrying an _id.
type Ref string

// UnmarshalJSON accepts "id", {"_id": "id"} and null.
func (r *Ref) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = ""

		return nil
	}

	var id string
	if err := sonic.ConfigStd.Unmarshal(data, &id); err == nil {
		*r = Ref(id)

		return nil
	}

	var doc struct {
		ID string `json:"_id"`
	}

	if err := sonic.ConfigStd.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("reference is neither an id nor a document: %w", err)
	}

	*r = Ref(doc.ID)

	return nil
}

// Board is a board as listed by the API.
type Board struct {
	ID      string `json:"_id"`
	Title   string `json:"title"`
	Members []Ref  `json:"members"`
	Columns []Ref  `json:"columns"`
}

func (b *Board) validate() error {
	if b.ID == "" {
		return fmt.Errorf("board %q: %w", b.Title, errMissingID)
	}

	return nil
}

// Column is a board column. TaskOrder is the server's authoritative ordering of task ids.
type Column struct {
	ID        string   `json:"_id"`
	BoardID   string   `json:"boardId"`
	Title     string   `json:"title"`
	TaskOrder []string `json:"taskOrder"`
}

func (c *Column) validate() error {
	if c.ID == "" {
		return fmt.Errorf("column %q: %w", c.Title, errMissingID)
	}

	if c.TaskOrder == nil {
		c.TaskOrder = []string{}
	}

	return nil
}

// Task is a single card on the board.
type Task struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Assignee    Ref    `json:"assignee"`
	DueDate     string `json:"dueDate"`
	ColumnID    string `json:"columnId,omitempty"`
	BoardID     string `json:"boardId,omitempty"`
}

func (t *Task) validate() error {
	if t.ID == "" {
		return fmt.Errorf("task %q: %w", t.Title, errMissingID)
	}

	return nil
}

// User is an account that can be assigned tasks or invited to boards.
type User struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *User) validate() error {
	if u.ID == "" {
		return fmt.Errorf("user %q: %w", u.Email, errMissingID)
	}

	return nil
}

// NewTask is the body of a create task request.
type NewTask struct {
	BoardID     string `json:"boardId"`
	ColumnID    string `json:"columnId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Assignee    string `json:"assignee"`
	DueDate     string `json:"dueDate"`
}

// TaskUpdate is the body of a task patch request.
type TaskUpdate struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Assignee    string `json:"assignee"`
	DueDate     string `json:"dueDate"`
}

// Move is the body of a task move request.
type Move struct {
	FromColumnID string `json:"fromColumnId"`
	ToColumnID   string `json:"toColumnId"`
	ToIndex      int    `json:"toIndex"`
}
