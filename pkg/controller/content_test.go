package controller

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/matt-steen/taskboard/pkg/api"
	"github.com/matt-steen/taskboard/pkg/board"
	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
)

func TestColumnContent(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	view := board.View{
		Users: []api.User{{ID: "u1", Name: "Ada", Email: "ada@example.com"}},
	}
	column := &board.Column{
		Column: api.Column{ID: "c1", Title: "To Do", TaskOrder: []string{"t1", "t2"}},
		Tasks: []api.Task{
			{ID: "t1", Title: "first", Assignee: "u1", DueDate: "2024-05-01"},
			{ID: "t2", Title: "second", Assignee: "u9"},
		},
	}

	content := &ColumnContent{view: view, column: column}

	assert.Equal(3, content.GetRowCount())
	assert.Equal(3, content.GetColumnCount())

	assert.Equal("title", content.GetCell(0, 0).Text)
	assert.Equal("first", content.GetCell(1, 0).Text)
	assert.Equal("t1", content.GetCell(1, 0).GetReference())
	assert.Equal("Ada", content.GetCell(1, 1).Text)
	assert.Equal("2024-05-01", content.GetCell(1, 2).Text)
	assert.Equal("Unknown", content.GetCell(2, 1).Text)
	assert.Nil(content.GetCell(3, 0))
	assert.Nil(content.GetCell(1, 3))
}

func TestColumnContentUnassigned(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	content := &ColumnContent{column: &board.Column{
		Tasks: []api.Task{{ID: "t1", Title: "[red]bracketed"}},
	}}

	assert.Equal("", content.GetCell(1, 1).Text)
	assert.Equal("[red[]bracketed", content.GetCell(1, 0).Text)
}

func TestColumnContentEmpty(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	content := &ColumnContent{}

	assert.Equal(1, content.GetRowCount())
	assert.NotNil(content.GetCell(0, 1))
	assert.Nil(content.GetCell(1, 0))
}

func TestBoardsContent(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	content := &BoardsContent{boards: []board.Summary{
		{ID: "b1", Title: "Launch", Members: 2, Columns: 3},
	}}

	assert.Equal(2, content.GetRowCount())
	assert.Equal("board", content.GetCell(0, 0).Text)
	assert.Equal("Launch", content.GetCell(1, 0).Text)
	assert.Equal("b1", content.GetCell(1, 0).GetReference())
	assert.Equal("2", content.GetCell(1, 1).Text)
	assert.Equal("3", content.GetCell(1, 2).Text)
	assert.Nil(content.GetCell(2, 0))
}

func TestFillShortcuts(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	noop := func(*tcell.EventKey) *tcell.EventKey { return nil }
	table := tview.NewTable()

	fillShortcuts(table, 1, map[string]KeyEvent{
		"q":          {Description: "Exit", Action: noop},
		"n":          {Description: "New Task", Action: noop},
		"b":          {Description: "Back to Boards", Action: noop},
		"Shift+Left": {Description: "Move to Previous Column", Action: noop},
	})

	assert.Equal(3, table.GetRowCount())
	assert.Equal("[orange]<b>[white] Back to Boards", table.GetCell(1, 0).Text)
	assert.Equal("[orange]<n>[white] New Task", table.GetCell(2, 0).Text)
	assert.Equal("[orange]<q>[white] Exit", table.GetCell(1, 1).Text)
	assert.Equal("[orange]<Shift+Left>[white] Move to Previous Column", table.GetCell(1, 2).Text)
}

func TestAssigneeOptions(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	view := board.View{
		Me: &api.User{ID: "u1", Name: "Ada"},
		Users: []api.User{
			{ID: "u1", Name: "Ada"},
			{ID: "u2", Name: "Bob"},
		},
	}

	labels, ids, selected := assigneeOptions(view, "")
	assert.Equal([]string{"Unassigned", "Bob"}, labels)
	assert.Equal([]string{"", "u2"}, ids)
	assert.Equal(0, selected)

	// a task assigned to the current user keeps its assignee
	labels, ids, selected = assigneeOptions(view, "u1")
	assert.Equal([]string{"Unassigned", "Bob", "Ada"}, labels)
	assert.Equal("u1", ids[selected])
}

func TestInviteCandidates(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	view := board.View{
		Board: &api.Board{ID: "b1", Members: []api.Ref{"u1", "u2"}},
		Me:    &api.User{ID: "u1"},
		Users: []api.User{{ID: "u1"}, {ID: "u2"}, {ID: "u3", Name: "Cy"}},
	}

	users := inviteCandidates(view)
	assert.Len(users, 1)
	assert.Equal("u3", users[0].ID)
}
