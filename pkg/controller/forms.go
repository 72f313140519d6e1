package controller

import (
	"context"
	"fmt"
	"slices"

	"github.com/matt-steen/taskboard/pkg/api"
	"github.com/matt-steen/taskboard/pkg/board"
	"github.com/rivo/tview"
)

const (
	unassigned    = "Unassigned"
	formWidth     = 60
	formHeight    = 20
	descMaxLength = 0
	descHeight    = 5
)

// centered wraps p so that it is shown in the middle of the screen.
func centered(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 1, true).
			AddItem(nil, 0, 1, false), width, 1, true).
		AddItem(nil, 0, 1, false)
}

func (c *Controller) showForm(form *tview.Form, title string) {
	form.SetBorder(true).SetTitle(title)
	form.SetCancelFunc(c.closeForm)

	c.currentEvents = c.formEvents
	c.pages.AddPage(pageForm, centered(form, formWidth, formHeight), true, true)
	c.app.SetFocus(form)
}

// closeForm removes the form and restores the keys of the page underneath.
func (c *Controller) closeForm() {
	c.pages.RemovePage(pageForm)

	switch name, _ := c.pages.GetFrontPage(); name {
	case pageBoard:
		c.currentEvents = c.boardEvents
		c.focusColumn()
	case pageDashboard:
		c.currentEvents = c.dashboardEvents
		c.app.SetFocus(c.dashboardTable)
	default:
		c.currentEvents = nil
	}
}

// assigneeOptions lists the users a task can be assigned to. The current assignee is
// always offered so that editing a task never silently drops it.
func assigneeOptions(view board.View, current string) ([]string, []string, int) {
	labels := []string{unassigned}
	ids := []string{""}

	for _, user := range view.InviteCandidates() {
		labels = append(labels, user.Name)
		ids = append(ids, user.ID)
	}

	if current != "" && !slices.Contains(ids, current) {
		name := view.AssigneeName(api.Task{Assignee: api.Ref(current)})
		labels = append(labels, name)
		ids = append(ids, current)
	}

	return labels, ids, max(0, slices.Index(ids, current))
}

// getTaskForm builds a form for the fields of task. submit receives the entered values.
func (c *Controller) getTaskForm(view board.View, task api.Task, submit func(board.TaskInput)) *tview.Form {
	labels, ids, selected := assigneeOptions(view, string(task.Assignee))

	form := tview.NewForm().
		AddInputField("Title", task.Title, fieldWidth, nil, nil).
		AddTextArea("Description", task.Description, fieldWidth, descHeight, descMaxLength, nil).
		AddDropDown("Assignee", labels, selected, nil).
		AddInputField("Due Date", task.DueDate, len(board.DueDateFormat)+2, nil, nil)

	title, _ := form.GetFormItemByLabel("Title").(*tview.InputField)
	desc, _ := form.GetFormItemByLabel("Description").(*tview.TextArea)
	assignee, _ := form.GetFormItemByLabel("Assignee").(*tview.DropDown)
	due, _ := form.GetFormItemByLabel("Due Date").(*tview.InputField)

	due.SetPlaceholder("YYYY-MM-DD")

	form.AddButton("Save", func() {
		idx, _ := assignee.GetCurrentOption()

		in := board.TaskInput{
			Title:       title.GetText(),
			Description: desc.GetText(),
			DueDate:     due.GetText(),
		}

		if idx >= 0 && idx < len(ids) {
			in.Assignee = ids[idx]
		}

		c.closeForm()
		submit(in)
	})

	form.AddButton("Cancel", c.closeForm)

	return form
}

func (c *Controller) showNewTaskForm() {
	view, col, _ := c.selected()
	if col == nil {
		c.alert("Create a column first.")

		return
	}

	columnID := col.ID
	form := c.getTaskForm(view, api.Task{}, func(in board.TaskInput) {
		c.onBoard("create task", func(ctx context.Context, r *board.Reconciler) error {
			return r.CreateTask(ctx, columnID, in)
		})
	})

	c.showForm(form, fmt.Sprintf("New Task in %s", col.Title))
}

func (c *Controller) showEditTaskForm() {
	view, _, task := c.selected()
	if task == nil {
		return
	}

	taskID := task.ID
	form := c.getTaskForm(view, *task, func(in board.TaskInput) {
		c.onBoard("update task", func(ctx context.Context, r *board.Reconciler) error {
			return r.UpdateTask(ctx, taskID, in)
		})
	})

	c.showForm(form, "Edit Task")
}

// getTitleForm builds a single field form used for boards and columns.
func (c *Controller) getTitleForm(initial, button string, submit func(string)) *tview.Form {
	form := tview.NewForm().AddInputField("Title", initial, fieldWidth, nil, nil)
	title, _ := form.GetFormItemByLabel("Title").(*tview.InputField)

	form.AddButton(button, func() {
		text := title.GetText()

		c.closeForm()
		submit(text)
	})

	form.AddButton("Cancel", c.closeForm)

	return form
}

func (c *Controller) showNewColumnForm() {
	if c.reconciler == nil {
		return
	}

	form := c.getTitleForm("", "Create", func(title string) {
		c.onBoard("create column", func(ctx context.Context, r *board.Reconciler) error {
			return r.CreateColumn(ctx, title)
		})
	})

	c.showForm(form, "New Column")
}

func (c *Controller) showRenameColumnForm() {
	_, col, _ := c.selected()
	if col == nil {
		return
	}

	columnID := col.ID
	form := c.getTitleForm(col.Title, "Rename", func(title string) {
		c.onBoard("rename column", func(ctx context.Context, r *board.Reconciler) error {
			return r.RenameColumn(ctx, columnID, title)
		})
	})

	c.showForm(form, "Rename Column")
}

func (c *Controller) confirmDeleteTask() {
	_, _, task := c.selected()
	if task == nil {
		return
	}

	taskID := task.ID

	c.confirm(fmt.Sprintf("Delete task %q?", task.Title), "Delete", func() {
		c.onBoard("delete task", func(ctx context.Context, r *board.Reconciler) error {
			return r.DeleteTask(ctx, taskID)
		})
	})
}

func (c *Controller) confirmDeleteColumn() {
	_, col, _ := c.selected()
	if col == nil {
		return
	}

	if len(col.Tasks) > 0 {
		c.handleError("delete column", board.ErrColumnNotEmpty)

		return
	}

	columnID := col.ID

	c.confirm(fmt.Sprintf("Delete column %q?", col.Title), "Delete", func() {
		c.onBoard("delete column", func(ctx context.Context, r *board.Reconciler) error {
			return r.DeleteColumn(ctx, columnID)
		})
	})
}

// inviteCandidates lists the users that are not yet members of the board.
func inviteCandidates(view board.View) []api.User {
	var out []api.User

	for _, user := range view.InviteCandidates() {
		if view.Board != nil && slices.Contains(view.Board.Members, api.Ref(user.ID)) {
			continue
		}

		out = append(out, user)
	}

	return out
}

func (c *Controller) showInviteForm() {
	view, _, _ := c.selected()
	if view.Board == nil {
		return
	}

	users := inviteCandidates(view)
	if len(users) == 0 {
		c.alert("Everyone is already on this board.")

		return
	}

	chosen := make([]bool, len(users))
	form := tview.NewForm()

	for i, user := range users {
		form.AddCheckbox(fmt.Sprintf("%s <%s>", user.Name, user.Email), false, func(checked bool) {
			chosen[i] = checked
		})
	}

	form.AddButton("Invite", func() {
		var ids []string

		for i, ok := range chosen {
			if ok {
				ids = append(ids, users[i].ID)
			}
		}

		c.closeForm()

		c.onBoard("invite users", func(ctx context.Context, r *board.Reconciler) error {
			return r.Invite(ctx, ids)
		})
	})

	form.AddButton("Cancel", c.closeForm)

	c.showForm(form, "Invite Users")
}
