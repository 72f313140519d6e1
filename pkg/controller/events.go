package controller

import (
	"github.com/gdamore/tcell/v2"
)

func (c *Controller) initEvents() {
	c.dashboardEvents = map[string]KeyEvent{}
	c.boardEvents = map[string]KeyEvent{}
	c.formEvents = map[string]KeyEvent{}

	c.initDashboardEvents(c.dashboardEvents)
	c.initBoardEvents(c.boardEvents)
	c.initMoveEvents(c.boardEvents)

	c.initExitEvent(c.dashboardEvents)
	c.initExitEvent(c.boardEvents)
	c.initLogoutEvent(c.dashboardEvents)
	c.initLogoutEvent(c.boardEvents)

	c.formEvents["Esc"] = KeyEvent{
		Description: "Cancel",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.closeForm()

			return nil
		},
	}
}

// action wraps fn as a key action that consumes the key.
func action(fn func()) func(*tcell.EventKey) *tcell.EventKey {
	return func(*tcell.EventKey) *tcell.EventKey {
		fn()

		return nil
	}
}

func (c *Controller) initExitEvent(events map[string]KeyEvent) {
	events["q"] = KeyEvent{
		Description: "Exit",
		Action:      action(c.stop),
	}
}

func (c *Controller) initLogoutEvent(events map[string]KeyEvent) {
	events["L"] = KeyEvent{
		Description: "Logout",
		Action:      action(c.logout),
	}
}

func (c *Controller) initDashboardEvents(events map[string]KeyEvent) {
	events["n"] = KeyEvent{
		Description: "New Board",
		Action:      action(c.showBoardForm),
	}

	events["R"] = KeyEvent{
		Description: "Refresh",
		Action:      action(c.refreshDashboard),
	}
}

func (c *Controller) initBoardEvents(events map[string]KeyEvent) {
	events["n"] = KeyEvent{
		Description: "New Task",
		Action:      action(c.showNewTaskForm),
	}

	events["e"] = KeyEvent{
		Description: "Edit Task",
		Action:      action(c.showEditTaskForm),
	}

	events["x"] = KeyEvent{
		Description: "Delete Task",
		Action:      action(c.confirmDeleteTask),
	}

	events["c"] = KeyEvent{
		Description: "New Column",
		Action:      action(c.showNewColumnForm),
	}

	events["r"] = KeyEvent{
		Description: "Rename Column",
		Action:      action(c.showRenameColumnForm),
	}

	events["X"] = KeyEvent{
		Description: "Delete Column",
		Action:      action(c.confirmDeleteColumn),
	}

	events["i"] = KeyEvent{
		Description: "Invite Users",
		Action:      action(c.showInviteForm),
	}

	events["b"] = KeyEvent{
		Description: "Back to Boards",
		Action:      action(c.leaveBoard),
	}

	events["Left"] = KeyEvent{
		Description: "Previous Column",
		Action:      action(func() { c.selectColumn(c.selectedColumn - 1) }),
	}

	events["Right"] = KeyEvent{
		Description: "Next Column",
		Action:      action(func() { c.selectColumn(c.selectedColumn + 1) }),
	}
}

func (c *Controller) initMoveEvents(events map[string]KeyEvent) {
	events["Shift+Left"] = KeyEvent{
		Description: "Move to Previous Column",
		Action:      action(func() { c.moveSelected(-1, 0) }),
	}

	events["Shift+Right"] = KeyEvent{
		Description: "Move to Next Column",
		Action:      action(func() { c.moveSelected(1, 0) }),
	}

	events["Shift+Up"] = KeyEvent{
		Description: "Move Up",
		Action:      action(func() { c.moveSelected(0, -1) }),
	}

	events["Shift+Down"] = KeyEvent{
		Description: "Move Down",
		Action:      action(func() { c.moveSelected(0, 1) }),
	}
}
