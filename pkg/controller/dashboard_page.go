package controller

import (
	"context"
	"fmt"

	"github.com/matt-steen/taskboard/pkg/board"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

func (c *Controller) getDashboardGrid() *tview.Grid {
	c.dashboardHeader = tview.NewTable().SetBorders(false).SetSelectable(false, false)

	c.dashboardTable = tview.NewTable().SetBorders(false)
	c.dashboardTable.SetContent(&BoardsContent{})
	c.dashboardTable.SetSelectable(true, false).SetFixed(1, 0)
	c.dashboardTable.SetSelectedFunc(func(row, _ int) {
		cell := c.dashboardTable.GetCell(row, 0)
		if id, ok := cell.GetReference().(string); ok {
			c.openBoard(id)
		}
	})

	grid := tview.NewGrid().SetBorders(true).SetRows(0, 0)

	grid.AddItem(c.dashboardHeader, 0, 0, 1, 1, 0, 0, false)
	grid.AddItem(c.dashboardTable, 1, 0, 1, 1, 0, 0, true)

	return grid
}

func (c *Controller) renderDashboardHeader() {
	title := "[yellow]Your Boards"

	if claims, err := c.session.Store().Claims(); err == nil && claims.Name != "" {
		title = fmt.Sprintf("[yellow]%s's Boards", tview.Escape(claims.Name))
	}

	c.dashboardHeader.Clear()
	c.dashboardHeader.SetCell(0, 0, tview.NewTableCell(title))
	c.dashboardHeader.SetCell(1, 0, tview.NewTableCell("[orange]<Enter>[white] Open Board"))
	fillShortcuts(c.dashboardHeader, 2, c.dashboardEvents)
}

func (c *Controller) renderDashboard(summaries []board.Summary) {
	c.dashboardTable.SetContent(&BoardsContent{boards: summaries})

	if row, _ := c.dashboardTable.GetSelection(); len(summaries) > 0 && (row < 1 || row > len(summaries)) {
		c.dashboardTable.Select(1, 0)
	}
}

func (c *Controller) showDashboard() {
	c.closeBoard()

	c.currentEvents = c.dashboardEvents
	c.renderDashboardHeader()
	c.renderDashboard(c.dashboard.Summaries())

	c.pages.SwitchToPage(pageDashboard)
	c.app.SetFocus(c.dashboardTable)

	c.refreshDashboard()
}

func (c *Controller) refreshDashboard() {
	c.background("load boards", func(ctx context.Context) error {
		summaries, err := c.dashboard.Refresh(ctx)
		if err != nil {
			return err
		}

		c.app.QueueUpdateDraw(func() {
			c.renderDashboard(summaries)
		})

		return nil
	})
}

func (c *Controller) showBoardForm() {
	form := c.getTitleForm("", "Create", func(title string) {
		c.background("create board", func(ctx context.Context) error {
			if err := c.dashboard.CreateBoard(ctx, title); err != nil {
				return err
			}

			c.app.QueueUpdateDraw(func() {
				c.renderDashboard(c.dashboard.Summaries())
			})

			return nil
		})
	})

	c.showForm(form, "New Board")
}

// openBoard switches to the board page and starts loading it.
func (c *Controller) openBoard(id string) {
	c.closeBoard()

	log.Info().Str("board", id).Msg("opening board")

	reconciler := board.NewReconciler(id, c.client, c.subscribe())
	reconciler.OnChange(func() {
		c.app.QueueUpdateDraw(func() {
			// a closed board may still notify once
			if c.reconciler == reconciler {
				c.renderBoard()
			}
		})
	})

	c.reconciler = reconciler
	c.selectedColumn = 0
	c.selectedTask = 0

	c.currentEvents = c.boardEvents
	c.pages.SwitchToPage(pageBoard)
	c.renderBoard()

	c.background("load board", func(ctx context.Context) error {
		err := reconciler.Load(ctx)
		if err != nil && reconciler.State() == board.Absent {
			// the board view shows the absent state itself
			return nil
		}

		return err
	})
}

// leaveBoard returns to the dashboard.
func (c *Controller) leaveBoard() {
	c.showDashboard()
}
