package controller

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/matt-steen/taskboard/pkg/api"
	"github.com/matt-steen/taskboard/pkg/board"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

func (c *Controller) getBoardGrid() *tview.Grid {
	c.boardHeader = tview.NewTable().SetBorders(false).SetSelectable(false, false)
	c.columnsFlex = tview.NewFlex().SetDirection(tview.FlexColumn)

	grid := tview.NewGrid().SetBorders(true).SetRows(0, 0)

	grid.AddItem(c.boardHeader, 0, 0, 1, 1, 0, 0, false)
	grid.AddItem(c.columnsFlex, 1, 0, 1, 1, 0, 0, true)

	return grid
}

func (c *Controller) renderBoardHeader(view board.View) {
	c.boardHeader.Clear()

	title := "[yellow]Loading board..."
	if view.Board != nil {
		title = fmt.Sprintf("[yellow]%s", tview.Escape(view.Board.Title))
	}

	status := ""

	switch view.State {
	case board.Reconciling:
		status = "[gray]syncing"
	case board.Error:
		status = "[red]unable to load board"
	case board.Absent:
		title = "[red]Board not found"
		status = "[gray]<b> to go back"
	case board.Loading, board.Ready:
	}

	c.boardHeader.SetCell(0, 0, tview.NewTableCell(title).SetExpansion(1))
	c.boardHeader.SetCell(0, 1, tview.NewTableCell(status).SetExpansion(1))

	if view.Board != nil {
		c.boardHeader.SetCell(0, 2, tview.NewTableCell(
			fmt.Sprintf("[white]%d members", len(view.Board.Members))).SetExpansion(1))
	}

	fillShortcuts(c.boardHeader, 1, c.boardEvents)
}

// renderBoard redraws the board page from the reconciler's current snapshot, keeping the
// selected column and task where possible.
func (c *Controller) renderBoard() {
	if c.reconciler == nil {
		return
	}

	view := c.reconciler.Snapshot()

	c.renderBoardHeader(view)
	c.columnsFlex.Clear()
	c.columnTables = c.columnTables[:0]

	for i, col := range view.Columns {
		table := tview.NewTable().SetBorders(false)
		table.SetContent(&ColumnContent{view: view, column: col})
		table.SetSelectable(true, false).SetFixed(1, 0)
		table.SetBorder(true).SetTitle(fmt.Sprintf(" %s (%d) ", tview.Escape(col.Title), len(col.Tasks)))

		c.columnTables = append(c.columnTables, table)
		c.columnsFlex.AddItem(table, 0, 1, i == c.selectedColumn)
	}

	c.clampSelection(view)

	for i, table := range c.columnTables {
		if i == c.selectedColumn {
			table.Select(c.selectedTask+1, 0)
			table.SetBorderColor(tcell.ColorYellow)
		} else {
			table.Select(0, 0)
			table.SetBorderColor(tcell.ColorWhite)
		}

		table.SetSelectionChangedFunc(func(row, _ int) {
			if i == c.selectedColumn {
				c.selectedTask = row - 1
			}
		})
	}

	if name, _ := c.pages.GetFrontPage(); name == pageBoard {
		c.focusColumn()
	}
}

func (c *Controller) clampSelection(view board.View) {
	if len(view.Columns) == 0 {
		c.selectedColumn, c.selectedTask = 0, 0

		return
	}

	c.selectedColumn = max(0, min(c.selectedColumn, len(view.Columns)-1))
	c.selectedTask = max(0, min(c.selectedTask, len(view.Columns[c.selectedColumn].Tasks)-1))
}

func (c *Controller) focusColumn() {
	if c.selectedColumn < len(c.columnTables) {
		c.app.SetFocus(c.columnTables[c.selectedColumn])

		return
	}

	c.app.SetFocus(c.columnsFlex)
}

func (c *Controller) selectColumn(idx int) {
	if idx < 0 || idx >= len(c.columnTables) {
		return
	}

	c.selectedColumn = idx
	c.renderBoard()
}

// selected returns the selected column and task; either may be nil.
func (c *Controller) selected() (board.View, *board.Column, *api.Task) {
	if c.reconciler == nil {
		return board.View{}, nil, nil
	}

	view := c.reconciler.Snapshot()
	if c.selectedColumn >= len(view.Columns) {
		return view, nil, nil
	}

	col := view.Columns[c.selectedColumn]
	if c.selectedTask < 0 || c.selectedTask >= len(col.Tasks) {
		return view, col, nil
	}

	return view, col, &col.Tasks[c.selectedTask]
}

// moveSelected moves the selected task by dc columns or dr rows. Moving to another column
// keeps the row, clamped to the destination's length.
func (c *Controller) moveSelected(dc, dr int) {
	view, col, task := c.selected()
	if task == nil {
		return
	}

	dst := c.selectedColumn + dc
	if dst < 0 || dst >= len(view.Columns) {
		return
	}

	to := c.selectedTask + dr

	if dc != 0 {
		to = min(c.selectedTask, len(view.Columns[dst].Tasks))
	} else if to < 0 || to >= len(col.Tasks) {
		return
	}

	m := board.Move{
		TaskID: task.ID,
		From:   board.Position{ColumnID: col.ID, Index: c.selectedTask},
		To:     board.Position{ColumnID: view.Columns[dst].ID, Index: to},
	}

	c.selectedColumn, c.selectedTask = dst, to

	reconciler := c.reconciler

	go func() {
		// a rejected move reverts on its own; only a rejected credential needs the user
		if err := reconciler.Move(c.ctx, m); err != nil {
			log.Warn().Err(err).Str("task", m.TaskID).Msg("move failed")

			if api.IsUnauthorized(err) {
				c.app.QueueUpdateDraw(func() {
					c.handleError("move task", err)
				})
			}
		}
	}()
}

// closeBoard ends the current board view, if any.
func (c *Controller) closeBoard() {
	if c.reconciler == nil {
		return
	}

	log.Info().Str("board", c.reconciler.BoardID()).Msg("closing board")

	if err := c.reconciler.Close(); err != nil {
		log.Warn().Err(err).Msg("error disconnecting from board")
	}

	c.reconciler = nil
	c.columnTables = nil

	if c.columnsFlex != nil {
		c.columnsFlex.Clear()
	}
}

// onBoard runs fn against the open board in the background.
func (c *Controller) onBoard(what string, fn func(ctx context.Context, r *board.Reconciler) error) {
	reconciler := c.reconciler
	if reconciler == nil {
		return
	}

	c.background(what, func(ctx context.Context) error {
		return fn(ctx, reconciler)
	})
}
