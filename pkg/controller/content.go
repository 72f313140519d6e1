package controller

import (
	"strconv"

	"github.com/gdamore/tcell/v2"
	"github.com/matt-steen/taskboard/pkg/board"
	"github.com/rivo/tview"
)

const titleRatio = 2

// ColumnContent implements tview.TableContent for the tasks of one board column.
type ColumnContent struct {
	tview.TableContentReadOnly
	view   board.View
	column *board.Column
}

// GetCell returns the cell at the given position or nil if no cell.
func (s *ColumnContent) GetCell(row, col int) *tview.TableCell {
	if row == 0 {
		switch col {
		case 0:
			return tview.NewTableCell("title").SetExpansion(titleRatio).
				SetTextColor(tcell.ColorYellow).SetSelectable(false)
		case 1:
			return tview.NewTableCell("assignee").SetExpansion(1).
				SetTextColor(tcell.ColorYellow).SetSelectable(false)
		case 2:
			return tview.NewTableCell("due").SetExpansion(1).
				SetTextColor(tcell.ColorYellow).SetSelectable(false)
		}
	}

	if s.column == nil || row-1 >= len(s.column.Tasks) || row < 1 {
		return nil
	}

	task := s.column.Tasks[row-1]

	switch col {
	case 0:
		return tview.NewTableCell(tview.Escape(task.Title)).SetExpansion(titleRatio).SetReference(task.ID)
	case 1:
		name := ""
		if task.Assignee != "" {
			name = s.view.AssigneeName(task)
		}

		return tview.NewTableCell(tview.Escape(name)).SetExpansion(1)
	case 2:
		return tview.NewTableCell(task.DueDate).SetExpansion(1)
	}

	return nil
}

// GetRowCount returns the number of rows in the table.
func (s *ColumnContent) GetRowCount() int {
	if s.column != nil {
		return len(s.column.Tasks) + 1
	}

	return 1
}

// GetColumnCount returns the number of columns in the table.
func (s *ColumnContent) GetColumnCount() int {
	return 3
}

// BoardsContent implements tview.TableContent for the dashboard's list of boards.
type BoardsContent struct {
	tview.TableContentReadOnly
	boards []board.Summary
}

// GetCell returns the cell at the given position or nil if no cell.
func (s *BoardsContent) GetCell(row, col int) *tview.TableCell {
	if row == 0 {
		switch col {
		case 0:
			return tview.NewTableCell("board").SetExpansion(titleRatio).
				SetTextColor(tcell.ColorYellow).SetSelectable(false)
		case 1:
			return tview.NewTableCell("members").SetExpansion(1).
				SetTextColor(tcell.ColorYellow).SetSelectable(false)
		case 2:
			return tview.NewTableCell("columns").SetExpansion(1).
				SetTextColor(tcell.ColorYellow).SetSelectable(false)
		}
	}

	if row < 1 || row-1 >= len(s.boards) {
		return nil
	}

	summary := s.boards[row-1]

	switch col {
	case 0:
		return tview.NewTableCell(tview.Escape(summary.Title)).SetExpansion(titleRatio).SetReference(summary.ID)
	case 1:
		return tview.NewTableCell(strconv.Itoa(summary.Members)).SetExpansion(1)
	case 2:
		return tview.NewTableCell(strconv.Itoa(summary.Columns)).SetExpansion(1)
	}

	return nil
}

// GetRowCount returns the number of rows in the table.
func (s *BoardsContent) GetRowCount() int {
	return len(s.boards) + 1
}

// GetColumnCount returns the number of columns in the table.
func (s *BoardsContent) GetColumnCount() int {
	return 3
}
