package board

import "errors"

// These errors report conditions detected locally, before any request is made.
var (
	ErrTitleRequired  = errors.New("title is required")
	ErrColumnNotEmpty = errors.New("cannot delete a column with tasks")
	ErrColumnNotFound = errors.New("column not found")
	ErrBoardNotFound  = errors.New("board not found")
	ErrInvalidMove    = errors.New("invalid move")
	ErrInvalidDueDate = errors.New("due date must be YYYY-MM-DD")
	ErrClosed         = errors.New("board view is closed")
)
