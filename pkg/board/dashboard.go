package board

import (
	"context"
	"slices"
	"sync"

	"github.com/matt-steen/taskboard/pkg/api"
	"github.com/rs/zerolog/log"
)

// BoardService is the part of the API used by the dashboard.
type BoardService interface {
	ListBoards(ctx context.Context) ([]api.Board, error)
	CreateBoard(ctx context.Context, title string) error
}

// Dashboard lists the user's boards.
type Dashboard struct {
	api BoardService

	mu     sync.RWMutex
	boards []api.Board
}

// Summary is a dashboard entry.
type Summary struct {
	ID      string
	Title   string
	Members int
	Columns int
}

// NewDashboard creates a Dashboard.
func NewDashboard(service BoardService) *Dashboard {
	return &Dashboard{api: service}
}

// Refresh reloads the board list.
func (d *Dashboard) Refresh(ctx context.Context) ([]Summary, error) {
	boards, err := d.api.ListBoards(ctx)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.boards = boards
	d.mu.Unlock()

	log.Debug().Int("boards", len(boards)).Msg("dashboard refreshed")

	return d.Summaries(), nil
}

// Summaries returns the boards from the last refresh.
func (d *Dashboard) Summaries() []Summary {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Summary, len(d.boards))

	for i, b := range d.boards {
		out[i] = Summary{ID: b.ID, Title: b.Title, Members: len(b.Members), Columns: len(b.Columns)}
	}

	return out
}

// Boards returns the boards from the last refresh.
func (d *Dashboard) Boards() []api.Board {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return slices.Clone(d.boards)
}

// CreateBoard creates a board and refreshes the list. Blank titles are rejected locally.
func (d *Dashboard) CreateBoard(ctx context.Context, title string) error {
	title, err := cleanTitle(title)
	if err != nil {
		return err
	}

	if err := d.api.CreateBoard(ctx, title); err != nil {
		return err
	}

	_, err = d.Refresh(ctx)

	return err
}
