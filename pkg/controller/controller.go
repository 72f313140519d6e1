package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/matt-steen/taskboard/pkg/api"
	"github.com/matt-steen/taskboard/pkg/board"
	"github.com/matt-steen/taskboard/pkg/realtime"
	"github.com/matt-steen/taskboard/pkg/session"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

// These are the names of the pages managed by the controller.
const (
	pageLogin     = "login"
	pageRegister  = "register"
	pageDashboard = "dashboard"
	pageBoard     = "board"
	pageForm      = "form"
	pageModal     = "modal"
)

// Client is the API surface used by the UI.
type Client interface {
	board.API
	board.BoardService
}

// Controller mediates between the board state and the view.
type Controller struct {
	ctx       context.Context
	app       *tview.Application
	pages     *tview.Pages
	session   *session.Manager
	client    Client
	subscribe func() realtime.Subscriber
	dashboard *board.Dashboard

	// board view state; reconciler is nil outside the board page
	reconciler     *board.Reconciler
	columnsFlex    *tview.Flex
	boardHeader    *tview.Table
	columnTables   []*tview.Table
	selectedColumn int
	selectedTask   int

	dashboardTable  *tview.Table
	dashboardHeader *tview.Table

	dashboardEvents map[string]KeyEvent
	boardEvents     map[string]KeyEvent
	formEvents      map[string]KeyEvent
	currentEvents   map[string]KeyEvent
}

// NewController creates a new Controller to run the app. subscribe is called once per
// opened board to create its realtime subscriber.
func NewController(ctx context.Context, manager *session.Manager, client Client,
	subscribe func() realtime.Subscriber,
) (*Controller, error) {
	if manager == nil || client == nil || subscribe == nil {
		return nil, errors.New("controller needs a session, a client and a subscriber factory")
	}

	c := &Controller{
		ctx:       ctx,
		app:       tview.NewApplication(),
		pages:     tview.NewPages(),
		session:   manager,
		client:    client,
		subscribe: subscribe,
		dashboard: board.NewDashboard(client),
	}

	c.initEvents()

	c.pages.AddPage(pageLogin, c.getLoginForm(), true, false)
	c.pages.AddPage(pageRegister, c.getRegisterForm(), true, false)
	c.pages.AddPage(pageDashboard, c.getDashboardGrid(), true, false)
	c.pages.AddPage(pageBoard, c.getBoardGrid(), true, false)

	c.app.SetInputCapture(c.handleKeys)

	return c, nil
}

// Go starts the app and blocks until it exits.
func (c *Controller) Go() error {
	// protected pages need a stored credential
	if c.session.Store().Authenticated() {
		c.showDashboard()
	} else {
		c.showLogin()
	}

	if err := c.app.SetRoot(c.pages, true).Run(); err != nil {
		return fmt.Errorf("error running the ui: %w", err)
	}

	c.closeBoard()

	return nil
}

func (c *Controller) stop() {
	log.Info().Msg("terminating application")

	c.closeBoard()
	c.app.Stop()
}

func (c *Controller) handleKeys(evt *tcell.EventKey) *tcell.EventKey {
	if k, ok := c.currentEvents[AsKey(evt)]; ok {
		return k.Action(evt)
	}

	return evt
}

// background runs fn off the UI goroutine; any error is reported on the UI goroutine.
func (c *Controller) background(what string, fn func(ctx context.Context) error) {
	go func() {
		if err := fn(c.ctx); err != nil {
			log.Warn().Err(err).Msgf("error while trying to %s", what)

			c.app.QueueUpdateDraw(func() {
				c.handleError(what, err)
			})
		}
	}()
}

// handleError shows err to the user. A rejected credential ends the session.
func (c *Controller) handleError(what string, err error) {
	if api.IsUnauthorized(err) {
		if logoutErr := c.session.Logout(c.ctx); logoutErr != nil {
			log.Error().Err(logoutErr).Msg("error clearing rejected credential")
		}

		c.closeBoard()
		c.showLogin()
		c.alert("Your session has expired. Please log in again.")

		return
	}

	switch {
	case errors.Is(err, board.ErrColumnNotEmpty):
		c.alert("Cannot delete a column with tasks.")
	case errors.Is(err, board.ErrTitleRequired):
		c.alert("Title is required.")
	case errors.Is(err, board.ErrInvalidDueDate):
		c.alert("Due date must be YYYY-MM-DD.")
	default:
		c.alert(fmt.Sprintf("Failed to %s:\n%s", what, err))
	}
}

// alert shows a blocking message on top of the current page.
func (c *Controller) alert(msg string) {
	modal := tview.NewModal().
		SetText(msg).
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(int, string) {
			c.closeModal()
		})

	c.showModal(modal)
}

// confirm asks before running a destructive action.
func (c *Controller) confirm(msg, action string, fn func()) {
	modal := tview.NewModal().
		SetText(msg).
		AddButtons([]string{action, "Cancel"}).
		SetDoneFunc(func(_ int, label string) {
			c.closeModal()

			if label == action {
				fn()
			}
		})

	c.showModal(modal)
}

func (c *Controller) showModal(modal *tview.Modal) {
	c.pages.AddPage(pageModal, modal, true, true)
	c.app.SetInputCapture(nil)
	c.app.SetFocus(modal)
}

func (c *Controller) closeModal() {
	c.pages.RemovePage(pageModal)
	c.app.SetInputCapture(c.handleKeys)

	c.app.SetFocus(c.pages)

	name, _ := c.pages.GetFrontPage()
	if name == pageBoard {
		c.focusColumn()
	}
}
