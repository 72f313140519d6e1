// Package apitest runs an in-memory task board API for tests.
package apitest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/matt-steen/taskboard/pkg/api"
)

type account struct {
	user     api.User
	password string
}

type board struct {
	id      string
	title   string
	members []string
	columns []string
}

// Hold pauses requests to one route until released.
type Hold struct {
	// Entered receives once per request that reached the hold.
	Entered chan struct{}
	release chan struct{}
	once    sync.Once
}

// Release lets held and future requests through.
func (h *Hold) Release() {
	h.once.Do(func() { close(h.release) })
}

// Server is a fake API. Routes are keyed as "METHOD /route/:param", matching the echo route.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	seq      map[string]int
	accounts map[string]*account
	tokens   map[string]string
	boards   []*board
	columns  map[string]*api.Column
	tasks    map[string]*api.Task
	failures map[string]int
	holds    map[string]*Hold
	calls    []string
}

// New starts a Server; it is closed when the test ends.
func New(t interface {
	Helper()
	Cleanup(func())
}) *Server {
	t.Helper()

	s := &Server{
		seq:      map[string]int{},
		accounts: map[string]*account{},
		tokens:   map[string]string{},
		columns:  map[string]*api.Column{},
		tasks:    map[string]*api.Task{},
		failures: map[string]int{},
		holds:    map[string]*Hold{},
	}

	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)

	return s
}

func (s *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(s.record, s.inject, s.authenticate)

	e.POST("/api/auth/register", s.register)
	e.POST("/api/auth/login", s.login)
	e.GET("/api/auth/me", s.me)
	e.GET("/api/boards", s.listBoards)
	e.POST("/api/boards", s.createBoard)
	e.POST("/api/boards/invite", s.invite)
	e.GET("/api/columns", s.listColumns)
	e.POST("/api/columns", s.createColumn)
	e.PATCH("/api/columns/:id", s.renameColumn)
	e.DELETE("/api/columns/:id", s.deleteColumn)
	e.GET("/api/tasks/:id", s.getTask)
	e.POST("/api/tasks", s.createTask)
	e.PATCH("/api/tasks/:id", s.updateTask)
	e.PATCH("/api/tasks/move/:id", s.moveTask)
	e.DELETE("/api/tasks/:id", s.deleteTask)
	e.GET("/api/users", s.listUsers)

	return e
}

func routeKey(c echo.Context) string {
	return c.Request().Method + " " + c.Path()
}

func (s *Server) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		s.calls = append(s.calls, c.Request().Method+" "+c.Request().URL.Path)
		s.mu.Unlock()

		return next(c)
	}
}

func (s *Server) inject(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := routeKey(c)

		s.mu.Lock()
		hold := s.holds[key]
		status, fail := s.failures[key]
		delete(s.failures, key)
		s.mu.Unlock()

		if hold != nil {
			select {
			case hold.Entered <- struct{}{}:
			default:
			}

			select {
			case <-hold.release:
			case <-c.Request().Context().Done():
				return c.Request().Context().Err()
			}
		}

		if fail {
			return c.JSON(status, map[string]string{"message": "injected failure"})
		}

		return next(c)
	}
}

func (s *Server) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if strings.HasPrefix(c.Path(), "/api/auth/") && c.Path() != "/api/auth/me" {
			return next(c)
		}

		token := strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer ")

		s.mu.Lock()
		userID, ok := s.tokens[token]
		s.mu.Unlock()

		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"message": "invalid token"})
		}

		c.Set("user", userID)

		return next(c)
	}
}

// FailNext makes the next request to route answer with status.
func (s *Server) FailNext(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures[route] = status
}

// Hold pauses requests to route until the returned Hold is released.
func (s *Server) Hold(route string) *Hold {
	hold := &Hold{Entered: make(chan struct{}, 1), release: make(chan struct{})}

	s.mu.Lock()
	s.holds[route] = hold
	s.mu.Unlock()

	return hold
}

// Calls returns "METHOD /path" for every request received so far.
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.calls...)
}

// CallCount counts received requests with the given method and path prefix.
func (s *Server) CallCount(method, pathPrefix string) int {
	count := 0

	for _, call := range s.Calls() {
		if strings.HasPrefix(call, method+" "+pathPrefix) {
			count++
		}
	}

	return count
}

func (s *Server) nextID(prefix string) string {
	s.seq[prefix]++

	return fmt.Sprintf("%s%d", prefix, s.seq[prefix])
}

// AddUser seeds an account and returns its id and a valid token.
func (s *Server) AddUser(name, email, password string) (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID("u")
	s.accounts[email] = &account{user: api.User{ID: id, Name: name, Email: email}, password: password}
	token := "token-" + id
	s.tokens[token] = id

	return id, token
}

// AddBoard seeds a board with the given members.
func (s *Server) AddBoard(title string, members ...string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID("b")
	s.boards = append(s.boards, &board{id: id, title: title, members: members})

	return id
}

// AddColumn seeds a column whose task order is taskIDs. Task ids need not exist.
func (s *Server) AddColumn(boardID, title string, taskIDs ...string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID("c")
	s.columns[id] = &api.Column{ID: id, BoardID: boardID, Title: title, TaskOrder: append([]string{}, taskIDs...)}

	if b := s.findBoard(boardID); b != nil {
		b.columns = append(b.columns, id)
	}

	return id
}

// AddTask seeds a task with a fixed id at the end of a column.
func (s *Server) AddTask(columnID, taskID, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	col := s.columns[columnID]
	s.tasks[taskID] = &api.Task{ID: taskID, Title: title, ColumnID: columnID, BoardID: col.BoardID}

	for _, id := range col.TaskOrder {
		if id == taskID {
			return
		}
	}

	col.TaskOrder = append(col.TaskOrder, taskID)
}

// TaskOrder returns the server-side order of a column.
func (s *Server) TaskOrder(columnID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string{}, s.columns[columnID].TaskOrder...)
}

// Task returns the server-side copy of a task.
func (s *Server) Task(taskID string) (api.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskID]
	if !ok {
		return api.Task{}, false
	}

	return *task, true
}

// Members returns the member ids of a board.
func (s *Server) Members(boardID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b := s.findBoard(boardID); b != nil {
		return append([]string{}, b.members...)
	}

	return nil
}

func (s *Server) findBoard(id string) *board {
	for _, b := range s.boards {
		if b.id == id {
			return b
		}
	}

	return nil
}

func message(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"message": msg})
}
