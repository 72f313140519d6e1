package apitest

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/matt-steen/taskboard/pkg/api"
)

func (s *Server) register(c echo.Context) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil || req.Email == "" || req.Password == "" {
		return message(c, http.StatusBadRequest, "invalid registration")
	}

	s.mu.Lock()
	_, exists := s.accounts[req.Email]
	s.mu.Unlock()

	if exists {
		return message(c, http.StatusConflict, "email already registered")
	}

	s.AddUser(req.Name, req.Email, req.Password)

	return c.JSON(http.StatusCreated, map[string]string{"message": "registered"})
}

func (s *Server) login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "invalid login")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[req.Email]
	if !ok || acct.password != req.Password {
		return message(c, http.StatusUnauthorized, "invalid credentials")
	}

	return c.JSON(http.StatusOK, map[string]string{"token": "token-" + acct.user.ID})
}

func (s *Server) userByID(id string) (api.User, bool) {
	for _, acct := range s.accounts {
		if acct.user.ID == id {
			return acct.user, true
		}
	}

	return api.User{}, false
}

func (s *Server) me(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.userByID(c.Get("user").(string))
	if !ok {
		return message(c, http.StatusNotFound, "user not found")
	}

	return c.JSON(http.StatusOK, user)
}

func (s *Server) boardJSON(b *board) map[string]any {
	return map[string]any{
		"_id":     b.id,
		"title":   b.title,
		"members": append([]string{}, b.members...),
		"columns": append([]string{}, b.columns...),
	}
}

func (s *Server) listBoards(c echo.Context) error {
	userID := c.Get("user").(string)

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []map[string]any{}

	for _, b := range s.boards {
		for _, m := range b.members {
			if m == userID {
				out = append(out, s.boardJSON(b))

				break
			}
		}
	}

	return c.JSON(http.StatusOK, out)
}

func (s *Server) createBoard(c echo.Context) error {
	var req struct {
		Title string `json:"title"`
	}

	if err := c.Bind(&req); err != nil || req.Title == "" {
		return message(c, http.StatusBadRequest, "title is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b := &board{id: s.nextID("b"), title: req.Title, members: []string{c.Get("user").(string)}}
	s.boards = append(s.boards, b)

	return c.JSON(http.StatusCreated, s.boardJSON(b))
}

func (s *Server) invite(c echo.Context) error {
	var req struct {
		BoardID string `json:"boardId"`
		UserID  string `json:"userId"`
	}

	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "invalid invite")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.findBoard(req.BoardID)
	if b == nil {
		return message(c, http.StatusNotFound, "board not found")
	}

	if _, ok := s.userByID(req.UserID); !ok {
		return message(c, http.StatusNotFound, "user not found")
	}

	for _, m := range b.members {
		if m == req.UserID {
			return c.JSON(http.StatusOK, s.boardJSON(b))
		}
	}

	b.members = append(b.members, req.UserID)

	return c.JSON(http.StatusOK, s.boardJSON(b))
}

func (s *Server) listColumns(c echo.Context) error {
	boardID := c.QueryParam("boardId")

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []api.Column{}

	if b := s.findBoard(boardID); b != nil {
		for _, id := range b.columns {
			col := *s.columns[id]
			col.TaskOrder = append([]string{}, col.TaskOrder...)
			out = append(out, col)
		}
	}

	return c.JSON(http.StatusOK, out)
}

func (s *Server) createColumn(c echo.Context) error {
	var req struct {
		BoardID string `json:"boardId"`
		Title   string `json:"title"`
	}

	if err := c.Bind(&req); err != nil || req.Title == "" {
		return message(c, http.StatusBadRequest, "title is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.findBoard(req.BoardID)
	if b == nil {
		return message(c, http.StatusNotFound, "board not found")
	}

	col := &api.Column{ID: s.nextID("c"), BoardID: b.id, Title: req.Title, TaskOrder: []string{}}
	s.columns[col.ID] = col
	b.columns = append(b.columns, col.ID)

	return c.JSON(http.StatusCreated, col)
}

func (s *Server) renameColumn(c echo.Context) error {
	var req struct {
		Title string `json:"title"`
	}

	if err := c.Bind(&req); err != nil || req.Title == "" {
		return message(c, http.StatusBadRequest, "title is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.columns[c.Param("id")]
	if !ok {
		return message(c, http.StatusNotFound, "column not found")
	}

	col.Title = req.Title

	return c.JSON(http.StatusOK, col)
}

func (s *Server) deleteColumn(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := c.Param("id")

	col, ok := s.columns[id]
	if !ok {
		return message(c, http.StatusNotFound, "column not found")
	}

	if len(col.TaskOrder) > 0 {
		return message(c, http.StatusBadRequest, "cannot delete a column with tasks")
	}

	delete(s.columns, id)

	if b := s.findBoard(col.BoardID); b != nil {
		b.columns = remove(b.columns, id)
	}

	return c.NoContent(http.StatusNoContent)
}

func (s *Server) getTask(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[c.Param("id")]
	if !ok {
		return message(c, http.StatusNotFound, "task not found")
	}

	return c.JSON(http.StatusOK, task)
}

func (s *Server) createTask(c echo.Context) error {
	var req api.NewTask

	if err := c.Bind(&req); err != nil || req.Title == "" {
		return message(c, http.StatusBadRequest, "title is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.columns[req.ColumnID]
	if !ok {
		return message(c, http.StatusNotFound, "column not found")
	}

	task := &api.Task{
		ID:          s.nextID("t"),
		Title:       req.Title,
		Description: req.Description,
		Assignee:    api.Ref(req.Assignee),
		DueDate:     req.DueDate,
		ColumnID:    col.ID,
		BoardID:     col.BoardID,
	}
	s.tasks[task.ID] = task
	col.TaskOrder = append(col.TaskOrder, task.ID)

	return c.JSON(http.StatusCreated, task)
}

func (s *Server) updateTask(c echo.Context) error {
	var req api.TaskUpdate

	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "invalid task")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[c.Param("id")]
	if !ok {
		return message(c, http.StatusNotFound, "task not found")
	}

	task.Title = req.Title
	task.Description = req.Description
	task.Assignee = api.Ref(req.Assignee)
	task.DueDate = req.DueDate

	return c.JSON(http.StatusOK, task)
}

func (s *Server) moveTask(c echo.Context) error {
	var req api.Move

	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "invalid move")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := c.Param("id")

	task, ok := s.tasks[id]
	from, fromOK := s.columns[req.FromColumnID]
	to, toOK := s.columns[req.ToColumnID]

	if !ok || !fromOK || !toOK {
		return message(c, http.StatusNotFound, "task or column not found")
	}

	from.TaskOrder = remove(from.TaskOrder, id)

	index := req.ToIndex
	if index < 0 {
		index = 0
	}

	if index > len(to.TaskOrder) {
		index = len(to.TaskOrder)
	}

	to.TaskOrder = append(to.TaskOrder[:index], append([]string{id}, to.TaskOrder[index:]...)...)
	task.ColumnID = to.ID

	return c.JSON(http.StatusOK, task)
}

func (s *Server) deleteTask(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := c.Param("id")

	task, ok := s.tasks[id]
	if !ok {
		return message(c, http.StatusNotFound, "task not found")
	}

	delete(s.tasks, id)

	if col, ok := s.columns[task.ColumnID]; ok {
		col.TaskOrder = remove(col.TaskOrder, id)
	}

	return c.NoContent(http.StatusNoContent)
}

func (s *Server) listUsers(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []api.User{}

	for i := 1; i <= s.seq["u"]; i++ {
		if user, ok := s.userByID(idFor("u", i)); ok {
			out = append(out, user)
		}
	}

	return c.JSON(http.StatusOK, out)
}
