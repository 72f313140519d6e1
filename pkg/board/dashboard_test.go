package board_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/matt-steen/taskboard/pkg/api"
	"github.com/matt-steen/taskboard/pkg/apitest"
	"github.com/matt-steen/taskboard/pkg/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBoardRequiresTitle(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	server := apitest.New(t)
	_, token := server.AddUser("Ada", "ada@example.com", "pw")
	dashboard := board.NewDashboard(api.New(server.URL, staticToken(token)))

	err := dashboard.CreateBoard(context.Background(), "   ")
	assert.ErrorIs(err, board.ErrTitleRequired)
	assert.Equal(0, server.CallCount(http.MethodPost, "/api/boards"))
}

func TestCreateBoard(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	require := require.New(t)

	server := apitest.New(t)
	ada, token := server.AddUser("Ada", "ada@example.com", "pw")
	existing := server.AddBoard("Backlog", ada)
	server.AddColumn(existing, "Todo")
	dashboard := board.NewDashboard(api.New(server.URL, staticToken(token)))

	summaries, err := dashboard.Refresh(context.Background())
	require.Nil(err)
	assert.Equal([]board.Summary{{ID: existing, Title: "Backlog", Members: 1, Columns: 1}}, summaries)

	require.Nil(dashboard.CreateBoard(context.Background(), "Sprint 1"))
	assert.Equal(1, server.CallCount(http.MethodPost, "/api/boards"))

	summaries = dashboard.Summaries()
	require.Len(summaries, 2)
	assert.Equal("Sprint 1", summaries[1].Title)
	assert.Equal(1, summaries[1].Members)
	assert.Equal(0, summaries[1].Columns)
	assert.Len(dashboard.Boards(), 2)
}

func TestRefreshUnauthorized(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	server := apitest.New(t)
	dashboard := board.NewDashboard(api.New(server.URL, staticToken("stale")))

	_, err := dashboard.Refresh(context.Background())
	assert.True(api.IsUnauthorized(err))
	assert.Empty(dashboard.Summaries())
}
