package board_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/matt-steen/taskboard/pkg/board"
	"github.com/matt-steen/taskboard/pkg/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const moveRoute = "PATCH /api/tasks/move/:id"

func TestMoveIsOptimistic(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	require := require.New(t)

	f := newFixture(t)
	r := f.loaded(t)
	hold := f.server.Hold(moveRoute)

	done := make(chan error, 1)

	go func() {
		done <- r.Move(context.Background(), board.Move{
			TaskID: "t1",
			From:   board.Position{ColumnID: f.c1, Index: 0},
			To:     board.Position{ColumnID: f.c2, Index: 0},
		})
	}()

	select {
	case <-hold.Entered:
	case <-time.After(time.Second):
		t.Fatal("move request never reached the server")
	}

	// the request is in flight
	view := r.Snapshot()
	assert.Equal(board.Reconciling, view.State)
	assert.Equal([]string{"t2"}, taskIDs(t, view, f.c1))
	assert.Equal([]string{"t1"}, taskIDs(t, view, f.c2))
	assert.Empty(f.sub.events())

	hold.Release()

	select {
	case err := <-done:
		require.Nil(err)
	case <-time.After(time.Second):
		t.Fatal("move did not finish")
	}

	assert.Equal(board.Ready, r.State())
	assert.Equal([]string{"t2"}, f.server.TaskOrder(f.c1))
	assert.Equal([]string{"t1"}, f.server.TaskOrder(f.c2))

	events := f.sub.events()
	require.Len(events, 1)
	assert.Equal(realtime.Event{
		Kind:         realtime.TaskMoved,
		BoardID:      f.boardID,
		TaskID:       "t1",
		FromColumnID: f.c1,
		ToColumnID:   f.c2,
		ToIndex:      0,
	}, events[0])
}

func TestMoveFailureReverts(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	f := newFixture(t)
	r := f.loaded(t)
	f.server.FailNext(moveRoute, http.StatusInternalServerError)

	err := r.Move(context.Background(), board.Move{
		TaskID: "t1",
		From:   board.Position{ColumnID: f.c1, Index: 0},
		To:     board.Position{ColumnID: f.c2, Index: 0},
	})
	assert.NotNil(err)

	view := r.Snapshot()
	assert.Equal(board.Ready, view.State)
	assert.Equal([]string{"t1", "t2"}, taskIDs(t, view, f.c1))
	assert.Equal([]string{}, taskIDs(t, view, f.c2))
	assert.Empty(f.sub.events())
}

func TestMoveSamePositionIsNoop(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	f := newFixture(t)
	r := f.loaded(t)
	before := r.Snapshot()

	changed := false
	r.OnChange(func() { changed = true })

	err := r.Move(context.Background(), board.Move{
		TaskID: "t2",
		From:   board.Position{ColumnID: f.c1, Index: 1},
		To:     board.Position{ColumnID: f.c1, Index: 1},
	})
	assert.Nil(err)
	assert.False(changed)
	assert.Equal(before, r.Snapshot())
	assert.Equal(0, f.server.CallCount(http.MethodPatch, "/api/tasks/move"))
}

func TestMoveWithinColumn(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	f := newFixture(t)
	f.server.AddTask(f.c1, "t3", "third")

	r := f.loaded(t)

	err := r.Move(context.Background(), board.Move{
		TaskID: "t1",
		From:   board.Position{ColumnID: f.c1, Index: 0},
		To:     board.Position{ColumnID: f.c1, Index: 2},
	})
	assert.Nil(err)
	assert.Equal([]string{"t2", "t3", "t1"}, taskIDs(t, r.Snapshot(), f.c1))
	assert.Equal([]string{"t2", "t3", "t1"}, f.server.TaskOrder(f.c1))
}

func TestMoveLeavesEarlierSnapshotsIntact(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	f := newFixture(t)
	r := f.loaded(t)
	before := r.Snapshot()
	beforeC2, _, _ := before.Column(f.c2)

	err := r.Move(context.Background(), board.Move{
		TaskID: "t2",
		From:   board.Position{ColumnID: f.c1, Index: 1},
		To:     board.Position{ColumnID: f.c2, Index: 5},
	})
	assert.Nil(err)

	assert.Equal([]string{"t1", "t2"}, taskIDs(t, before, f.c1))
	assert.Equal([]string{}, taskIDs(t, before, f.c2))

	after := r.Snapshot()
	afterC2, _, _ := after.Column(f.c2)
	assert.NotSame(beforeC2, afterC2)
	// a destination index past the end appends
	assert.Equal([]string{"t2"}, afterC2.TaskIDs())
}

func TestMoveInvalid(t *testing.T) {
	t.Parallel()

	cases := map[string]board.Move{
		"unknown source": {TaskID: "t1", From: board.Position{ColumnID: "cx"}, To: board.Position{ColumnID: "c2"}},
		"index too high": {TaskID: "t1", From: board.Position{ColumnID: "c1", Index: 5}, To: board.Position{ColumnID: "c2"}},
		"wrong task":     {TaskID: "t2", From: board.Position{ColumnID: "c1", Index: 0}, To: board.Position{ColumnID: "c2"}},
		"unknown dest":   {TaskID: "t1", From: board.Position{ColumnID: "c1", Index: 0}, To: board.Position{ColumnID: "cx"}},
	}

	for name, move := range cases {
		move := move

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert := assert.New(t)

			f := newFixture(t)
			r := f.loaded(t)
			before := r.Snapshot()

			err := r.Move(context.Background(), move)
			assert.ErrorIs(err, board.ErrInvalidMove)
			assert.Equal(before, r.Snapshot())
			assert.Equal(0, f.server.CallCount(http.MethodPatch, "/api/tasks/move"))
		})
	}
}

func TestMoveFinishingAfterCloseIsNoop(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	require := require.New(t)

	f := newFixture(t)
	r := f.loaded(t)
	hold := f.server.Hold(moveRoute)

	done := make(chan error, 1)

	go func() {
		done <- r.Move(context.Background(), board.Move{
			TaskID: "t1",
			From:   board.Position{ColumnID: f.c1, Index: 0},
			To:     board.Position{ColumnID: f.c2, Index: 0},
		})
	}()

	select {
	case <-hold.Entered:
	case <-time.After(time.Second):
		t.Fatal("move request never reached the server")
	}

	require.Nil(r.Close())

	closed := r.Snapshot()
	calls := len(f.server.Calls())

	hold.Release()

	select {
	case err := <-done:
		assert.Nil(err)
	case <-time.After(time.Second):
		t.Fatal("move did not finish")
	}

	assert.Empty(f.sub.events())
	assert.Equal(calls, len(f.server.Calls()))
	assert.Equal(closed, r.Snapshot())
}
