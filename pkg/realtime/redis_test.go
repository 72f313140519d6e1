package realtime_test

import (
	"context"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/matt-steen/taskboard/pkg/realtime"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	m, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	rc := redis.NewClient(&redis.Options{Addr: m.Addr()})

	t.Cleanup(func() {
		rc.Close()
		m.Close()
	})

	return rc
}

func TestRedisPeersReceiveEmits(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	require := require.New(t)

	rc := setupRedis(t)
	ctx := context.Background()

	alice := realtime.NewRedis(rc, "")
	bob := realtime.NewRedis(rc, "")

	defer alice.Disconnect()
	defer bob.Disconnect()

	received := make(chan realtime.Event, 4)
	bob.On(realtime.TaskMoved, func(ev realtime.Event) { received <- ev })

	require.Nil(alice.Join(ctx, "b1"))
	require.Nil(bob.Join(ctx, "b1"))

	require.Nil(alice.Emit(ctx, realtime.TaskMoved, realtime.Event{
		BoardID: "b1", TaskID: "t1", FromColumnID: "c1", ToColumnID: "c2", ToIndex: 1,
	}))

	select {
	case ev := <-received:
		assert.Equal(realtime.TaskMoved, ev.Kind)
		assert.Equal("t1", ev.TaskID)
		assert.Equal("c2", ev.ToColumnID)
		assert.Equal(1, ev.ToIndex)
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestRedisIgnoresOtherBoards(t *testing.T) {
	t.Parallel()

	require := require.New(t)

	rc := setupRedis(t)
	ctx := context.Background()

	sub := realtime.NewRedis(rc, "test:")

	defer sub.Disconnect()

	received := make(chan realtime.Event, 4)
	for _, kind := range realtime.Kinds() {
		sub.On(kind, func(ev realtime.Event) { received <- ev })
	}

	require.Nil(sub.Join(ctx, "b1"))

	// a payload for b2 published on b1's channel is still dropped
	require.Nil(rc.Publish(ctx, "test:b1", `{"event":"taskCreated","data":{"boardId":"b2"}}`).Err())
	require.Nil(rc.Publish(ctx, "test:b2", `{"event":"taskCreated","data":{"boardId":"b2"}}`).Err())
	require.Nil(rc.Publish(ctx, "test:b1", `not json`).Err())

	select {
	case ev := <-received:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRedisSwitchBoards(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	require := require.New(t)

	rc := setupRedis(t)
	ctx := context.Background()

	sub := realtime.NewRedis(rc, "")

	received := make(chan realtime.Event, 4)
	sub.On(realtime.TaskUpdated, func(ev realtime.Event) { received <- ev })

	require.Nil(sub.Join(ctx, "b1"))
	require.Nil(sub.Join(ctx, "b2"))

	require.Nil(rc.Publish(ctx, "board:b1", `{"event":"taskUpdated","data":{"boardId":"b1"}}`).Err())
	require.Nil(rc.Publish(ctx, "board:b2", `{"event":"taskUpdated","data":{"boardId":"b2"}}`).Err())

	select {
	case ev := <-received:
		assert.Equal("b2", ev.BoardID)
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}

	require.Nil(sub.Disconnect())
	assert.ErrorIs(sub.Join(ctx, "b1"), realtime.ErrDisconnected)
}

func TestRedisConcurrentJoinsSubscribeOnce(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	require := require.New(t)

	rc := setupRedis(t)
	ctx := context.Background()

	sub := realtime.NewRedis(rc, "")
	defer sub.Disconnect()

	received := make(chan realtime.Event, 8)
	sub.On(realtime.TaskMoved, func(ev realtime.Event) { received <- ev })

	var wg sync.WaitGroup

	errs := make(chan error, 4)

	for range 4 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			errs <- sub.Join(ctx, "b1")
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		require.Nil(err)
	}

	require.Nil(rc.Publish(ctx, "board:b1", `{"event":"taskMoved","data":{"boardId":"b1","taskId":"t1"}}`).Err())

	select {
	case ev := <-received:
		assert.Equal("t1", ev.TaskID)
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}

	select {
	case ev := <-received:
		t.Fatalf("event delivered twice: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}
