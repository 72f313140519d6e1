package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DefaultChannelPrefix prefixes the board id to form the pub/sub channel name.
const DefaultChannelPrefix = "board:"

// Redis is a Subscriber backed by redis pub/sub, one channel per board. A client also
// receives its own emits, which only cause a redundant reload.
type Redis struct {
	dispatcher

	rc     *redis.Client
	prefix string

	// joinMu serializes Join so that at most one subscription is ever live
	joinMu sync.Mutex

	mu     sync.Mutex
	sub    *redis.PubSub
	done   chan struct{}
	closed bool
}

// NewRedis creates a Redis subscriber.
func NewRedis(rc *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}

	return &Redis{rc: rc, prefix: prefix}
}

func (r *Redis) channel(boardID string) string {
	return r.prefix + boardID
}

// Join subscribes to a board's channel, leaving any previously joined board.
func (r *Redis) Join(ctx context.Context, boardID string) error {
	r.joinMu.Lock()
	defer r.joinMu.Unlock()

	r.mu.Lock()

	if r.closed {
		r.mu.Unlock()

		return ErrDisconnected
	}

	if r.sub != nil && r.joined() == boardID {
		r.mu.Unlock()

		return nil
	}

	old, oldDone := r.detach()
	r.mu.Unlock()

	closeSubscription(old, oldDone)

	sub := r.rc.Subscribe(ctx, r.channel(boardID))

	// wait for the subscription to be confirmed so no event published after Join is missed
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()

		return fmt.Errorf("error subscribing to %s: %w", r.channel(boardID), err)
	}

	done := make(chan struct{})

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		sub.Close()

		return ErrDisconnected
	}

	r.join(boardID)
	r.sub = sub
	r.done = done
	r.mu.Unlock()

	go r.readLoop(sub.Channel(), done)

	log.Debug().Str("board", boardID).Msg("joined board channel")

	return nil
}

func (r *Redis) readLoop(ch <-chan *redis.Message, done chan struct{}) {
	defer close(done)

	for msg := range ch {
		r.dispatch([]byte(msg.Payload))
	}
}

// Emit publishes a notification on the event's board channel.
func (r *Redis) Emit(ctx context.Context, kind Kind, event Event) error {
	buf, err := encodeFrame(string(kind), event)
	if err != nil {
		return err
	}

	if err := r.rc.Publish(ctx, r.channel(event.BoardID), buf).Err(); err != nil {
		return fmt.Errorf("error publishing %s: %w", kind, err)
	}

	return nil
}

// detach forgets the current subscription; must be called with r.mu held.
func (r *Redis) detach() (*redis.PubSub, chan struct{}) {
	sub, done := r.sub, r.done
	r.sub = nil
	r.done = nil
	r.join("")

	return sub, done
}

func closeSubscription(sub *redis.PubSub, done chan struct{}) {
	if sub == nil {
		return
	}

	if err := sub.Close(); err != nil {
		log.Warn().Err(err).Msg("error closing subscription")
	}

	<-done
}

// Disconnect leaves the joined board. The redis client is owned by the caller.
func (r *Redis) Disconnect() error {
	r.mu.Lock()
	r.closed = true
	sub, done := r.detach()
	r.mu.Unlock()

	closeSubscription(sub, done)

	return nil
}
