package room

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

var ErrClosed = errors.New("room is closed")

// Actor owns a single room. Every read and write of the room runs on the actor goroutine,
// so operations on one room are applied one at a time in arrival order.
type Actor struct {
	id    string
	room  *entity.Room
	inbox chan func(*entity.Room)
	done  chan struct{}
	once  sync.Once
}

// NewActor - takes ownership of room and starts its loop. The caller must not touch room afterwards.
func NewActor(room *entity.Room) *Actor {
	actor := &Actor{
		id:    room.ID,
		room:  room,
		inbox: make(chan func(*entity.Room)),
		done:  make(chan struct{}),
	}

	go actor.loop()

	return actor
}

func (that *Actor) ID() string {
	return that.id
}

// Do - runs fn on the actor goroutine and waits for it to return.
// fn must not call Do on the same actor.
func (that *Actor) Do(ctx context.Context, fn func(room *entity.Room)) error {
	finished := make(chan any, 1)

	task := func(room *entity.Room) {
		defer func() {
			finished <- recover()
		}()
		fn(room)
	}

	select {
	case that.inbox <- task:
	case <-that.done:
		return fmt.Errorf("%w: %s", ErrClosed, that.id)
	case <-ctx.Done():
		return ctx.Err()
	}

	if p := <-finished; p != nil {
		return fmt.Errorf("room %s: panic: %v", that.id, p)
	}

	return nil
}

// Stop - terminates the loop; later calls to Do return ErrClosed. Safe to call more than once.
func (that *Actor) Stop() {
	that.once.Do(func() {
		close(that.done)
	})
}

func (that *Actor) Stopped() bool {
	select {
	case <-that.done:
		return true
	default:
		return false
	}
}

func (that *Actor) loop() {
	for {
		select {
		case task := <-that.inbox:
			task(that.room)
		case <-that.done:
			return
		}
	}
}
