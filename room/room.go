// room/room.go
package room

import (
	"context"
	"errors"
	"sync"

	"github.com/wfunc/neonwhisper/game"
	"github.com/wfunc/neonwhisper/logger"
)

// ErrRoomClosed is returned for work sent to a room that has been reaped.
var ErrRoomClosed = errors.New("room closed")

type job struct {
	fn   func(*game.Room)
	done chan struct{}
	err  error
}

// Room is the actor that owns one game.Room. Every read or write of the game
// goes through Do and runs on the room's own goroutine, in arrival order.
type Room struct {
	Code string

	state     *game.Room
	inbox     chan *job
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	retired   bool // touched only by the actor goroutine
}

func newRoom(state *game.Room, mailbox int) *Room {
	r := &Room{
		Code:  state.Code,
		state: state,
		inbox: make(chan *job, mailbox),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go r.loop()
	return r
}

// Do runs fn on the room goroutine and waits for it to finish. ctx only bounds
// the wait for a mailbox slot; once accepted, fn always runs to completion.
func (r *Room) Do(ctx context.Context, fn func(*game.Room)) error {
	j := &job{fn: fn, done: make(chan struct{})}

	select {
	case r.inbox <- j:
	case <-r.quit:
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-j.done:
		return j.err
	case <-r.done:
		select {
		case <-j.done:
			return j.err
		default:
			return ErrRoomClosed
		}
	}
}

func (r *Room) loop() {
	defer close(r.done)
	for {
		select {
		case j := <-r.inbox:
			r.run(j)
		case <-r.quit:
			return
		}
	}
}

func (r *Room) run(j *job) {
	defer close(j.done)
	if r.retired {
		j.err = ErrRoomClosed
		return
	}
	defer func() {
		if p := recover(); p != nil {
			logger.Log.Errorw("room handler panicked", "room", r.Code, "panic", p)
			j.err = errors.New("internal error")
		}
	}()
	j.fn(r.state)
}

// retireIfEmpty marks an empty room as closed for business. After it returns
// true no further job will touch the game.
func (r *Room) retireIfEmpty(ctx context.Context) (bool, error) {
	var retired bool
	err := r.Do(ctx, func(g *game.Room) {
		if g.Empty() {
			r.retired = true
			retired = true
		}
	})
	return retired, err
}

// Close stops the actor. Pending jobs fail with ErrRoomClosed.
func (r *Room) Close() {
	r.closeOnce.Do(func() { close(r.quit) })
}
