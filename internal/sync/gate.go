// Package sync provides the small synchronization primitive evmdebug needs
// to hand control of the interpreter goroutine back and forth with a
// debugger goroutine one opcode at a time.
package sync

import (
	"context"
	"errors"
	"sync"
)

// A Gate lets callers Wait() until it is opened, the way evmdebug's tracer
// opens it for the duration of a single opcode boundary so that Debugger.Wait
// can observe state without racing the interpreter goroutine. Unlike a
// broadcast that can be missed by a Wait() that starts after the signal,
// waiting on an already-open Gate returns immediately.
//
// The zero value is a closed Gate. A Gate MUST NOT be copied after first use,
// since it embeds a sync.Mutex.
//
// Open(true) plays the role a sync.Cond.Broadcast() would play here, but
// without the "missed wakeup" hazard: the implementation holds a
// single-item-buffered channel, pushing an item in on Open(true) and draining
// it on Open(false). Every Wait() receives from the channel to unblock and
// immediately puts the item back, which is also what lets a Wait() honour
// context cancellation instead of blocking forever.
type Gate struct {
	mu   sync.Mutex
	open bool

	// MUST NOT be accessed directly; use sigChan() or
	// sigChanWhenAlreadyLocked().
	signal chan struct{}
}

// sigChan locks g and returns g.sigChanWhenAlreadyLocked().
func (g *Gate) sigChan() chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sigChanWhenAlreadyLocked()
}

// sigChanWhenAlreadyLocked returns g.signal, make()ing it if nil.
func (g *Gate) sigChanWhenAlreadyLocked() chan struct{} {
	if g.signal == nil {
		g.signal = make(chan struct{}, 1)
	}
	return g.signal
}

// Close permanently opens the Gate to every current and future Wait()er, each
// of which unblocks with ErrGateClosed.
func (g *Gate) Close() {
	close(g.sigChan())
}

// ErrGateClosed is returned by Gate.Wait() once Gate.Close() has been called.
var ErrGateClosed = errors.New("evmdebug: gate closed")

// Wait blocks until the Gate is Open(true). If the last call to Open() left
// it open, Wait returns immediately.
func (g *Gate) Wait(ctx context.Context) error {
	ch := g.sigChan()

	select {
	case <-ctx.Done():
		return ctx.Err()

	case x, ok := <-ch:
		if !ok {
			return ErrGateClosed
		}
		ch <- x
		return nil
	}
}

// Open sets whether the Gate is open. When open, every current and future
// Wait() unblocks immediately. Calls are idempotent.
//
// Behaviour of Open() on a Close()d Gate is undefined.
func (g *Gate) Open(open bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if open == g.open {
		return
	}
	g.open = open

	ch := g.sigChanWhenAlreadyLocked()
	if open {
		ch <- struct{}{}
	} else {
		<-ch
	}
}

// IsOpen reports the Gate's last value passed to Open(), or false if Open()
// has yet to be called.
func (g *Gate) IsOpen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.open
}
