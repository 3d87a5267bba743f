package sync

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

func TestGate(t *testing.T) {
	ctx := context.Background()
	g := new(Gate)

	g.Open(true)
	t.Run("late Wait()", func(t *testing.T) {
		// Wait()ing on an already-open Gate MUST NOT block, even if Wait()
		// was called late.
		if err := g.Wait(ctx); err != nil {
			t.Errorf("%T.Wait(ctx) error %v", g, err)
		}
	})

	t.Run("idempotent Open doesn't block", func(t *testing.T) {
		for _, open := range []bool{true, false, true} {
			for i := 0; i < 10; i++ {
				g.Open(open)
			}
		}
	})

	g.Open(false)
	// All Wait()ing goroutines MUST only unblock when Open(true) is called,
	// but no sooner.
	group, gCtx := errgroup.WithContext(ctx)
	unblocked := new(uint64)
	for i := 0; i < 10; i++ {
		group.Go(func() error {
			if err := g.Wait(gCtx); err != nil {
				return err
			}
			atomic.AddUint64(unblocked, 1)
			return nil
		})
	}

	t.Run("blocks", func(t *testing.T) {
		const timeout = 5 * time.Second
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if got, want := g.Wait(ctx), context.DeadlineExceeded; got != want {
			t.Errorf("%T.Wait([ctx with deadline]) got %v; want %v", g, got, want)
		}
		if n := atomic.LoadUint64(unblocked); n > 0 {
			t.Fatalf("%d goroutines unblocked", n)
		}
	})

	t.Run("unblocks", func(t *testing.T) {
		t.Parallel()
		if err := group.Wait(); err != nil {
			t.Errorf("%T.Wait(ctx) error %v", g, err)
		}
		g.Close()
	})

	t.Run("Open(true)", func(t *testing.T) {
		t.Parallel()
		g.Open(true)
	})
}

func TestGateClose(t *testing.T) {
	ctx := context.Background()
	g := new(Gate)

	t.Run("unblock", func(t *testing.T) {
		t.Parallel()
		if got, want := g.Wait(ctx), ErrGateClosed; got != want {
			t.Errorf("%T.Wait() got %v; want %v", g, got, want)
		}
	})

	t.Run("Close()", func(t *testing.T) {
		t.Parallel()
		g.Close()
	})
}
