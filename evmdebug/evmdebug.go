// Package evmdebug provides an opcode-level step debugger for this module's
// interpreter: intercepting execution via a vm.Tracer and allowing
// inspection of the stack, memory, and program counter between any two
// opcodes.
package evmdebug

import (
	"context"

	"github.com/evmspec/evmcore/internal/sync"
	"github.com/evmspec/evmcore/vm"
)

// NewDebugger constructs a new Debugger. Its Tracer() MUST be attached to a
// *vm.Context before vm.Execute is called, typically in a separate
// goroutine.
//
// Execution SHOULD be advanced until Debugger.Done() returns true otherwise
// resources will be leaked. Best practice is to always call FastForward(),
// usually in a deferred function.
func NewDebugger() *Debugger {
	step := make(chan step)
	fastForward := make(chan fastForward)
	stepped := make(chan stepped)
	done := make(chan done)

	return &Debugger{
		step:        step,
		fastForward: fastForward,
		stepped:     stepped,
		done:        done,
		t: &tracer{
			step:        step,
			fastForward: fastForward,
			stepped:     stepped,
			done:        done,
		},
	}
}

type (
	step        struct{}
	fastForward struct{}
	stepped     struct{}
	done        struct{}
)

// A Debugger intercepts opcode execution to allow inspection of the stack,
// memory, and PC between any two opcodes. The value returned by its
// Tracer() method must be set as a *vm.Context's Tracer field before
// vm.Execute is called.
//
// Currently only a single frame is observed directly; CALL-family opcodes
// still step through their sub-frames since the interpreter shares one
// Tracer across nested Execute calls.
type Debugger struct {
	t *tracer

	step        chan<- step
	fastForward chan<- fastForward
	stepped     <-chan stepped
	done        <-chan done
}

// Tracer returns a vm.Tracer that enables debugging; assign it to
// vm.Context.Tracer before calling vm.Execute.
func (d *Debugger) Tracer() vm.Tracer {
	return d.t
}

// Wait blocks until the Debugger is blocking the interpreter from running
// the next opcode (or the Debugger has been closed). It does not capture
// state: State() is refreshed only by Step().
func (d *Debugger) Wait() {
	_ = d.t.gate.Wait(context.Background())
}

func (d *Debugger) close(closeFastForward bool) {
	close(d.step)
	if closeFastForward {
		close(d.fastForward)
	}
	d.t.gate.Close()
}

// Step advances execution by one opcode. Step MUST NOT be called
// concurrently with any other Debugger methods, nor after Done() returns
// true.
func (d *Debugger) Step() {
	d.step <- step{}
	<-d.stepped

	select {
	case <-d.done:
		d.close(true)
	default:
	}
}

// FastForward executes all remaining opcodes, equivalent to calling Step()
// in a loop until Done() returns true.
//
//	dbg := evmdebug.NewDebugger()
//	defer dbg.FastForward()
func (d *Debugger) FastForward() {
	select {
	case <-d.t.fastForward:
		return
	default:
	}

	close(d.fastForward)
	for {
		select {
		case <-d.stepped:
		case <-d.done:
			d.close(false)
			return
		}
	}
}

// Done reports whether execution has ended.
func (d *Debugger) Done() bool {
	select {
	case <-d.done:
		return true
	default:
		return false
	}
}

// State returns the last-captured state, refreshed on every Step(): the
// pre-dispatch state of the opcode that Step() just advanced past (or, for
// a terminal opcode, the state at the fault with Err set). Before the first
// Step() it is the zero CapturedState.
func (d *Debugger) State() *CapturedState {
	return &d.t.last
}

// CapturedState carries the values observed at a single opcode boundary.
type CapturedState struct {
	PC     int
	Op     vm.OpCode
	Stack  []word32
	Memory []byte
	Err    error
}

// word32 avoids importing the word package's alias directly into this
// struct's field type name while still exposing the same 32-byte layout;
// callers that need arithmetic should use ctx.Machine.Stack directly via a
// custom Tracer instead.
type word32 = [32]byte

// tracer implements vm.Tracer and is injected by its parent Debugger to
// intercept opcode execution.
//
// Unlike go-ethereum's vm.EVMLogger, whose CaptureState and CaptureFault are
// mutually exclusive for a given opcode, this module's vm.Tracer always
// calls OnOpcode before dispatch and calls OnFault additionally, only when
// that dispatch doesn't simply fall through to the next opcode. So the
// signal telling Step() that a single step has fully completed cannot be
// sent by OnOpcode itself (it runs before the opcode's outcome is known);
// it is instead sent by whichever of OnFault or the NEXT OnOpcode call runs
// first, since exactly one of them always follows. That flush-on-the-next-
// event structure is what guarantees Step() never observes d.done as open
// when it was in fact the final step: OnFault always closes d.done before
// closing d.stepped, in that order, on this same goroutine, and a channel
// close happens-before the receive it unblocks.
type tracer struct {
	step        <-chan step
	fastForward <-chan fastForward
	stepped     chan<- stepped
	gate        sync.Gate
	done        chan<- done

	started bool
	last    CapturedState
}

func (t *tracer) OnOpcode(ctx *vm.Context, pc int, op vm.OpCode) {
	if t.started {
		// The previous OnOpcode's opcode dispatched without faulting
		// (otherwise OnFault, not this call, would be doing the flush) --
		// only now can Step() be told that step is complete.
		t.stepped <- stepped{}
	}
	t.started = true

	t.gate.Open(true)
	select {
	case <-t.step:
	case <-t.fastForward:
	}

	t.last.PC = pc
	t.last.Op = op
	t.last.Stack = snapshotStack(ctx)
	t.last.Memory = append([]byte(nil), ctx.Machine.Memory.Data()...)
	t.last.Err = nil

	t.gate.Open(false)
}

func (t *tracer) OnFault(ctx *vm.Context, pc int, op vm.OpCode, err error) {
	t.last.PC = pc
	t.last.Op = op
	t.last.Stack = snapshotStack(ctx)
	t.last.Memory = append([]byte(nil), ctx.Machine.Memory.Data()...)
	t.last.Err = err

	if ctx.Input.Depth > 0 {
		// A nested CALL/CREATE frame ended; the enclosing frame's next
		// OnOpcode or OnFault completes this step.
		return
	}
	close(t.done)
	close(t.stepped)
}

func snapshotStack(ctx *vm.Context) []word32 {
	snap := ctx.Machine.Stack.Snapshot()
	out := make([]word32, len(snap))
	for i := range snap {
		out[i] = snap[i].Bytes32()
	}
	return out
}
