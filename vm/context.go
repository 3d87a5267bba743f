package vm

import (
	"github.com/evmspec/evmcore/state"
)

// A Context is the single mutable aggregate threaded through every opcode
// handler by exclusive reference: it wraps WorldState and AccruedSubstate
// (globally mutable across all frames of one top-level execution) alongside
// the current frame's Input and MachineState (saved/restored structurally
// by CALL-family opcodes).
type Context struct {
	World    *state.World
	Substate *AccruedSubstate
	Input    *Input
	Machine  *MachineState
	Tracer   Tracer // optional, may be nil

	// jumpdests caches the valid-jump-destination analysis for the
	// bytecode currently executing (Input.Bytecode), recomputed whenever
	// the bytecode changes (i.e. on frame entry).
	jumpdests map[int]bool

	// currentOp is the opcode byte being dispatched this iteration; family
	// handlers (PUSH/DUP/SWAP/LOG) read it to recover N without needing
	// one closure per concrete opcode.
	currentOp OpCode
}

// setCurrentOp records the opcode being dispatched this iteration.
func (c *Context) setCurrentOp(op OpCode) { c.currentOp = op }

// NewContext returns a Context ready to execute a top-level transaction:
// fresh MachineState, empty AccruedSubstate, the given World (mutated
// in-place) and Input.
func NewContext(w *state.World, in *Input) *Context {
	c := &Context{
		World:    w,
		Substate: NewAccruedSubstate(),
		Input:    in,
		Machine:  NewMachineState(),
	}
	c.jumpdests = analyzeJumpDests(in.Bytecode)
	return c
}

// refreshJumpDests recomputes the jump-destination analysis for the
// Context's current Input.Bytecode. Sub-frames do not use it: subExecute
// builds a fresh Context and runs analyzeJumpDests on it directly.
func (c *Context) refreshJumpDests() {
	c.jumpdests = analyzeJumpDests(c.Input.Bytecode)
}

// analyzeJumpDests performs a linear pre-scan of code: a byte is a valid
// jump destination iff it holds a JUMPDEST opcode AND it is not part of the
// immediate-data payload of a preceding PUSH.
func analyzeJumpDests(code []byte) map[int]bool {
	dests := make(map[int]bool)
	for pc := 0; pc < len(code); {
		op := OpCode(code[pc])
		if op == JUMPDEST {
			dests[pc] = true
			pc++
			continue
		}
		if n := op.PushSize(); n > 0 {
			pc += 1 + n
			continue
		}
		pc++
	}
	return dests
}

// isValidJumpDest reports whether dest is a JUMPDEST byte not embedded in a
// PUSH's immediate data.
func (c *Context) isValidJumpDest(dest int) bool {
	if dest < 0 || dest >= len(c.Input.Bytecode) {
		return false
	}
	return c.jumpdests[dest]
}
