package vm

import "fmt"

// Result is what Execute returns: the final success flag and, if the frame
// halted via RETURN or REVERT, the produced output bytes.
type Result struct {
	Success bool
	Output  []byte
}

// Execute drives ctx.Machine.PC from its current value (0 for a fresh
// frame) until the end of the bytecode (an implicit STOP), STOP, a
// return-producing opcode, INVALID, or a propagated handler error, via a
// fetch-decode-dispatch loop.
//
// On return, every Address in ctx.Substate.SelfDestructSet that has not yet
// been swept is removed from ctx.World -- but ONLY when this Execute call
// is the outermost (depth 0) frame of the transaction; nested frames
// (CALL/CREATE) leave the sweep to the top-level caller, since
// SelfDestructSet is shared substate.
func Execute(ctx *Context) (res Result, err error) {
	topLevel := ctx.Input.Depth == 0

	res, err = run(ctx)
	if err != nil {
		return Result{}, err
	}

	if topLevel {
		for addr := range ctx.Substate.SelfDestructSet {
			ctx.World.Delete(addr)
		}
	}
	return res, nil
}

// run records each dispatched opcode on ctx (ctx.currentOp) for the family
// handlers; run() is never re-entered concurrently within one Context so
// this is race-free -- CALL-family opcodes recurse into Execute from within
// a handler invoked by this very loop, but subExecute gives every nested
// frame its own Context, so a nested run() never overwrites the caller's
// currentOp.
func run(ctx *Context) (Result, error) {
	code := ctx.Input.Bytecode

	for {
		pc := ctx.Machine.PC
		if pc >= len(code) {
			// Running off the end of the bytecode is an implicit STOP.
			if ctx.Tracer != nil {
				ctx.Tracer.OnFault(ctx, pc, STOP, errStop)
			}
			return Result{Success: true}, nil
		}
		if pc < 0 {
			return Result{}, fmt.Errorf("vm: %w at pc=%d (len=%d)", ErrNoBytecode, pc, len(code))
		}
		op := OpCode(code[pc])

		if ctx.Tracer != nil {
			ctx.Tracer.OnOpcode(ctx, pc, op)
		}

		if op.RequiresWrite() && !ctx.Input.Write {
			if ctx.Tracer != nil {
				ctx.Tracer.OnFault(ctx, pc, op, errWriteProtection)
			}
			return Result{Success: false}, nil
		}

		switch op {
		case STOP:
			if ctx.Tracer != nil {
				ctx.Tracer.OnFault(ctx, pc, op, errStop)
			}
			return Result{Success: true}, nil

		case INVALID:
			if ctx.Tracer != nil {
				ctx.Tracer.OnFault(ctx, pc, op, errInvalid)
			}
			return Result{Success: false}, nil
		}

		if err := checkArity(op, ctx.Machine.Stack.Len()); err != nil {
			if ctx.Tracer != nil {
				ctx.Tracer.OnFault(ctx, pc, op, err)
			}
			return Result{Success: false}, nil
		}

		handler := dispatchTable[op]
		if handler == nil {
			if ctx.Tracer != nil {
				ctx.Tracer.OnFault(ctx, pc, op, errInvalid)
			}
			if _, named := opCodeNames[op]; !named && !op.IsPush() && !op.IsDup() && !op.IsSwap() && !op.IsLog() {
				// An undefined opcode fails the frame exactly like INVALID.
				return Result{Success: false}, nil
			}
			return Result{}, newHandlerError(op, pc, fmt.Errorf("no handler registered for opcode %s", op))
		}

		ctx.setCurrentOp(op)
		out, herr := handler(ctx)
		if herr != nil {
			if ctx.Tracer != nil {
				ctx.Tracer.OnFault(ctx, pc, op, herr)
			}
			switch e := herr.(type) {
			case *returnOp:
				return Result{Success: !e.revert, Output: e.output}, nil
			case *haltError:
				return Result{Success: e.success}, nil
			case *HandlerError:
				return Result{}, e
			default:
				return Result{}, newHandlerError(op, pc, herr)
			}
		}

		// Every handler leaves ctx.Machine.PC pointing at the LAST byte it
		// consumed (itself, for most opcodes; the final immediate byte,
		// for PUSHn; dest-1, for JUMP/JUMPI when taken). The single
		// increment here is therefore always correct.
		ctx.Machine.PC++

		if out != nil {
			return Result{Success: true, Output: out}, nil
		}
	}
}
