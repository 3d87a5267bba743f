package vm

import "github.com/evmspec/evmcore/word"

// opJump implements JUMP: pops the destination, validates it, and leaves
// ctx.Machine.PC at dest-1 so the interpreter's universal pc++ lands
// exactly on dest.
func opJump(ctx *Context) ([]byte, error) {
	dest := ctx.Machine.Stack.Pop()
	d := int(dest.Uint64())
	if !dest.IsUint64() || !ctx.isValidJumpDest(d) {
		return nil, halt(false, ErrInvalidJumpDest)
	}
	ctx.Machine.PC = d - 1
	return nil, nil
}

// opJumpi implements JUMPI: as JUMP, but conditional on a popped non-zero
// condition; when the condition is zero, execution falls through to the
// next instruction as normal.
func opJumpi(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	dest, cond := s.Pop(), s.Pop()
	if cond.IsZero() {
		return nil, nil
	}
	d := int(dest.Uint64())
	if !dest.IsUint64() || !ctx.isValidJumpDest(d) {
		return nil, halt(false, ErrInvalidJumpDest)
	}
	ctx.Machine.PC = d - 1
	return nil, nil
}

func opPc(ctx *Context) ([]byte, error) {
	ctx.Machine.Stack.Push(word.FromUint64(uint64(ctx.Machine.PC)))
	return nil, nil
}

// opGas pushes a sentinel "unbounded gas" value, since this interpreter
// implements no gas metering.
func opGas(ctx *Context) ([]byte, error) {
	ctx.Machine.Stack.Push(new(word.Word).SetAllOne())
	return nil, nil
}

// opJumpdest is a no-op marker; it exists only to be a valid jump target.
func opJumpdest(ctx *Context) ([]byte, error) {
	return nil, nil
}

func opReturn(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	offset, size := s.Pop(), s.Pop()
	out := ctx.Machine.Memory.Read(offset.Uint64(), size.Uint64())
	return nil, &returnOp{output: out, revert: false}
}

func opRevert(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	offset, size := s.Pop(), s.Pop()
	out := ctx.Machine.Memory.Read(offset.Uint64(), size.Uint64())
	return nil, &returnOp{output: out, revert: true}
}
