package vm

import "github.com/evmspec/evmcore/word"

func opPop(ctx *Context) ([]byte, error) {
	ctx.Machine.Stack.Pop()
	return nil, nil
}

// opPush0 implements PUSH0 (0x5F): pushes 0 and consumes no immediate
// bytes.
func opPush0(ctx *Context) ([]byte, error) {
	ctx.Machine.Stack.Push(word.Zero())
	return nil, nil
}

// opPush implements PUSH1..PUSH32: reads n = opcode-0x5F immediate bytes
// big-endian, pushes the Word, and leaves pc pointing at the final
// immediate byte so that the interpreter's single pc++ lands on the next
// instruction.
func opPush(ctx *Context) ([]byte, error) {
	n := ctx.currentOp.PushSize()
	code := ctx.Input.Bytecode
	start := ctx.Machine.PC + 1
	end := start + n
	var buf []byte
	if end <= len(code) {
		buf = code[start:end]
	} else {
		// Out-of-bounds immediate data is zero-padded, matching the
		// convention that bytecode is implicitly followed by STOPs.
		buf = make([]byte, n)
		if start < len(code) {
			copy(buf, code[start:])
		}
	}
	ctx.Machine.Stack.Push(word.FromBytes(buf))
	ctx.Machine.PC += n
	return nil, nil
}

func opDup(ctx *Context) ([]byte, error) {
	ctx.Machine.Stack.Dup(ctx.currentOp.DupN())
	return nil, nil
}

func opSwap(ctx *Context) ([]byte, error) {
	ctx.Machine.Stack.Swap(ctx.currentOp.SwapN())
	return nil, nil
}

func opMload(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	offset := s.Pop()
	s.Push(ctx.Machine.Memory.Load(offset.Uint64()))
	return nil, nil
}

func opMstore(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	offset, v := s.Pop(), s.Pop()
	ctx.Machine.Memory.Store(offset.Uint64(), v)
	return nil, nil
}

func opMstore8(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	offset, v := s.Pop(), s.Pop()
	ctx.Machine.Memory.Store8(offset.Uint64(), v)
	return nil, nil
}

func opMsize(ctx *Context) ([]byte, error) {
	ctx.Machine.Stack.Push(word.FromUint64(ctx.Machine.Memory.ActiveWords() * 32))
	return nil, nil
}
