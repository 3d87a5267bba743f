package vm

import "github.com/evmspec/evmcore/word"

func opAddress(ctx *Context) ([]byte, error) {
	ctx.Machine.Stack.Push(word.FromAddress(ctx.Input.Address))
	return nil, nil
}

func opBalance(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	addrWord := s.Peek(0)
	addr := word.ToAddress(addrWord)
	ctx.Substate.AccessAccount(addr)
	addrWord.Set(ctx.World.Balance(addr))
	return nil, nil
}

func opOrigin(ctx *Context) ([]byte, error) {
	ctx.Machine.Stack.Push(word.FromAddress(ctx.Input.Origin))
	return nil, nil
}

func opCaller(ctx *Context) ([]byte, error) {
	ctx.Machine.Stack.Push(word.FromAddress(ctx.Input.Sender))
	return nil, nil
}

func opCallvalue(ctx *Context) ([]byte, error) {
	ctx.Machine.Stack.Push(new(word.Word).Set(ctx.Input.Value))
	return nil, nil
}

func opCalldataload(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	offset := s.Peek(0)
	off := offset.Uint64()
	data := ctx.Input.Data

	buf := make([]byte, 32)
	if off < uint64(len(data)) {
		copy(buf, data[off:])
	}
	offset.Set(word.FromBytes(buf))
	return nil, nil
}

func opCalldatasize(ctx *Context) ([]byte, error) {
	ctx.Machine.Stack.Push(word.FromUint64(uint64(len(ctx.Input.Data))))
	return nil, nil
}

func opCalldatacopy(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	destOffset, srcOffset, size := s.Pop(), s.Pop(), s.Pop()
	ctx.Machine.Memory.CopyFrom(destOffset.Uint64(), ctx.Input.Data, srcOffset.Uint64(), size.Uint64())
	return nil, nil
}

func opCodesize(ctx *Context) ([]byte, error) {
	ctx.Machine.Stack.Push(word.FromUint64(uint64(len(ctx.Input.Bytecode))))
	return nil, nil
}

func opCodecopy(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	destOffset, srcOffset, size := s.Pop(), s.Pop(), s.Pop()
	ctx.Machine.Memory.CopyFrom(destOffset.Uint64(), ctx.Input.Bytecode, srcOffset.Uint64(), size.Uint64())
	return nil, nil
}

func opGasprice(ctx *Context) ([]byte, error) {
	ctx.Machine.Stack.Push(new(word.Word).Set(ctx.Input.Price))
	return nil, nil
}

func opExtcodesize(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	addrWord := s.Peek(0)
	addr := word.ToAddress(addrWord)
	ctx.Substate.AccessAccount(addr)
	addrWord.Set(word.FromUint64(uint64(len(ctx.World.Code(addr)))))
	return nil, nil
}

func opExtcodecopy(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	addrWord, destOffset, srcOffset, size := s.Pop(), s.Pop(), s.Pop(), s.Pop()
	addr := word.ToAddress(addrWord)
	ctx.Substate.AccessAccount(addr)
	ctx.Machine.Memory.CopyFrom(destOffset.Uint64(), ctx.World.Code(addr), srcOffset.Uint64(), size.Uint64())
	return nil, nil
}

func opReturndatasize(ctx *Context) ([]byte, error) {
	ctx.Machine.Stack.Push(word.FromUint64(uint64(len(ctx.Machine.Output))))
	return nil, nil
}

// opReturndatacopy follows the same zero-padded-past-the-end extension rule
// as CALLDATACOPY/CODECOPY/EXTCODECOPY -- unlike real Ethereum, which faults
// on an out-of-bounds RETURNDATACOPY, this interpreter deliberately does not
// special-case it.
func opReturndatacopy(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	destOffset, srcOffset, size := s.Pop(), s.Pop(), s.Pop()
	ctx.Machine.Memory.CopyFrom(destOffset.Uint64(), ctx.Machine.Output, srcOffset.Uint64(), size.Uint64())
	return nil, nil
}

func opExtcodehash(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	addrWord := s.Peek(0)
	addr := word.ToAddress(addrWord)
	ctx.Substate.AccessAccount(addr)
	if _, ok := ctx.World.Get(addr); !ok {
		addrWord.Clear()
		return nil, nil
	}
	addrWord.Set(ctx.World.CodeHash(addr))
	return nil, nil
}

// opBlockhash always pushes zero: this interpreter carries no block
// history.
func opBlockhash(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	blockNum := s.Peek(0)
	blockNum.Clear()
	return nil, nil
}

func opCoinbase(ctx *Context) ([]byte, error) {
	ctx.Machine.Stack.Push(word.FromAddress(ctx.Input.BlockHeader.Coinbase))
	return nil, nil
}

func opTimestamp(ctx *Context) ([]byte, error) {
	ctx.Machine.Stack.Push(new(word.Word).Set(ctx.Input.BlockHeader.Timestamp))
	return nil, nil
}

func opNumber(ctx *Context) ([]byte, error) {
	ctx.Machine.Stack.Push(new(word.Word).Set(ctx.Input.BlockHeader.Number))
	return nil, nil
}

func opDifficulty(ctx *Context) ([]byte, error) {
	ctx.Machine.Stack.Push(new(word.Word).Set(ctx.Input.BlockHeader.Difficulty))
	return nil, nil
}

func opGaslimit(ctx *Context) ([]byte, error) {
	ctx.Machine.Stack.Push(new(word.Word).Set(ctx.Input.BlockHeader.GasLimit))
	return nil, nil
}

func opChainid(ctx *Context) ([]byte, error) {
	ctx.Machine.Stack.Push(new(word.Word).Set(chainID))
	return nil, nil
}

func opSelfbalance(ctx *Context) ([]byte, error) {
	ctx.Machine.Stack.Push(ctx.World.Balance(ctx.Input.Address))
	return nil, nil
}

func opBasefee(ctx *Context) ([]byte, error) {
	ctx.Machine.Stack.Push(new(word.Word).Set(ctx.Input.BlockHeader.BaseFee))
	return nil, nil
}
