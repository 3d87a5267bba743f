package vm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/evmspec/evmcore/word"
)

// maxCallDepth bounds CALL/CREATE-family nesting (the same limit that
// bounds stack depth).
const maxCallDepth = 1024

// subExecute runs in as a nested frame sharing ctx's World and
// AccruedSubstate: only Input and MachineState are frame-local.
func subExecute(ctx *Context, in *Input) (Result, error) {
	sub := &Context{
		World:    ctx.World,
		Substate: ctx.Substate,
		Input:    in,
		Machine:  NewMachineState(),
		Tracer:   ctx.Tracer,
	}
	sub.jumpdests = analyzeJumpDests(in.Bytecode)
	return Execute(sub)
}

// writeCallResult copies a completed sub-frame's output into the caller's
// memory (zero-padded/truncated to retSize) and records it as the current
// RETURNDATA.
func writeCallResult(ctx *Context, res Result, retOffset, retSize uint64) {
	ctx.Machine.Output = res.Output
	if retSize > 0 {
		ctx.Machine.Memory.CopyFrom(retOffset, res.Output, 0, retSize)
	}
}

func pushBool(s *Stack, ok bool) {
	v := word.Zero()
	if ok {
		v.SetOne()
	}
	s.Push(v)
}

// opCall implements CALL: transfers value from the caller to the callee (if
// any), then executes the callee's code as a brand-new frame with its own
// address, storage, and write permission inherited from the current frame.
func opCall(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	_ = s.Pop() // gas: unmetered, discarded
	addrWord, value := s.Pop(), s.Pop()
	argsOffset, argsSize := s.Pop(), s.Pop()
	retOffset, retSize := s.Pop(), s.Pop()

	target := word.ToAddress(addrWord)
	ctx.Substate.AccessAccount(target)
	ctx.Substate.TouchAccount(target)

	if ctx.Input.Depth >= maxCallDepth || ctx.World.Balance(ctx.Input.Address).Lt(value) {
		pushBool(s, false)
		return nil, nil
	}

	args := ctx.Machine.Memory.Read(argsOffset.Uint64(), argsSize.Uint64())

	ctx.World.SubBalance(ctx.Input.Address, value)
	ctx.World.AddBalance(target, value)

	in := &Input{
		Address:     target,
		Origin:      ctx.Input.Origin,
		Sender:      ctx.Input.Address,
		Value:       new(word.Word).Set(value),
		Price:       ctx.Input.Price,
		Data:        args,
		Bytecode:    ctx.World.Code(target),
		Depth:       ctx.Input.Depth + 1,
		Write:       ctx.Input.Write,
		BlockHeader: ctx.Input.BlockHeader,
	}
	res, err := subExecute(ctx, in)
	if err != nil {
		return nil, err
	}
	writeCallResult(ctx, res, retOffset.Uint64(), retSize.Uint64())
	pushBool(s, res.Success)
	return nil, nil
}

// opCallcode implements CALLCODE: runs the target's code in the CALLER's own
// address and storage, so only the value-sufficiency check applies -- no
// balance actually moves, since sender and recipient are the same account.
func opCallcode(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	_ = s.Pop() // gas
	addrWord, value := s.Pop(), s.Pop()
	argsOffset, argsSize := s.Pop(), s.Pop()
	retOffset, retSize := s.Pop(), s.Pop()

	target := word.ToAddress(addrWord)
	ctx.Substate.AccessAccount(target)

	if ctx.Input.Depth >= maxCallDepth || ctx.World.Balance(ctx.Input.Address).Lt(value) {
		pushBool(s, false)
		return nil, nil
	}

	args := ctx.Machine.Memory.Read(argsOffset.Uint64(), argsSize.Uint64())

	in := &Input{
		Address:     ctx.Input.Address,
		Origin:      ctx.Input.Origin,
		Sender:      ctx.Input.Address,
		Value:       new(word.Word).Set(value),
		Price:       ctx.Input.Price,
		Data:        args,
		Bytecode:    ctx.World.Code(target),
		Depth:       ctx.Input.Depth + 1,
		Write:       ctx.Input.Write,
		BlockHeader: ctx.Input.BlockHeader,
	}
	res, err := subExecute(ctx, in)
	if err != nil {
		return nil, err
	}
	writeCallResult(ctx, res, retOffset.Uint64(), retSize.Uint64())
	pushBool(s, res.Success)
	return nil, nil
}

// opDelegatecall implements DELEGATECALL: runs the target's code in the
// CALLER's address, storage, sender and value, i.e. exactly the current
// frame's Input except for Bytecode and Depth.
func opDelegatecall(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	_ = s.Pop() // gas
	addrWord := s.Pop()
	argsOffset, argsSize := s.Pop(), s.Pop()
	retOffset, retSize := s.Pop(), s.Pop()

	target := word.ToAddress(addrWord)
	ctx.Substate.AccessAccount(target)

	if ctx.Input.Depth >= maxCallDepth {
		pushBool(s, false)
		return nil, nil
	}

	args := ctx.Machine.Memory.Read(argsOffset.Uint64(), argsSize.Uint64())

	in := ctx.Input.Clone()
	in.Data = args
	in.Bytecode = ctx.World.Code(target)
	in.Depth = ctx.Input.Depth + 1

	res, err := subExecute(ctx, in)
	if err != nil {
		return nil, err
	}
	writeCallResult(ctx, res, retOffset.Uint64(), retSize.Uint64())
	pushBool(s, res.Success)
	return nil, nil
}

// opStaticcall implements STATICCALL: as CALL but with zero value and Write
// forced false regardless of the caller's own write permission.
func opStaticcall(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	_ = s.Pop() // gas
	addrWord := s.Pop()
	argsOffset, argsSize := s.Pop(), s.Pop()
	retOffset, retSize := s.Pop(), s.Pop()

	target := word.ToAddress(addrWord)
	ctx.Substate.AccessAccount(target)
	ctx.Substate.TouchAccount(target)

	if ctx.Input.Depth >= maxCallDepth {
		pushBool(s, false)
		return nil, nil
	}

	args := ctx.Machine.Memory.Read(argsOffset.Uint64(), argsSize.Uint64())

	in := &Input{
		Address:     target,
		Origin:      ctx.Input.Origin,
		Sender:      ctx.Input.Address,
		Value:       word.Zero(),
		Price:       ctx.Input.Price,
		Data:        args,
		Bytecode:    ctx.World.Code(target),
		Depth:       ctx.Input.Depth + 1,
		Write:       false,
		BlockHeader: ctx.Input.BlockHeader,
	}
	res, err := subExecute(ctx, in)
	if err != nil {
		return nil, err
	}
	writeCallResult(ctx, res, retOffset.Uint64(), retSize.Uint64())
	pushBool(s, res.Success)
	return nil, nil
}

// newContractAddress derives a fresh address for addr's next contract
// creation and increments addr's nonce, matching go-ethereum's
// crypto.CreateAddress (RLP(sender, nonce)).
func newContractAddress(ctx *Context, addr common.Address) common.Address {
	acct := ctx.World.GetOrCreate(addr)
	nonce := acct.Nonce
	acct.Nonce++
	return crypto.CreateAddress(addr, nonce)
}

// opCreate implements CREATE: runs memory[offset:offset+size] as init code
// in a brand-new frame/address, installing the returned bytes as the new
// account's code on success.
func opCreate(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	value, offset, size := s.Pop(), s.Pop(), s.Pop()

	if ctx.Input.Depth >= maxCallDepth || ctx.World.Balance(ctx.Input.Address).Lt(value) {
		pushBool(s, false)
		return nil, nil
	}

	initCode := ctx.Machine.Memory.Read(offset.Uint64(), size.Uint64())
	newAddr := newContractAddress(ctx, ctx.Input.Address)
	create(ctx, newAddr, value, initCode, s)
	return nil, nil
}

// opCreate2 implements CREATE2: as CREATE, but the new address is
// deterministic from the caller, a salt, and the init code's hash, rather
// than the caller's nonce.
func opCreate2(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	value, offset, size, salt := s.Pop(), s.Pop(), s.Pop(), s.Pop()

	if ctx.Input.Depth >= maxCallDepth || ctx.World.Balance(ctx.Input.Address).Lt(value) {
		pushBool(s, false)
		return nil, nil
	}

	initCode := ctx.Machine.Memory.Read(offset.Uint64(), size.Uint64())
	initHash := crypto.Keccak256(initCode)
	newAddr := crypto.CreateAddress2(ctx.Input.Address, salt.Bytes32(), initHash)
	create(ctx, newAddr, value, initCode, s)
	return nil, nil
}

// create runs the shared CREATE/CREATE2 tail: execute initCode as a new
// frame's bytecode, and on success install its output as the new account's
// code; on failure, push the zero address.
func create(ctx *Context, newAddr common.Address, value *word.Word, initCode []byte, s *Stack) {
	ctx.World.SubBalance(ctx.Input.Address, value)
	ctx.World.AddBalance(newAddr, value)

	in := &Input{
		Address:     newAddr,
		Origin:      ctx.Input.Origin,
		Sender:      ctx.Input.Address,
		Value:       new(word.Word).Set(value),
		Price:       ctx.Input.Price,
		Data:        nil,
		Bytecode:    initCode,
		Depth:       ctx.Input.Depth + 1,
		Write:       true,
		BlockHeader: ctx.Input.BlockHeader,
	}
	res, err := subExecute(ctx, in)
	if err != nil || !res.Success {
		s.Push(word.Zero())
		return
	}

	acct := ctx.World.GetOrCreate(newAddr)
	acct.Code = res.Output
	acct.CodeHash = word.FromBytes(crypto.Keccak256(res.Output))
	s.Push(word.FromAddress(newAddr))
}

// opSelfdestruct implements SELFDESTRUCT: credits the executing account's
// entire balance to beneficiary and schedules the account for removal at
// the end of the top-level execution.
func opSelfdestruct(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	beneficiaryWord := s.Pop()
	beneficiary := word.ToAddress(beneficiaryWord)
	ctx.Substate.AccessAccount(beneficiary)
	ctx.Substate.TouchAccount(beneficiary)

	bal := ctx.World.Balance(ctx.Input.Address)
	ctx.World.AddBalance(beneficiary, bal)
	ctx.World.SubBalance(ctx.Input.Address, bal)
	ctx.Substate.ScheduleSelfDestruct(ctx.Input.Address, beneficiary)

	return nil, halt(true, errStop)
}
