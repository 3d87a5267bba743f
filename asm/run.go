package asm

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/evmspec/evmcore/state"
	"github.com/evmspec/evmcore/vm"
	"github.com/evmspec/evmcore/word"
)

// RunOption adjusts the Input a Run executes with.
type RunOption func(*vm.Input)

// WithCallData sets the calldata the assembled bytecode executes against.
func WithCallData(data []byte) RunOption {
	return func(in *vm.Input) { in.Data = data }
}

// WithValue sets the value transferred into the frame.
func WithValue(v *word.Word) RunOption {
	return func(in *vm.Input) { in.Value = v }
}

// WithAddress sets the executing contract's own address.
func WithAddress(addr common.Address) RunOption {
	return func(in *vm.Input) { in.Address = addr }
}

// WithTracer returns a function that sets tr as a *vm.Context's Tracer. It is
// not a RunOption: Run does not accept it, and Run executes without a
// tracer.
func WithTracer(tr vm.Tracer) func(*vm.Context) {
	return func(ctx *vm.Context) { ctx.Tracer = tr }
}

// Run assembles c and executes it against a fresh World. callData and any
// RunOptions configure the frame's Input; the assembled contract is always
// given full write permission.
func (c Code) Run(callData []byte, opts ...RunOption) ([]byte, error) {
	compiled, err := c.Assemble()
	if err != nil {
		return nil, fmt.Errorf("%T.Assemble(): %w", c, err)
	}

	in := &vm.Input{
		Address:     common.Address{},
		Origin:      common.Address{},
		Sender:      common.Address{},
		Value:       word.Zero(),
		Price:       word.Zero(),
		Data:        callData,
		Bytecode:    compiled,
		Write:       true,
		BlockHeader: vm.DefaultBlockHeader(),
	}
	for _, o := range opts {
		o(in)
	}

	ctx := vm.NewContext(state.New(), in)
	res, err := vm.Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("vm.Execute: %w", err)
	}
	if !res.Success {
		return res.Output, fmt.Errorf("asm: execution failed")
	}
	return res.Output, nil
}
