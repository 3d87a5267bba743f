package vm

import "github.com/evmspec/evmcore/word"

var thirtyOne = word.FromUint64(31)

// Arithmetic opcodes all wrap on overflow (256-bit modular arithmetic);
// division and remainder return 0 for a zero divisor rather than faulting.

func opAdd(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	x, y := s.Pop(), s.Peek(0)
	y.Add(x, y)
	return nil, nil
}

func opMul(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	x, y := s.Pop(), s.Peek(0)
	y.Mul(x, y)
	return nil, nil
}

func opSub(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	x, y := s.Pop(), s.Peek(0)
	y.Sub(x, y)
	return nil, nil
}

func opDiv(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	x, y := s.Pop(), s.Peek(0)
	y.Div(x, y)
	return nil, nil
}

func opSdiv(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	x, y := s.Pop(), s.Peek(0)
	y.SDiv(x, y)
	return nil, nil
}

func opMod(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	x, y := s.Pop(), s.Peek(0)
	y.Mod(x, y)
	return nil, nil
}

func opSmod(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	x, y := s.Pop(), s.Peek(0)
	y.SMod(x, y)
	return nil, nil
}

func opAddmod(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	x, y, n := s.Pop(), s.Pop(), s.Peek(0)
	n.AddMod(x, y, n)
	return nil, nil
}

func opMulmod(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	x, y, n := s.Pop(), s.Pop(), s.Peek(0)
	n.MulMod(x, y, n)
	return nil, nil
}

func opExp(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	base, exponent := s.Pop(), s.Peek(0)
	exponent.Exp(base, exponent)
	return nil, nil
}

// opSignExtend implements SIGNEXTEND(b, v): if b>=31 returns v unchanged;
// otherwise sign-extends from bit 8*b+7 up to bit 255.
func opSignExtend(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	b, v := s.Pop(), s.Peek(0)
	if b.Lt(thirtyOne) {
		v.ExtendSign(v, b)
	}
	return nil, nil
}
