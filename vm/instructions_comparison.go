package vm

import "github.com/evmspec/evmcore/word"

func push1or0(v *word.Word, cond bool) {
	if cond {
		v.SetOne()
	} else {
		v.Clear()
	}
}

func opLt(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	x, y := s.Pop(), s.Peek(0)
	push1or0(y, x.Lt(y))
	return nil, nil
}

func opGt(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	x, y := s.Pop(), s.Peek(0)
	push1or0(y, x.Gt(y))
	return nil, nil
}

func opSlt(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	x, y := s.Pop(), s.Peek(0)
	push1or0(y, x.Slt(y))
	return nil, nil
}

func opSgt(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	x, y := s.Pop(), s.Peek(0)
	push1or0(y, x.Sgt(y))
	return nil, nil
}

func opEq(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	x, y := s.Pop(), s.Peek(0)
	push1or0(y, x.Eq(y))
	return nil, nil
}

func opIszero(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	v := s.Peek(0)
	push1or0(v, v.IsZero())
	return nil, nil
}
