package vm

import "github.com/evmspec/evmcore/word"

var twoFiveFive = word.FromUint64(255)

func opAnd(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	x, y := s.Pop(), s.Peek(0)
	y.And(x, y)
	return nil, nil
}

func opOr(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	x, y := s.Pop(), s.Peek(0)
	y.Or(x, y)
	return nil, nil
}

func opXor(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	x, y := s.Pop(), s.Peek(0)
	y.Xor(x, y)
	return nil, nil
}

func opNot(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	v := s.Peek(0)
	v.Not(v)
	return nil, nil
}

// opByte implements BYTE(i, v): the i-th most-significant byte of v
// (0-indexed); i>31 yields 0.
func opByte(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	i, v := s.Pop(), s.Peek(0)
	v.Byte(i)
	return nil, nil
}

// opShl, opShr, opSar: shifts by >=256 yield 0, except SAR on a negative
// value which yields all-ones. uint256's Lsh/Rsh/SRsh already implement this
// saturating behaviour for counts >255 since they take a uint shift count
// capped by the type; counts >=256 are clamped here explicitly for clarity
// and portability.
func opShl(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	shift, v := s.Pop(), s.Peek(0)
	if shift.Gt(twoFiveFive) {
		v.Clear()
		return nil, nil
	}
	v.Lsh(v, uint(shift.Uint64()))
	return nil, nil
}

func opShr(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	shift, v := s.Pop(), s.Peek(0)
	if shift.Gt(twoFiveFive) {
		v.Clear()
		return nil, nil
	}
	v.Rsh(v, uint(shift.Uint64()))
	return nil, nil
}

func opSar(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	shift, v := s.Pop(), s.Peek(0)
	if shift.Gt(twoFiveFive) {
		if word.IsNegative(v) {
			v.SetAllOne()
		} else {
			v.Clear()
		}
		return nil, nil
	}
	v.SRsh(v, uint(shift.Uint64()))
	return nil, nil
}
