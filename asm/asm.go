// Package asm is a small labeled assembler for building bytecode fixtures
// without hand-computing JUMPDEST offsets: callers write JUMPDEST/Label tags
// and PUSH a tag instead of a raw offset. Unlike an assembler that performs
// iterative width expansion to pick the smallest possible PUSHn for every
// tag reference, this one always emits a fixed-width PUSH2 for label
// references: the minimal-width optimization is bytecode-size tuning with no
// semantic bearing on what this module executes, so it is dropped in favor
// of a single, simple two-pass algorithm (DESIGN.md explains the tradeoff).
package asm

import (
	"fmt"

	"github.com/evmspec/evmcore/vm"
	"github.com/evmspec/evmcore/word"
)

// Label names a byte offset to be resolved when Code is assembled. A Label
// may be defined with Mark and referenced with PushLabel any number of times,
// in any order.
type Label string

// item is a single assembled unit: a plain opcode (with optional immediate
// bytes), a Label definition (JUMPDEST), or a Label reference (PUSH2 of the
// label's eventual offset).
type item struct {
	op        vm.OpCode
	data      []byte
	mark      Label
	reference Label
}

// Code is a sequence of assembler items, built with Op/Push/Mark/PushLabel
// and converted to bytecode with Assemble.
type Code []item

// Op appends a bare opcode with no immediate data.
func Op(op vm.OpCode) item { return item{op: op} }

// Push appends a PUSHn of the given bytes (1 <= len(data) <= 32),
// big-endian, n = len(data).
func Push(data []byte) item {
	return item{op: vm.OpCode(int(vm.PUSH1) + len(data) - 1), data: data}
}

// PushWord appends the minimal-length PUSHn of w (PUSH0 if w is zero).
func PushWord(w *word.Word) item {
	full := w.Bytes32()
	i := 0
	for i < 32 && full[i] == 0 {
		i++
	}
	if i == 32 {
		return item{op: vm.PUSH0}
	}
	return Push(full[i:])
}

// PushUint64 appends the minimal-length PUSHn of v.
func PushUint64(v uint64) item {
	return PushWord(word.FromUint64(v))
}

// Mark defines l as the offset of the very next item (a vm.JUMPDEST is
// emitted here).
func Mark(l Label) item { return item{op: vm.JUMPDEST, mark: l} }

// PushLabel appends a PUSH2 of l's eventual offset, resolved by Assemble.
func PushLabel(l Label) item { return item{reference: l} }

// Assemble resolves every Label reference against its Mark and returns the
// concatenated bytecode. Two passes: the first assumes every PushLabel
// occupies 3 bytes (PUSH2 + 2-byte offset) to compute each Mark's offset;
// the second emits concrete bytes. Because every reference is fixed-width,
// a single pass of each suffices (no expansion/contraction feedback loop
// like a variable-width splicing assembler needs).
func (c Code) Assemble() ([]byte, error) {
	offsets := make(map[Label]int, len(c))
	pc := 0
	for _, it := range c {
		if it.mark != "" {
			if _, ok := offsets[it.mark]; ok {
				return nil, fmt.Errorf("asm: duplicate label %q", it.mark)
			}
			offsets[it.mark] = pc
			pc++
			continue
		}
		if it.reference != "" {
			pc += 3
			continue
		}
		pc += 1 + len(it.data)
	}

	out := make([]byte, 0, pc)
	for _, it := range c {
		switch {
		case it.mark != "":
			out = append(out, byte(vm.JUMPDEST))
		case it.reference != "":
			off, ok := offsets[it.reference]
			if !ok {
				return nil, fmt.Errorf("asm: undefined label %q", it.reference)
			}
			if off > 0xffff {
				return nil, fmt.Errorf("asm: label %q at offset %d exceeds PUSH2 range", it.reference, off)
			}
			out = append(out, byte(vm.PUSH2), byte(off>>8), byte(off))
		default:
			out = append(out, byte(it.op))
			out = append(out, it.data...)
		}
	}
	return out, nil
}
