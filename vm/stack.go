package vm

import "github.com/evmspec/evmcore/word"

// MaxStackDepth is the maximum number of Words a Stack may hold at any
// opcode boundary.
const MaxStackDepth = 1024

// Stack is an ordered LIFO sequence of Words, "top" at the high end of the
// backing slice, mirroring go-ethereum's core/vm.Stack layout.
type Stack struct {
	data []word.Word
}

// newStack returns an empty Stack with its backing array preallocated to
// MaxStackDepth, avoiding reallocation for the common case.
func newStack() *Stack {
	return &Stack{data: make([]word.Word, 0, MaxStackDepth)}
}

// Len returns the current stack depth.
func (s *Stack) Len() int { return len(s.data) }

// Push appends v to the top of the stack. Callers (the interpreter loop)
// are responsible for rejecting pushes that would exceed MaxStackDepth.
func (s *Stack) Push(v *word.Word) {
	s.data = append(s.data, *v)
}

// Pop removes and returns the top of the stack. It panics if the stack is
// empty; callers must check Len() (or rely on the interpreter's stack-arity
// validation) first.
func (s *Stack) Pop() *word.Word {
	n := len(s.data) - 1
	v := s.data[n]
	s.data = s.data[:n]
	return &v
}

// Peek returns a pointer to the n-th element from the top (0 = the very
// top) without removing it. The returned pointer aliases the stack's
// backing array and MUST NOT be retained past the next mutating call.
func (s *Stack) Peek(n int) *word.Word {
	return &s.data[len(s.data)-1-n]
}

// Dup duplicates the n-th element from the top (1-indexed, as in DUPn) onto
// the top of the stack.
func (s *Stack) Dup(n int) {
	v := s.data[len(s.data)-n]
	s.data = append(s.data, v)
}

// Swap exchanges the top element with the element n deep (1-indexed, as in
// SWAPn, so SWAP1 exchanges top and second-from-top).
func (s *Stack) Swap(n int) {
	i := len(s.data) - 1
	j := i - n
	s.data[i], s.data[j] = s.data[j], s.data[i]
}

// Snapshot returns the stack contents from bottom to top, for inspection
// (debugger, harness diffing). The returned slice is a copy.
func (s *Stack) Snapshot() []word.Word {
	out := make([]word.Word, len(s.data))
	copy(out, s.data)
	return out
}
