package vm

import "github.com/evmspec/evmcore/word"

// Memory is byte-addressable, logically infinite, and zero-filled outside
// written regions. It preallocates a small initial buffer and grows on
// demand, tracking the high-water mark of 32-byte words touched so far
// (ActiveWords, i.e. MSIZE/32).
type Memory struct {
	data        []byte
	activeWords uint64
}

// initialMemoryBytes is the initial preallocation.
const initialMemoryBytes = 256

func newMemory() *Memory {
	return &Memory{data: make([]byte, 0, initialMemoryBytes)}
}

// ActiveWords returns the high-water-mark count of 32-byte words touched.
func (m *Memory) ActiveWords() uint64 { return m.activeWords }

// Len returns the number of allocated bytes backing the memory (always a
// multiple of 32 once any write has occurred).
func (m *Memory) Len() int { return len(m.data) }

// wordsFor returns the number of 32-byte words needed to cover [0, end).
func wordsFor(end uint64) uint64 {
	if end == 0 {
		return 0
	}
	return (end + 31) / 32
}

// grow extends memory, if necessary, to cover byte offset `end` (exclusive),
// zero-filling the new region, and advances activeWords accordingly. It is
// the single choke point through which every memory extension passes.
func (m *Memory) grow(end uint64) {
	words := wordsFor(end)
	if words > m.activeWords {
		m.activeWords = words
	}
	needed := m.activeWords * 32
	if uint64(len(m.data)) < needed {
		grown := make([]byte, needed)
		copy(grown, m.data)
		m.data = grown
	}
}

// Grow is the exported form of grow: it extends memory to cover
// [offset, offset+size) without reading or writing it. A zero size is a
// no-op. The opcode handlers extend memory through Read, Load, Store,
// Store8 and CopyFrom rather than calling Grow.
func (m *Memory) Grow(offset, size uint64) {
	if size == 0 {
		return
	}
	m.grow(offset + size)
}

// Load reads 32 bytes starting at offset, big-endian, zero-padding past the
// written end, and returns them as a Word (MLOAD).
func (m *Memory) Load(offset uint64) *word.Word {
	m.grow(offset + 32)
	return word.FromBytes(m.data[offset : offset+32])
}

// Store writes v as 32 big-endian bytes starting at offset (MSTORE).
func (m *Memory) Store(offset uint64, v *word.Word) {
	m.grow(offset + 32)
	b := v.Bytes32()
	copy(m.data[offset:offset+32], b[:])
}

// Store8 writes the low byte of v at offset (MSTORE8).
func (m *Memory) Store8(offset uint64, v *word.Word) {
	m.grow(offset + 1)
	m.data[offset] = byte(v.Uint64())
}

// Read returns a zero-padded copy of size bytes starting at offset. A
// zero-size read never extends memory.
func (m *Memory) Read(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	m.grow(offset + size)
	out := make([]byte, size)
	copy(out, m.data[offset:offset+size])
	return out
}

// Write copies src into memory at offset, growing as needed. The
// CALL-family opcodes copy sub-call output with CopyFrom instead, which
// also zero-pads to the requested size.
func (m *Memory) Write(offset uint64, src []byte) {
	if len(src) == 0 {
		return
	}
	m.grow(offset + uint64(len(src)))
	copy(m.data[offset:], src)
}

// Data returns the underlying memory slice for inspection (debugger).
// Callers must not modify it.
func (m *Memory) Data() []byte { return m.data }

// CopyFrom writes `length` bytes, read from src starting at srcOffset and
// zero-padded past src's end, into memory starting at destOffset. This is
// the shared implementation behind CALLDATACOPY, CODECOPY, EXTCODECOPY and
// RETURNDATACOPY.
func (m *Memory) CopyFrom(destOffset uint64, src []byte, srcOffset, length uint64) {
	if length == 0 {
		return
	}
	m.grow(destOffset + length)

	buf := make([]byte, length)
	if srcOffset < uint64(len(src)) {
		copy(buf, src[srcOffset:])
	}
	copy(m.data[destOffset:], buf)
}
