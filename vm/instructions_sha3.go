package vm

import (
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/evmspec/evmcore/word"
)

// opKeccak256 implements KECCAK256: hashes memory[offset:offset+size] and
// pushes the digest, growing memory to cover the range first.
func opKeccak256(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	offset, size := s.Pop(), s.Peek(0)
	off, sz := offset.Uint64(), size.Uint64()
	data := ctx.Machine.Memory.Read(off, sz)
	size.Set(word.FromBytes(crypto.Keccak256(data)))
	return nil, nil
}
