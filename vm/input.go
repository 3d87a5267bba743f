package vm

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/evmspec/evmcore/word"
)

// BlockHeader carries the subset of block-level fields the environmental
// opcodes read. Full provenance (parent hashes, state roots, etc.) is out
// of scope.
type BlockHeader struct {
	Coinbase   common.Address
	Timestamp  *word.Word
	Number     *word.Word
	Difficulty *word.Word
	GasLimit   *word.Word
	BaseFee    *word.Word
}

// DefaultBlockHeader returns a BlockHeader with all-zero fields, suitable
// as a starting point for fixtures that don't specify one.
func DefaultBlockHeader() *BlockHeader {
	return &BlockHeader{
		Timestamp:  word.Zero(),
		Number:     word.Zero(),
		Difficulty: word.Zero(),
		GasLimit:   word.Zero(),
		BaseFee:    word.Zero(),
	}
}

// chainID is the constant CHAINID returns.
var chainID = word.FromUint64(1)

// Input is the per-frame execution context: the executing contract, the
// call's provenance, its calldata and code, and its write permission. It is
// saved and restored verbatim by the CALL-family opcodes around a nested
// Execute.
type Input struct {
	Address common.Address // the executing contract ("to")
	Origin  common.Address // outermost sender, never changed across sub-calls
	Sender  common.Address // immediate caller for this frame
	Value   *word.Word     // Wei transferred into this frame
	Price   *word.Word

	Data     []byte // calldata
	Bytecode []byte

	Depth int // 0..1024
	Write bool

	BlockHeader *BlockHeader
}

// Clone returns a deep-enough copy of in for save/restore around a
// CALL-family sub-execution: every field that a nested frame might mutate
// through its own Input value is independent, while BlockHeader (read-only
// for the whole execution) is shared.
func (in *Input) Clone() *Input {
	cp := *in
	return &cp
}
