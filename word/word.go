// Package word provides the 256-bit integer primitives shared by every layer
// of evmcore: overflowing arithmetic, two's-complement helpers for the
// signed opcodes, byte extraction, and the hex codec used by the fixture
// harness. It wraps github.com/holiman/uint256, which already implements
// EVM-compatible wrapping arithmetic, rather than reimplementing 256-bit
// math by hand.
package word

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// A Word is a 256-bit unsigned integer, the universal stack element. It is a
// type alias for uint256.Int so that callers can use either name
// interchangeably and pass a *Word anywhere a *uint256.Int is expected.
type Word = uint256.Int

// AddressBits is the width, in bits, of the semantic portion of an Address.
const AddressBits = 160

// Zero returns a fresh Word initialised to 0.
func Zero() *Word { return new(Word) }

// FromUint64 returns a fresh Word with value x.
func FromUint64(x uint64) *Word { return new(Word).SetUint64(x) }

// FromBig returns a fresh Word set to b mod 2**256, or an error if b is
// negative (the EVM stack has no native signed representation).
func FromBig(b *big.Int) (*Word, error) {
	if b.Sign() < 0 {
		return nil, fmt.Errorf("word: FromBig(%s): negative value", b)
	}
	w, _ := uint256.FromBig(b) // on overflow, FromBig keeps the low 256 bits
	return w, nil
}

// FromBytes interprets buf as a big-endian unsigned integer, zero-extending
// on the left if shorter than 32 bytes and truncating (keeping the low-order
// bytes) if longer, matching the EVM's PUSH/CALLDATALOAD semantics.
func FromBytes(buf []byte) *Word {
	return new(Word).SetBytes(buf)
}

// IsNegative reports whether x's two's-complement interpretation, i.e. bit
// 255, is set.
func IsNegative(x *Word) bool {
	return MostSignificantByte(x) >= 0x80
}

// byteAt returns the i-th most-significant byte (0-indexed) of x without
// mutating x. i must be in [0,31].
func byteAt(x *Word, i int) byte {
	idx := uint256.NewInt(uint64(i))
	tmp := new(Word).Set(x)
	return byte(tmp.Byte(idx).Uint64())
}

// MostSignificantByte returns byteAt(x, 0), the sign-carrying byte.
func MostSignificantByte(x *Word) byte {
	return byteAt(x, 0)
}

// TwosComplement returns (~x)+1, the two's-complement negation used to
// recover the magnitude of a negative operand for SDIV/SMOD.
func TwosComplement(x *Word) *Word {
	out := new(Word).Not(x)
	return out.AddUint64(out, 1)
}

// Magnitude returns the absolute value of x interpreted as a signed 256-bit
// two's-complement integer, along with whether x was negative.
func Magnitude(x *Word) (mag *Word, negative bool) {
	if !IsNegative(x) {
		return new(Word).Set(x), false
	}
	return TwosComplement(x), true
}

// Byte returns the i-th most-significant byte of v (0-indexed); i>31 yields
// a fresh zero Word, matching the BYTE opcode.
func Byte(i, v *Word) *Word {
	out := new(Word).Set(v)
	return out.Byte(i)
}

// NormalizeAddress reduces w modulo 2**160, the rule applied to any
// arithmetic result used as a WorldState key.
func NormalizeAddress(w *Word) *Word {
	mask := new(Word).Lsh(uint256.NewInt(1), AddressBits)
	mask.SubUint64(mask, 1)
	return new(Word).And(w, mask)
}

// ToAddress converts w to a common.Address using its low 160 bits,
// normalizing first.
func ToAddress(w *Word) common.Address {
	norm := NormalizeAddress(w)
	b := norm.Bytes20()
	return common.Address(b)
}

// FromAddress lifts a common.Address into a Word occupying the low 160
// bits.
func FromAddress(a common.Address) *Word {
	return new(Word).SetBytes(a.Bytes())
}

// DecodeHex parses a base-16 string (with or without "0x" prefix) into a
// Word, as required by the fixture harness's stack/value fields. An empty
// string decodes to zero.
func DecodeHex(s string) (*Word, error) {
	if s == "" {
		return Zero(), nil
	}
	b, err := decodeHexBytes(s)
	if err != nil {
		return nil, fmt.Errorf("word: DecodeHex(%q): %w", s, err)
	}
	return FromBytes(b), nil
}

// EncodeHex renders w as a "0x"-prefixed, minimal-length hex string (no
// leading zero bytes other than a lone "0x0" for zero).
func EncodeHex(w *Word) string {
	return w.Hex()
}
