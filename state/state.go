// Package state holds the in-memory world-state snapshot the interpreter
// reads and mutates: per-account balance, nonce, code, and storage. It
// deliberately has no persistence and no Merkle commitments — storage_root
// and code_hash are carried as opaque sentinels, never verified, matching
// the harness's "gas is unbounded, state is not committed" evaluation
// model.
package state

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/evmspec/evmcore/word"
)

// KeccakEmpty is the Keccak-256 hash of the empty byte sequence, used as the
// sentinel code_hash/storage_root for "no code"/"no storage".
var KeccakEmpty = word.FromBytes(crypto.Keccak256(nil))

// Account is the per-address state carried in a World. The default account
// created on first write is NewAccount(), not the zero value (whose Balance,
// hashes and Storage map are nil).
type Account struct {
	Nonce   uint64
	Balance *word.Word
	Code    []byte
	// CodeHash is carried but never cryptographically verified against Code;
	// it is populated by CREATE/CREATE2 and otherwise defaults to
	// KeccakEmpty.
	CodeHash *word.Word
	Storage  map[word.Word]word.Word
	// StorageRoot is an opaque sentinel, never computed or checked.
	StorageRoot *word.Word
}

// NewAccount returns a default-initialized Account: zero nonce and balance,
// no code, KeccakEmpty sentinels, empty storage.
func NewAccount() *Account {
	return &Account{
		Balance:     word.Zero(),
		CodeHash:    new(word.Word).Set(KeccakEmpty),
		Storage:     make(map[word.Word]word.Word),
		StorageRoot: new(word.Word).Set(KeccakEmpty),
	}
}

// SLoad returns storage[k], or zero if never written.
func (a *Account) SLoad(k *word.Word) *word.Word {
	if v, ok := a.Storage[*k]; ok {
		out := v
		return &out
	}
	return word.Zero()
}

// SStore writes storage[k] = v.
func (a *Account) SStore(k, v *word.Word) {
	a.Storage[*k] = *v
}

// HasCode reports whether the account has non-empty code.
func (a *Account) HasCode() bool {
	return len(a.Code) > 0
}

// World is the mapping from Address to Account that backs a top-level
// execution. Accounts are created lazily: any opcode that writes to a
// missing account (SSTORE, value transfer, CREATE/CREATE2,
// SELFDESTRUCT-beneficiary credit) first inserts a fresh default Account.
type World struct {
	accounts map[common.Address]*Account
}

// New returns an empty World.
func New() *World {
	return &World{accounts: make(map[common.Address]*Account)}
}

// Get returns the Account at addr and whether it exists, without creating
// it.
func (w *World) Get(addr common.Address) (*Account, bool) {
	a, ok := w.accounts[addr]
	return a, ok
}

// GetOrCreate returns the Account at addr, inserting a fresh default
// Account first if one is not already present.
func (w *World) GetOrCreate(addr common.Address) *Account {
	a, ok := w.accounts[addr]
	if !ok {
		a = NewAccount()
		w.accounts[addr] = a
	}
	return a
}

// Set installs acct at addr, overwriting any existing account (used by the
// fixture harness to install pre-state accounts; CREATE/CREATE2 go through
// AddBalance and GetOrCreate instead).
func (w *World) Set(addr common.Address, acct *Account) {
	w.accounts[addr] = acct
}

// Delete removes addr from the World, used when sweeping the
// self-destruct set after a top-level execution completes.
func (w *World) Delete(addr common.Address) {
	delete(w.accounts, addr)
}

// Balance returns the balance of addr, or zero if the account does not
// exist.
func (w *World) Balance(addr common.Address) *word.Word {
	if a, ok := w.accounts[addr]; ok {
		return new(word.Word).Set(a.Balance)
	}
	return word.Zero()
}

// AddBalance credits amount to addr's balance, creating the account if
// absent.
func (w *World) AddBalance(addr common.Address, amount *word.Word) {
	a := w.GetOrCreate(addr)
	a.Balance = new(word.Word).Add(a.Balance, amount)
}

// SubBalance debits amount from addr's balance. Callers are expected to have
// already checked sufficiency (the CALL-family precondition); this performs
// a wrapping subtraction with no additional check.
func (w *World) SubBalance(addr common.Address, amount *word.Word) {
	a := w.GetOrCreate(addr)
	a.Balance = new(word.Word).Sub(a.Balance, amount)
}

// Code returns the code of addr, or nil if the account does not exist.
func (w *World) Code(addr common.Address) []byte {
	if a, ok := w.accounts[addr]; ok {
		return a.Code
	}
	return nil
}

// CodeHash returns the code_hash of addr, or zero if the account does not
// exist.
func (w *World) CodeHash(addr common.Address) *word.Word {
	if a, ok := w.accounts[addr]; ok {
		return new(word.Word).Set(a.CodeHash)
	}
	return word.Zero()
}

// SLoad reads storage[k] of addr, 0 if the account or key is absent.
func (w *World) SLoad(addr common.Address, k *word.Word) *word.Word {
	a, ok := w.accounts[addr]
	if !ok {
		return word.Zero()
	}
	return a.SLoad(k)
}

// SStore writes storage[k] = v of addr, creating the account first if
// absent (invariant 6).
func (w *World) SStore(addr common.Address, k, v *word.Word) {
	w.GetOrCreate(addr).SStore(k, v)
}
