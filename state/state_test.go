package state_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/evmspec/evmcore/state"
	"github.com/evmspec/evmcore/word"
)

func TestSStoreCreatesMissingAccount(t *testing.T) {
	w := state.New()
	addr := common.HexToAddress("0xdead")

	if _, ok := w.Get(addr); ok {
		t.Fatalf("account unexpectedly present before any write")
	}

	k, v := word.FromUint64(1), word.FromUint64(2)
	w.SStore(addr, k, v)

	acct, ok := w.Get(addr)
	if !ok {
		t.Fatalf("SStore did not create account")
	}
	if got := acct.SLoad(k); got.Cmp(v) != 0 {
		t.Errorf("SLoad(1) = %s, want %s", got.Hex(), v.Hex())
	}
}

func TestBalanceOfMissingAccountIsZero(t *testing.T) {
	w := state.New()
	if b := w.Balance(common.HexToAddress("0x1")); !b.IsZero() {
		t.Errorf("Balance of missing account = %s, want 0", b.Hex())
	}
}

func TestAddSubBalance(t *testing.T) {
	w := state.New()
	addr := common.HexToAddress("0x1")
	w.AddBalance(addr, word.FromUint64(100))
	w.SubBalance(addr, word.FromUint64(40))
	if got, want := w.Balance(addr), word.FromUint64(60); got.Cmp(want) != 0 {
		t.Errorf("Balance = %s, want %s", got.Hex(), want.Hex())
	}
}
