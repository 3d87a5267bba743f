package vm_test

import (
	"encoding/hex"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/go-cmp/cmp"

	"github.com/evmspec/evmcore/state"
	"github.com/evmspec/evmcore/vm"
	"github.com/evmspec/evmcore/word"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("hex.DecodeString(%q): %v", s, err)
	}
	return b
}

func newInput(addr common.Address, code []byte, write bool) *vm.Input {
	return &vm.Input{
		Address:     addr,
		Origin:      addr,
		Sender:      addr,
		Value:       word.Zero(),
		Price:       word.Zero(),
		Bytecode:    code,
		Write:       write,
		BlockHeader: vm.DefaultBlockHeader(),
	}
}

func runFixture(t *testing.T, codeHex string) (vm.Result, *vm.Context) {
	t.Helper()
	code := mustHex(t, codeHex)
	w := state.New()
	addr := common.HexToAddress("0xaa")
	ctx := vm.NewContext(w, newInput(addr, code, true))
	res, err := vm.Execute(ctx)
	if err != nil {
		t.Fatalf("Execute(%q): %v", codeHex, err)
	}
	return res, ctx
}

func stackHexFromTop(ctx *vm.Context) []string {
	snap := ctx.Machine.Stack.Snapshot()
	got := make([]string, 0, len(snap))
	for i := len(snap) - 1; i >= 0; i-- {
		v := snap[i]
		got = append(got, word.EncodeHex(&v))
	}
	return got
}

func TestEndToEndFixtures(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		wantStack  []string // top-of-stack first
		wantOutput []byte
	}{
		{
			name:      "add",
			code:      "6001600101",
			wantStack: []string{"0x2"},
		},
		{
			name:      "swap",
			code:      "600a600b90",
			wantStack: []string{"0xa", "0xb"},
		},
		{
			name:       "mstore-msize-return",
			code:       "60ff6000525960005360206000f3",
			wantOutput: append([]byte{0xff}, make([]byte, 31)...),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, ctx := runFixture(t, tc.code)
			if !res.Success {
				t.Fatalf("execution failed")
			}
			if tc.wantOutput != nil {
				if diff := cmp.Diff(tc.wantOutput, res.Output); diff != "" {
					t.Errorf("output mismatch (-want +got):\n%s", diff)
				}
				return
			}
			if diff := cmp.Diff(tc.wantStack, stackHexFromTop(ctx)); diff != "" {
				t.Errorf("stack mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStackOverflowFailsFrameCleanly(t *testing.T) {
	// 1025 PUSH1 0 instructions: the 1025th must overflow the stack and
	// fail the frame cleanly rather than panicking.
	code := make([]byte, 0, 1025*2)
	for i := 0; i < 1025; i++ {
		code = append(code, byte(vm.PUSH1), 0x00)
	}
	w := state.New()
	addr := common.HexToAddress("0xaa")
	ctx := vm.NewContext(w, newInput(addr, code, true))
	res, err := vm.Execute(ctx)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Success {
		t.Fatalf("expected stack overflow to fail the frame")
	}
	if ctx.Machine.Stack.Len() > vm.MaxStackDepth {
		t.Fatalf("stack depth %d exceeds MaxStackDepth", ctx.Machine.Stack.Len())
	}
}

func TestDup16RequiresSixteenElements(t *testing.T) {
	// A single PUSH1 leaves depth 1; DUP16 needs depth 16 and must fail the
	// frame cleanly instead of indexing off the bottom of the stack.
	res, _ := runFixture(t, "6001"+hex.EncodeToString([]byte{byte(vm.DUP16)}))
	if res.Success {
		t.Fatalf("expected DUP16 on a 1-deep stack to fail the frame")
	}
}

func TestDup16DuplicatesSixteenthElement(t *testing.T) {
	// Sixteen PUSH1 instructions (values 1..16, bottom to top) then DUP16
	// must duplicate the bottom-most (first-pushed) element.
	var code []byte
	for i := 1; i <= 16; i++ {
		code = append(code, byte(vm.PUSH1), byte(i))
	}
	code = append(code, byte(vm.DUP16))
	res, ctx := runFixture(t, hex.EncodeToString(code))
	if !res.Success {
		t.Fatalf("execution failed")
	}
	got := stackHexFromTop(ctx)
	if len(got) != 17 || got[0] != "0x1" {
		t.Errorf("DUP16 top = %v, want 0x1 duplicated from the bottom", got)
	}
}

func TestSwap16RequiresSeventeenElements(t *testing.T) {
	var code []byte
	for i := 0; i < 16; i++ {
		code = append(code, byte(vm.PUSH1), 0x00)
	}
	code = append(code, byte(vm.SWAP16))
	res, _ := runFixture(t, hex.EncodeToString(code))
	if res.Success {
		t.Fatalf("expected SWAP16 on a 16-deep stack to fail the frame (needs 17)")
	}
}

func TestJumpIntoPushDataFails(t *testing.T) {
	// PUSH1 0x5b; PUSH1 0x01; JUMP: offset 1 holds a JUMPDEST byte value, but
	// it is the first PUSH1's immediate data, so it is not a valid jump
	// destination.
	res, _ := runFixture(t, "605b600156")
	if res.Success {
		t.Fatalf("expected jump into push data to fail")
	}
}

func TestWriteProtectionUnderStaticcall(t *testing.T) {
	w := state.New()
	addr := common.HexToAddress("0xaa")
	code := mustHex(t, "600060005500") // PUSH1 0; PUSH1 0; SSTORE; STOP
	ctx := vm.NewContext(w, newInput(addr, code, false))
	res, err := vm.Execute(ctx)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Success {
		t.Fatalf("expected SSTORE under Write=false to fail the frame")
	}
}

func TestSignedDivision(t *testing.T) {
	// SDIV(-8, 2) = -4.
	negEight := "fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff8"
	negFour := "0xfffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffc"
	res, ctx := runFixture(t, "6002"+"7fff"+negEight+"05") // PUSH1 2; PUSH32 -8; SDIV
	if !res.Success {
		t.Fatalf("execution failed")
	}
	if got := stackHexFromTop(ctx); len(got) != 1 || got[0] != negFour {
		t.Errorf("SDIV(-8,2) stack = %v, want [%s]", got, negFour)
	}
}

func TestDivisionByZeroYieldsZero(t *testing.T) {
	res, ctx := runFixture(t, "6000600104") // PUSH1 0; PUSH1 1; DIV -> 1/0
	if !res.Success {
		t.Fatalf("execution failed")
	}
	if got := stackHexFromTop(ctx); len(got) != 1 || got[0] != "0x0" {
		t.Errorf("DIV by zero stack = %v, want [0x0]", got)
	}
}

func TestSstoreCreatesAccountAndSload(t *testing.T) {
	// PUSH1 0x2a; PUSH1 0x00; SSTORE; PUSH1 0x00; SLOAD
	res, ctx := runFixture(t, "602a600055600054")
	if !res.Success {
		t.Fatalf("execution failed")
	}
	if got := stackHexFromTop(ctx); len(got) != 1 || got[0] != "0x2a" {
		t.Errorf("SLOAD stack = %v, want [0x2a]", got)
	}
	acct, ok := ctx.World.Get(common.HexToAddress("0xaa"))
	if !ok {
		t.Fatalf("expected SSTORE to create the account")
	}
	if len(acct.Storage) != 1 {
		t.Errorf("Storage = %v, want one entry", acct.Storage)
	}
}

func TestSelfdestructSweepsAccountAtTopLevel(t *testing.T) {
	w := state.New()
	beneficiary := common.HexToAddress("0xcc")
	self := common.HexToAddress("0xaa")
	w.AddBalance(self, word.FromUint64(100))

	var arg [32]byte
	copy(arg[12:], beneficiary.Bytes())
	code := append([]byte{byte(vm.PUSH32)}, arg[:]...)
	code = append(code, byte(vm.SELFDESTRUCT))

	ctx := vm.NewContext(w, newInput(self, code, true))
	res, err := vm.Execute(ctx)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected SELFDESTRUCT to succeed")
	}
	if _, ok := w.Get(self); ok {
		t.Errorf("expected self-destructed account to be swept at top level")
	}
	if got := w.Balance(beneficiary); got.Uint64() != 100 {
		t.Errorf("beneficiary balance = %v, want 100", got)
	}
}

func TestCallRunsCalleeCodeAndReturnsOutput(t *testing.T) {
	w := state.New()
	caller := common.HexToAddress("0xaa")
	callee := common.HexToAddress("0xbb")

	// Callee: PUSH1 0x07; PUSH1 0x00; MSTORE; PUSH1 0x20; PUSH1 0x00; RETURN
	calleeCode := mustHex(t, "600760005260206000f3")
	w.Set(callee, &state.Account{
		Balance:  word.Zero(),
		Code:     calleeCode,
		CodeHash: word.Zero(),
		Storage:  map[word.Word]word.Word{},
	})

	var addrWord [32]byte
	copy(addrWord[12:], callee.Bytes())

	// CALL pops gas, addr, value, argsOffset, argsSize, retOffset, retSize
	// in that order, so they must be pushed in reverse.
	var code []byte
	push := func(b ...byte) { code = append(code, b...) }
	pushWord := func(v byte) { push(byte(vm.PUSH1), v) }
	push(byte(vm.PUSH1), 0x20) // retSize
	pushWord(0)                // retOffset
	pushWord(0)                // argsSize
	pushWord(0)                // argsOffset
	pushWord(0)                // value
	push(byte(vm.PUSH32))
	push(addrWord[:]...) // addr
	pushWord(0)          // gas
	push(byte(vm.CALL))
	push(byte(vm.PUSH1), 0x00, byte(vm.MLOAD))

	ctx := vm.NewContext(w, newInput(caller, code, true))
	res, err := vm.Execute(ctx)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected CALL-driven execution to succeed")
	}
	snap := ctx.Machine.Stack.Snapshot()
	if len(snap) < 2 {
		t.Fatalf("expected success flag and returned word on stack, got %v", snap)
	}
	top := snap[len(snap)-1]
	if top.Uint64() != 7 {
		t.Errorf("returned word = %v, want 7", top.Uint64())
	}
}

func TestDelegatecallInheritsCallerStorageAndValue(t *testing.T) {
	w := state.New()
	caller := common.HexToAddress("0xaa")
	lib := common.HexToAddress("0xbb")
	w.AddBalance(caller, word.FromUint64(42))

	// lib code: PUSH1 0x09; PUSH1 0x00; SSTORE; STOP -- writes to whichever
	// address this code is running as (the caller's, under DELEGATECALL).
	libCode := mustHex(t, "600960005500")
	w.Set(lib, &state.Account{
		Balance:  word.Zero(),
		Code:     libCode,
		CodeHash: word.Zero(),
		Storage:  map[word.Word]word.Word{},
	})

	var addrWord [32]byte
	copy(addrWord[12:], lib.Bytes())

	// DELEGATECALL pops gas, addr, argsOffset, argsSize, retOffset, retSize.
	var code []byte
	push := func(b ...byte) { code = append(code, b...) }
	pushWord := func(v byte) { push(byte(vm.PUSH1), v) }
	pushWord(0) // retSize
	pushWord(0) // retOffset
	pushWord(0) // argsSize
	pushWord(0) // argsOffset
	push(byte(vm.PUSH32))
	push(addrWord[:]...) // addr
	pushWord(0)           // gas
	push(byte(vm.DELEGATECALL))

	ctx := vm.NewContext(w, newInput(caller, code, true))
	res, err := vm.Execute(ctx)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected DELEGATECALL-driven execution to succeed")
	}
	acct, ok := w.Get(caller)
	if !ok || len(acct.Storage) != 1 {
		t.Fatalf("expected DELEGATECALL to write storage under the caller's own address, got %+v", acct)
	}
	if libAcct, ok := w.Get(lib); ok && len(libAcct.Storage) != 0 {
		t.Errorf("DELEGATECALL must not write storage under the library's address")
	}
	if got := w.Balance(caller).Uint64(); got != 42 {
		t.Errorf("caller balance changed by DELEGATECALL: got %d, want 42 (no value transfer)", got)
	}
}

func TestCreateInstallsReturnedCodeAtDerivedAddress(t *testing.T) {
	w := state.New()
	creator := common.HexToAddress("0xaa")
	w.AddBalance(creator, word.FromUint64(100))

	// init code: PUSH1 0xFE; PUSH1 0x00; MSTORE8; PUSH1 0x01; PUSH1 0x00; RETURN
	// deploys a 1-byte contract containing 0xFE (INVALID).
	initCode := mustHex(t, "60fe60005360016000f3")

	var code []byte
	push := func(b ...byte) { code = append(code, b...) }
	push(byte(vm.PUSH1), byte(len(initCode))) // size
	push(byte(vm.PUSH1), 0x00)                // offset
	push(byte(vm.PUSH1), 0x00)                // value
	// Write initCode into memory[0:len(initCode)] via repeated MSTORE8
	// (cheapest way to get arbitrary bytes into memory from bytecode).
	var mem []byte
	for i, b := range initCode {
		mem = append(mem, byte(vm.PUSH1), b, byte(vm.PUSH1), byte(i), byte(vm.MSTORE8))
	}
	code = append(mem, code...)
	code = append(code, byte(vm.CREATE))

	ctx := vm.NewContext(w, newInput(creator, code, true))
	res, err := vm.Execute(ctx)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected CREATE-driven execution to succeed")
	}
	snap := ctx.Machine.Stack.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected one word (the new address) on stack, got %v", snap)
	}
	newAddr := word.ToAddress(&snap[0])
	if newAddr == (common.Address{}) {
		t.Fatalf("expected CREATE to push a non-zero address")
	}
	acct, ok := w.Get(newAddr)
	if !ok {
		t.Fatalf("expected CREATE to install an account at the derived address")
	}
	if diff := cmp.Diff([]byte{byte(vm.INVALID)}, acct.Code); diff != "" {
		t.Errorf("deployed code mismatch (-want +got):\n%s", diff)
	}
}

func TestLogAppendsRecordWithTopicsAndData(t *testing.T) {
	w := state.New()
	addr := common.HexToAddress("0xaa")
	// PUSH1 0x2a; PUSH1 0x00; MSTORE; PUSH1 0x99 (topic0); PUSH1 0x20 (size);
	// PUSH1 0x00 (offset); LOG1
	code := mustHex(t, "602a600052609960206000a1")
	ctx := vm.NewContext(w, newInput(addr, code, true))
	res, err := vm.Execute(ctx)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected LOG1 to succeed")
	}
	logs := ctx.Substate.Logs
	if len(logs) != 1 {
		t.Fatalf("expected one log record, got %d", len(logs))
	}
	l := logs[0]
	if l.Address != addr {
		t.Errorf("log address = %v, want %v", l.Address, addr)
	}
	if len(l.Topics) != 1 || l.Topics[0].Uint64() != 0x99 {
		t.Errorf("log topics = %v, want [0x99]", l.Topics)
	}
	if len(l.Data) != 32 || l.Data[31] != 0x2a {
		t.Errorf("log data = %x, want last byte 0x2a", l.Data)
	}
}
