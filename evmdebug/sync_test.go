package evmdebug_test

import (
	"runtime"
	"testing"

	"github.com/evmspec/evmcore/asm"
	"github.com/evmspec/evmcore/evmdebug"
	"github.com/evmspec/evmcore/state"
	"github.com/evmspec/evmcore/vm"
)

// TestStepSynchronisation stresses the happens-before argument documented on
// evmdebug's tracer type: Step() must never observe a stack snapshot from
// before the opcode it just stepped past actually finished dispatching, even
// under heavy concurrent load from unrelated goroutines.
func TestStepSynchronisation(t *testing.T) {
	const n = 1_000

	var code asm.Code
	for i := 0; i < n; i++ {
		// KECCAK256 of a 4096-byte region is slow enough to be likely to
		// outlast the return of dbg.Step() if synchronisation is broken.
		code = append(code,
			asm.PushUint64(4096),
			asm.PushUint64(0),
			asm.Op(vm.KECCAK256),
		)
	}
	code = append(code, asm.Op(vm.STOP))
	bytecode, err := code.Assemble()
	if err != nil {
		t.Fatalf("Assemble(): %v", err)
	}

	// Synchronise the start of parallel subtests to maximise load and the
	// probability of catching a broken race.
	start := make(chan struct{})

	for tt := 0; tt < runtime.GOMAXPROCS(0)*2; tt++ {
		t.Run("", func(t *testing.T) {
			t.Parallel()
			<-start

			dbg := evmdebug.NewDebugger()
			in := &vm.Input{
				Bytecode:    bytecode,
				Write:       true,
				BlockHeader: vm.DefaultBlockHeader(),
			}
			ctx := vm.NewContext(state.New(), in)
			ctx.Tracer = dbg.Tracer()

			done := make(chan struct{})
			go func() {
				defer close(done)
				vm.Execute(ctx)
			}()
			defer func() {
				dbg.FastForward()
				<-done
			}()

			dbg.Step() // PUSH2 (size) of the first iteration
			for i := 0; i < n; i++ {
				dbg.Step() // PUSH0 (offset)
				dbg.Step() // KECCAK256, captured pre-dispatch
				// The NEXT opcode's pre-dispatch snapshot (the following
				// PUSH2, or the trailing STOP on the final iteration) is
				// the first one taken AFTER this KECCAK256 actually ran.
				dbg.Step()
				if got, want := len(dbg.State().Stack), i+1; got != want {
					t.Fatalf("after %dth KECCAK256; stack depth = %d, want %d", i+1, got, want)
				}
			}
		})
	}

	close(start)
}
