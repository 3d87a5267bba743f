// Command evmcore is the harness CLI: run a fixture file through the
// interpreter and report PASS/FAIL, step through a single piece of
// bytecode in a terminal debugger, or assemble labeled asm.Code and print
// the resulting hex.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/evmspec/evmcore/asm"
	"github.com/evmspec/evmcore/evmdebug"
	"github.com/evmspec/evmcore/harness"
	"github.com/evmspec/evmcore/state"
	"github.com/evmspec/evmcore/vm"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	root := &cobra.Command{
		Use:   "evmcore",
		Short: "An independent Ethereum-style bytecode interpreter and fixture harness",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.AddCommand(runCmd(), debugCmd(), asmCmd())
	return root.Execute()
}

// runCmd implements `evmcore run <fixtures.json>`: loads a JSON fixture
// array and reports PASS or a stack/success diff per fixture, exiting
// non-zero on the first failure.
func runCmd() *cobra.Command {
	var concurrency int
	cmd := &cobra.Command{
		Use:   "run <fixtures.json>",
		Short: "Run a JSON fixture file through the interpreter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			fixtures, err := harness.LoadFixtures(data)
			if err != nil {
				return err
			}
			reports, err := harness.RunAll(cmd.Context(), fixtures, concurrency)
			if err != nil {
				return err
			}

			for _, r := range reports {
				if r.Err != nil {
					fmt.Printf("ERROR %s: %v\n", r.Fixture.Name, r.Err)
					return fmt.Errorf("fixture %s: %w", r.Fixture.Name, r.Err)
				}
				if r.Pass {
					fmt.Printf("PASS  %s\n", r.Fixture.Name)
					continue
				}
				fmt.Printf("FAIL  %s\n%s\n", r.Fixture.Name, r.Diff)
				return fmt.Errorf("fixture %s failed", r.Fixture.Name)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "max fixtures to run concurrently (0 = unbounded)")
	return cmd
}

// debugCmd implements `evmcore debug <code-hex>`: decodes raw hex bytecode
// and steps through it in a tview terminal UI.
func debugCmd() *cobra.Command {
	var callData []byte
	cmd := &cobra.Command{
		Use:   "debug <code-hex>",
		Short: "Step through bytecode execution in a terminal debugger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := hexutil.Decode(ensure0x(args[0]))
			if err != nil {
				return fmt.Errorf("decoding %s: %w", args[0], err)
			}

			dbg := evmdebug.NewDebugger()
			in := &vm.Input{
				Data:        callData,
				Bytecode:    code,
				Write:       true,
				BlockHeader: vm.DefaultBlockHeader(),
			}
			ctx := vm.NewContext(state.New(), in)
			ctx.Tracer = dbg.Tracer()

			var res vm.Result
			var runErr error
			done := make(chan struct{})
			go func() {
				defer close(done)
				res, runErr = vm.Execute(ctx)
			}()

			return dbg.RunTerminalUI(callData, func() ([]byte, error) {
				<-done
				if runErr != nil {
					return nil, runErr
				}
				return res.Output, nil
			}, code)
		},
	}
	cmd.Flags().BytesHexVarP(&callData, "calldata", "d", nil, "call data")
	return cmd
}

// asmCmd implements `evmcore asm`: a thin wrapper reminding users that
// asm.Code is a Go-embedded DSL, not a standalone assembly language --
// there is no text format to read from a file. It prints a worked example
// instead of pretending to parse one.
func asmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "asm",
		Short: "Print an example of assembling bytecode with the asm package",
		RunE: func(cmd *cobra.Command, args []string) error {
			example := asm.Code{
				asm.PushLabel("end"),
				asm.Op(vm.JUMP),
				asm.Op(vm.STOP),
				asm.Mark("end"),
				asm.PushUint64(0),
				asm.PushUint64(0),
				asm.Op(vm.RETURN),
			}
			out, err := example.Assemble()
			if err != nil {
				return err
			}
			fmt.Printf("%#x\n", out)
			fmt.Println("asm.Code is a Go package, not a text format; import \"github.com/evmspec/evmcore/asm\" and write Code literals like the one that produced this bytecode.")
			return nil
		},
	}
}

// ensure0x prefixes s with "0x" if not already present and left-pads an odd
// number of digits, matching the leniency fixture authors expect (see
// word.DecodeHex).
func ensure0x(s string) string {
	if hexutil.Has0xPrefix(s) {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	return "0x" + s
}
