package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/errgroup"

	"github.com/evmspec/evmcore/vm"
	"github.com/evmspec/evmcore/word"
)

// Report is the outcome of running a single Fixture.
type Report struct {
	Fixture *Fixture
	Pass    bool
	// Diff is non-empty only when Pass is false: a human-readable
	// expected-vs-actual comparison of success flag and/or stack.
	Diff string
	// Err is set if the fixture could not even be built/executed (malformed
	// fixture data, or a vm.HandlerError), as distinct from an execution
	// that ran to completion but disagreed with expectations.
	Err error
}

// Run executes a single fixture and compares its outcome against
// Fixture.Expect: PASS or a diff of the reversed stack (index 0 = top) and
// success flag.
func Run(f *Fixture) *Report {
	ctx, err := f.BuildContext()
	if err != nil {
		return &Report{Fixture: f, Err: err}
	}
	res, err := vm.Execute(ctx)
	if err != nil {
		return &Report{Fixture: f, Err: fmt.Errorf("fixture %q: %w", f.Name, err)}
	}

	gotStack := make([]string, 0, len(f.Expect.Stack))
	snap := ctx.Machine.Stack.Snapshot()
	for i := len(snap) - 1; i >= 0; i-- {
		v := snap[i]
		gotStack = append(gotStack, normalizeHex(word.EncodeHex(&v)))
	}
	wantStack := make([]string, len(f.Expect.Stack))
	for i, s := range f.Expect.Stack {
		wantStack[i] = normalizeHex(s)
	}

	var diffs []string
	if res.Success != f.Expect.Success {
		diffs = append(diffs, fmt.Sprintf("success: want %v, got %v", f.Expect.Success, res.Success))
	}
	if d := cmp.Diff(wantStack, gotStack); d != "" {
		diffs = append(diffs, fmt.Sprintf("stack (-want +got):\n%s", d))
	}
	if len(diffs) == 0 {
		return &Report{Fixture: f, Pass: true}
	}
	return &Report{Fixture: f, Pass: false, Diff: strings.Join(diffs, "\n")}
}

// normalizeHex reduces a hex word to go-ethereum/uint256's canonical
// minimal-length lowercase form, so fixtures may write "0x00a" or "0xA"
// interchangeably with the VM's own rendering.
func normalizeHex(s string) string {
	w, err := word.DecodeHex(s)
	if err != nil {
		return s
	}
	return word.EncodeHex(w)
}

// RunAll runs every fixture concurrently, bounded by golang.org/x/sync's
// errgroup.Group.SetLimit: each fixture gets its own independent,
// single-threaded VM instance, since the VM itself is never safe for
// concurrent use by multiple goroutines.
func RunAll(ctx context.Context, fixtures []*Fixture, concurrency int) ([]*Report, error) {
	reports := make([]*Report, len(fixtures))
	g, _ := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, f := range fixtures {
		i, f := i, f
		g.Go(func() error {
			reports[i] = Run(f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
