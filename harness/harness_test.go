package harness_test

import (
	"context"
	"testing"

	"github.com/evmspec/evmcore/harness"
)

const sampleFixtures = `[
  {
    "name": "add",
    "hint": "1 + 1",
    "code": {"bin": "6001600101"},
    "expect": {"stack": ["0x2"], "success": true}
  },
  {
    "name": "swap",
    "hint": "PUSH1 10; PUSH1 11; SWAP1",
    "code": {"bin": "600a600b90"},
    "expect": {"stack": ["0xa", "0xb"], "success": true}
  },
  {
    "name": "deliberately-wrong",
    "hint": "expects the wrong sum on purpose",
    "code": {"bin": "6001600101"},
    "expect": {"stack": ["0x3"], "success": true}
  }
]`

func TestLoadAndRunFixtures(t *testing.T) {
	fixtures, err := harness.LoadFixtures([]byte(sampleFixtures))
	if err != nil {
		t.Fatalf("LoadFixtures: %v", err)
	}
	if len(fixtures) != 3 {
		t.Fatalf("len(fixtures) = %d, want 3", len(fixtures))
	}

	reports, err := harness.RunAll(context.Background(), fixtures, 2)
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if len(reports) != 3 {
		t.Fatalf("len(reports) = %d, want 3", len(reports))
	}

	for _, r := range reports[:2] {
		if !r.Pass {
			t.Errorf("fixture %q: expected PASS, got diff:\n%s", r.Fixture.Name, r.Diff)
		}
	}
	if reports[2].Pass {
		t.Errorf("fixture %q: expected FAIL (deliberately wrong expectation)", reports[2].Fixture.Name)
	} else if reports[2].Diff == "" {
		t.Errorf("fixture %q: expected a non-empty diff", reports[2].Fixture.Name)
	}
}
