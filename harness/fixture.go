// Package harness loads a JSON fixture format, runs each fixture through
// vm.Execute, and reports PASS or a diff between expected and actual
// stack/success — the "external collaborator" the core interpreter
// deliberately has no knowledge of.
package harness

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/evmspec/evmcore/state"
	"github.com/evmspec/evmcore/vm"
	"github.com/evmspec/evmcore/word"
)

// Fixture is a single test case: bytecode plus an optional transaction,
// block, and pre-state, with expectations about the resulting stack and
// success flag.
type Fixture struct {
	Name string `json:"name"`
	Hint string `json:"hint"`
	Code struct {
		Bin string `json:"bin"`
	} `json:"code"`
	Tx    *txFixture          `json:"tx"`
	Block *blockFixture       `json:"block"`
	State map[string]accState `json:"state"`
	Expect struct {
		Stack   []string `json:"stack"`
		Success bool     `json:"success"`
	} `json:"expect"`
}

type txFixture struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Origin   string `json:"origin"`
	GasPrice string `json:"gasprice"`
	Value    string `json:"value"`
	Data     string `json:"data"`
}

type blockFixture struct {
	BaseFee    string `json:"basefee"`
	Coinbase   string `json:"coinbase"`
	Timestamp  string `json:"timestamp"`
	Number     string `json:"number"`
	GasLimit   string `json:"gaslimit"`
	Difficulty string `json:"difficulty"`
	ChainID    string `json:"chainid"`
}

type accState struct {
	Nonce   uint64 `json:"nonce"`
	Balance string `json:"balance"`
	Code    struct {
		Bin string `json:"bin"`
	} `json:"code"`
}

// LoadFixtures parses a JSON array of Fixture objects.
func LoadFixtures(data []byte) ([]*Fixture, error) {
	var fixtures []*Fixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return nil, fmt.Errorf("harness: parsing fixtures: %w", err)
	}
	return fixtures, nil
}

func decodeAddress(s string) (common.Address, error) {
	if s == "" {
		return common.Address{}, nil
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("harness: %q is not a valid hex address", s)
	}
	return common.HexToAddress(s), nil
}

func decodeWord(s string) (*word.Word, error) {
	return word.DecodeHex(s)
}

// hexBytes decodes a (possibly odd-length, possibly 0x-prefixed) hex string
// into raw bytes without the fixed-width truncation that decodeWord applies,
// since calldata/init-code lengths are semantically significant.
func hexBytes(s string) ([]byte, error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	out := make([]byte, len(s)/2)
	for i := range out {
		hi, err := hexNibble(s[2*i])
		if err != nil {
			return nil, err
		}
		lo, err := hexNibble(s[2*i+1])
		if err != nil {
			return nil, err
		}
		out[i] = hi<<4 | lo
	}
	return out, nil
}

func hexNibble(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	}
	return 0, fmt.Errorf("harness: invalid hex digit %q", c)
}

// BuildContext constructs the World and Input described by the fixture,
// ready for vm.Execute.
func (f *Fixture) BuildContext() (*vm.Context, error) {
	code, err := hexBytes(f.Code.Bin)
	if err != nil {
		return nil, fmt.Errorf("harness: fixture %q: code.bin: %w", f.Name, err)
	}

	w := state.New()
	for addrHex, acc := range f.State {
		addr, err := decodeAddress(addrHex)
		if err != nil {
			return nil, fmt.Errorf("harness: fixture %q: state key %q: %w", f.Name, addrHex, err)
		}
		bal, err := decodeWord(acc.Balance)
		if err != nil {
			return nil, fmt.Errorf("harness: fixture %q: state[%s].balance: %w", f.Name, addrHex, err)
		}
		accCode, err := hexBytes(acc.Code.Bin)
		if err != nil {
			return nil, fmt.Errorf("harness: fixture %q: state[%s].code.bin: %w", f.Name, addrHex, err)
		}
		acct := state.NewAccount()
		acct.Nonce = acc.Nonce
		acct.Balance = bal
		acct.Code = accCode
		w.Set(addr, acct)
	}

	in := &vm.Input{
		Value:       word.Zero(),
		Price:       word.Zero(),
		Bytecode:    code,
		Write:       true,
		BlockHeader: vm.DefaultBlockHeader(),
	}
	if f.Tx != nil {
		if in.Sender, err = decodeAddress(f.Tx.From); err != nil {
			return nil, fmt.Errorf("harness: fixture %q: tx.from: %w", f.Name, err)
		}
		if in.Address, err = decodeAddress(f.Tx.To); err != nil {
			return nil, fmt.Errorf("harness: fixture %q: tx.to: %w", f.Name, err)
		}
		if in.Origin, err = decodeAddress(f.Tx.Origin); err != nil {
			return nil, fmt.Errorf("harness: fixture %q: tx.origin: %w", f.Name, err)
		}
		if in.Price, err = decodeWord(f.Tx.GasPrice); err != nil {
			return nil, fmt.Errorf("harness: fixture %q: tx.gasprice: %w", f.Name, err)
		}
		if in.Value, err = decodeWord(f.Tx.Value); err != nil {
			return nil, fmt.Errorf("harness: fixture %q: tx.value: %w", f.Name, err)
		}
		if in.Data, err = hexBytes(f.Tx.Data); err != nil {
			return nil, fmt.Errorf("harness: fixture %q: tx.data: %w", f.Name, err)
		}
	}
	if f.Block != nil {
		bh := vm.DefaultBlockHeader()
		var err error
		if bh.Coinbase, err = decodeAddress(f.Block.Coinbase); err != nil {
			return nil, fmt.Errorf("harness: fixture %q: block.coinbase: %w", f.Name, err)
		}
		if bh.Timestamp, err = decodeWord(f.Block.Timestamp); err != nil {
			return nil, fmt.Errorf("harness: fixture %q: block.timestamp: %w", f.Name, err)
		}
		if bh.Number, err = decodeWord(f.Block.Number); err != nil {
			return nil, fmt.Errorf("harness: fixture %q: block.number: %w", f.Name, err)
		}
		if bh.Difficulty, err = decodeWord(f.Block.Difficulty); err != nil {
			return nil, fmt.Errorf("harness: fixture %q: block.difficulty: %w", f.Name, err)
		}
		if bh.GasLimit, err = decodeWord(f.Block.GasLimit); err != nil {
			return nil, fmt.Errorf("harness: fixture %q: block.gaslimit: %w", f.Name, err)
		}
		if bh.BaseFee, err = decodeWord(f.Block.BaseFee); err != nil {
			return nil, fmt.Errorf("harness: fixture %q: block.basefee: %w", f.Name, err)
		}
		in.BlockHeader = bh
	}

	return vm.NewContext(w, in), nil
}
