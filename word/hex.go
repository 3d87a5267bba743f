package word

import "github.com/ethereum/go-ethereum/common/hexutil"

// decodeHexBytes decodes a base-16 string, tolerating both "0x"-prefixed and
// bare hex as well as odd-length input (as fixture authors often write
// values like "0xf" rather than "0x0f"), matching the leniency fixtures in
// the wild rely on.
func decodeHexBytes(s string) ([]byte, error) {
	if hexutil.Has0xPrefix(s) {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	return hexutil.Decode("0x" + s)
}
