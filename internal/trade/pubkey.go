package trade

import "github.com/mr-tron/base58"

const pubkeyLen = 32

// validPubkey reports whether s decodes as a base58 Solana public key
// (32 raw bytes). The extractor logs, but does not reject, a mint or
// user account that fails this check — a malformed key from upstream
// is still carried through unchanged, since nothing downstream depends
// on rejecting it and a hard failure here would just be a second,
// redundant invariant on top of the balance-reconstruction checks.
func validPubkey(s string) bool {
	raw, err := base58.Decode(s)
	if err != nil {
		return false
	}
	return len(raw) == pubkeyLen
}
