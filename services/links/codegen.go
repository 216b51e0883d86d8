package links

import (
	"crypto/rand"
	"math/big"
)

const (
	linkCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	linkCodeLength   = 6
)

// GenerateLinkCode returns a 6-character code drawn uniformly from A-Z0-9
// using crypto/rand, so codes cannot be predicted from earlier ones.
func GenerateLinkCode() string {
	buf := make([]byte, linkCodeLength)
	max := big.NewInt(int64(len(linkCodeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("crypto/rand unavailable: " + err.Error())
		}
		buf[i] = linkCodeAlphabet[n.Int64()]
	}
	return string(buf)
}

// IsValidLinkCode reports whether code is structurally a link code: exactly 6
// characters from the code alphabet. Used to skip lookups for garbage input.
func IsValidLinkCode(code string) bool {
	if len(code) != linkCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if !((c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			return false
		}
	}
	return true
}
