// Package domain holds identity primitives shared by every module.
package domain

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"

	dErrors "willgate/pkg/domain-errors"
)

// ErrInvalidAddress is returned for identities that are not 0x-prefixed
// 20-byte hex strings, or whose mixed-case form fails the EIP-55 checksum.
var ErrInvalidAddress = dErrors.New(dErrors.CodeValidation, "invalid address")

const addressHexLen = 40

// Address is a wallet or contract identity in canonical EIP-55 form.
// Two addresses that differ only in letter case parse to the same Address.
type Address string

// ParseAddress validates s and returns its canonical checksummed form.
//
// Accepted: "0x" followed by 40 hex digits that are all lower case, all upper
// case, or mixed case with a valid EIP-55 checksum.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	body, ok := strings.CutPrefix(s, "0x")
	if !ok {
		return "", fmt.Errorf("%w: missing 0x prefix", ErrInvalidAddress)
	}
	if len(body) != addressHexLen {
		return "", fmt.Errorf("%w: expected %d hex characters, got %d", ErrInvalidAddress, addressHexLen, len(body))
	}
	if _, err := hex.DecodeString(body); err != nil {
		return "", fmt.Errorf("%w: not hexadecimal", ErrInvalidAddress)
	}

	canonical := checksum(body)
	if isMixedCase(body) && "0x"+body != canonical {
		return "", fmt.Errorf("%w: checksum mismatch", ErrInvalidAddress)
	}
	return Address(canonical), nil
}

// MustParseAddress is ParseAddress for constants and tests.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Address) String() string {
	return string(a)
}

// IsNil reports whether the address is unset.
func (a Address) IsNil() bool {
	return a == ""
}

// Short renders the address the way the dashboard labels unnamed entries: 0x1234...abcd.
func (a Address) Short() string {
	s := string(a)
	if len(s) < 10 {
		return s
	}
	return s[:6] + "..." + s[len(s)-4:]
}

// checksum applies EIP-55 to a 40-character hex body.
func checksum(body string) string {
	lower := strings.ToLower(body)
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	digest := h.Sum(nil)

	out := make([]byte, 0, len(lower)+2)
	out = append(out, '0', 'x')
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if c >= 'a' && c <= 'f' {
			nibble := digest[i/2]
			if i%2 == 0 {
				nibble >>= 4
			} else {
				nibble &= 0x0f
			}
			if nibble >= 8 {
				c -= 'a' - 'A'
			}
		}
		out = append(out, c)
	}
	return string(out)
}

func isMixedCase(body string) bool {
	return strings.ToLower(body) != body && strings.ToUpper(body) != body
}
