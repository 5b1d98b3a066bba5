package domain

import (
	"errors"
	"strings"
)

// ErrInvalidAddress indicates a malformed user identifier. Unlike transport
// failures this is caller misuse, so it is surfaced instead of degraded.
var ErrInvalidAddress = errors.New("invalid principal address")

// c32 alphabet used by ledger principals. Excludes I, L, O and U.
const c32Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// ValidatePrincipal checks that addr has the shape of a ledger principal:
// an SP (production) or ST (staging) version prefix followed by a c32-encoded
// body. Contract principals carry a ".name" suffix which is not accepted here
// since the program only tracks standard principals.
func ValidatePrincipal(addr string) error {
	if len(addr) < 30 || len(addr) > 41 {
		return ErrInvalidAddress
	}
	if !strings.HasPrefix(addr, "SP") && !strings.HasPrefix(addr, "ST") {
		return ErrInvalidAddress
	}
	for _, r := range addr[2:] {
		if !strings.ContainsRune(c32Alphabet, r) {
			return ErrInvalidAddress
		}
	}
	return nil
}
