// Package addresses canonicalizes Ethereum-style hex addresses using the
// EIP-55 mixed-case checksum so that downstream consumers never need to
// case-normalize.
package addresses

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Checksum returns the EIP-55 checksummed form of an address. The input may
// be any casing, with or without the 0x prefix.
func Checksum(address string) (string, error) {
	hexPart := strings.TrimSpace(address)
	if strings.HasPrefix(hexPart, "0x") || strings.HasPrefix(hexPart, "0X") {
		hexPart = hexPart[2:]
	}

	if len(hexPart) != 40 {
		return "", fmt.Errorf("invalid address %q: expected 40 hex characters, got %d", address, len(hexPart))
	}

	lower := strings.ToLower(hexPart)
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", fmt.Errorf("invalid address %q: non-hex character %q", address, c)
		}
	}

	hash := sha3.NewLegacyKeccak256()
	hash.Write([]byte(lower))
	sum := hash.Sum(nil)

	out := []byte(lower)
	for i := 0; i < len(out); i++ {
		if out[i] < 'a' {
			continue
		}
		nibble := sum[i/2]
		if i%2 == 0 {
			nibble >>= 4
		} else {
			nibble &= 0x0f
		}
		if nibble >= 8 {
			out[i] = out[i] - 'a' + 'A'
		}
	}

	return "0x" + string(out), nil
}

// ChecksumOrOriginal checksums the address when it is well formed and returns
// the trimmed input unchanged otherwise. Used where totality matters more
// than strictness, e.g. label assignment over imported free-text data.
func ChecksumOrOriginal(address string) string {
	if checksummed, err := Checksum(address); err == nil {
		return checksummed
	}
	return strings.TrimSpace(address)
}
