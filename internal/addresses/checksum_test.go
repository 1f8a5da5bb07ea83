package addresses

import (
	"strings"
	"testing"
)

func TestChecksum_KnownVectors(t *testing.T) {
	// Reference vectors from the EIP-55 specification.
	vectors := []string{
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
		"0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
		"0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb",
	}

	for _, want := range vectors {
		for _, input := range []string{want, strings.ToLower(want), strings.ToUpper(want[2:])} {
			got, err := Checksum(input)
			if err != nil {
				t.Fatalf("Checksum(%q) returned error: %v", input, err)
			}
			if got != want {
				t.Errorf("Checksum(%q) = %q, want %q", input, got, want)
			}
		}
	}
}

func TestChecksum_Invalid(t *testing.T) {
	tests := []string{
		"",
		"0x",
		"0x1234",
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAedFF",
		"0xZZAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"not an address",
	}

	for _, input := range tests {
		if _, err := Checksum(input); err == nil {
			t.Errorf("Checksum(%q) expected error, got none", input)
		}
	}
}

func TestChecksumOrOriginal(t *testing.T) {
	if got := ChecksumOrOriginal("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"); got != "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed" {
		t.Errorf("valid address should be checksummed, got %q", got)
	}
	if got := ChecksumOrOriginal("  not-hex  "); got != "not-hex" {
		t.Errorf("invalid address should pass through trimmed, got %q", got)
	}
}
