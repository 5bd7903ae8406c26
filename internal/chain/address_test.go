package chain

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/mr-tron/base58"
)

func TestValidateAddress(t *testing.T) {
	cases := []struct {
		name    string
		address string
		wantErr bool
	}{
		{"valid system program", "11111111111111111111111111111111", false},
		{"valid wrapped sol mint", "So11111111111111111111111111111111111111112", false},
		{"empty", "", true},
		{"invalid base58 characters", "0OIl+/=", true},
		{"too short", "abc", true},
		{"too long", "So11111111111111111111111111111111111111112XXXX", true},
	}

	for _, tc := range cases {
		err := ValidateAddress(tc.address)
		if tc.wantErr && err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
		}
	}
}

// A freshly generated ed25519 public key is on-curve by construction.
func TestIsOnCurve_GeneratedKey(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	address := base58.Encode(pub)
	if err := ValidateAddress(address); err != nil {
		t.Fatalf("generated key must be a valid address: %v", err)
	}
	if !IsOnCurve(address) {
		t.Error("generated public key must be on curve")
	}
}

func TestIsOnCurve_Invalid(t *testing.T) {
	if IsOnCurve("") {
		t.Error("empty string must not be on curve")
	}
	if IsOnCurve("abc") {
		t.Error("short string must not be on curve")
	}
	if IsOnCurve("0OIl") {
		t.Error("invalid base58 must not be on curve")
	}
}
