package crypto

import "testing"

func TestAddressBech32RoundTrip(t *testing.T) {
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	addr := key.PubKey().Address()

	encoded := addr.String()
	decoded, err := DecodeAddress(encoded)
	if err != nil {
		t.Fatalf("decode address: %v", err)
	}
	if decoded != addr {
		t.Fatalf("round trip mismatch: got %+v want %+v", decoded, addr)
	}
	if decoded.Prefix() != UserPrefix {
		t.Fatalf("expected prefix %s, got %s", UserPrefix, decoded.Prefix())
	}
}

func TestVaultPrefixRoundTrip(t *testing.T) {
	b := make([]byte, 20)
	b[0] = 0xAB
	addr := MustNewAddress(VaultPrefix, b)

	decoded, err := DecodeAddress(addr.String())
	if err != nil {
		t.Fatalf("decode address: %v", err)
	}
	if decoded.Prefix() != VaultPrefix {
		t.Fatalf("expected prefix %s, got %s", VaultPrefix, decoded.Prefix())
	}
	if string(decoded.Bytes()) != string(b) {
		t.Fatalf("byte mismatch after round trip")
	}
}

func TestZeroAddressIsZero(t *testing.T) {
	var addr Address
	if !addr.IsZero() {
		t.Fatalf("expected zero-value address to report IsZero")
	}

	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	if key.PubKey().Address().IsZero() {
		t.Fatalf("expected a generated address to not be zero")
	}
}

func TestNewAddressRejectsWrongLength(t *testing.T) {
	if _, err := NewAddress(UserPrefix, []byte{1, 2, 3}); err == nil {
		t.Fatalf("expected an error for a non-20-byte input")
	}
}

func TestPrivateKeyBytesRoundTrip(t *testing.T) {
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	b := key.Bytes()

	restored, err := PrivateKeyFromBytes(b)
	if err != nil {
		t.Fatalf("restore key: %v", err)
	}
	if restored.PubKey().Address() != key.PubKey().Address() {
		t.Fatalf("expected restored key to derive the same address")
	}
}
