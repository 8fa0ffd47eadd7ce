package crypto

import (
	"path/filepath"
	"testing"
)

func TestKeystoreSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "admin.json")

	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	if err := SaveToKeystore(path, key, "correct-horse-battery-staple"); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadFromKeystore(path, "correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.PubKey().Address() != key.PubKey().Address() {
		t.Fatalf("expected the loaded key to derive the same address")
	}
}

func TestKeystoreLoadWrongPassphraseFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "admin.json")

	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	if err := SaveToKeystore(path, key, "right-passphrase"); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := LoadFromKeystore(path, "wrong-passphrase"); err == nil {
		t.Fatalf("expected an error for a wrong passphrase")
	}
}

func TestSaveToKeystoreRejectsNilKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "admin.json")
	if err := SaveToKeystore(path, nil, "pw"); err == nil {
		t.Fatalf("expected an error for a nil key")
	}
}
