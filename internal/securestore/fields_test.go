package securestore

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func testKey() []byte {
	return bytes.Repeat([]byte{0x42}, keySize)
}

func TestNewFieldCrypto_KeySize(t *testing.T) {
	if _, err := NewFieldCrypto([]byte("short")); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("error = %v, want ErrInvalidKey", err)
	}
	if _, err := NewFieldCrypto(testKey()); err != nil {
		t.Fatalf("NewFieldCrypto error = %v", err)
	}
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	c, err := NewFieldCrypto(testKey())
	if err != nil {
		t.Fatalf("NewFieldCrypto error = %v", err)
	}

	plaintext := "for sale: road bike, 300"
	sealed, err := c.EncryptString(plaintext)
	if err != nil {
		t.Fatalf("EncryptString error = %v", err)
	}
	if strings.Contains(sealed, "road bike") {
		t.Fatal("ciphertext contains plaintext")
	}
	got, err := c.DecryptString(sealed)
	if err != nil {
		t.Fatalf("DecryptString error = %v", err)
	}
	if got != plaintext {
		t.Fatalf("round trip = %q, want %q", got, plaintext)
	}
}

func TestEncryptString_EmptyPassthrough(t *testing.T) {
	c, _ := NewFieldCrypto(testKey())
	sealed, err := c.EncryptString("")
	if err != nil || sealed != "" {
		t.Fatalf("EncryptString(\"\") = %q, %v", sealed, err)
	}
	got, err := c.DecryptString("")
	if err != nil || got != "" {
		t.Fatalf("DecryptString(\"\") = %q, %v", got, err)
	}
}

func TestDecryptString_Tampered(t *testing.T) {
	c, _ := NewFieldCrypto(testKey())
	sealed, err := c.EncryptString("secret")
	if err != nil {
		t.Fatalf("EncryptString error = %v", err)
	}
	if _, err := c.DecryptString("AAAA" + sealed[4:]); err == nil {
		t.Fatal("expected error for tampered ciphertext")
	}
	if _, err := c.DecryptString("AA"); err == nil {
		t.Fatal("expected error for truncated ciphertext")
	}
}

func TestHashString_Deterministic(t *testing.T) {
	c, _ := NewFieldCrypto(testKey())
	if c.HashString("") != "" {
		t.Fatal("HashString(\"\") should be empty")
	}
	if c.HashString("0xPK1") != c.HashString("0xPK1") {
		t.Fatal("hash not deterministic")
	}
	if c.HashString("0xPK1") == c.HashString("0xPK2") {
		t.Fatal("distinct values collided")
	}
}

func TestDeriveFieldCrypto_PurposeSeparation(t *testing.T) {
	master := testKey()
	logCrypto, err := DeriveFieldCrypto(master, "messagelog")
	if err != nil {
		t.Fatalf("DeriveFieldCrypto error = %v", err)
	}
	listingCrypto, err := DeriveFieldCrypto(master, "listings")
	if err != nil {
		t.Fatalf("DeriveFieldCrypto error = %v", err)
	}
	if bytes.Equal(logCrypto.key, listingCrypto.key) {
		t.Fatal("purposes derived the same key")
	}

	again, err := DeriveFieldCrypto(master, "messagelog")
	if err != nil {
		t.Fatalf("DeriveFieldCrypto error = %v", err)
	}
	if !bytes.Equal(logCrypto.key, again.key) {
		t.Fatal("derivation not deterministic")
	}

	if _, err := DeriveFieldCrypto([]byte("short"), "x"); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("error = %v, want ErrInvalidKey", err)
	}
	if _, err := DeriveFieldCrypto(master, ""); err == nil {
		t.Fatal("expected error for empty purpose")
	}
}
