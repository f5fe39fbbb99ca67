// Package securestore encrypts fields at rest in the local database and
// produces deterministic lookup hashes for the encrypted columns.
package securestore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const keySize = 32

var ErrInvalidKey = errors.New("invalid master key")

// FieldCrypto encrypts/decrypts fields and produces lookup hashes.
type FieldCrypto struct {
	key []byte
}

func NewFieldCrypto(key []byte) (*FieldCrypto, error) {
	if len(key) != keySize {
		return nil, ErrInvalidKey
	}
	return &FieldCrypto{key: key}, nil
}

// DeriveFieldCrypto derives a purpose-bound field key from the master key
// via HKDF-SHA256, so the message log and listing store never share a key
// with each other or with anything else derived from the same master.
func DeriveFieldCrypto(masterKey []byte, purpose string) (*FieldCrypto, error) {
	if len(masterKey) != keySize {
		return nil, ErrInvalidKey
	}
	if purpose == "" {
		return nil, errors.New("purpose is required")
	}
	reader := hkdf.New(sha256.New, masterKey, nil, []byte("bazaar-fields-"+purpose))
	key := make([]byte, keySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("derive field key: %w", err)
	}
	return &FieldCrypto{key: key}, nil
}

func (c *FieldCrypto) EncryptString(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("gcm: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *FieldCrypto) DecryptString(encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("gcm: %w", err)
	}
	if len(raw) < gcm.NonceSize() {
		return "", errors.New("ciphertext too short")
	}

	nonce := raw[:gcm.NonceSize()]
	sealed := raw[gcm.NonceSize():]

	pt, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}
	return string(pt), nil
}

// HashString returns a deterministic keyed hash usable as a lookup column
// for an encrypted field.
func (c *FieldCrypto) HashString(value string) string {
	if value == "" {
		return ""
	}
	mac := hmac.New(sha256.New, c.key)
	_, _ = mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}
