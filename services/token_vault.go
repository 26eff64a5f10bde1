package services

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/chacha20poly1305"
)

// TokenVault seals OAuth refresh tokens before they reach the database, so
// a leaked dump does not hand out live Google grants.
type TokenVault struct {
	aead cipher.AEAD
}

// NewTokenVault builds a vault from TOKEN_VAULT_KEY, a 32-byte key given as
// 64 hex characters.
func NewTokenVault() (*TokenVault, error) {
	raw := os.Getenv("TOKEN_VAULT_KEY")
	if raw == "" {
		return nil, errors.New("TOKEN_VAULT_KEY is not set")
	}
	key, err := hex.DecodeString(raw)
	if err != nil || len(key) != chacha20poly1305.KeySize {
		return nil, errors.New("TOKEN_VAULT_KEY must be 64 hex characters")
	}
	return NewTokenVaultWithKey(key)
}

func NewTokenVaultWithKey(key []byte) (*TokenVault, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("token vault: %w", err)
	}
	return &TokenVault{aead: aead}, nil
}

// Seal encrypts a token for storage as base64(nonce || ciphertext).
func (v *TokenVault) Seal(plain string) (string, error) {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("token vault: %w", err)
	}
	sealed := v.aead.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a stored token.
func (v *TokenVault) Open(stored string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return "", errors.New("stored token is not valid base64")
	}
	ns := v.aead.NonceSize()
	if len(raw) < ns {
		return "", errors.New("stored token is truncated")
	}
	plain, err := v.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", errors.New("stored token failed authentication")
	}
	return string(plain), nil
}
