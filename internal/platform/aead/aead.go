// Package aead implements authenticated encryption for memory payloads.
// A per-relationship key string is stretched through HKDF-SHA256 into a
// ChaCha20-Poly1305 key, and sealed payloads travel as base64 text with the
// nonce prepended.
package aead

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// Error variables for encryption failures
var (
	// ErrKeyEmpty indicates an empty relationship key was supplied.
	ErrKeyEmpty = errors.New("relationship key cannot be empty")
	// ErrOpenFailed indicates the payload could not be authenticated or
	// decrypted, typically a wrong key or a corrupt ciphertext.
	ErrOpenFailed = errors.New("payload authentication failed")
	// ErrPayloadMalformed indicates the payload is not valid base64 or is
	// too short to contain a nonce.
	ErrPayloadMalformed = errors.New("payload malformed")
)

// hkdfInfo binds derived keys to this payload format; changing it is a
// breaking change for stored ciphertexts.
const hkdfInfo = "ours/memory-payload/v1"

// Codec seals and opens memory payloads under a relationship key.
type Codec struct {
	rand io.Reader
}

// NewCodec creates a Codec using crypto/rand for nonces.
func NewCodec() *Codec {
	return &Codec{rand: rand.Reader}
}

// Seal encrypts plaintext under the given relationship key and returns a
// base64 payload with the nonce prepended.
func (c *Codec) Seal(plaintext []byte, relationshipKey string) (string, error) {
	aeadCipher, err := newCipher(relationshipKey)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aeadCipher.NonceSize())
	if _, err := io.ReadFull(c.rand, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := aeadCipher.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a payload produced by Seal. A wrong key, truncated payload,
// or tampered ciphertext yields ErrOpenFailed or ErrPayloadMalformed.
func (c *Codec) Open(payload string, relationshipKey string) ([]byte, error) {
	aeadCipher, err := newCipher(relationshipKey)
	if err != nil {
		return nil, err
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPayloadMalformed, err)
	}
	if len(raw) < aeadCipher.NonceSize() {
		return nil, fmt.Errorf("%w: payload shorter than nonce", ErrPayloadMalformed)
	}

	nonce, ciphertext := raw[:aeadCipher.NonceSize()], raw[aeadCipher.NonceSize():]
	plaintext, err := aeadCipher.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrOpenFailed
	}

	return plaintext, nil
}

func newCipher(relationshipKey string) (cipher.AEAD, error) {
	if relationshipKey == "" {
		return nil, ErrKeyEmpty
	}

	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, []byte(relationshipKey), nil, []byte(hkdfInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	return chacha20poly1305.NewX(key)
}
