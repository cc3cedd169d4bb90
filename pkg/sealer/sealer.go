// Package sealer encrypts small secrets, such as API bearer tokens, before
// they are written to durable storage.
package sealer

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24
)

var (
	// ErrInvalidKey indicates the key is not 32 bytes of hex
	ErrInvalidKey = errors.New("sealing key must be 64 hex characters (32 bytes)")

	// ErrCorrupt indicates a sealed value could not be opened
	ErrCorrupt = errors.New("sealed value is corrupt or was sealed with another key")
)

// Sealer seals and opens values with NaCl secretbox
type Sealer struct {
	key [keySize]byte
}

// New creates a Sealer from a hex encoded 32 byte key
func New(hexKey string) (*Sealer, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil || len(raw) != keySize {
		return nil, ErrInvalidKey
	}

	s := &Sealer{}
	copy(s.key[:], raw)
	return s, nil
}

// Seal encrypts plaintext and returns nonce+box as base64
func (s *Sealer) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	box := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key)
	return base64.RawURLEncoding.EncodeToString(box), nil
}

// Open decrypts a value produced by Seal
func (s *Sealer) Open(sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}

	box, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil || len(box) < nonceSize+secretbox.Overhead {
		return "", ErrCorrupt
	}

	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])

	plaintext, ok := secretbox.Open(nil, box[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrCorrupt
	}

	return string(plaintext), nil
}
