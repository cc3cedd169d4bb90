package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateSecret returns n random bytes, hex encoded
func GenerateSecret(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateSessionSecrets returns a cookie signing secret and a 32-byte
// sealing key for API tokens at rest
func GenerateSessionSecrets() (signingSecret, encryptionKey string, err error) {
	signingSecret, err = GenerateSecret(32)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate session secret: %w", err)
	}

	encryptionKey, err = GenerateSecret(32)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate encryption key: %w", err)
	}

	return signingSecret, encryptionKey, nil
}
