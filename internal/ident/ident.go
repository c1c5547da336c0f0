// Package ident produces identifiers for documents, apps and clients, and secret access tokens.
package ident

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// Generator creates unique identifiers and secure tokens.
type Generator interface {
	// NewID returns a globally unique identifier.
	NewID() string
	// NewToken returns a hex encoded random token built from n random bytes.
	NewToken(n int) (string, error)
}

type generator struct{}

// New returns the default Generator backed by UUIDv4 and crypto/rand.
func New() Generator {
	return generator{}
}

func (generator) NewID() string {
	return uuid.NewString()
}

func (generator) NewToken(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("token length must be positive, got %d", n)
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
