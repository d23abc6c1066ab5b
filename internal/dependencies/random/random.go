package random

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
)

// Random provides identifier and token generation that can be mocked for testing
type Random interface {
	// UUID returns a new random (version 4) UUID string
	UUID() string

	// Token returns n bytes from a cryptographically strong source,
	// encoded as unpadded base64url
	Token(n int) (string, error)
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// UUID returns a random UUID
func (r *CryptoRandom) UUID() string {
	return uuid.NewString()
}

// Token returns a random URL-safe token built from n random bytes
func (r *CryptoRandom) Token(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("token length must be positive, got %d", n)
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
