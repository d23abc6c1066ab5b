// Package ownership implements the possession-secret authorization model.
//
// There are no accounts: whoever holds a registration's owner secret may
// mutate or delete that one registration, and nobody else may. The secret is
// minted once at creation and can never be recovered from the server.
package ownership

import (
	"crypto/subtle"
	"fmt"

	"github.com/mcoot/factionboard/internal/dependencies/random"
	"github.com/mcoot/factionboard/internal/model"
)

// SecretBytes is the entropy of a minted owner secret
const SecretBytes = 32

// Gate decides whether a supplied secret grants control of a registration
type Gate interface {
	Authorize(reg *model.Registration, supplied string) error
}

// SecretGate compares the supplied secret against the stored one in
// constant time
type SecretGate struct{}

// NewSecretGate creates a SecretGate
func NewSecretGate() *SecretGate {
	return &SecretGate{}
}

// Ensure SecretGate implements Gate
var _ Gate = (*SecretGate)(nil)

// Authorize returns model.ErrUnauthorized unless supplied byte-equals the
// registration's owner secret. An empty secret never authorizes.
func (g *SecretGate) Authorize(reg *model.Registration, supplied string) error {
	if supplied == "" || reg.OwnerSecret == "" {
		return model.ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(supplied), []byte(reg.OwnerSecret)) != 1 {
		return model.ErrUnauthorized
	}
	return nil
}

// NewSecret mints a fresh owner secret
func NewSecret(rnd random.Random) (string, error) {
	secret, err := rnd.Token(SecretBytes)
	if err != nil {
		return "", fmt.Errorf("mint owner secret: %w", err)
	}
	return secret, nil
}
