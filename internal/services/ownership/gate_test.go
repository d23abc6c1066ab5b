package ownership

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/factionboard/internal/dependencies/mocks"
	"github.com/mcoot/factionboard/internal/dependencies/random"
	"github.com/mcoot/factionboard/internal/model"
)

func TestAuthorize(t *testing.T) {
	gate := NewSecretGate()
	reg := &model.Registration{ID: "reg-1", OwnerSecret: "correct-horse"}

	tests := []struct {
		name     string
		supplied string
		wantErr  bool
	}{
		{name: "matching secret", supplied: "correct-horse"},
		{name: "wrong secret", supplied: "wrong", wantErr: true},
		{name: "missing secret", supplied: "", wantErr: true},
		{name: "prefix of secret", supplied: "correct", wantErr: true},
		{name: "secret with suffix", supplied: "correct-horse!", wantErr: true},
		{name: "different case", supplied: "CORRECT-HORSE", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := gate.Authorize(reg, tt.supplied)
			if tt.wantErr {
				assert.ErrorIs(t, err, model.ErrUnauthorized)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAuthorizeRecordWithoutSecret(t *testing.T) {
	err := NewSecretGate().Authorize(&model.Registration{ID: "reg-1"}, "")
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestNewSecretIsHighEntropy(t *testing.T) {
	a, err := NewSecret(random.New())
	require.NoError(t, err)
	b, err := NewSecret(random.New())
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	// 32 bytes in unpadded base64url
	assert.Len(t, a, 43)
}

func TestNewSecretPropagatesRandomFailure(t *testing.T) {
	rnd := mocks.NewMockRandom()
	rnd.TokenErr = errors.New("entropy exhausted")

	_, err := NewSecret(rnd)
	assert.ErrorContains(t, err, "entropy exhausted")
}
