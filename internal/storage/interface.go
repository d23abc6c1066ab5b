package storage

import (
	"context"

	"github.com/mcoot/factionboard/internal/model"
)

// Storage defines the interface for registration persistence.
//
// Implementations must enforce the normalized player name uniqueness
// constraint atomically in InsertRegistration and UpdateRegistration,
// returning model.ErrDuplicatePlayer on collision, so that no caller can
// persist a duplicate even when racing other writers. Returned records are
// copies owned by the caller.
type Storage interface {
	// ListRegistrations returns every registration in insertion order
	ListRegistrations(ctx context.Context) ([]*model.Registration, error)

	// GetRegistration returns model.ErrRegistrationNotFound when absent
	GetRegistration(ctx context.Context, id model.RegistrationID) (*model.Registration, error)

	// InsertRegistration persists a new registration
	InsertRegistration(ctx context.Context, reg *model.Registration) error

	// UpdateRegistration replaces an existing registration with the same ID
	UpdateRegistration(ctx context.Context, reg *model.Registration) error

	// DeleteRegistration removes a registration
	DeleteRegistration(ctx context.Context, id model.RegistrationID) error
}
