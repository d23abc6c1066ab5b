package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/mcoot/factionboard/internal/model"
	"github.com/mcoot/factionboard/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	registrations map[model.RegistrationID]*model.Registration
	order         []model.RegistrationID
	nameIndex     map[string]model.RegistrationID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		registrations: make(map[model.RegistrationID]*model.Registration),
		nameIndex:     make(map[string]model.RegistrationID),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) ListRegistrations(ctx context.Context) ([]*model.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*model.Registration, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.registrations[id].Clone())
	}
	return result, nil
}

func (s *Storage) GetRegistration(ctx context.Context, id model.RegistrationID) (*model.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.registrations[id]
	if !ok {
		return nil, model.ErrRegistrationNotFound
	}
	return reg.Clone(), nil
}

func (s *Storage) InsertRegistration(ctx context.Context, reg *model.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := reg.NormalizedName()
	if _, taken := s.nameIndex[name]; taken {
		return model.ErrDuplicatePlayer
	}
	s.registrations[reg.ID] = reg.Clone()
	s.order = append(s.order, reg.ID)
	s.nameIndex[name] = reg.ID
	return nil
}

func (s *Storage) UpdateRegistration(ctx context.Context, reg *model.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.registrations[reg.ID]
	if !ok {
		return model.ErrRegistrationNotFound
	}
	oldName, newName := existing.NormalizedName(), reg.NormalizedName()
	if owner, taken := s.nameIndex[newName]; taken && owner != reg.ID {
		return model.ErrDuplicatePlayer
	}
	delete(s.nameIndex, oldName)
	s.nameIndex[newName] = reg.ID
	s.registrations[reg.ID] = reg.Clone()
	return nil
}

func (s *Storage) DeleteRegistration(ctx context.Context, id model.RegistrationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.registrations[id]
	if !ok {
		return model.ErrRegistrationNotFound
	}
	delete(s.nameIndex, existing.NormalizedName())
	delete(s.registrations, id)
	s.order = slices.DeleteFunc(s.order, func(v model.RegistrationID) bool { return v == id })
	return nil
}
