// Package storagetest provides a conformance suite shared by every
// storage.Storage implementation.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/factionboard/internal/model"
	"github.com/mcoot/factionboard/internal/storage"
)

// Suite runs the behaviour every backend must share. Embed it in a
// backend suite and set Storage in SetupTest.
type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
}

// NewRegistration builds a registration fixture
func NewRegistration(id, name string, faction model.Faction) *model.Registration {
	team := "Seres Humanos"
	return &model.Registration{
		ID:           model.RegistrationID(id),
		Faction:      faction,
		PlayerName:   name,
		TeamName:     &team,
		RegisteredAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		OwnerSecret:  "secret-" + id,
	}
}

func (s *Suite) ctx() context.Context {
	if s.Ctx == nil {
		return context.Background()
	}
	return s.Ctx
}

func (s *Suite) TestInsertAndGet() {
	reg := NewRegistration("reg-1", "Ana", model.FactionEfemeros)
	s.Require().NoError(s.Storage.InsertRegistration(s.ctx(), reg))

	got, err := s.Storage.GetRegistration(s.ctx(), "reg-1")
	s.Require().NoError(err)
	s.Equal(reg.PlayerName, got.PlayerName)
	s.Equal(reg.Faction, got.Faction)
	s.Equal(reg.OwnerSecret, got.OwnerSecret)
	s.Require().NotNil(got.TeamName)
	s.Equal(*reg.TeamName, *got.TeamName)
	s.Nil(got.CharacterUUID)
	s.True(reg.RegisteredAt.Equal(got.RegisteredAt))
}

func (s *Suite) TestGetNotFound() {
	_, err := s.Storage.GetRegistration(s.ctx(), "missing")
	s.ErrorIs(err, model.ErrRegistrationNotFound)
}

func (s *Suite) TestListEmpty() {
	regs, err := s.Storage.ListRegistrations(s.ctx())
	s.Require().NoError(err)
	s.Empty(regs)
}

func (s *Suite) TestListPreservesInsertionOrder() {
	names := []string{"Zed", "Ana", "Mia", "Bob"}
	for i, name := range names {
		reg := NewRegistration(fmt.Sprintf("reg-%d", i), name, model.FactionRosetta)
		s.Require().NoError(s.Storage.InsertRegistration(s.ctx(), reg))
	}

	regs, err := s.Storage.ListRegistrations(s.ctx())
	s.Require().NoError(err)
	s.Require().Len(regs, len(names))
	for i, reg := range regs {
		s.Equal(names[i], reg.PlayerName)
	}
}

func (s *Suite) TestInsertRejectsNormalizedDuplicate() {
	s.Require().NoError(s.Storage.InsertRegistration(s.ctx(), NewRegistration("reg-1", "Ana", model.FactionEfemeros)))

	err := s.Storage.InsertRegistration(s.ctx(), NewRegistration("reg-2", " ana ", model.FactionRosetta))
	s.ErrorIs(err, model.ErrDuplicatePlayer)

	regs, err := s.Storage.ListRegistrations(s.ctx())
	s.Require().NoError(err)
	s.Len(regs, 1)
}

func (s *Suite) TestUpdateReplacesFields() {
	reg := NewRegistration("reg-1", "Ana", model.FactionEfemeros)
	s.Require().NoError(s.Storage.InsertRegistration(s.ctx(), reg))

	uuid := "150464316"
	reg.Faction = model.FactionRosetta
	reg.CharacterUUID = &uuid
	s.Require().NoError(s.Storage.UpdateRegistration(s.ctx(), reg))

	got, err := s.Storage.GetRegistration(s.ctx(), "reg-1")
	s.Require().NoError(err)
	s.Equal(model.FactionRosetta, got.Faction)
	s.Require().NotNil(got.CharacterUUID)
	s.Equal(uuid, *got.CharacterUUID)
}

func (s *Suite) TestUpdateRenameReleasesOldName() {
	reg := NewRegistration("reg-1", "Ana", model.FactionEfemeros)
	s.Require().NoError(s.Storage.InsertRegistration(s.ctx(), reg))

	reg.PlayerName = "Anabel"
	s.Require().NoError(s.Storage.UpdateRegistration(s.ctx(), reg))

	// The old name is free again
	s.NoError(s.Storage.InsertRegistration(s.ctx(), NewRegistration("reg-2", "ANA", model.FactionRosetta)))
	// The new name is taken
	err := s.Storage.InsertRegistration(s.ctx(), NewRegistration("reg-3", "anabel", model.FactionRosetta))
	s.ErrorIs(err, model.ErrDuplicatePlayer)
}

func (s *Suite) TestUpdateSameNormalizedNameIsAllowed() {
	reg := NewRegistration("reg-1", "Ana", model.FactionEfemeros)
	s.Require().NoError(s.Storage.InsertRegistration(s.ctx(), reg))

	reg.PlayerName = "ANA"
	s.NoError(s.Storage.UpdateRegistration(s.ctx(), reg))
}

func (s *Suite) TestUpdateRejectsRenameOntoOther() {
	s.Require().NoError(s.Storage.InsertRegistration(s.ctx(), NewRegistration("reg-1", "Ana", model.FactionEfemeros)))
	other := NewRegistration("reg-2", "Bob", model.FactionRosetta)
	s.Require().NoError(s.Storage.InsertRegistration(s.ctx(), other))

	other.PlayerName = "aNa"
	s.ErrorIs(s.Storage.UpdateRegistration(s.ctx(), other), model.ErrDuplicatePlayer)

	got, err := s.Storage.GetRegistration(s.ctx(), "reg-2")
	s.Require().NoError(err)
	s.Equal("Bob", got.PlayerName)
}

func (s *Suite) TestUpdateNotFound() {
	err := s.Storage.UpdateRegistration(s.ctx(), NewRegistration("missing", "Ana", model.FactionEfemeros))
	s.ErrorIs(err, model.ErrRegistrationNotFound)
}

func (s *Suite) TestDelete() {
	s.Require().NoError(s.Storage.InsertRegistration(s.ctx(), NewRegistration("reg-1", "Ana", model.FactionEfemeros)))
	s.Require().NoError(s.Storage.InsertRegistration(s.ctx(), NewRegistration("reg-2", "Bob", model.FactionEfemeros)))

	s.Require().NoError(s.Storage.DeleteRegistration(s.ctx(), "reg-1"))

	_, err := s.Storage.GetRegistration(s.ctx(), "reg-1")
	s.ErrorIs(err, model.ErrRegistrationNotFound)

	regs, err := s.Storage.ListRegistrations(s.ctx())
	s.Require().NoError(err)
	s.Require().Len(regs, 1)
	s.Equal("Bob", regs[0].PlayerName)

	// Name is released
	s.NoError(s.Storage.InsertRegistration(s.ctx(), NewRegistration("reg-3", "ana", model.FactionRosetta)))
}

func (s *Suite) TestDeleteNotFound() {
	s.ErrorIs(s.Storage.DeleteRegistration(s.ctx(), "missing"), model.ErrRegistrationNotFound)
}

func (s *Suite) TestReturnedRecordsAreCopies() {
	s.Require().NoError(s.Storage.InsertRegistration(s.ctx(), NewRegistration("reg-1", "Ana", model.FactionEfemeros)))

	got, err := s.Storage.GetRegistration(s.ctx(), "reg-1")
	s.Require().NoError(err)
	got.PlayerName = "Mutated"
	*got.TeamName = "Mutated"

	again, err := s.Storage.GetRegistration(s.ctx(), "reg-1")
	s.Require().NoError(err)
	s.Equal("Ana", again.PlayerName)
	s.Equal("Seres Humanos", *again.TeamName)
}

func (s *Suite) TestConcurrentInsertSameNameAdmitsOne() {
	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reg := NewRegistration(fmt.Sprintf("reg-%d", i), fmt.Sprintf(" SAME name%s", spaces(i)), model.FactionEfemeros)
			errs[i] = s.Storage.InsertRegistration(s.ctx(), reg)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			s.ErrorIs(err, model.ErrDuplicatePlayer)
		}
	}
	s.Equal(1, succeeded)

	regs, err := s.Storage.ListRegistrations(s.ctx())
	s.Require().NoError(err)
	s.Len(regs, 1)
}

func spaces(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
