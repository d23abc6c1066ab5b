package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/factionboard/internal/model"
	"github.com/mcoot/factionboard/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	storage *Storage
	path    string
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.path = filepath.Join(s.T().TempDir(), "nested", "registrations.json")
	store, err := New(s.path)
	s.Require().NoError(err)
	s.storage = store
	s.Storage = store
	s.Ctx = context.Background()
}

func (s *StorageSuite) TestFileIsJSONArrayWithSecrets() {
	reg := storagetest.NewRegistration("reg-1", "Ana", model.FactionEfemeros)
	s.Require().NoError(s.storage.InsertRegistration(s.Ctx, reg))

	data, err := os.ReadFile(s.path)
	s.Require().NoError(err)

	var raw []map[string]any
	s.Require().NoError(json.Unmarshal(data, &raw))
	s.Require().Len(raw, 1)
	s.Equal("reg-1", raw[0]["id"])
	s.Equal("Ana", raw[0]["playerName"])
	s.Equal("efemeros", raw[0]["faction"])
	s.Equal("secret-reg-1", raw[0]["ownerSecret"])
}

func (s *StorageSuite) TestMissingFileIsEmpty() {
	_, err := os.Stat(s.path)
	s.True(os.IsNotExist(err))

	regs, err := s.storage.ListRegistrations(s.Ctx)
	s.Require().NoError(err)
	s.Empty(regs)
}

func (s *StorageSuite) TestEmptyFileIsEmpty() {
	s.Require().NoError(os.WriteFile(s.path, []byte("  \n"), 0o644))

	regs, err := s.storage.ListRegistrations(s.Ctx)
	s.Require().NoError(err)
	s.Empty(regs)
}

func (s *StorageSuite) TestCorruptFileIsAnError() {
	s.Require().NoError(os.WriteFile(s.path, []byte("{not json"), 0o644))

	_, err := s.storage.ListRegistrations(s.Ctx)
	s.Error(err)
}

func (s *StorageSuite) TestSecondInstanceSeesWrites() {
	s.Require().NoError(s.storage.InsertRegistration(s.Ctx, storagetest.NewRegistration("reg-1", "Ana", model.FactionEfemeros)))

	other, err := New(s.path)
	s.Require().NoError(err)

	err = other.InsertRegistration(s.Ctx, storagetest.NewRegistration("reg-2", "ANA", model.FactionRosetta))
	s.ErrorIs(err, model.ErrDuplicatePlayer)

	got, err := other.GetRegistration(s.Ctx, "reg-1")
	s.Require().NoError(err)
	s.Equal("Ana", got.PlayerName)
}

func (s *StorageSuite) TestNoTempFilesLeftBehind() {
	s.Require().NoError(s.storage.InsertRegistration(s.Ctx, storagetest.NewRegistration("reg-1", "Ana", model.FactionEfemeros)))
	s.Require().NoError(s.storage.DeleteRegistration(s.Ctx, "reg-1"))

	entries, err := os.ReadDir(filepath.Dir(s.path))
	s.Require().NoError(err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	s.ElementsMatch([]string{"registrations.json", "registrations.json.lock"}, names)
}
