package cli

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/factionboard/internal/api"
	"github.com/mcoot/factionboard/internal/factory"
)

type CLISuite struct {
	suite.Suite
	app    *factory.TestApp
	server *httptest.Server
	dir    string
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLISuite))
}

func (s *CLISuite) SetupTest() {
	s.app = factory.NewTestApp()
	s.server = httptest.NewServer(api.NewRouter(api.RouterConfig{
		Logger:      s.app.Logger,
		Registry:    s.app.RegistryService,
		AuthService: s.app.AuthService,
		Metrics:     s.app.Metrics,
	}))
	s.dir = s.T().TempDir()
}

func (s *CLISuite) TearDownTest() {
	s.server.Close()
}

// run executes fboard in-process and returns stdout and the command error
func (s *CLISuite) run(args ...string) (string, error) {
	full := append([]string{
		"--server", s.server.URL,
		"--credentials", filepath.Join(s.dir, "credentials.json"),
		"--admin-token-file", filepath.Join(s.dir, "admin_token"),
		"--admin-token", "",
		"--no-color",
	}, args...)

	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(full)
	err := cmd.Execute()
	return out.String(), err
}

func (s *CLISuite) register(name, faction string) CreatedRegistration {
	out, err := s.run("-o", "json", "register", "--name", name, "--faction", faction)
	s.Require().NoError(err)

	var created CreatedRegistration
	s.Require().NoError(json.Unmarshal([]byte(out), &created))
	return created
}

func (s *CLISuite) TestRegisterSavesSecret() {
	s.app.MockRandom.QueueToken("the-secret")

	created := s.register("Ana", "efemeros")
	s.Equal("the-secret", created.OwnerSecret)

	secret, err := NewCredentials(filepath.Join(s.dir, "credentials.json")).Secret(created.ID)
	s.Require().NoError(err)
	s.Equal("the-secret", secret)
}

func (s *CLISuite) TestRegisterTextOutput() {
	out, err := s.run("register", "--name", "Ana", "--faction", "efemeros", "--team", "Seres Humanos")
	s.Require().NoError(err)

	s.Contains(out, "Player: Ana")
	s.Contains(out, "Team: Seres Humanos")
	s.Contains(out, "Owner secret: ")
}

func (s *CLISuite) TestDuplicateShowsCode() {
	s.register("Ana", "efemeros")

	_, err := s.run("register", "--name", " ANA ", "--faction", "rosetta")
	s.Require().Error(err)
	s.True(IsAPIError(err, "DUPLICATE_PLAYER"))
	s.Contains(err.Error(), "(DUPLICATE_PLAYER)")
}

func (s *CLISuite) TestListAndFilter() {
	s.register("Ana", "efemeros")
	s.register("Bruno", "rosetta")

	out, err := s.run("-o", "json", "list")
	s.Require().NoError(err)
	var all []map[string]any
	s.Require().NoError(json.Unmarshal([]byte(out), &all))
	s.Len(all, 2)
	for _, r := range all {
		s.NotContains(r, "ownerSecret")
	}

	out, err = s.run("list", "rosetta")
	s.Require().NoError(err)
	s.Contains(out, "Bruno")
	s.NotContains(out, "Ana")
	s.Contains(out, "1 registrations")

	_, err = s.run("list", "imperio")
	s.True(IsAPIError(err, "INVALID_REQUEST"))
}

func (s *CLISuite) TestUpdateWithSavedSecret() {
	created := s.register("Ana", "efemeros")

	out, err := s.run("-o", "json", "update", created.ID, "--team", "Los Olvidados")
	s.Require().NoError(err)

	var updated map[string]any
	s.Require().NoError(json.Unmarshal([]byte(out), &updated))
	s.Equal("Los Olvidados", updated["teamName"])
	s.Equal("Ana", updated["playerName"])
}

func (s *CLISuite) TestUpdateRequiresAField() {
	created := s.register("Ana", "efemeros")

	_, err := s.run("update", created.ID)
	s.Require().Error(err)
	s.Contains(err.Error(), "nothing to update")
}

func (s *CLISuite) TestMissingLocalSecretIsDistinctFromRejection() {
	created := s.register("Ana", "efemeros")
	s.Require().NoError(NewCredentials(filepath.Join(s.dir, "credentials.json")).Remove(created.ID))

	_, err := s.run("transfer", created.ID, "rosetta")
	s.Require().Error(err)
	s.ErrorIs(err, ErrNoLocalSecret)

	_, err = s.run("transfer", created.ID, "rosetta", "--secret", "wrong")
	s.Require().Error(err)
	s.NotErrorIs(err, ErrNoLocalSecret)
	s.True(IsAPIError(err, "UNAUTHORIZED"))
	s.Contains(err.Error(), "secret rejected by server")
}

func (s *CLISuite) TestTransferAndLeaderboard() {
	ana := s.register("Ana", "efemeros")
	s.register("Bruno", "efemeros")

	_, err := s.run("transfer", ana.ID, "rosetta")
	s.Require().NoError(err)

	out, err := s.run("-o", "json", "leaderboard")
	s.Require().NoError(err)

	var board Leaderboard
	s.Require().NoError(json.Unmarshal([]byte(out), &board))
	s.Require().Len(board["rosetta"], 1)
	s.Equal("Ana", board["rosetta"][0].PlayerName)
	s.Equal(1, board["efemeros"][0].Rank)

	out, err = s.run("leaderboard")
	s.Require().NoError(err)
	s.Contains(out, "1st  Bruno")
}

func (s *CLISuite) TestDeleteForgetsSecret() {
	created := s.register("Ana", "efemeros")

	out, err := s.run("delete", created.ID)
	s.Require().NoError(err)
	s.Contains(out, "deleted")

	_, err = NewCredentials(filepath.Join(s.dir, "credentials.json")).Secret(created.ID)
	s.ErrorIs(err, ErrNoLocalSecret)

	_, err = s.run("delete", created.ID, "--secret", created.OwnerSecret)
	s.True(IsAPIError(err, "REGISTRATION_NOT_FOUND"))
}

func (s *CLISuite) TestAdminLoginAndStats() {
	s.register("Ana", "efemeros")

	_, err := s.run("admin", "stats")
	s.Require().Error(err)

	_, err = s.run("admin", "login", "--password", "wrong")
	s.True(IsAPIError(err, "INVALID_CREDENTIALS"))

	_, err = s.run("admin", "login", "--password", factory.TestAdminPassword)
	s.Require().NoError(err)

	out, err := s.run("admin", "stats")
	s.Require().NoError(err)
	s.Contains(out, "Total: 1")
}

func (s *CLISuite) TestHealth() {
	out, err := s.run("health")
	s.Require().NoError(err)
	s.Equal("Status: ok", strings.TrimSpace(out))
}

func TestOutputFallsBackToJSON(t *testing.T) {
	var out bytes.Buffer
	NewOutput("text", &out, &out).Print(map[string]int{"n": 1})

	var decoded map[string]int
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, 1, decoded["n"])
}
