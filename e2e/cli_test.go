package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/factionboard/internal/api"
	"github.com/mcoot/factionboard/internal/factory"
)

const adminPassword = "e2e-admin-password"

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath      string
	serverURL       string
	credentialsFile string
	tokenFile       string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "fboard-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/fboard")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	dir := t.TempDir()
	return &cliRunner{
		binaryPath:      binaryPath,
		serverURL:       serverURL,
		credentialsFile: filepath.Join(dir, "credentials.json"),
		tokenFile:       filepath.Join(dir, "admin_token"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--credentials", r.credentialsFile,
		"--admin-token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	cmd.Env = append(os.Environ(), "FBOARD_ADMIN_TOKEN=", "FBOARD_ADMIN_PASSWORD=")
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server backed by file storage
type testServer struct {
	server   *api.Server
	app      *factory.App
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T, dataFile string) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	app, err := factory.New(factory.Config{
		Logger:        logger,
		StorageType:   factory.StorageTypeFile,
		DataFile:      dataFile,
		AdminPassword: adminPassword,
	})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		Registry:    app.RegistryService,
		AuthService: app.AuthService,
		Metrics:     app.Metrics,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = "127.0.0.1"
	serverConfig.Port = 0
	server := api.NewServer(router, serverConfig, logger)
	require.NoError(t, server.Listen())

	// Start server
	go func() {
		if err := server.Start(); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + server.Addr()
	waitForServer(t, serverURL+"/api/health")

	return &testServer{
		server: server,
		app:    app,
		addr:   serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
			_ = app.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type registrationResponse struct {
	ID           string    `json:"id"`
	Faction      string    `json:"faction"`
	PlayerName   string    `json:"playerName"`
	TeamName     *string   `json:"teamName"`
	RegisteredAt time.Time `json:"registeredAt"`
	OwnerSecret  string    `json:"ownerSecret"`
}

type leaderboardResponse map[string][]struct {
	Rank       int    `json:"rank"`
	PlayerName string `json:"playerName"`
}

type statsResponse struct {
	Total     int            `json:"total"`
	ByFaction map[string]int `json:"byFaction"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t, filepath.Join(t.TempDir(), "registrations.json"))
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_RegistrationLifecycle(t *testing.T) {
	ts := startTestServer(t, filepath.Join(t.TempDir(), "registrations.json"))
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Register
	output, err := cli.run("register", "--faction", "efemeros", "--name", "Ana", "--team", "Seres Humanos")
	require.NoError(t, err, "output: %s", output)

	var created registrationResponse
	require.NoError(t, json.Unmarshal([]byte(output), &created))
	assert.Equal(t, "Ana", created.PlayerName)
	assert.Len(t, created.OwnerSecret, 43)

	// A name differing only in case and whitespace is taken
	output, err = cli.run("register", "--faction", "rosetta", "--name", " ana ")
	require.Error(t, err)
	assert.Contains(t, output, "DUPLICATE_PLAYER")

	// List never includes secrets
	output, err = cli.run("list")
	require.NoError(t, err, "output: %s", output)
	assert.NotContains(t, output, created.OwnerSecret)

	var regs []registrationResponse
	require.NoError(t, json.Unmarshal([]byte(output), &regs))
	require.Len(t, regs, 1)
	assert.Equal(t, created.ID, regs[0].ID)

	// Update uses the saved secret
	output, err = cli.run("update", created.ID, "--team", "Los Olvidados")
	require.NoError(t, err, "output: %s", output)

	var updated registrationResponse
	require.NoError(t, json.Unmarshal([]byte(output), &updated))
	require.NotNil(t, updated.TeamName)
	assert.Equal(t, "Los Olvidados", *updated.TeamName)
	assert.True(t, created.RegisteredAt.Equal(updated.RegisteredAt))

	// A wrong explicit secret is rejected
	output, err = cli.run("transfer", created.ID, "rosetta", "--secret", "wrong")
	require.Error(t, err)
	assert.Contains(t, output, "UNAUTHORIZED")

	// Transfer with the saved secret
	output, err = cli.run("transfer", created.ID, "rosetta")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("list", "rosetta")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &regs))
	require.Len(t, regs, 1)
	assert.Equal(t, "Ana", regs[0].PlayerName)

	// Delete, then the id is gone
	_, err = cli.run("delete", created.ID)
	require.NoError(t, err)

	output, err = cli.run("list")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &regs))
	assert.Empty(t, regs)
}

func TestCLI_LeaderboardAndAdmin(t *testing.T) {
	ts := startTestServer(t, filepath.Join(t.TempDir(), "registrations.json"))
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	for _, args := range [][]string{
		{"--faction", "efemeros", "--name", "Ana"},
		{"--faction", "rosetta", "--name", "Bruno"},
		{"--faction", "efemeros", "--name", "Carla"},
	} {
		output, err := cli.run(append([]string{"register"}, args...)...)
		require.NoError(t, err, "output: %s", output)
	}

	output, err := cli.run("leaderboard")
	require.NoError(t, err, "output: %s", output)

	var board leaderboardResponse
	require.NoError(t, json.Unmarshal([]byte(output), &board))
	require.Len(t, board["efemeros"], 2)
	assert.Equal(t, 1, board["efemeros"][0].Rank)
	assert.Equal(t, "Ana", board["efemeros"][0].PlayerName)
	assert.Equal(t, "Carla", board["efemeros"][1].PlayerName)

	// Stats require login
	_, err = cli.run("admin", "stats")
	require.Error(t, err)

	output, err = cli.run("admin", "login", "--password", "wrong")
	require.Error(t, err)
	assert.Contains(t, output, "INVALID_CREDENTIALS")

	output, err = cli.run("admin", "login", "--password", adminPassword)
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("admin", "stats")
	require.NoError(t, err, "output: %s", output)

	var stats statsResponse
	require.NoError(t, json.Unmarshal([]byte(output), &stats))
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.ByFaction["efemeros"])
	assert.Equal(t, 1, stats.ByFaction["rosetta"])
}

func TestCLI_RegistrationsSurviveRestart(t *testing.T) {
	dataFile := filepath.Join(t.TempDir(), "registrations.json")

	ts := startTestServer(t, dataFile)
	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("register", "--faction", "rosetta", "--name", "Bob")
	require.NoError(t, err, "output: %s", output)

	var created registrationResponse
	require.NoError(t, json.Unmarshal([]byte(output), &created))
	ts.shutdown()

	ts = startTestServer(t, dataFile)
	defer ts.shutdown()
	cli.serverURL = ts.addr

	output, err = cli.run("list")
	require.NoError(t, err, "output: %s", output)

	var regs []registrationResponse
	require.NoError(t, json.Unmarshal([]byte(output), &regs))
	require.Len(t, regs, 1)
	assert.Equal(t, created.ID, regs[0].ID)

	// The secret saved before the restart still works
	_, err = cli.run("delete", created.ID)
	require.NoError(t, err)
}
