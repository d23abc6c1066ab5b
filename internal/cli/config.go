package cli

import (
	"os"
	"path/filepath"
	"strings"
)

// Config holds CLI configuration
type Config struct {
	ServerURL       string
	CredentialsFile string
	AdminToken      string
	AdminTokenFile  string
	Output          string
	NoColor         bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:       getEnvOrDefault("FBOARD_SERVER", "http://localhost:8080"),
		CredentialsFile: getEnvOrDefault("FBOARD_CREDENTIALS", defaultStatePath("credentials.json")),
		AdminToken:      os.Getenv("FBOARD_ADMIN_TOKEN"),
		AdminTokenFile:  getEnvOrDefault("FBOARD_ADMIN_TOKEN_FILE", defaultStatePath("admin_token")),
		Output:          "text",
	}
}

// LoadAdminToken loads the admin token from file if not already set
func (c *Config) LoadAdminToken() error {
	if c.AdminToken != "" {
		return nil
	}

	data, err := os.ReadFile(c.AdminTokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No token file is fine
		}
		return err
	}

	c.AdminToken = strings.TrimSpace(string(data))
	return nil
}

// SaveAdminToken saves the admin token to the token file
func (c *Config) SaveAdminToken(token string) error {
	c.AdminToken = token

	dir := filepath.Dir(c.AdminTokenFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.AdminTokenFile, []byte(token), 0600)
}

func defaultStatePath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".fboard", name)
	}
	return filepath.Join(home, ".fboard", name)
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
