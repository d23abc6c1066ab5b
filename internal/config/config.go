// Package config loads server configuration. Values are layered: built-in
// defaults, then an optional YAML file, then environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mcoot/factionboard/internal/factory"
	"github.com/mcoot/factionboard/internal/services/auth"
	"github.com/mcoot/factionboard/internal/storage/file"
	redisstorage "github.com/mcoot/factionboard/internal/storage/redis"
)

// FileEnv names the environment variable pointing at the YAML config file
const FileEnv = "FBOARD_CONFIG"

// Config is the complete server configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Admin   AdminConfig   `yaml:"admin"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig selects and configures the registration backend
type StorageConfig struct {
	Type        string `yaml:"type"`
	DataFile    string `yaml:"data_file"`
	RedisURL    string `yaml:"redis_url"`
	DatabaseURL string `yaml:"database_url"`
}

// AdminConfig configures operator login. Leaving both password fields empty
// disables it.
type AdminConfig struct {
	Password        string        `yaml:"password"`
	PasswordHash    string        `yaml:"password_hash"`
	TokenSecret     string        `yaml:"token_secret"`
	SessionDuration time.Duration `yaml:"session_duration"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Server:  ServerConfig{Port: 8080},
		Storage: StorageConfig{Type: factory.StorageTypeFile, DataFile: file.DefaultPath},
		Admin:   AdminConfig{SessionDuration: auth.DefaultConfig().SessionDuration},
		Log:     LogConfig{Level: "info"},
	}
}

// Load builds the configuration from defaults, the file named by
// FBOARD_CONFIG (if set) and the environment
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if path := os.Getenv(FileEnv); path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg.Merge(fileCfg)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile reads a YAML config file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Merge overlays the non-zero values of other onto c
func (c *Config) Merge(other *Config) {
	mergeString(&c.Server.Host, other.Server.Host)
	if other.Server.Port != 0 {
		c.Server.Port = other.Server.Port
	}

	mergeString(&c.Storage.Type, other.Storage.Type)
	mergeString(&c.Storage.DataFile, other.Storage.DataFile)
	mergeString(&c.Storage.RedisURL, other.Storage.RedisURL)
	mergeString(&c.Storage.DatabaseURL, other.Storage.DatabaseURL)

	mergeString(&c.Admin.Password, other.Admin.Password)
	mergeString(&c.Admin.PasswordHash, other.Admin.PasswordHash)
	mergeString(&c.Admin.TokenSecret, other.Admin.TokenSecret)
	if other.Admin.SessionDuration != 0 {
		c.Admin.SessionDuration = other.Admin.SessionDuration
	}

	mergeString(&c.Log.Level, other.Log.Level)
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}

	c.Server.Host = getEnv("HOST", c.Server.Host)
	c.Storage.Type = getEnv("STORAGE_TYPE", c.Storage.Type)
	c.Storage.DataFile = getEnv("DATA_FILE", c.Storage.DataFile)
	c.Storage.RedisURL = getEnv("REDIS_URL", c.Storage.RedisURL)
	c.Storage.DatabaseURL = getEnv("DATABASE_URL", c.Storage.DatabaseURL)
	c.Admin.Password = getEnv("ADMIN_PASSWORD", c.Admin.Password)
	c.Admin.PasswordHash = getEnv("ADMIN_PASSWORD_HASH", c.Admin.PasswordHash)
	c.Admin.TokenSecret = getEnv("ADMIN_TOKEN_SECRET", c.Admin.TokenSecret)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)

	if v, ok := os.LookupEnv("ADMIN_SESSION_DURATION"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ADMIN_SESSION_DURATION: %w", err)
		}
		c.Admin.SessionDuration = d
	}
	return nil
}

// Validate checks the configuration is usable
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}

	switch c.Storage.Type {
	case factory.StorageTypeMemory:
	case factory.StorageTypeFile:
		if c.Storage.DataFile == "" {
			return errors.New("DATA_FILE required when STORAGE_TYPE=file")
		}
	case factory.StorageTypeRedis:
		if c.Storage.RedisURL == "" {
			return errors.New("REDIS_URL required when STORAGE_TYPE=redis")
		}
	case factory.StorageTypePostgres:
		if c.Storage.DatabaseURL == "" {
			return errors.New("DATABASE_URL required when STORAGE_TYPE=postgres")
		}
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// FactoryConfig converts the configuration into factory settings
func (c *Config) FactoryConfig(logger *slog.Logger) factory.Config {
	cfg := factory.Config{
		Logger:        logger,
		StorageType:   c.Storage.Type,
		DataFile:      c.Storage.DataFile,
		DatabaseURL:   c.Storage.DatabaseURL,
		AdminPassword: c.Admin.Password,
		AuthConfig: auth.Config{
			PasswordHash:    c.Admin.PasswordHash,
			SessionDuration: c.Admin.SessionDuration,
		},
	}
	if c.Admin.TokenSecret != "" {
		cfg.AuthConfig.TokenSecret = []byte(c.Admin.TokenSecret)
	}
	if c.Storage.Type == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.Storage.RedisURL
		cfg.RedisConfig = &redisCfg
	}
	return cfg
}

// ParseLevel converts a level name to a slog.Level
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", level)
	}
	return l, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
