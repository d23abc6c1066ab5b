package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/factionboard/internal/dependencies/clock"
	"github.com/mcoot/factionboard/internal/dependencies/random"
	"github.com/mcoot/factionboard/internal/metrics"
	"github.com/mcoot/factionboard/internal/services/auth"
	"github.com/mcoot/factionboard/internal/services/ownership"
	"github.com/mcoot/factionboard/internal/services/registry"
	"github.com/mcoot/factionboard/internal/storage"
	"github.com/mcoot/factionboard/internal/storage/file"
	"github.com/mcoot/factionboard/internal/storage/memory"
	"github.com/mcoot/factionboard/internal/storage/postgres"
	redisstorage "github.com/mcoot/factionboard/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeFile     = "file"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Gate            ownership.Gate
	RegistryService *registry.Service
	AuthService     *auth.Service
	Metrics         *metrics.Metrics
	Logger          *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// AdminPassword is hashed into AuthConfig.PasswordHash when no hash is set
	AdminPassword string
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend
	// If empty, defaults to "memory"
	StorageType string
	// DataFile is the JSON file used by the "file" backend
	// If empty, defaults to file.DefaultPath
	DataFile string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// DatabaseURL is the PostgreSQL DSN (required if StorageType is "postgres")
	DatabaseURL string
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	authCfg, err := resolveAuthConfig(cfg, rnd, logger)
	if err != nil {
		closeStorage(store)
		return nil, err
	}

	app, err := newWithDependencies(store, clk, rnd, authCfg, metrics.New(), logger)
	if err != nil {
		closeStorage(store)
		return nil, err
	}
	return app, nil
}

func newStorage(cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeFile:
		path := cfg.DataFile
		if path == "" {
			path = file.DefaultPath
		}
		return file.New(path)
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DatabaseURL required when StorageType is postgres")
		}
		return postgres.New(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be one of memory, file, redis, postgres", storageType)
	}
}

func resolveAuthConfig(cfg Config, rnd random.Random, logger *slog.Logger) (auth.Config, error) {
	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg.SessionDuration = auth.DefaultConfig().SessionDuration
	}

	if authCfg.PasswordHash == "" && cfg.AdminPassword != "" {
		hash, err := auth.HashPassword(cfg.AdminPassword)
		if err != nil {
			return auth.Config{}, err
		}
		authCfg.PasswordHash = hash
	}

	if authCfg.PasswordHash != "" && len(authCfg.TokenSecret) == 0 {
		key, err := rnd.Token(32)
		if err != nil {
			return auth.Config{}, fmt.Errorf("generate admin token key: %w", err)
		}
		authCfg.TokenSecret = []byte(key)
		logger.Warn("no admin token secret configured, admin sessions will not survive a restart")
	}

	return authCfg, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	authCfg auth.Config,
	m *metrics.Metrics,
	logger *slog.Logger,
) (*App, error) {
	gate := ownership.NewSecretGate()
	registryService := registry.New(store, gate, clk, rnd, m, logger)
	authService, err := auth.New(clk, authCfg)
	if err != nil {
		return nil, err
	}

	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		Gate:            gate,
		RegistryService: registryService,
		AuthService:     authService,
		Metrics:         m,
		Logger:          logger,
	}, nil
}

// Close releases backend connections
func (a *App) Close() error {
	if c, ok := a.Storage.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func closeStorage(store storage.Storage) {
	if c, ok := store.(io.Closer); ok {
		_ = c.Close()
	}
}
