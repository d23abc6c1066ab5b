package redis

// Config holds Redis connection settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// MaxTxRetries bounds optimistic-lock retries on contended updates
	MaxTxRetries int
}

// DefaultConfig returns sensible defaults for Redis configuration.
// Registrations never expire, so there are no TTL settings.
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		MaxTxRetries: 5,
	}
}
