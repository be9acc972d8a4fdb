package config

import (
	"os"
	"strconv"
	"time"
)

// LoadFromEnv overlays configuration from environment variables.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("ASYNCFS_TICK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Loop.TickInterval = d
		}
	}

	if v := os.Getenv("ASYNCFS_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Loop.Workers = n
		}
	}

	if v := os.Getenv("ASYNCFS_CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Stream.DefaultChunkSize = n
		}
	}

	if v := os.Getenv("ASYNCFS_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Watcher.DefaultPollingInterval = d
		}
	}

	if v := os.Getenv("ASYNCFS_MAX_POLLS_PER_SECOND"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Watcher.MaxPollsPerSecond = n
		}
	}

	if v := os.Getenv("ASYNCFS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("ASYNCFS_LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
}

// GetEnvOrDefault returns the environment variable's value, or
// defaultValue if it is unset.
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
