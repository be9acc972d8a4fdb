// Package config defines the process configuration for the async
// filesystem engine: the loop's tick cadence, streaming defaults, the
// worker pool size, and the watcher's poll-rate ceiling. Structure and
// yaml/default tag style follow the teacher's internal/config package.
package config

import "time"

// Config is the top-level configuration loaded from YAML and overlaid
// with environment variables (see env.go).
type Config struct {
	Loop    LoopConfig    `yaml:"loop"`
	Stream  StreamConfig  `yaml:"stream"`
	Watcher WatcherConfig `yaml:"watcher"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoopConfig holds the loop's tick interval and worker count. Nothing in
// this module passes them to internal/loop: the loop ticks whenever its
// driver calls Tick, and loop.New always starts four workers.
type LoopConfig struct {
	TickInterval time.Duration `yaml:"tick_interval" default:"1ms"`
	Workers      int           `yaml:"workers" default:"8"`
}

// StreamConfig holds a default chunk size. It is not passed to the
// streaming code, which uses its own DefaultChunkSize (8192) when an
// operation omits a chunk size.
type StreamConfig struct {
	DefaultChunkSize int `yaml:"default_chunk_size" default:"8192"`
}

// WatcherConfig holds watcher settings. cmd/asyncfsdemo passes
// MaxPollsPerSecond to asyncfs.Configure; DefaultPollingInterval is not
// passed on, and a watch registered without an interval polls every
// 100ms.
type WatcherConfig struct {
	DefaultPollingInterval time.Duration `yaml:"default_polling_interval" default:"100ms"`
	MaxPollsPerSecond      int           `yaml:"max_polls_per_second" default:"1000"`
}

// LoggingConfig configures zap and, when File is set, lumberjack
// rotation underneath it.
type LoggingConfig struct {
	Level      string `yaml:"level" default:"info"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" default:"100"`
	MaxBackups int    `yaml:"max_backups" default:"3"`
	MaxAgeDays int    `yaml:"max_age_days" default:"28"`
}

// ApplyDefaults fills in zero-valued fields with their documented
// defaults.
func (c *Config) ApplyDefaults() {
	if c.Loop.TickInterval <= 0 {
		c.Loop.TickInterval = time.Millisecond
	}
	if c.Loop.Workers <= 0 {
		c.Loop.Workers = 8
	}
	if c.Stream.DefaultChunkSize <= 0 {
		c.Stream.DefaultChunkSize = 8192
	}
	if c.Watcher.DefaultPollingInterval <= 0 {
		c.Watcher.DefaultPollingInterval = 100 * time.Millisecond
	}
	if c.Watcher.MaxPollsPerSecond <= 0 {
		c.Watcher.MaxPollsPerSecond = 1000
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = 100
	}
	if c.Logging.MaxBackups <= 0 {
		c.Logging.MaxBackups = 3
	}
	if c.Logging.MaxAgeDays <= 0 {
		c.Logging.MaxAgeDays = 28
	}
}

// Validate reports the first configuration error found, if any.
func (c *Config) Validate() error {
	if c.Loop.Workers < 0 {
		return errInvalid("loop.workers must not be negative")
	}
	if c.Stream.DefaultChunkSize < 0 {
		return errInvalid("stream.default_chunk_size must not be negative")
	}
	if c.Watcher.MaxPollsPerSecond < 0 {
		return errInvalid("watcher.max_polls_per_second must not be negative")
	}
	return nil
}

type validationError string

func (e validationError) Error() string { return string(e) }

func errInvalid(msg string) error { return validationError(msg) }
