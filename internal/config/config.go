package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Version is set at build time via -ldflags
// Default "dev" is used for development builds
var Version = "dev"

const (
	// DefaultStopwatchSeed is 15 minutes 22 seconds, the demo value the
	// stopwatch shows before it is first reset.
	DefaultStopwatchSeed = 15*60 + 22

	// DefaultTickInterval is the stopwatch cadence.
	DefaultTickInterval = time.Second
)

// Config holds all application configuration loaded from environment variables.
// All fields have sensible defaults if environment variables are not set.
type Config struct {
	// Port is the HTTP server listen port (default: 8080)
	Port string

	// LogLevel controls logging verbosity: "debug", "info", "warn", "error" (default: "info")
	LogLevel string

	// LogDir is the directory for rotated log files. Empty logs to stdout only.
	LogDir string

	// TickInterval is how often a running stopwatch advances by one second (default: 1s)
	TickInterval time.Duration

	// StopwatchSeed is the elapsed-seconds value a new stopwatch starts from (default: 922)
	StopwatchSeed int

	// ResetSchedule is a cron expression that resets the board. Empty disables it.
	// Example: "0 0 * * *" resets every midnight.
	ResetSchedule string

	// RateLimitRPS is the sustained number of widget actions per second allowed per client (default: 20)
	RateLimitRPS int

	// RateLimitBurst is the bucket size for widget actions per client (default: 40)
	RateLimitBurst int

	// CORSOrigin is a comma-separated list of allowed origins, or "*" (default: same-origin)
	CORSOrigin string
}

// Global singleton
var cfg *Config

// Load reads configuration from environment variables with sensible defaults.
// Should be called once at application startup.
func Load() *Config {
	cfg = &Config{
		Port:           getEnvOrDefault("COMPOSELAB_PORT", "8080"),
		LogLevel:       strings.ToLower(getEnvOrDefault("COMPOSELAB_LOG_LEVEL", "info")),
		LogDir:         getEnvOrDefault("COMPOSELAB_LOG_DIR", ""),
		TickInterval:   getEnvDurationOrDefault("COMPOSELAB_TICK_INTERVAL", DefaultTickInterval),
		StopwatchSeed:  getEnvIntOrDefault("COMPOSELAB_STOPWATCH_SEED", DefaultStopwatchSeed),
		ResetSchedule:  strings.TrimSpace(getEnvOrDefault("COMPOSELAB_RESET_SCHEDULE", "")),
		RateLimitRPS:   getEnvIntOrDefault("COMPOSELAB_RATE_LIMIT_RPS", 20),
		RateLimitBurst: getEnvIntOrDefault("COMPOSELAB_RATE_LIMIT_BURST", 40),
		CORSOrigin:     getEnvOrDefault("COMPOSELAB_CORS_ORIGIN", ""),
	}

	cfg.normalize()
	return cfg
}

// normalize replaces out-of-range values with their defaults.
func (c *Config) normalize() {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		c.LogLevel = "info"
	}
	if c.TickInterval <= 0 {
		c.TickInterval = DefaultTickInterval
	}
	if c.StopwatchSeed < 0 {
		c.StopwatchSeed = DefaultStopwatchSeed
	}
	if c.RateLimitRPS <= 0 {
		c.RateLimitRPS = 20
	}
	if c.RateLimitBurst < c.RateLimitRPS {
		c.RateLimitBurst = c.RateLimitRPS
	}
}

// Get returns the current configuration. Panics if Load() hasn't been called.
func Get() *Config {
	if cfg == nil {
		panic("config.Load() must be called before config.Get()")
	}
	return cfg
}

// SetForTesting allows tests to set the global config without calling Load().
// This should ONLY be used in test code.
func SetForTesting(c *Config) {
	cfg = c
}

// NewTestConfig returns a minimal Config suitable for unit tests.
func NewTestConfig() *Config {
	return &Config{
		Port:           "8080",
		LogLevel:       "debug",
		TickInterval:   DefaultTickInterval,
		StopwatchSeed:  DefaultStopwatchSeed,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault returns the environment variable as an int or the default if not set/invalid.
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvDurationOrDefault returns the environment variable as a duration or the default if not set/invalid.
// Accepts Go duration strings like "500ms", "1s".
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// FlagOverrides holds command-line flag values that can override environment variables
type FlagOverrides struct {
	Port           *string
	LogLevel       *string
	LogDir         *string
	TickInterval   *time.Duration
	StopwatchSeed  *int
	ResetSchedule  *string
	RateLimitRPS   *int
	RateLimitBurst *int
}

// ApplyFlags applies command-line flag overrides to the configuration.
// Should be called after Load() and after flag parsing.
// Only non-nil values with non-zero flag values override, except StopwatchSeed
// where the caller passes nil to mean "not set".
func ApplyFlags(flags FlagOverrides) {
	if cfg == nil {
		return
	}

	if flags.Port != nil && *flags.Port != "" {
		cfg.Port = *flags.Port
	}
	if flags.LogLevel != nil && *flags.LogLevel != "" {
		cfg.LogLevel = strings.ToLower(*flags.LogLevel)
	}
	if flags.LogDir != nil && *flags.LogDir != "" {
		cfg.LogDir = *flags.LogDir
	}
	if flags.TickInterval != nil && *flags.TickInterval != 0 {
		cfg.TickInterval = *flags.TickInterval
	}
	if flags.StopwatchSeed != nil {
		cfg.StopwatchSeed = *flags.StopwatchSeed
	}
	if flags.ResetSchedule != nil && *flags.ResetSchedule != "" {
		cfg.ResetSchedule = strings.TrimSpace(*flags.ResetSchedule)
	}
	if flags.RateLimitRPS != nil && *flags.RateLimitRPS != 0 {
		cfg.RateLimitRPS = *flags.RateLimitRPS
	}
	if flags.RateLimitBurst != nil && *flags.RateLimitBurst != 0 {
		cfg.RateLimitBurst = *flags.RateLimitBurst
	}

	cfg.normalize()
}
