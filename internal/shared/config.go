package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	ListenBrainz ListenBrainzConfig `toml:"listenbrainz"`
	Import       ImportConfig       `toml:"import"`
	Database     DatabaseConfig     `toml:"database"`
}

// ListenBrainzConfig contains ListenBrainz API settings.
//
// Token may be left empty and supplied via the LISTENBRAINZ_TOKEN environment
// variable instead (see [ResolveToken]). It is never written to logs.
type ListenBrainzConfig struct {
	BaseURL string `toml:"base_url"`
	Token   string `toml:"token"`
}

// ImportConfig contains CSV import and submission settings.
type ImportConfig struct {
	// BatchSize is the maximum number of listens per submit-listens request.
	BatchSize int `toml:"batch_size"`
	// Timezone is the IANA zone name the export timestamps are interpreted
	// in. The export format carries no zone; the default is UTC.
	Timezone string `toml:"timezone"`
	// RateLimit is the maximum number of submission requests per second.
	RateLimit float64 `toml:"rate_limit"`
	// MaxAttempts bounds retries of a single batch before the run fails.
	MaxAttempts int `toml:"max_attempts"`
	// InitialBackoffSeconds is the first retry delay; it doubles per attempt.
	InitialBackoffSeconds int `toml:"initial_backoff_seconds"`
	// ProgressPath overrides the default <source>.progress.json location.
	ProgressPath string `toml:"progress_path"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// Location resolves the configured timezone to a [time.Location].
func (c ImportConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfig, c.Timezone, err)
	}
	return loc, nil
}

// InitialBackoff returns the configured first retry delay as a [time.Duration].
func (c ImportConfig) InitialBackoff() time.Duration {
	return time.Duration(c.InitialBackoffSeconds) * time.Second
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
