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

// MaxPageSize is the largest page the playlistItems.list endpoint will return.
const MaxPageSize = 50

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Sync        SyncConfig        `toml:"sync"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	YouTube YouTubeConfig `toml:"youtube"`
}

// YouTubeConfig points at the OAuth client secret and the cached token.
type YouTubeConfig struct {
	ClientSecretPath string `toml:"client_secret_path"`
	TokenPath        string `toml:"token_path"`
}

// SyncConfig holds defaults for a sync run. Command-line flags take precedence.
type SyncConfig struct {
	DailyLimit         int     `toml:"daily_limit"`
	SleepSeconds       float64 `toml:"sleep_seconds"`
	PageSize           int     `toml:"page_size"`
	CallTimeoutSeconds int     `toml:"call_timeout_seconds"`
	FailureLog         string  `toml:"failure_log"`
	DedupeInput        bool    `toml:"dedupe_input"`
}

// Sleep returns the pacing interval as a [time.Duration].
func (s SyncConfig) Sleep() time.Duration {
	return SecondsToDuration(s.SleepSeconds)
}

// CallTimeout returns the per-call timeout as a [time.Duration].
func (s SyncConfig) CallTimeout() time.Duration {
	return time.Duration(s.CallTimeoutSeconds) * time.Second
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains settings for the local OAuth callback server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns host:port for the callback listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedirectURL returns the loopback redirect URL registered with the OAuth client.
func (s ServerConfig) RedirectURL() string {
	return fmt.Sprintf("http://%s/callback", s.Addr())
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Validate rejects values a sync run cannot work with.
func (c *Config) Validate() error {
	switch {
	case c.Sync.DailyLimit < 0:
		return fmt.Errorf("%w: sync.daily_limit must not be negative", ErrInvalidConfig)
	case c.Sync.SleepSeconds < 0:
		return fmt.Errorf("%w: sync.sleep_seconds must not be negative", ErrInvalidConfig)
	case c.Sync.PageSize < 1 || c.Sync.PageSize > MaxPageSize:
		return fmt.Errorf("%w: sync.page_size must be between 1 and %d", ErrInvalidConfig, MaxPageSize)
	case c.Sync.CallTimeoutSeconds < 0:
		return fmt.Errorf("%w: sync.call_timeout_seconds must not be negative", ErrInvalidConfig)
	case c.Sync.FailureLog == "":
		return fmt.Errorf("%w: sync.failure_log must be set", ErrInvalidConfig)
	}
	return nil
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

// SecondsToDuration converts fractional seconds (as accepted on the command line) to a [time.Duration].
func SecondsToDuration(seconds float64) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}
