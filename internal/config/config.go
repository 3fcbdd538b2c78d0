package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/awibisono/arsipdrive/internal/utils"
	"github.com/joho/godotenv"
)

const (
	// ConfigFileName is the name of the config file
	ConfigFileName = "config.json"
	// EnvPrefix is the prefix for environment variables
	EnvPrefix = "ARSIPDRIVE_"
)

// Config holds the client configuration. It is read once at client
// construction and treated as immutable afterwards.
type Config struct {
	// APIKey is the provider API key used for the client handshake
	APIKey string `json:"apiKey"`

	// ClientID is the OAuth2 client identifier
	ClientID string `json:"clientId"`

	// ClientSecret is the OAuth2 client secret (loopback flow only)
	ClientSecret string `json:"clientSecret"`

	// Scope is the OAuth2 scope requested at sign-in
	Scope string `json:"scope"`

	// DiscoveryDocURL locates the provider's API discovery document
	DiscoveryDocURL string `json:"discoveryDocUrl"`

	// RootFolderName is the fixed name of the top-level storage folder
	RootFolderName string `json:"rootFolderName"`

	// MaxRetries is the maximum number of retries for retryable calls
	MaxRetries int `json:"maxRetries"`

	// RetryBaseDelay is the base delay for exponential backoff in milliseconds
	RetryBaseDelay int `json:"retryBaseDelay"`

	// LogLevel sets the logging verbosity (quiet, normal, verbose, debug)
	LogLevel string `json:"logLevel"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Scope:           utils.ScopeFile,
		DiscoveryDocURL: utils.DefaultDiscoveryDocURL,
		RootFolderName:  utils.DefaultRootFolderName,
		MaxRetries:      utils.DefaultMaxRetries,
		RetryBaseDelay:  utils.DefaultRetryDelayMs,
		LogLevel:        "normal",
	}
}

// Load loads configuration with precedence: env vars > .env file > config file > defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.loadFromFile(); err != nil {
		// Config file not existing is not an error
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// .env feeds the process environment; explicit env vars still win
	_ = godotenv.Load()

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv(EnvPrefix + "API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvPrefix + "CLIENT_ID"); v != "" {
		c.ClientID = v
	}
	if v := os.Getenv(EnvPrefix + "CLIENT_SECRET"); v != "" {
		c.ClientSecret = v
	}
	if v := os.Getenv(EnvPrefix + "SCOPE"); v != "" {
		c.Scope = v
	}
	if v := os.Getenv(EnvPrefix + "DISCOVERY_DOC_URL"); v != "" {
		c.DiscoveryDocURL = v
	}
	if v := os.Getenv(EnvPrefix + "ROOT_FOLDER_NAME"); v != "" {
		c.RootFolderName = v
	}
	if v := os.Getenv(EnvPrefix + "MAX_RETRIES"); v != "" {
		if retries, err := strconv.Atoi(v); err == nil {
			c.MaxRetries = retries
		}
	}
	if v := os.Getenv(EnvPrefix + "RETRY_BASE_DELAY"); v != "" {
		if delay, err := strconv.Atoi(v); err == nil {
			c.RetryBaseDelay = delay
		}
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Save saves the configuration to the config file
func (c *Config) Save() error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Enabled reports whether the client is enabled at all: true iff both
// credential fields are non-empty.
func (c *Config) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != "" && strings.TrimSpace(c.ClientID) != ""
}

// IsConfigured reports whether the configuration is complete enough to
// initialize. Pure function of the config; no side effects.
func (c *Config) IsConfigured() bool {
	return c.Enabled() &&
		strings.TrimSpace(c.Scope) != "" &&
		strings.TrimSpace(c.DiscoveryDocURL) != ""
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("max retries must be between 0 and 10, got: %d", c.MaxRetries)
	}

	if c.RetryBaseDelay < 100 || c.RetryBaseDelay > 60000 {
		return fmt.Errorf("retry base delay must be between 100ms and 60000ms, got: %d", c.RetryBaseDelay)
	}

	if c.RootFolderName == "" {
		return fmt.Errorf("root folder name must not be empty")
	}

	validLogLevels := []string{"quiet", "normal", "verbose", "debug"}
	isValid := false
	for _, level := range validLogLevels {
		if c.LogLevel == level {
			isValid = true
			break
		}
	}
	if !isValid {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	return nil
}

// GetRetryBaseDelay returns the retry base delay as a duration
func (c *Config) GetRetryBaseDelay() time.Duration {
	return time.Duration(c.RetryBaseDelay) * time.Millisecond
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, ConfigFileName), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	if dir := os.Getenv(EnvPrefix + "CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "arsipdrive"), nil
}
