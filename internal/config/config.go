package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/blockgroot/signer-wallet-tool/internal/logger"
)

// Config holds all application configuration
type Config struct {
	// Transaction service credential, sent as a bearer token on every call.
	// An empty key is a configuration fault detected before any request.
	APIKey string

	// Retry settings for the query client
	MaxRetries int
	RetryDelay time.Duration

	// Delay between sequential network probes
	ProbeDelay time.Duration

	// HTTP settings
	HTTPTimeout time.Duration

	// Scan cache settings (caller-side, never used by the core components)
	CacheTTL time.Duration
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		MaxRetries:  3,
		RetryDelay:  500 * time.Millisecond,
		ProbeDelay:  250 * time.Millisecond,
		HTTPTimeout: 30 * time.Second,
		CacheTTL:    5 * time.Minute,
	}
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() {
	if key := os.Getenv("SAFE_API_KEY"); key != "" {
		c.APIKey = key
	}

	if retries := os.Getenv("SIGNERCTL_MAX_RETRIES"); retries != "" {
		if r, err := strconv.Atoi(retries); err == nil {
			c.MaxRetries = r
		}
	}

	if delay := os.Getenv("SIGNERCTL_RETRY_DELAY"); delay != "" {
		if d, err := strconv.Atoi(delay); err == nil {
			c.RetryDelay = time.Duration(d) * time.Millisecond
		}
	}

	if delay := os.Getenv("SIGNERCTL_PROBE_DELAY"); delay != "" {
		if d, err := strconv.Atoi(delay); err == nil {
			c.ProbeDelay = time.Duration(d) * time.Millisecond
		}
	}

	if timeout := os.Getenv("SIGNERCTL_HTTP_TIMEOUT"); timeout != "" {
		if t, err := strconv.Atoi(timeout); err == nil {
			c.HTTPTimeout = time.Duration(t) * time.Second
		}
	}

	if ttl := os.Getenv("SIGNERCTL_CACHE_TTL"); ttl != "" {
		if t, err := strconv.Atoi(ttl); err == nil {
			c.CacheTTL = time.Duration(t) * time.Second
		}
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.MaxRetries < 1 {
		return fmt.Errorf("max retries must be at least 1, got: %d", c.MaxRetries)
	}

	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay must be non-negative, got: %v", c.RetryDelay)
	}

	if c.ProbeDelay < 0 {
		return fmt.Errorf("probe delay must be non-negative, got: %v", c.ProbeDelay)
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP timeout must be positive, got: %v", c.HTTPTimeout)
	}

	return nil
}

// LoadEnvironment loads environment variables from .env files
// It tries to load from the current directory and from the directory of the executable
func LoadEnvironment() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found in current directory or error loading it: %v", err)
	} else {
		logger.Info("Successfully loaded .env file from current directory")
	}

	execPath, err := os.Executable()
	if err != nil {
		logger.Debug("Could not determine executable path: %v", err)
		return
	}

	execDir := filepath.Dir(execPath)
	envPath := filepath.Join(execDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		logger.Debug("No .env file found in app directory (%s) or error loading it: %v", execDir, err)
	} else {
		logger.Info("Successfully loaded .env file from app directory: %s", execDir)
	}
}
