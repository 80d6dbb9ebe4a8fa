package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Backend names accepted by DATA_BACKEND.
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

type Config struct {
	// HTTP server
	Port         string
	SQLiteDBPath string

	// Auth
	JWTSecret      string
	TokenTTL       time.Duration
	GoogleClientID string

	// CLI backend selection
	DataBackend string

	// Local backend: whole-collection JSON file
	DataFilePath string

	// Remote backend
	APIBaseURL     string
	APIToken       string
	RequestTimeout time.Duration
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8081"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/spendwise.db"),

		JWTSecret:      getEnv("JWT_SECRET", ""),
		TokenTTL:       getEnvDuration("TOKEN_TTL", 7*24*time.Hour),
		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),

		DataBackend:  getEnv("DATA_BACKEND", BackendLocal),
		DataFilePath: getEnv("DATA_FILE_PATH", defaultDataFile()),

		APIBaseURL:     getEnv("API_BASE_URL", ""),
		APIToken:       getEnv("API_TOKEN", ""),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
	}
}

func defaultDataFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./spendwise.json"
	}
	return filepath.Join(home, ".spendwise", "expenses.json")
}

// Validate checks the settings shared by every binary.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DataBackend != BackendLocal && c.DataBackend != BackendRemote {
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be '%s' or '%s'",
			c.DataBackend, BackendLocal, BackendRemote))
	}

	if c.DataBackend == BackendLocal && c.DataFilePath == "" {
		errs = append(errs, "data file path cannot be empty when using the local backend")
	}

	if c.DataBackend == BackendRemote {
		if c.APIBaseURL == "" {
			errs = append(errs, "API_BASE_URL is required when using the remote backend")
		} else if u, err := url.Parse(c.APIBaseURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid API base URL '%s': %v", c.APIBaseURL, err))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errs = append(errs, fmt.Sprintf("invalid API base URL scheme '%s': must be 'http' or 'https'", u.Scheme))
		}
		if c.APIToken == "" {
			errs = append(errs, "API_TOKEN is required when using the remote backend")
		}
	}

	if c.RequestTimeout < time.Second {
		errs = append(errs, fmt.Sprintf("invalid request timeout %v: must be at least 1 second", c.RequestTimeout))
	} else if c.RequestTimeout > time.Minute {
		errs = append(errs, fmt.Sprintf("invalid request timeout %v: must be at most 1 minute", c.RequestTimeout))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// ValidateServer additionally checks the settings only the API server needs.
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}

	var errs []string
	if c.JWTSecret == "" {
		errs = append(errs, "JWT_SECRET is required to run the server")
	} else if len(c.JWTSecret) < 16 {
		errs = append(errs, "JWT_SECRET must be at least 16 characters")
	}

	if c.SQLiteDBPath == "" {
		errs = append(errs, "SQLite database path cannot be empty")
	} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
			}
		}
	}

	if c.TokenTTL < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid token TTL %v: must be at least 1 minute", c.TokenTTL))
	} else if c.TokenTTL > 90*24*time.Hour {
		errs = append(errs, fmt.Sprintf("invalid token TTL %v: must be at most 90 days", c.TokenTTL))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
