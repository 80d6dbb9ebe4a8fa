package config

import (
	"strings"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		wantErr     bool
		errorString string
	}{
		{
			name: "valid local backend config",
			config: Config{
				Port:           "8081",
				DataBackend:    BackendLocal,
				DataFilePath:   "./expenses.json",
				RequestTimeout: 10 * time.Second,
			},
			wantErr: false,
		},
		{
			name: "valid remote backend config",
			config: Config{
				Port:           "8081",
				DataBackend:    BackendRemote,
				APIBaseURL:     "https://api.example.com",
				APIToken:       "token",
				RequestTimeout: 10 * time.Second,
			},
			wantErr: false,
		},
		{
			name: "invalid port - non-numeric",
			config: Config{
				Port:           "abc",
				DataBackend:    BackendLocal,
				DataFilePath:   "./expenses.json",
				RequestTimeout: 10 * time.Second,
			},
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name: "invalid port - out of range",
			config: Config{
				Port:           "70000",
				DataBackend:    BackendLocal,
				DataFilePath:   "./expenses.json",
				RequestTimeout: 10 * time.Second,
			},
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name: "invalid data backend",
			config: Config{
				Port:           "8080",
				DataBackend:    "cloud",
				RequestTimeout: 10 * time.Second,
			},
			wantErr:     true,
			errorString: "invalid data backend 'cloud'",
		},
		{
			name: "remote backend missing base URL",
			config: Config{
				Port:           "8080",
				DataBackend:    BackendRemote,
				APIToken:       "token",
				RequestTimeout: 10 * time.Second,
			},
			wantErr:     true,
			errorString: "API_BASE_URL is required",
		},
		{
			name: "remote backend bad URL scheme",
			config: Config{
				Port:           "8080",
				DataBackend:    BackendRemote,
				APIBaseURL:     "ftp://api.example.com",
				APIToken:       "token",
				RequestTimeout: 10 * time.Second,
			},
			wantErr:     true,
			errorString: "must be 'http' or 'https'",
		},
		{
			name: "remote backend missing token",
			config: Config{
				Port:           "8080",
				DataBackend:    BackendRemote,
				APIBaseURL:     "https://api.example.com",
				RequestTimeout: 10 * time.Second,
			},
			wantErr:     true,
			errorString: "API_TOKEN is required",
		},
		{
			name: "request timeout too small",
			config: Config{
				Port:           "8080",
				DataBackend:    BackendLocal,
				DataFilePath:   "./expenses.json",
				RequestTimeout: 100 * time.Millisecond,
			},
			wantErr:     true,
			errorString: "must be at least 1 second",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Validate() = nil, want error")
				}
				if !strings.Contains(err.Error(), tt.errorString) {
					t.Fatalf("Validate() error = %q, want substring %q", err, tt.errorString)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestConfig_ValidateServer(t *testing.T) {
	base := func() Config {
		return Config{
			Port:           "8081",
			SQLiteDBPath:   "./test.db",
			JWTSecret:      "a-long-enough-secret",
			TokenTTL:       7 * 24 * time.Hour,
			DataBackend:    BackendLocal,
			DataFilePath:   "./expenses.json",
			RequestTimeout: 10 * time.Second,
		}
	}

	cfg := base()
	if err := cfg.ValidateServer(); err != nil {
		t.Fatalf("ValidateServer() = %v, want nil", err)
	}

	cfg = base()
	cfg.JWTSecret = ""
	if err := cfg.ValidateServer(); err == nil || !strings.Contains(err.Error(), "JWT_SECRET is required") {
		t.Fatalf("missing secret: ValidateServer() = %v", err)
	}

	cfg = base()
	cfg.JWTSecret = "short"
	if err := cfg.ValidateServer(); err == nil || !strings.Contains(err.Error(), "at least 16 characters") {
		t.Fatalf("short secret: ValidateServer() = %v", err)
	}

	cfg = base()
	cfg.TokenTTL = time.Second
	if err := cfg.ValidateServer(); err == nil || !strings.Contains(err.Error(), "token TTL") {
		t.Fatalf("tiny TTL: ValidateServer() = %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATA_BACKEND", "")
	t.Setenv("TOKEN_TTL", "")

	cfg := Load()
	if cfg.Port != "8081" {
		t.Fatalf("default port = %s", cfg.Port)
	}
	if cfg.DataBackend != BackendLocal {
		t.Fatalf("default backend = %s", cfg.DataBackend)
	}
	if cfg.TokenTTL != 7*24*time.Hour {
		t.Fatalf("default token TTL = %v", cfg.TokenTTL)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATA_BACKEND", "remote")
	t.Setenv("API_BASE_URL", "https://api.example.com")
	t.Setenv("TOKEN_TTL", "1h")

	cfg := Load()
	if cfg.Port != "9000" || cfg.DataBackend != BackendRemote {
		t.Fatalf("Load() = %+v", cfg)
	}
	if cfg.APIBaseURL != "https://api.example.com" {
		t.Fatalf("APIBaseURL = %s", cfg.APIBaseURL)
	}
	if cfg.TokenTTL != time.Hour {
		t.Fatalf("TokenTTL = %v", cfg.TokenTTL)
	}
}
