// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// AuthConfig holds authentication and identity provider configuration.
type AuthConfig struct {
	IssuerURL string // OIDC issuer URL
	JWKSURL   string // Override JWKS URL (if no .well-known discovery)
	JWTSecret string // HS256 shared secret for local/dev JWT auth
	Audience  string // Required JWT audience claim
}

// Enabled returns true when any authentication mechanism is configured.
func (a *AuthConfig) Enabled() bool {
	return a.IssuerURL != "" || a.JWKSURL != "" || a.JWTSecret != ""
}

// OIDCEnabled returns true when an external identity provider is configured.
func (a *AuthConfig) OIDCEnabled() bool {
	return a.IssuerURL != "" || a.JWKSURL != ""
}

// StorageConfig holds the optional audio blob storage backends. Fields left
// empty disable the corresponding backend.
type StorageConfig struct {
	S3Endpoint string
	S3Region   string
	S3KeyID    string
	S3Secret   string

	AzureAccountName string
	AzureAccountKey  string

	GCSKeyFilePath string
}

// HasS3 returns true if all required S3 fields are set.
func (s *StorageConfig) HasS3() bool {
	return s.S3Endpoint != "" && s.S3Region != "" && s.S3KeyID != "" && s.S3Secret != ""
}

// HasAzure returns true if Azure shared-key credentials are set.
func (s *StorageConfig) HasAzure() bool {
	return s.AzureAccountName != "" && s.AzureAccountKey != ""
}

// HasGCS returns true if a GCS service account key is set.
func (s *StorageConfig) HasGCS() bool {
	return s.GCSKeyFilePath != ""
}

// Config holds the configuration for the transcription API server.
type Config struct {
	ListenAddr string // HTTP listen address (default ":8080")
	DBPath     string // path to the SQLite job store (default "speechcraft.sqlite")
	LogLevel   string // log level: debug, info, warn, error (default "info")
	Env        string // environment: "development" (default) or "production"

	// Speech-to-text provider
	AssemblyAIKey     string // provider API key; submissions fail without it
	AssemblyAIBaseURL string // override for tests and proxies

	// Polling
	PollInterval    time.Duration // wait between provider polls (default 5s)
	PollMaxAttempts int           // polling ceiling (default 60)
	PollWorkers     int           // concurrent polling workers (default 4)

	// Rate limiting
	RateLimitRPS   float64 // sustained requests per second (default 100)
	RateLimitBurst int     // burst capacity (default 200)

	// CORS
	CORSAllowedOrigins []string // allowed origins for CORS (default: ["*"])

	// Auth holds identity provider and authentication configuration.
	Auth AuthConfig

	// Storage holds optional audio blob storage backends.
	Storage StorageConfig

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// LoadFromEnv loads configuration from environment variables. Provider and
// storage variables are optional — the read side of the API works without
// them.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		ListenAddr:        os.Getenv("LISTEN_ADDR"),
		DBPath:            os.Getenv("DB_PATH"),
		LogLevel:          os.Getenv("LOG_LEVEL"),
		Env:               os.Getenv("ENV"),
		AssemblyAIKey:     os.Getenv("ASSEMBLYAI_API_KEY"),
		AssemblyAIBaseURL: os.Getenv("ASSEMBLYAI_BASE_URL"),
	}

	if v := os.Getenv("POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid POLL_INTERVAL %q: %w", v, err)
		}
		cfg.PollInterval = d
	}
	if v := os.Getenv("POLL_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid POLL_MAX_ATTEMPTS %q", v)
		}
		cfg.PollMaxAttempts = n
	}
	if v := os.Getenv("POLL_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid POLL_WORKERS %q", v)
		}
		cfg.PollWorkers = n
	}

	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitBurst = n
		}
	}

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = origins
	}

	cfg.Auth = AuthConfig{
		IssuerURL: os.Getenv("AUTH_ISSUER_URL"),
		JWKSURL:   os.Getenv("AUTH_JWKS_URL"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		Audience:  os.Getenv("AUTH_AUDIENCE"),
	}

	cfg.Storage = StorageConfig{
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		S3Region:         os.Getenv("S3_REGION"),
		S3KeyID:          os.Getenv("S3_KEY_ID"),
		S3Secret:         os.Getenv("S3_SECRET"),
		AzureAccountName: os.Getenv("AZURE_ACCOUNT_NAME"),
		AzureAccountKey:  os.Getenv("AZURE_ACCOUNT_KEY"),
		GCSKeyFilePath:   os.Getenv("GCS_KEY_FILE"),
	}

	// Defaults
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "speechcraft.sqlite"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.PollMaxAttempts == 0 {
		cfg.PollMaxAttempts = 60
	}
	if cfg.PollWorkers == 0 {
		cfg.PollWorkers = 4
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 100
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 200
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	if cfg.AssemblyAIKey == "" {
		cfg.Warnings = append(cfg.Warnings,
			"ASSEMBLYAI_API_KEY not set — transcription submissions will be rejected")
	}
	if !cfg.Auth.Enabled() {
		cfg.Warnings = append(cfg.Warnings,
			"no auth configured — requests are trusted as-is. Set JWT_SECRET or AUTH_ISSUER_URL")
	}

	// Production mode: insecure defaults are fatal errors.
	if cfg.IsProduction() {
		if !cfg.Auth.Enabled() {
			return nil, fmt.Errorf("auth must be configured in production (set JWT_SECRET, AUTH_ISSUER_URL, or AUTH_JWKS_URL)")
		}
		if cfg.AssemblyAIKey == "" {
			return nil, fmt.Errorf("ASSEMBLYAI_API_KEY must be set in production (ENV=production)")
		}
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
	}

	return cfg, nil
}

// LoadDotEnv reads a .env file and sets any variables not already in the
// environment. Lines must be in KEY=VALUE format. Comments (#) and blank
// lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		// Env vars already set take precedence over the .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
// Only strips if both the first and last characters are matching quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
