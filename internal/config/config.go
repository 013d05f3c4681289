// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration. Loaded once at startup and
// treated as immutable afterwards.
type Config struct {
	Port        string
	FrontendURL string
	DBPath      string
	SessionTTL  time.Duration
	Intake      IntakeConfig
	Enrichment  EnrichmentConfig
	CRMExport   bool
}

// IntakeConfig controls the dialogue state machine.
type IntakeConfig struct {
	MaxAttempts int
}

// EnrichmentConfig controls classification and summary generation.
type EnrichmentConfig struct {
	Mode    string // "rules" or "model"
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		DBPath:      getEnv("DB_PATH", "./data/legal_cases.db"),
		SessionTTL:  getEnvDuration("SESSION_TTL", 60*time.Minute),
		Intake: IntakeConfig{
			MaxAttempts: getEnvInt("MAX_ATTEMPTS", 2),
		},
		Enrichment: EnrichmentConfig{
			Mode:    getEnv("ENRICHMENT_MODE", "rules"),
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			Model:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			Timeout: getEnvDuration("ENRICHMENT_TIMEOUT", 10*time.Second),
		},
		CRMExport: getEnvBool("CRM_EXPORT_ENABLED", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.Intake.MaxAttempts <= 0 {
		return fmt.Errorf("MAX_ATTEMPTS must be > 0")
	}
	if c.Enrichment.Mode != "rules" && c.Enrichment.Mode != "model" {
		return fmt.Errorf("ENRICHMENT_MODE must be \"rules\" or \"model\", got %q", c.Enrichment.Mode)
	}
	if c.Enrichment.Mode == "model" && c.Enrichment.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when ENRICHMENT_MODE is \"model\"")
	}
	if c.Enrichment.Timeout <= 0 {
		return fmt.Errorf("ENRICHMENT_TIMEOUT must be > 0")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
