package config

import (
	"testing"
	"time"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("MAX_ATTEMPTS", "3")
	t.Setenv("ENRICHMENT_MODE", "rules")
	t.Setenv("DB_PATH", "./data/test.db")
	t.Setenv("ENRICHMENT_TIMEOUT", "5s")
	t.Setenv("CRM_EXPORT_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("SessionTTL = %v, want 30m", cfg.SessionTTL)
	}
	if cfg.Intake.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.Intake.MaxAttempts)
	}
	if !cfg.CRMExport {
		t.Error("CRMExport = false, want true")
	}
	if cfg.Enrichment.Timeout != 5*time.Second {
		t.Errorf("Enrichment.Timeout = %v, want 5s", cfg.Enrichment.Timeout)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:       "8080",
			DBPath:     "./data/test.db",
			SessionTTL: time.Hour,
			Intake:     IntakeConfig{MaxAttempts: 2},
			Enrichment: EnrichmentConfig{Mode: "rules", Timeout: 10 * time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid rules config", func(c *Config) {}, false},
		{"valid model config", func(c *Config) {
			c.Enrichment.Mode = "model"
			c.Enrichment.APIKey = "sk-test"
		}, false},
		{"empty port", func(c *Config) { c.Port = "" }, true},
		{"empty db path", func(c *Config) { c.DBPath = "" }, true},
		{"zero max attempts", func(c *Config) { c.Intake.MaxAttempts = 0 }, true},
		{"unknown enrichment mode", func(c *Config) { c.Enrichment.Mode = "magic" }, true},
		{"model mode without key", func(c *Config) { c.Enrichment.Mode = "model" }, true},
		{"zero enrichment timeout", func(c *Config) { c.Enrichment.Timeout = 0 }, true},
		{"zero session ttl", func(c *Config) { c.SessionTTL = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnvHelpersFallBackOnGarbage(t *testing.T) {
	t.Setenv("BOOL_KEY", "maybe")
	if got := getEnvBool("BOOL_KEY", true); !got {
		t.Error("getEnvBool should fall back on unparseable input")
	}
	t.Setenv("INT_KEY", "twelve")
	if got := getEnvInt("INT_KEY", 7); got != 7 {
		t.Errorf("getEnvInt = %d, want fallback 7", got)
	}
	t.Setenv("DUR_KEY", "soon")
	if got := getEnvDuration("DUR_KEY", time.Minute); got != time.Minute {
		t.Errorf("getEnvDuration = %v, want fallback 1m", got)
	}
}

func TestIsDevelopment(t *testing.T) {
	tests := []struct {
		frontendURL string
		want        bool
	}{
		{"", true},
		{"http://localhost:3000", true},
		{"http://127.0.0.1:3000", true},
		{"https://intake.example.com", false},
	}
	for _, tt := range tests {
		cfg := &Config{FrontendURL: tt.frontendURL}
		if got := cfg.IsDevelopment(); got != tt.want {
			t.Errorf("IsDevelopment(%q) = %v, want %v", tt.frontendURL, got, tt.want)
		}
	}
}
