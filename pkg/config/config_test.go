package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: "8000"},
		Auth:   AuthConfig{TokenSecret: "secret"},
		CORS:   CORSConfig{AllowedOrigins: []string{"*"}},
		Downstream: DownstreamConfig{
			AuthURL:       "http://localhost:8001",
			UserURL:       "http://localhost:8002",
			OrgURL:        "http://localhost:8003",
			MediaURL:      "http://localhost:8004",
			TimeseriesURL: "http://localhost:8005",
			AuditURL:      "http://localhost:8006",
			AlertURL:      "http://localhost:8007",
			DeviceURL:     "http://localhost:8008",
			Timeout:       30 * time.Second,
		},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing port", func(c *Config) { c.Server.Port = "" }},
		{"missing secret", func(c *Config) { c.Auth.TokenSecret = "" }},
		{"no origins", func(c *Config) { c.CORS.AllowedOrigins = nil }},
		{"missing service URL", func(c *Config) { c.Downstream.TimeseriesURL = "" }},
		{"non-http service URL", func(c *Config) { c.Downstream.UserURL = "localhost:8002" }},
		{"zero downstream timeout", func(c *Config) { c.Downstream.Timeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("GATEWAY_TOKEN_SECRET", "test-secret")
	t.Setenv("GATEWAY_RATE_LIMIT_PER_MINUTE", "7")
	t.Setenv("GATEWAY_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("GATEWAY_RATE_LIMIT_FAIL_OPEN", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != "8000" {
		t.Errorf("default port = %q, want 8000", cfg.Server.Port)
	}
	if cfg.RateLimit.RequestsPerMinute != 7 {
		t.Errorf("rate budget = %d, want 7", cfg.RateLimit.RequestsPerMinute)
	}
	if cfg.RateLimit.FailOpen {
		t.Error("FailOpen = true, want false")
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example.com" {
		t.Errorf("origins = %v, want two trimmed entries", cfg.CORS.AllowedOrigins)
	}
	if cfg.Downstream.Timeout != 30*time.Second {
		t.Errorf("downstream timeout = %v, want 30s", cfg.Downstream.Timeout)
	}
}

func TestLoad_MissingSecretFails(t *testing.T) {
	t.Setenv("GATEWAY_TOKEN_SECRET", "")
	if _, err := Load(); err == nil {
		t.Error("Load() without secret should fail")
	}
}
