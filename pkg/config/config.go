package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vitalmesh/vitalmesh/pkg/observability"
)

// Config holds all gateway configuration. It is constructed once at process
// start and passed by reference into every component constructor; nothing
// reads ambient environment state after Load returns.
type Config struct {
	Server        ServerConfig
	Auth          AuthConfig
	CORS          CORSConfig
	RateLimit     RateLimitConfig
	Downstream    DownstreamConfig
	Policy        PolicyConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
}

// AuthConfig holds the token validation contract shared with the auth service
type AuthConfig struct {
	// TokenSecret is the HS256 shared secret. Required.
	TokenSecret string
}

// CORSConfig holds the cross-origin allow-list
type CORSConfig struct {
	// AllowedOrigins is the origin allow-list. A single "*" entry allows any origin.
	AllowedOrigins []string
}

// RateLimitConfig holds fixed-window rate limiting settings
type RateLimitConfig struct {
	// RequestsPerMinute is the per-client, per-route budget.
	// Zero or negative disables limiting entirely.
	RequestsPerMinute int
	// WindowSlack is added to the one-minute key TTL to tolerate clock drift.
	WindowSlack time.Duration
	// FailOpen controls behavior when the counter store is unreachable:
	// true allows the request through, false rejects it.
	FailOpen bool

	RedisURL      string
	RedisPassword string
	RedisDB       int
}

// DownstreamConfig holds one base URL per backend service plus the
// outbound request timeout
type DownstreamConfig struct {
	AuthURL       string
	UserURL       string
	OrgURL        string
	MediaURL      string
	TimeseriesURL string
	AuditURL      string
	AlertURL      string
	DeviceURL     string

	Timeout time.Duration
}

// PolicyConfig holds access-rule settings
type PolicyConfig struct {
	// RulesFile optionally overrides the built-in access-rule table with a YAML file.
	RulesFile string
}

// ObservabilityConfig holds logging and metrics settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("GATEWAY_HOST", "0.0.0.0"),
			Port:            getEnv("GATEWAY_PORT", "8000"),
			ReadTimeout:     getEnvDuration("GATEWAY_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("GATEWAY_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:     getEnvDuration("GATEWAY_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("GATEWAY_SHUTDOWN_TIMEOUT", 30*time.Second),
			MaxBodyBytes:    getEnvInt64("GATEWAY_MAX_BODY_BYTES", 32<<20),
		},
		Auth: AuthConfig{
			TokenSecret: getEnv("GATEWAY_TOKEN_SECRET", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitAndTrim(getEnv("GATEWAY_ALLOWED_ORIGINS", "*")),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvInt("GATEWAY_RATE_LIMIT_PER_MINUTE", 120),
			WindowSlack:       getEnvDuration("GATEWAY_RATE_LIMIT_WINDOW_SLACK", 10*time.Second),
			FailOpen:          getEnvBool("GATEWAY_RATE_LIMIT_FAIL_OPEN", true),
			RedisURL:          getEnv("GATEWAY_REDIS_URL", ""),
			RedisPassword:     getEnv("GATEWAY_REDIS_PASSWORD", ""),
			RedisDB:           getEnvInt("GATEWAY_REDIS_DB", 0),
		},
		Downstream: DownstreamConfig{
			AuthURL:       getEnv("GATEWAY_AUTH_SERVICE_URL", "http://localhost:8001"),
			UserURL:       getEnv("GATEWAY_USER_SERVICE_URL", "http://localhost:8002"),
			OrgURL:        getEnv("GATEWAY_ORG_SERVICE_URL", "http://localhost:8003"),
			MediaURL:      getEnv("GATEWAY_MEDIA_SERVICE_URL", "http://localhost:8004"),
			TimeseriesURL: getEnv("GATEWAY_TIMESERIES_SERVICE_URL", "http://localhost:8005"),
			AuditURL:      getEnv("GATEWAY_AUDIT_SERVICE_URL", "http://localhost:8006"),
			AlertURL:      getEnv("GATEWAY_ALERT_SERVICE_URL", "http://localhost:8007"),
			DeviceURL:     getEnv("GATEWAY_DEVICE_SERVICE_URL", "http://localhost:8008"),
			Timeout:       getEnvDuration("GATEWAY_DOWNSTREAM_TIMEOUT", 30*time.Second),
		},
		Policy: PolicyConfig{
			RulesFile: getEnv("GATEWAY_ACCESS_RULES_FILE", ""),
		},
		Observability: ObservabilityConfig{
			LogLevel:       parseLogLevel(getEnv("GATEWAY_LOG_LEVEL", "info")),
			MetricsEnabled: getEnvBool("GATEWAY_METRICS_ENABLED", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid. Service URLs are checked
// here so a typo fails the process at boot instead of at request time.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Auth.TokenSecret == "" {
		return fmt.Errorf("GATEWAY_TOKEN_SECRET is required")
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin is required")
	}

	for name, u := range c.Downstream.URLs() {
		if u == "" {
			return fmt.Errorf("base URL for %s service is required", name)
		}
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return fmt.Errorf("base URL for %s service must be http(s): %q", name, u)
		}
	}

	if c.Downstream.Timeout <= 0 {
		return fmt.Errorf("downstream timeout must be positive")
	}

	return nil
}

// URLs returns the configured base URL per logical service name
func (d DownstreamConfig) URLs() map[string]string {
	return map[string]string{
		"auth":       d.AuthURL,
		"user":       d.UserURL,
		"org":        d.OrgURL,
		"media":      d.MediaURL,
		"timeseries": d.TimeseriesURL,
		"audit":      d.AuditURL,
		"alert":      d.AlertURL,
		"device":     d.DeviceURL,
	}
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvInt64 returns an int64 environment variable or a default
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
