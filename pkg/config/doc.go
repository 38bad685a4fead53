// Package config provides gateway configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults for all settings except the token secret, which is required.
//
// # Configuration Structure
//
// Server settings:
//
//	GATEWAY_HOST="0.0.0.0"
//	GATEWAY_PORT="8000"
//	GATEWAY_READ_TIMEOUT="15s"
//	GATEWAY_WRITE_TIMEOUT="60s"
//	GATEWAY_MAX_BODY_BYTES="33554432"
//
// Security settings:
//
//	GATEWAY_TOKEN_SECRET="..."            # required, shared with the auth service
//	GATEWAY_ALLOWED_ORIGINS="https://app.example.com,https://ops.example.com"
//	GATEWAY_ACCESS_RULES_FILE="/etc/gateway/rules.yaml"  # optional override
//
// Rate limiting settings:
//
//	GATEWAY_RATE_LIMIT_PER_MINUTE="120"   # <= 0 disables limiting
//	GATEWAY_RATE_LIMIT_FAIL_OPEN="true"   # counter-store outage policy
//	GATEWAY_REDIS_URL="redis://localhost:6379"
//
// Downstream settings (one base URL per backend service):
//
//	GATEWAY_AUTH_SERVICE_URL="http://auth:8001"
//	GATEWAY_USER_SERVICE_URL="http://users:8002"
//	GATEWAY_TIMESERIES_SERVICE_URL="http://timeseries:8005"
//	GATEWAY_DOWNSTREAM_TIMEOUT="30s"
//
// Observability settings:
//
//	GATEWAY_LOG_LEVEL="info"  # debug, info, warn, error
//	GATEWAY_METRICS_ENABLED="true"
//
// # Usage Example
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Related Packages
//
//   - pkg/proxy: resolves downstream URLs from this configuration
//   - pkg/observability: uses log level and metrics settings
package config
