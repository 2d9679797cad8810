// Package config provides configuration management for the gateway admin
// service.
//
// Values start from defaults, are overridden by the YAML file at
// $GATEWAY_CONFIG_PATH/gateway.yml (default /etc/gateway-admin/config), and
// finally by GATEWAY_* environment variables. The source of every attribute
// is tracked for `gatewayctl configuration show`.
//
// # Key Configuration Options
//
//   - GATEWAY_AUTH_ENABLED: require bearer JWTs
//   - GATEWAY_STRICT_PREFERENCE_KEYS: reject unknown preference keys
//   - GATEWAY_LOG_LEVEL, GATEWAY_LOG_FILE: logging
//   - GATEWAY_CORS_ALLOWED_ORIGINS: comma separated origins
//
// Secrets are read from the environment only, never from the file:
//
//   - DATABASE_URL: database connection
//   - GATEWAY_DATA_KEY: base64 key sealing credential secrets
//   - GATEWAY_JWT_SECRET: HS256 token signing secret
package config
