// Command gatewayctl runs and administers the gateway admin service.
//
// The service stores per-resource preferences at gateway, group and user
// level, resolves the effective preferences for a user, and manages the
// access grants that bind owners to credentials on compute and storage
// resources.
//
// # Quick Start
//
//	# Generate a data key for sealing credential secrets
//	export GATEWAY_DATA_KEY="$(gatewayctl data-key generate)"
//	export GATEWAY_JWT_SECRET="$(gatewayctl data-key generate)"
//
//	# Run database migrations
//	gatewayctl db migrate
//
//	# Seed the gateway and start the server
//	gatewayctl preferences load gateway.yml
//	gatewayctl server
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string, or sqlite://path for a single node
//   - GATEWAY_DATA_KEY: Base64-encoded 256-bit key sealing credential secrets
//   - GATEWAY_JWT_SECRET: HMAC secret for bearer tokens
//   - GATEWAY_CONFIG_PATH: Directory holding gateway.yml (default: /etc/gateway-admin/config)
//   - GATEWAY_LOG_LEVEL: Log level (debug, info, warn, error)
//   - PORT: Server port (default: 8000)
//   - GATEWAY_URL, GATEWAY_TOKEN: Server address and token for the client commands
package main
