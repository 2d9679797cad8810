// Package audit provides audit logging for gateway admin operations.
//
// Every mutation of preferences, access grants and credentials, and every
// rejected bearer token, is written as an RFC5424 syslog line. When
// GATEWAY_AUDIT_DATABASE_URL is set the records are also appended to the
// messages table of that PostgreSQL database.
//
// # Event Types
//
//   - AuthenticateEvent: bearer token checks
//   - PreferenceEvent: set, delete, delete-all
//   - GrantEvent: create, update, delete
//   - CredentialEvent: create, delete
//   - BundleEvent: bundles applied from gatewayctl
//
// # Usage
//
//	audit.Log(audit.GrantEvent{
//	    UserID:    "admin@gw1",
//	    GrantID:   grant.ID,
//	    Operation: "create",
//	    Success:   true,
//	})
//
// Audit logging can be disabled with GATEWAY_AUDIT_ENABLED=false.
package audit
