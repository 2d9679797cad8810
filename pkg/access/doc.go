// Package access manages resource access grants and builds the per-user
// access control view.
//
// Registry validates and persists grants. A gateway, group or user may hold
// at most one grant per resource; a second create is a conflict.
//
// Aggregator answers "which credentials can this user reach, and where are
// they bound". A credential is reachable when the user owns it, or when an
// enabled grant held by one of the user's groups or by the gateway points at
// it. Each credential appears once, tagged OWNED when the user owns it.
package access
