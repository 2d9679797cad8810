// Package store provides storage abstractions for the gateway admin server.
//
// This package defines interfaces for database operations, allowing the
// server endpoints, the resolver and the access aggregator to be decoupled
// from the specific database implementation. GORM implementations live in
// the gorm subpackage.
//
// # Available Stores
//
//   - PreferencesStore: per-level preference records (upsert, read, delete)
//   - AccessGrantsStore: resource access grants
//   - CredentialsStore: credential catalog with sealed secrets
//   - CatalogStore: resource display names
//   - GroupsStore: group membership
//   - HealthStore: database connectivity
//
// # Usage
//
//	grants := gorm.NewAccessGrantsStore(db)
//	grant, err := grants.GetAccessGrant(ctx, 42)
//	if err != nil {
//	    if errors.Is(err, store.ErrGrantNotFound) {
//	        // Handle not found
//	    }
//	}
package store
