// Package model defines the database models for the gateway admin service.
//
// # Core Models
//
//   - Preference: one key/value setting for a (resource, owner, level)
//   - ResourceAccess: a grant binding a credential to a resource at an owner level
//   - Credential: catalog entry for an SSH key pair or password, secret sealed
//   - Resource: catalog entry mapping a compute/storage resource id to a name
//   - GroupMembership: which users belong to which gateway groups
//
// # Database Schema
//
//   - preferences: unique on (resource_type, resource_id, owner_id, level, pref_key)
//   - resource_access: unique on (resource_type, resource_id, owner_id, owner_type)
//   - credentials: keyed by token
//   - resources: keyed by (resource_type, resource_id)
//   - group_memberships: keyed by (gateway_id, group_id, user_id)
package model
