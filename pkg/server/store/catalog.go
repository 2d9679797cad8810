package store

import (
	"context"

	"github.com/doodlesbykumbi/gateway-admin/pkg/preference"
)

// CatalogResource maps a compute or storage resource id to its display name.
type CatalogResource struct {
	ResourceType preference.ResourceType `json:"type" yaml:"type"`
	ResourceID   string                  `json:"id" yaml:"id"`
	GatewayID    string                  `json:"gatewayId" yaml:"gatewayId"`
	Name         string                  `json:"name" yaml:"name"`
}

// CatalogStore abstracts the resource catalog
type CatalogStore interface {
	// UpsertResource creates or renames a catalog entry.
	UpsertResource(ctx context.Context, resource CatalogResource) error

	// ResourceNames maps the known ids among ids to their names.
	ResourceNames(ctx context.Context, resourceType preference.ResourceType, ids []string) (map[string]string, error)
}

// GroupsStore abstracts the group membership service
type GroupsStore interface {
	// GroupsForUser returns the sorted group ids userID belongs to.
	GroupsForUser(ctx context.Context, gatewayID, userID string) ([]string, error)

	// AddMember is idempotent.
	AddMember(ctx context.Context, gatewayID, groupID, userID string) error

	// RemoveMember is idempotent.
	RemoveMember(ctx context.Context, gatewayID, groupID, userID string) error
}
