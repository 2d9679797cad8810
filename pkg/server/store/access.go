package store

import (
	"context"
	"errors"
	"time"

	"github.com/doodlesbykumbi/gateway-admin/pkg/preference"
)

// ErrGrantNotFound is returned when an access grant id doesn't exist
var ErrGrantNotFound = errors.New("access grant not found")

// ErrGrantExists is returned when an owner already holds a grant on a resource
var ErrGrantExists = errors.New("access grant already exists for this owner and resource")

// AccessGrant binds a credential to a resource for one owner at one level.
type AccessGrant struct {
	ID              int64                   `json:"id"`
	ResourceType    preference.ResourceType `json:"resourceType"`
	ResourceID      string                  `json:"resourceId"`
	OwnerID         string                  `json:"ownerId"`
	OwnerType       preference.Level        `json:"ownerType"`
	GatewayID       string                  `json:"gatewayId"`
	CredentialToken string                  `json:"credentialToken"`
	LoginUsername   string                  `json:"loginUsername,omitempty"`
	Enabled         bool                    `json:"enabled"`
	CreatedAt       time.Time               `json:"createdAt"`
	UpdatedAt       time.Time               `json:"updatedAt"`
}

// AccessGrantPatch is a partial update; nil fields are left untouched.
type AccessGrantPatch struct {
	Enabled         *bool   `json:"enabled,omitempty"`
	CredentialToken *string `json:"credentialToken,omitempty"`
	LoginUsername   *string `json:"loginUsername,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p AccessGrantPatch) IsEmpty() bool {
	return p.Enabled == nil && p.CredentialToken == nil && p.LoginUsername == nil
}

// GrantOwner identifies the owner side of a grant.
type GrantOwner struct {
	OwnerID   string
	OwnerType preference.Level
}

// AccessGrantFilter narrows ListAccessGrants. Zero fields do not filter.
type AccessGrantFilter struct {
	GatewayID       string
	ResourceType    *preference.ResourceType
	ResourceID      string
	Owners          []GrantOwner
	CredentialToken string
	EnabledOnly     bool
}

// AccessGrantsStore abstracts access grant storage operations
type AccessGrantsStore interface {
	// CreateAccessGrant persists grant and assigns its ID and timestamps.
	// Returns ErrGrantExists if the owner already holds a grant on the resource
	// and ErrCredentialNotFound if the credential token has no credential.
	CreateAccessGrant(ctx context.Context, grant *AccessGrant) error

	// GetAccessGrant returns ErrGrantNotFound for an unknown id.
	GetAccessGrant(ctx context.Context, id int64) (*AccessGrant, error)

	// UpdateAccessGrant applies patch and returns the updated grant. A patched
	// credential token with no credential yields ErrCredentialNotFound.
	UpdateAccessGrant(ctx context.Context, id int64, patch AccessGrantPatch) (*AccessGrant, error)

	// DeleteAccessGrant hard deletes a grant.
	DeleteAccessGrant(ctx context.Context, id int64) error

	// ListAccessGrants returns matching grants ordered by id.
	ListAccessGrants(ctx context.Context, filter AccessGrantFilter) ([]AccessGrant, error)
}
