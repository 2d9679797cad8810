package access

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/doodlesbykumbi/gateway-admin/pkg/apierr"
	"github.com/doodlesbykumbi/gateway-admin/pkg/preference"
	"github.com/doodlesbykumbi/gateway-admin/pkg/server/store"
)

// AccessGrantRequest is the create payload. Enum fields are strings so that
// an absent field can be told apart from the zero enum value.
type AccessGrantRequest struct {
	ResourceType    string `json:"resourceType" yaml:"resourceType"`
	ResourceID      string `json:"resourceId" yaml:"resourceId"`
	OwnerID         string `json:"ownerId" yaml:"ownerId"`
	OwnerType       string `json:"ownerType" yaml:"ownerType"`
	GatewayID       string `json:"gatewayId" yaml:"gatewayId"`
	CredentialToken string `json:"credentialToken" yaml:"credentialToken"`
	LoginUsername   string `json:"loginUsername,omitempty" yaml:"loginUsername,omitempty"`
	Enabled         *bool  `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// Validate checks required fields and enum values and returns the grant to
// persist.
func (r AccessGrantRequest) Validate() (*store.AccessGrant, error) {
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"resourceType", r.ResourceType},
		{"resourceId", r.ResourceID},
		{"ownerId", r.OwnerID},
		{"ownerType", r.OwnerType},
		{"gatewayId", r.GatewayID},
		{"credentialToken", r.CredentialToken},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, apierr.Validation(missing...)
	}

	rt, err := preference.ParseResourceType(r.ResourceType)
	if err != nil {
		return nil, apierr.Validationf("invalid resourceType %q", r.ResourceType)
	}
	ot, err := preference.ParseLevel(r.OwnerType)
	if err != nil {
		return nil, apierr.Validationf("invalid ownerType %q", r.OwnerType)
	}

	enabled := true
	if r.Enabled != nil {
		enabled = *r.Enabled
	}
	return &store.AccessGrant{
		ResourceType:    rt,
		ResourceID:      r.ResourceID,
		OwnerID:         r.OwnerID,
		OwnerType:       ot,
		GatewayID:       r.GatewayID,
		CredentialToken: r.CredentialToken,
		LoginUsername:   r.LoginUsername,
		Enabled:         enabled,
	}, nil
}

// Registry is CRUD over access grants with the error taxonomy applied.
type Registry struct {
	grants      store.AccessGrantsStore
	credentials store.CredentialsStore
}

// NewRegistry creates a Registry. When credentials is non-nil, grants must
// reference an existing credential.
func NewRegistry(grants store.AccessGrantsStore, credentials store.CredentialsStore) *Registry {
	return &Registry{grants: grants, credentials: credentials}
}

// CreateAccessGrant validates req and persists it. Nothing is written when
// validation fails.
func (r *Registry) CreateAccessGrant(ctx context.Context, req AccessGrantRequest) (*store.AccessGrant, error) {
	grant, err := req.Validate()
	if err != nil {
		return nil, err
	}
	if err := r.checkCredential(ctx, grant.CredentialToken); err != nil {
		return nil, err
	}

	// the credential can still vanish between the check and the insert
	if err := r.grants.CreateAccessGrant(ctx, grant); err != nil {
		switch {
		case errors.Is(err, store.ErrGrantExists):
			return nil, apierr.Conflictf("%s %s already has an access grant on %s %s",
				grant.OwnerType, grant.OwnerID, grant.ResourceType, grant.ResourceID)
		case errors.Is(err, store.ErrCredentialNotFound):
			return nil, unknownCredential(grant.CredentialToken)
		}
		return nil, err
	}

	log.WithFields(log.Fields{
		"id":           grant.ID,
		"resourceType": grant.ResourceType,
		"resourceId":   grant.ResourceID,
		"ownerType":    grant.OwnerType,
		"ownerId":      grant.OwnerID,
	}).Info("access grant created")
	return grant, nil
}

// UpdateAccessGrant applies a partial update.
func (r *Registry) UpdateAccessGrant(ctx context.Context, id int64, patch store.AccessGrantPatch) (*store.AccessGrant, error) {
	if patch.CredentialToken != nil {
		if strings.TrimSpace(*patch.CredentialToken) == "" {
			return nil, apierr.Validation("credentialToken")
		}
		if err := r.checkCredential(ctx, *patch.CredentialToken); err != nil {
			return nil, err
		}
	}
	grant, err := r.grants.UpdateAccessGrant(ctx, id, patch)
	if errors.Is(err, store.ErrCredentialNotFound) && patch.CredentialToken != nil {
		return nil, unknownCredential(*patch.CredentialToken)
	}
	if err != nil {
		return nil, grantError(err, id)
	}
	return grant, nil
}

// DeleteAccessGrant removes a grant permanently.
func (r *Registry) DeleteAccessGrant(ctx context.Context, id int64) error {
	if err := r.grants.DeleteAccessGrant(ctx, id); err != nil {
		return grantError(err, id)
	}
	return nil
}

func (r *Registry) GetAccessGrant(ctx context.Context, id int64) (*store.AccessGrant, error) {
	grant, err := r.grants.GetAccessGrant(ctx, id)
	if err != nil {
		return nil, grantError(err, id)
	}
	return grant, nil
}

// GetAccessGrants lists every grant on one resource, enabled or not.
func (r *Registry) GetAccessGrants(ctx context.Context, resourceType preference.ResourceType, resourceID string) ([]store.AccessGrant, error) {
	if resourceID == "" {
		return nil, apierr.Validation("resourceId")
	}
	return r.grants.ListAccessGrants(ctx, store.AccessGrantFilter{
		ResourceType: &resourceType,
		ResourceID:   resourceID,
	})
}

// GetAccessGrantsByType lists a gateway's grants on one resource type.
func (r *Registry) GetAccessGrantsByType(ctx context.Context, gatewayID string, resourceType preference.ResourceType) ([]store.AccessGrant, error) {
	if gatewayID == "" {
		return nil, apierr.Validation("gatewayId")
	}
	return r.grants.ListAccessGrants(ctx, store.AccessGrantFilter{
		GatewayID:    gatewayID,
		ResourceType: &resourceType,
	})
}

// GetEnabledAccessGrants lists the enabled grants on one resource.
func (r *Registry) GetEnabledAccessGrants(ctx context.Context, resourceType preference.ResourceType, resourceID string) ([]store.AccessGrant, error) {
	if resourceID == "" {
		return nil, apierr.Validation("resourceId")
	}
	grants, err := r.grants.ListAccessGrants(ctx, store.AccessGrantFilter{
		ResourceType: &resourceType,
		ResourceID:   resourceID,
		EnabledOnly:  true,
	})
	if err != nil {
		return nil, err
	}
	// the store filters already; keep the guarantee independent of it
	out := grants[:0]
	for _, g := range grants {
		if g.Enabled {
			out = append(out, g)
		}
	}
	return out, nil
}

// GetAccessGrantsByOwner lists the grants one owner holds.
func (r *Registry) GetAccessGrantsByOwner(ctx context.Context, ownerID string, ownerType preference.Level) ([]store.AccessGrant, error) {
	if ownerID == "" {
		return nil, apierr.Validation("ownerId")
	}
	return r.grants.ListAccessGrants(ctx, store.AccessGrantFilter{
		Owners: []store.GrantOwner{{OwnerID: ownerID, OwnerType: ownerType}},
	})
}

func (r *Registry) checkCredential(ctx context.Context, token string) error {
	if r.credentials == nil {
		return nil
	}
	_, err := r.credentials.GetCredential(ctx, token)
	if errors.Is(err, store.ErrCredentialNotFound) {
		return unknownCredential(token)
	}
	return err
}

func unknownCredential(token string) error {
	return &apierr.ValidationError{
		Message: fmt.Sprintf("credential %s does not exist", token),
		Fields:  []string{"credentialToken"},
	}
}

func grantError(err error, id int64) error {
	if errors.Is(err, store.ErrGrantNotFound) {
		return apierr.NotFound("access grant", strconv.FormatInt(id, 10))
	}
	return err
}
