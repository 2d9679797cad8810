package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/doodlesbykumbi/gateway-admin/pkg/access"
	"github.com/doodlesbykumbi/gateway-admin/pkg/preference"
	"github.com/doodlesbykumbi/gateway-admin/pkg/server/store"
)

func (c *Client) listGrants(ctx context.Context, path string, v url.Values) ([]store.AccessGrant, error) {
	grants := []store.AccessGrant{}
	err := c.do(ctx, request{method: http.MethodGet, path: path, query: v, out: &grants})
	return grants, err
}

// GetAccessGrants lists every grant on one resource.
func (c *Client) GetAccessGrants(ctx context.Context, resourceType preference.ResourceType, resourceID string) ([]store.AccessGrant, error) {
	return c.listGrants(ctx, "/resource-access", url.Values{
		"resourceType": {resourceType.String()},
		"resourceId":   {resourceID},
	})
}

// GetAccessGrantsByType lists a gateway's grants on one resource type.
func (c *Client) GetAccessGrantsByType(ctx context.Context, gatewayID string, resourceType preference.ResourceType) ([]store.AccessGrant, error) {
	return c.listGrants(ctx, "/resource-access/by-type", url.Values{
		"gatewayId":    {gatewayID},
		"resourceType": {resourceType.String()},
	})
}

// GetEnabledAccessGrants lists the enabled grants on one resource.
func (c *Client) GetEnabledAccessGrants(ctx context.Context, resourceType preference.ResourceType, resourceID string) ([]store.AccessGrant, error) {
	return c.listGrants(ctx, "/resource-access/enabled", url.Values{
		"resourceType": {resourceType.String()},
		"resourceId":   {resourceID},
	})
}

// GetAccessGrantsByOwner lists the grants one owner holds.
func (c *Client) GetAccessGrantsByOwner(ctx context.Context, ownerID string, ownerType preference.Level) ([]store.AccessGrant, error) {
	return c.listGrants(ctx, "/resource-access/owner/"+url.PathEscape(ownerID), url.Values{
		"ownerType": {ownerType.String()},
	})
}

// GetAccessGrant fetches one grant.
func (c *Client) GetAccessGrant(ctx context.Context, id int64) (*store.AccessGrant, error) {
	grant := &store.AccessGrant{}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/resource-access/" + itoa(id), out: grant}); err != nil {
		return nil, err
	}
	return grant, nil
}

// CreateAccessGrant creates a grant. It is never retried.
func (c *Client) CreateAccessGrant(ctx context.Context, req access.AccessGrantRequest) (*store.AccessGrant, error) {
	grant := &store.AccessGrant{}
	if err := c.do(ctx, request{method: http.MethodPost, path: "/resource-access", in: req, out: grant}); err != nil {
		return nil, err
	}
	return grant, nil
}

// UpdateAccessGrant applies a partial update.
func (c *Client) UpdateAccessGrant(ctx context.Context, id int64, patch store.AccessGrantPatch) (*store.AccessGrant, error) {
	grant := &store.AccessGrant{}
	if err := c.do(ctx, request{method: http.MethodPut, path: "/resource-access/" + itoa(id), in: patch, out: grant}); err != nil {
		return nil, err
	}
	return grant, nil
}

// DeleteAccessGrant removes a grant.
func (c *Client) DeleteAccessGrant(ctx context.Context, id int64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/resource-access/" + itoa(id)})
}

// GetAccessControl returns the credentials userID can reach in gatewayID.
// An empty userID asks for the gateway view.
func (c *Client) GetAccessControl(ctx context.Context, gatewayID, userID string) (*access.AccessControl, error) {
	v := url.Values{"gatewayId": {gatewayID}}
	if userID != "" {
		v.Set("userId", userID)
	}
	view := &access.AccessControl{}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/resource-access/access-control", query: v, out: view}); err != nil {
		return nil, err
	}
	return view, nil
}
