package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/doodlesbykumbi/gateway-admin/pkg/server/store"
)

type credentialBody struct {
	Token       string `json:"token,omitempty"`
	GatewayID   string `json:"gatewayId"`
	OwnerID     string `json:"ownerId"`
	OwnerType   string `json:"ownerType"`
	Name        string `json:"name"`
	Username    string `json:"username,omitempty"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Secret      string `json:"secret,omitempty"`
}

// ListCredentials lists a gateway's credentials, optionally for one owner.
func (c *Client) ListCredentials(ctx context.Context, gatewayID, ownerID string) ([]store.Credential, error) {
	v := url.Values{"gatewayId": {gatewayID}}
	if ownerID != "" {
		v.Set("ownerId", ownerID)
	}
	creds := []store.Credential{}
	err := c.do(ctx, request{method: http.MethodGet, path: "/credentials", query: v, out: &creds})
	return creds, err
}

// GetCredential fetches one credential's metadata.
func (c *Client) GetCredential(ctx context.Context, token string) (*store.Credential, error) {
	cred := &store.Credential{}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/credentials/" + url.PathEscape(token), out: cred}); err != nil {
		return nil, err
	}
	return cred, nil
}

// CreateCredential registers cred with its secret and returns the stored
// metadata, including a generated token when cred.Token is empty.
func (c *Client) CreateCredential(ctx context.Context, cred store.Credential, secret string) (*store.Credential, error) {
	body := credentialBody{
		Token:       cred.Token,
		GatewayID:   cred.GatewayID,
		OwnerID:     cred.OwnerID,
		OwnerType:   cred.OwnerType.String(),
		Name:        cred.Name,
		Username:    cred.Username,
		Type:        string(cred.Type),
		Description: cred.Description,
		Secret:      secret,
	}
	out := &store.Credential{}
	if err := c.do(ctx, request{method: http.MethodPost, path: "/credentials", in: body, out: out}); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteCredential removes a credential no grant references.
func (c *Client) DeleteCredential(ctx context.Context, token string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/credentials/" + url.PathEscape(token)})
}

// GroupsForUser returns the groups userID belongs to.
func (c *Client) GroupsForUser(ctx context.Context, gatewayID, userID string) ([]string, error) {
	var out struct {
		Groups []string `json:"groups"`
	}
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/groups/memberships",
		query:  url.Values{"gatewayId": {gatewayID}, "userId": {userID}},
		out:    &out,
	})
	return out.Groups, err
}

// Health reports whether the server can reach its database.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, request{method: http.MethodGet, path: "/health"})
}
