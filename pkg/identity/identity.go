package identity

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// Key is the context key for Identity.
	Key ContextKey = "identity"
)

// Claims are the JWT claims the gateway admin API accepts. Subject is the
// user id ("alice@gw1"); Gateway names the gateway the token was issued for.
type Claims struct {
	jwt.RegisteredClaims
	Gateway string `json:"gateway,omitempty"`
}

// Identity represents the authenticated caller of a request.
type Identity struct {
	// Token claims
	UserID    string
	GatewayID string
	Login     string
	IssuedAt  time.Time
	ExpiresAt time.Time

	// Request context
	RemoteIP net.IP
}

// FromClaims creates an Identity from verified token claims. When the
// gateway claim is absent it is taken from the subject's domain part.
func FromClaims(c *Claims) *Identity {
	login, gateway := SplitUserID(c.Subject)
	if c.Gateway != "" {
		gateway = c.Gateway
	}
	id := &Identity{
		UserID:    c.Subject,
		GatewayID: gateway,
		Login:     login,
	}
	if c.IssuedAt != nil {
		id.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id
}

// WithRemoteIP sets the remote IP address.
func (i *Identity) WithRemoteIP(ip net.IP) *Identity {
	i.RemoteIP = ip
	return i
}

// ClientIP renders RemoteIP for audit records.
func (i *Identity) ClientIP() string {
	if i == nil || i.RemoteIP == nil {
		return ""
	}
	return i.RemoteIP.String()
}

// SplitUserID splits "login@gateway" at the last '@'. A user id without a
// gateway part yields an empty gateway.
func SplitUserID(userID string) (login, gateway string) {
	at := strings.LastIndex(userID, "@")
	if at < 0 {
		return userID, ""
	}
	return userID[:at], userID[at+1:]
}

// UserID joins a login and gateway into a user id.
func UserID(login, gateway string) string {
	if gateway == "" {
		return login
	}
	return login + "@" + gateway
}

// Get retrieves Identity from context.
func Get(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(Key).(*Identity)
	return id, ok
}

// Set stores Identity in context.
func Set(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, Key, id)
}

// UserIDFrom returns the caller's user id for audit records, or "anonymous"
// when the request is unauthenticated.
func UserIDFrom(ctx context.Context) string {
	if id, ok := Get(ctx); ok && id.UserID != "" {
		return id.UserID
	}
	return "anonymous"
}
