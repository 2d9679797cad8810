package identity

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitUserID(t *testing.T) {
	tests := []struct {
		userID      string
		wantLogin   string
		wantGateway string
	}{
		{"alice@gw1", "alice", "gw1"},
		{"alice", "alice", ""},
		{"first.last@example.org@gw1", "first.last@example.org", "gw1"},
		{"", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.userID, func(t *testing.T) {
			login, gateway := SplitUserID(tt.userID)
			assert.Equal(t, tt.wantLogin, login)
			assert.Equal(t, tt.wantGateway, gateway)
		})
	}

	assert.Equal(t, "alice@gw1", UserID("alice", "gw1"))
	assert.Equal(t, "alice", UserID("alice", ""))
}

func TestFromClaims(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice@gw1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}

	id := FromClaims(claims)
	assert.Equal(t, "alice@gw1", id.UserID)
	assert.Equal(t, "alice", id.Login)
	assert.Equal(t, "gw1", id.GatewayID)
	assert.True(t, id.IssuedAt.Equal(now))
	assert.True(t, id.ExpiresAt.Equal(now.Add(time.Hour)))

	claims.Gateway = "gw2"
	assert.Equal(t, "gw2", FromClaims(claims).GatewayID)
}

func TestContext(t *testing.T) {
	ctx := context.Background()
	_, ok := Get(ctx)
	assert.False(t, ok)
	assert.Equal(t, "anonymous", UserIDFrom(ctx))

	id := (&Identity{UserID: "alice@gw1"}).WithRemoteIP(net.ParseIP("10.0.0.1"))
	ctx = Set(ctx, id)

	got, ok := Get(ctx)
	require.True(t, ok)
	assert.Same(t, id, got)
	assert.Equal(t, "10.0.0.1", got.ClientIP())
	assert.Equal(t, "alice@gw1", UserIDFrom(ctx))

	var nilID *Identity
	assert.Equal(t, "", nilID.ClientIP())
}
