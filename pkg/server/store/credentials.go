package store

import (
	"context"
	"errors"
	"time"

	"github.com/doodlesbykumbi/gateway-admin/pkg/preference"
)

// ErrCredentialNotFound is returned when a credential token doesn't exist
var ErrCredentialNotFound = errors.New("credential not found")

// ErrCredentialExists is returned when a credential token is already taken
var ErrCredentialExists = errors.New("credential already exists")

// ErrCredentialInUse is returned when deleting a credential that grants still reference
var ErrCredentialInUse = errors.New("credential is referenced by access grants")

// CredentialType is the kind of secret a credential holds.
type CredentialType string

const (
	CredentialTypeSSH      CredentialType = "SSH"
	CredentialTypePassword CredentialType = "PASSWORD"
)

// Credential is the public metadata of a credential. The secret itself is
// write-only.
type Credential struct {
	Token       string           `json:"token"`
	GatewayID   string           `json:"gatewayId"`
	OwnerID     string           `json:"ownerId"`
	OwnerType   preference.Level `json:"ownerType"`
	Name        string           `json:"name"`
	Username    string           `json:"username,omitempty"`
	Type        CredentialType   `json:"type"`
	Description string           `json:"description,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// CredentialsStore abstracts the credential catalog
type CredentialsStore interface {
	// CreateCredential stores cred with its sealed secret. A token is generated
	// when cred.Token is empty.
	CreateCredential(ctx context.Context, cred *Credential, secret []byte) error

	// GetCredential returns ErrCredentialNotFound for an unknown token.
	GetCredential(ctx context.Context, token string) (*Credential, error)

	// GetCredentials returns the credentials that exist among tokens.
	GetCredentials(ctx context.Context, tokens []string) ([]Credential, error)

	// ListCredentials lists a gateway's credentials, optionally for one owner.
	ListCredentials(ctx context.Context, gatewayID, ownerID string) ([]Credential, error)

	// ListUserCredentials lists the credentials a user owns directly.
	ListUserCredentials(ctx context.Context, gatewayID, userID string) ([]Credential, error)

	// DeleteCredential refuses with ErrCredentialInUse while any grant
	// references the token.
	DeleteCredential(ctx context.Context, token string) error
}
