package bundle

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doodlesbykumbi/gateway-admin/pkg/access"
	"github.com/doodlesbykumbi/gateway-admin/pkg/apierr"
	"github.com/doodlesbykumbi/gateway-admin/pkg/identity"
	"github.com/doodlesbykumbi/gateway-admin/pkg/preference"
	"github.com/doodlesbykumbi/gateway-admin/pkg/server/store"
)

// Bundle is one parsed bundle document.
type Bundle struct {
	Gateway     string                      `yaml:"gateway"`
	Resources   []Resource                  `yaml:"resources,omitempty"`
	Groups      []Group                     `yaml:"groups,omitempty"`
	Credentials []Credential                `yaml:"credentials,omitempty"`
	Preferences []Preference                `yaml:"preferences,omitempty"`
	Grants      []access.AccessGrantRequest `yaml:"grants,omitempty"`
}

// Resource is a catalog entry.
type Resource struct {
	Type string `yaml:"type"`
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Group lists the members of one group.
type Group struct {
	ID      string   `yaml:"id"`
	Members []string `yaml:"members"`
}

// Credential is a credential to register. OwnerType and OwnerID default to
// the bundle's gateway.
type Credential struct {
	Token       string `yaml:"token"`
	OwnerType   string `yaml:"ownerType,omitempty"`
	OwnerID     string `yaml:"ownerId,omitempty"`
	Name        string `yaml:"name"`
	Username    string `yaml:"username,omitempty"`
	Type        string `yaml:"type"`
	Description string `yaml:"description,omitempty"`
	Secret      string `yaml:"secret,omitempty"`
}

// Preference is one preference record.
type Preference struct {
	ResourceType string `yaml:"resourceType"`
	ResourceID   string `yaml:"resourceId"`
	Level        string `yaml:"level"`
	OwnerID      string `yaml:"ownerId"`
	Key          string `yaml:"key"`
	Value        string `yaml:"value"`
	Enforced     bool   `yaml:"enforced,omitempty"`
}

// Scope returns the store scope of p.
func (p Preference) Scope() (store.PreferenceScope, error) {
	rt, err := preference.ParseResourceType(p.ResourceType)
	if err != nil {
		return store.PreferenceScope{}, fmt.Errorf("unknown resourceType %q", p.ResourceType)
	}
	level, err := preference.ParseLevel(p.Level)
	if err != nil {
		return store.PreferenceScope{}, fmt.Errorf("unknown level %q", p.Level)
	}
	if p.ResourceID == "" || p.OwnerID == "" || p.Key == "" {
		return store.PreferenceScope{}, errors.New("resourceId, ownerId and key are required")
	}
	return store.PreferenceScope{ResourceType: rt, ResourceID: p.ResourceID, OwnerID: p.OwnerID, Level: level}, nil
}

// ParseError points at the bundle entry that failed validation.
type ParseError struct {
	Section string
	Index   int
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s[%d]: %v", e.Section, e.Index, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse decodes and validates a bundle. Unknown fields are rejected.
func Parse(r io.Reader) (*Bundle, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	b := &Bundle{}
	if err := dec.Decode(b); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("bundle is empty")
		}
		return nil, fmt.Errorf("failed to parse bundle: %w", err)
	}
	if err := b.normalize(); err != nil {
		return nil, err
	}
	return b, nil
}

// ParseString is Parse over a string.
func ParseString(s string) (*Bundle, error) {
	return Parse(strings.NewReader(s))
}

// normalize fills defaults from the gateway and validates every entry.
func (b *Bundle) normalize() error {
	b.Gateway = strings.TrimSpace(b.Gateway)
	if b.Gateway == "" {
		return apierr.Validation("gateway")
	}

	for i, r := range b.Resources {
		if _, err := preference.ParseResourceType(r.Type); err != nil {
			return &ParseError{"resources", i, fmt.Errorf("unknown type %q", r.Type)}
		}
		if r.ID == "" {
			return &ParseError{"resources", i, errors.New("id is required")}
		}
	}

	for i, g := range b.Groups {
		if g.ID == "" {
			return &ParseError{"groups", i, errors.New("id is required")}
		}
		for _, m := range g.Members {
			if _, gw := identity.SplitUserID(m); gw != "" && gw != b.Gateway {
				return &ParseError{"groups", i, fmt.Errorf("member %s belongs to gateway %s", m, gw)}
			}
		}
	}

	for i := range b.Credentials {
		c := &b.Credentials[i]
		if c.OwnerType == "" {
			c.OwnerType = preference.LevelGateway.String()
		}
		if c.OwnerID == "" && strings.EqualFold(c.OwnerType, preference.LevelGateway.String()) {
			c.OwnerID = b.Gateway
		}
		if _, err := c.credential(b.Gateway); err != nil {
			return &ParseError{"credentials", i, err}
		}
	}

	for i, p := range b.Preferences {
		if _, err := p.Scope(); err != nil {
			return &ParseError{"preferences", i, err}
		}
	}

	for i := range b.Grants {
		g := &b.Grants[i]
		if g.GatewayID == "" {
			g.GatewayID = b.Gateway
		}
		if _, err := g.Validate(); err != nil {
			return &ParseError{"grants", i, err}
		}
	}
	return nil
}

func (c Credential) credential(gatewayID string) (*store.Credential, error) {
	ownerType, err := preference.ParseLevel(c.OwnerType)
	if err != nil || ownerType == preference.LevelGroup {
		return nil, fmt.Errorf("ownerType must be USER or GATEWAY, got %q", c.OwnerType)
	}
	if c.OwnerID == "" || c.Name == "" {
		return nil, errors.New("ownerId and name are required")
	}
	typ := store.CredentialType(strings.ToUpper(c.Type))
	if typ != store.CredentialTypeSSH && typ != store.CredentialTypePassword {
		return nil, fmt.Errorf("type must be SSH or PASSWORD, got %q", c.Type)
	}
	return &store.Credential{
		Token:       c.Token,
		GatewayID:   gatewayID,
		OwnerID:     c.OwnerID,
		OwnerType:   ownerType,
		Name:        c.Name,
		Username:    c.Username,
		Type:        typ,
		Description: c.Description,
	}, nil
}
