package bundle

import (
	"context"
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/doodlesbykumbi/gateway-admin/pkg/access"
	"github.com/doodlesbykumbi/gateway-admin/pkg/apierr"
	"github.com/doodlesbykumbi/gateway-admin/pkg/audit"
	"github.com/doodlesbykumbi/gateway-admin/pkg/preference"
	"github.com/doodlesbykumbi/gateway-admin/pkg/server/store"
)

// Stores are the stores a bundle writes to.
type Stores struct {
	Preferences store.PreferencesStore
	Grants      store.AccessGrantsStore
	Credentials store.CredentialsStore
	Catalog     store.CatalogStore
	Groups      store.GroupsStore
}

// Result counts what a bundle changed.
type Result struct {
	Resources          int `json:"resources"`
	Members            int `json:"members"`
	Credentials        int `json:"credentials"`
	CredentialsSkipped int `json:"credentialsSkipped"`
	Preferences        int `json:"preferences"`
	GrantsCreated      int `json:"grantsCreated"`
	GrantsUpdated      int `json:"grantsUpdated"`
}

// Loader applies bundles.
type Loader struct {
	stores     Stores
	registry   *access.Registry
	userID     string // who is loading, for audit
	path       string // where the bundle came from, for audit
	strictKeys bool
	dryRun     bool
}

// NewLoader creates a Loader over stores.
func NewLoader(stores Stores) *Loader {
	return &Loader{
		stores:   stores,
		registry: access.NewRegistry(stores.Grants, stores.Credentials),
		userID:   "system",
	}
}

// WithUserID sets the user recorded in the audit trail.
func (l *Loader) WithUserID(userID string) *Loader {
	l.userID = userID
	return l
}

// WithPath sets the bundle location recorded in the audit trail.
func (l *Loader) WithPath(path string) *Loader {
	l.path = path
	return l
}

// WithStrictKeys rejects preference keys outside the known key sets.
func (l *Loader) WithStrictKeys(strict bool) *Loader {
	l.strictKeys = strict
	return l
}

// WithDryRun validates only.
func (l *Loader) WithDryRun(dryRun bool) *Loader {
	l.dryRun = dryRun
	return l
}

// LoadFromReader parses and applies a bundle.
func (l *Loader) LoadFromReader(ctx context.Context, r io.Reader) (*Result, error) {
	b, err := Parse(r)
	if err != nil {
		l.audit(nil, &Result{}, err)
		return nil, err
	}
	return l.Apply(ctx, b)
}

// Apply writes b to the stores. Sections are applied in dependency order:
// catalog, memberships, credentials, preferences, then grants. On error the
// Result reflects what was written before it. b is validated first, so a
// Bundle built in code gets the same checks as a parsed one.
func (l *Loader) Apply(ctx context.Context, b *Bundle) (*Result, error) {
	result := &Result{}
	err := b.normalize()
	if err == nil {
		err = l.apply(ctx, b, result)
	}
	l.audit(b, result, err)
	return result, err
}

// Apply applies b with a default Loader.
func Apply(ctx context.Context, stores Stores, b *Bundle) (*Result, error) {
	return NewLoader(stores).Apply(ctx, b)
}

func (l *Loader) apply(ctx context.Context, b *Bundle, result *Result) error {
	if l.strictKeys {
		for i, p := range b.Preferences {
			scope, err := p.Scope()
			if err == nil {
				err = preference.ValidateKey(scope.ResourceType, p.Key)
			}
			if err != nil {
				return &ParseError{"preferences", i, err}
			}
		}
	}
	if l.dryRun {
		log.WithField("gateway", b.Gateway).Info("bundle is valid (dry run)")
		return nil
	}

	for _, r := range b.Resources {
		rt, err := preference.ParseResourceType(r.Type)
		if err != nil {
			return fmt.Errorf("resource %s %s: %w", r.Type, r.ID, err)
		}
		if err := l.stores.Catalog.UpsertResource(ctx, store.CatalogResource{
			ResourceType: rt,
			ResourceID:   r.ID,
			GatewayID:    b.Gateway,
			Name:         r.Name,
		}); err != nil {
			return fmt.Errorf("resource %s %s: %w", r.Type, r.ID, err)
		}
		result.Resources++
	}

	for _, g := range b.Groups {
		for _, m := range g.Members {
			if err := l.stores.Groups.AddMember(ctx, b.Gateway, g.ID, m); err != nil {
				return fmt.Errorf("group %s member %s: %w", g.ID, m, err)
			}
			result.Members++
		}
	}

	for _, c := range b.Credentials {
		cred, err := c.credential(b.Gateway)
		if err != nil {
			return fmt.Errorf("credential %s: %w", c.Name, err)
		}
		err = l.stores.Credentials.CreateCredential(ctx, cred, []byte(c.Secret))
		switch {
		case errors.Is(err, store.ErrCredentialExists):
			log.WithField("token", c.Token).Debug("credential already exists, leaving it unchanged")
			result.CredentialsSkipped++
		case err != nil:
			return fmt.Errorf("credential %s: %w", c.Name, err)
		default:
			result.Credentials++
		}
	}

	for _, p := range b.Preferences {
		scope, err := p.Scope()
		if err != nil {
			return fmt.Errorf("preference %s at %s %s: %w", p.Key, p.Level, p.OwnerID, err)
		}
		if err := l.stores.Preferences.SetPreference(ctx, scope, p.Key, p.Value, p.Enforced); err != nil {
			return fmt.Errorf("preference %s at %s %s: %w", p.Key, p.Level, p.OwnerID, err)
		}
		result.Preferences++
	}

	for _, req := range b.Grants {
		created, err := l.applyGrant(ctx, req)
		if err != nil {
			return fmt.Errorf("grant for %s %s on %s %s: %w", req.OwnerType, req.OwnerID, req.ResourceType, req.ResourceID, err)
		}
		if created {
			result.GrantsCreated++
		} else {
			result.GrantsUpdated++
		}
	}
	return nil
}

// applyGrant creates the grant, or updates the existing grant of the same
// owner on the same resource.
func (l *Loader) applyGrant(ctx context.Context, req access.AccessGrantRequest) (bool, error) {
	_, err := l.registry.CreateAccessGrant(ctx, req)
	var conflict *apierr.ConflictError
	if !errors.As(err, &conflict) {
		return err == nil, err
	}

	want, err := req.Validate()
	if err != nil {
		return false, err
	}
	existing, err := l.stores.Grants.ListAccessGrants(ctx, store.AccessGrantFilter{
		ResourceType: &want.ResourceType,
		ResourceID:   want.ResourceID,
		Owners:       []store.GrantOwner{{OwnerID: want.OwnerID, OwnerType: want.OwnerType}},
	})
	if err != nil {
		return false, err
	}
	if len(existing) == 0 {
		return false, conflict
	}

	_, err = l.registry.UpdateAccessGrant(ctx, existing[0].ID, store.AccessGrantPatch{
		Enabled:         &want.Enabled,
		CredentialToken: &want.CredentialToken,
		LoginUsername:   &want.LoginUsername,
	})
	return false, err
}

func (l *Loader) audit(b *Bundle, result *Result, err error) {
	event := audit.BundleEvent{
		UserID:      l.userID,
		Path:        l.path,
		Preferences: result.Preferences,
		Grants:      result.GrantsCreated + result.GrantsUpdated,
		Success:     err == nil,
	}
	if b != nil {
		event.Gateway = b.Gateway
	}
	if err != nil {
		event.ErrorMessage = err.Error()
	}
	audit.Log(event)
}
