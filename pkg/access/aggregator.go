package access

import (
	"context"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/doodlesbykumbi/gateway-admin/pkg/apierr"
	"github.com/doodlesbykumbi/gateway-admin/pkg/preference"
	"github.com/doodlesbykumbi/gateway-admin/pkg/server/store"
)

type Ownership string

const (
	Owned     Ownership = "OWNED"
	Inherited Ownership = "INHERITED"
)

// ResourceBinding is one resource a credential is bound to through an
// enabled grant.
type ResourceBinding struct {
	ResourceID    string `json:"resourceId"`
	ResourceName  string `json:"resourceName,omitempty"`
	LoginUsername string `json:"loginUsername,omitempty"`
}

// CredentialAccess is one reachable credential in the access control view.
type CredentialAccess struct {
	Token            string               `json:"token"`
	Name             string               `json:"name"`
	Username         string               `json:"username,omitempty"`
	Type             store.CredentialType `json:"type,omitempty"`
	Description      string               `json:"description,omitempty"`
	Ownership        Ownership            `json:"ownership"`
	Source           preference.Level     `json:"source"`
	ComputeResources []ResourceBinding    `json:"computeResources"`
	StorageResources []ResourceBinding    `json:"storageResources"`
}

// AccessControl is the merged view returned by GetAccessControl.
type AccessControl struct {
	Credentials []CredentialAccess `json:"credentials"`
}

// Aggregator builds access control views. catalog may be nil, in which case
// bindings carry no resource names.
type Aggregator struct {
	grants      store.AccessGrantsStore
	credentials store.CredentialsStore
	groups      store.GroupsStore
	catalog     store.CatalogStore
}

func NewAggregator(grants store.AccessGrantsStore, credentials store.CredentialsStore, groups store.GroupsStore, catalog store.CatalogStore) *Aggregator {
	return &Aggregator{
		grants:      grants,
		credentials: credentials,
		groups:      groups,
		catalog:     catalog,
	}
}

type bindingKey struct {
	resourceType preference.ResourceType
	resourceID   string
}

type reach struct {
	owned    bool
	viaGroup bool
	bindings map[bindingKey]store.AccessGrant
}

// GetAccessControl returns every credential userID can reach in gatewayID.
// An empty userID yields the gateway view: gateway-level grants only.
func (a *Aggregator) GetAccessControl(ctx context.Context, gatewayID, userID string) (*AccessControl, error) {
	if gatewayID == "" {
		return nil, apierr.Validation("gatewayId")
	}

	owners := []store.GrantOwner{{OwnerID: gatewayID, OwnerType: preference.LevelGateway}}
	var owned []store.Credential
	if userID != "" {
		groupIDs, err := a.groups.GroupsForUser(ctx, gatewayID, userID)
		if err != nil {
			return nil, err
		}
		for _, g := range groupIDs {
			owners = append(owners, store.GrantOwner{OwnerID: g, OwnerType: preference.LevelGroup})
		}
		owners = append(owners, store.GrantOwner{OwnerID: userID, OwnerType: preference.LevelUser})

		owned, err = a.credentials.ListUserCredentials(ctx, gatewayID, userID)
		if err != nil {
			return nil, err
		}
	}

	grants, err := a.grants.ListAccessGrants(ctx, store.AccessGrantFilter{
		GatewayID:   gatewayID,
		Owners:      owners,
		EnabledOnly: true,
	})
	if err != nil {
		return nil, err
	}

	reachable := map[string]*reach{}
	var order []string
	touch := func(token string) *reach {
		r, ok := reachable[token]
		if !ok {
			r = &reach{bindings: map[bindingKey]store.AccessGrant{}}
			reachable[token] = r
			order = append(order, token)
		}
		return r
	}

	for _, c := range owned {
		touch(c.Token).owned = true
	}
	for _, g := range grants {
		switch g.OwnerType {
		case preference.LevelGroup:
			touch(g.CredentialToken).viaGroup = true
		case preference.LevelGateway:
			touch(g.CredentialToken)
		}
	}

	// Bind in a second pass so user-level grants bind reachable credentials
	// without making others reachable.
	for _, g := range grants {
		r, ok := reachable[g.CredentialToken]
		if !ok {
			continue
		}
		key := bindingKey{resourceType: g.ResourceType, resourceID: g.ResourceID}
		if prev, ok := r.bindings[key]; !ok || g.OwnerType.MoreSpecificThan(prev.OwnerType) {
			r.bindings[key] = g
		}
	}

	meta, err := a.credentialMetadata(ctx, order, owned)
	if err != nil {
		return nil, err
	}
	names, err := a.resourceNames(ctx, reachable)
	if err != nil {
		return nil, err
	}

	out := &AccessControl{Credentials: make([]CredentialAccess, 0, len(order))}
	for _, token := range order {
		r := reachable[token]
		entry := CredentialAccess{
			Token:            token,
			ComputeResources: []ResourceBinding{},
			StorageResources: []ResourceBinding{},
		}
		if c, ok := meta[token]; ok {
			entry.Name = c.Name
			entry.Username = c.Username
			entry.Type = c.Type
			entry.Description = c.Description
		} else {
			log.WithField("token", token).Warn("access grant references a credential missing from the catalog")
		}

		switch {
		case r.owned:
			entry.Ownership, entry.Source = Owned, preference.LevelUser
		case r.viaGroup:
			entry.Ownership, entry.Source = Inherited, preference.LevelGroup
		default:
			entry.Ownership, entry.Source = Inherited, preference.LevelGateway
		}

		for key, g := range r.bindings {
			b := ResourceBinding{
				ResourceID:    key.resourceID,
				ResourceName:  names[key.resourceType][key.resourceID],
				LoginUsername: g.LoginUsername,
			}
			if key.resourceType == preference.ResourceTypeStorage {
				entry.StorageResources = append(entry.StorageResources, b)
			} else {
				entry.ComputeResources = append(entry.ComputeResources, b)
			}
		}
		sortBindings(entry.ComputeResources)
		sortBindings(entry.StorageResources)

		out.Credentials = append(out.Credentials, entry)
	}

	sort.SliceStable(out.Credentials, func(i, j int) bool {
		x, y := out.Credentials[i], out.Credentials[j]
		if (x.Ownership == Owned) != (y.Ownership == Owned) {
			return x.Ownership == Owned
		}
		if x.Name != y.Name {
			return x.Name < y.Name
		}
		return x.Token < y.Token
	})
	return out, nil
}

func (a *Aggregator) credentialMetadata(ctx context.Context, tokens []string, owned []store.Credential) (map[string]store.Credential, error) {
	meta := make(map[string]store.Credential, len(tokens))
	for _, c := range owned {
		meta[c.Token] = c
	}
	var missing []string
	for _, t := range tokens {
		if _, ok := meta[t]; !ok {
			missing = append(missing, t)
		}
	}
	if len(missing) == 0 {
		return meta, nil
	}
	creds, err := a.credentials.GetCredentials(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, c := range creds {
		meta[c.Token] = c
	}
	return meta, nil
}

func (a *Aggregator) resourceNames(ctx context.Context, reachable map[string]*reach) (map[preference.ResourceType]map[string]string, error) {
	names := map[preference.ResourceType]map[string]string{}
	if a.catalog == nil {
		return names, nil
	}
	ids := map[preference.ResourceType][]string{}
	seen := map[bindingKey]bool{}
	for _, r := range reachable {
		for key := range r.bindings {
			if !seen[key] {
				seen[key] = true
				ids[key.resourceType] = append(ids[key.resourceType], key.resourceID)
			}
		}
	}
	for rt, list := range ids {
		sort.Strings(list)
		m, err := a.catalog.ResourceNames(ctx, rt, list)
		if err != nil {
			return nil, err
		}
		names[rt] = m
	}
	return names, nil
}

func sortBindings(b []ResourceBinding) {
	sort.Slice(b, func(i, j int) bool { return b[i].ResourceID < b[j].ResourceID })
}
