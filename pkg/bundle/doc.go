// Package bundle reads YAML bundles describing the configuration of one
// gateway and applies them to the stores.
//
// A bundle can seed the resource catalog, group memberships, credentials,
// preferences and access grants:
//
//	gateway: gw1
//	resources:
//	  - {type: COMPUTE, id: res1, name: Cluster One}
//	groups:
//	  - {id: admins, members: [alice@gw1]}
//	credentials:
//	  - {token: tok-A, name: service key, type: SSH, username: svc}
//	preferences:
//	  - {resourceType: COMPUTE, resourceId: res1, level: GATEWAY, ownerId: gw1, key: maxWallTime, value: "60", enforced: true}
//	grants:
//	  - {resourceType: COMPUTE, resourceId: res1, ownerType: GATEWAY, ownerId: gw1, credentialToken: tok-A, loginUsername: svc}
//
// Applying a bundle is additive. Records already present are overwritten
// (preferences, catalog entries), updated in place (grants) or left alone
// (credentials, memberships). Nothing is deleted.
package bundle
