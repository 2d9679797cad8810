// Package identity carries the authenticated caller through a request.
//
// The JWT middleware verifies the bearer token, builds an Identity from its
// claims and stores it in the request context:
//
//	id := identity.FromClaims(claims).WithRemoteIP(clientIP)
//	ctx = identity.Set(ctx, id)
//
//	// later, in a handler
//	id, ok := identity.Get(r.Context())
//
// User ids have the form "login@gateway".
package identity
