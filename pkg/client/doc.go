// Package client is a Go client for the gateway admin REST API.
//
//	c, err := client.New("http://localhost:8080", client.WithToken(token))
//	prefs, err := c.Resolve(ctx, resolver.Query{
//	    ResourceType: preference.ResourceTypeCompute,
//	    ResourceID:   "res1",
//	    GatewayID:    "gw1",
//	    UserID:       "alice@gw1",
//	})
//
// GET, PUT and DELETE are retried with exponential backoff when they fail
// with a network error, a 5xx or a 429. POST is never retried. Errors are
// values of the apierr taxonomy; a 401 surfaces as *apierr.AuthorizationError.
package client
