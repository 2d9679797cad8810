// Package middleware holds the HTTP middleware of the admin API: bearer
// token authentication and per-route prometheus metrics.
package middleware
