// Package endpoints implements the REST handlers of the gateway admin API.
//
// Handlers are built by factories that take only the stores and services
// they need, so tests can drive them with mocks:
//
//	s.Router.HandleFunc("/preferences", handleSetPreference(prefs, strict)).Methods("POST")
//
// Errors are answered with the apierr envelope:
//
//	{"error": {"code": "validation_error", "message": "..."}, "message": "..."}
//
// Every preference, grant and credential mutation writes an audit event.
package endpoints
