// Package apierr defines the error taxonomy shared by the server and the
// REST client.
//
//   - ValidationError: a required field is missing or malformed (400). Never retried.
//   - NotFoundError: the addressed grant or credential does not exist (404).
//   - ConflictError: the request contradicts existing state (409), e.g. a
//     duplicate grant or deleting a credential that grants still reference.
//   - TransientError: network failures, 5xx and 429. Safe to retry for
//     idempotent verbs only.
//   - AuthorizationError: the caller is not authenticated (401). Propagated
//     unchanged so the caller can re-authenticate.
//
// [ExtractMessage] pulls a human readable message out of an error payload,
// looking at message, error, errorMessage and errors[] in that order.
package apierr
