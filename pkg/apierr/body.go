package apierr

import "net/http"

// Body is the JSON envelope of every error response. Message repeats
// Error.Message at the top level for clients that only read "message".
type Body struct {
	Error   Detail `json:"error"`
	Message string `json:"message"`
}

// Detail carries the error code and message.
type Detail struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// NewBody builds the response envelope for err. Internal errors are
// reported with a generic message; their text stays in the server log.
func NewBody(err error) Body {
	msg := err.Error()
	if StatusCode(err) == http.StatusInternalServerError {
		msg = http.StatusText(http.StatusInternalServerError)
	}
	return Body{
		Error:   Detail{Code: CodeOf(err), Message: msg},
		Message: msg,
	}
}
