package notifyapi

import (
	"errors"
	"fmt"
)

// ErrAuthRequired is returned before any network I/O when the session holds
// no token.
var ErrAuthRequired = errors.New("authentication required")

// TransportError covers every failed exchange with the notification API:
// network failures and any non-success response alike.
type TransportError struct {
	Method string
	Path   string

	// StatusCode is 0 when no response was received.
	StatusCode int

	// Message is the API's error payload when one was decodable, otherwise
	// a generic description.
	Message string

	Err error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Message)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransportError reports whether err (or any error in its chain) is a
// TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// errorResponse is the error body shape returned by the API. Either field
// may be set depending on the endpoint.
type errorResponse struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

func (r errorResponse) message() string {
	if r.Detail != "" {
		return r.Detail
	}
	return r.Error
}
