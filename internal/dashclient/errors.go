package dashclient

import (
	"errors"
	"fmt"
)

var (
	// ErrHTTPStatus indicates a non-2xx response.
	ErrHTTPStatus = errors.New("unexpected HTTP status")
	// ErrTransport indicates the request never completed.
	ErrTransport = errors.New("transport failure")
	// ErrDecode indicates a malformed response body.
	ErrDecode = errors.New("malformed payload")
	// ErrRejected indicates the backend refused a security decision.
	ErrRejected = errors.New("decision rejected")
)

// StatusError carries the endpoint and status code of a non-2xx response.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s returned status %d: %s", ErrHTTPStatus, e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s returned status %d", ErrHTTPStatus, e.Endpoint, e.StatusCode)
}

// Unwrap makes errors.Is(err, ErrHTTPStatus) hold.
func (e *StatusError) Unwrap() error {
	return ErrHTTPStatus
}

// Kind names the failure class of err for logs: "status", "transport",
// "decode", "rejected" or "other".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrHTTPStatus):
		return "status"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrRejected):
		return "rejected"
	default:
		return "other"
	}
}
