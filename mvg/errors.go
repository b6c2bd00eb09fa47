package mvg

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a query that matched nothing upstream. Callers test
// for it with errors.Is.
var ErrNotFound = errors.New("not found")

// UsageError is invalid user input, such as an unknown transport type
// alias. It never reaches the network.
type UsageError struct{ Msg string }

func (e *UsageError) Error() string { return e.Msg }

// NetworkError is a transport-level failure: connection refused, DNS,
// timeout.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error calling %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UpstreamError is a non-success HTTP status, or a 2xx payload that does
// not decode against the documented schema (Err set, Status zero).
type UpstreamError struct {
	Status int
	URL    string
	Body   string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unexpected payload from %s: %v", e.URL, e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d from %s: %s", e.Status, e.URL, e.Body)
	}
	return fmt.Sprintf("HTTP %d from %s", e.Status, e.URL)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
