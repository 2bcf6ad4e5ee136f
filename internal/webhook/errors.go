package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Fetch stages reported in FetchError.Op.
const (
	OpRequest = "request"
	OpRead    = "read"
	OpStatus  = "status"
	OpSize    = "size"
)

// ErrBodyTooLarge reports a webhook reply over the configured size cap.
var ErrBodyTooLarge = errors.New("response body exceeds size limit")

// FetchError is the typed failure of a webhook call.
type FetchError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("webhook %s failed (status %d): %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("webhook %s failed: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Retryable reports whether the failure is network-class: transport and body
// read errors, 429 and 5xx responses. Oversized replies are not retried. Caller cancellation is never retried.
func (e *FetchError) Retryable() bool {
	if errors.Is(e.Err, context.Canceled) {
		return false
	}
	switch e.Op {
	case OpRequest, OpRead:
		return true
	case OpStatus:
		return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
	}
	return false
}

// IsFetchError reports whether err carries a FetchError and returns it.
func IsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
