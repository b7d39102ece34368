package traffic

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind is the closed set of failure classes a tick can end with
type ErrorKind int

const (
	// KindUnreachable covers connection failures and fetch timeouts
	KindUnreachable ErrorKind = iota
	// KindBadStatus is a non-2xx response
	KindBadStatus
	// KindProviderError is an application error reported inside a 2xx payload
	KindProviderError
	// KindMalformedPayload is a payload missing required structure
	KindMalformedPayload
	// KindNoRouteFound is an empty candidate set
	KindNoRouteFound
	// KindRouteMismatch means the preferred route was absent; the first candidate was used
	KindRouteMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindBadStatus:
		return "bad_status"
	case KindProviderError:
		return "provider_error"
	case KindMalformedPayload:
		return "malformed_payload"
	case KindNoRouteFound:
		return "no_route_found"
	case KindRouteMismatch:
		return "route_mismatch"
	default:
		return "unknown"
	}
}

// FetchError describes why a sample could not be acquired
type FetchError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindBadStatus:
		return fmt.Sprintf("%s: unexpected status code %d", e.Kind, e.StatusCode)
	case KindProviderError:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	if e.Err != nil {
		if e.Message != "" {
			return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return e.Kind.String()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// CountsAsFailure reports whether the error increments the retry counter.
// A route mismatch degrades to the first candidate and is only a warning.
func (e *FetchError) CountsAsFailure() bool {
	return e.Kind != KindRouteMismatch
}

func Unreachable(err error) *FetchError {
	return &FetchError{Kind: KindUnreachable, Err: err}
}

func BadStatus(code int) *FetchError {
	return &FetchError{Kind: KindBadStatus, StatusCode: code}
}

func ProviderFailure(message string) *FetchError {
	return &FetchError{Kind: KindProviderError, Message: message}
}

func Malformed(message string, err error) *FetchError {
	return &FetchError{Kind: KindMalformedPayload, Message: message, Err: err}
}

func NoRouteFound(message string) *FetchError {
	return &FetchError{Kind: KindNoRouteFound, Message: message}
}

func RouteMismatch(preferred []string) *FetchError {
	return &FetchError{Kind: KindRouteMismatch, Message: fmt.Sprintf("preferred route %q not offered, using first candidate", preferred)}
}

// ClassifyError maps an error returned by a provider onto the taxonomy.
// Timeouts become KindUnreachable; anything outside the taxonomy is
// reported with ok=false so the caller can treat it as a defect.
func ClassifyError(err error) (fe *FetchError, ok bool) {
	if err == nil {
		return nil, false
	}
	if errors.As(err, &fe) {
		return fe, true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Unreachable(err), true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Unreachable(err), true
	}
	return nil, false
}
