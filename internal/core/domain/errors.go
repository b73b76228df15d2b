package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRole         = errors.New("invalid role")
	ErrInvalidIdentity     = errors.New("invalid identity")
	ErrCredentialsRejected = errors.New("credentials rejected")
	ErrBackendUnavailable  = errors.New("backend unavailable")
	ErrUnexpectedResponse  = errors.New("unexpected backend response")
	ErrSessionInvalidated  = errors.New("session invalidated")
	ErrForbidden           = errors.New("access forbidden")
	ErrNotFound            = errors.New("not found")
	ErrDeleteNotConfirmed  = errors.New("delete not confirmed")
	ErrOperationNotAllowed = errors.New("operation not allowed")
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrDuplicateUsername   = errors.New("username already taken")
)

// ErrorKind classifies a failure of a session operation.
type ErrorKind int

const (
	// KindRejected: the backend answered and refused the request.
	KindRejected ErrorKind = iota + 1
	// KindTransport: the backend could not be reached.
	KindTransport
	// KindProtocol: the backend answered with something we cannot interpret.
	KindProtocol
)

func (k ErrorKind) String() string {
	switch k {
	case KindRejected:
		return "rejected"
	case KindTransport:
		return "transport"
	case KindProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// AuthError is returned by the session client. Message is safe to show to the
// operator; Err carries the underlying cause.
type AuthError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the cause, falling back to the sentinel matching Kind so that
// errors.Is works without inspecting the struct.
func (e *AuthError) Unwrap() []error {
	errs := make([]error, 0, 2)
	switch e.Kind {
	case KindRejected:
		errs = append(errs, ErrCredentialsRejected)
	case KindTransport:
		errs = append(errs, ErrBackendUnavailable)
	case KindProtocol:
		errs = append(errs, ErrUnexpectedResponse)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// UpstreamError is a non-2xx answer from a resource endpoint that is not an
// authorization failure.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Message)
}
