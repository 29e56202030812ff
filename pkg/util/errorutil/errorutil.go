package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the closed set of failure categories produced by the store, the
// auth gateway and the domain services.
type Kind string

const (
	KindNotFound          Kind = "NOT_FOUND"
	KindUnavailable       Kind = "UNAVAILABLE"
	KindPermissionDenied  Kind = "PERMISSION_DENIED"
	KindValidationFailure Kind = "VALIDATION_FAILED"
	KindUnauthenticated   Kind = "UNAUTHENTICATED"
	KindConflict          Kind = "CONFLICT"
	KindUnknown           Kind = "UNKNOWN"
)

// Stable machine codes carried next to a Kind.
const (
	CodeNotFound          = "not-found"
	CodeUnavailable       = "unavailable"
	CodePermissionDenied  = "permission-denied"
	CodeInvalidArgument   = "invalid-argument"
	CodeUnauthenticated   = "unauthenticated"
	CodeWrongPassword     = "wrong-password"
	CodeWeakPassword      = "weak-password"
	CodeEmailInUse        = "email-already-in-use"
	CodeUserNotFound      = "user-not-found"
	CodeInvalidEmail      = "invalid-email"
	CodeTooManyRequests   = "too-many-requests"
	CodeInvalidTransition = "invalid-transition"
	CodeTicketClosed      = "ticket-closed"
	CodeInternal          = "internal"
)

// DomainError standardizes application errors.
type DomainError struct {
	Kind       Kind
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches another DomainError by kind and code, so sentinel-style checks
// with errors.Is work against freshly built errors.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	if t.Code != "" && t.Code != e.Code {
		return false
	}
	return t.Kind == e.Kind
}

// NewDomainError constructs a DomainError.
func NewDomainError(kind Kind, code, message string, details map[string]any) *DomainError {
	return &DomainError{Kind: kind, Code: code, Message: message, HTTPStatus: statusFor(kind), Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(KindValidationFailure, CodeInvalidArgument, message, details)
}

func NewValidationCode(code, message string) error {
	return NewDomainError(KindValidationFailure, code, message, nil)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Kind:       KindNotFound,
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnavailable(err error) error {
	return &DomainError{
		Kind:       KindUnavailable,
		Code:       CodeUnavailable,
		Message:    "service unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(KindUnauthenticated, CodeUnauthenticated, message, nil)
}

func NewAuthError(code, message string) error {
	return NewDomainError(KindUnauthenticated, code, message, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(KindPermissionDenied, CodePermissionDenied, message, nil)
}

func NewConflict(code, message string) error {
	return NewDomainError(KindConflict, code, message, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Kind:       KindUnknown,
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var de *DomainError
	errors.As(NewInternalError(err), &de)
	return de
}

// MapError is ToDomainError typed as error for return statements.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}

// KindOf reports the kind of err; nil yields the empty kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return ToDomainError(err).Kind
}

// CodeOf reports the machine code of err.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	return ToDomainError(err).Code
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// UserMessage maps every kind to the text shown to end users.
func UserMessage(kind Kind) string {
	switch kind {
	case KindNotFound:
		return "The requested item could not be found."
	case KindUnavailable:
		return "The service is temporarily unavailable. Please try again."
	case KindPermissionDenied:
		return "You do not have permission to perform this action."
	case KindValidationFailure:
		return "Some of the submitted information is invalid."
	case KindUnauthenticated:
		return "Please sign in to continue."
	case KindConflict:
		return "This item already exists."
	default:
		return "Something went wrong. Please try again."
	}
}

func statusFor(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindUnavailable:
		return http.StatusServiceUnavailable
	case KindPermissionDenied:
		return http.StatusForbidden
	case KindValidationFailure:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
