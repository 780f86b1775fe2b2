package faults

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind names one expected failure condition. The set is closed; callers
// switch on kinds instead of matching error strings.
type Kind string

const (
	MissingHeader     Kind = "missing_header"
	MalformedHeader   Kind = "malformed_header"
	SignatureInvalid  Kind = "signature_invalid"
	Malformed         Kind = "malformed_token"
	Expired           Kind = "token_expired"
	IssueFailure      Kind = "issue_failure"
	RoleDenied        Kind = "role_denied"
	PermissionDenied  Kind = "permission_denied"
	PostNotFound      Kind = "post_not_found"
	UserNotFound      Kind = "user_not_found"
	SelfFollow        Kind = "self_follow"
	SelfUnfollow      Kind = "self_unfollow"
	AlreadyFollowing  Kind = "already_following"
	NotFollowing      Kind = "not_following"
	InvalidPagination Kind = "invalid_pagination"
	EmptyContent      Kind = "empty_content"
	ContentTooLong    Kind = "content_too_long"
	Timeout           Kind = "timeout"
	Internal          Kind = "internal"
)

// Fault is the error type returned by every core operation for an expected
// condition. RequiredRoles/ActualRole are populated for RoleDenied only.
type Fault struct {
	Kind          Kind
	Message       string
	RequiredRoles []string
	ActualRole    string

	cause error
}

func (f *Fault) Error() string {
	if f.cause != nil {
		return fmt.Sprintf("%s: %v", f.Message, f.cause)
	}
	return f.Message
}

func (f *Fault) Unwrap() error {
	return f.cause
}

// New creates a Fault of the given kind.
func New(kind Kind, message string) *Fault {
	return &Fault{Kind: kind, Message: message}
}

// Newf creates a Fault with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Fault {
	return &Fault{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a Fault of the given kind that preserves its cause.
func Wrap(kind Kind, message string, err error) *Fault {
	return &Fault{Kind: kind, Message: message, cause: err}
}

// WrapInternal converts an unexpected backend error into an Internal fault,
// preserving the cause for logging. A Fault passes through unchanged.
func WrapInternal(err error) *Fault {
	var f *Fault
	if errors.As(err, &f) {
		return f
	}
	return &Fault{Kind: Internal, Message: "internal error", cause: err}
}

// RoleDeniedError builds a RoleDenied fault carrying the role diagnostics.
func RoleDeniedError(required []string, actual string) *Fault {
	return &Fault{
		Kind:          RoleDenied,
		Message:       fmt.Sprintf("role %q is not permitted for this operation", actual),
		RequiredRoles: required,
		ActualRole:    actual,
	}
}

// As unwraps err into a Fault if it carries one.
func As(err error) (*Fault, bool) {
	var f *Fault
	ok := errors.As(err, &f)
	return f, ok
}

// IsKind reports whether err is a Fault of the given kind.
func IsKind(err error, kind Kind) bool {
	f, ok := As(err)
	return ok && f.Kind == kind
}

var statusByKind = map[Kind]int{
	MissingHeader:     http.StatusUnauthorized,
	MalformedHeader:   http.StatusUnauthorized,
	SignatureInvalid:  http.StatusUnauthorized,
	Malformed:         http.StatusUnauthorized,
	Expired:           http.StatusUnauthorized,
	RoleDenied:        http.StatusForbidden,
	PermissionDenied:  http.StatusForbidden,
	PostNotFound:      http.StatusNotFound,
	UserNotFound:      http.StatusNotFound,
	SelfFollow:        http.StatusBadRequest,
	SelfUnfollow:      http.StatusBadRequest,
	AlreadyFollowing:  http.StatusBadRequest,
	NotFollowing:      http.StatusBadRequest,
	InvalidPagination: http.StatusBadRequest,
	EmptyContent:      http.StatusBadRequest,
	ContentTooLong:    http.StatusBadRequest,
	Timeout:           http.StatusGatewayTimeout,
	IssueFailure:      http.StatusInternalServerError,
	Internal:          http.StatusInternalServerError,
}

// HTTPStatus maps the fault kind to the HTTP status surfaced by the
// transport layer. Unknown kinds map to 500.
func (f *Fault) HTTPStatus() int {
	if status, ok := statusByKind[f.Kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// HTTPStatus maps any error to a status; non-Fault errors are 500.
func HTTPStatus(err error) int {
	if f, ok := As(err); ok {
		return f.HTTPStatus()
	}
	return http.StatusInternalServerError
}
