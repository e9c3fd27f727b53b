package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so the HTTP boundary can pick a status code.
type Kind int

const (
	Internal Kind = iota
	Unauthenticated
	InvalidCredentials
	Forbidden
	InvalidArgument
	Conflict
	NotFound
	Unavailable
)

func (k Kind) String() string {
	switch k {
	case Unauthenticated:
		return "unauthenticated"
	case InvalidCredentials:
		return "invalid_credentials"
	case Forbidden:
		return "forbidden"
	case InvalidArgument:
		return "invalid_argument"
	case Conflict:
		return "conflict"
	case NotFound:
		return "not_found"
	case Unavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case Unauthenticated, InvalidCredentials:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case InvalidArgument:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	case NotFound:
		return http.StatusNotFound
	case Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain failure. Msg is safe to show to the client; Err is the
// underlying cause and is only logged.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func NewUnauthenticated(msg string) *Error {
	return New(Unauthenticated, msg)
}

func NewInvalidCredentials() *Error {
	return New(InvalidCredentials, "Invalid email or password")
}

func NewForbidden(msg string) *Error {
	return New(Forbidden, msg)
}

func NewInvalidArgument(msg string) *Error {
	return New(InvalidArgument, msg)
}

func NewConflict(msg string) *Error {
	return New(Conflict, msg)
}

func NewNotFound(msg string) *Error {
	return New(NotFound, msg)
}

func NewUnavailable(msg string) *Error {
	return New(Unavailable, msg)
}

func NewInternal(msg string, err error) *Error {
	return Wrap(Internal, msg, err)
}

// KindOf reports the kind of err, or Internal when err carries no *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the client-facing message for err.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Msg
	}
	return "Internal server error"
}
