// Package apperr defines the error kinds surfaced by the service layer and
// their mapping to HTTP status codes.
package apperr

import (
	"errors"
	"net/http"

	"taskboard/internal/repository"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a user-facing message. Err holds the underlying cause, which
// is logged but never returned to clients.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// ValidationFields reports per-field problems.
func ValidationFields(msg string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// From classifies err. Errors that already carry a kind keep it, repository
// sentinels are mapped to their kinds, anything else is internal.
func From(err error, msg string) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return &Error{Kind: KindNotFound, Message: notFoundMessage(err), Err: err}
	case errors.Is(err, repository.ErrDuplicate):
		return &Error{Kind: KindConflict, Message: "already exists", Err: err}
	case errors.Is(err, repository.ErrInvalidReference):
		return &Error{Kind: KindNotFound, Message: "referenced entity not found", Err: err}
	default:
		return Internal(msg, err)
	}
}

func notFoundMessage(err error) string {
	for _, s := range []error{
		repository.ErrWorkspaceNotFound,
		repository.ErrBoardNotFound,
		repository.ErrColumnNotFound,
		repository.ErrTaskNotFound,
		repository.ErrSubtaskNotFound,
		repository.ErrUserNotFound,
		repository.ErrNotificationNotFound,
	} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return repository.ErrNotFound.Error()
}

// KindOf reports the kind of err, KindInternal when it has none.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}
