package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by a service either wraps one of these
// or is an unexpected (internal) failure.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error carries a human-readable reason and unwraps to its kind, so callers can
// match either the specific value or the kind with errors.Is.
type Error struct {
	Kind   error
	Reason string
}

func (e *Error) Error() string { return e.Reason }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// NotFoundf returns an error of kind ErrNotFound.
func NotFoundf(format string, args ...any) error { return newError(ErrNotFound, format, args...) }

// Conflictf returns an error of kind ErrConflict.
func Conflictf(format string, args ...any) error { return newError(ErrConflict, format, args...) }

// Forbiddenf returns an error of kind ErrForbidden.
func Forbiddenf(format string, args ...any) error { return newError(ErrForbidden, format, args...) }

// InvalidInputf returns an error of kind ErrInvalidInput.
func InvalidInputf(format string, args ...any) error {
	return newError(ErrInvalidInput, format, args...)
}

// Sentinel errors for specific failures.
var (
	ErrUserNotFound         = newError(ErrNotFound, "user not found")
	ErrOrganizerNotFound    = newError(ErrNotFound, "organizer not found")
	ErrCategoryNotFound     = newError(ErrNotFound, "category not found")
	ErrEventNotFound        = newError(ErrNotFound, "event not found")
	ErrRegistrationNotFound = newError(ErrNotFound, "registration not found")

	ErrDuplicateEmail        = newError(ErrConflict, "email already in use")
	ErrDuplicateUsername     = newError(ErrConflict, "username already in use")
	ErrDuplicateCategoryName = newError(ErrConflict, "category name already exists")
	ErrCategoryInUse         = newError(ErrConflict, "category has events; remove or reassign them first")
	ErrUserReferenced        = newError(ErrConflict, "user is referenced by events or registrations")
	ErrReferenced            = newError(ErrConflict, "record is referenced by other records")
	ErrEventNotPublished     = newError(ErrConflict, "event is not published for registration")
	ErrEventFull             = newError(ErrConflict, "event is full")
	ErrAlreadyRegistered     = newError(ErrConflict, "user is already registered for this event")

	ErrNotOrganizer = newError(ErrForbidden, "only the organizer can modify this event")

	ErrEmptySearchTerm    = newError(ErrInvalidInput, "search term must not be empty")
	ErrInvalidCredentials = newError(ErrUnauthorized, "invalid credentials")
)
