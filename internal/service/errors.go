// Package service holds the application use cases: account management,
// movie listing, ratings and comments. Each use case composes the
// repositories with the authorization guard and reports failures as
// *Error values whose Kind is one of the sentinels below.
package service

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is(err, ErrNotFound) and friends to classify a
// failure returned by any service method.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrValidation      = errors.New("validation failed")
)

// Error is a classified use-case failure carrying a message fit for the
// caller.
type Error struct {
	Kind   error
	Detail string
}

func (e *Error) Error() string { return fmt.Sprintf("%v: %s", e.Kind, e.Detail) }

func (e *Error) Unwrap() error { return e.Kind }

func notFound(detail string) error        { return &Error{Kind: ErrNotFound, Detail: detail} }
func conflict(detail string) error        { return &Error{Kind: ErrConflict, Detail: detail} }
func unauthenticated(detail string) error { return &Error{Kind: ErrUnauthenticated, Detail: detail} }
func unauthorized(detail string) error    { return &Error{Kind: ErrUnauthorized, Detail: detail} }
func invalid(detail string) error         { return &Error{Kind: ErrValidation, Detail: detail} }

// Detail returns the caller-facing message of a classified error, or ""
// for anything else.
func Detail(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Detail
	}
	return ""
}
