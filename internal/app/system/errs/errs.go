// Package errs defines the closed set of error kinds the API surfaces.
// Stores and features wrap backend errors into one of these kinds; handlers
// map kinds to HTTP status codes and stable string codes. Presentation text
// stays out of the store layer.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the closed error taxonomy.
type Kind int

const (
	Unknown Kind = iota
	InvalidEmail
	WeakPassword
	BadCredentials
	EmailTaken
	PermissionDenied
	NotFound
	CodeTaken
	InvalidCode
	ValidationFailed
)

// Error carries a kind plus an optional detail message and wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	}
	return Code(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error with a detail message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap attaches a kind to an underlying error.
func Wrap(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf extracts the kind from err, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is lets errors.Is match on kind: errors.Is(err, errs.New(errs.NotFound, "")).
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// Code returns the stable wire code for a kind. Clients key their
// presentation text off these, never off internal messages.
func Code(kind Kind) string {
	switch kind {
	case InvalidEmail:
		return "invalid-email"
	case WeakPassword:
		return "weak-password"
	case BadCredentials:
		return "bad-credentials"
	case EmailTaken:
		return "email-taken"
	case PermissionDenied:
		return "permission-denied"
	case NotFound:
		return "not-found"
	case CodeTaken:
		return "code-taken"
	case InvalidCode:
		return "invalid-code"
	case ValidationFailed:
		return "validation-failed"
	}
	return "unknown"
}

// HTTPStatus maps a kind to the HTTP status the API responds with.
func HTTPStatus(kind Kind) int {
	switch kind {
	case InvalidEmail, WeakPassword, InvalidCode, ValidationFailed:
		return http.StatusBadRequest
	case BadCredentials:
		return http.StatusUnauthorized
	case PermissionDenied:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case EmailTaken, CodeTaken:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Message returns a short user-facing fallback message for a kind.
func Message(kind Kind) string {
	switch kind {
	case InvalidEmail:
		return "That email address is not valid."
	case WeakPassword:
		return "Password is too weak; use at least 6 characters."
	case BadCredentials:
		return "Wrong email or password."
	case EmailTaken:
		return "An account with this email already exists."
	case PermissionDenied:
		return "You do not have access to this household."
	case NotFound:
		return "Not found."
	case CodeTaken:
		return "This invite code is already in use."
	case InvalidCode:
		return "Invite codes are 3-32 characters: letters, digits and hyphens."
	case ValidationFailed:
		return "Some fields are missing or invalid."
	}
	return "Something went wrong."
}
