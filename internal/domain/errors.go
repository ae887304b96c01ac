package domain

import (
	"errors"
	"fmt"
)

// Kind classifies every failure the engine can surface. The set is closed:
// the HTTP boundary switches over it exhaustively instead of matching
// error strings or code fields.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindProviderNotConfigured
	KindProvider
	KindDocumentRender
	KindEmailDelivery
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindProviderNotConfigured:
		return "provider_not_configured"
	case KindProvider:
		return "provider"
	case KindDocumentRender:
		return "document_render"
	case KindEmailDelivery:
		return "email_delivery"
	default:
		return "unknown"
	}
}

// Error is the tagged failure type. Entity and ID give the caller enough
// context to build an actionable message for validation and not-found
// failures; Err keeps the underlying cause for logging.
type Error struct {
	Kind   Kind
	Entity string
	ID     string
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.ID != "":
		return fmt.Sprintf("%s: %s - %s", e.Entity, e.Msg, e.ID)
	case e.Msg != "":
		return e.Msg
	case e.ID != "":
		return fmt.Sprintf("%s %s: %s", e.Entity, e.ID, e.Kind)
	default:
		return fmt.Sprintf("%s: %s", e.Entity, e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match two domain errors by kind, so callers can test
// against lightweight probe values like &Error{Kind: KindNotFound}.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	if t.Kind != 0 && t.Kind != e.Kind {
		return false
	}
	if t.Entity != "" && t.Entity != e.Entity {
		return false
	}
	return true
}

// KindOf extracts the Kind from err, or 0 when err is not a domain error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func ValidationErr(entity, msg string) *Error {
	return &Error{Kind: KindValidation, Entity: entity, Msg: msg}
}

func NotFoundErr(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, ID: id}
}
