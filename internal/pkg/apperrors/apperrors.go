package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error so the HTTP layer can pick a status code and
// the ingestion pipeline can decide whether a step failure is retryable.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not_found"
	KindExternalService Kind = "external_service"
	KindDatabase        Kind = "database"
	KindBusinessRule    Kind = "business_rule"
)

// Error carries the operation and resource that failed alongside the kind,
// so a failed ingestion surfaces as one message with enough context to
// render ("catalog search failed for material ...").
type Error struct {
	Kind     Kind
	Op       string // e.g. "material.ReconcileNames"
	Resource string // e.g. "material", "catalog"
	Err      error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s %s", e.Op, e.Kind, e.Resource)
	}
	return fmt.Sprintf("%s: %s %s: %v", e.Op, e.Kind, e.Resource, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, op, resource string, err error) *Error {
	return &Error{Kind: kind, Op: op, Resource: resource, Err: err}
}

func Validation(op, resource string, err error) *Error {
	return New(KindValidation, op, resource, err)
}

func NotFound(op, resource string, err error) *Error {
	return New(KindNotFound, op, resource, err)
}

func ExternalService(op, resource string, err error) *Error {
	return New(KindExternalService, op, resource, err)
}

func Database(op, resource string, err error) *Error {
	return New(KindDatabase, op, resource, err)
}

func BusinessRule(op, resource string, err error) *Error {
	return New(KindBusinessRule, op, resource, err)
}

// KindOf walks the wrap chain and returns the outermost classified kind,
// or empty string when the error was never classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
