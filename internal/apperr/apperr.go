// Package apperr holds the error taxonomy shared by every feature package.
// Feature errors wrap one of the sentinel kinds so callers can branch with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation error")
	ErrConflict           = errors.New("conflict")
	ErrStorage            = errors.New("storage error")
	ErrFatalInconsistency = errors.New("fatal inconsistency")
)

type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindValidation         Kind = "validation_error"
	KindConflict           Kind = "conflict"
	KindStorage            Kind = "storage_error"
	KindFatalInconsistency Kind = "fatal_inconsistency"
	KindInternal           Kind = "internal_error"
)

// KindOf classifies err; anything outside the taxonomy is internal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrStorage):
		return KindStorage
	case errors.Is(err, ErrFatalInconsistency):
		return KindFatalInconsistency
	default:
		return KindInternal
	}
}

func NotFound(format string, args ...any) error {
	return wrap(ErrNotFound, format, args...)
}

func Validation(format string, args ...any) error {
	return wrap(ErrValidation, format, args...)
}

func Conflict(format string, args ...any) error {
	return wrap(ErrConflict, format, args...)
}

// Storage wraps a blob store failure, keeping both the kind and the cause in the chain.
func Storage(cause error, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, fmt.Sprintf(format, args...), cause)
}

func Fatal(format string, args ...any) error {
	return wrap(ErrFatalInconsistency, format, args...)
}

func wrap(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}
