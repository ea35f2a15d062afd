package catalog

import (
	"errors"
	"fmt"
)

// Validation error kinds. Every error returned by this package wraps one of them.
var (
	ErrMissingRequiredField = errors.New("MISSING_REQUIRED_FIELD")
	ErrInvalidPayload       = errors.New("INVALID_PAYLOAD")
	ErrInvalidSizeList      = errors.New("INVALID_SIZE_LIST")
	ErrInvalidColorList     = errors.New("INVALID_COLOR_LIST")
	ErrColorSizeMismatch    = errors.New("COLOR_SIZE_MISMATCH")
	ErrInvalidPrice         = errors.New("INVALID_PRICE")
	ErrInvalidStock         = errors.New("INVALID_STOCK")
	ErrInvalidFilterValue   = errors.New("INVALID_FILTER_VALUE")
)

// Error is a field-attributable validation failure.
type Error struct {
	Kind   error
	Field  string
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message())
}

// Message is the human readable part of the error, without the kind code.
func (e *Error) Message() string {
	switch {
	case e.Field == "":
		return e.Detail
	case e.Detail == "":
		return e.Field
	default:
		return e.Field + " " + e.Detail
	}
}

func (e *Error) Unwrap() error { return e.Kind }

func fieldErr(kind error, field, format string, args ...any) *Error {
	return &Error{Kind: kind, Field: field, Detail: fmt.Sprintf(format, args...)}
}
