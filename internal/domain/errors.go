package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the transport layer can pick a response status.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindForbidden
	KindDataNotAvailable
	KindValidation
	KindDuplicateEmail
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindForbidden:
		return "FORBIDDEN"
	case KindDataNotAvailable:
		return "DATA_NOT_AVAILABLE"
	case KindValidation:
		return "VALIDATION"
	case KindDuplicateEmail:
		return "DUPLICATE_EMAIL"
	default:
		return "UNKNOWN"
	}
}

// Error is a classified failure with a human-readable message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Message
}

// Is matches the kind sentinels below: errors.Is(err, domain.ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

var (
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrForbidden        = &Error{Kind: KindForbidden}
	ErrDataNotAvailable = &Error{Kind: KindDataNotAvailable}
	ErrValidation       = &Error{Kind: KindValidation}
	ErrDuplicateEmail   = &Error{Kind: KindDuplicateEmail}
)

func newError(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return newError(KindNotFound, format, args...)
}

func Forbidden(format string, args ...any) error {
	return newError(KindForbidden, format, args...)
}

func DataNotAvailable(format string, args ...any) error {
	return newError(KindDataNotAvailable, format, args...)
}

func Validation(format string, args ...any) error {
	return newError(KindValidation, format, args...)
}

func DuplicateEmail(format string, args ...any) error {
	return newError(KindDuplicateEmail, format, args...)
}

func Unknown(format string, args ...any) error {
	return newError(KindUnknown, format, args...)
}

// KindOf returns the kind of the first *Error in err's chain, KindUnknown otherwise.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}
