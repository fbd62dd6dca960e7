package faults

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can distinguish a malformed request
// from "try different dates" without parsing messages.
type Kind string

const (
	KindValidation  Kind = "ValidationError"
	KindConflict    Kind = "AvailabilityConflict"
	KindNotFound    Kind = "NotFound"
	KindForbidden   Kind = "Forbidden"
	KindUnavailable Kind = "ExternalServiceUnavailable"
)

type Fault struct {
	Kind    Kind
	Message string
	Err     error
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return f.Message + ": " + f.Err.Error()
	}
	return f.Message
}

func (f *Fault) Unwrap() error { return f.Err }

// Is lets errors.Is match any fault of the same kind.
func (f *Fault) Is(target error) bool {
	t, ok := target.(*Fault)
	if !ok {
		return false
	}
	return t.Kind == f.Kind && (t.Message == "" || t.Message == f.Message)
}

func Validationf(format string, args ...any) error {
	return &Fault{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) error {
	return &Fault{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) error {
	return &Fault{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Forbiddenf(format string, args ...any) error {
	return &Fault{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func Unavailable(msg string, err error) error {
	return &Fault{Kind: KindUnavailable, Message: msg, Err: err}
}

// Wrap attaches a kind to an underlying error, keeping the chain intact.
func Wrap(kind Kind, msg string, err error) error {
	return &Fault{Kind: kind, Message: msg, Err: err}
}

// KindOf extracts the fault kind from an error chain; empty if none.
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
