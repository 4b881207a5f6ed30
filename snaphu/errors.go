package snaphu

import (
	"errors"
	"fmt"
)

//go:generate go run github.com/dmarkham/enumer -json -type Kind

// Kind of failure of the import
type Kind int

const (
	OperatorFailed      Kind = iota // Unexpected failure
	InvalidInputCount               // Not exactly two input products
	NoGeoReferenceFound             // None of the products is geocoded
	HeightMismatch                  // Products have different heights
	WidthMismatch                   // Products have different widths
	BandCopyFailed                  // A band cannot be copied in the target product
)

// Error is the only error type returned by Import
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("SnaphuImport: %s: %v", e.Msg, e.Err)
	}
	return "SnaphuImport: " + e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is returns true if target is an *Error of the same Kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Msg == "" && t.Err == nil
}

func newError(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// ErrKind returns a sentinel error matching any *Error of this kind with errors.Is
func ErrKind(kind Kind) error {
	return &Error{Kind: kind}
}

// KindOf returns the kind of the error and true if err is (or wraps) an *Error
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return OperatorFailed, false
}

// asOperatorError converts any error to an *Error
func asOperatorError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return newError(OperatorFailed, err, "unexpected failure")
}
