package core

import (
	"context"
	"errors"
	"fmt"
)

// ErrorCode categorizes structural errors.
type ErrorCode string

const (
	// ErrCodeDimension indicates operands of incompatible dimension, or a
	// diagram that could not be viewed at the requested dimension.
	ErrCodeDimension ErrorCode = "DIMENSION_MISMATCH"

	// ErrCodeNewDiagram indicates a generator cell could not be built from the
	// given boundaries.
	ErrCodeNewDiagram ErrorCode = "NEW_DIAGRAM"

	// ErrCodeMalformed indicates cospans or cones that do not fit together.
	ErrCodeMalformed ErrorCode = "MALFORMED"

	// ErrCodeRewriting indicates a rewrite applied to a diagram it does not
	// match.
	ErrCodeRewriting ErrorCode = "REWRITING"

	// ErrCodeComposition indicates two rewrites that do not compose.
	ErrCodeComposition ErrorCode = "COMPOSITION"

	// ErrCodeAttach indicates a cell whose boundary does not embed where it
	// was attached.
	ErrCodeAttach ErrorCode = "ATTACH"

	// ErrCodeContraction indicates a contraction that is out of bounds,
	// ambiguous without a bias, or has no colimit.
	ErrCodeContraction ErrorCode = "CONTRACTION"

	// ErrCodeExpansion indicates an expansion at a point that is not
	// singular, is out of bounds, or has nothing to split.
	ErrCodeExpansion ErrorCode = "EXPANSION"

	// ErrCodeNotAtomic indicates Bubble on a diagram without exactly one
	// cospan.
	ErrCodeNotAtomic ErrorCode = "NOT_ATOMIC"
)

// Error is returned by structural operations.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Op names the operation that failed, e.g. "attach" or "contract".
	Op string

	// Message is a human-readable description.
	Message string

	// Err is an underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

func newError(code ErrorCode, op, format string, args ...any) *Error {
	return &Error{Code: code, Op: op, Message: fmt.Sprintf(format, args...)}
}

func wrapError(code ErrorCode, op string, err error, format string, args ...any) error {
	if errors.Is(err, ErrCancelled) {
		return err
	}
	return &Error{Code: code, Op: op, Message: fmt.Sprintf(format, args...), Err: err}
}

// HasCode reports whether err wraps an *Error with the given code.
func HasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// ErrCancelled is returned when an operation observes a cancelled context.
// The context's own error is wrapped alongside it.
var ErrCancelled = errors.New("operation cancelled")

// checkpoint reports cancellation of ctx.
func checkpoint(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	return nil
}
