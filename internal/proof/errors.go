package proof

import (
	"errors"
	"fmt"
)

// ActionErrorCode categorizes rejected actions.
type ActionErrorCode string

const (
	// ErrCodeNoWorkspace indicates an action that needs a workspace diagram.
	ErrCodeNoWorkspace ActionErrorCode = "NO_WORKSPACE"

	// ErrCodeUnknownGenerator indicates a generator missing from the signature.
	ErrCodeUnknownGenerator ActionErrorCode = "UNKNOWN_GENERATOR"

	// ErrCodeDuplicateName indicates a generator name already in use.
	ErrCodeDuplicateName ActionErrorCode = "DUPLICATE_NAME"

	// ErrCodeInvalidPath indicates a view path or location that does not
	// resolve in the workspace.
	ErrCodeInvalidPath ActionErrorCode = "INVALID_PATH"

	// ErrCodeDimension indicates operands of the wrong dimension.
	ErrCodeDimension ActionErrorCode = "DIMENSION"

	// ErrCodeNotInvertible indicates inversion of a non-invertible cell.
	ErrCodeNotInvertible ActionErrorCode = "NOT_INVERTIBLE"

	// ErrCodeStructural indicates the structural operation itself failed.
	ErrCodeStructural ActionErrorCode = "STRUCTURAL"

	// ErrCodeTypecheck indicates a result that does not typecheck.
	ErrCodeTypecheck ActionErrorCode = "TYPECHECK"
)

// ActionError reports why an action was rejected.
type ActionError struct {
	// Code identifies the error category.
	Code ActionErrorCode

	// Action is the kind of the rejected action.
	Action string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *ActionError) Error() string {
	msg := fmt.Sprintf("%s: %s: %s", e.Action, e.Code, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ActionError) Unwrap() error { return e.Err }

// IsActionError reports whether err is an *ActionError with the given code.
func IsActionError(err error, code ActionErrorCode) bool {
	var ae *ActionError
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

func reject(code ActionErrorCode, format string, args ...any) *ActionError {
	return &ActionError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func rejectWith(code ActionErrorCode, err error, format string, args ...any) *ActionError {
	return &ActionError{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}
