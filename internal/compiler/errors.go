package compiler

import (
	"fmt"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Signature compile error codes (E100-E119)
const (
	ErrCUE              = "E100" // CUE evaluation or load failure
	ErrNoGenerators     = "E101" // generator block missing or empty
	ErrMissingBoundary  = "E102" // only one of source/target given
	ErrUnknownReference = "E103" // term names a generator not defined before it
	ErrInvalidTerm      = "E104" // term is not a name or a single known operator
	ErrDuplicateName    = "E105" // two generators normalize to the same name
	ErrStructural       = "E106" // a term or cell could not be built
	ErrInvalidField     = "E107" // field has the wrong kind or value
)

// Validation error codes (E120-E129)
const (
	ErrCellTypecheck = "E120" // generator cell fails the typechecker
)

// CompileError represents a compilation error with source position.
type CompileError struct {
	Code    string
	Field   string
	Message string
	Pos     token.Pos
	Err     error
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: [%s] %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

func (e *CompileError) Unwrap() error { return e.Err }

// formatCUEError extracts position info from CUE errors.
func formatCUEError(field string, err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &CompileError{Code: ErrCUE, Field: field, Message: err.Error(), Err: err}
	}

	// Return first error with position info
	first := errs[0]
	ce := &CompileError{Code: ErrCUE, Field: field, Message: first.Error(), Err: err}
	if positions := errors.Positions(first); len(positions) > 0 {
		ce.Pos = positions[0]
	}
	return ce
}
