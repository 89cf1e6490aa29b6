package typecheck

import (
	"fmt"
	"strings"

	"github.com/roach88/homotopy/internal/core"
)

// Typecheck error codes (E200-E299)
const (
	// Signature errors (E201-E209)
	ErrUnknownGenerator   = "E201" // generator missing from the signature
	ErrGeneratorDimension = "E202" // signature cell has the wrong dimension
	ErrNotInvertible      = "E203" // negative occurrence of a non-invertible generator

	// Structural errors (E210-E219)
	ErrConeNotCommuting = "E210" // a cone square does not commute
	ErrInvalidPointMap  = "E211" // point rewrite lowers dimension or changes a generator
	ErrNeighbourhood    = "E212" // a point's neighbourhood is not its generator's cell
	ErrMalformedCell    = "E213" // a signature cell is not a single level
)

// TypecheckError reports the first ill-typed part of a diagram.
type TypecheckError struct {
	Code    string            `json:"code"`
	Path    []core.SliceIndex `json:"path,omitempty"`
	Message string            `json:"message"`
	Err     error             `json:"-"`
}

// Error implements the error interface.
func (e *TypecheckError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	parts := make([]string, len(e.Path))
	for i, s := range e.Path {
		parts[i] = s.String()
	}
	return fmt.Sprintf("[%s] at %s: %s", e.Code, strings.Join(parts, "/"), e.Message)
}

// Unwrap returns the underlying structural error, if any.
func (e *TypecheckError) Unwrap() error { return e.Err }
