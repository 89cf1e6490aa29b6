package compiler

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/homotopy/internal/core"
	"github.com/roach88/homotopy/internal/proof"
	"github.com/roach88/homotopy/internal/typecheck"
)

// ValidationError represents a generator whose cell fails the typechecker.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Cause   string `json:"cause,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Cause != "" {
		return fmt.Sprintf("[%s] %s: %s (%s)", e.Code, e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate typechecks the cell of every generator in sig.
// Returns all errors found (does not fail-fast). A cancelled context is
// returned as the error rather than reported per generator.
func Validate(ctx context.Context, sig *proof.Signature, mode typecheck.Mode) ([]ValidationError, error) {
	var errs []ValidationError
	for _, info := range sig.Generators() {
		if info.Generator.Dimension == 0 {
			continue
		}
		err := typecheck.Check(ctx, sig, info.Cell, mode)
		if err == nil {
			continue
		}
		if errors.Is(err, core.ErrCancelled) {
			return errs, err
		}
		ve := ValidationError{
			Field:   "generator." + info.Name,
			Message: err.Error(),
			Code:    ErrCellTypecheck,
		}
		var te *typecheck.TypecheckError
		if errors.As(err, &te) {
			ve.Message = te.Message
			ve.Cause = te.Code
		}
		errs = append(errs, ve)
	}
	return errs, nil
}
