package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/homotopy/internal/core"
	"github.com/roach88/homotopy/internal/proof"
	"github.com/roach88/homotopy/internal/typecheck"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, ev := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s -> %s (seq %d, dim %d, size %d)\n",
			ev.Step, ev.Action, ev.Outcome, ev.Seq, ev.Dimension, ev.Size)
	}

	return buf.String()
}

// AssertionContext provides the final proof state to assertions.
type AssertionContext struct {
	Ctx   context.Context
	Proof *proof.Proof
}

func (a *AssertionContext) visible() (core.Diagram, bool) {
	w := a.Proof.Workspace()
	if w == nil {
		return nil, false
	}
	d, err := w.Visible()
	return d, err == nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertWorkspaceDimension:
			dim, _ := visibleShape(actx.Proof)
			err = expectInt(assertion.Type, assertion.Value, dim, result.Trace)
		case AssertWorkspaceSize:
			_, size := visibleShape(actx.Proof)
			err = expectInt(assertion.Type, assertion.Value, size, result.Trace)
		case AssertGeneratorCount:
			err = expectInt(assertion.Type, assertion.Value, actx.Proof.Signature().Len(), result.Trace)
		case AssertGeneratorDimension:
			err = assertGeneratorDimension(actx, assertion, result.Trace)
		case AssertEqualsGenerator:
			err = assertEqualsGenerator(actx, assertion, result.Trace)
		case AssertTypechecks:
			err = assertTypechecks(actx, result.Trace)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

func expectInt(kind string, want, got int, trace []TraceEvent) error {
	if want == got {
		return nil
	}
	return &AssertionError{
		Type:     kind,
		Expected: fmt.Sprintf("%d", want),
		Actual:   fmt.Sprintf("%d", got),
		Trace:    trace,
	}
}

func assertGeneratorDimension(actx *AssertionContext, a Assertion, trace []TraceEvent) error {
	info, ok := actx.Proof.Signature().Lookup(a.Generator)
	if !ok {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("generator %q of dimension %d", a.Generator, a.Value),
			Actual:   "no such generator",
			Trace:    trace,
		}
	}
	return expectInt(a.Type, a.Value, info.Generator.Dimension, trace)
}

func assertEqualsGenerator(actx *AssertionContext, a Assertion, trace []TraceEvent) error {
	info, ok := actx.Proof.Signature().Lookup(a.Generator)
	if !ok {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("cell of %q", a.Generator),
			Actual:   "no such generator",
			Trace:    trace,
		}
	}
	d, ok := actx.visible()
	if !ok {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("cell of %q", a.Generator), Actual: "empty workspace", Trace: trace}
	}
	// Interned diagrams are equal exactly when they are the same value.
	if d != info.Cell {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("cell of %q", a.Generator),
			Actual:   fmt.Sprintf("%v", d),
			Trace:    trace,
		}
	}
	return nil
}

func assertTypechecks(actx *AssertionContext, trace []TraceEvent) error {
	w := actx.Proof.Workspace()
	if w == nil {
		return &AssertionError{Type: AssertTypechecks, Expected: "a well-typed workspace", Actual: "empty workspace", Trace: trace}
	}
	if err := typecheck.Check(actx.Ctx, actx.Proof.Signature(), w.Diagram, typecheck.Deep); err != nil {
		return &AssertionError{Type: AssertTypechecks, Expected: "a well-typed workspace", Actual: err.Error(), Trace: trace}
	}
	return nil
}

// assertTraceCount checks how many steps ended with the given outcome.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, ev := range trace {
		if ev.Outcome == a.Outcome {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d steps with outcome %s", a.Count, a.Outcome),
			Actual:   fmt.Sprintf("%d", count),
			Trace:    trace,
		}
	}
	return nil
}
