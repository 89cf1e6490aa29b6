package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/homotopy/internal/compiler"
	"github.com/roach88/homotopy/internal/core"
	"github.com/roach88/homotopy/internal/proof"
	"github.com/roach88/homotopy/internal/typecheck"
)

// OutcomeError marks a step that failed with an error that is not an action
// rejection.
const OutcomeError = "ERROR"

// Harness is the scenario execution engine.
// It runs every scenario in a fresh interner and proof.
type Harness struct {
	proof  *proof.Proof
	logger *slog.Logger
}

// Option configures a run.
type Option func(*Harness)

// WithLogger sets the logger step outcomes are reported to. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Compile the signature into a fresh interner
// 2. Apply each step, recording its outcome in the trace
// 3. Compare each outcome with the step's expectation
// 4. Evaluate assertions against the final proof
//
// An error is returned when the scenario cannot be run at all; failed
// expectations and assertions are reported in the result.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	sig, err := compiler.LoadFile(scenario.Signature, core.NewInterner())
	if err != nil {
		return nil, fmt.Errorf("failed to load signature: %w", err)
	}
	mode, err := typecheck.ParseMode(scenario.Typecheck)
	if err != nil {
		return nil, err
	}

	h := &Harness{
		proof:  proof.New(sig, proof.WithTypecheckMode(mode)),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}

	result := NewResult()
	result.Proof = h.proof
	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	actx := &AssertionContext{Ctx: ctx, Proof: h.proof}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

// executeSteps applies every step and checks its expectation.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		action, err := step.toAction(h.proof.Signature())
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}

		outcome := OutcomeOK
		if err := h.proof.Update(ctx, action); err != nil {
			if errors.Is(err, core.ErrCancelled) {
				return fmt.Errorf("step %d: %w", i, err)
			}
			outcome = outcomeOf(err)
		}

		dim, size := visibleShape(h.proof)
		ev := TraceEvent{
			Step:      i,
			Action:    action.Kind(),
			Outcome:   outcome,
			Seq:       h.proof.Clock().Current(),
			Dimension: dim,
			Size:      size,
		}
		result.AddTrace(ev)

		expect := step.Expect
		if expect == "" {
			expect = OutcomeOK
		}
		if outcome != expect {
			result.AddError(fmt.Sprintf("step %d (%s): expected %s, got %s", i, ev.Action, expect, outcome))
		}

		h.logger.Info("step completed",
			"step", i,
			"action", ev.Action,
			"outcome", outcome,
			"seq", ev.Seq,
		)
	}
	return nil
}

func outcomeOf(err error) string {
	var ae *proof.ActionError
	if errors.As(err, &ae) {
		return string(ae.Code)
	}
	return OutcomeError
}

// visibleShape returns the dimension and size of the visible slice, or -1
// and 0 when the workspace is empty.
func visibleShape(p *proof.Proof) (int, int) {
	w := p.Workspace()
	if w == nil {
		return -1, 0
	}
	d, err := w.Visible()
	if err != nil {
		return -1, 0
	}
	if n, ok := d.(*core.DiagramN); ok {
		return n.Dimension(), n.Size()
	}
	return 0, 0
}
