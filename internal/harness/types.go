package harness

import "github.com/roach88/homotopy/internal/proof"

// TraceEvent records the outcome of one scenario step.
type TraceEvent struct {
	Step      int    `json:"step"`
	Action    string `json:"action"`
	Outcome   string `json:"outcome"`
	Seq       int64  `json:"seq"`
	Dimension int    `json:"dimension"`
	Size      int    `json:"size"`
}

// OutcomeOK marks a step that was applied.
const OutcomeOK = "ok"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every step met its expectation and every assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Proof is the proof state after the last step.
	Proof *proof.Proof `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step outcome.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
