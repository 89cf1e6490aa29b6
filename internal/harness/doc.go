// Package harness runs scripted proof sessions against a signature.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: side_by_side
//	description: "Two invertible cells side by side contract and expand back"
//	signature: monoid.cue
//	typecheck: deep
//	steps:
//	  - action: select_generator
//	    generator: a
//	  - action: attach
//	    generator: f
//	    boundary: target
//	    depth: 1
//	  - action: contract
//	    height: 5
//	    expect: STRUCTURAL
//	assertions:
//	  - type: workspace_dimension
//	    value: 3
//	  - type: trace_count
//	    outcome: STRUCTURAL
//	    count: 1
//
// The signature path is relative to the scenario file. Step actions use the
// proof action kinds; expect defaults to "ok" and otherwise names the
// rejection code the step must fail with.
//
// # Assertion Types
//
//   - workspace_dimension: dimension of the visible slice
//   - workspace_size: number of cospans of the visible slice
//   - generator_count: number of generators at the end
//   - generator_dimension: dimension of a named generator
//   - equals_generator: the visible slice is the cell of a named generator
//   - typechecks: the workspace diagram passes a deep typecheck
//   - trace_count: number of steps with a given outcome
//
// # Deterministic Testing
//
// Every run builds a fresh interner and proof, so the trace (outcome, logical
// seq, dimension and size per step) is identical across runs and can be
// compared against golden files.
package harness
