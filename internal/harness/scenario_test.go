package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/homotopy/internal/compiler"
	"github.com/roach88/homotopy/internal/core"
	"github.com/roach88/homotopy/internal/proof"
)

const minimalScenario = `
name: minimal
description: selects a generator
signature: monoid.cue
steps:
  - action: select_generator
    generator: f
assertions:
  - type: workspace_dimension
    value: 1
`

// =============================================================================
// Parsing
// =============================================================================

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/side_by_side.yaml")
	require.NoError(t, err)

	assert.Equal(t, "side_by_side", s.Name)
	assert.Equal(t, filepath.Join("testdata", "monoid.cue"), filepath.Clean(s.Signature))
	assert.Equal(t, "deep", s.Typecheck)
	require.Len(t, s.Steps, 10)
	assert.Equal(t, "attach", s.Steps[1].Action)
	assert.Equal(t, 1, s.Steps[1].Depth)
	assert.Equal(t, []int{1}, s.Steps[2].Embedding)
	assert.Equal(t, []string{"s0", "s0"}, s.Steps[4].Point)
	assert.Equal(t, "STRUCTURAL", s.Steps[5].Expect)
	assert.Len(t, s.Assertions, 7)
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/nope.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenarios(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "new_generator", scenarios[0].Name)
	assert.Equal(t, "side_by_side", scenarios[1].Name)
}

func TestLoadScenariosReportsFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: [\n"), 0o644))

	_, err := LoadScenarios(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.yaml")
}

func TestParseScenarioResolvesSignature(t *testing.T) {
	s, err := ParseScenario([]byte(minimalScenario), "testdata")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("testdata", "monoid.cue"), s.Signature)
}

func TestParseScenarioInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown field",
			yaml: minimalScenario + "assertion: []\n",
			want: "field assertion not found",
		},
		{
			name: "missing name",
			yaml: "description: d\nsignature: monoid.cue\nsteps: [{action: bubble}]\nassertions: [{type: typechecks}]\n",
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: "name: n\nsignature: monoid.cue\nsteps: [{action: bubble}]\nassertions: [{type: typechecks}]\n",
			want: "description is required",
		},
		{
			name: "missing signature",
			yaml: "name: n\ndescription: d\nsteps: [{action: bubble}]\nassertions: [{type: typechecks}]\n",
			want: "signature is required",
		},
		{
			name: "signature not found",
			yaml: "name: n\ndescription: d\nsignature: nope.cue\nsteps: [{action: bubble}]\nassertions: [{type: typechecks}]\n",
			want: "signature file not found",
		},
		{
			name: "bad typecheck mode",
			yaml: "name: n\ndescription: d\nsignature: monoid.cue\ntypecheck: thorough\nsteps: [{action: bubble}]\nassertions: [{type: typechecks}]\n",
			want: "unknown typecheck mode",
		},
		{
			name: "no steps",
			yaml: "name: n\ndescription: d\nsignature: monoid.cue\nsteps: []\nassertions: [{type: typechecks}]\n",
			want: "steps list is required",
		},
		{
			name: "no assertions",
			yaml: "name: n\ndescription: d\nsignature: monoid.cue\nsteps: [{action: bubble}]\nassertions: []\n",
			want: "assertions list is required",
		},
		{
			name: "unknown action",
			yaml: "name: n\ndescription: d\nsignature: monoid.cue\nsteps: [{action: rotate}]\nassertions: [{type: typechecks}]\n",
			want: `unknown action "rotate"`,
		},
		{
			name: "unknown assertion",
			yaml: "name: n\ndescription: d\nsignature: monoid.cue\nsteps: [{action: bubble}]\nassertions: [{type: shiny}]\n",
			want: `unknown assertion type "shiny"`,
		},
		{
			name: "assertion without generator",
			yaml: "name: n\ndescription: d\nsignature: monoid.cue\nsteps: [{action: bubble}]\nassertions: [{type: equals_generator}]\n",
			want: "generator is required",
		},
		{
			name: "trace count without outcome",
			yaml: "name: n\ndescription: d\nsignature: monoid.cue\nsteps: [{action: bubble}]\nassertions: [{type: trace_count, count: 1}]\n",
			want: "outcome is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml), "testdata")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

// =============================================================================
// Step conversion
// =============================================================================

func TestStepToAction(t *testing.T) {
	sig, err := compiler.LoadFile("testdata/monoid.cue", core.NewInterner())
	require.NoError(t, err)
	f, _ := sig.Lookup("f")
	a, _ := sig.Lookup("a")

	tests := []struct {
		name string
		step Step
		want proof.Action
	}{
		{"select", Step{Action: "select_generator", Generator: "f"}, proof.SelectGenerator{Generator: f.Generator}},
		{"clear", Step{Action: "clear_workspace"}, proof.ClearWorkspace{}},
		{"identity", Step{Action: "take_identity"}, proof.TakeIdentity{}},
		{
			"set boundary defaults to target",
			Step{Action: "set_boundary", Name: "g", Invertible: true},
			proof.SetBoundary{Boundary: core.Target, Name: "g", Invertible: true},
		},
		{
			"attach",
			Step{Action: "attach", Generator: "a", Inverse: true, Boundary: "source", Depth: 1, Embedding: []int{2}},
			proof.Attach{
				Generator: a.Generator,
				Inverse:   true,
				Boundary:  core.BoundaryPath{Boundary: core.Source, Depth: 1},
				Embedding: []int{2},
			},
		},
		{
			"contract",
			Step{Action: "contract", Location: []string{"source", "r1"}, Height: 2, Bias: "higher"},
			proof.Contract{
				Location: []core.SliceIndex{core.AtBoundary(core.Source), core.AtHeight(core.Regular(1))},
				Height:   2,
				Bias:     core.BiasHigher,
			},
		},
		{
			"contract three",
			Step{Action: "contract", Height: 1, Count: 3, Bias: "lower"},
			proof.Contract{Height: 1, Count: 3, Bias: core.BiasLower},
		},
		{
			"expand",
			Step{Action: "expand", Point: []string{"s1", "r0"}, Direction: "backward"},
			proof.Expand{Point: [2]core.Height{core.Singular(1), core.Regular(0)}, Direction: core.Backward},
		},
		{"bubble", Step{Action: "bubble"}, proof.Bubble{}},
		{"invert", Step{Action: "invert"}, proof.Invert{}},
		{"descend", Step{Action: "descend_slice", Slice: "target"}, proof.DescendSlice{Slice: core.AtBoundary(core.Target)}},
		{"ascend", Step{Action: "ascend_slice", Count: 2}, proof.AscendSlice{Count: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.step.toAction(sig)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStepToActionErrors(t *testing.T) {
	sig, err := compiler.LoadFile("testdata/monoid.cue", core.NewInterner())
	require.NoError(t, err)

	tests := []struct {
		name string
		step Step
		want string
	}{
		{"unknown generator", Step{Action: "select_generator", Generator: "zz"}, `unknown generator "zz"`},
		{"bad boundary", Step{Action: "attach", Generator: "f", Boundary: "middle"}, `unknown boundary "middle"`},
		{"bad location", Step{Action: "contract", Location: []string{"x9"}}, `invalid slice index "x9"`},
		{"bad bias", Step{Action: "contract", Bias: "left"}, `unknown bias "left"`},
		{"short point", Step{Action: "expand", Point: []string{"s0"}}, "point of two heights"},
		{"bad height", Step{Action: "expand", Point: []string{"s0", "q1"}}, `invalid height "q1"`},
		{"bad direction", Step{Action: "expand", Point: []string{"s0", "s0"}, Direction: "up"}, `unknown direction "up"`},
		{"bad slice", Step{Action: "descend_slice", Slice: "s-1"}, "invalid slice index"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.step.toAction(sig)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
