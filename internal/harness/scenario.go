package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/homotopy/internal/core"
	"github.com/roach88/homotopy/internal/proof"
	"github.com/roach88/homotopy/internal/typecheck"
)

// Scenario is a scripted proof session with assertions on its result.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Signature is the CUE signature file the session starts from.
	// Relative paths are resolved against the scenario file's directory.
	Signature string `yaml:"signature"`

	// Typecheck is the mode results are checked with: "shallow" or "deep".
	// Empty means shallow.
	Typecheck string `yaml:"typecheck,omitempty"`

	// Steps are the actions applied in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state and the trace.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one proof action. Which fields apply depends on Action.
type Step struct {
	// Action is a proof action kind, e.g. "attach" or "descend_slice".
	Action string `yaml:"action"`

	Generator  string   `yaml:"generator,omitempty"`
	Name       string   `yaml:"name,omitempty"`
	Invertible bool     `yaml:"invertible,omitempty"`
	Inverse    bool     `yaml:"inverse,omitempty"`
	Boundary   string   `yaml:"boundary,omitempty"`
	Depth      int      `yaml:"depth,omitempty"`
	Embedding  []int    `yaml:"embedding,omitempty"`
	Location   []string `yaml:"location,omitempty"`
	Height     int      `yaml:"height,omitempty"`
	Bias       string   `yaml:"bias,omitempty"`
	Point      []string `yaml:"point,omitempty"`
	Direction  string   `yaml:"direction,omitempty"`
	Slice      string   `yaml:"slice,omitempty"`
	Count      int      `yaml:"count,omitempty"`

	// Expect is "ok" (the default) or the rejection code the step must
	// fail with.
	Expect string `yaml:"expect,omitempty"`
}

// Assertion validates the final state or the trace.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Value is the expected number for workspace_dimension, workspace_size,
	// generator_count and generator_dimension.
	Value int `yaml:"value,omitempty"`

	// Generator names the generator for generator_dimension and
	// equals_generator.
	Generator string `yaml:"generator,omitempty"`

	// Outcome and Count are used by trace_count.
	Outcome string `yaml:"outcome,omitempty"`
	Count   int    `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertWorkspaceDimension = "workspace_dimension"
	AssertWorkspaceSize      = "workspace_size"
	AssertGeneratorCount     = "generator_count"
	AssertGeneratorDimension = "generator_dimension"
	AssertEqualsGenerator    = "equals_generator"
	AssertTypechecks         = "typechecks"
	AssertTraceCount         = "trace_count"
)

var stepActions = []string{
	"select_generator", "clear_workspace", "take_identity", "set_boundary",
	"attach", "contract", "expand", "bubble", "invert",
	"descend_slice", "ascend_slice",
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, filepath.Dir(path))
}

// ParseScenario parses scenario YAML, resolving the signature path relative
// to basePath.
func ParseScenario(data []byte, basePath string) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Signature != "" && !filepath.IsAbs(scenario.Signature) && basePath != "" {
		scenario.Signature = filepath.Join(basePath, scenario.Signature)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every .yaml scenario in dir, ordered by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	slices.Sort(matches)

	var out []*Scenario
	for _, path := range matches {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		out = append(out, s)
	}
	return out, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Signature == "" {
		return fmt.Errorf("signature is required")
	}
	if _, err := os.Stat(s.Signature); os.IsNotExist(err) {
		return fmt.Errorf("signature file not found: %s", s.Signature)
	}
	if _, err := typecheck.ParseMode(s.Typecheck); err != nil {
		return fmt.Errorf("typecheck: %w", err)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if !slices.Contains(stepActions, step.Action) {
			return fmt.Errorf("steps[%d]: unknown action %q", i, step.Action)
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertWorkspaceDimension, AssertWorkspaceSize, AssertGeneratorCount, AssertTypechecks:
	case AssertGeneratorDimension, AssertEqualsGenerator:
		if a.Generator == "" {
			return fmt.Errorf("assertions[%d]: generator is required for %s", index, a.Type)
		}
	case AssertTraceCount:
		if a.Outcome == "" {
			return fmt.Errorf("assertions[%d]: outcome is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

// toAction builds the proof action for a step, resolving generator names in
// sig.
func (s Step) toAction(sig *proof.Signature) (proof.Action, error) {
	generator := func() (core.Generator, error) {
		info, ok := sig.Lookup(s.Generator)
		if !ok {
			return core.Generator{}, fmt.Errorf("unknown generator %q", s.Generator)
		}
		return info.Generator, nil
	}
	boundary := func() (core.Boundary, error) {
		if s.Boundary == "" {
			return core.Target, nil
		}
		return core.ParseBoundary(s.Boundary)
	}

	switch s.Action {
	case "select_generator":
		g, err := generator()
		if err != nil {
			return nil, err
		}
		return proof.SelectGenerator{Generator: g}, nil
	case "clear_workspace":
		return proof.ClearWorkspace{}, nil
	case "take_identity":
		return proof.TakeIdentity{}, nil
	case "set_boundary":
		b, err := boundary()
		if err != nil {
			return nil, err
		}
		return proof.SetBoundary{Boundary: b, Name: s.Name, Invertible: s.Invertible}, nil
	case "attach":
		g, err := generator()
		if err != nil {
			return nil, err
		}
		b, err := boundary()
		if err != nil {
			return nil, err
		}
		return proof.Attach{
			Generator: g,
			Inverse:   s.Inverse,
			Boundary:  core.BoundaryPath{Boundary: b, Depth: s.Depth},
			Embedding: s.Embedding,
		}, nil
	case "contract":
		loc, err := parseLocation(s.Location)
		if err != nil {
			return nil, err
		}
		bias, err := core.ParseBias(s.Bias)
		if err != nil {
			return nil, err
		}
		return proof.Contract{Location: loc, Height: s.Height, Count: s.Count, Bias: bias}, nil
	case "expand":
		loc, err := parseLocation(s.Location)
		if err != nil {
			return nil, err
		}
		if len(s.Point) != 2 {
			return nil, fmt.Errorf("expand needs a point of two heights, got %d", len(s.Point))
		}
		var point [2]core.Height
		for i, h := range s.Point {
			if point[i], err = core.ParseHeight(h); err != nil {
				return nil, err
			}
		}
		dir, err := core.ParseDirection(s.Direction)
		if err != nil {
			return nil, err
		}
		return proof.Expand{Location: loc, Point: point, Direction: dir}, nil
	case "bubble":
		return proof.Bubble{}, nil
	case "invert":
		return proof.Invert{}, nil
	case "descend_slice":
		idx, err := core.ParseSliceIndex(s.Slice)
		if err != nil {
			return nil, err
		}
		return proof.DescendSlice{Slice: idx}, nil
	case "ascend_slice":
		return proof.AscendSlice{Count: s.Count}, nil
	}
	return nil, fmt.Errorf("unknown action %q", s.Action)
}

func parseLocation(location []string) ([]core.SliceIndex, error) {
	var out []core.SliceIndex
	for _, s := range location {
		idx, err := core.ParseSliceIndex(s)
		if err != nil {
			return nil, err
		}
		out = append(out, idx)
	}
	return out, nil
}
