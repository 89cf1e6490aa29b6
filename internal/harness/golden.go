package harness

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/homotopy/internal/serialize"
)

// GoldenDir is the goldie fixture directory used by package tests.
const GoldenDir = "testdata/scenarios/golden"

// TraceSnapshot captures the complete trace for a scenario execution.
type TraceSnapshot struct {
	Scenario string       `json:"scenario"`
	Trace    []TraceEvent `json:"trace"`
}

// toCanonical converts a TraceSnapshot to a canonical value so golden files
// are byte-stable.
func (s *TraceSnapshot) toCanonical() serialize.Object {
	trace := make(serialize.Array, len(s.Trace))
	for i, ev := range s.Trace {
		trace[i] = serialize.Object{
			"step":      serialize.Int(ev.Step),
			"action":    serialize.String(ev.Action),
			"outcome":   serialize.String(ev.Outcome),
			"seq":       serialize.Int(ev.Seq),
			"dimension": serialize.Int(ev.Dimension),
			"size":      serialize.Int(ev.Size),
		}
	}
	return serialize.Object{
		"scenario": serialize.String(s.Scenario),
		"trace":    trace,
	}
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/scenarios/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the given result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{Scenario: scenarioName, Trace: result.Trace}
	traceJSON, err := snapshot.Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}

// Marshal returns the canonical JSON golden files hold.
func (s *TraceSnapshot) Marshal() ([]byte, error) {
	return serialize.MarshalCanonical(s.toCanonical())
}

// GoldenPath returns where the golden trace of the scenario in scenarioFile
// lives: a golden directory next to the scenario, named after the file.
func GoldenPath(scenarioFile string) string {
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(scenarioFile), "golden", name+".golden")
}
