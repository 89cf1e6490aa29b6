package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/homotopy/internal/core"
	"github.com/roach88/homotopy/internal/proof"
)

// createTestStore creates a fresh on-disk store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestProof builds a proof with a point x and an arrow f: x -> x
// selected in the workspace.
func createTestProof(t *testing.T) *proof.Proof {
	t.Helper()
	ctx := context.Background()
	p := proof.New(proof.NewSignature(core.NewInterner()))
	x, err := p.Signature().AddZeroCell("x")
	if err != nil {
		t.Fatalf("AddZeroCell() failed: %v", err)
	}
	steps := []proof.Action{
		proof.SelectGenerator{Generator: x},
		proof.SetBoundary{Boundary: core.Source},
		proof.SelectGenerator{Generator: x},
		proof.SetBoundary{Boundary: core.Target, Name: "f"},
	}
	for _, a := range steps {
		if err := p.Update(ctx, a); err != nil {
			t.Fatalf("Update(%s) failed: %v", a.Kind(), err)
		}
	}
	f, ok := p.Signature().Lookup("f")
	if !ok {
		t.Fatal("generator f missing")
	}
	if err := p.Update(ctx, proof.SelectGenerator{Generator: f.Generator}); err != nil {
		t.Fatalf("Update(select f) failed: %v", err)
	}
	return p
}

// createPointProof builds a proof whose signature holds a single point x.
func createPointProof(t *testing.T) *proof.Proof {
	t.Helper()
	p := proof.New(proof.NewSignature(core.NewInterner()))
	if _, err := p.Signature().AddZeroCell("x"); err != nil {
		t.Fatalf("AddZeroCell() failed: %v", err)
	}
	return p
}
