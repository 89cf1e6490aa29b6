// Package testutil provides shared diagrams and signatures for tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/homotopy/internal/core"
)

// Generator ids used by Examples.
const (
	PointID = iota
	ArrowID
	MultID
	AutoID
	ScalarSID
	ScalarTID
	AssocID
	UnitID
)

// Examples is a small signature with the diagrams most tests need, built in
// its own interner:
//
//	X       0-cell
//	F       X -> X
//	M       F;F -> F
//	A       F -> F (invertible)
//	S, T    id(X) -> id(X)
//	Assoc   M;(M at 0) -> M;(M at 1)
//	Unit    id(X) -> F
type Examples struct {
	Interner  *core.Interner
	Signature *Cells

	X              core.Diagram0
	F, FF          *core.DiagramN
	M, A           *core.DiagramN
	S, T           *core.DiagramN
	Unit           *core.DiagramN
	Left, Right    *core.DiagramN
	Assoc          *core.DiagramN
	ABesideF       *core.DiagramN
	SideBySide     *core.DiagramN
	ScalarsStacked *core.DiagramN
}

// NewExamples builds the example signature in a fresh interner.
func NewExamples(t testing.TB) *Examples {
	t.Helper()
	in := core.NewInterner()
	sig := NewCells()
	ex := &Examples{Interner: in, Signature: sig, X: core.NewGenerator(PointID, 0).Point()}
	sig.Add(ex.X.Generator, ex.X, false)

	cell := func(id, dim int, source, target core.Diagram, invertible bool) *core.DiagramN {
		g := core.NewGenerator(id, dim)
		d, err := in.FromGenerator(g, source, target)
		require.NoError(t, err)
		sig.Add(g, d, invertible)
		return d
	}
	attach := func(base *core.DiagramN, b core.Boundary, depth int, embedding []int, c *core.DiagramN) *core.DiagramN {
		d, err := base.AttachCell(core.BoundaryPath{Boundary: b, Depth: depth}, embedding, c)
		require.NoError(t, err)
		return d
	}

	idx := in.Identity(ex.X)
	ex.F = cell(ArrowID, 1, ex.X, ex.X, false)
	ex.FF = attach(ex.F, core.Target, 0, nil, ex.F)
	ex.M = cell(MultID, 2, ex.FF, ex.F, false)
	ex.A = cell(AutoID, 2, ex.F, ex.F, true)
	ex.S = cell(ScalarSID, 2, idx, idx, false)
	ex.T = cell(ScalarTID, 2, idx, idx, false)
	ex.Unit = cell(UnitID, 2, idx, ex.F, false)

	ex.Left = attach(ex.M, core.Source, 0, []int{0}, ex.M)
	ex.Right = attach(ex.M, core.Source, 0, []int{1}, ex.M)
	ex.Assoc = cell(AssocID, 3, ex.Left, ex.Right, false)

	ex.ABesideF = attach(ex.A, core.Target, 1, nil, ex.F)
	ex.SideBySide = attach(ex.ABesideF, core.Target, 0, []int{1}, ex.A)
	ex.ScalarsStacked = attach(ex.S, core.Target, 0, nil, ex.T)
	return ex
}

// Generator returns the generator with the given example id.
func (ex *Examples) Generator(id int) core.Generator {
	dims := map[int]int{PointID: 0, ArrowID: 1, MultID: 2, AutoID: 2, ScalarSID: 2, ScalarTID: 2, AssocID: 3, UnitID: 2}
	return core.NewGenerator(id, dims[id])
}
