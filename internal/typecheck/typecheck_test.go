package typecheck

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/homotopy/internal/core"
	"github.com/roach88/homotopy/internal/testutil"
)

var bg = context.Background()

func requireCode(t *testing.T, err error, code string) *TypecheckError {
	t.Helper()
	require.Error(t, err)
	var te *TypecheckError
	require.True(t, errors.As(err, &te), "expected *TypecheckError, got %T: %v", err, err)
	assert.Equal(t, code, te.Code, te.Error())
	return te
}

// =============================================================================
// Well-typed diagrams
// =============================================================================

func TestCheckExamplesDeep(t *testing.T) {
	ex := testutil.NewExamples(t)

	cases := map[string]core.Diagram{
		"point":           ex.X,
		"arrow":           ex.F,
		"composite":       ex.FF,
		"mult":            ex.M,
		"left":            ex.Left,
		"associator":      ex.Assoc,
		"side by side":    ex.SideBySide,
		"scalars stacked": ex.ScalarsStacked,
		"unit":            ex.Unit,
		"identity":        ex.Assoc.Identity(),
	}
	for name, d := range cases {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, Check(bg, ex.Signature, d, Deep))
		})
	}
}

func TestCheckContractedDiagram(t *testing.T) {
	ex := testutil.NewExamples(t)

	d, err := ex.SideBySide.Contract(bg, core.BoundaryPath{Boundary: core.Target}, nil, 0, 2, core.NoBias)
	require.NoError(t, err)
	assert.NoError(t, Check(bg, ex.Signature, d, Deep))

	contracted := d.Target().(*core.DiagramN)
	assert.Equal(t, 1, contracted.Size())
	assert.NoError(t, Check(bg, ex.Signature, contracted, Deep))
}

func TestCheckInvertedInvertible(t *testing.T) {
	ex := testutil.NewExamples(t)

	inv, err := ex.A.Inverse()
	require.NoError(t, err)
	assert.NoError(t, Check(bg, ex.Signature, inv, Deep))

	withInverse, err := ex.A.AttachCell(core.BoundaryPath{Boundary: core.Target}, nil, inv)
	require.NoError(t, err)
	assert.NoError(t, Check(bg, ex.Signature, withInverse, Deep))
}

func TestCheckBubble(t *testing.T) {
	ex := testutil.NewExamples(t)

	b, err := ex.M.Bubble()
	require.NoError(t, err)
	assert.NoError(t, Check(bg, ex.Signature, b, Deep))
}

// =============================================================================
// Failures
// =============================================================================

func TestCheckUnknownGenerator(t *testing.T) {
	ex := testutil.NewExamples(t)
	sig := testutil.NewCells()
	sig.Add(ex.X.Generator, ex.X, false)

	requireCode(t, Check(bg, sig, ex.M, Shallow), ErrUnknownGenerator)
}

func TestCheckGeneratorDimension(t *testing.T) {
	ex := testutil.NewExamples(t)
	sig := testutil.NewCells()
	sig.Add(ex.X.Generator, ex.X, false)
	sig.Add(ex.Generator(testutil.ArrowID), ex.M, false)

	requireCode(t, Check(bg, sig, ex.F, Shallow), ErrGeneratorDimension)
}

func TestCheckNotInvertible(t *testing.T) {
	ex := testutil.NewExamples(t)

	inv, err := ex.M.Inverse()
	require.NoError(t, err)
	requireCode(t, Check(bg, ex.Signature, inv, Shallow), ErrNotInvertible)
}

func TestCheckNeighbourhoodMismatch(t *testing.T) {
	ex := testutil.NewExamples(t)
	sig := testutil.NewCells()
	for _, id := range []int{testutil.PointID, testutil.ArrowID, testutil.MultID} {
		cell, _ := ex.Signature.Cell(ex.Generator(id))
		sig.Add(ex.Generator(id), cell, false)
	}
	// A claims to be M-shaped, so its occurrence in A has no witness.
	sig.Add(ex.Generator(testutil.AutoID), ex.M, false)

	te := requireCode(t, Check(bg, sig, ex.A, Shallow), ErrNeighbourhood)
	assert.Equal(t, []core.SliceIndex{core.AtHeight(core.Singular(0))}, te.Path)
}

func TestCheckMalformedCell(t *testing.T) {
	ex := testutil.NewExamples(t)
	sig := testutil.NewCells()
	for _, id := range []int{testutil.PointID, testutil.ArrowID} {
		cell, _ := ex.Signature.Cell(ex.Generator(id))
		sig.Add(ex.Generator(id), cell, false)
	}
	// Two levels cannot be the neighbourhood of a single point.
	sig.Add(ex.Generator(testutil.AutoID), ex.SideBySide, true)

	te := requireCode(t, Check(bg, sig, ex.A, Shallow), ErrMalformedCell)
	assert.Equal(t, []core.SliceIndex{core.AtHeight(core.Singular(0))}, te.Path)
}

func TestCheckIllTypedContraction(t *testing.T) {
	ex := testutil.NewExamples(t)

	// Contracting the two stacked copies of M merges them into one point
	// whose neighbourhood is not M's cell.
	d, err := ex.Left.Identity().Contract(bg, core.BoundaryPath{Boundary: core.Target}, nil, 0, 2, core.NoBias)
	require.NoError(t, err)

	assert.NoError(t, Check(bg, ex.Signature, d, Shallow))
	requireCode(t, Check(bg, ex.Signature, d, Deep), ErrNeighbourhood)
	requireCode(t, Check(bg, ex.Signature, d.Target(), Shallow), ErrNeighbourhood)
}

func TestCheckConeNotCommuting(t *testing.T) {
	ex := testutil.NewExamples(t)
	in := ex.Interner
	f := ex.Generator(testutil.ArrowID).Point()
	m := ex.Generator(testutil.MultID).Point()
	a := ex.Generator(testutil.AutoID).Point()

	source := ex.F.Cospan(0)
	target := core.Cospan{Forward: core.NewRewrite0(ex.X, m), Backward: core.NewRewrite0(ex.X, m)}
	cone, err := core.NewCone(0, []core.Cospan{source}, target, []core.Rewrite{core.NewRewrite0(f, a)})
	require.NoError(t, err)
	r, err := in.NewRewriteN(1, []core.Cone{cone})
	require.NoError(t, err)
	d, err := in.NewDiagramN(ex.F, []core.Cospan{{Forward: r, Backward: in.IdentityRewrite(1)}})
	require.NoError(t, err)

	requireCode(t, Check(bg, ex.Signature, d, Shallow), ErrConeNotCommuting)
}

func TestCheckInvalidPointMap(t *testing.T) {
	ex := testutil.NewExamples(t)
	f := ex.Generator(testutil.ArrowID).Point()

	d, err := ex.Interner.NewDiagramN(f, []core.Cospan{{
		Forward:  core.NewRewrite0(f, ex.X),
		Backward: core.NewRewrite0(ex.X, ex.X),
	}})
	require.NoError(t, err)

	requireCode(t, Check(bg, ex.Signature, d, Shallow), ErrInvalidPointMap)
}

func TestCheckShallowSkipsSlices(t *testing.T) {
	ex := testutil.NewExamples(t)
	f := ex.Generator(testutil.ArrowID).Point()

	bad, err := ex.Interner.NewDiagramN(f, []core.Cospan{{
		Forward:  core.NewRewrite0(f, ex.X),
		Backward: core.NewRewrite0(ex.X, ex.X),
	}})
	require.NoError(t, err)
	wrapped := bad.Identity()

	assert.NoError(t, Check(bg, ex.Signature, wrapped, Shallow))
	requireCode(t, Check(bg, ex.Signature, wrapped, Deep), ErrInvalidPointMap)
}

func TestCheckCancelled(t *testing.T) {
	ex := testutil.NewExamples(t)
	ctx, cancel := context.WithCancel(bg)
	cancel()

	err := Check(ctx, ex.Signature, ex.Assoc, Deep)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": Shallow, "shallow": Shallow, "Deep": Deep} {
		got, err := ParseMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseMode("thorough")
	assert.Error(t, err)
}
