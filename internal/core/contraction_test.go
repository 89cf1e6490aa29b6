package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContract_SideBySide(t *testing.T) {
	fx := newFixture(t)

	r, err := ContractInPath(bg, fx.sideBySide, nil, 0, 2, NoBias)
	require.NoError(t, err)

	got := forward(t, fx.sideBySide, r)
	assert.Equal(t, 1, got.Size())
	assert.Equal(t, Diagram(fx.ff), got.Source())
	assert.Equal(t, Diagram(fx.ff), got.Target())

	aLevel := asN(t, fx.a.SingularSlice(0)).Cospan(0)
	sing := asN(t, got.SingularSlice(0))
	assert.Equal(t, []Cospan{aLevel, aLevel}, sing.Cospans())
}

func TestContract_ScalarsNeedBias(t *testing.T) {
	fx := newFixture(t)

	_, err := ContractInPath(bg, fx.scalarsStacked, nil, 0, 2, NoBias)
	require.Error(t, err)
	assert.True(t, HasCode(err, ErrCodeContraction))
}

func TestContract_ScalarsWithBias(t *testing.T) {
	fx := newFixture(t)
	sLevel := asN(t, fx.s.SingularSlice(0)).Cospan(0)
	tLevel := asN(t, fx.t.SingularSlice(0)).Cospan(0)

	tests := []struct {
		name string
		bias Bias
		want []Cospan
	}{
		{"lower keeps order", BiasLower, []Cospan{sLevel, tLevel}},
		{"higher swaps", BiasHigher, []Cospan{tLevel, sLevel}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ContractInPath(bg, fx.scalarsStacked, nil, 0, 2, tt.bias)
			require.NoError(t, err)
			got := forward(t, fx.scalarsStacked, r)
			assert.Equal(t, 1, got.Size())
			assert.Equal(t, tt.want, asN(t, got.SingularSlice(0)).Cospans())
		})
	}
}

func TestContract_ThreeLevels(t *testing.T) {
	fx := newFixture(t)
	sLevel := asN(t, fx.s.SingularSlice(0)).Cospan(0)
	tLevel := asN(t, fx.t.SingularSlice(0)).Cospan(0)

	stt, err := fx.scalarsStacked.AttachCell(BoundaryPath{Boundary: Target}, nil, fx.t)
	require.NoError(t, err)
	require.Equal(t, 3, stt.Size())

	tests := []struct {
		name string
		bias Bias
		want []Cospan
	}{
		{"lower keeps order", BiasLower, []Cospan{sLevel, tLevel, tLevel}},
		{"higher reverses", BiasHigher, []Cospan{tLevel, tLevel, sLevel}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ContractInPath(bg, stt, nil, 0, 3, tt.bias)
			require.NoError(t, err)
			got := forward(t, stt, r)
			assert.Equal(t, 1, got.Size())
			assert.Equal(t, tt.want, asN(t, got.SingularSlice(0)).Cospans())
		})
	}

	_, err = ContractInPath(bg, stt, nil, 0, 3, NoBias)
	assert.True(t, HasCode(err, ErrCodeContraction))

	// Merging only the upper two leaves s below.
	r, err := ContractInPath(bg, stt, nil, 1, 2, BiasLower)
	require.NoError(t, err)
	got := forward(t, stt, r)
	assert.Equal(t, 2, got.Size())
	assert.Equal(t, fx.s.SingularSlice(0), got.SingularSlice(0))
}

func TestContract_CountOutOfRange(t *testing.T) {
	fx := newFixture(t)

	for _, count := range []int{0, 1, 3} {
		_, err := ContractInPath(bg, fx.scalarsStacked, nil, 0, count, BiasLower)
		assert.True(t, HasCode(err, ErrCodeContraction), "count %d", count)
	}
}

func TestContract_BiasedInverseLaw(t *testing.T) {
	fx := newFixture(t)

	tests := []struct {
		name string
		bias Bias
		dir  Direction
	}{
		{"lower then backward", BiasLower, Backward},
		{"higher then forward", BiasHigher, Forward},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ContractInPath(bg, fx.scalarsStacked, nil, 0, 2, tt.bias)
			require.NoError(t, err)
			merged := forward(t, fx.scalarsStacked, r)

			e, err := ExpandInPath(bg, merged, nil, [2]Height{Singular(0), Singular(0)}, tt.dir)
			require.NoError(t, err)
			assert.Equal(t, Diagram(fx.scalarsStacked), Diagram(backward(t, merged, e)))

			again, err := ContractInPath(bg, backward(t, merged, e), nil, 0, 2, tt.bias)
			require.NoError(t, err)
			assert.Equal(t, Diagram(merged), Diagram(forward(t, fx.scalarsStacked, again)))
		})
	}
}

func TestContract_Bounds(t *testing.T) {
	fx := newFixture(t)

	_, err := ContractInPath(bg, fx.sideBySide, nil, 1, 2, NoBias)
	assert.True(t, HasCode(err, ErrCodeContraction))

	_, err = ContractInPath(bg, fx.a, nil, 0, 2, NoBias)
	assert.True(t, HasCode(err, ErrCodeContraction))

	_, err = ContractInPath(bg, fx.sideBySide, []Height{Regular(0)}, 0, 2, NoBias)
	assert.True(t, HasCode(err, ErrCodeContraction))
}

func TestContract_InPath(t *testing.T) {
	fx := newFixture(t)

	// A 3-diagram with one trivial level over the side-by-side 2-diagram.
	id2 := fx.in.IdentityRewrite(2)
	d, err := fx.in.NewDiagramN(fx.sideBySide, []Cospan{{Forward: id2, Backward: id2}})
	require.NoError(t, err)

	inner, err := ContractInPath(bg, fx.sideBySide, nil, 0, 2, NoBias)
	require.NoError(t, err)

	r, err := ContractInPath(bg, d, []Height{Singular(0)}, 0, 2, NoBias)
	require.NoError(t, err)
	got := forward(t, d, r)
	assert.Equal(t, 1, asN(t, got.SingularSlice(0)).Size())
	assert.Equal(t, Cospan{Forward: inner, Backward: inner}, got.Cospan(0))
}

func TestDiagramN_ContractAttachesHomotopy(t *testing.T) {
	fx := newFixture(t)

	h, err := fx.sideBySide.Identity().Contract(bg, BoundaryPath{Boundary: Target}, nil, 0, 2, NoBias)
	require.NoError(t, err)
	assert.Equal(t, Diagram(fx.sideBySide), h.Source())
	assert.Equal(t, 1, asN(t, h.Target()).Size())
	assert.Equal(t, 1, h.Size())

	hs, err := fx.sideBySide.Identity().Contract(bg, BoundaryPath{Boundary: Source}, nil, 0, 2, NoBias)
	require.NoError(t, err)
	assert.Equal(t, Diagram(fx.sideBySide), hs.Target())
	assert.Equal(t, h.Target(), hs.Source())
}

func TestContract_Cancelled(t *testing.T) {
	fx := newFixture(t)
	ctx, cancel := context.WithCancel(bg)
	cancel()

	_, err := ContractInPath(ctx, fx.sideBySide, nil, 0, 2, NoBias)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCancelled))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestContract_ParallelMatchesSequential(t *testing.T) {
	fx := newFixture(t)

	seq, err := ContractInPath(bg, fx.scalarsStacked, nil, 0, 2, BiasLower)
	require.NoError(t, err)
	par, err := ContractInPath(WithExecutor(bg, Parallel{}), fx.scalarsStacked, nil, 0, 2, BiasLower)
	require.NoError(t, err)
	assert.Same(t, seq, par)

	seq, err = ContractInPath(bg, fx.sideBySide, nil, 0, 2, NoBias)
	require.NoError(t, err)
	par, err = ContractInPath(WithExecutor(bg, Parallel{}), fx.sideBySide, nil, 0, 2, NoBias)
	require.NoError(t, err)
	assert.Same(t, seq, par)
}
