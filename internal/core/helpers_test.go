package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// fixture is a small signature built in an isolated interner:
//
//	x       0-cell
//	f       x -> x
//	m       f;f -> f
//	a       f -> f
//	s, t    id(x) -> id(x)
//	assoc   m;(m at 0) -> m;(m at 1)
type fixture struct {
	in *Interner

	x              Diagram0
	f, ff          *DiagramN
	m, a           *DiagramN
	s, t           *DiagramN
	left, right    *DiagramN
	assoc          *DiagramN
	aBesideF       *DiagramN
	sideBySide     *DiagramN
	scalarsStacked *DiagramN
}

func gen(id, dim int) Generator { return NewGenerator(id, dim) }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	in := NewInterner()
	fx := &fixture{in: in, x: gen(0, 0).Point()}
	var err error

	fx.f, err = in.FromGenerator(gen(1, 1), fx.x, fx.x)
	require.NoError(t, err)
	fx.ff, err = fx.f.AttachCell(BoundaryPath{Boundary: Target}, nil, fx.f)
	require.NoError(t, err)
	fx.m, err = in.FromGenerator(gen(2, 2), fx.ff, fx.f)
	require.NoError(t, err)
	fx.a, err = in.FromGenerator(gen(3, 2), fx.f, fx.f)
	require.NoError(t, err)

	idx := in.Identity(fx.x)
	fx.s, err = in.FromGenerator(gen(4, 2), idx, idx)
	require.NoError(t, err)
	fx.t, err = in.FromGenerator(gen(5, 2), idx, idx)
	require.NoError(t, err)

	fx.left, err = fx.m.AttachCell(BoundaryPath{Boundary: Source}, []int{0}, fx.m)
	require.NoError(t, err)
	fx.right, err = fx.m.AttachCell(BoundaryPath{Boundary: Source}, []int{1}, fx.m)
	require.NoError(t, err)
	fx.assoc, err = in.FromGenerator(gen(6, 3), fx.left, fx.right)
	require.NoError(t, err)

	fx.aBesideF, err = fx.a.AttachCell(BoundaryPath{Boundary: Target, Depth: 1}, nil, fx.f)
	require.NoError(t, err)
	fx.sideBySide, err = fx.aBesideF.AttachCell(BoundaryPath{Boundary: Target}, []int{1}, fx.a)
	require.NoError(t, err)

	fx.scalarsStacked, err = fx.s.AttachCell(BoundaryPath{Boundary: Target}, nil, fx.t)
	require.NoError(t, err)
	return fx
}

func asN(t *testing.T, d Diagram) *DiagramN {
	t.Helper()
	n, ok := d.(*DiagramN)
	require.True(t, ok, "expected an n-diagram, got %T", d)
	return n
}

func forward(t *testing.T, d Diagram, r Rewrite) *DiagramN {
	t.Helper()
	out, err := RewriteForward(d, r)
	require.NoError(t, err)
	return asN(t, out)
}

func backward(t *testing.T, d Diagram, r Rewrite) *DiagramN {
	t.Helper()
	out, err := RewriteBackward(d, r)
	require.NoError(t, err)
	return asN(t, out)
}

var bg = context.Background()
