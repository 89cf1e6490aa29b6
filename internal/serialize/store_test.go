package serialize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/homotopy/internal/core"
	"github.com/roach88/homotopy/internal/testutil"
	"github.com/roach88/homotopy/internal/typecheck"
)

func TestStoreRoundTripSameInterner(t *testing.T) {
	ex := testutil.NewExamples(t)

	for name, d := range map[string]core.Diagram{
		"point":        ex.X,
		"associator":   ex.Assoc,
		"side by side": ex.SideBySide,
		"scalars":      ex.ScalarsStacked,
	} {
		t.Run(name, func(t *testing.T) {
			s := NewStore()
			key, err := s.PutDiagram(d)
			require.NoError(t, err)

			got, err := s.NewDecoder(ex.Interner).Diagram(key)
			require.NoError(t, err)
			assert.Equal(t, d, got)
			if n, ok := d.(*core.DiagramN); ok {
				assert.Same(t, n, got)
			}
		})
	}
}

func TestStoreRoundTripFreshInterner(t *testing.T) {
	ex := testutil.NewExamples(t)
	s := NewStore()
	key, err := s.PutDiagram(ex.Assoc)
	require.NoError(t, err)

	in := core.NewInterner()
	got, err := s.NewDecoder(in).Diagram(key)
	require.NoError(t, err)
	n, ok := got.(*core.DiagramN)
	require.True(t, ok)
	assert.Same(t, in, n.Interner())
	assert.Equal(t, 3, n.Dimension())
	assert.Equal(t, ex.Assoc.Size(), n.Size())

	again := NewStore()
	key2, err := again.PutDiagram(n)
	require.NoError(t, err)
	assert.Equal(t, key, key2, "keys depend on content only")
	assert.Equal(t, s.Keys(), again.Keys())
}

func TestStoreSharesSubstructure(t *testing.T) {
	ex := testutil.NewExamples(t)
	s := NewStore()
	_, err := s.PutDiagram(ex.Left)
	require.NoError(t, err)
	n := s.Len()

	_, err = s.PutDiagram(ex.Left)
	require.NoError(t, err)
	assert.Equal(t, n, s.Len())

	_, err = s.PutDiagram(ex.Assoc)
	require.NoError(t, err)
	assert.Greater(t, s.Len(), n)
}

func TestStoreDecodedTypechecks(t *testing.T) {
	ex := testutil.NewExamples(t)
	s := NewStore()
	key, err := s.PutDiagram(ex.SideBySide)
	require.NoError(t, err)

	got, err := s.NewDecoder(ex.Interner).Diagram(key)
	require.NoError(t, err)
	assert.NoError(t, typecheck.Check(context.Background(), ex.Signature, got, typecheck.Deep))
}

func TestStoreRewriteRoundTrip(t *testing.T) {
	ex := testutil.NewExamples(t)
	r := ex.SideBySide.Cospan(1).Forward
	s := NewStore()
	key, err := s.PutRewrite(r)
	require.NoError(t, err)

	got, err := s.NewDecoder(ex.Interner).Rewrite(key)
	require.NoError(t, err)
	assert.Equal(t, r, got)
}

func TestStoreRejectsTampering(t *testing.T) {
	ex := testutil.NewExamples(t)
	s := NewStore()
	key, err := s.PutDiagram(ex.F)
	require.NoError(t, err)
	data, ok := s.Node(key)
	require.True(t, ok)

	other := NewStore()
	assert.NoError(t, other.Add(key, data))
	assert.Error(t, other.Add(key, []byte(`{"kind":"point"}`)))
}

func TestDecoderMissingAndWrongKind(t *testing.T) {
	ex := testutil.NewExamples(t)
	s := NewStore()
	key, err := s.PutDiagram(ex.F)
	require.NoError(t, err)
	dec := s.NewDecoder(ex.Interner)

	_, err = dec.Diagram("nope")
	assert.Error(t, err)

	_, err = dec.Rewrite(key)
	assert.Error(t, err)
}
