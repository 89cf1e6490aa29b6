package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssociator(t *testing.T) {
	fx := newFixture(t)

	assert.Equal(t, 3, fx.assoc.Dimension())
	assert.Equal(t, 1, fx.assoc.Size())
	assert.Equal(t, Diagram(fx.left), fx.assoc.Source())
	assert.Equal(t, Diagram(fx.right), fx.assoc.Target())

	// Both sides multiply three wires down to one.
	fff := asN(t, fx.left.Source())
	assert.Equal(t, 3, fff.Size())
	assert.Equal(t, Diagram(fx.f), fx.right.Target())

	// left applies m to the first pair, right to the second.
	lower := asN(t, fx.left.SingularSlice(0))
	assert.Equal(t, Diagram(gen(2, 2).Point()), lower.SingularSlice(0))
	assert.Equal(t, Diagram(gen(1, 1).Point()), lower.SingularSlice(1))

	lower = asN(t, fx.right.SingularSlice(0))
	assert.Equal(t, Diagram(gen(1, 1).Point()), lower.SingularSlice(0))
	assert.Equal(t, Diagram(gen(2, 2).Point()), lower.SingularSlice(1))

	sing := asN(t, fx.assoc.SingularSlice(0))
	assert.Equal(t, 1, sing.Size())
	assert.Equal(t, Diagram(fff), sing.Source())
}

func TestAssociator_ConesCommute(t *testing.T) {
	fx := newFixture(t)

	for _, d := range []*DiagramN{fx.left, fx.right, fx.assoc} {
		for _, c := range d.Cospans() {
			for _, r := range []Rewrite{c.Forward, c.Backward} {
				rn, ok := r.(*RewriteN)
				require.True(t, ok)
				for _, cone := range rn.Cones() {
					assert.NoError(t, cone.Check())
				}
			}
		}
	}
}
