package core

import (
	"fmt"
	"slices"
	"strings"
)

// Diagram is either a Diagram0 or a *DiagramN. Two diagrams are equal exactly
// when they compare equal with ==.
type Diagram interface {
	// Dimension is 0 for a point and n for an n-diagram.
	Dimension() int
	// Identity returns the diagram one dimension up with no cospans.
	Identity() *DiagramN
	String() string
	isDiagram()
}

// Diagram0 is a point labelled by a generator.
type Diagram0 struct {
	Generator   Generator   `json:"generator"`
	Orientation Orientation `json:"orientation"`
}

func (Diagram0) isDiagram() {}
func (Diagram0) Dimension() int { return 0 }

// Identity returns the identity 1-diagram on p in the default interner.
// Points carry no interner, so the result cannot be combined with diagrams
// from a NewInterner instance; use that interner's Identity instead.
func (p Diagram0) Identity() *DiagramN { return defaultInterner.Identity(p) }

// Inverse flips the orientation of p.
func (p Diagram0) Inverse() Diagram0 {
	p.Orientation = p.Orientation.Flip()
	return p
}

func (p Diagram0) String() string {
	return p.Generator.String() + p.Orientation.String()
}

// DiagramN is an interned diagram of dimension at least 1. The zero value is
// not usable; build values with Interner.NewDiagramN, FromGenerator, Identity
// or one of the structural operations.
type DiagramN struct {
	in        *Interner
	id        uint64
	hash      uint64
	dimension int
	source    Diagram
	cospans   []Cospan
	slices    []Diagram
}

func (*DiagramN) isDiagram() {}

// Dimension returns n for an n-diagram.
func (d *DiagramN) Dimension() int { return d.dimension }

// Interner returns the interner that owns d.
func (d *DiagramN) Interner() *Interner { return d.in }

// ID is unique among live values of d's interner.
func (d *DiagramN) ID() uint64 { return d.id }

// Source returns the source boundary.
func (d *DiagramN) Source() Diagram { return d.source }

// Target returns the target boundary, the last regular slice.
func (d *DiagramN) Target() Diagram { return d.slices[len(d.slices)-1] }

// Boundary returns the source or target.
func (d *DiagramN) Boundary(b Boundary) Diagram {
	if b == Source {
		return d.source
	}
	return d.Target()
}

// Size returns the number of cospans.
func (d *DiagramN) Size() int { return len(d.cospans) }

// Cospans returns a copy of the cospan list.
func (d *DiagramN) Cospans() []Cospan { return slices.Clone(d.cospans) }

// Cospan returns the i-th cospan.
func (d *DiagramN) Cospan(i int) Cospan { return d.cospans[i] }

// Slices returns all 2*Size()+1 slices, alternating regular and singular.
func (d *DiagramN) Slices() []Diagram { return slices.Clone(d.slices) }

// RegularSlice returns the i-th regular slice, 0 <= i <= Size().
func (d *DiagramN) RegularSlice(i int) Diagram { return d.slices[2*i] }

// SingularSlice returns the i-th singular slice, 0 <= i < Size().
func (d *DiagramN) SingularSlice(i int) Diagram { return d.slices[2*i+1] }

// Slice returns the slice at the given index, or false if it is out of range.
func (d *DiagramN) Slice(idx SliceIndex) (Diagram, bool) {
	if !idx.Interior {
		return d.Boundary(idx.Boundary), true
	}
	return d.SliceAt(idx.Height)
}

// SliceAt returns the slice at height h, or false if it is out of range.
func (d *DiagramN) SliceAt(h Height) (Diagram, bool) {
	k := h.Int()
	if h.Index < 0 || k >= len(d.slices) {
		return nil, false
	}
	return d.slices[k], true
}

// Identity returns the (n+1)-diagram with source d and no cospans.
func (d *DiagramN) Identity() *DiagramN { return d.in.Identity(d) }

func (d *DiagramN) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "DiagramN(dim=%d, size=%d, source=%s)", d.dimension, len(d.cospans), d.source)
	return b.String()
}

// Identity returns the diagram with source d and no cospans.
func (in *Interner) Identity(d Diagram) *DiagramN {
	id, err := in.diagramN(d, nil)
	if err != nil {
		panic(err)
	}
	return id
}

// NewDiagramN interns the diagram with the given source and cospans. It fails
// when a cospan does not apply to the slice it follows.
func (in *Interner) NewDiagramN(source Diagram, cospans []Cospan) (*DiagramN, error) {
	return in.diagramN(source, cospans)
}

// NewDiagramN is Interner.NewDiagramN on the interner owning source, or the
// default interner when source is a point.
func NewDiagramN(source Diagram, cospans []Cospan) (*DiagramN, error) {
	rs := make([]Rewrite, 0, 2*len(cospans))
	for _, c := range cospans {
		rs = append(rs, c.Forward, c.Backward)
	}
	return internerOf([]Diagram{source}, rs).diagramN(source, cospans)
}

func computeSlices(source Diagram, cospans []Cospan) ([]Diagram, error) {
	out := make([]Diagram, 0, 2*len(cospans)+1)
	reg := source
	out = append(out, reg)
	for i, c := range cospans {
		sing, err := RewriteForward(reg, c.Forward)
		if err != nil {
			return nil, wrapError(ErrCodeMalformed, "diagram", err, "cospan %d forward", i)
		}
		reg, err = RewriteBackward(sing, c.Backward)
		if err != nil {
			return nil, wrapError(ErrCodeMalformed, "diagram", err, "cospan %d backward", i)
		}
		out = append(out, sing, reg)
	}
	return out, nil
}

// BoundaryOf walks a boundary path: Depth steps into the source, then the
// chosen boundary.
func BoundaryOf(d Diagram, path BoundaryPath) (Diagram, error) {
	cur := d
	for i := 0; i <= path.Depth; i++ {
		n, ok := cur.(*DiagramN)
		if !ok {
			return nil, newError(ErrCodeDimension, "boundary", "path %s exceeds dimension %d", path, d.Dimension())
		}
		if i == path.Depth {
			return n.Boundary(path.Boundary), nil
		}
		cur = n.source
	}
	return cur, nil
}

// SliceAlong follows interior heights downwards from d.
func SliceAlong(d Diagram, path []Height) (Diagram, error) {
	cur := d
	for _, h := range path {
		n, ok := cur.(*DiagramN)
		if !ok {
			return nil, newError(ErrCodeDimension, "slice", "height %s below dimension 0", h)
		}
		s, ok := n.SliceAt(h)
		if !ok {
			return nil, newError(ErrCodeDimension, "slice", "height %s out of range for size %d", h, n.Size())
		}
		cur = s
	}
	return cur, nil
}

// Points calls yield for every point reachable through singular slices,
// counting multiplicity. These are the generator occurrences of d.
func Points(d Diagram, yield func(p Diagram0, count int)) {
	counts := pointCounts(d, make(map[*DiagramN]map[Diagram0]int))
	for p, c := range counts {
		yield(p, c)
	}
}

func pointCounts(d Diagram, memo map[*DiagramN]map[Diagram0]int) map[Diagram0]int {
	switch d := d.(type) {
	case Diagram0:
		return map[Diagram0]int{d: 1}
	case *DiagramN:
		if m, ok := memo[d]; ok {
			return m
		}
		m := make(map[Diagram0]int)
		for i := range d.cospans {
			for p, c := range pointCounts(d.SingularSlice(i), memo) {
				m[p] += c
			}
		}
		memo[d] = m
		return m
	}
	return nil
}

// Generators returns every generator labelling some point of d, including
// points that only occur in regular slices, sorted.
func Generators(d Diagram) []Generator {
	seen := make(map[Generator]bool)
	visited := make(map[*DiagramN]bool)
	var walk func(Diagram)
	walk = func(d Diagram) {
		switch d := d.(type) {
		case Diagram0:
			seen[d.Generator] = true
		case *DiagramN:
			if visited[d] {
				return
			}
			visited[d] = true
			for _, s := range d.slices {
				walk(s)
			}
		}
	}
	walk(d)
	out := make([]Generator, 0, len(seen))
	for g := range seen {
		out = append(out, g)
	}
	slices.SortFunc(out, Generator.Compare)
	return out
}
