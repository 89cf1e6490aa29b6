package core

import (
	"fmt"
	"slices"
)

// Rewrite is either a Rewrite0 or a *RewriteN. Two rewrites are equal exactly
// when they compare equal with ==.
type Rewrite interface {
	// Dimension is the dimension of the diagrams the rewrite acts on.
	Dimension() int
	// IsIdentity reports whether the rewrite changes nothing.
	IsIdentity() bool
	String() string
	isRewrite()
}

// Rewrite0 relabels a point. The zero value is the identity; build other
// values with NewRewrite0 so that identities stay canonical.
type Rewrite0 struct {
	Source Diagram0 `json:"source"`
	Target Diagram0 `json:"target"`
}

// NewRewrite0 returns the rewrite from s to t, normalized to the zero value
// when s == t.
func NewRewrite0(s, t Diagram0) Rewrite0 {
	if s == t {
		return Rewrite0{}
	}
	return Rewrite0{Source: s, Target: t}
}

func (Rewrite0) isRewrite() {}
func (Rewrite0) Dimension() int { return 0 }
func (r Rewrite0) IsIdentity() bool { return r.Source == r.Target }

func (r Rewrite0) String() string {
	if r.IsIdentity() {
		return "Rewrite0(id)"
	}
	return fmt.Sprintf("Rewrite0(%s -> %s)", r.Source, r.Target)
}

// IsValid reports whether the relabelling respects dimensions: a point may
// only be rewritten into a higher-dimensional one, or degenerate into the
// Zero orientation of its own generator.
func (r Rewrite0) IsValid() bool {
	if r.IsIdentity() {
		return true
	}
	s, t := r.Source, r.Target
	if s.Generator.Dimension < t.Generator.Dimension {
		return true
	}
	return s.Generator == t.Generator && t.Orientation == Zero
}

// Cospan is a pair of rewrites into a common singular slice.
type Cospan struct {
	Forward  Rewrite `json:"forward"`
	Backward Rewrite `json:"backward"`
}

// IsIdentity reports whether both legs are identities.
func (c Cospan) IsIdentity() bool {
	return c.Forward.IsIdentity() && c.Backward.IsIdentity()
}

// Flip exchanges the legs.
func (c Cospan) Flip() Cospan { return Cospan{Forward: c.Backward, Backward: c.Forward} }

// Pad shifts both legs by an embedding.
func (c Cospan) Pad(embedding []int) Cospan {
	return Cospan{Forward: padRewrite(c.Forward, embedding), Backward: padRewrite(c.Backward, embedding)}
}

// Cone collapses the source cospans [Index, Index+len(Source)) into Target.
//
// SingularSlices[j] maps the j-th source singular slice into the target
// singular slice. RegularSlices has one more entry: RegularSlices[j] maps the
// j-th source regular slice of the block into the target singular slice. The
// first and last regular slices are the legs of Target.
type Cone struct {
	Index          int
	Source         []Cospan
	Target         Cospan
	RegularSlices  []Rewrite
	SingularSlices []Rewrite
}

// NewCone builds a cone and derives its regular slices by composition.
func NewCone(index int, source []Cospan, target Cospan, singular []Rewrite) (Cone, error) {
	if len(singular) != len(source) {
		return Cone{}, newError(ErrCodeMalformed, "cone", "%d source cospans but %d singular slices", len(source), len(singular))
	}
	reg := make([]Rewrite, len(source)+1)
	reg[0] = target.Forward
	if len(source) == 0 && target.Forward != target.Backward {
		return Cone{}, newError(ErrCodeMalformed, "cone", "insertion cone target legs differ")
	}
	reg[len(source)] = target.Backward
	for k := 1; k < len(source); k++ {
		r, err := Compose(source[k].Forward, singular[k])
		if err != nil {
			return Cone{}, wrapError(ErrCodeMalformed, "cone", err, "regular slice %d", k)
		}
		reg[k] = r
	}
	return Cone{
		Index:          index,
		Source:         slices.Clone(source),
		Target:         target,
		RegularSlices:  reg,
		SingularSlices: slices.Clone(singular),
	}, nil
}

// Len is the number of source cospans.
func (c Cone) Len() int { return len(c.Source) }

// IsUnit reports whether the cone maps a single cospan identically onto
// itself.
func (c Cone) IsUnit() bool {
	return len(c.Source) == 1 && c.Source[0] == c.Target && c.SingularSlices[0].IsIdentity()
}

// Equal compares cones field by field. Regular slices are derived and not
// compared.
func (c Cone) Equal(o Cone) bool {
	return c.Index == o.Index &&
		c.Target == o.Target &&
		slices.Equal(c.Source, o.Source) &&
		slices.Equal(c.SingularSlices, o.SingularSlices)
}

// Check verifies that every square of the cone commutes: each source leg
// followed by the adjacent singular slice equals the regular slice there.
func (c Cone) Check() error {
	n := len(c.Source)
	if n == 0 {
		if c.Target.Forward != c.Target.Backward {
			return newError(ErrCodeMalformed, "cone", "insertion cone at %d has distinct legs", c.Index)
		}
		return nil
	}
	for j := 0; j < n; j++ {
		f, err := Compose(c.Source[j].Forward, c.SingularSlices[j])
		if err != nil {
			return wrapError(ErrCodeMalformed, "cone", err, "forward square %d at %d", j, c.Index)
		}
		if f != c.RegularSlices[j] {
			return newError(ErrCodeMalformed, "cone", "forward square %d at %d does not commute", j, c.Index)
		}
		b, err := Compose(c.Source[j].Backward, c.SingularSlices[j])
		if err != nil {
			return wrapError(ErrCodeMalformed, "cone", err, "backward square %d at %d", j, c.Index)
		}
		if b != c.RegularSlices[j+1] {
			return newError(ErrCodeMalformed, "cone", "backward square %d at %d does not commute", j, c.Index)
		}
	}
	return nil
}

func (c Cone) checkDimension(dim int) error {
	check := func(r Rewrite, what string) error {
		if r.Dimension() != dim {
			return newError(ErrCodeDimension, "cone", "%s at %d has dimension %d, want %d", what, c.Index, r.Dimension(), dim)
		}
		return nil
	}
	for _, s := range c.Source {
		if err := check(s.Forward, "source leg"); err != nil {
			return err
		}
		if err := check(s.Backward, "source leg"); err != nil {
			return err
		}
	}
	if err := check(c.Target.Forward, "target leg"); err != nil {
		return err
	}
	if err := check(c.Target.Backward, "target leg"); err != nil {
		return err
	}
	for _, s := range c.SingularSlices {
		if err := check(s, "singular slice"); err != nil {
			return err
		}
	}
	return nil
}

func (c Cone) pad(shift int, rest []int) Cone {
	out := Cone{
		Index:          c.Index + shift,
		Source:         make([]Cospan, len(c.Source)),
		Target:         c.Target.Pad(rest),
		RegularSlices:  make([]Rewrite, len(c.RegularSlices)),
		SingularSlices: make([]Rewrite, len(c.SingularSlices)),
	}
	for i, s := range c.Source {
		out.Source[i] = s.Pad(rest)
	}
	for i, r := range c.RegularSlices {
		out.RegularSlices[i] = padRewrite(r, rest)
	}
	for i, r := range c.SingularSlices {
		out.SingularSlices[i] = padRewrite(r, rest)
	}
	return out
}

// RewriteN is an interned rewrite of dimension at least 1: an ordered list of
// non-overlapping, non-unit cones. The identity has no cones.
type RewriteN struct {
	in        *Interner
	id        uint64
	hash      uint64
	dimension int
	cones     []Cone
}

func (*RewriteN) isRewrite() {}

// Dimension returns n for a rewrite between n-diagrams.
func (r *RewriteN) Dimension() int { return r.dimension }

// IsIdentity reports whether r has no cones.
func (r *RewriteN) IsIdentity() bool { return len(r.cones) == 0 }

// Interner returns the interner that owns r.
func (r *RewriteN) Interner() *Interner { return r.in }

// ID is unique among live values of r's interner.
func (r *RewriteN) ID() uint64 { return r.id }

// Cones returns a copy of the cone list.
func (r *RewriteN) Cones() []Cone { return slices.Clone(r.cones) }

func (r *RewriteN) String() string {
	return fmt.Sprintf("RewriteN(dim=%d, cones=%d)", r.dimension, len(r.cones))
}

// SingularImage maps a singular height of the source to the singular height
// of the target it lands in.
func (r *RewriteN) SingularImage(j int) int {
	shift := 0
	for _, c := range r.cones {
		if j < c.Index {
			return j - shift
		}
		if j < c.Index+len(c.Source) {
			return c.Index - shift
		}
		shift += len(c.Source) - 1
	}
	return j - shift
}

// SingularPreimage returns the half-open range of source heights mapping to
// target height t. The range is empty when t is inserted by the rewrite.
func (r *RewriteN) SingularPreimage(t int) (start, end int) {
	shift := 0
	for _, c := range r.cones {
		ct := c.Index - shift
		if t < ct {
			break
		}
		if t == ct {
			return c.Index, c.Index + len(c.Source)
		}
		shift += len(c.Source) - 1
	}
	s := t + shift
	return s, s + 1
}

// TargetIndex returns the target height of the k-th cone.
func (r *RewriteN) TargetIndex(k int) int {
	shift := 0
	for _, c := range r.cones[:k] {
		shift += len(c.Source) - 1
	}
	return r.cones[k].Index - shift
}

// SingularSlice returns the slice rewrite at source height j: the cone's
// singular slice if a cone covers j, the identity otherwise.
func (r *RewriteN) SingularSlice(j int) Rewrite {
	for _, c := range r.cones {
		if j >= c.Index && j < c.Index+len(c.Source) {
			return c.SingularSlices[j-c.Index]
		}
	}
	return r.in.IdentityRewrite(r.dimension - 1)
}

// coneAt returns the cone whose target is height t, if any.
func (r *RewriteN) coneAt(t int) (Cone, bool) {
	shift := 0
	for _, c := range r.cones {
		ct := c.Index - shift
		if ct == t {
			return c, true
		}
		if ct > t {
			break
		}
		shift += len(c.Source) - 1
	}
	return Cone{}, false
}

// Pad shifts every cone by an embedding: the first entry moves cone indices,
// the rest pads the cospans and slices recursively.
func (r *RewriteN) Pad(embedding []int) *RewriteN {
	if allZero(embedding) || len(r.cones) == 0 {
		return r
	}
	cones := make([]Cone, len(r.cones))
	for i, c := range r.cones {
		cones[i] = c.pad(embedding[0], embedding[1:])
	}
	out, err := r.in.rewriteN(r.dimension, cones)
	if err != nil {
		panic(err)
	}
	return out
}

func padRewrite(r Rewrite, embedding []int) Rewrite {
	if n, ok := r.(*RewriteN); ok {
		return n.Pad(embedding)
	}
	return r
}

func allZero(xs []int) bool {
	for _, x := range xs {
		if x != 0 {
			return false
		}
	}
	return true
}

// IdentityRewrite returns the identity rewrite on diagrams of dimension dim.
func (in *Interner) IdentityRewrite(dim int) Rewrite {
	if dim == 0 {
		return Rewrite0{}
	}
	r, err := in.rewriteN(dim, nil)
	if err != nil {
		panic(err)
	}
	return r
}

// NewRewriteN interns a rewrite from cones built with NewCone.
func (in *Interner) NewRewriteN(dim int, cones []Cone) (*RewriteN, error) {
	return in.rewriteN(dim, cones)
}

// RewriteForward applies r to its source d and returns the target.
func RewriteForward(d Diagram, r Rewrite) (Diagram, error) {
	switch d := d.(type) {
	case Diagram0:
		r0, ok := r.(Rewrite0)
		if !ok {
			return nil, newError(ErrCodeDimension, "rewrite", "rewrite of dimension %d on a point", r.Dimension())
		}
		if r0.IsIdentity() {
			return d, nil
		}
		if r0.Source != d {
			return nil, newError(ErrCodeRewriting, "rewrite", "source %s does not match %s", r0.Source, d)
		}
		return r0.Target, nil
	case *DiagramN:
		rn, ok := r.(*RewriteN)
		if !ok || rn.dimension != d.dimension {
			return nil, newError(ErrCodeDimension, "rewrite", "rewrite of dimension %d on a %d-diagram", r.Dimension(), d.dimension)
		}
		if rn.IsIdentity() {
			return d, nil
		}
		out := make([]Cospan, 0, len(d.cospans))
		pos := 0
		for _, c := range rn.cones {
			end := c.Index + len(c.Source)
			if end > len(d.cospans) {
				return nil, newError(ErrCodeRewriting, "rewrite", "cone at %d exceeds size %d", c.Index, len(d.cospans))
			}
			if !slices.Equal(d.cospans[c.Index:end], c.Source) {
				return nil, newError(ErrCodeRewriting, "rewrite", "cone at %d does not match its source cospans", c.Index)
			}
			out = append(out, d.cospans[pos:c.Index]...)
			out = append(out, c.Target)
			pos = end
		}
		out = append(out, d.cospans[pos:]...)
		return d.in.diagramN(d.source, out)
	}
	return nil, newError(ErrCodeDimension, "rewrite", "unknown diagram %T", d)
}

// RewriteBackward recovers the source of r from its target d.
func RewriteBackward(d Diagram, r Rewrite) (Diagram, error) {
	switch d := d.(type) {
	case Diagram0:
		r0, ok := r.(Rewrite0)
		if !ok {
			return nil, newError(ErrCodeDimension, "rewrite", "rewrite of dimension %d on a point", r.Dimension())
		}
		if r0.IsIdentity() {
			return d, nil
		}
		if r0.Target != d {
			return nil, newError(ErrCodeRewriting, "rewrite", "target %s does not match %s", r0.Target, d)
		}
		return r0.Source, nil
	case *DiagramN:
		rn, ok := r.(*RewriteN)
		if !ok || rn.dimension != d.dimension {
			return nil, newError(ErrCodeDimension, "rewrite", "rewrite of dimension %d on a %d-diagram", r.Dimension(), d.dimension)
		}
		if rn.IsIdentity() {
			return d, nil
		}
		out := make([]Cospan, 0, len(d.cospans))
		pos, shift := 0, 0
		for _, c := range rn.cones {
			t := c.Index - shift
			if t < pos || t >= len(d.cospans) {
				return nil, newError(ErrCodeRewriting, "rewrite", "cone target %d out of range for size %d", t, len(d.cospans))
			}
			if d.cospans[t] != c.Target {
				return nil, newError(ErrCodeRewriting, "rewrite", "cone target %d does not match", t)
			}
			out = append(out, d.cospans[pos:t]...)
			out = append(out, c.Source...)
			pos = t + 1
			shift += len(c.Source) - 1
		}
		out = append(out, d.cospans[pos:]...)
		return d.in.diagramN(d.source, out)
	}
	return nil, newError(ErrCodeDimension, "rewrite", "unknown diagram %T", d)
}
