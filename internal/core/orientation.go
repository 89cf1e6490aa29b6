package core

// relabeller rewrites point labels throughout diagrams and rewrites,
// memoizing interned nodes.
type relabeller struct {
	in       *Interner
	fn       func(Diagram0) Diagram0
	diagrams map[*DiagramN]*DiagramN
	rewrites map[*RewriteN]*RewriteN
}

func newRelabeller(in *Interner, fn func(Diagram0) Diagram0) *relabeller {
	return &relabeller{
		in:       in,
		fn:       fn,
		diagrams: make(map[*DiagramN]*DiagramN),
		rewrites: make(map[*RewriteN]*RewriteN),
	}
}

func (rl *relabeller) diagram(d Diagram) (Diagram, error) {
	switch d := d.(type) {
	case Diagram0:
		return rl.fn(d), nil
	case *DiagramN:
		if out, ok := rl.diagrams[d]; ok {
			return out, nil
		}
		source, err := rl.diagram(d.source)
		if err != nil {
			return nil, err
		}
		cospans := make([]Cospan, len(d.cospans))
		for i, c := range d.cospans {
			if cospans[i], err = rl.cospan(c); err != nil {
				return nil, err
			}
		}
		out, err := rl.in.diagramN(source, cospans)
		if err != nil {
			return nil, err
		}
		rl.diagrams[d] = out
		return out, nil
	}
	return d, nil
}

func (rl *relabeller) cospan(c Cospan) (Cospan, error) {
	f, err := rl.rewrite(c.Forward)
	if err != nil {
		return Cospan{}, err
	}
	b, err := rl.rewrite(c.Backward)
	if err != nil {
		return Cospan{}, err
	}
	return Cospan{Forward: f, Backward: b}, nil
}

func (rl *relabeller) rewrite(r Rewrite) (Rewrite, error) {
	switch r := r.(type) {
	case Rewrite0:
		if r.IsIdentity() {
			return r, nil
		}
		return NewRewrite0(rl.fn(r.Source), rl.fn(r.Target)), nil
	case *RewriteN:
		if out, ok := rl.rewrites[r]; ok {
			return out, nil
		}
		cones := make([]Cone, len(r.cones))
		for k, c := range r.cones {
			out := Cone{
				Index:          c.Index,
				Source:         make([]Cospan, len(c.Source)),
				RegularSlices:  make([]Rewrite, len(c.RegularSlices)),
				SingularSlices: make([]Rewrite, len(c.SingularSlices)),
			}
			var err error
			if out.Target, err = rl.cospan(c.Target); err != nil {
				return nil, err
			}
			for j, s := range c.Source {
				if out.Source[j], err = rl.cospan(s); err != nil {
					return nil, err
				}
			}
			for j, s := range c.RegularSlices {
				if out.RegularSlices[j], err = rl.rewrite(s); err != nil {
					return nil, err
				}
			}
			for j, s := range c.SingularSlices {
				if out.SingularSlices[j], err = rl.rewrite(s); err != nil {
					return nil, err
				}
			}
			cones[k] = out
		}
		out, err := rl.in.rewriteN(r.dimension, cones)
		if err != nil {
			return nil, err
		}
		rl.rewrites[r] = out
		return out, nil
	}
	return r, nil
}

// relabelRewrite returns the rewrite from d to its relabelling. Only the
// singular content of d may change label; regular slices must be fixed by fn.
func (rl *relabeller) relabelRewrite(d Diagram) (Rewrite, error) {
	switch d := d.(type) {
	case Diagram0:
		return NewRewrite0(d, rl.fn(d)), nil
	case *DiagramN:
		var cones []Cone
		for i, c := range d.cospans {
			rc, err := rl.cospan(c)
			if err != nil {
				return nil, err
			}
			if rc == c {
				continue
			}
			slice, err := rl.relabelRewrite(d.SingularSlice(i))
			if err != nil {
				return nil, err
			}
			cone, err := NewCone(i, []Cospan{c}, rc, []Rewrite{slice})
			if err != nil {
				return nil, err
			}
			cones = append(cones, cone)
		}
		return rl.in.rewriteN(d.dimension, cones)
	}
	return nil, newError(ErrCodeDimension, "relabel", "unknown diagram %T", d)
}

// Relabel maps every point label of d through fn.
func Relabel(d Diagram, fn func(Diagram0) Diagram0) (Diagram, error) {
	return newRelabeller(internerOf([]Diagram{d}, nil), fn).diagram(d)
}

// Inverse reverses d along its top dimension: the cospans run in the opposite
// order with their legs exchanged, and every point of a top-dimensional
// generator flips orientation. The caller is responsible for only inverting
// diagrams built from invertible generators.
func (d *DiagramN) Inverse() (*DiagramN, error) {
	n := d.dimension
	rl := newRelabeller(d.in, func(p Diagram0) Diagram0 {
		if p.Generator.Dimension == n {
			return p.Inverse()
		}
		return p
	})
	cospans := make([]Cospan, len(d.cospans))
	for i, c := range d.cospans {
		rc, err := rl.cospan(c)
		if err != nil {
			return nil, err
		}
		cospans[len(d.cospans)-1-i] = rc.Flip()
	}
	return d.in.diagramN(d.Target(), cospans)
}

// Bubble inserts a degenerate copy of an atomic diagram d: the result is an
// (n+1)-diagram from d to d whose single singular slice is d with its
// top-dimensional points in Zero orientation.
func (d *DiagramN) Bubble() (*DiagramN, error) {
	if d.Size() != 1 {
		return nil, newError(ErrCodeNotAtomic, "bubble", "diagram has %d cospans, want 1", d.Size())
	}
	top := -1
	Points(d.SingularSlice(0), func(p Diagram0, _ int) {
		top = max(top, p.Generator.Dimension)
	})
	rl := newRelabeller(d.in, func(p Diagram0) Diagram0 {
		if p.Generator.Dimension == top {
			p.Orientation = Zero
		}
		return p
	})
	u, err := rl.relabelRewrite(d.SingularSlice(0))
	if err != nil {
		return nil, err
	}
	r, err := liftThroughCospan(d, 0, u)
	if err != nil {
		return nil, wrapError(ErrCodeNotAtomic, "bubble", err, "degenerate level")
	}
	return d.in.diagramN(d, []Cospan{{Forward: r, Backward: r}})
}
