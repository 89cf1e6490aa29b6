package core

import "context"

// ExpandInPath splits a singular level of the diagram reached from d by path.
// point names the singular height i of that diagram and the singular height p
// inside its i-th singular slice; the level is split so that the content at
// p is resolved after (Forward) or before (Backward) everything else on the
// level. The result rewrites the expanded diagram into d.
//
// Below the top of path, the expansion is propagated to the enclosing levels
// by factorizing their cospans through it; this fails when no such lift
// exists.
func ExpandInPath(ctx context.Context, d *DiagramN, path []Height, point [2]Height, dir Direction) (*RewriteN, error) {
	if err := checkpoint(ctx); err != nil {
		return nil, err
	}
	if len(path) == 0 {
		if !point[0].IsSingular() || !point[1].IsSingular() {
			return nil, newError(ErrCodeExpansion, "expand", "point (%s, %s) is not singular", point[0], point[1])
		}
		return expandBase(d, point[0].Index, point[1].Index, dir)
	}

	h := path[0]
	if !h.IsSingular() {
		return nil, newError(ErrCodeExpansion, "expand", "cannot expand inside regular height %s", h)
	}
	if h.Index < 0 || h.Index >= d.Size() {
		return nil, newError(ErrCodeExpansion, "expand", "height %s out of range for size %d", h, d.Size())
	}
	slice, ok := d.SingularSlice(h.Index).(*DiagramN)
	if !ok {
		return nil, newError(ErrCodeDimension, "expand", "path descends below dimension 1")
	}
	e, err := ExpandInPath(ctx, slice, path[1:], point, dir)
	if err != nil {
		return nil, err
	}
	expanded, err := RewriteBackward(slice, e)
	if err != nil {
		return nil, wrapError(ErrCodeExpansion, "expand", err, "expanded slice")
	}

	c := d.cospans[h.Index]
	f, err := Factorize(ctx, c.Forward, e, d.RegularSlice(h.Index), expanded)
	if err != nil {
		return nil, wrapError(ErrCodeExpansion, "expand", err, "propagating through forward leg at %s", h)
	}
	b, err := Factorize(ctx, c.Backward, e, d.RegularSlice(h.Index+1), expanded)
	if err != nil {
		return nil, wrapError(ErrCodeExpansion, "expand", err, "propagating through backward leg at %s", h)
	}
	cone, err := NewCone(h.Index, []Cospan{{Forward: f, Backward: b}}, c, []Rewrite{e})
	if err != nil {
		return nil, wrapError(ErrCodeExpansion, "expand", err, "cone at %s", h)
	}
	return d.in.rewriteN(d.dimension, []Cone{cone})
}

// expandBase splits level i of d in two. Every cospan q of the singular slice
// S is the target of a block of the regular slice below (through the forward
// leg) and of one above (through the backward leg). The level is rebuilt as
// two levels around a middle regular slice M: cospans resolved on the first
// level are taken from above in M, the others from below.
func expandBase(d *DiagramN, i, p int, dir Direction) (*RewriteN, error) {
	if i < 0 || i >= d.Size() {
		return nil, newError(ErrCodeExpansion, "expand", "height %d out of range for size %d", i, d.Size())
	}
	s, ok := d.SingularSlice(i).(*DiagramN)
	if !ok {
		return nil, newError(ErrCodeExpansion, "expand", "level %d of a 1-diagram has no interior", i)
	}
	if p < 0 || p >= s.Size() {
		return nil, newError(ErrCodeExpansion, "expand", "height %d out of range for slice of size %d", p, s.Size())
	}
	r0 := d.RegularSlice(i).(*DiagramN)
	r1 := d.RegularSlice(i + 1).(*DiagramN)
	f := d.cospans[i].Forward.(*RewriteN)
	b := d.cospans[i].Backward.(*RewriteN)

	trivial := func(q int) bool {
		_, fok := f.coneAt(q)
		_, bok := b.coneAt(q)
		return !fok && !bok
	}
	if trivial(p) {
		return nil, newError(ErrCodeExpansion, "expand", "nothing to expand at (%d, %d)", i, p)
	}
	rest := false
	for q := 0; q < s.Size(); q++ {
		if q != p && !trivial(q) {
			rest = true
			break
		}
	}
	if !rest {
		return nil, newError(ErrCodeExpansion, "expand", "point (%d, %d) is the only content of its level", i, p)
	}
	first := func(q int) bool { return (q == p) == (dir == Backward) }

	dim := s.dimension
	var middle, lower, upper []Cospan
	var f1, b1, f2, b2, toS1, toS2 []Cone
	add := func(dst *[]Cone, index int, source []Cospan, target Cospan, sing []Rewrite) error {
		cone, err := NewCone(index, source, target, sing)
		if err != nil {
			return wrapError(ErrCodeExpansion, "expand", err, "cone at %d", index)
		}
		*dst = append(*dst, cone)
		return nil
	}
	for q := 0; q < s.Size(); q++ {
		fs, fe := f.SingularPreimage(q)
		bs, be := b.SingularPreimage(q)
		below, above := r0.cospans[fs:fe], r1.cospans[bs:be]
		fsl, bsl := sliceRange(f, fs, fe), sliceRange(b, bs, be)
		sq := s.cospans[q]
		if first(q) {
			if err := add(&f1, fs, below, sq, fsl); err != nil {
				return nil, err
			}
			if err := add(&b1, len(middle), above, sq, bsl); err != nil {
				return nil, err
			}
			if err := add(&toS2, len(upper), above, sq, bsl); err != nil {
				return nil, err
			}
			middle = append(middle, above...)
			lower = append(lower, sq)
			upper = append(upper, above...)
			continue
		}
		if err := add(&f2, len(middle), below, sq, fsl); err != nil {
			return nil, err
		}
		if err := add(&b2, bs, above, sq, bsl); err != nil {
			return nil, err
		}
		if err := add(&toS1, len(lower), below, sq, fsl); err != nil {
			return nil, err
		}
		middle = append(middle, below...)
		lower = append(lower, below...)
		upper = append(upper, sq)
	}

	rw := func(cones []Cone) (*RewriteN, error) {
		r, err := d.in.rewriteN(dim, cones)
		if err != nil {
			return nil, wrapError(ErrCodeExpansion, "expand", err, "rebuilding level %d", i)
		}
		return r, nil
	}
	var rs [6]*RewriteN
	for k, cones := range [][]Cone{f1, b1, f2, b2, toS1, toS2} {
		r, err := rw(cones)
		if err != nil {
			return nil, err
		}
		rs[k] = r
	}
	c1 := Cospan{Forward: rs[0], Backward: rs[1]}
	c2 := Cospan{Forward: rs[2], Backward: rs[3]}
	cone, err := NewCone(i, []Cospan{c1, c2}, d.cospans[i], []Rewrite{rs[4], rs[5]})
	if err != nil {
		return nil, wrapError(ErrCodeExpansion, "expand", err, "expansion cone")
	}
	return d.in.rewriteN(d.dimension, []Cone{cone})
}

func sliceRange(r *RewriteN, start, end int) []Rewrite {
	out := make([]Rewrite, 0, end-start)
	for j := start; j < end; j++ {
		out = append(out, r.SingularSlice(j))
	}
	return out
}

// Expand attaches an expansion homotopy to the boundary of d selected by bp.
// On a target boundary the expanded diagram becomes the new target; on a
// source boundary the new source.
func (d *DiagramN) Expand(ctx context.Context, bp BoundaryPath, interior []Height, point [2]Height, dir Direction) (*DiagramN, error) {
	return d.Attach(bp, func(boundary Diagram) ([]Cospan, error) {
		b, ok := boundary.(*DiagramN)
		if !ok {
			return nil, newError(ErrCodeDimension, "expand", "boundary %s is a point", bp)
		}
		e, err := ExpandInPath(ctx, b, interior, point, dir)
		if err != nil {
			return nil, err
		}
		id := d.in.IdentityRewrite(e.dimension)
		if bp.Boundary == Target {
			return []Cospan{{Forward: id, Backward: e}}, nil
		}
		return []Cospan{{Forward: e, Backward: id}}, nil
	})
}
