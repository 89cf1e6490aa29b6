package core

// Compose returns the rewrite f followed by g. f's target must be g's source;
// identities are absorbed.
func Compose(f, g Rewrite) (Rewrite, error) {
	if f.Dimension() != g.Dimension() {
		return nil, newError(ErrCodeComposition, "compose", "dimensions %d and %d", f.Dimension(), g.Dimension())
	}
	if f.IsIdentity() {
		return g, nil
	}
	if g.IsIdentity() {
		return f, nil
	}
	switch f := f.(type) {
	case Rewrite0:
		g0 := g.(Rewrite0)
		if f.Target != g0.Source {
			return nil, newError(ErrCodeComposition, "compose", "%s does not meet %s", f, g0)
		}
		return NewRewrite0(f.Source, g0.Target), nil
	case *RewriteN:
		return composeN(f, g.(*RewriteN))
	}
	return nil, newError(ErrCodeComposition, "compose", "unknown rewrite %T", f)
}

// composeN walks the cones of g in order. Each cone of g absorbs the cones of
// f that land on its source block; cones of f landing outside every block of g
// pass through with their indices unchanged.
func composeN(f, g *RewriteN) (Rewrite, error) {
	f.in.own(g.in)
	cones := make([]Cone, 0, len(f.cones)+len(g.cones))
	fi, shift := 0, 0
	target := func() int { return f.cones[fi].Index - shift }

	for _, gc := range g.cones {
		k, n := gc.Index, len(gc.Source)
		for fi < len(f.cones) && target() < k {
			cones = append(cones, f.cones[fi])
			shift += len(f.cones[fi].Source) - 1
			fi++
		}
		start := k + shift
		source := make([]Cospan, 0, n)
		sing := make([]Rewrite, 0, n)
		for b := k; b < k+n; b++ {
			gs := gc.SingularSlices[b-k]
			if fi < len(f.cones) && target() == b {
				fc := f.cones[fi]
				if fc.Target != gc.Source[b-k] {
					return nil, newError(ErrCodeComposition, "compose", "cone at %d does not meet cone at %d", fc.Index, gc.Index)
				}
				source = append(source, fc.Source...)
				for _, fs := range fc.SingularSlices {
					s, err := Compose(fs, gs)
					if err != nil {
						return nil, err
					}
					sing = append(sing, s)
				}
				shift += len(fc.Source) - 1
				fi++
				continue
			}
			source = append(source, gc.Source[b-k])
			sing = append(sing, gs)
		}
		cone, err := NewCone(start, source, gc.Target, sing)
		if err != nil {
			return nil, wrapError(ErrCodeComposition, "compose", err, "cone at %d", gc.Index)
		}
		cones = append(cones, cone)
	}
	cones = append(cones, f.cones[fi:]...)
	out, err := f.in.rewriteN(f.dimension, cones)
	if err != nil {
		return nil, wrapError(ErrCodeComposition, "compose", err, "result")
	}
	return out, nil
}
