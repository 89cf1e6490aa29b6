package core

// FromGenerator builds the atomic diagram of a generator with the given
// boundaries. The generator's dimension must be one more than the boundaries',
// and the boundaries must themselves share source and target.
func (in *Interner) FromGenerator(g Generator, source, target Diagram) (*DiagramN, error) {
	if source.Dimension() != target.Dimension() {
		return nil, newError(ErrCodeNewDiagram, "generator", "source has dimension %d, target %d", source.Dimension(), target.Dimension())
	}
	if g.Dimension != source.Dimension()+1 {
		return nil, newError(ErrCodeNewDiagram, "generator", "%s needs boundaries of dimension %d, got %d", g, g.Dimension-1, source.Dimension())
	}
	if s, ok := source.(*DiagramN); ok {
		t := target.(*DiagramN)
		if s.Source() != t.Source() || s.Target() != t.Target() {
			return nil, newError(ErrCodeNewDiagram, "generator", "source and target of %s are not parallel", g)
		}
	}
	point := g.Point()
	fwd, err := in.coneOverGenerator(point, source)
	if err != nil {
		return nil, err
	}
	bwd, err := in.coneOverGenerator(point, target)
	if err != nil {
		return nil, err
	}
	return in.diagramN(source, []Cospan{{Forward: fwd, Backward: bwd}})
}

// FromGenerator is Interner.FromGenerator on the interner owning the
// boundaries.
func FromGenerator(g Generator, source, target Diagram) (*DiagramN, error) {
	return internerOf([]Diagram{source, target}, nil).FromGenerator(g, source, target)
}

// coneOverGenerator collapses all of base onto a single occurrence of point.
func (in *Interner) coneOverGenerator(point Diagram0, base Diagram) (Rewrite, error) {
	switch b := base.(type) {
	case Diagram0:
		return NewRewrite0(b, point), nil
	case *DiagramN:
		fwd, err := in.coneOverGenerator(point, b.source)
		if err != nil {
			return nil, err
		}
		bwd, err := in.coneOverGenerator(point, b.Target())
		if err != nil {
			return nil, err
		}
		sing := make([]Rewrite, len(b.cospans))
		for i := range b.cospans {
			if sing[i], err = in.coneOverGenerator(point, b.SingularSlice(i)); err != nil {
				return nil, err
			}
		}
		cone, err := NewCone(0, b.cospans, Cospan{Forward: fwd, Backward: bwd}, sing)
		if err != nil {
			return nil, err
		}
		return in.rewriteN(b.dimension, []Cone{cone})
	}
	return nil, newError(ErrCodeDimension, "generator", "unknown diagram %T", base)
}
