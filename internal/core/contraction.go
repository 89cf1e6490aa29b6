package core

import "context"

// ContractInPath merges the count singular heights starting at height of the
// diagram reached from d by following path. It returns the rewrite from d to
// the contracted diagram. Every step of path must be a singular height.
func ContractInPath(ctx context.Context, d *DiagramN, path []Height, height, count int, bias Bias) (*RewriteN, error) {
	if err := checkpoint(ctx); err != nil {
		return nil, err
	}
	if len(path) == 0 {
		return contractBase(ctx, d, height, count, bias)
	}
	h := path[0]
	if !h.IsSingular() {
		return nil, newError(ErrCodeContraction, "contract", "cannot contract inside regular height %s", h)
	}
	if h.Index < 0 || h.Index >= d.Size() {
		return nil, newError(ErrCodeContraction, "contract", "height %s out of range for size %d", h, d.Size())
	}
	slice, ok := d.SingularSlice(h.Index).(*DiagramN)
	if !ok {
		return nil, newError(ErrCodeDimension, "contract", "path descends below dimension 1")
	}
	r, err := ContractInPath(ctx, slice, path[1:], height, count, bias)
	if err != nil {
		return nil, err
	}
	return liftThroughCospan(d, h.Index, r)
}

// liftThroughCospan turns a rewrite r of the i-th singular slice of d into a
// rewrite of d by post-composing both legs of the i-th cospan with r.
func liftThroughCospan(d *DiagramN, i int, r Rewrite) (*RewriteN, error) {
	c := d.cospans[i]
	f, err := Compose(c.Forward, r)
	if err != nil {
		return nil, err
	}
	b, err := Compose(c.Backward, r)
	if err != nil {
		return nil, err
	}
	cone, err := NewCone(i, []Cospan{c}, Cospan{Forward: f, Backward: b}, []Rewrite{r})
	if err != nil {
		return nil, err
	}
	return d.in.rewriteN(d.dimension, []Cone{cone})
}

// contractBase merges count singular heights starting at height into one, by
// taking the colimit of the zigzag of slices between them.
func contractBase(ctx context.Context, d *DiagramN, height, count int, bias Bias) (*RewriteN, error) {
	if count < 2 {
		return nil, newError(ErrCodeContraction, "contract", "count %d merges nothing", count)
	}
	if d.Size() < 2 {
		return nil, newError(ErrCodeContraction, "contract", "nothing to contract in a diagram of size %d", d.Size())
	}
	if height < 0 || height+count > d.Size() {
		return nil, newError(ErrCodeContraction, "contract", "heights %d..%d out of range for size %d", height, height+count-1, d.Size())
	}

	p := &colimitProblem{}
	sing := make([]int, count)
	for k := 0; k < count; k++ {
		sing[k] = p.addNode(d.SingularSlice(height+k), 2*k)
		if k > 0 {
			r := p.addNode(d.RegularSlice(height+k), 2*k-1)
			p.addEdge(r, sing[k-1], d.cospans[height+k-1].Backward)
			p.addEdge(r, sing[k], d.cospans[height+k].Forward)
		}
	}
	_, legs, err := colimit(ctx, d.in, p, bias)
	if err != nil {
		return nil, err
	}

	singular := make([]Rewrite, count)
	for k, n := range sing {
		singular[k] = legs[n]
	}
	f, err := Compose(d.cospans[height].Forward, singular[0])
	if err != nil {
		return nil, wrapError(ErrCodeContraction, "contract", err, "forward leg")
	}
	b, err := Compose(d.cospans[height+count-1].Backward, singular[count-1])
	if err != nil {
		return nil, wrapError(ErrCodeContraction, "contract", err, "backward leg")
	}
	cone, err := NewCone(height, d.cospans[height:height+count], Cospan{Forward: f, Backward: b}, singular)
	if err != nil {
		return nil, wrapError(ErrCodeContraction, "contract", err, "cone")
	}
	return d.in.rewriteN(d.dimension, []Cone{cone})
}

// Contract attaches a contraction homotopy to the boundary of d selected by
// bp. interior leads from that boundary down to the diagram whose count
// singular heights starting at height are merged. On a target boundary the
// contracted diagram becomes the new target; on a source boundary the new
// source.
func (d *DiagramN) Contract(ctx context.Context, bp BoundaryPath, interior []Height, height, count int, bias Bias) (*DiagramN, error) {
	return d.Attach(bp, func(boundary Diagram) ([]Cospan, error) {
		b, ok := boundary.(*DiagramN)
		if !ok {
			return nil, newError(ErrCodeDimension, "contract", "boundary %s is a point", bp)
		}
		r, err := ContractInPath(ctx, b, interior, height, count, bias)
		if err != nil {
			return nil, err
		}
		id := d.in.IdentityRewrite(r.dimension)
		if bp.Boundary == Target {
			return []Cospan{{Forward: r, Backward: id}}, nil
		}
		return []Cospan{{Forward: id, Backward: r}}, nil
	})
}
