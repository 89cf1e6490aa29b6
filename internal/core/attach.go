package core

import "slices"

// BuildFunc produces the cospans to glue onto a boundary, given that
// boundary. For a target boundary the cospans must start at it; for a source
// boundary they must end at it.
type BuildFunc func(boundary Diagram) ([]Cospan, error)

// Attach glues the cospans produced by build onto the boundary selected by
// path. The result has the same dimension as d. Attaching to a source at
// depth > 0 shifts the existing cospans by the attached block so that they
// still apply to the grown source.
func (d *DiagramN) Attach(path BoundaryPath, build BuildFunc) (*DiagramN, error) {
	if path.Depth < 0 || path.Depth >= d.dimension {
		return nil, newError(ErrCodeDimension, "attach", "path %s out of range for dimension %d", path, d.dimension)
	}
	out, _, err := attachWorker(d, path, build)
	return out, err
}

func attachWorker(d *DiagramN, path BoundaryPath, build BuildFunc) (*DiagramN, []int, error) {
	if path.Depth == 0 {
		switch path.Boundary {
		case Target:
			cospans, err := build(d.Target())
			if err != nil {
				return nil, nil, err
			}
			out, err := d.in.diagramN(d.source, append(slices.Clone(d.cospans), cospans...))
			if err != nil {
				return nil, nil, wrapError(ErrCodeAttach, "attach", err, "target")
			}
			return out, nil, nil
		default:
			cospans, err := build(d.source)
			if err != nil {
				return nil, nil, err
			}
			source := d.source
			for i := len(cospans) - 1; i >= 0; i-- {
				sing, err := RewriteForward(source, cospans[i].Backward)
				if err != nil {
					return nil, nil, wrapError(ErrCodeAttach, "attach", err, "source cospan %d", i)
				}
				if source, err = RewriteBackward(sing, cospans[i].Forward); err != nil {
					return nil, nil, wrapError(ErrCodeAttach, "attach", err, "source cospan %d", i)
				}
			}
			out, err := d.in.diagramN(source, append(slices.Clone(cospans), d.cospans...))
			if err != nil {
				return nil, nil, wrapError(ErrCodeAttach, "attach", err, "source")
			}
			return out, []int{len(cospans)}, nil
		}
	}

	src, ok := d.source.(*DiagramN)
	if !ok {
		return nil, nil, newError(ErrCodeDimension, "attach", "source of a %d-diagram has no boundary at depth %d", d.dimension, path.Depth)
	}
	newSource, offset, err := attachWorker(src, BoundaryPath{Boundary: path.Boundary, Depth: path.Depth - 1}, build)
	if err != nil {
		return nil, nil, err
	}
	cospans := d.cospans
	if offset != nil {
		cospans = make([]Cospan, len(d.cospans))
		for i, c := range d.cospans {
			cospans[i] = c.Pad(offset)
		}
		offset = append([]int{0}, offset...)
	}
	out, err := d.in.diagramN(newSource, cospans)
	if err != nil {
		return nil, nil, wrapError(ErrCodeAttach, "attach", err, "depth %d", path.Depth)
	}
	return out, offset, nil
}

// AttachCell attaches cell to the boundary of d selected by path. The cell
// must have the dimension of that boundary plus one. Its source (for a target
// boundary) or target (for a source boundary) must embed into the boundary at
// embedding.
func (d *DiagramN) AttachCell(path BoundaryPath, embedding []int, cell *DiagramN) (*DiagramN, error) {
	if cell.dimension != d.dimension-path.Depth {
		return nil, newError(ErrCodeDimension, "attach", "cell of dimension %d cannot attach at %s of a %d-diagram",
			cell.dimension, path, d.dimension)
	}
	return d.Attach(path, func(boundary Diagram) ([]Cospan, error) {
		side := cell.source
		if path.Boundary == Source {
			side = cell.Target()
		}
		if !Embeds(side, boundary, embedding) {
			return nil, newError(ErrCodeAttach, "attach", "cell %s does not embed at %v", path.Boundary.Flip(), embedding)
		}
		out := make([]Cospan, len(cell.cospans))
		for i, c := range cell.cospans {
			out[i] = c.Pad(embedding)
		}
		return out, nil
	})
}

// Embeds reports whether sub occurs in sup at the given embedding. The
// embedding lists one offset per dimension from the top; missing entries are
// zero.
func Embeds(sub, sup Diagram, embedding []int) bool {
	switch s := sub.(type) {
	case Diagram0:
		p, ok := sup.(Diagram0)
		return ok && p == s
	case *DiagramN:
		p, ok := sup.(*DiagramN)
		if !ok || p.dimension != s.dimension {
			return false
		}
		offset, rest := 0, []int(nil)
		if len(embedding) > 0 {
			offset, rest = embedding[0], embedding[1:]
		}
		if offset < 0 || offset+len(s.cospans) > len(p.cospans) {
			return false
		}
		if !Embeds(s.source, p.RegularSlice(offset), rest) {
			return false
		}
		for i, c := range s.cospans {
			if c.Pad(rest) != p.cospans[offset+i] {
				return false
			}
		}
		return true
	}
	return false
}

// Embeddings enumerates every embedding of sub into sup in lexicographic
// order.
func Embeddings(sub, sup Diagram) [][]int {
	switch s := sub.(type) {
	case Diagram0:
		if p, ok := sup.(Diagram0); ok && p == s {
			return [][]int{{}}
		}
		return nil
	case *DiagramN:
		p, ok := sup.(*DiagramN)
		if !ok || p.dimension != s.dimension {
			return nil
		}
		var out [][]int
		for offset := 0; offset+len(s.cospans) <= len(p.cospans); offset++ {
			for _, rest := range Embeddings(s.source, p.RegularSlice(offset)) {
				match := true
				for i, c := range s.cospans {
					if c.Pad(rest) != p.cospans[offset+i] {
						match = false
						break
					}
				}
				if match {
					out = append(out, append([]int{offset}, rest...))
				}
			}
		}
		return out
	}
	return nil
}
