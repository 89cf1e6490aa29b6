package core

import (
	"context"

	"github.com/roach88/homotopy/internal/monotone"
)

// maxFactorizations bounds how many candidate lifts are kept per
// sub-problem.
const maxFactorizations = 64

// Factorize finds a rewrite h from source to middle with Compose(h, g) == f,
// where f rewrites source and g rewrites middle into a common target. The
// first lift in lexicographic order of height maps is returned.
func Factorize(ctx context.Context, f, g Rewrite, source, middle Diagram) (Rewrite, error) {
	hs, err := factorizations(ctx, f, g, source, middle, 1)
	if err != nil {
		return nil, err
	}
	if len(hs) == 0 {
		return nil, newError(ErrCodeExpansion, "factorize", "no rewrite factors %s through %s", f, g)
	}
	return hs[0], nil
}

func factorizations(ctx context.Context, f, g Rewrite, source, middle Diagram, limit int) ([]Rewrite, error) {
	if err := checkpoint(ctx); err != nil {
		return nil, err
	}
	if source.Dimension() != middle.Dimension() || f.Dimension() != source.Dimension() || g.Dimension() != source.Dimension() {
		return nil, newError(ErrCodeDimension, "factorize", "mixed dimensions")
	}
	switch a := source.(type) {
	case Diagram0:
		h := NewRewrite0(a, middle.(Diagram0))
		if !h.IsValid() {
			return nil, nil
		}
		if via, err := Compose(h, g); err != nil || via != f {
			return nil, nil
		}
		return []Rewrite{h}, nil
	case *DiagramN:
		return factorizationsN(ctx, f.(*RewriteN), g.(*RewriteN), a, middle.(*DiagramN), limit)
	}
	return nil, nil
}

func factorizationsN(ctx context.Context, f, g *RewriteN, a, b *DiagramN, limit int) ([]Rewrite, error) {
	ranges := make([]monotone.Range, a.Size())
	for j := range ranges {
		s, e := g.SingularPreimage(f.SingularImage(j))
		if s == e {
			return nil, nil
		}
		ranges[j] = monotone.Range{Start: s, End: e}
	}

	var out []Rewrite
	for phi := range monotone.Sequences(false, ranges) {
		// Group the heights of a by the height of b they land on.
		blocks := make([][2]int, b.Size())
		j := 0
		for k := range blocks {
			start := j
			for j < len(phi) && phi[j] == k {
				j++
			}
			blocks[k] = [2]int{start, j}
		}

		options := make([][]Cone, b.Size())
		feasible := true
		for k, blk := range blocks {
			cones, err := coneLifts(ctx, f, g, a, b, k, blk[0], blk[1])
			if err != nil {
				return nil, err
			}
			if len(cones) == 0 {
				feasible = false
				break
			}
			options[k] = cones
		}
		if !feasible {
			continue
		}

		done := false
		err := product(options, func(cones []Cone) (bool, error) {
			h, err := a.in.rewriteN(a.dimension, cones)
			if err != nil {
				return true, nil
			}
			if got, err := RewriteForward(a, h); err != nil || got != Diagram(b) {
				return true, nil
			}
			if via, err := Compose(h, g); err != nil || via != Rewrite(f) {
				return true, nil
			}
			out = append(out, h)
			if len(out) >= limit {
				done = true
				return false, nil
			}
			return true, nil
		})
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
	}
	return out, nil
}

// coneLifts enumerates commuting cones sending a's cospans [s, e) onto the
// k-th cospan of b.
func coneLifts(ctx context.Context, f, g *RewriteN, a, b *DiagramN, k, s, e int) ([]Cone, error) {
	target := b.cospans[k]
	if s == e {
		cone, err := NewCone(s, nil, target, nil)
		if err != nil {
			return nil, nil
		}
		return []Cone{cone}, nil
	}
	choices := make([][]Rewrite, e-s)
	for j := s; j < e; j++ {
		hs, err := factorizations(ctx, f.SingularSlice(j), g.SingularSlice(k), a.SingularSlice(j), b.SingularSlice(k), maxFactorizations)
		if err != nil {
			return nil, err
		}
		if len(hs) == 0 {
			return nil, nil
		}
		choices[j-s] = hs
	}
	var out []Cone
	err := product(choices, func(sing []Rewrite) (bool, error) {
		cone, err := NewCone(s, a.cospans[s:e], target, sing)
		if err != nil || cone.Check() != nil {
			return true, nil
		}
		out = append(out, cone)
		return len(out) < maxFactorizations, nil
	})
	return out, err
}

// product calls visit with every choice of one element per options entry.
// visit returns false to stop early.
func product[T any](options [][]T, visit func([]T) (bool, error)) error {
	cur := make([]T, len(options))
	var walk func(i int) (bool, error)
	walk = func(i int) (bool, error) {
		if i == len(options) {
			choice := make([]T, len(cur))
			copy(choice, cur)
			return visit(choice)
		}
		for _, o := range options[i] {
			cur[i] = o
			more, err := walk(i + 1)
			if err != nil || !more {
				return more, err
			}
		}
		return true, nil
	}
	_, err := walk(0)
	return err
}
