package core

import (
	"context"
	"slices"
)

// colimitProblem is a diagram of diagrams: nodes are diagrams of one common
// dimension, edges are rewrites between them. Its colimit is a diagram C with
// a leg from every node such that each edge followed by the leg at its target
// equals the leg at its source.
type colimitProblem struct {
	nodes []colimitNode
	edges []colimitEdge
}

type colimitNode struct {
	diagram Diagram
	// tag orders content under a bias; boundary nodes carry -1 and never
	// decide an ordering.
	tag int
}

type colimitEdge struct {
	source, target int
	rewrite        Rewrite
}

func (p *colimitProblem) addNode(d Diagram, tag int) int {
	p.nodes = append(p.nodes, colimitNode{diagram: d, tag: tag})
	return len(p.nodes) - 1
}

func (p *colimitProblem) addEdge(source, target int, r Rewrite) {
	p.edges = append(p.edges, colimitEdge{source: source, target: target, rewrite: r})
}

func noColimit(format string, args ...any) error {
	return newError(ErrCodeContraction, "colimit", format, args...)
}

func colimit(ctx context.Context, in *Interner, p *colimitProblem, bias Bias) (Diagram, []Rewrite, error) {
	if err := checkpoint(ctx); err != nil {
		return nil, nil, err
	}
	if len(p.nodes) == 0 {
		return nil, nil, noColimit("empty problem")
	}
	dim := p.nodes[0].diagram.Dimension()
	for _, n := range p.nodes {
		if n.diagram.Dimension() != dim {
			return nil, nil, newError(ErrCodeDimension, "colimit", "nodes of dimension %d and %d", dim, n.diagram.Dimension())
		}
	}
	if dim == 0 {
		return colimit0(p)
	}
	return colimitN(ctx, in, p, bias)
}

// colimit0 merges points: the highest-dimensional generator wins and must be
// unique. A Zero occurrence absorbs the other orientations of its generator.
func colimit0(p *colimitProblem) (Diagram, []Rewrite, error) {
	top := p.nodes[0].diagram.(Diagram0)
	for _, n := range p.nodes[1:] {
		q := n.diagram.(Diagram0)
		switch {
		case q.Generator.Dimension > top.Generator.Dimension:
			top = q
		case q.Generator.Dimension < top.Generator.Dimension:
		case q.Generator != top.Generator:
			return nil, nil, noColimit("distinct generators %s and %s of equal dimension", top.Generator, q.Generator)
		case q.Orientation == top.Orientation:
		case q.Orientation == Zero || top.Orientation == Zero:
			top.Orientation = Zero
		default:
			return nil, nil, noColimit("%s occurs with opposite orientations", q.Generator)
		}
	}
	legs := make([]Rewrite, len(p.nodes))
	for i, n := range p.nodes {
		leg := NewRewrite0(n.diagram.(Diagram0), top)
		if !leg.IsValid() {
			return nil, nil, noColimit("%s cannot map to %s", n.diagram, top)
		}
		legs[i] = leg
	}
	return top, legs, nil
}

// colimitN orders the singular heights of all nodes into classes, solves one
// lower-dimensional problem per class, and reassembles the results.
func colimitN(ctx context.Context, in *Interner, p *colimitProblem, bias Bias) (Diagram, []Rewrite, error) {
	nodes := make([]*DiagramN, len(p.nodes))
	offsets := make([]int, len(p.nodes)+1)
	for i, n := range p.nodes {
		nodes[i] = n.diagram.(*DiagramN)
		offsets[i+1] = offsets[i] + nodes[i].Size()
	}
	dim := nodes[0].dimension
	total := offsets[len(nodes)]
	owner := make([]int, total)
	for i := range nodes {
		for j := offsets[i]; j < offsets[i+1]; j++ {
			owner[j] = i
		}
	}

	edges := make([]*RewriteN, len(p.edges))
	uf := newUnionFind(total)
	for k, e := range p.edges {
		r, ok := e.rewrite.(*RewriteN)
		if !ok || r.dimension != dim {
			return nil, nil, newError(ErrCodeDimension, "colimit", "edge %d has dimension %d, want %d", k, e.rewrite.Dimension(), dim)
		}
		edges[k] = r
		for j := 0; j < nodes[e.source].Size(); j++ {
			q := r.SingularImage(j)
			if q < 0 || q >= nodes[e.target].Size() {
				return nil, nil, noColimit("edge %d maps height %d outside its target", k, j)
			}
			uf.union(offsets[e.source]+j, offsets[e.target]+q)
		}
	}

	order, err := orderClasses(p, nodes, offsets, owner, uf, bias)
	if err != nil {
		return nil, nil, err
	}
	rank := func(i, j int) int { return order[offsets[i]+j] }
	classes := 0
	for _, r := range order {
		classes = max(classes, r+1)
	}

	// pos[i][h] is the number of cospans of node i in classes before h.
	pos := make([][]int, len(nodes))
	for i, d := range nodes {
		pos[i] = make([]int, classes+1)
		for j := range d.cospans {
			pos[i][rank(i, j)+1]++
		}
		for h := 1; h <= classes; h++ {
			pos[i][h] += pos[i][h-1]
		}
	}
	regular := make([]Diagram, classes+1)
	for h := range regular {
		regular[h] = nodes[0].RegularSlice(pos[0][h])
	}

	type classResult struct {
		problem  *colimitProblem
		bottom   int
		top      int
		singular map[[2]int]int
		legs     []Rewrite
		cospan   Cospan
	}
	results := make([]*classResult, classes)
	for h := 0; h < classes; h++ {
		cp := &classResult{problem: &colimitProblem{}, singular: make(map[[2]int]int)}
		lp := cp.problem
		cp.bottom = lp.addNode(regular[h], -1)
		cp.top = lp.addNode(regular[h+1], -1)
		interior := make(map[[2]int]int)
		var bad error
		regNode := func(i, r int) int {
			switch {
			case r == pos[i][h]:
				return cp.bottom
			case r == pos[i][h+1]:
				return cp.top
			case r < pos[i][h] || r > pos[i][h+1]:
				bad = noColimit("regular height %d of node %d lies outside class %d", r, i, h)
				return cp.bottom
			}
			key := [2]int{i, r}
			if k, ok := interior[key]; ok {
				return k
			}
			k := lp.addNode(nodes[i].RegularSlice(r), p.nodes[i].tag)
			interior[key] = k
			return k
		}

		identified := false
		for i, d := range nodes {
			s, e := pos[i][h], pos[i][h+1]
			if s == e {
				identified = true
				continue
			}
			for j := s; j < e; j++ {
				k := lp.addNode(d.SingularSlice(j), p.nodes[i].tag)
				cp.singular[[2]int{i, j}] = k
				lp.addEdge(regNode(i, j), k, d.cospans[j].Forward)
				lp.addEdge(regNode(i, j+1), k, d.cospans[j].Backward)
			}
		}
		if identified {
			lp.addEdge(cp.bottom, cp.top, in.IdentityRewrite(dim-1))
		}

		for k, e := range p.edges {
			r := edges[k]
			s, t := e.source, e.target
			for j := pos[s][h]; j < pos[s][h+1]; j++ {
				q := r.SingularImage(j)
				lp.addEdge(cp.singular[[2]int{s, j}], cp.singular[[2]int{t, q}], r.SingularSlice(j))
			}
			for reg := pos[s][h] + 1; reg < pos[s][h+1]; reg++ {
				lo, hi := r.SingularImage(reg-1), r.SingularImage(reg)
				for q := lo + 1; q <= hi; q++ {
					lp.addEdge(regNode(s, reg), regNode(t, q), in.IdentityRewrite(dim-1))
				}
			}
			for c, cone := range r.cones {
				if len(cone.Source) != 0 {
					continue
				}
				q := r.TargetIndex(c)
				if rank(t, q) != h {
					continue
				}
				lp.addEdge(regNode(s, cone.Index), cp.singular[[2]int{t, q}], cone.Target.Forward)
			}
		}
		if bad != nil {
			return nil, nil, bad
		}
		results[h] = cp
	}

	err = forEach(ctx, classes, func(ctx context.Context, h int) error {
		cp := results[h]
		_, legs, err := colimit(ctx, in, cp.problem, bias)
		if err != nil {
			return err
		}
		cp.legs = legs
		cp.cospan = Cospan{Forward: legs[cp.bottom], Backward: legs[cp.top]}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	cospans := make([]Cospan, classes)
	for h, cp := range results {
		cospans[h] = cp.cospan
	}
	c, err := in.diagramN(regular[0], cospans)
	if err != nil {
		return nil, nil, wrapError(ErrCodeContraction, "colimit", err, "assembling the colimit")
	}

	legs := make([]Rewrite, len(nodes))
	for i, d := range nodes {
		cones := make([]Cone, 0, classes)
		for h, cp := range results {
			s, e := pos[i][h], pos[i][h+1]
			sing := make([]Rewrite, 0, e-s)
			for j := s; j < e; j++ {
				sing = append(sing, cp.legs[cp.singular[[2]int{i, j}]])
			}
			cone, err := NewCone(s, d.cospans[s:e], cospans[h], sing)
			if err != nil {
				return nil, nil, wrapError(ErrCodeContraction, "colimit", err, "leg %d, class %d", i, h)
			}
			cones = append(cones, cone)
		}
		leg, err := in.rewriteN(dim, cones)
		if err != nil {
			return nil, nil, wrapError(ErrCodeContraction, "colimit", err, "leg %d", i)
		}
		if got, err := RewriteForward(d, leg); err != nil || got != c {
			return nil, nil, noColimit("leg %d does not reach the colimit", i)
		}
		legs[i] = leg
	}
	for k, e := range p.edges {
		via, err := Compose(e.rewrite, legs[e.target])
		if err != nil || via != legs[e.source] {
			return nil, nil, noColimit("edge %d does not commute with the legs", k)
		}
	}
	return c, legs, nil
}

// orderClasses merges singular heights into classes, collapses cycles of the
// order each node induces on them, and linearizes the result. It returns the
// position of every height's class in that linear order. More than one
// admissible class at a step is resolved by bias; without one it fails.
func orderClasses(p *colimitProblem, nodes []*DiagramN, offsets, owner []int, uf *unionFind, bias Bias) ([]int, error) {
	total := len(owner)
	dense := make(map[int]int)
	cls := make([]int, total)
	for x := 0; x < total; x++ {
		r := uf.find(x)
		k, ok := dense[r]
		if !ok {
			k = len(dense)
			dense[r] = k
		}
		cls[x] = k
	}
	n := len(dense)
	succ := make([][]int, n)
	for i, d := range nodes {
		for j := 0; j+1 < d.Size(); j++ {
			a, b := cls[offsets[i]+j], cls[offsets[i]+j+1]
			if a != b && !slices.Contains(succ[a], b) {
				succ[a] = append(succ[a], b)
			}
		}
	}
	comp, m := stronglyConnected(succ)

	next := make([][]int, m)
	indeg := make([]int, m)
	for a := range succ {
		for _, b := range succ[a] {
			ca, cb := comp[a], comp[b]
			if ca != cb && !slices.Contains(next[ca], cb) {
				next[ca] = append(next[ca], cb)
				indeg[cb]++
			}
		}
	}
	tag := make([]int, m)
	first := make([]int, m)
	for c := range tag {
		tag[c], first[c] = -1, total
	}
	for x := 0; x < total; x++ {
		c := comp[cls[x]]
		first[c] = min(first[c], x)
		if t := p.nodes[owner[x]].tag; t >= 0 && (tag[c] < 0 || t < tag[c]) {
			tag[c] = t
		}
	}

	rankOf := make([]int, m)
	placed := make([]bool, m)
	for step := 0; step < m; step++ {
		pick := -1
		ambiguous := false
		for c := 0; c < m; c++ {
			if placed[c] || indeg[c] != 0 {
				continue
			}
			if pick < 0 {
				pick = c
				continue
			}
			ambiguous = true
			switch bias {
			case BiasLower:
				if tag[c] < tag[pick] || (tag[c] == tag[pick] && first[c] < first[pick]) {
					pick = c
				}
			case BiasHigher:
				if tag[c] > tag[pick] || (tag[c] == tag[pick] && first[c] < first[pick]) {
					pick = c
				}
			}
		}
		if pick < 0 {
			return nil, noColimit("ordering constraints are cyclic")
		}
		if ambiguous && bias == NoBias {
			return nil, noColimit("ambiguous ordering of singular heights; a bias is required")
		}
		placed[pick] = true
		rankOf[pick] = step
		for _, c := range next[pick] {
			indeg[c]--
		}
	}

	order := make([]int, total)
	for x := range order {
		order[x] = rankOf[comp[cls[x]]]
	}
	return order, nil
}
