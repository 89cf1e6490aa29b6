package core

import (
	"encoding/binary"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"weak"

	"github.com/cespare/xxhash/v2"
)

// Interner hash-conses diagrams and rewrites of positive dimension.
//
// Structurally equal values interned by the same Interner are the same
// pointer. Entries are held weakly: a value stays in the table while anything
// else references it and is swept by CollectGarbage once it is unreachable.
// Values from different interners must not be mixed; doing so panics.
//
// An Interner is safe for concurrent use.
type Interner struct {
	mu       sync.Mutex
	diagrams map[uint64][]weak.Pointer[DiagramN]
	rewrites map[uint64][]weak.Pointer[RewriteN]

	nextID    atomic.Uint64
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// NewInterner returns an empty interner.
func NewInterner() *Interner {
	return &Interner{
		diagrams: make(map[uint64][]weak.Pointer[DiagramN]),
		rewrites: make(map[uint64][]weak.Pointer[RewriteN]),
	}
}

var defaultInterner = NewInterner()

// Default returns the process-wide interner used when no other interner can
// be inferred from the arguments of an operation.
func Default() *Interner { return defaultInterner }

// InternerStats is a snapshot of interner counters.
type InternerStats struct {
	Diagrams  int    `json:"diagrams"`
	Rewrites  int    `json:"rewrites"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

// Stats reports live entries and lifetime counters.
func (in *Interner) Stats() InternerStats {
	in.mu.Lock()
	defer in.mu.Unlock()
	return InternerStats{
		Diagrams:  countLive(in.diagrams),
		Rewrites:  countLive(in.rewrites),
		Hits:      in.hits.Load(),
		Misses:    in.misses.Load(),
		Evictions: in.evictions.Load(),
	}
}

// Len returns the number of live interned values.
func (in *Interner) Len() int {
	s := in.Stats()
	return s.Diagrams + s.Rewrites
}

// CollectGarbage runs the Go collector and removes every entry whose value is
// no longer reachable. It returns the number of entries removed. Values still
// held by callers are never affected, and a second call with no intervening
// drops removes nothing.
func (in *Interner) CollectGarbage() int {
	runtime.GC()
	in.mu.Lock()
	defer in.mu.Unlock()
	n := sweep(in.diagrams) + sweep(in.rewrites)
	in.evictions.Add(uint64(n))
	return n
}

func countLive[T any](m map[uint64][]weak.Pointer[T]) int {
	n := 0
	for _, bucket := range m {
		for _, p := range bucket {
			if p.Value() != nil {
				n++
			}
		}
	}
	return n
}

func sweep[T any](m map[uint64][]weak.Pointer[T]) int {
	removed := 0
	for h, bucket := range m {
		kept := bucket[:0]
		for _, p := range bucket {
			if p.Value() != nil {
				kept = append(kept, p)
			} else {
				removed++
			}
		}
		if len(kept) == 0 {
			delete(m, h)
		} else {
			clear(bucket[len(kept):])
			m[h] = kept
		}
	}
	return removed
}

// hasher accumulates the shallow structure of a node: child nodes contribute
// their interned id, so hashing is linear in the node's own fan-out.
type hasher struct {
	in  *Interner
	buf []byte
}

func (h *hasher) int(v int) {
	h.buf = binary.LittleEndian.AppendUint64(h.buf, uint64(v))
}

func (h *hasher) point(p Diagram0) {
	h.int(p.Generator.ID)
	h.int(p.Generator.Dimension)
	h.int(int(p.Orientation))
}

func (h *hasher) diagram(d Diagram) {
	switch d := d.(type) {
	case Diagram0:
		h.int(0)
		h.point(d)
	case *DiagramN:
		h.in.own(d.in)
		h.int(1)
		h.int(int(d.id))
	}
}

func (h *hasher) rewrite(r Rewrite) {
	switch r := r.(type) {
	case Rewrite0:
		h.int(2)
		h.point(r.Source)
		h.point(r.Target)
	case *RewriteN:
		h.in.own(r.in)
		h.int(3)
		h.int(int(r.id))
	}
}

func (h *hasher) cospan(c Cospan) {
	h.rewrite(c.Forward)
	h.rewrite(c.Backward)
}

func (h *hasher) sum() uint64 { return xxhash.Sum64(h.buf) }

func (in *Interner) own(other *Interner) {
	if other != in {
		panic("core: mixing values from different interners")
	}
}

// diagramN interns the diagram with the given source and cospans. Slices are
// computed outside the lock on a miss, so an inconsistent cospan list is
// rejected before it is ever shared.
func (in *Interner) diagramN(source Diagram, cospans []Cospan) (*DiagramN, error) {
	dim := source.Dimension() + 1
	h := hasher{in: in}
	h.int(dim)
	h.diagram(source)
	for i, c := range cospans {
		if c.Forward.Dimension() != dim-1 || c.Backward.Dimension() != dim-1 {
			return nil, newError(ErrCodeDimension, "diagram", "cospan %d has dimension %d/%d, want %d",
				i, c.Forward.Dimension(), c.Backward.Dimension(), dim-1)
		}
		h.cospan(c)
	}
	key := h.sum()

	if d := in.findDiagram(key, source, cospans); d != nil {
		in.hits.Add(1)
		return d, nil
	}

	sl, err := computeSlices(source, cospans)
	if err != nil {
		return nil, err
	}
	cand := &DiagramN{
		in:        in,
		hash:      key,
		dimension: dim,
		source:    source,
		cospans:   slices.Clone(cospans),
		slices:    sl,
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if d := in.findDiagramLocked(key, source, cospans); d != nil {
		in.hits.Add(1)
		return d, nil
	}
	cand.id = in.nextID.Add(1)
	in.diagrams[key] = append(in.diagrams[key], weak.Make(cand))
	in.misses.Add(1)
	return cand, nil
}

func (in *Interner) findDiagram(key uint64, source Diagram, cospans []Cospan) *DiagramN {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.findDiagramLocked(key, source, cospans)
}

func (in *Interner) findDiagramLocked(key uint64, source Diagram, cospans []Cospan) *DiagramN {
	for _, p := range in.diagrams[key] {
		if d := p.Value(); d != nil && d.source == source && slices.Equal(d.cospans, cospans) {
			return d
		}
	}
	return nil
}

// rewriteN interns a rewrite after checking cone order and dropping unit
// cones. Regular slices of the cones must already be filled in.
func (in *Interner) rewriteN(dim int, cones []Cone) (*RewriteN, error) {
	if dim < 1 {
		return nil, newError(ErrCodeDimension, "rewrite", "dimension %d has no cones", dim)
	}
	kept := make([]Cone, 0, len(cones))
	prevEnd := 0
	for i, c := range cones {
		if c.Index < prevEnd {
			return nil, newError(ErrCodeMalformed, "rewrite", "cone %d at index %d overlaps the previous cone ending at %d", i, c.Index, prevEnd)
		}
		if len(c.SingularSlices) != len(c.Source) || len(c.RegularSlices) != len(c.Source)+1 {
			return nil, newError(ErrCodeMalformed, "rewrite", "cone %d has %d sources, %d singular and %d regular slices",
				i, len(c.Source), len(c.SingularSlices), len(c.RegularSlices))
		}
		if err := c.checkDimension(dim - 1); err != nil {
			return nil, err
		}
		prevEnd = c.Index + len(c.Source)
		if !c.IsUnit() {
			kept = append(kept, c)
		}
	}

	h := hasher{in: in}
	h.int(dim)
	for _, c := range kept {
		h.int(c.Index)
		h.int(len(c.Source))
		for _, s := range c.Source {
			h.cospan(s)
		}
		h.cospan(c.Target)
		for _, s := range c.SingularSlices {
			h.rewrite(s)
		}
	}
	key := h.sum()

	in.mu.Lock()
	defer in.mu.Unlock()
	for _, p := range in.rewrites[key] {
		if r := p.Value(); r != nil && r.dimension == dim && slices.EqualFunc(r.cones, kept, Cone.Equal) {
			in.hits.Add(1)
			return r, nil
		}
	}
	r := &RewriteN{
		in:        in,
		id:        in.nextID.Add(1),
		hash:      key,
		dimension: dim,
		cones:     kept,
	}
	in.rewrites[key] = append(in.rewrites[key], weak.Make(r))
	in.misses.Add(1)
	return r, nil
}

// internerOf returns the interner owning the first interned value among the
// arguments, or the default interner.
func internerOf(ds []Diagram, rs []Rewrite) *Interner {
	for _, d := range ds {
		if d, ok := d.(*DiagramN); ok {
			return d.in
		}
	}
	for _, r := range rs {
		if r, ok := r.(*RewriteN); ok {
			return r.in
		}
	}
	return defaultInterner
}
