package serialize

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/homotopy/internal/core"
)

// Record kinds.
const (
	KindPoint    = "point"
	KindRewrite0 = "rewrite0"
	KindDiagram  = "diagram"
	KindRewrite  = "rewrite"
	KindCone     = "cone"
)

// Store maps keys to canonical node records. Encoding memoizes interned
// values so shared substructure is visited once.
type Store struct {
	nodes map[string][]byte
	memo  map[any]string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{nodes: make(map[string][]byte), memo: make(map[any]string)}
}

// Len returns the number of records.
func (s *Store) Len() int { return len(s.nodes) }

// Keys returns every key in sorted order.
func (s *Store) Keys() []string {
	return slices.Sorted(maps.Keys(s.nodes))
}

// Node returns the canonical bytes stored under key.
func (s *Store) Node(key string) ([]byte, bool) {
	data, ok := s.nodes[key]
	return data, ok
}

// Add inserts a record read from elsewhere. The key must match the data.
func (s *Store) Add(key string, data []byte) error {
	if got := NodeKey(data); got != key {
		return fmt.Errorf("record %s hashes to %s", key, got)
	}
	s.nodes[key] = data
	return nil
}

func (s *Store) put(o Object) (string, error) {
	data, err := MarshalCanonical(o)
	if err != nil {
		return "", err
	}
	key := NodeKey(data)
	s.nodes[key] = data
	return key, nil
}

// PutDiagram stores d and everything reachable from it.
func (s *Store) PutDiagram(d core.Diagram) (string, error) {
	switch d := d.(type) {
	case core.Diagram0:
		if key, ok := s.memo[d]; ok {
			return key, nil
		}
		key, err := s.put(Object{
			"kind":        String(KindPoint),
			"generator":   Int(d.Generator.ID),
			"dimension":   Int(d.Generator.Dimension),
			"orientation": Int(d.Orientation),
		})
		if err != nil {
			return "", err
		}
		s.memo[d] = key
		return key, nil
	case *core.DiagramN:
		if key, ok := s.memo[d]; ok {
			return key, nil
		}
		source, err := s.PutDiagram(d.Source())
		if err != nil {
			return "", err
		}
		cospans, err := s.putCospans(d.Cospans())
		if err != nil {
			return "", err
		}
		key, err := s.put(Object{
			"kind":    String(KindDiagram),
			"source":  String(source),
			"cospans": cospans,
		})
		if err != nil {
			return "", err
		}
		s.memo[d] = key
		return key, nil
	}
	return "", fmt.Errorf("unsupported diagram %T", d)
}

// PutRewrite stores r and everything reachable from it.
func (s *Store) PutRewrite(r core.Rewrite) (string, error) {
	switch r := r.(type) {
	case core.Rewrite0:
		if key, ok := s.memo[r]; ok {
			return key, nil
		}
		source, err := s.PutDiagram(r.Source)
		if err != nil {
			return "", err
		}
		target, err := s.PutDiagram(r.Target)
		if err != nil {
			return "", err
		}
		key, err := s.put(Object{
			"kind":   String(KindRewrite0),
			"source": String(source),
			"target": String(target),
		})
		if err != nil {
			return "", err
		}
		s.memo[r] = key
		return key, nil
	case *core.RewriteN:
		if key, ok := s.memo[r]; ok {
			return key, nil
		}
		cones := make(Array, 0, len(r.Cones()))
		for _, c := range r.Cones() {
			key, err := s.putCone(c)
			if err != nil {
				return "", err
			}
			cones = append(cones, String(key))
		}
		key, err := s.put(Object{
			"kind":      String(KindRewrite),
			"dimension": Int(r.Dimension()),
			"cones":     cones,
		})
		if err != nil {
			return "", err
		}
		s.memo[r] = key
		return key, nil
	}
	return "", fmt.Errorf("unsupported rewrite %T", r)
}

func (s *Store) putCone(c core.Cone) (string, error) {
	sources, err := s.putCospans(c.Source)
	if err != nil {
		return "", err
	}
	target, err := s.putCospan(c.Target)
	if err != nil {
		return "", err
	}
	singular := make(Array, len(c.SingularSlices))
	for i, r := range c.SingularSlices {
		key, err := s.PutRewrite(r)
		if err != nil {
			return "", err
		}
		singular[i] = String(key)
	}
	return s.put(Object{
		"kind":     String(KindCone),
		"index":    Int(c.Index),
		"sources":  sources,
		"target":   target,
		"singular": singular,
	})
}

func (s *Store) putCospans(cs []core.Cospan) (Array, error) {
	out := make(Array, len(cs))
	for i, c := range cs {
		o, err := s.putCospan(c)
		if err != nil {
			return nil, err
		}
		out[i] = o
	}
	return out, nil
}

func (s *Store) putCospan(c core.Cospan) (Object, error) {
	f, err := s.PutRewrite(c.Forward)
	if err != nil {
		return nil, err
	}
	b, err := s.PutRewrite(c.Backward)
	if err != nil {
		return nil, err
	}
	return Object{"forward": String(f), "backward": String(b)}, nil
}

// record is the decoded form of any node.
type record struct {
	Kind        string          `json:"kind"`
	Generator   int             `json:"generator"`
	Dimension   int             `json:"dimension"`
	Orientation int             `json:"orientation"`
	Index       int             `json:"index"`
	Source      string          `json:"source"`
	Target      json.RawMessage `json:"target"`
	Cospans     []cospanRecord  `json:"cospans"`
	Sources     []cospanRecord  `json:"sources"`
	Cones       []string        `json:"cones"`
	Singular    []string        `json:"singular"`
}

type cospanRecord struct {
	Forward  string `json:"forward"`
	Backward string `json:"backward"`
}

// Decoder rebuilds values from a store into an interner.
type Decoder struct {
	store *Store
	in    *core.Interner
	memo  map[string]any
}

// NewDecoder creates a decoder. A nil interner selects core.Default().
func (s *Store) NewDecoder(in *core.Interner) *Decoder {
	if in == nil {
		in = core.Default()
	}
	return &Decoder{store: s, in: in, memo: make(map[string]any)}
}

func (dec *Decoder) record(key, kind string) (*record, error) {
	data, ok := dec.store.nodes[key]
	if !ok {
		return nil, fmt.Errorf("missing record %s", key)
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("record %s: %w", key, err)
	}
	if kind != "" && rec.Kind != kind {
		return nil, fmt.Errorf("record %s is a %s, want %s", key, rec.Kind, kind)
	}
	return &rec, nil
}

// Diagram decodes the diagram stored under key.
func (dec *Decoder) Diagram(key string) (core.Diagram, error) {
	if v, ok := dec.memo[key]; ok {
		d, ok := v.(core.Diagram)
		if !ok {
			return nil, fmt.Errorf("record %s is not a diagram", key)
		}
		return d, nil
	}
	rec, err := dec.record(key, "")
	if err != nil {
		return nil, err
	}
	var d core.Diagram
	switch rec.Kind {
	case KindPoint:
		d = core.Diagram0{
			Generator:   core.NewGenerator(rec.Generator, rec.Dimension),
			Orientation: core.Orientation(rec.Orientation),
		}
	case KindDiagram:
		source, err := dec.Diagram(rec.Source)
		if err != nil {
			return nil, err
		}
		cospans, err := dec.cospans(rec.Cospans)
		if err != nil {
			return nil, err
		}
		if d, err = dec.in.NewDiagramN(source, cospans); err != nil {
			return nil, fmt.Errorf("record %s: %w", key, err)
		}
	default:
		return nil, fmt.Errorf("record %s is a %s, want a diagram", key, rec.Kind)
	}
	dec.memo[key] = d
	return d, nil
}

// Rewrite decodes the rewrite stored under key.
func (dec *Decoder) Rewrite(key string) (core.Rewrite, error) {
	if v, ok := dec.memo[key]; ok {
		r, ok := v.(core.Rewrite)
		if !ok {
			return nil, fmt.Errorf("record %s is not a rewrite", key)
		}
		return r, nil
	}
	rec, err := dec.record(key, "")
	if err != nil {
		return nil, err
	}
	var r core.Rewrite
	switch rec.Kind {
	case KindRewrite0:
		var target string
		if err := json.Unmarshal(rec.Target, &target); err != nil {
			return nil, fmt.Errorf("record %s target: %w", key, err)
		}
		s, err := dec.point(rec.Source)
		if err != nil {
			return nil, err
		}
		t, err := dec.point(target)
		if err != nil {
			return nil, err
		}
		r = core.NewRewrite0(s, t)
	case KindRewrite:
		cones := make([]core.Cone, len(rec.Cones))
		for i, ck := range rec.Cones {
			if cones[i], err = dec.cone(ck); err != nil {
				return nil, err
			}
		}
		if r, err = dec.in.NewRewriteN(rec.Dimension, cones); err != nil {
			return nil, fmt.Errorf("record %s: %w", key, err)
		}
	default:
		return nil, fmt.Errorf("record %s is a %s, want a rewrite", key, rec.Kind)
	}
	dec.memo[key] = r
	return r, nil
}

func (dec *Decoder) point(key string) (core.Diagram0, error) {
	d, err := dec.Diagram(key)
	if err != nil {
		return core.Diagram0{}, err
	}
	p, ok := d.(core.Diagram0)
	if !ok {
		return core.Diagram0{}, fmt.Errorf("record %s is not a point", key)
	}
	return p, nil
}

func (dec *Decoder) cone(key string) (core.Cone, error) {
	rec, err := dec.record(key, KindCone)
	if err != nil {
		return core.Cone{}, err
	}
	var target cospanRecord
	if err := json.Unmarshal(rec.Target, &target); err != nil {
		return core.Cone{}, fmt.Errorf("record %s target: %w", key, err)
	}
	sources, err := dec.cospans(rec.Sources)
	if err != nil {
		return core.Cone{}, err
	}
	t, err := dec.cospan(target)
	if err != nil {
		return core.Cone{}, err
	}
	singular := make([]core.Rewrite, len(rec.Singular))
	for i, sk := range rec.Singular {
		if singular[i], err = dec.Rewrite(sk); err != nil {
			return core.Cone{}, err
		}
	}
	c, err := core.NewCone(rec.Index, sources, t, singular)
	if err != nil {
		return core.Cone{}, fmt.Errorf("record %s: %w", key, err)
	}
	return c, nil
}

func (dec *Decoder) cospans(recs []cospanRecord) ([]core.Cospan, error) {
	out := make([]core.Cospan, len(recs))
	for i, rec := range recs {
		c, err := dec.cospan(rec)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

func (dec *Decoder) cospan(rec cospanRecord) (core.Cospan, error) {
	f, err := dec.Rewrite(rec.Forward)
	if err != nil {
		return core.Cospan{}, err
	}
	b, err := dec.Rewrite(rec.Backward)
	if err != nil {
		return core.Cospan{}, err
	}
	return core.Cospan{Forward: f, Backward: b}, nil
}
