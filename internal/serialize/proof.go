package serialize

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/homotopy/internal/core"
	"github.com/roach88/homotopy/internal/proof"
)

// FormatVersion is the version written into every proof record.
const FormatVersion = 1

// GeneratorRecord is one signature entry. Cell is a node key.
type GeneratorRecord struct {
	ID         int    `json:"id"`
	Dimension  int    `json:"dimension"`
	Name       string `json:"name"`
	Invertible bool   `json:"invertible"`
	Cell       string `json:"cell"`
}

// WorkspaceRecord is a workspace with its diagram as a node key.
type WorkspaceRecord struct {
	Diagram string            `json:"diagram"`
	Path    []core.SliceIndex `json:"path,omitempty"`
}

// BoundaryRecord is a pending boundary with its diagram as a node key.
type BoundaryRecord struct {
	Boundary string `json:"boundary"`
	Diagram  string `json:"diagram"`
}

// ProofRecord is the header of a serialized proof. The diagrams it refers to
// live in a Store.
type ProofRecord struct {
	Version   int               `json:"version"`
	Seq       int64             `json:"seq"`
	Signature []GeneratorRecord `json:"signature"`
	Workspace *WorkspaceRecord  `json:"workspace,omitempty"`
	Boundary  *BoundaryRecord   `json:"boundary,omitempty"`
}

// Document is a self-contained proof: the header plus every node it needs.
type Document struct {
	ProofRecord
	Nodes map[string]json.RawMessage `json:"nodes"`
}

// EncodeProof stores every diagram of p and returns the header.
func EncodeProof(p *proof.Proof) (*ProofRecord, *Store, error) {
	s := NewStore()
	rec := &ProofRecord{Version: FormatVersion, Seq: p.Clock().Current()}
	for _, info := range p.Signature().Generators() {
		key, err := s.PutDiagram(info.Cell)
		if err != nil {
			return nil, nil, fmt.Errorf("generator %q: %w", info.Name, err)
		}
		rec.Signature = append(rec.Signature, GeneratorRecord{
			ID:         info.Generator.ID,
			Dimension:  info.Generator.Dimension,
			Name:       info.Name,
			Invertible: info.Invertible,
			Cell:       key,
		})
	}
	if w := p.Workspace(); w != nil {
		key, err := s.PutDiagram(w.Diagram)
		if err != nil {
			return nil, nil, fmt.Errorf("workspace: %w", err)
		}
		rec.Workspace = &WorkspaceRecord{Diagram: key, Path: w.Path}
	}
	if b := p.Boundary(); b != nil {
		key, err := s.PutDiagram(b.Diagram)
		if err != nil {
			return nil, nil, fmt.Errorf("boundary: %w", err)
		}
		rec.Boundary = &BoundaryRecord{Boundary: b.Boundary.String(), Diagram: key}
	}
	return rec, s, nil
}

// DecodeProof rebuilds a proof from a header and its store. Extra options
// are applied after the decoded state.
func DecodeProof(rec *ProofRecord, s *Store, in *core.Interner, opts ...proof.Option) (*proof.Proof, error) {
	if rec.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported proof version %d", rec.Version)
	}
	dec := s.NewDecoder(in)
	sig := proof.NewSignature(in)
	for _, g := range rec.Signature {
		cell, err := dec.Diagram(g.Cell)
		if err != nil {
			return nil, fmt.Errorf("generator %q: %w", g.Name, err)
		}
		err = sig.Insert(proof.GeneratorInfo{
			Generator:  core.NewGenerator(g.ID, g.Dimension),
			Name:       g.Name,
			Cell:       cell,
			Invertible: g.Invertible,
		})
		if err != nil {
			return nil, fmt.Errorf("generator %q: %w", g.Name, err)
		}
	}

	base := []proof.Option{proof.WithClock(proof.NewClockAt(rec.Seq))}
	if rec.Workspace != nil {
		d, err := dec.Diagram(rec.Workspace.Diagram)
		if err != nil {
			return nil, fmt.Errorf("workspace: %w", err)
		}
		base = append(base, proof.WithWorkspace(&proof.Workspace{Diagram: d, Path: rec.Workspace.Path}))
	}
	if rec.Boundary != nil {
		b, err := core.ParseBoundary(rec.Boundary.Boundary)
		if err != nil {
			return nil, err
		}
		d, err := dec.Diagram(rec.Boundary.Diagram)
		if err != nil {
			return nil, fmt.Errorf("boundary: %w", err)
		}
		base = append(base, proof.WithBoundary(&proof.PendingBoundary{Boundary: b, Diagram: d}))
	}
	return proof.New(sig, append(base, opts...)...), nil
}

// Digest returns the content hash of a proof header. Two proofs with equal
// signatures, workspaces and boundaries share a digest.
func (rec *ProofRecord) Digest() (string, error) {
	gens := make(Array, len(rec.Signature))
	for i, g := range rec.Signature {
		gens[i] = Object{
			"id":         Int(g.ID),
			"dimension":  Int(g.Dimension),
			"name":       String(g.Name),
			"invertible": Bool(g.Invertible),
			"cell":       String(g.Cell),
		}
	}
	header := Object{
		"version":   Int(rec.Version),
		"signature": gens,
	}
	if w := rec.Workspace; w != nil {
		path := make(Array, len(w.Path))
		for i, s := range w.Path {
			path[i] = Object{
				"interior": Bool(s.Interior),
				"boundary": Int(s.Boundary),
				"height":   Int(s.Height.Int()),
			}
		}
		header["workspace"] = Object{"diagram": String(w.Diagram), "path": path}
	}
	if b := rec.Boundary; b != nil {
		header["boundary"] = Object{"boundary": String(b.Boundary), "diagram": String(b.Diagram)}
	}
	return ProofDigest(header)
}

// MarshalProof encodes p as a self-contained JSON document.
func MarshalProof(p *proof.Proof) ([]byte, error) {
	rec, s, err := EncodeProof(p)
	if err != nil {
		return nil, err
	}
	doc := Document{ProofRecord: *rec, Nodes: make(map[string]json.RawMessage, s.Len())}
	for _, key := range s.Keys() {
		data, _ := s.Node(key)
		doc.Nodes[key] = data
	}
	return json.Marshal(doc)
}

// UnmarshalProof decodes a document written by MarshalProof into in.
func UnmarshalProof(data []byte, in *core.Interner, opts ...proof.Option) (*proof.Proof, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("proof document: %w", err)
	}
	s := NewStore()
	for key, node := range doc.Nodes {
		if err := s.Add(key, node); err != nil {
			return nil, err
		}
	}
	return DecodeProof(&doc.ProofRecord, s, in, opts...)
}
