package proof

import (
	"fmt"
	"slices"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/homotopy/internal/core"
)

// GeneratorInfo describes one generator of a signature.
type GeneratorInfo struct {
	Generator  core.Generator `json:"generator"`
	Name       string         `json:"name"`
	Cell       core.Diagram   `json:"-"`
	Invertible bool           `json:"invertible"`
}

// Signature is an append-only list of named generators. Generator ids are
// assigned in insertion order starting at 0.
type Signature struct {
	in    *core.Interner
	infos []GeneratorInfo
	names map[string]core.Generator
}

// NewSignature creates an empty signature whose cells live in in. A nil
// interner selects core.Default().
func NewSignature(in *core.Interner) *Signature {
	if in == nil {
		in = core.Default()
	}
	return &Signature{in: in, names: make(map[string]core.Generator)}
}

// Interner returns the interner holding the signature's cells.
func (s *Signature) Interner() *core.Interner { return s.in }

// Len returns the number of generators.
func (s *Signature) Len() int { return len(s.infos) }

// AddZeroCell adds a 0-dimensional generator.
func (s *Signature) AddZeroCell(name string) (core.Generator, error) {
	g := core.NewGenerator(len(s.infos), 0)
	return g, s.Insert(GeneratorInfo{Generator: g, Name: name, Cell: g.Point()})
}

// AddCell adds a generator from source to target. Its dimension is one more
// than theirs.
func (s *Signature) AddCell(name string, source, target core.Diagram, invertible bool) (core.Generator, error) {
	g := core.NewGenerator(len(s.infos), source.Dimension()+1)
	cell, err := s.in.FromGenerator(g, source, target)
	if err != nil {
		return core.Generator{}, err
	}
	return g, s.Insert(GeneratorInfo{Generator: g, Name: name, Cell: cell, Invertible: invertible})
}

// Insert appends a fully built generator. Its id must be the next free id.
// Names are NFC-normalized and must be unique.
func (s *Signature) Insert(info GeneratorInfo) error {
	if info.Generator.ID != len(s.infos) {
		return fmt.Errorf("generator id %d, want %d", info.Generator.ID, len(s.infos))
	}
	if info.Cell == nil || info.Cell.Dimension() != info.Generator.Dimension {
		return fmt.Errorf("generator %s has no cell of its dimension", info.Generator)
	}
	info.Name = norm.NFC.String(info.Name)
	if info.Name == "" {
		info.Name = fmt.Sprintf("cell %d", info.Generator.ID)
	}
	if _, dup := s.names[info.Name]; dup {
		return &ActionError{Code: ErrCodeDuplicateName, Action: "signature", Message: fmt.Sprintf("name %q already used", info.Name)}
	}
	s.infos = append(s.infos, info)
	s.names[info.Name] = info.Generator
	return nil
}

// Info returns the description of g.
func (s *Signature) Info(g core.Generator) (GeneratorInfo, bool) {
	if g.ID < 0 || g.ID >= len(s.infos) || s.infos[g.ID].Generator != g {
		return GeneratorInfo{}, false
	}
	return s.infos[g.ID], true
}

// Lookup finds a generator by name.
func (s *Signature) Lookup(name string) (GeneratorInfo, bool) {
	g, ok := s.names[norm.NFC.String(name)]
	if !ok {
		return GeneratorInfo{}, false
	}
	return s.infos[g.ID], true
}

// Generators returns every generator in id order.
func (s *Signature) Generators() []GeneratorInfo { return slices.Clone(s.infos) }

// Cell returns the defining diagram of g.
func (s *Signature) Cell(g core.Generator) (core.Diagram, bool) {
	info, ok := s.Info(g)
	return info.Cell, ok
}

// IsInvertible reports whether g was declared invertible.
func (s *Signature) IsInvertible(g core.Generator) bool {
	info, ok := s.Info(g)
	return ok && info.Invertible
}

// Name returns the display name of g, or its generator string if unknown.
func (s *Signature) Name(g core.Generator) string {
	if info, ok := s.Info(g); ok {
		return info.Name
	}
	return g.String()
}
