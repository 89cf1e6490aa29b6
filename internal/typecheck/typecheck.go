// Package typecheck decides whether a diagram is well typed with respect to a
// signature of generators.
//
// A diagram is well typed when every cone commutes, every point rewrite is
// valid, every generator it mentions is in the signature with the right
// dimension and orientation, and the neighbourhood of every top-dimensional
// point in a level matches the cell of its generator.
//
// Levels that carry no top-dimensional point are accepted once their cones
// commute. These are the homotopy levels produced by contraction and
// expansion, and their coherence follows from the colimit construction rather
// than from a signature cell.
//
// The signature's cells and the diagram under test must share an interner:
// neighbourhoods are compared by identity.
package typecheck

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/homotopy/internal/core"
)

// Signature supplies the cell of every generator.
type Signature interface {
	// Cell returns the diagram of g, or false if g is unknown.
	Cell(g core.Generator) (core.Diagram, bool)

	// IsInvertible reports whether g may occur with negative orientation.
	IsInvertible(g core.Generator) bool
}

// Mode selects how much of a diagram is checked.
type Mode int

const (
	// Shallow checks the top level of the diagram: its cospans and the
	// neighbourhoods of its own levels.
	Shallow Mode = iota

	// Deep additionally checks every slice, recursively.
	Deep
)

// String returns the mode name.
func (m Mode) String() string {
	if m == Deep {
		return "deep"
	}
	return "shallow"
}

// ParseMode parses "shallow" or "deep". The empty string is Shallow.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "shallow":
		return Shallow, nil
	case "deep":
		return Deep, nil
	}
	return Shallow, fmt.Errorf("unknown typecheck mode %q", s)
}

type checker struct {
	sig      Signature
	mode     Mode
	diagrams map[*core.DiagramN]bool
	rewrites map[*core.RewriteN]bool
	points   map[*core.DiagramN]bool
}

// Check typechecks d against sig. It returns a *TypecheckError for the first
// problem found, or an error wrapping core.ErrCancelled if ctx ends first.
func Check(ctx context.Context, sig Signature, d core.Diagram, mode Mode) error {
	c := &checker{
		sig:      sig,
		mode:     mode,
		diagrams: make(map[*core.DiagramN]bool),
		rewrites: make(map[*core.RewriteN]bool),
		points:   make(map[*core.DiagramN]bool),
	}
	if err := c.generators(d); err != nil {
		return err
	}
	return c.diagram(ctx, d, nil)
}

// generators checks every point of d, including those only reachable
// through regular slices.
func (c *checker) generators(d core.Diagram) error {
	checked := make(map[core.Generator]bool)
	var walk func(core.Diagram) error
	walk = func(d core.Diagram) error {
		switch d := d.(type) {
		case core.Diagram0:
			if d.Orientation == core.Negative && !c.sig.IsInvertible(d.Generator) {
				return &TypecheckError{
					Code:    ErrNotInvertible,
					Message: fmt.Sprintf("%s occurs inverted but is not invertible", d.Generator),
				}
			}
			if checked[d.Generator] {
				return nil
			}
			checked[d.Generator] = true
			cell, ok := c.sig.Cell(d.Generator)
			if !ok {
				return &TypecheckError{
					Code:    ErrUnknownGenerator,
					Message: fmt.Sprintf("%s is not in the signature", d.Generator),
				}
			}
			if cell.Dimension() != d.Generator.Dimension {
				return &TypecheckError{
					Code:    ErrGeneratorDimension,
					Message: fmt.Sprintf("%s has a cell of dimension %d", d.Generator, cell.Dimension()),
				}
			}
		case *core.DiagramN:
			if c.points[d] {
				return nil
			}
			c.points[d] = true
			for _, s := range d.Slices() {
				if err := walk(s); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return walk(d)
}

func (c *checker) diagram(ctx context.Context, d core.Diagram, path []core.SliceIndex) error {
	dn, ok := d.(*core.DiagramN)
	if !ok || c.diagrams[dn] {
		return nil
	}
	c.diagrams[dn] = true
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", core.ErrCancelled, err)
	}

	for i, cs := range dn.Cospans() {
		at := append(slices.Clone(path), core.AtHeight(core.Singular(i)))
		if err := c.rewrite(ctx, cs.Forward, at); err != nil {
			return err
		}
		if err := c.rewrite(ctx, cs.Backward, at); err != nil {
			return err
		}
		if err := c.neighbourhood(dn, i, at); err != nil {
			return err
		}
	}

	if c.mode != Deep {
		return nil
	}
	for k, s := range dn.Slices() {
		at := append(slices.Clone(path), core.AtHeight(core.HeightFromInt(k)))
		if err := c.diagram(ctx, s, at); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) rewrite(ctx context.Context, r core.Rewrite, path []core.SliceIndex) error {
	switch r := r.(type) {
	case core.Rewrite0:
		if !r.IsValid() {
			return &TypecheckError{
				Code:    ErrInvalidPointMap,
				Path:    path,
				Message: fmt.Sprintf("rewrite %s is not valid", r),
			}
		}
	case *core.RewriteN:
		if c.rewrites[r] {
			return nil
		}
		c.rewrites[r] = true
		for _, cone := range r.Cones() {
			if err := cone.Check(); err != nil {
				return &TypecheckError{
					Code:    ErrConeNotCommuting,
					Path:    path,
					Message: fmt.Sprintf("cone at %d", cone.Index),
					Err:     err,
				}
			}
			if c.mode != Deep {
				continue
			}
			for _, s := range cone.Source {
				if err := c.rewrite(ctx, s.Forward, path); err != nil {
					return err
				}
				if err := c.rewrite(ctx, s.Backward, path); err != nil {
					return err
				}
			}
			for _, s := range cone.SingularSlices {
				if err := c.rewrite(ctx, s, path); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// neighbourhood checks level i of d: every top-dimensional point in its
// singular slice must be witnessed by exactly one embedding of its
// generator's cell whose legs are contained in the level's legs.
func (c *checker) neighbourhood(d *core.DiagramN, i int, path []core.SliceIndex) error {
	n := d.Dimension()
	cs := d.Cospan(i)
	var err error
	core.Points(d.SingularSlice(i), func(p core.Diagram0, count int) {
		if err != nil || p.Generator.Dimension != n || p.Orientation == core.Zero {
			return
		}
		cell, cerr := c.cellOf(p)
		if cerr != nil {
			cerr.Path = path
			err = cerr
			return
		}
		found := 0
		for _, e := range core.Embeddings(cell.Source(), d.RegularSlice(i)) {
			if !core.Embeds(cell.Target(), d.RegularSlice(i+1), e) {
				continue
			}
			padded := cell.Cospan(0).Pad(e)
			if contains(cs.Forward, padded.Forward) && contains(cs.Backward, padded.Backward) {
				found++
			}
		}
		if found != count {
			err = &TypecheckError{
				Code:    ErrNeighbourhood,
				Path:    path,
				Message: fmt.Sprintf("%d occurrences of %s but %d match its cell", count, p, found),
			}
		}
	})
	return err
}

// cellOf returns the cell p must be a neighbourhood of: its generator's
// signature cell, inverted for a negative occurrence. A cell that is not a
// single level cannot witness any occurrence.
func (c *checker) cellOf(p core.Diagram0) (*core.DiagramN, *TypecheckError) {
	d, ok := c.sig.Cell(p.Generator)
	if !ok {
		return nil, &TypecheckError{
			Code:    ErrUnknownGenerator,
			Message: fmt.Sprintf("%s is not in the signature", p.Generator),
		}
	}
	cell, ok := d.(*core.DiagramN)
	if !ok || cell.Size() != 1 {
		return nil, &TypecheckError{
			Code:    ErrMalformedCell,
			Message: fmt.Sprintf("cell of %s is not a single level", p.Generator),
		}
	}
	if p.Orientation == core.Negative {
		inv, err := cell.Inverse()
		if err != nil {
			return nil, &TypecheckError{
				Code:    ErrMalformedCell,
				Message: fmt.Sprintf("cell of %s cannot be inverted", p.Generator),
				Err:     err,
			}
		}
		return inv, nil
	}
	return cell, nil
}

// contains reports whether every cone of sub occurs in r.
func contains(r, sub core.Rewrite) bool {
	switch sub := sub.(type) {
	case core.Rewrite0:
		return r == core.Rewrite(sub)
	case *core.RewriteN:
		rn, ok := r.(*core.RewriteN)
		if !ok {
			return false
		}
		cones := rn.Cones()
		for _, cone := range sub.Cones() {
			if !slices.ContainsFunc(cones, cone.Equal) {
				return false
			}
		}
		return true
	}
	return false
}
