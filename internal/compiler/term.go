package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/homotopy/internal/core"
)

// term evaluates a boundary term against the generators compiled so far.
func (c *compiler) term(field string, v cue.Value) (core.Diagram, error) {
	if name, err := v.String(); err == nil {
		info, ok := c.sig.Lookup(name)
		if !ok {
			return nil, &CompileError{
				Code:    ErrUnknownReference,
				Field:   field,
				Message: fmt.Sprintf("generator %q is not defined before this point", name),
				Pos:     v.Pos(),
			}
		}
		return info.Cell, nil
	}

	if v.IncompleteKind() != cue.StructKind {
		return nil, c.invalidTerm(field, v, fmt.Sprintf("expected a name or an operator, got %v", v.IncompleteKind()))
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(field, err)
	}
	var op string
	var arg cue.Value
	for iter.Next() {
		if op != "" {
			return nil, c.invalidTerm(field, v, "a term has exactly one operator")
		}
		op, arg = iter.Label(), iter.Value()
	}

	switch op {
	case "identity":
		d, err := c.term(field+".identity", arg)
		if err != nil {
			return nil, err
		}
		return c.sig.Interner().Identity(d), nil
	case "compose":
		return c.compose(field+".compose", arg)
	case "attach":
		return c.attach(field+".attach", arg)
	case "":
		return nil, c.invalidTerm(field, v, "empty term")
	}
	return nil, c.invalidTerm(field, v, fmt.Sprintf("unknown operator %q", op))
}

// compose attaches each term to the target of the ones before it.
func (c *compiler) compose(field string, v cue.Value) (core.Diagram, error) {
	iter, err := v.List()
	if err != nil {
		return nil, c.invalidTerm(field, v, "compose takes a list")
	}

	var acc *core.DiagramN
	for i := 0; iter.Next(); i++ {
		at := fmt.Sprintf("%s[%d]", field, i)
		d, err := c.term(at, iter.Value())
		if err != nil {
			return nil, err
		}
		dn, ok := d.(*core.DiagramN)
		if !ok {
			return nil, c.invalidTerm(at, iter.Value(), "cannot compose a 0-dimensional diagram")
		}
		if acc == nil {
			acc = dn
			continue
		}
		next, err := acc.AttachCell(core.BoundaryPath{Boundary: core.Target}, nil, dn)
		if err != nil {
			return nil, &CompileError{Code: ErrStructural, Field: at, Message: err.Error(), Pos: iter.Value().Pos(), Err: err}
		}
		acc = next
	}
	if acc == nil {
		return nil, c.invalidTerm(field, v, "compose needs at least one term")
	}
	return acc, nil
}

// attach glues cell onto a boundary of base.
func (c *compiler) attach(field string, v cue.Value) (core.Diagram, error) {
	baseVal := v.LookupPath(cue.ParsePath("base"))
	cellVal := v.LookupPath(cue.ParsePath("cell"))
	if !baseVal.Exists() || !cellVal.Exists() {
		return nil, c.invalidTerm(field, v, "attach needs base and cell")
	}

	base, err := c.term(field+".base", baseVal)
	if err != nil {
		return nil, err
	}
	cell, err := c.term(field+".cell", cellVal)
	if err != nil {
		return nil, err
	}
	bn, ok := base.(*core.DiagramN)
	if !ok {
		return nil, c.invalidTerm(field+".base", baseVal, "cannot attach to a 0-dimensional diagram")
	}
	cn, ok := cell.(*core.DiagramN)
	if !ok {
		return nil, c.invalidTerm(field+".cell", cellVal, "cannot attach a 0-dimensional diagram")
	}

	path := core.BoundaryPath{Boundary: core.Target}
	if bv := v.LookupPath(cue.ParsePath("boundary")); bv.Exists() {
		s, err := bv.String()
		if err == nil {
			path.Boundary, err = core.ParseBoundary(s)
		}
		if err != nil {
			return nil, &CompileError{Code: ErrInvalidField, Field: field + ".boundary", Message: "must be \"source\" or \"target\"", Pos: bv.Pos(), Err: err}
		}
	}
	if dv := v.LookupPath(cue.ParsePath("depth")); dv.Exists() {
		n, err := dv.Int64()
		if err != nil || n < 0 {
			return nil, &CompileError{Code: ErrInvalidField, Field: field + ".depth", Message: "must be a non-negative int", Pos: dv.Pos(), Err: err}
		}
		path.Depth = int(n)
	}
	var embedding []int
	if ev := v.LookupPath(cue.ParsePath("embedding")); ev.Exists() {
		if err := ev.Decode(&embedding); err != nil {
			return nil, &CompileError{Code: ErrInvalidField, Field: field + ".embedding", Message: "must be a list of ints", Pos: ev.Pos(), Err: err}
		}
	}

	d, err := bn.AttachCell(path, embedding, cn)
	if err != nil {
		return nil, &CompileError{Code: ErrStructural, Field: field, Message: err.Error(), Pos: v.Pos(), Err: err}
	}
	return d, nil
}

func (c *compiler) invalidTerm(field string, v cue.Value, msg string) error {
	return &CompileError{Code: ErrInvalidTerm, Field: field, Message: msg, Pos: v.Pos()}
}
