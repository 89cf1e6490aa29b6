// Package compiler turns CUE signature files into proof signatures.
//
// A signature file declares generators in dependency order. The label is the
// generator's name; a generator without boundaries is a 0-cell:
//
//	generator: {
//		x: {}
//		f: {source: "x", target: "x"}
//		m: {source: compose: ["f", "f"], target: "f"}
//		a: {source: "f", target: "f", invertible: true}
//	}
//
// Boundaries are terms:
//   - "name": the cell of an earlier generator
//   - {identity: term}: the identity on a term
//   - {compose: [t1, t2, ...]}: each term attached to the target of the
//     previous ones
//   - {attach: {base: t, cell: t, boundary: "target", depth: 0, embedding: [...]}}
package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/homotopy/internal/core"
	"github.com/roach88/homotopy/internal/proof"
)

// CompileSignature builds a signature in interner in from the generator
// block of v. Generators get ids in declaration order.
func CompileSignature(v cue.Value, in *core.Interner) (*proof.Signature, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError("cue", err)
	}

	gens := v.LookupPath(cue.ParsePath("generator"))
	if !gens.Exists() {
		return nil, &CompileError{
			Code:    ErrNoGenerators,
			Field:   "generator",
			Message: "generator block is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := gens.Fields()
	if err != nil {
		return nil, formatCUEError("generator", err)
	}

	c := &compiler{sig: proof.NewSignature(in)}
	for iter.Next() {
		if err := c.generator(iter.Label(), iter.Value()); err != nil {
			return nil, err
		}
	}

	if c.sig.Len() == 0 {
		return nil, &CompileError{
			Code:    ErrNoGenerators,
			Field:   "generator",
			Message: "at least one generator is required",
			Pos:     gens.Pos(),
		}
	}
	return c.sig, nil
}

type compiler struct {
	sig *proof.Signature
}

// generator compiles one generator entry and appends it to the signature.
func (c *compiler) generator(name string, v cue.Value) error {
	field := "generator." + name
	if err := v.Err(); err != nil {
		return formatCUEError(field, err)
	}
	if v.IncompleteKind() != cue.StructKind {
		return &CompileError{
			Code:    ErrInvalidField,
			Field:   field,
			Message: fmt.Sprintf("must be a struct, got %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}

	invertible := false
	if iv := v.LookupPath(cue.ParsePath("invertible")); iv.Exists() {
		b, err := iv.Bool()
		if err != nil {
			return &CompileError{
				Code:    ErrInvalidField,
				Field:   field + ".invertible",
				Message: "must be a bool",
				Pos:     iv.Pos(),
				Err:     err,
			}
		}
		invertible = b
	}

	src := v.LookupPath(cue.ParsePath("source"))
	tgt := v.LookupPath(cue.ParsePath("target"))
	switch {
	case !src.Exists() && !tgt.Exists():
		if invertible {
			return &CompileError{
				Code:    ErrInvalidField,
				Field:   field + ".invertible",
				Message: "a 0-cell cannot be invertible",
				Pos:     v.Pos(),
			}
		}
		_, err := c.sig.AddZeroCell(name)
		return c.insertError(field, v, err)
	case !src.Exists() || !tgt.Exists():
		return &CompileError{
			Code:    ErrMissingBoundary,
			Field:   field,
			Message: "source and target must be given together",
			Pos:     v.Pos(),
		}
	}

	source, err := c.term(field+".source", src)
	if err != nil {
		return err
	}
	target, err := c.term(field+".target", tgt)
	if err != nil {
		return err
	}
	_, err = c.sig.AddCell(name, source, target, invertible)
	return c.insertError(field, v, err)
}

func (c *compiler) insertError(field string, v cue.Value, err error) error {
	if err == nil {
		return nil
	}
	code := ErrStructural
	if proof.IsActionError(err, proof.ErrCodeDuplicateName) {
		code = ErrDuplicateName
	}
	return &CompileError{Code: code, Field: field, Message: err.Error(), Pos: v.Pos(), Err: err}
}
