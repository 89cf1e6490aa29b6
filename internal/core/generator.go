package core

import (
	"cmp"
	"fmt"
)

// Generator is an atomic cell of a signature.
// Generators are ordered by ID, then by dimension.
type Generator struct {
	ID        int `json:"id"`
	Dimension int `json:"dimension"`
}

// NewGenerator returns the generator with the given id and dimension.
func NewGenerator(id, dimension int) Generator {
	return Generator{ID: id, Dimension: dimension}
}

// Compare orders generators by ID, then dimension.
func (g Generator) Compare(o Generator) int {
	if c := cmp.Compare(g.ID, o.ID); c != 0 {
		return c
	}
	return cmp.Compare(g.Dimension, o.Dimension)
}

func (g Generator) String() string {
	return fmt.Sprintf("g%d@%d", g.ID, g.Dimension)
}

// Orientation records the direction in which a generator occurs.
// Negative marks an inverse occurrence of an invertible generator; Zero marks
// a degenerate occurrence produced by Bubble.
type Orientation int8

const (
	Positive Orientation = iota
	Negative
	Zero
)

// Flip exchanges Positive and Negative. Zero is its own flip.
func (o Orientation) Flip() Orientation {
	switch o {
	case Positive:
		return Negative
	case Negative:
		return Positive
	default:
		return Zero
	}
}

func (o Orientation) String() string {
	switch o {
	case Positive:
		return "+"
	case Negative:
		return "-"
	case Zero:
		return "0"
	default:
		return fmt.Sprintf("Orientation(%d)", int8(o))
	}
}

// Point returns the positively oriented 0-diagram labelled by g.
func (g Generator) Point() Diagram0 {
	return Diagram0{Generator: g}
}
