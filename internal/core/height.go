package core

import (
	"fmt"
	"strconv"
)

// HeightKind distinguishes regular from singular heights.
type HeightKind uint8

const (
	RegularKind HeightKind = iota
	SingularKind
)

// Height addresses a slice along the top dimension of a diagram.
// Regular(i) is the i-th regular slice (0..size), Singular(i) the i-th
// singular slice (0..size-1).
type Height struct {
	Kind  HeightKind `json:"kind"`
	Index int        `json:"index"`
}

// Regular returns the regular height i.
func Regular(i int) Height { return Height{Kind: RegularKind, Index: i} }

// Singular returns the singular height i.
func Singular(i int) Height { return Height{Kind: SingularKind, Index: i} }

// IsSingular reports whether h is a singular height.
func (h Height) IsSingular() bool { return h.Kind == SingularKind }

// Int maps heights onto 0, 1, 2, ... in slice order.
func (h Height) Int() int {
	if h.Kind == SingularKind {
		return 2*h.Index + 1
	}
	return 2 * h.Index
}

// HeightFromInt inverts Height.Int.
func HeightFromInt(k int) Height {
	if k%2 == 1 {
		return Singular(k / 2)
	}
	return Regular(k / 2)
}

func (h Height) String() string {
	if h.Kind == SingularKind {
		return fmt.Sprintf("s%d", h.Index)
	}
	return fmt.Sprintf("r%d", h.Index)
}

// ParseHeight accepts the String form of a height: "r<i>" or "s<i>".
func ParseHeight(s string) (Height, error) {
	if len(s) >= 2 && (s[0] == 'r' || s[0] == 's') {
		if i, err := strconv.Atoi(s[1:]); err == nil && i >= 0 {
			if s[0] == 's' {
				return Singular(i), nil
			}
			return Regular(i), nil
		}
	}
	return Height{}, fmt.Errorf("invalid height %q", s)
}

// Boundary is the source or target side of a diagram.
type Boundary uint8

const (
	Source Boundary = iota
	Target
)

// Flip returns the opposite boundary.
func (b Boundary) Flip() Boundary {
	if b == Source {
		return Target
	}
	return Source
}

func (b Boundary) String() string {
	if b == Source {
		return "source"
	}
	return "target"
}

// ParseBoundary accepts "source" or "target".
func ParseBoundary(s string) (Boundary, error) {
	switch s {
	case "source":
		return Source, nil
	case "target":
		return Target, nil
	}
	return 0, fmt.Errorf("unknown boundary %q", s)
}

// SliceIndex addresses either a boundary or an interior height.
type SliceIndex struct {
	Interior bool     `json:"interior"`
	Boundary Boundary `json:"boundary,omitempty"`
	Height   Height   `json:"height,omitempty"`
}

// AtBoundary returns the slice index of a boundary.
func AtBoundary(b Boundary) SliceIndex { return SliceIndex{Boundary: b} }

// AtHeight returns the slice index of an interior height.
func AtHeight(h Height) SliceIndex { return SliceIndex{Interior: true, Height: h} }

func (s SliceIndex) String() string {
	if s.Interior {
		return s.Height.String()
	}
	return s.Boundary.String()
}

// ParseSliceIndex accepts the String form of a slice index: "source",
// "target" or a height.
func ParseSliceIndex(s string) (SliceIndex, error) {
	if b, err := ParseBoundary(s); err == nil {
		return AtBoundary(b), nil
	}
	h, err := ParseHeight(s)
	if err != nil {
		return SliceIndex{}, fmt.Errorf("invalid slice index %q", s)
	}
	return AtHeight(h), nil
}

// BoundaryPath selects a boundary of a diagram: descend Depth times into the
// source, then take Boundary. Depth 0 is the diagram's own source or target.
type BoundaryPath struct {
	Boundary Boundary `json:"boundary"`
	Depth    int      `json:"depth"`
}

func (p BoundaryPath) String() string {
	return fmt.Sprintf("%s@%d", p.Boundary, p.Depth)
}

// SplitPath turns a slice path, read from the top dimension downwards, into a
// boundary path and the interior heights below it. Every slice of a diagram
// shares the diagram's lower boundaries, so only the last boundary step
// matters. ok is false when the path contains no boundary step.
func SplitPath(path []SliceIndex) (bp BoundaryPath, interior []Height, ok bool) {
	last := -1
	for i, s := range path {
		if !s.Interior {
			last = i
		}
	}
	if last < 0 {
		interior = make([]Height, len(path))
		for i, s := range path {
			interior[i] = s.Height
		}
		return BoundaryPath{}, interior, false
	}
	bp = BoundaryPath{Boundary: path[last].Boundary, Depth: last}
	for _, s := range path[last+1:] {
		interior = append(interior, s.Height)
	}
	return bp, interior, true
}

// Bias breaks ties when a colimit admits more than one ordering.
type Bias int8

const (
	// NoBias rejects ambiguous merges.
	NoBias Bias = iota
	// BiasLower places content from lower slices first.
	BiasLower
	// BiasHigher places content from higher slices first.
	BiasHigher
)

func (b Bias) String() string {
	switch b {
	case BiasLower:
		return "lower"
	case BiasHigher:
		return "higher"
	default:
		return "none"
	}
}

// ParseBias accepts "", "none", "lower" or "higher".
func ParseBias(s string) (Bias, error) {
	switch s {
	case "", "none":
		return NoBias, nil
	case "lower":
		return BiasLower, nil
	case "higher":
		return BiasHigher, nil
	}
	return NoBias, fmt.Errorf("unknown bias %q", s)
}

// Direction chooses which half of an expansion happens first.
// Forward moves the selected point to the later of the two new levels;
// Backward moves it to the earlier one.
type Direction int8

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// ParseDirection accepts "forward" or "backward".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "", "forward":
		return Forward, nil
	case "backward":
		return Backward, nil
	}
	return Forward, fmt.Errorf("unknown direction %q", s)
}
