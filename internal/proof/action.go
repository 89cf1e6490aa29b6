package proof

import "github.com/roach88/homotopy/internal/core"

// Action is a discrete edit submitted to Proof.Update.
type Action interface {
	// Kind is a stable name used in logs and traces.
	Kind() string
}

// SelectGenerator replaces the workspace with the cell of a generator.
type SelectGenerator struct {
	Generator core.Generator
}

// ClearWorkspace empties the workspace.
type ClearWorkspace struct{}

// TakeIdentity replaces the workspace diagram with its identity.
type TakeIdentity struct{}

// SetBoundary records the workspace diagram as a source or target. When the
// opposite boundary is already recorded, a new generator between them is
// added to the signature and selected.
type SetBoundary struct {
	Boundary   core.Boundary
	Name       string
	Invertible bool
}

// Attach glues the cell of a generator, or its inverse, to a boundary of the
// workspace diagram at the given embedding.
type Attach struct {
	Generator core.Generator
	Inverse   bool
	Boundary  core.BoundaryPath
	Embedding []int
}

// Contract merges Count singular heights starting at Height at Location,
// read from the visible slice. A Count of zero merges two. A location that
// touches a boundary attaches the contraction there; otherwise the workspace
// grows by a dimension.
type Contract struct {
	Location []core.SliceIndex
	Height   int
	Count    int
	Bias     core.Bias
}

// count returns the number of heights c merges.
func (c Contract) count() int {
	if c.Count == 0 {
		return 2
	}
	return c.Count
}

// Expand splits the singular point Point at Location, read from the visible
// slice, moving it in Direction.
type Expand struct {
	Location  []core.SliceIndex
	Point     [2]core.Height
	Direction core.Direction
}

// Bubble replaces an atomic workspace diagram with its degenerate bubble.
type Bubble struct{}

// Invert replaces the workspace diagram with its inverse.
type Invert struct{}

// DescendSlice narrows the view to a slice of the visible diagram.
type DescendSlice struct {
	Slice core.SliceIndex
}

// AscendSlice widens the view by Count steps. Zero returns to the top.
type AscendSlice struct {
	Count int
}

func (SelectGenerator) Kind() string { return "select_generator" }
func (ClearWorkspace) Kind() string { return "clear_workspace" }
func (TakeIdentity) Kind() string { return "take_identity" }
func (SetBoundary) Kind() string { return "set_boundary" }
func (Attach) Kind() string { return "attach" }
func (Contract) Kind() string { return "contract" }
func (Expand) Kind() string { return "expand" }
func (Bubble) Kind() string { return "bubble" }
func (Invert) Kind() string { return "invert" }
func (DescendSlice) Kind() string { return "descend_slice" }
func (AscendSlice) Kind() string { return "ascend_slice" }
