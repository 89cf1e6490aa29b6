package proof

import (
	"fmt"
	"slices"

	"github.com/roach88/homotopy/internal/core"
)

// Workspace is the diagram being edited and the slice currently viewed.
type Workspace struct {
	Diagram core.Diagram      `json:"-"`
	Path    []core.SliceIndex `json:"path,omitempty"`
}

// Visible returns the slice of the workspace diagram selected by Path.
func (w *Workspace) Visible() (core.Diagram, error) {
	return follow(w.Diagram, w.Path)
}

// Dimension is the dimension of the visible slice.
func (w *Workspace) Dimension() int {
	d, err := w.Visible()
	if err != nil {
		return -1
	}
	return d.Dimension()
}

func (w *Workspace) clone() *Workspace {
	if w == nil {
		return nil
	}
	return &Workspace{Diagram: w.Diagram, Path: slices.Clone(w.Path)}
}

// follow walks a slice path from d.
func follow(d core.Diagram, path []core.SliceIndex) (core.Diagram, error) {
	cur := d
	for i, idx := range path {
		n, ok := cur.(*core.DiagramN)
		if !ok {
			return nil, fmt.Errorf("step %d: cannot slice a point", i)
		}
		next, ok := n.Slice(idx)
		if !ok {
			return nil, fmt.Errorf("step %d: slice %s out of range for size %d", i, idx, n.Size())
		}
		cur = next
	}
	return cur, nil
}
