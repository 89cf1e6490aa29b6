package testutil

import (
	"sync"

	"github.com/roach88/homotopy/internal/core"
)

// Cells is a minimal generator signature for tests.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Cells struct {
	mu         sync.RWMutex
	cells      map[core.Generator]core.Diagram
	invertible map[core.Generator]bool
}

// NewCells creates an empty signature.
func NewCells() *Cells {
	return &Cells{
		cells:      make(map[core.Generator]core.Diagram),
		invertible: make(map[core.Generator]bool),
	}
}

// Add registers the cell of g.
func (s *Cells) Add(g core.Generator, cell core.Diagram, invertible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cells[g] = cell
	s.invertible[g] = invertible
}

// Cell returns the cell registered for g.
func (s *Cells) Cell(g core.Generator) (core.Diagram, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.cells[g]
	return d, ok
}

// IsInvertible reports whether g was registered as invertible.
func (s *Cells) IsInvertible(g core.Generator) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.invertible[g]
}

// Len returns the number of registered generators.
func (s *Cells) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cells)
}
