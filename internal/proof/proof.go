package proof

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/roach88/homotopy/internal/core"
	"github.com/roach88/homotopy/internal/typecheck"
)

// PendingBoundary is a source or target recorded by SetBoundary while the
// opposite side is still being built.
type PendingBoundary struct {
	Boundary core.Boundary
	Diagram  core.Diagram
}

// Entry records one applied action.
type Entry struct {
	Seq       int64  `json:"seq"`
	Action    string `json:"action"`
	Dimension int    `json:"dimension"`
}

// Proof is the editing state: a signature, a workspace and a pending
// boundary.
type Proof struct {
	mu        sync.Mutex
	signature *Signature
	workspace *Workspace
	boundary  *PendingBoundary
	mode      typecheck.Mode
	clock     *Clock
	history   []Entry
}

// Option configures a Proof.
type Option func(*Proof)

// WithTypecheckMode selects how results are typechecked. Default: Shallow.
func WithTypecheckMode(m typecheck.Mode) Option {
	return func(p *Proof) {
		p.mode = m
	}
}

// WithClock sets the clock stamping history entries. Used when resuming a
// stored proof.
func WithClock(c *Clock) Option {
	return func(p *Proof) {
		p.clock = c
	}
}

// WithWorkspace starts the proof with a workspace.
func WithWorkspace(w *Workspace) Option {
	return func(p *Proof) {
		p.workspace = w.clone()
	}
}

// WithBoundary starts the proof with a pending boundary.
func WithBoundary(b *PendingBoundary) Option {
	return func(p *Proof) {
		if b != nil {
			cp := *b
			p.boundary = &cp
		}
	}
}

// New creates a proof over sig. A nil signature starts empty in the default
// interner.
func New(sig *Signature, opts ...Option) *Proof {
	if sig == nil {
		sig = NewSignature(nil)
	}
	p := &Proof{
		signature: sig,
		mode:      typecheck.Shallow,
		clock:     NewClock(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Signature returns the proof's signature. It grows when SetBoundary
// completes a new generator.
func (p *Proof) Signature() *Signature {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.signature
}

// Workspace returns a copy of the workspace, or nil if it is empty.
func (p *Proof) Workspace() *Workspace {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.workspace.clone()
}

// Boundary returns a copy of the pending boundary, or nil.
func (p *Proof) Boundary() *PendingBoundary {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.boundary == nil {
		return nil
	}
	b := *p.boundary
	return &b
}

// History returns the applied actions in order.
func (p *Proof) History() []Entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.history)
}

// Clock returns the clock stamping history entries.
func (p *Proof) Clock() *Clock { return p.clock }

// IsValid reports whether the preconditions of a hold. An action that is
// valid may still fail in Update when the structural operation or the
// typecheck rejects it.
func (p *Proof) IsValid(a Action) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.validate(a) == nil
}

// Update applies a to the proof. On error the proof is unchanged.
func (p *Proof) Update(ctx context.Context, a Action) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	kind := a.Kind()
	if err := p.validate(a); err != nil {
		return p.rejected(kind, err)
	}
	next, err := p.apply(ctx, a)
	if err != nil {
		return p.rejected(kind, err)
	}
	if next.check && next.workspace != nil {
		mode := p.mode
		if next.deep {
			mode = typecheck.Deep
		}
		if err := typecheck.Check(ctx, p.signature, next.workspace.Diagram, mode); err != nil {
			if errors.Is(err, core.ErrCancelled) {
				return p.rejected(kind, err)
			}
			return p.rejected(kind, rejectWith(ErrCodeTypecheck, err, "result does not typecheck"))
		}
	}
	if next.added != nil {
		if err := p.signature.Insert(*next.added); err != nil {
			return p.rejected(kind, err)
		}
	}
	p.workspace = next.workspace
	p.boundary = next.boundary

	dim := -1
	if p.workspace != nil {
		dim = p.workspace.Diagram.Dimension()
	}
	seq := p.clock.Next()
	p.history = append(p.history, Entry{Seq: seq, Action: kind, Dimension: dim})
	slog.Info("action applied",
		"action", kind,
		"seq", seq,
		"dimension", dim,
	)

	evicted := p.signature.in.CollectGarbage()
	slog.Debug("garbage collected",
		"evicted", evicted,
		"live", p.signature.in.Len(),
	)
	return nil
}

func (p *Proof) rejected(kind string, err error) error {
	var ae *ActionError
	if errors.As(err, &ae) && ae.Action == "" {
		ae.Action = kind
	}
	slog.Warn("action rejected",
		"action", kind,
		"error", err,
	)
	return err
}

// state is what an applied action replaces.
type state struct {
	workspace *Workspace
	boundary  *PendingBoundary
	added     *GeneratorInfo
	check     bool
	// deep forces a Deep typecheck: the action rewrote a boundary slice
	// below the top level that a Shallow check never reaches.
	deep bool
}

func (p *Proof) workspaceN() (*core.DiagramN, error) {
	if p.workspace == nil {
		return nil, reject(ErrCodeNoWorkspace, "workspace is empty")
	}
	d, ok := p.workspace.Diagram.(*core.DiagramN)
	if !ok {
		return nil, reject(ErrCodeDimension, "workspace is a point")
	}
	return d, nil
}

func (p *Proof) validate(a Action) error {
	switch a := a.(type) {
	case SelectGenerator:
		if _, ok := p.signature.Info(a.Generator); !ok {
			return reject(ErrCodeUnknownGenerator, "%s", a.Generator)
		}
	case ClearWorkspace:
	case TakeIdentity:
		if p.workspace == nil {
			return reject(ErrCodeNoWorkspace, "workspace is empty")
		}
	case SetBoundary:
		if p.workspace == nil {
			return reject(ErrCodeNoWorkspace, "workspace is empty")
		}
		if a.Name != "" {
			if _, dup := p.signature.Lookup(a.Name); dup {
				return reject(ErrCodeDuplicateName, "name %q already used", a.Name)
			}
		}
		if p.boundary != nil && p.boundary.Boundary != a.Boundary &&
			p.boundary.Diagram.Dimension() != p.workspace.Diagram.Dimension() {
			return reject(ErrCodeDimension, "%s has dimension %d but the recorded %s has dimension %d",
				a.Boundary, p.workspace.Diagram.Dimension(), p.boundary.Boundary, p.boundary.Diagram.Dimension())
		}
	case Attach:
		d, err := p.workspaceN()
		if err != nil {
			return err
		}
		if len(p.workspace.Path) > 0 {
			return reject(ErrCodeInvalidPath, "attach needs the top-level view")
		}
		info, ok := p.signature.Info(a.Generator)
		if !ok {
			return reject(ErrCodeUnknownGenerator, "%s", a.Generator)
		}
		if info.Generator.Dimension == 0 || info.Generator.Dimension != d.Dimension()-a.Boundary.Depth {
			return reject(ErrCodeDimension, "cannot attach %d-cell %q at %s of a %d-diagram",
				info.Generator.Dimension, info.Name, a.Boundary, d.Dimension())
		}
		if a.Inverse && !info.Invertible {
			return reject(ErrCodeNotInvertible, "%q is not invertible", info.Name)
		}
	case Contract:
		return p.validateLocation(a.Location)
	case Expand:
		return p.validateLocation(a.Location)
	case Bubble:
		_, err := p.workspaceN()
		return err
	case Invert:
		d, err := p.workspaceN()
		if err != nil {
			return err
		}
		for _, g := range core.Generators(d) {
			if g.Dimension == d.Dimension() && !p.signature.IsInvertible(g) {
				return reject(ErrCodeNotInvertible, "%q is not invertible", p.signature.Name(g))
			}
		}
	case DescendSlice:
		if p.workspace == nil {
			return reject(ErrCodeNoWorkspace, "workspace is empty")
		}
		visible, err := p.workspace.Visible()
		if err != nil {
			return rejectWith(ErrCodeInvalidPath, err, "view path")
		}
		if _, err := follow(visible, []core.SliceIndex{a.Slice}); err != nil {
			return rejectWith(ErrCodeInvalidPath, err, "slice %s", a.Slice)
		}
	case AscendSlice:
		if p.workspace == nil {
			return reject(ErrCodeNoWorkspace, "workspace is empty")
		}
		if a.Count < 0 || a.Count > len(p.workspace.Path) {
			return reject(ErrCodeInvalidPath, "cannot ascend %d of %d steps", a.Count, len(p.workspace.Path))
		}
	default:
		return reject(ErrCodeStructural, "unsupported action %T", a)
	}
	return nil
}

func (p *Proof) validateLocation(location []core.SliceIndex) error {
	if _, err := p.workspaceN(); err != nil {
		return err
	}
	visible, err := p.workspace.Visible()
	if err != nil {
		return rejectWith(ErrCodeInvalidPath, err, "view path")
	}
	if _, err := follow(visible, location); err != nil {
		return rejectWith(ErrCodeInvalidPath, err, "location")
	}
	return nil
}

func (p *Proof) apply(ctx context.Context, a Action) (state, error) {
	keep := state{workspace: p.workspace, boundary: p.boundary}
	in := p.signature.in

	switch a := a.(type) {
	case SelectGenerator:
		info, _ := p.signature.Info(a.Generator)
		return state{workspace: &Workspace{Diagram: info.Cell}, boundary: p.boundary}, nil

	case ClearWorkspace:
		return state{boundary: p.boundary}, nil

	case TakeIdentity:
		return state{workspace: &Workspace{Diagram: in.Identity(p.workspace.Diagram)}, boundary: p.boundary, check: true}, nil

	case SetBoundary:
		if p.boundary == nil || p.boundary.Boundary == a.Boundary {
			return state{boundary: &PendingBoundary{Boundary: a.Boundary, Diagram: p.workspace.Diagram}}, nil
		}
		source, target := p.boundary.Diagram, p.workspace.Diagram
		if a.Boundary == core.Source {
			source, target = target, source
		}
		g := core.NewGenerator(p.signature.Len(), source.Dimension()+1)
		cell, err := in.FromGenerator(g, source, target)
		if err != nil {
			return keep, rejectWith(ErrCodeStructural, err, "boundaries are not parallel")
		}
		info := &GeneratorInfo{Generator: g, Name: a.Name, Cell: cell, Invertible: a.Invertible}
		return state{workspace: &Workspace{Diagram: cell}, added: info}, nil

	case Attach:
		info, _ := p.signature.Info(a.Generator)
		cell := info.Cell.(*core.DiagramN)
		if a.Inverse {
			inv, err := cell.Inverse()
			if err != nil {
				return keep, rejectWith(ErrCodeStructural, err, "inverting %q", info.Name)
			}
			cell = inv
		}
		d, err := p.workspace.Diagram.(*core.DiagramN).AttachCell(a.Boundary, a.Embedding, cell)
		if err != nil {
			return keep, rejectWith(ErrCodeStructural, err, "attaching %q", info.Name)
		}
		return state{workspace: &Workspace{Diagram: d}, boundary: p.boundary, check: true}, nil

	case Contract:
		d, err := p.atLocation(a.Location, func(d *core.DiagramN, bp core.BoundaryPath, interior []core.Height) (*core.DiagramN, error) {
			return d.Contract(ctx, bp, interior, a.Height, a.count(), a.Bias)
		})
		if err != nil {
			return keep, err
		}
		return state{workspace: p.rebase(d), boundary: p.boundary, check: true, deep: true}, nil

	case Expand:
		d, err := p.atLocation(a.Location, func(d *core.DiagramN, bp core.BoundaryPath, interior []core.Height) (*core.DiagramN, error) {
			return d.Expand(ctx, bp, interior, a.Point, a.Direction)
		})
		if err != nil {
			return keep, err
		}
		return state{workspace: p.rebase(d), boundary: p.boundary, check: true, deep: true}, nil

	case Bubble:
		d, err := p.workspace.Diagram.(*core.DiagramN).Bubble()
		if err != nil {
			return keep, rejectWith(ErrCodeStructural, err, "bubble")
		}
		return state{workspace: &Workspace{Diagram: d}, boundary: p.boundary, check: true}, nil

	case Invert:
		d, err := p.workspace.Diagram.(*core.DiagramN).Inverse()
		if err != nil {
			return keep, rejectWith(ErrCodeStructural, err, "invert")
		}
		return state{workspace: &Workspace{Diagram: d}, boundary: p.boundary, check: true}, nil

	case DescendSlice:
		path := append(slices.Clone(p.workspace.Path), a.Slice)
		return state{workspace: &Workspace{Diagram: p.workspace.Diagram, Path: path}, boundary: p.boundary}, nil

	case AscendSlice:
		var path []core.SliceIndex
		if a.Count > 0 {
			path = slices.Clone(p.workspace.Path[:len(p.workspace.Path)-a.Count])
		}
		return state{workspace: &Workspace{Diagram: p.workspace.Diagram, Path: path}, boundary: p.boundary}, nil
	}
	return keep, reject(ErrCodeStructural, "unsupported action %T", a)
}

// atLocation resolves a location read from the visible slice into a boundary
// path of the workspace diagram. A location that never touches a boundary
// is applied to the target of the workspace's identity.
func (p *Proof) atLocation(location []core.SliceIndex, op func(*core.DiagramN, core.BoundaryPath, []core.Height) (*core.DiagramN, error)) (*core.DiagramN, error) {
	d := p.workspace.Diagram.(*core.DiagramN)
	full := append(slices.Clone(p.workspace.Path), location...)
	bp, interior, ok := core.SplitPath(full)
	if !ok {
		d = d.Identity()
		bp = core.BoundaryPath{Boundary: core.Target}
	}
	out, err := op(d, bp, interior)
	if err != nil {
		if errors.Is(err, core.ErrCancelled) {
			return nil, err
		}
		return nil, rejectWith(ErrCodeStructural, err, "at %v", full)
	}
	return out, nil
}

// rebase keeps the current view path on d when it still resolves.
func (p *Proof) rebase(d *core.DiagramN) *Workspace {
	w := &Workspace{Diagram: d}
	if d.Dimension() == p.workspace.Diagram.Dimension() {
		if _, err := follow(d, p.workspace.Path); err == nil {
			w.Path = slices.Clone(p.workspace.Path)
		}
	}
	return w
}
