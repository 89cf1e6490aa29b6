// Package core implements finite, dimension-generic directed diagrams and the
// rewrites between them.
//
// A diagram of dimension 0 is a single point labelled by a generator
// (Diagram0). A diagram of dimension n > 0 (DiagramN) is a source diagram of
// dimension n-1 followed by an ordered sequence of cospans. Each cospan is a
// pair of (n-1)-dimensional rewrites pointing from the neighbouring regular
// slices into the singular slice between them:
//
//	regular(0) --forward--> singular(0) <--backward-- regular(1) --> ...
//
// A rewrite of dimension 0 relabels a point (Rewrite0). A rewrite of dimension
// n > 0 (RewriteN) is an ordered list of cones, each collapsing a contiguous
// block of source cospans into a single target cospan.
//
// # Interning
//
// Every DiagramN and RewriteN is hash-consed by an Interner: structurally
// equal values are the same pointer, so equality is == on the handle. The
// interner only holds weak references; values stay alive while a client holds
// them and are evicted by Interner.CollectGarbage once unreachable.
//
// Slices are computed and validated when a DiagramN is first interned, so every
// DiagramN in existence has consistent cospans: each forward rewrite applies to
// the preceding regular slice and each backward rewrite recovers the next one.
//
// # Structural algorithms
//
//   - Attach / AttachCell glue cospans onto a boundary.
//   - ContractInPath / DiagramN.Contract merge adjacent singular slices by
//     computing colimits.
//   - ExpandInPath / DiagramN.Expand split a singular slice into two.
//   - Factorize lifts a rewrite through another; it propagates expansions.
//   - DiagramN.Bubble and DiagramN.Inverse act on orientations.
//
// Long-running operations take a context.Context. Cancellation is cooperative:
// checkpoints inside the recursion return ErrCancelled. Independent
// sub-problems are dispatched through the Executor found in the context, which
// is Sequential unless WithExecutor installs another one.
package core
