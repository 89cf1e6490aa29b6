// Package proof holds the editing state built on top of the diagram core: a
// named signature of generators, a workspace diagram with a view path, and
// the actions that transform them.
//
// Proof state changes only through Update, which validates an action,
// applies the structural operation, typechecks the result and then collects
// garbage in the signature's interner. A rejected action leaves the state
// untouched.
//
// Thread-safety: Proof serializes Update calls with a mutex. Structural work
// inside an action may still fan out through the executor carried by the
// context.
package proof
