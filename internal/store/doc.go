// Package store provides SQLite-backed persistence for proofs.
//
// A saved proof is split in two parts:
//   - proofs: one row per save, holding the JSON header written by
//     serialize.EncodeProof and its digest
//   - nodes: canonical node records keyed by content hash, shared by every
//     proof that reaches them
//
// proof_nodes links the two so that DeleteProof followed by PruneNodes drops
// exactly the records no remaining proof needs.
//
// # Ordering
//
// Ids are UUIDv7, so ListProofs orders by name and then by save order
// without reading wall-clock columns.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait up to 5s for locks
//   - foreign_keys=ON: Enforce referential integrity
package store
