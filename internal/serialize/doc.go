// Package serialize encodes diagrams, rewrites and proofs as content-addressed
// records.
//
// Every point, rewrite, cone and diagram reachable from a value becomes one
// record in a Store. A record is canonical JSON (RFC 8785 key order, NFC
// strings, no floats) and its key is the domain-separated SHA-256 of those
// bytes, so structurally equal values share a key across processes and
// interners. Decoding rebuilds values through the core constructors, so a
// decoded diagram is revalidated and interned.
package serialize
