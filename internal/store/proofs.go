package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/homotopy/internal/core"
	"github.com/roach88/homotopy/internal/proof"
	"github.com/roach88/homotopy/internal/serialize"
)

// ErrNotFound is returned when no proof has the requested id.
var ErrNotFound = errors.New("proof not found")

// ProofSummary describes a saved proof without decoding it.
type ProofSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Digest     string `json:"digest"`
	Seq        int64  `json:"seq"`
	Generators int    `json:"generators"`
}

// SaveProof encodes p and writes it under a fresh id in a single
// transaction. Node records already present are left untouched.
func (s *Store) SaveProof(ctx context.Context, name string, p *proof.Proof) (string, error) {
	rec, nodes, err := serialize.EncodeProof(p)
	if err != nil {
		return "", fmt.Errorf("save proof: %w", err)
	}
	digest, err := rec.Digest()
	if err != nil {
		return "", fmt.Errorf("save proof: %w", err)
	}
	header, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("save proof: marshal header: %w", err)
	}
	id := uuid.Must(uuid.NewV7()).String()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("save proof: begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO proofs (id, name, digest, seq, generators, header)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, name, digest, rec.Seq, len(rec.Signature), string(header))
	if err != nil {
		return "", fmt.Errorf("save proof: insert proof: %w", err)
	}

	insertNode, err := tx.PrepareContext(ctx, `
		INSERT INTO nodes (key, data) VALUES (?, ?)
		ON CONFLICT(key) DO NOTHING
	`)
	if err != nil {
		return "", fmt.Errorf("save proof: prepare: %w", err)
	}
	defer insertNode.Close()

	link, err := tx.PrepareContext(ctx, `
		INSERT INTO proof_nodes (proof_id, node_key) VALUES (?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("save proof: prepare: %w", err)
	}
	defer link.Close()

	for _, key := range nodes.Keys() {
		data, _ := nodes.Node(key)
		if _, err := insertNode.ExecContext(ctx, key, data); err != nil {
			return "", fmt.Errorf("save proof: insert node %s: %w", key, err)
		}
		if _, err := link.ExecContext(ctx, id, key); err != nil {
			return "", fmt.Errorf("save proof: link node %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("save proof: commit: %w", err)
	}
	return id, nil
}

// LoadProof rebuilds the proof saved under id into in. Node hashes and the
// header digest are verified before decoding.
func (s *Store) LoadProof(ctx context.Context, id string, in *core.Interner, opts ...proof.Option) (*proof.Proof, error) {
	var digest, header string
	err := s.db.QueryRowContext(ctx, `
		SELECT digest, header FROM proofs WHERE id = ?
	`, id).Scan(&digest, &header)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load proof %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load proof %s: %w", id, err)
	}

	var rec serialize.ProofRecord
	if err := json.Unmarshal([]byte(header), &rec); err != nil {
		return nil, fmt.Errorf("load proof %s: header: %w", id, err)
	}
	got, err := rec.Digest()
	if err != nil {
		return nil, fmt.Errorf("load proof %s: %w", id, err)
	}
	if got != digest {
		return nil, fmt.Errorf("load proof %s: header digest %s, stored %s", id, got, digest)
	}

	nodes, err := s.readNodes(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load proof %s: %w", id, err)
	}
	p, err := serialize.DecodeProof(&rec, nodes, in, opts...)
	if err != nil {
		return nil, fmt.Errorf("load proof %s: %w", id, err)
	}
	return p, nil
}

func (s *Store) readNodes(ctx context.Context, id string) (*serialize.Store, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT n.key, n.data
		FROM proof_nodes pn
		JOIN nodes n ON n.key = pn.node_key
		WHERE pn.proof_id = ?
		ORDER BY n.key ASC COLLATE BINARY
	`, id)
	if err != nil {
		return nil, fmt.Errorf("read nodes: %w", err)
	}
	defer rows.Close()

	nodes := serialize.NewStore()
	for rows.Next() {
		var key string
		var data []byte
		if err := rows.Scan(&key, &data); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		if err := nodes.Add(key, data); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read nodes: %w", err)
	}
	return nodes, nil
}

// ListProofs returns every saved proof ordered by name, then id.
func (s *Store) ListProofs(ctx context.Context) ([]ProofSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, digest, seq, generators
		FROM proofs
		ORDER BY name ASC, id ASC COLLATE BINARY
	`)
	if err != nil {
		return nil, fmt.Errorf("list proofs: %w", err)
	}
	defer rows.Close()

	var out []ProofSummary
	for rows.Next() {
		var ps ProofSummary
		if err := rows.Scan(&ps.ID, &ps.Name, &ps.Digest, &ps.Seq, &ps.Generators); err != nil {
			return nil, fmt.Errorf("list proofs: scan: %w", err)
		}
		out = append(out, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list proofs: %w", err)
	}
	return out, nil
}

// DeleteProof removes a saved proof. Its nodes stay until PruneNodes.
func (s *Store) DeleteProof(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM proofs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete proof %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete proof %s: rows affected: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete proof %s: %w", id, ErrNotFound)
	}
	return nil
}

// PruneNodes deletes node records that no saved proof references and returns
// how many were removed.
func (s *Store) PruneNodes(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM nodes
		WHERE NOT EXISTS (
			SELECT 1 FROM proof_nodes pn WHERE pn.node_key = nodes.key
		)
	`)
	if err != nil {
		return 0, fmt.Errorf("prune nodes: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune nodes: rows affected: %w", err)
	}
	return n, nil
}

// NodeCount returns the number of stored node records.
func (s *Store) NodeCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count nodes: %w", err)
	}
	return n, nil
}
