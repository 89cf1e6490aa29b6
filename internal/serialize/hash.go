package serialize

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed keys. The version suffix leaves room
// for a future encoding.
const (
	DomainNode  = "homotopy/node/v1"
	DomainProof = "homotopy/proof/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data) as hex.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// NodeKey returns the key of a canonical node record.
func NodeKey(canonical []byte) string {
	return hashWithDomain(DomainNode, canonical)
}

// ProofDigest hashes a canonical proof header together with the keys of the
// nodes it references.
func ProofDigest(header Object) (string, error) {
	canonical, err := MarshalCanonical(header)
	if err != nil {
		return "", fmt.Errorf("ProofDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainProof, canonical), nil
}
