package identity

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/zeebo/blake3"
)

// Claim is what a PIN-proof attests: signer SignerID passed the PIN check for
// Role on the given record at SignedAt.
type Claim struct {
	RecordKind string
	RecordID   int64
	Role       string
	SignerID   int64
	SignedAt   time.Time
}

// Prover issues PIN-proofs as keyed BLAKE3 digests of a Claim. The PIN itself
// is never part of the digest.
type Prover struct {
	key []byte
}

func NewProver(key []byte) (*Prover, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("proof key must be 32 bytes, got %d", len(key))
	}
	k := make([]byte, 32)
	copy(k, key)
	return &Prover{key: k}, nil
}

func (p *Prover) Proof(c Claim) string {
	h, err := blake3.NewKeyed(p.key)
	if err != nil {
		// key length is checked in NewProver
		panic(err)
	}
	fmt.Fprintf(h, "%s|%d|%s|%d|%d", c.RecordKind, c.RecordID, c.Role, c.SignerID, c.SignedAt.UTC().UnixNano())
	return hex.EncodeToString(h.Sum(nil))
}

// Verify reports whether proof was issued for c by this key.
func (p *Prover) Verify(c Claim, proof string) bool {
	want := p.Proof(c)
	return subtle.ConstantTimeCompare([]byte(want), []byte(proof)) == 1
}
