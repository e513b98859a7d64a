// Package proofs defines the boundary contract with the external
// zero-knowledge proving system. The engine treats proof verification as an
// opaque oracle: it hands over a public statement and a proof blob and acts
// on the boolean verdict, never inspecting the proof's internals.
package proofs

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// StatementSize is the number of public inputs in a statement.
const StatementSize = 5

// Statement is the public input of an RLN membership-and-share proof.
type Statement struct {
	ExternalNullifier fr.Element
	Y                 fr.Element
	Nullifier         fr.Element
	Root              fr.Element
	SignalHash        fr.Element
}

// PublicInputs returns the statement as its canonical five-element vector:
// [externalNullifier, y, nullifier, root, signalHash]. The order is part of
// the wire contract; any persisted proof format depends on it.
func (s Statement) PublicInputs() [StatementSize]fr.Element {
	return [StatementSize]fr.Element{
		s.ExternalNullifier,
		s.Y,
		s.Nullifier,
		s.Root,
		s.SignalHash,
	}
}

// Serialize encodes the public-input vector as 5 x 32 big-endian bytes in
// canonical order.
func (s Statement) Serialize() []byte {
	out := make([]byte, 0, StatementSize*fr.Bytes)
	inputs := s.PublicInputs()
	for i := range inputs {
		b := inputs[i].Bytes()
		out = append(out, b[:]...)
	}
	return out
}

// Digest returns the Keccak256 digest of the serialized statement, the
// compact form a host ledger persists alongside an accepted message.
func (s Statement) Digest() [32]byte {
	var out [32]byte
	copy(out[:], ethcrypto.Keccak256(s.Serialize()))
	return out
}
