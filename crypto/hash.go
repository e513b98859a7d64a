package crypto

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"
)

// Hasher is the collision-resistant field hash consumed by the engine.
// The three fixed arities cover the protocol's uses: Hash1 for identity
// commitments, Hash2 for tree node combination and external nullifiers,
// Hash3 for wider domain bindings. The primitive is pluggable; the engine
// never assumes anything beyond collision resistance over field elements.
type Hasher interface {
	Hash1(a fr.Element) fr.Element
	Hash2(a, b fr.Element) fr.Element
	Hash3(a, b, c fr.Element) fr.Element
}

// poseidonHasher hashes field elements with the Poseidon2 permutation in
// Merkle-Damgard mode, the standard ZK-friendly construction over BN254.
type poseidonHasher struct{}

// Poseidon returns the default Poseidon2-backed Hasher.
func Poseidon() Hasher {
	return poseidonHasher{}
}

func (poseidonHasher) Hash1(a fr.Element) fr.Element {
	return poseidonSum(a)
}

func (poseidonHasher) Hash2(a, b fr.Element) fr.Element {
	return poseidonSum(a, b)
}

func (poseidonHasher) Hash3(a, b, c fr.Element) fr.Element {
	return poseidonSum(a, b, c)
}

// poseidonSum absorbs the canonical 32-byte encoding of each input and
// returns the digest as a field element. A fresh hasher per call keeps the
// function stateless and safe for concurrent use.
func poseidonSum(elems ...fr.Element) fr.Element {
	h := poseidon2.NewMerkleDamgardHasher()
	for i := range elems {
		b := elems[i].Bytes()
		h.Write(b[:])
	}
	var out fr.Element
	out.SetBytes(h.Sum(nil))
	return out
}
