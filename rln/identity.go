// Package rln implements the Rate-Limited Nullifier protocol engine:
// anonymous identities registered against a stake, one message per epoch
// per application context, and secret recovery from rule violations.
//
// The engine is a pure, synchronous state-transition system. The only
// mutable state is the commitment tree, the rate-limit ledger, and the
// registration book, each owned by an explicit Engine instance; there are
// no package-level singletons.
package rln

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/crypto/sha3"

	"github.com/rlnlabs/rln/crypto"
)

// Identity is the actor's long-lived key material. Secret must never leave
// its owner; only Commitment = Hash1(Secret) is published to the tree and
// the registry. Revealing two shares of the same epoch leaks Secret.
type Identity struct {
	Secret     fr.Element
	Commitment fr.Element
}

// NewIdentity generates a fresh identity from crypto/rand.
func NewIdentity(h crypto.Hasher) (*Identity, error) {
	secret, err := crypto.RandomElement()
	if err != nil {
		return nil, err
	}
	return &Identity{
		Secret:     secret,
		Commitment: h.Hash1(secret),
	}, nil
}

// IdentityFromSeed derives an identity deterministically from a seed.
// The seed is expanded with SHAKE256 to 64 bytes before reduction mod r,
// keeping the modular bias negligible.
func IdentityFromSeed(h crypto.Hasher, seed []byte) *Identity {
	shake := sha3.NewShake256()
	shake.Write([]byte("rln-identity-v1"))
	shake.Write(seed)

	var wide [64]byte
	shake.Read(wide[:])

	secret := crypto.ElementFromBytes(wide[:])
	return &Identity{
		Secret:     secret,
		Commitment: h.Hash1(secret),
	}
}
