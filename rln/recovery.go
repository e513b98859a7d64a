package rln

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/rlnlabs/rln/crypto"
)

// ErrNonRecoverable is returned when two shares do not form a valid
// collision: different nullifiers, or identical signal hashes (a
// re-broadcast of the same message is not a rule violation).
var ErrNonRecoverable = errors.New("recovery: shares do not collide on distinct signals")

// Recover reconstructs the identity secret from two shares that collide on
// the same nullifier with distinct signal hashes.
//
// The shares are two points (x1, y1), (x2, y2) on the secret's line:
//
//	a1     = (y1 - y2) / (x1 - x2)   division via modular inverse
//	secret = y1 - a1 * x1
//
// The quotient must be computed with the multiplicative inverse of
// (x1 - x2) mod r; plain integer division silently produces a wrong secret
// whenever the true quotient is non-integral. Verifying that Hash1(secret)
// matches a specific registration is the caller's responsibility.
func Recover(s1, s2 Share) (fr.Element, error) {
	if !s1.Nullifier.Equal(&s2.Nullifier) {
		return fr.Element{}, ErrNonRecoverable
	}
	if s1.SignalHash.Equal(&s2.SignalHash) {
		return fr.Element{}, ErrNonRecoverable
	}

	dy := crypto.Sub(s1.Y, s2.Y)
	dx := crypto.Sub(s1.SignalHash, s2.SignalHash)

	a1, err := crypto.Div(dy, dx)
	if err != nil {
		// Unreachable given the precondition checks, but a zero divisor
		// must never be reported as a successful recovery.
		return fr.Element{}, ErrNonRecoverable
	}

	secret := crypto.Sub(s1.Y, crypto.Mul(a1, s1.SignalHash))
	return secret, nil
}
