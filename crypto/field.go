// Package crypto implements the cryptographic core of the RLN engine: prime
// field arithmetic, the Poseidon hash primitive, signal hashing, and the
// append-only commitment Merkle tree.
//
// All scalar values in the protocol are elements of the BN254 scalar field,
// represented by gnark-crypto's fixed-width fr.Element (Montgomery form,
// four 64-bit limbs). Every arithmetic operation reduces mod the field
// modulus; there is no implicit coercion from machine integers anywhere in
// the engine.
package crypto

import (
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

var (
	ErrDivByZero = errors.New("field: division by zero")
)

// Modulus returns the field modulus r as a fresh big.Int.
func Modulus() *big.Int {
	return fr.Modulus()
}

// NewElement returns the field element for a small unsigned value.
func NewElement(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}

// ElementFromBig reduces v mod r and returns the resulting element.
// Negative values reduce to their canonical non-negative residue.
func ElementFromBig(v *big.Int) fr.Element {
	var e fr.Element
	e.SetBigInt(v)
	return e
}

// ElementFromBytes interprets b as a big-endian integer and reduces it
// mod r. Inputs longer than 32 bytes are accepted; the full value is
// reduced, never truncated.
func ElementFromBytes(b []byte) fr.Element {
	var e fr.Element
	e.SetBytes(b)
	return e
}

// RandomElement draws a uniformly random field element from crypto/rand.
func RandomElement() (fr.Element, error) {
	v, err := rand.Int(rand.Reader, fr.Modulus())
	if err != nil {
		return fr.Element{}, err
	}
	return ElementFromBig(v), nil
}

// Add returns a + b mod r.
func Add(a, b fr.Element) fr.Element {
	var out fr.Element
	out.Add(&a, &b)
	return out
}

// Sub returns a - b mod r.
func Sub(a, b fr.Element) fr.Element {
	var out fr.Element
	out.Sub(&a, &b)
	return out
}

// Mul returns a * b mod r.
func Mul(a, b fr.Element) fr.Element {
	var out fr.Element
	out.Mul(&a, &b)
	return out
}

// Div returns a * b^-1 mod r, computing the multiplicative inverse of b.
// Returns ErrDivByZero when b is zero; the zero divisor case must surface
// to the caller rather than produce a bogus quotient.
func Div(a, b fr.Element) (fr.Element, error) {
	if b.IsZero() {
		return fr.Element{}, ErrDivByZero
	}
	var inv, out fr.Element
	inv.Inverse(&b)
	out.Mul(&a, &inv)
	return out, nil
}
