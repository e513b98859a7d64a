package rln

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/rlnlabs/rln/crypto"
)

// Share is one published point on an identity's per-epoch line. Two shares
// with the same Nullifier but different SignalHash lie on the same line and
// together reveal its secret.
type Share struct {
	ExternalNullifier fr.Element
	SignalHash        fr.Element
	Y                 fr.Element
	Nullifier         fr.Element
	MessageID         uint64
}

// ComputeShare evaluates the identity's epoch line at the signal hash.
//
// The line coefficient is bound to the epoch only:
//
//	a1        = H2(secret, externalNullifier)
//	y         = secret + a1 * signalHash
//	nullifier = H2(a1, messageID)
//
// so every message an identity sends in one epoch under one messageID
// shares a nullifier, which is what makes a second distinct signal
// detectable and the secret recoverable. Pure function; all arithmetic is
// mod r.
func ComputeShare(h crypto.Hasher, secret, externalNullifier fr.Element, messageID uint64, signalHash fr.Element) Share {
	a1 := h.Hash2(secret, externalNullifier)
	y := crypto.Add(secret, crypto.Mul(a1, signalHash))
	nullifier := h.Hash2(a1, crypto.NewElement(messageID))

	return Share{
		ExternalNullifier: externalNullifier,
		SignalHash:        signalHash,
		Y:                 y,
		Nullifier:         nullifier,
		MessageID:         messageID,
	}
}
