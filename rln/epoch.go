package rln

import (
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/rlnlabs/rln/crypto"
)

// EpochAt returns the epoch label for a point in time: the number of whole
// epoch lengths since the Unix epoch. The label is monotonic; no boundary
// table is persisted anywhere. Lengths under one second are treated as one
// second rather than dividing by zero.
func EpochAt(t time.Time, epochLength time.Duration) uint64 {
	step := uint64(epochLength / time.Second)
	if step == 0 {
		step = 1
	}
	return uint64(t.Unix()) / step
}

// ExternalNullifier binds an epoch and an application context into the
// value that scopes nullifiers to one rate-limiting context.
func ExternalNullifier(h crypto.Hasher, epoch uint64, appContext fr.Element) fr.Element {
	return h.Hash2(crypto.NewElement(epoch), appContext)
}
