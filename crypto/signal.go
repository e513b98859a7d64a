package crypto

import "github.com/consensys/gnark-crypto/ecc/bn254/fr"

// signalLimbBytes is the width of one message limb. 31 bytes keeps every
// limb strictly below the field modulus (which is just under 2^254), so no
// limb ever aliases another value mod r.
const signalLimbBytes = 31

// SignalHash maps an arbitrary-length message to a field element.
//
// The message is split into 31-byte big-endian limbs and folded
// left-to-right through the two-input hash: acc = H2(acc, limb). Every limb
// participates in the digest; a message longer than one limb must never be
// silently truncated to its first chunk. The byte length is folded in as
// the final limb, so messages that only differ in leading zero bytes (or
// the empty message versus a run of zero bytes) keep distinct digests.
func SignalHash(h Hasher, msg []byte) fr.Element {
	var acc fr.Element
	for off := 0; off < len(msg); off += signalLimbBytes {
		end := off + signalLimbBytes
		if end > len(msg) {
			end = len(msg)
		}
		limb := ElementFromBytes(msg[off:end])
		acc = h.Hash2(acc, limb)
	}
	var length fr.Element
	length.SetUint64(uint64(len(msg)))
	return h.Hash2(acc, length)
}
