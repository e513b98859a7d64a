package rln

import (
	"errors"
	"fmt"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Ledger errors.
var (
	ErrInvalidProof       = errors.New("ledger: proof verdict false")
	ErrDuplicateNullifier = errors.New("ledger: nullifier already recorded")
	ErrUnknownNullifier   = errors.New("ledger: nullifier not recorded")
)

// Entry is the record kept for a nullifier's first accepted message.
// Entries are append-only: a second submit attempt for the same nullifier
// is rejected, never overwritten.
type Entry struct {
	Epoch      uint64
	MessageID  uint64
	SignalHash fr.Element
	Y          fr.Element
}

// DuplicateNullifierError reports a rejected duplicate submission. It
// carries the previously recorded entry alongside the rejected share so an
// observer can feed both points into Recover.
type DuplicateNullifierError struct {
	Nullifier fr.Element
	Prior     Entry
	Rejected  Share
}

func (e *DuplicateNullifierError) Error() string {
	return fmt.Sprintf("ledger: duplicate nullifier %s in epoch %d", e.Nullifier.String(), e.Prior.Epoch)
}

// Unwrap lets callers match with errors.Is(err, ErrDuplicateNullifier).
func (e *DuplicateNullifierError) Unwrap() error {
	return ErrDuplicateNullifier
}

// Ledger is the rate-limit state machine. Each nullifier is either unseen
// or recorded; the transition fires exactly once. Lookup is O(1): entries
// are keyed directly by the nullifier field element.
type Ledger struct {
	mu      sync.RWMutex
	entries map[fr.Element]Entry
	byEpoch map[uint64][]fr.Element
}

// NewLedger creates an empty rate-limit ledger.
func NewLedger() *Ledger {
	return &Ledger{
		entries: make(map[fr.Element]Entry),
		byEpoch: make(map[uint64][]fr.Element),
	}
}

// Submit attempts the Unseen -> Recorded transition for the share's
// nullifier. The epoch label is supplied by the caller and must match the
// epoch baked into the share's external nullifier; the ledger never
// recomputes epochs from wall-clock time.
//
// A false proof verdict rejects with ErrInvalidProof and no state change.
// An already-recorded nullifier rejects with DuplicateNullifierError
// regardless of the verdict, exposing the prior entry. Both concurrent
// submissions of one nullifier serialize: exactly one records, the other
// observes the duplicate.
func (l *Ledger) Submit(share Share, epoch uint64, proofVerdict bool) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if prior, ok := l.entries[share.Nullifier]; ok {
		return Entry{}, &DuplicateNullifierError{
			Nullifier: share.Nullifier,
			Prior:     prior,
			Rejected:  share,
		}
	}
	if !proofVerdict {
		return Entry{}, ErrInvalidProof
	}

	entry := Entry{
		Epoch:      epoch,
		MessageID:  share.MessageID,
		SignalHash: share.SignalHash,
		Y:          share.Y,
	}
	l.entries[share.Nullifier] = entry
	l.byEpoch[epoch] = append(l.byEpoch[epoch], share.Nullifier)
	return entry, nil
}

// Entry returns the recorded entry for a nullifier.
func (l *Ledger) Entry(nullifier fr.Element) (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.entries[nullifier]
	return e, ok
}

// IsUsed reports whether a nullifier has been recorded.
func (l *Ledger) IsUsed(nullifier fr.Element) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.entries[nullifier]
	return ok
}

// EpochEntries returns the nullifiers recorded under an epoch, in
// submission order.
func (l *Ledger) EpochEntries(epoch uint64) []fr.Element {
	l.mu.RLock()
	defer l.mu.RUnlock()

	src := l.byEpoch[epoch]
	out := make([]fr.Element, len(src))
	copy(out, src)
	return out
}

// Len returns the total number of recorded nullifiers.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
