package rln

import (
	"errors"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/holiman/uint256"
)

// Registry errors.
var (
	ErrInsufficientStake = errors.New("registry: stake below minimum")
	ErrAlreadyRegistered = errors.New("registry: commitment already registered")
	ErrUnknownCommitment = errors.New("registry: commitment not registered")
	ErrAlreadySlashed    = errors.New("registry: commitment already slashed")
	ErrNilStake          = errors.New("registry: nil stake amount")
)

// Registration is the on-ledger record for a registered commitment.
// Records are immutable apart from the Slashed flag, which is set at most
// once; slashed leaves stay in the tree so historical roots keep verifying.
type Registration struct {
	Commitment fr.Element
	LeafIndex  uint64
	Stake      *uint256.Int
	Slashed    bool
}

// Registry is the registration book: commitments, their tree indices, and
// their stakes, with slashing accounting.
type Registry struct {
	mu           sync.RWMutex
	byCommitment map[fr.Element]*Registration
	minStake     *uint256.Int
	totalStaked  *uint256.Int
	forfeited    *uint256.Int
}

// NewRegistry creates a registry enforcing the given minimum stake.
func NewRegistry(minStake *uint256.Int) *Registry {
	if minStake == nil {
		minStake = uint256.NewInt(0)
	}
	return &Registry{
		byCommitment: make(map[fr.Element]*Registration),
		minStake:     minStake.Clone(),
		totalStaked:  uint256.NewInt(0),
		forfeited:    uint256.NewInt(0),
	}
}

// CheckStake validates a deposit against the minimum without mutating
// anything, so callers can reject before touching the tree.
func (r *Registry) CheckStake(stake *uint256.Int) error {
	if stake == nil {
		return ErrNilStake
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if stake.Lt(r.minStake) {
		return ErrInsufficientStake
	}
	return nil
}

// Add records a registration. The stake must already have been validated;
// Add revalidates anyway so the registry never holds an underfunded record.
func (r *Registry) Add(commitment fr.Element, leafIndex uint64, stake *uint256.Int) error {
	if stake == nil {
		return ErrNilStake
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if stake.Lt(r.minStake) {
		return ErrInsufficientStake
	}
	if _, exists := r.byCommitment[commitment]; exists {
		return ErrAlreadyRegistered
	}

	r.byCommitment[commitment] = &Registration{
		Commitment: commitment,
		LeafIndex:  leafIndex,
		Stake:      stake.Clone(),
	}
	r.totalStaked.Add(r.totalStaked, stake)
	return nil
}

// Get returns a copy of the registration for a commitment.
func (r *Registry) Get(commitment fr.Element) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.byCommitment[commitment]
	if !ok {
		return Registration{}, false
	}
	out := *reg
	out.Stake = reg.Stake.Clone()
	return out, true
}

// Contains reports whether a commitment is registered.
func (r *Registry) Contains(commitment fr.Element) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byCommitment[commitment]
	return ok
}

// MarkSlashed flags a registration as slashed and moves its stake to the
// forfeited total. Idempotency guard: a commitment slashes at most once.
// Returns the forfeited stake.
func (r *Registry) MarkSlashed(commitment fr.Element) (*uint256.Int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.byCommitment[commitment]
	if !ok {
		return nil, ErrUnknownCommitment
	}
	if reg.Slashed {
		return nil, ErrAlreadySlashed
	}

	reg.Slashed = true
	r.totalStaked.Sub(r.totalStaked, reg.Stake)
	r.forfeited.Add(r.forfeited, reg.Stake)
	return reg.Stake.Clone(), nil
}

// Count returns the number of registrations.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byCommitment)
}

// TotalStaked returns the sum of active (non-forfeited) stakes.
func (r *Registry) TotalStaked() *uint256.Int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.totalStaked.Clone()
}

// TotalForfeited returns the sum of stakes claimed through slashing.
func (r *Registry) TotalForfeited() *uint256.Int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.forfeited.Clone()
}
