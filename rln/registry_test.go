package rln

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/rlnlabs/rln/crypto"
)

func TestRegistry_AddAndGet(t *testing.T) {
	r := NewRegistry(uint256.NewInt(100))
	c := crypto.NewElement(1)

	if err := r.Add(c, 0, uint256.NewInt(150)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	reg, ok := r.Get(c)
	if !ok {
		t.Fatal("registration should exist")
	}
	if reg.LeafIndex != 0 || reg.Slashed {
		t.Fatalf("unexpected registration: %+v", reg)
	}
	if reg.Stake.Uint64() != 150 {
		t.Fatalf("expected stake 150, got %s", reg.Stake)
	}
}

func TestRegistry_InsufficientStake(t *testing.T) {
	r := NewRegistry(uint256.NewInt(100))
	c := crypto.NewElement(1)

	if err := r.Add(c, 0, uint256.NewInt(99)); !errors.Is(err, ErrInsufficientStake) {
		t.Fatalf("expected ErrInsufficientStake, got %v", err)
	}
	if r.Count() != 0 {
		t.Fatal("rejected registration must not be recorded")
	}
	if err := r.CheckStake(uint256.NewInt(99)); !errors.Is(err, ErrInsufficientStake) {
		t.Fatalf("CheckStake: expected ErrInsufficientStake, got %v", err)
	}
	if err := r.CheckStake(nil); !errors.Is(err, ErrNilStake) {
		t.Fatalf("CheckStake(nil): expected ErrNilStake, got %v", err)
	}
}

func TestRegistry_DuplicateCommitment(t *testing.T) {
	r := NewRegistry(uint256.NewInt(0))
	c := crypto.NewElement(7)

	if err := r.Add(c, 0, uint256.NewInt(10)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := r.Add(c, 1, uint256.NewInt(10)); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
}

func TestRegistry_SlashOnce(t *testing.T) {
	r := NewRegistry(uint256.NewInt(0))
	c := crypto.NewElement(7)
	r.Add(c, 0, uint256.NewInt(500))

	forfeited, err := r.MarkSlashed(c)
	if err != nil {
		t.Fatalf("MarkSlashed failed: %v", err)
	}
	if forfeited.Uint64() != 500 {
		t.Fatalf("expected forfeited 500, got %s", forfeited)
	}

	if _, err := r.MarkSlashed(c); !errors.Is(err, ErrAlreadySlashed) {
		t.Fatalf("expected ErrAlreadySlashed, got %v", err)
	}

	reg, _ := r.Get(c)
	if !reg.Slashed {
		t.Fatal("registration should be flagged slashed")
	}
}

func TestRegistry_SlashUnknown(t *testing.T) {
	r := NewRegistry(uint256.NewInt(0))
	if _, err := r.MarkSlashed(crypto.NewElement(9)); !errors.Is(err, ErrUnknownCommitment) {
		t.Fatalf("expected ErrUnknownCommitment, got %v", err)
	}
}

func TestRegistry_StakeAccounting(t *testing.T) {
	r := NewRegistry(uint256.NewInt(0))
	r.Add(crypto.NewElement(1), 0, uint256.NewInt(100))
	r.Add(crypto.NewElement(2), 1, uint256.NewInt(200))

	if got := r.TotalStaked().Uint64(); got != 300 {
		t.Fatalf("expected total staked 300, got %d", got)
	}

	r.MarkSlashed(crypto.NewElement(1))

	if got := r.TotalStaked().Uint64(); got != 200 {
		t.Fatalf("expected total staked 200 after slash, got %d", got)
	}
	if got := r.TotalForfeited().Uint64(); got != 100 {
		t.Fatalf("expected forfeited 100 after slash, got %d", got)
	}
}
