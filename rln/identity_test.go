package rln

import (
	"testing"

	"github.com/rlnlabs/rln/crypto"
)

func TestNewIdentity_CommitmentMatchesSecret(t *testing.T) {
	h := crypto.Poseidon()
	id, err := NewIdentity(h)
	if err != nil {
		t.Fatalf("NewIdentity failed: %v", err)
	}

	want := h.Hash1(id.Secret)
	if !id.Commitment.Equal(&want) {
		t.Fatal("commitment must equal Hash1(secret)")
	}
}

func TestNewIdentity_Distinct(t *testing.T) {
	h := crypto.Poseidon()
	a, _ := NewIdentity(h)
	b, _ := NewIdentity(h)
	if a.Secret.Equal(&b.Secret) {
		t.Fatal("two fresh identities must not share a secret")
	}
}

func TestIdentityFromSeed_Deterministic(t *testing.T) {
	h := crypto.Poseidon()
	a := IdentityFromSeed(h, []byte("seed-one"))
	b := IdentityFromSeed(h, []byte("seed-one"))
	c := IdentityFromSeed(h, []byte("seed-two"))

	if !a.Secret.Equal(&b.Secret) {
		t.Fatal("same seed must derive the same identity")
	}
	if a.Secret.Equal(&c.Secret) {
		t.Fatal("different seeds must derive different identities")
	}

	want := h.Hash1(a.Secret)
	if !a.Commitment.Equal(&want) {
		t.Fatal("commitment must equal Hash1(secret)")
	}
}
