package proofs

import (
	"bytes"
	"context"
	"errors"
	"sync"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Oracle errors.
var (
	ErrEmptyProof = errors.New("proofs: empty proof blob")
)

// Oracle is the proof verification boundary. Verify returns the
// authenticity verdict for a claimed statement; a false verdict with a nil
// error is a well-formed rejection, while a non-nil error means the oracle
// itself could not reach a verdict. Verification may be slow or remote,
// hence the context.
type Oracle interface {
	Verify(ctx context.Context, statement Statement, proof []byte) (bool, error)
}

var (
	oracleMu      sync.RWMutex
	activeOracle  Oracle
	defaultOracle = TagOracle{}
)

// ActiveOracle returns the process-wide oracle, defaulting to the insecure
// tag oracle until a real proving backend is installed.
func ActiveOracle() Oracle {
	oracleMu.RLock()
	defer oracleMu.RUnlock()
	if activeOracle != nil {
		return activeOracle
	}
	return defaultOracle
}

// SetOracle installs a process-wide verification backend. Passing nil
// restores the default.
func SetOracle(o Oracle) {
	oracleMu.Lock()
	defer oracleMu.Unlock()
	activeOracle = o
}

// tagDomain separates proof tags from any other Keccak use.
var tagDomain = []byte("rln-proof-tag-v1")

// TagOracle is a development backend: the "proof" is a Keccak binding tag
// over the public inputs, and verification recomputes and compares it. It
// binds a proof blob to one exact statement but proves nothing about
// membership or share correctness. INSECURE: for tests and demos only.
type TagOracle struct{}

// TagProof produces the proof blob TagOracle accepts for a statement.
func TagProof(statement Statement) []byte {
	return ethcrypto.Keccak256(tagDomain, statement.Serialize())
}

// Verify recomputes the binding tag and compares.
func (TagOracle) Verify(ctx context.Context, statement Statement, proof []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if len(proof) == 0 {
		return false, ErrEmptyProof
	}
	return bytes.Equal(proof, TagProof(statement)), nil
}

// RejectAllOracle refuses every proof. Useful for exercising the
// invalid-proof path in tests.
type RejectAllOracle struct{}

// Verify always returns a false verdict.
func (RejectAllOracle) Verify(ctx context.Context, statement Statement, proof []byte) (bool, error) {
	return false, ctx.Err()
}
