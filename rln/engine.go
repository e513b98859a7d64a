package rln

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/holiman/uint256"

	"github.com/rlnlabs/rln/crypto"
	"github.com/rlnlabs/rln/log"
	"github.com/rlnlabs/rln/metrics"
	"github.com/rlnlabs/rln/proofs"
)

// Engine errors.
var (
	ErrEpochMismatch  = errors.New("engine: external nullifier does not match epoch and application")
	ErrUnknownRoot    = errors.New("engine: statement root is not a known tree root")
	ErrSecretMismatch = errors.New("engine: recovered secret does not match accused commitment")
)

// Message is one submission to the engine: a share, the proof backing it,
// the epoch the share was built for, and the tree root the proof was
// generated against.
type Message struct {
	Epoch uint64
	Root  fr.Element
	Share Share
	Proof []byte
}

// Engine is an explicit RLN instance owning its commitment tree,
// rate-limit ledger, and registration book. Construct one per process or
// per test; there is no ambient state.
type Engine struct {
	cfg        Config
	hasher     crypto.Hasher
	appContext fr.Element

	tree     *crypto.CommitmentTree
	ledger   *Ledger
	registry *Registry
	oracle   proofs.Oracle

	mu        sync.Mutex
	roots     map[fr.Element]struct{} // every root the tree has had
	conflicts map[fr.Element][]Share  // rejected duplicate shares per nullifier

	log     *log.Logger
	metrics *metrics.Registry
}

// New creates an engine from the configuration.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = crypto.Poseidon()
	}
	oracle := cfg.Oracle
	if oracle == nil {
		oracle = proofs.ActiveOracle()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Discard()
	}
	reg := cfg.Metrics
	if reg == nil {
		reg = metrics.NewRegistry()
	}

	tree, err := crypto.NewCommitmentTree(cfg.TreeDepth, hasher)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:        cfg,
		hasher:     hasher,
		appContext: crypto.SignalHash(hasher, []byte(cfg.Application)),
		tree:       tree,
		ledger:     NewLedger(),
		registry:   NewRegistry(cfg.MinStake),
		oracle:     oracle,
		roots:      make(map[fr.Element]struct{}),
		conflicts:  make(map[fr.Element][]Share),
		log:        logger.Component("engine"),
		metrics:    reg,
	}
	e.roots[tree.Root()] = struct{}{}
	return e, nil
}

// Hasher returns the engine's hash primitive, for share construction.
func (e *Engine) Hasher() crypto.Hasher { return e.hasher }

// AppContext returns the application context element bound into every
// external nullifier this engine accepts.
func (e *Engine) AppContext() fr.Element { return e.appContext }

// Root returns the current commitment tree root.
func (e *Engine) Root() fr.Element { return e.tree.Root() }

// CurrentEpoch returns the epoch label for the given time under the
// engine's epoch length.
func (e *Engine) CurrentEpoch(now time.Time) uint64 {
	return EpochAt(now, e.cfg.EpochLength)
}

// ExternalNullifierAt returns the external nullifier for an epoch under
// the engine's application context.
func (e *Engine) ExternalNullifierAt(epoch uint64) fr.Element {
	return ExternalNullifier(e.hasher, epoch, e.appContext)
}

// RegisterIdentity validates the stake, appends the commitment to the
// tree, and records the registration. The deposit is validated before any
// state is touched; tree insert and registry record happen under one lock
// so the operation is all-or-nothing.
func (e *Engine) RegisterIdentity(commitment fr.Element, stake *uint256.Int) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.registry.CheckStake(stake); err != nil {
		return 0, err
	}
	if e.registry.Contains(commitment) {
		return 0, ErrAlreadyRegistered
	}

	index, err := e.tree.Insert(commitment)
	if err != nil {
		return 0, err
	}
	if err := e.registry.Add(commitment, index, stake); err != nil {
		// Stake and duplicate were checked above under the same lock;
		// Add cannot fail here.
		return 0, err
	}
	e.roots[e.tree.Root()] = struct{}{}

	e.metrics.Counter("rln_registrations_total").Inc()
	e.metrics.Gauge("rln_tree_leaves").Set(int64(e.tree.Size()))
	e.log.Info("identity registered", "index", index, "stake", stake.String())
	return index, nil
}

// PostMessage submits a share with its proof. The external nullifier must
// match the claimed epoch under the engine's application context, the
// statement root must be a root this tree has had, and the proof oracle
// must return a true verdict. Rejections follow the ledger's taxonomy:
// duplicate nullifiers surface the prior entry via DuplicateNullifierError.
func (e *Engine) PostMessage(ctx context.Context, msg Message) (Entry, error) {
	want := e.ExternalNullifierAt(msg.Epoch)
	if !msg.Share.ExternalNullifier.Equal(&want) {
		return Entry{}, ErrEpochMismatch
	}

	e.mu.Lock()
	_, knownRoot := e.roots[msg.Root]
	e.mu.Unlock()
	if !knownRoot {
		return Entry{}, ErrUnknownRoot
	}

	statement := proofs.Statement{
		ExternalNullifier: msg.Share.ExternalNullifier,
		Y:                 msg.Share.Y,
		Nullifier:         msg.Share.Nullifier,
		Root:              msg.Root,
		SignalHash:        msg.Share.SignalHash,
	}
	verdict, err := e.oracle.Verify(ctx, statement, msg.Proof)
	if err != nil {
		return Entry{}, err
	}

	entry, err := e.ledger.Submit(msg.Share, msg.Epoch, verdict)
	if err != nil {
		var dup *DuplicateNullifierError
		switch {
		case errors.As(err, &dup):
			e.recordConflict(dup)
			e.metrics.Counter("rln_rejected_duplicate_total").Inc()
			e.log.Warn("duplicate nullifier rejected",
				"epoch", msg.Epoch, "nullifier", dup.Nullifier.String())
		case errors.Is(err, ErrInvalidProof):
			e.metrics.Counter("rln_rejected_invalid_proof_total").Inc()
			e.log.Warn("invalid proof rejected", "epoch", msg.Epoch)
		}
		return Entry{}, err
	}

	e.metrics.Counter("rln_messages_accepted_total").Inc()
	e.log.Info("message accepted", "epoch", msg.Epoch, "message_id", msg.Share.MessageID)
	return entry, nil
}

// recordConflict keeps rejected duplicate shares with a signal hash
// distinct from the recorded one; those are the second points needed for
// recovery. Re-broadcasts of the identical signal are not conflicts.
func (e *Engine) recordConflict(dup *DuplicateNullifierError) {
	if dup.Rejected.SignalHash.Equal(&dup.Prior.SignalHash) {
		return
	}
	e.mu.Lock()
	e.conflicts[dup.Nullifier] = append(e.conflicts[dup.Nullifier], dup.Rejected)
	e.mu.Unlock()
}

// Conflicts returns the rejected conflicting shares recorded for a
// nullifier.
func (e *Engine) Conflicts(nullifier fr.Element) []Share {
	e.mu.Lock()
	defer e.mu.Unlock()
	src := e.conflicts[nullifier]
	out := make([]Share, len(src))
	copy(out, src)
	return out
}

// EpochEntries returns the nullifiers accepted under an epoch.
func (e *Engine) EpochEntries(epoch uint64) []fr.Element {
	return e.ledger.EpochEntries(epoch)
}

// IsNullifierUsed reports whether a nullifier has been recorded.
func (e *Engine) IsNullifierUsed(nullifier fr.Element) bool {
	return e.ledger.IsUsed(nullifier)
}

// LedgerEntry returns the recorded entry for a nullifier.
func (e *Engine) LedgerEntry(nullifier fr.Element) (Entry, bool) {
	return e.ledger.Entry(nullifier)
}

// MerkleProofFor returns the inclusion proof for a registered leaf, the
// witness a prover feeds to the proving system.
func (e *Engine) MerkleProofFor(index uint64) (*crypto.MerkleProof, error) {
	return e.tree.Proof(index)
}

// Registration returns the registration record for a commitment.
func (e *Engine) Registration(commitment fr.Element) (Registration, bool) {
	return e.registry.Get(commitment)
}

// StakeTotals returns the active and forfeited stake sums.
func (e *Engine) StakeTotals() (staked, forfeited *uint256.Int) {
	return e.registry.TotalStaked(), e.registry.TotalForfeited()
}

// Slash reconstructs the secret behind a rate-limit violation and forfeits
// the offender's stake. The two nullifiers name the colliding shares:
//
//   - Equal nullifiers: the recorded entry plus a rejected conflicting
//     share kept from the duplicate rejection form the two line points.
//   - Distinct nullifiers: both recorded entries must come from the same
//     epoch; in that case they are evaluations of the same per-epoch line
//     at different message IDs.
//
// The recovered secret must hash to the accused commitment, otherwise
// nothing is slashed and ErrSecretMismatch is returned. A commitment can
// be slashed at most once.
func (e *Engine) Slash(nullifier1, nullifier2 fr.Element, commitment fr.Element) (fr.Element, error) {
	secret, err := e.recoverSecret(nullifier1, nullifier2, commitment)
	if err != nil {
		return fr.Element{}, err
	}

	forfeited, err := e.registry.MarkSlashed(commitment)
	if err != nil {
		return fr.Element{}, err
	}

	e.metrics.Counter("rln_slashes_total").Inc()
	e.log.Info("registration slashed", "forfeited", forfeited.String())
	return secret, nil
}

// recoverSecret interpolates candidate secrets for the named shares and
// returns the one that hashes to the accused commitment. The conflict log
// is unauthenticated, so every recorded conflict is only a candidate: a
// fabricated share interpolates to garbage and must not shadow a genuine
// violation behind the same nullifier.
func (e *Engine) recoverSecret(nullifier1, nullifier2, commitment fr.Element) (fr.Element, error) {
	entry1, ok := e.ledger.Entry(nullifier1)
	if !ok {
		return fr.Element{}, ErrUnknownNullifier
	}

	if nullifier1.Equal(&nullifier2) {
		recorded := Share{
			Nullifier:  nullifier1,
			SignalHash: entry1.SignalHash,
			Y:          entry1.Y,
		}
		recovered := false
		for _, conflict := range e.Conflicts(nullifier1) {
			secret, err := Recover(recorded, conflict)
			if err != nil {
				continue
			}
			recovered = true
			if check := e.hasher.Hash1(secret); check.Equal(&commitment) {
				return secret, nil
			}
		}
		if recovered {
			return fr.Element{}, ErrSecretMismatch
		}
		return fr.Element{}, ErrNonRecoverable
	}

	entry2, ok := e.ledger.Entry(nullifier2)
	if !ok {
		return fr.Element{}, ErrUnknownNullifier
	}
	if entry1.Epoch != entry2.Epoch {
		return fr.Element{}, ErrNonRecoverable
	}
	secret, err := recoverLine(entry1.SignalHash, entry1.Y, entry2.SignalHash, entry2.Y)
	if err != nil {
		return fr.Element{}, err
	}
	if check := e.hasher.Hash1(secret); !check.Equal(&commitment) {
		return fr.Element{}, ErrSecretMismatch
	}
	return secret, nil
}

// recoverLine interpolates the secret from two points of one epoch line.
// Used for cross-nullifier slashing where the shares carry distinct
// message IDs but the same line coefficient.
func recoverLine(x1, y1, x2, y2 fr.Element) (fr.Element, error) {
	if x1.Equal(&x2) {
		return fr.Element{}, ErrNonRecoverable
	}
	a1, err := crypto.Div(crypto.Sub(y1, y2), crypto.Sub(x1, x2))
	if err != nil {
		return fr.Element{}, ErrNonRecoverable
	}
	return crypto.Sub(y1, crypto.Mul(a1, x1)), nil
}
