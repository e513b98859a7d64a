// Command rln-demo walks the full RLN flow against an in-process engine:
// register identities, post a message per epoch, provoke a double-signal,
// recover the offender's secret, and slash their stake.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"

	"github.com/rlnlabs/rln/crypto"
	"github.com/rlnlabs/rln/log"
	"github.com/rlnlabs/rln/proofs"
	"github.com/rlnlabs/rln/rln"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("rln-demo", flag.ContinueOnError)

	app := fs.String("app", "rln-demo", "Application context name")
	epochLen := fs.Duration("epoch", time.Hour, "Epoch length")
	treeDepth := fs.Int("depth", 16, "Commitment tree depth")
	minStake := fs.Uint64("min-stake", 100, "Minimum registration stake")
	stake := fs.Uint64("stake", 500, "Stake deposited per identity")
	verbosity := fs.String("verbosity", "info", "Log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger := log.New(log.ParseLevel(*verbosity))

	cfg := rln.DefaultConfig()
	cfg.Application = *app
	cfg.EpochLength = *epochLen
	cfg.TreeDepth = *treeDepth
	cfg.MinStake = uint256.NewInt(*minStake)
	cfg.Oracle = proofs.TagOracle{}
	cfg.Logger = logger

	engine, err := rln.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		return 1
	}

	h := engine.Hasher()
	alice := rln.IdentityFromSeed(h, []byte("alice"))
	bob := rln.IdentityFromSeed(h, []byte("bob"))

	for name, id := range map[string]*rln.Identity{"alice": alice, "bob": bob} {
		index, err := engine.RegisterIdentity(id.Commitment, uint256.NewInt(*stake))
		if err != nil {
			fmt.Fprintf(os.Stderr, "register %s: %v\n", name, err)
			return 1
		}
		fmt.Printf("registered %-5s leaf=%d commitment=%s\n", name, index, short(id.Commitment))
	}

	ctx := context.Background()
	epoch := engine.CurrentEpoch(time.Now())
	fmt.Printf("epoch %d (length %s)\n", epoch, *epochLen)

	if _, err := postSignal(ctx, engine, bob, epoch, []byte("hello from bob")); err != nil {
		fmt.Fprintf(os.Stderr, "bob post: %v\n", err)
		return 1
	}
	fmt.Println("bob posted one message: accepted")

	first, err := postSignal(ctx, engine, alice, epoch, []byte("first message"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "alice post: %v\n", err)
		return 1
	}
	fmt.Println("alice posted one message: accepted")

	// The violation: a second, different signal in the same epoch.
	_, err = postSignal(ctx, engine, alice, epoch, []byte("second message"))
	var dup *rln.DuplicateNullifierError
	if !errors.As(err, &dup) {
		fmt.Fprintf(os.Stderr, "expected duplicate rejection, got: %v\n", err)
		return 1
	}
	fmt.Printf("alice posted again: rejected, duplicate nullifier %s\n", short(dup.Nullifier))

	secret, err := engine.Slash(first.Nullifier, first.Nullifier, alice.Commitment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "slash: %v\n", err)
		return 1
	}
	if check := h.Hash1(secret); !check.Equal(&alice.Commitment) {
		fmt.Fprintln(os.Stderr, "recovered secret does not match alice's commitment")
		return 1
	}

	staked, forfeited := engine.StakeTotals()
	fmt.Printf("recovered alice's secret: %s\n", short(secret))
	fmt.Printf("slashed: staked=%s forfeited=%s\n", staked, forfeited)
	return 0
}

// postSignal builds the share and tag proof for a message and submits it.
func postSignal(ctx context.Context, engine *rln.Engine, id *rln.Identity, epoch uint64, msg []byte) (rln.Share, error) {
	h := engine.Hasher()
	signal := crypto.SignalHash(h, msg)
	extNull := engine.ExternalNullifierAt(epoch)
	share := rln.ComputeShare(h, id.Secret, extNull, 0, signal)

	root := engine.Root()
	statement := proofs.Statement{
		ExternalNullifier: share.ExternalNullifier,
		Y:                 share.Y,
		Nullifier:         share.Nullifier,
		Root:              root,
		SignalHash:        share.SignalHash,
	}
	_, err := engine.PostMessage(ctx, rln.Message{
		Epoch: epoch,
		Root:  root,
		Share: share,
		Proof: proofs.TagProof(statement),
	})
	return share, err
}

// short renders a field element as truncated hex for display.
func short(e fr.Element) string {
	b := e.Bytes()
	s := hexutil.Encode(b[:])
	if len(s) > 18 {
		return s[:18] + "..."
	}
	return s
}
