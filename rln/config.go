package rln

import (
	"errors"
	"fmt"
	"time"

	"github.com/holiman/uint256"

	"github.com/rlnlabs/rln/crypto"
	"github.com/rlnlabs/rln/log"
	"github.com/rlnlabs/rln/metrics"
	"github.com/rlnlabs/rln/proofs"
)

// Config holds all configuration for an RLN engine instance.
type Config struct {
	// TreeDepth is the fixed depth of the commitment tree; capacity is
	// 2^TreeDepth registrations.
	TreeDepth int

	// EpochLength is the duration of one rate-limiting epoch.
	EpochLength time.Duration

	// Application names the application context. Its signal hash scopes
	// external nullifiers so different applications never share nullifiers.
	Application string

	// MinStake is the minimum registration deposit.
	MinStake *uint256.Int

	// Hasher is the field hash primitive. Nil selects Poseidon.
	Hasher crypto.Hasher

	// Oracle is the proof verification backend. Nil selects the
	// process-wide active oracle.
	Oracle proofs.Oracle

	// Logger receives engine events. Nil discards them.
	Logger *log.Logger

	// Metrics receives engine counters. Nil creates a private registry.
	Metrics *metrics.Registry
}

// DefaultConfig returns a Config with sensible defaults: a 2^20-leaf tree
// and one-hour epochs.
func DefaultConfig() Config {
	return Config{
		TreeDepth:   crypto.TreeDepth,
		EpochLength: time.Hour,
		Application: "rln",
		MinStake:    uint256.NewInt(1_000_000),
	}
}

// Validate checks configuration values for correctness.
func (c *Config) Validate() error {
	if c.TreeDepth < 1 || c.TreeDepth > 32 {
		return fmt.Errorf("config: invalid tree depth: %d", c.TreeDepth)
	}
	if c.EpochLength < time.Second {
		return fmt.Errorf("config: epoch length too short: %s", c.EpochLength)
	}
	if c.Application == "" {
		return errors.New("config: application must not be empty")
	}
	if c.MinStake == nil {
		return errors.New("config: min stake must not be nil")
	}
	return nil
}
