package rln

import (
	"testing"
	"time"

	"github.com/rlnlabs/rln/crypto"
)

func TestEpochAt(t *testing.T) {
	tests := []struct {
		name   string
		unix   int64
		length time.Duration
		want   uint64
	}{
		{"unix epoch start", 0, time.Hour, 0},
		{"just before boundary", 3599, time.Hour, 0},
		{"at boundary", 3600, time.Hour, 1},
		{"mid second epoch", 5400, time.Hour, 1},
		{"short epochs", 125, 10 * time.Second, 12},
		{"sub-second length clamps to one second", 42, 500 * time.Millisecond, 42},
		{"zero length clamps to one second", 42, 0, 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EpochAt(time.Unix(tt.unix, 0), tt.length)
			if got != tt.want {
				t.Fatalf("EpochAt(%d, %s) = %d, want %d", tt.unix, tt.length, got, tt.want)
			}
		})
	}
}

func TestExternalNullifier_BindsEpochAndApp(t *testing.T) {
	h := crypto.Poseidon()
	app1 := crypto.NewElement(1)
	app2 := crypto.NewElement(2)

	base := ExternalNullifier(h, 10, app1)

	sameInputs := ExternalNullifier(h, 10, app1)
	if !base.Equal(&sameInputs) {
		t.Fatal("external nullifier must be deterministic")
	}

	otherEpoch := ExternalNullifier(h, 11, app1)
	if base.Equal(&otherEpoch) {
		t.Fatal("different epochs must produce different external nullifiers")
	}

	otherApp := ExternalNullifier(h, 10, app2)
	if base.Equal(&otherApp) {
		t.Fatal("different applications must produce different external nullifiers")
	}
}
