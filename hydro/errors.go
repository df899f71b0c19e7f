package hydro

import "errors"

// Both errors are unrecoverable. A rank that detects either must abort the
// whole job through its Exchanger rather than return quietly, so that no
// neighbor deadlocks on an outstanding transfer.
var (
	// ErrVolume signals a nonpositive element volume - the mesh has tangled.
	ErrVolume = errors.New("element volume is non-positive")

	// ErrQStop signals runaway artificial viscosity (q above the qstop
	// threshold).
	ErrQStop = errors.New("artificial viscosity exceeds qstop")
)
