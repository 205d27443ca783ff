// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package curve

import (
	"errors"
)

// CircuitType names one of the five arithmetic circuits the identity engine
// proves against. tpke_single is generated by a user at credential request
// time and verified by an issuer; pseudonym_check and
// sybil_check are generated by a user and verified by a committee member;
// pedersen_commit backs selective-disclosure range proofs. appkey and derive
// are legacy aliases for sybil_check and pseudonym_check respectively, kept
// so older witness callers don't need to change their circuit name.
type CircuitType uint8

const (
	CircuitTpkeSingle CircuitType = iota
	CircuitPseudonymCheck
	CircuitSybilCheck
	CircuitPedersenCommit
	// legacy aliases, same numeric identity as their modern counterpart
	CircuitAppKey = CircuitSybilCheck
	CircuitDerive = CircuitPseudonymCheck
)

// String renders a CircuitType using its canonical (non-legacy) name.
func (c CircuitType) String() string {
	switch c {
	case CircuitTpkeSingle:
		return "tpke_single"
	case CircuitPseudonymCheck:
		return "pseudonym_check"
	case CircuitSybilCheck:
		return "sybil_check"
	case CircuitPedersenCommit:
		return "pedersen_commit"
	default:
		return "unknown"
	}
}

// VerificationResult is returned by committee verification operations so
// callers can log the circuit and outcome without re-deriving it from the
// raw proof.
type VerificationResult struct {
	Valid       bool
	CircuitType CircuitType
}

var (
	ErrInvalidProof        = errors.New("curve: invalid proof")
	ErrInvalidVerifyingKey = errors.New("curve: invalid verifying key")
	ErrCircuitMismatch     = errors.New("curve: circuit type mismatch")
	ErrInvalidPublicInputs = errors.New("curve: invalid public inputs")
)
