// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package prove treats the Groth16-over-BN254 proving library as a single
// black-box trait: setup, prove, verify. Nothing outside this package knows
// the concrete proving system; every role constructs a Prover once at
// startup and threads it through.
package prove

import (
	"errors"
	"io"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
)

var (
	ErrSetupFailed    = errors.New("prove: trusted setup failed")
	ErrProveFailed    = errors.New("prove: proof generation failed")
	ErrVerifyFailed   = errors.New("prove: proof did not verify")
	ErrWitnessInvalid = errors.New("prove: witness does not satisfy circuit")
)

// Params is the proving and verifying key pair produced by Setup, kept
// together since every circuit in this engine always needs both: a role
// proves with the proving key and a committee member verifies with the
// verifying key. Both are generated as a unit; the roles' Save/Load persist
// only the proving key, through package store.
type Params struct {
	ProvingKey    groth16.ProvingKey
	VerifyingKey  groth16.VerifyingKey
	ConstraintSys frontend.CompiledConstraintSystem
}

// Proof is an opaque Groth16 proof over BN254.
type Proof = groth16.Proof

// Prover is the black-box proving contract: given an r1cs circuit, produce
// setup parameters; given parameters and a witness, produce a proof; given
// a verifying key, public inputs, and a proof, return a Boolean. Any
// Groth16-over-BN254 implementation satisfying this interface is
// substitutable — package store persists proving keys in a way that does
// not depend on which implementation produced them, only on gnark's own
// WriteTo/ReadFrom framing.
type Prover interface {
	Setup(circuit frontend.Circuit) (*Params, error)
	Prove(params *Params, assignment frontend.Circuit) (*Proof, error)
	Verify(vk groth16.VerifyingKey, publicWitness frontend.Circuit, proof *Proof) (bool, error)
}

// GnarkProver is the concrete Prover backed directly by gnark's BN254
// Groth16 backend.
type GnarkProver struct{}

// NewGnarkProver returns the default Prover used throughout this engine.
func NewGnarkProver() *GnarkProver { return &GnarkProver{} }

func (p *GnarkProver) Setup(circuit frontend.Circuit) (*Params, error) {
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, circuit)
	if err != nil {
		return nil, errors.Join(ErrSetupFailed, err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, errors.Join(ErrSetupFailed, err)
	}
	return &Params{ProvingKey: pk, VerifyingKey: vk, ConstraintSys: ccs}, nil
}

func (p *GnarkProver) Prove(params *Params, assignment frontend.Circuit) (*Proof, error) {
	witness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, errors.Join(ErrWitnessInvalid, err)
	}
	proof, err := groth16.Prove(params.ConstraintSys, params.ProvingKey, witness)
	if err != nil {
		return nil, errors.Join(ErrProveFailed, err)
	}
	return &proof, nil
}

func (p *GnarkProver) Verify(vk groth16.VerifyingKey, publicAssignment frontend.Circuit, proof *Proof) (bool, error) {
	publicWitness, err := frontend.NewWitness(publicAssignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return false, errors.Join(ErrWitnessInvalid, err)
	}
	if err := groth16.Verify(*proof, vk, publicWitness); err != nil {
		return false, nil
	}
	return true, nil
}

// WriteParams serializes a Params pair: proving key first, then verifying
// key, both via gnark's own WriteTo. Package store does not use it; it
// writes each proving key on its own.
func WriteParams(w io.Writer, params *Params) (int64, error) {
	n1, err := params.ProvingKey.WriteTo(w)
	if err != nil {
		return n1, err
	}
	n2, err := params.VerifyingKey.WriteTo(w)
	return n1 + n2, err
}
