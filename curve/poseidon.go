// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package curve

import (
	"math/big"

	"github.com/iden3/go-iden3-crypto/poseidon"
)

// MaxPoseidonInputs mirrors the reference Poseidon instantiation's supported
// arity. Every assembler in package witness fixes its own arity at compile
// time and stays well under this bound.
const MaxPoseidonInputs = 16

// Hash computes Poseidon(inputs...) over Q. It panics if len(inputs) is zero
// or exceeds MaxPoseidonInputs — both are programmer errors, not conditions
// that arise from untrusted input.
func Hash(inputs ...*big.Int) *big.Int {
	if len(inputs) == 0 || len(inputs) > MaxPoseidonInputs {
		panic("curve: invalid poseidon arity")
	}
	h, err := poseidon.Hash(inputs)
	if err != nil {
		panic(err)
	}
	return h
}

// HashPoint Poseidon-hashes a point's coordinates: Poseidon(P.X, P.Y). The
// Merkle trees in this engine do not use it; the CA tree's leaf for an
// issuer key is the key's y-coordinate.
func HashPoint(p *Point) *big.Int {
	return Hash(p.X, p.Y)
}

// HashPair is Poseidon(left, right), the internal-node function for both the
// membership tree and the dual non-membership tree in package merkle.
func HashPair(left, right *big.Int) *big.Int {
	return Hash(left, right)
}
