// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package curve

import (
	"math/big"
)

// DeriveGenerators derives n independent attribute generators from an
// issuer's private scalar sk:
//
//	Gi = Poseidon(sk, i)*B8 + Poseidon(sk, i+n)*H8
//
// Two Poseidon-derived scalars per generator, folded through the two
// independent base points B8 and H8, so no single discrete log of any Gi is
// known even to the issuer that derived it. Used at issuer construction and
// again on issuer load; the issuer does not persist the resulting slice,
// since re-deriving it from sk reproduces it identically.
func DeriveGenerators(sk *big.Int, n int) []*Point {
	gens := make([]*Point, n)
	for i := 0; i < n; i++ {
		a := Hash(sk, big.NewInt(int64(i)))
		b := Hash(sk, big.NewInt(int64(i+n)))
		gens[i] = Add(ScalarMul(a, B8), ScalarMul(b, H8))
	}
	return gens
}

// CommitAttributes computes the Pedersen-style attribute commitment
// A = sum(attributes[i] * generators[i]), the attr_commit value an issuer
// binds into a credential and a user later blinds for selective disclosure.
func CommitAttributes(attributes []*big.Int, generators []*Point) *Point {
	acc := Identity()
	for i, a := range attributes {
		acc = Add(acc, ScalarMul(a, generators[i]))
	}
	return acc
}

// BlindCommitment re-randomizes an attribute commitment for selective
// disclosure: Ai = A + r*G. The opener r travels as a private witness input
// to the pedersen_commit circuit, which proves knowledge of r and the
// disclosed subset of attributes without revealing the rest.
func BlindCommitment(commitment *Point, opener *big.Int) *Point {
	return Add(commitment, ScalarMul(opener, G))
}
