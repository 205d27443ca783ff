// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package witness assembles the deterministic public/private input vectors
// for the five circuits the identity engine proves against. Each assembler
// here is a total function of its inputs: given the same state and request,
// it always produces the same witness, in the same field order the
// committee's verifying keys expect.
package witness

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/luxfi/identity/curve"
)

// PackDD builds the pseudonym_check circuit's dense public input:
//
//	bit 0: parity(C1.x)    bit 1: parity(C2.x)    bit 2: parity(C3.x)
//	bit 3: parity(Ai.x)    bit 4: parity(Y.x)
//	bits 5..68  (64 bits): ei  (absolute expiration)
//	bits 69..132 (64 bits): n  (committee-advertised address count cap)
func PackDD(c1, c2, c3, ai, y *curve.Point, ei, n uint64) *big.Int {
	dd := new(big.Int)
	setBit(dd, 0, curve.Parity(c1.X))
	setBit(dd, 1, curve.Parity(c2.X))
	setBit(dd, 2, curve.Parity(c3.X))
	setBit(dd, 3, curve.Parity(ai.X))
	setBit(dd, 4, curve.Parity(y.X))

	eiBig := new(big.Int).SetUint64(ei)
	eiBig.Lsh(eiBig, 5)
	dd.Or(dd, eiBig)

	nBig := new(big.Int).SetUint64(n)
	nBig.Lsh(nBig, 69)
	dd.Or(dd, nBig)

	return dd
}

// UnpackDD is PackDD's inverse: it recovers the parity bits and the
// expiration/cap fields from a pseudonym_check proof's public dd input
// without re-deriving them from private state. Only tests call it here.
func UnpackDD(dd *big.Int) (parities [5]uint, ei, n uint64) {
	for i := 0; i < 5; i++ {
		parities[i] = uint(dd.Bit(i))
	}
	eiMask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 64), big.NewInt(1))
	ei = new(big.Int).And(new(big.Int).Rsh(dd, 5), eiMask).Uint64()
	n = new(big.Int).And(new(big.Int).Rsh(dd, 69), eiMask).Uint64()
	return parities, ei, n
}

// PackSS builds the sybil_check circuit's dense public input:
//
//	bits 0..159 (160 bits): appid
//	bit 160: parity(Y.x)
//	bit 161: parity(C2.x)
func PackSS(appid *big.Int, y, c2 *curve.Point) *big.Int {
	low160, _ := uint256.FromBig(appid)
	low160.Lsh(low160, 96)
	low160.Rsh(low160, 96)

	ss := low160.ToBig()
	setBit(ss, 160, curve.Parity(y.X))
	setBit(ss, 161, curve.Parity(c2.X))
	return ss
}

func setBit(v *big.Int, i int, bit uint) {
	if bit != 0 {
		v.SetBit(v, i, 1)
	}
}

// RootsHash computes rh = Poseidon(blockRoot, caRoot, pubKeyY), the binding
// value pseudonym_check's public input `rh` carries and the value
// committee.Member.UpdateRootsHash republishes (once per dual block root).
func RootsHash(blockRoot, caRoot, pubKeyY *big.Int) *big.Int {
	return curve.Hash(blockRoot, caRoot, pubKeyY)
}

// LRCM compresses an eight-attribute lower/upper bound pair into the single
// public input the pedersen_commit circuit exposes:
//
//	lrcm = Poseidon(l[6], l[7], r[6], r[7], Poseidon(l[0..6]), Poseidon(r[0..6]))
func LRCM(lower, upper [8]*big.Int) *big.Int {
	lHead := curve.Hash(lower[0], lower[1], lower[2], lower[3], lower[4], lower[5])
	rHead := curve.Hash(upper[0], upper[1], upper[2], upper[3], upper[4], upper[5])
	return curve.Hash(lower[6], lower[7], upper[6], upper[7], lHead, rHead)
}
