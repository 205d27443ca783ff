// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package curve wraps the embedded twisted-Edwards curve, the Poseidon hash
// over its base field, and Poseidon-EdDSA signing used throughout the
// identity engine. It treats the primitive field/curve/hash library as a
// typed external dependency (component A of the design): nothing in this
// package re-derives curve parameters or hash round constants, it only gives
// the rest of the engine a stable vocabulary (Point, Scalar, G, B8, H8, Q)
// to build on.
package curve

import (
	"crypto/sha256"
	"errors"
	"math/big"

	"github.com/iden3/go-iden3-crypto/babyjub"
)

// Q is the prime field every scalar, attribute, and Poseidon input lives in.
// It is the BN254 scalar field modulus that the embedded twisted-Edwards
// curve (BabyJubJub) is defined over.
var Q = babyjub.Q

// Point is a point on the embedded curve. Both coordinates live in Q.
type Point = babyjub.Point

var (
	// B8 is the base point of the prime-order subgroup used for EdDSA keys
	// and for every "k*G"-style scalar multiplication in this engine.
	B8 = babyjub.B8

	// G is an alias for B8, used generically (M = x*G, B = beta*G, c1 = k*G)
	// where the distinction from the EdDSA-subgroup origin doesn't matter;
	// both name the same point.
	G = babyjub.B8

	// H8 is a second nothing-up-my-sleeve generator, independent of G/B8,
	// used in deriving the Pedersen-style attribute generators (A =
	// sum(ai*Gi), Gi = Poseidon(sk,i)*B8 + Poseidon(sk,i+n)*H8). Attribute
	// openers (Ai = A + r*G) use G, not H8. Derived once at init via
	// hashToCurve's try-and-increment loop below.
	H8 = hashToCurve("identity-engine/H8")
)

var (
	// ErrNotOnCurve is returned when a claimed point does not satisfy the
	// twisted-Edwards curve equation.
	ErrNotOnCurve = errors.New("curve: point not on curve")
	// ErrYNonResidue is returned by FromY when no x exists for the given y
	// and parity (the TrapdoorYNonResidue condition from spec.md, handled
	// by rejection sampling at the call site).
	ErrYNonResidue = errors.New("curve: y has no matching x (non-residue)")
)

// Identity returns the curve's neutral element (0, 1).
func Identity() *Point {
	return babyjub.NewPoint()
}

// Add returns a+b.
func Add(a, b *Point) *Point {
	p := babyjub.NewPoint()
	return p.Add(a, b)
}

// Neg returns the additive inverse of p: (-p.X mod Q, p.Y).
func Neg(p *Point) *Point {
	x := new(big.Int).Neg(p.X)
	x.Mod(x, Q)
	return &Point{X: x, Y: new(big.Int).Set(p.Y)}
}

// Sub returns a-b.
func Sub(a, b *Point) *Point {
	return Add(a, Neg(b))
}

// ScalarMul returns s*p, reducing s modulo Q first.
func ScalarMul(s *big.Int, p *Point) *Point {
	red := new(big.Int).Mod(s, Q)
	out := babyjub.NewPoint()
	return out.Mul(red, p)
}

// Sum folds a list of points with Add, starting from the identity. Used
// throughout tpke and merkle for "sum of shards" / "sum of committed
// generators" style reductions.
func Sum(points ...*Point) *Point {
	acc := Identity()
	for _, p := range points {
		acc = Add(acc, p)
	}
	return acc
}

// Parity returns the least-significant bit of x, the single bit this engine
// transmits alongside a y-coordinate to let a peer reconstruct x.
func Parity(x *big.Int) uint {
	return uint(x.Bit(0))
}

// FromY reconstructs a point from its y-coordinate and the parity bit of x,
// mirroring the on-chain wire format described in spec.md §3/§6. Returns
// ErrYNonResidue if y has no corresponding x on the curve — callers that need
// a point with an arbitrary y (e.g. hashToCurve deriving H8) must
// rejection-sample until this succeeds.
func FromY(y *big.Int, xOdd bool) (*Point, error) {
	p, err := babyjub.PointCoordSign(xOdd).DecompressPoint(y)
	if err != nil {
		return nil, ErrYNonResidue
	}
	return p, nil
}

// EncodePointY renders a point's y-coordinate as the fixed 32-byte
// big-endian wire encoding from spec.md §6.
func EncodePointY(p *Point) [32]byte {
	var out [32]byte
	b := p.Y.Bytes()
	copy(out[32-len(b):], b)
	return out
}

// DecodePointY is the inverse of EncodePointY, given the parity bit that
// would otherwise travel out-of-band (folded into a dense public input such
// as `dd`/`ss`, per spec.md §4.4).
func DecodePointY(enc [32]byte, xOdd bool) (*Point, error) {
	y := new(big.Int).SetBytes(enc[:])
	return FromY(y, xOdd)
}

// hashToCurve derives a nothing-up-my-sleeve curve point from a domain
// string via try-and-increment: hash the seed and a counter with SHA-256 to
// get a candidate y, attempt to recover x, and retry on failure. This is the
// teacher's zk/pedersen.go hashToG1 idiom, ported from bn254.G1Affine's
// Weierstrass equation to this curve's twisted-Edwards equation.
func hashToCurve(seed string) *Point {
	for counter := byte(0); ; counter++ {
		h := sha256.Sum256(append([]byte(seed), counter))
		y := new(big.Int).SetBytes(h[:])
		y.Mod(y, Q)
		if p, err := FromY(y, false); err == nil && !isIdentity(p) {
			return p
		}
	}
}

func isIdentity(p *Point) bool {
	return p.X.Sign() == 0 && p.Y.Cmp(big.NewInt(1)) == 0
}
