// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package curve

import (
	"crypto/rand"
	"math/big"

	"github.com/iden3/go-iden3-crypto/babyjub"
)

// PrivateKey is an EdDSA signing key over the embedded curve.
type PrivateKey = babyjub.PrivateKey

// Signature is a Poseidon-EdDSA signature: a curve point R8 plus a scalar S.
type Signature = babyjub.Signature

// NewPrivateKey draws a fresh signing key. Callers that need determinism
// (none in this engine — every issuer/committee key is long-lived and
// generated once) should seed babyjub.PrivateKey directly instead.
func NewPrivateKey() (*PrivateKey, error) {
	var sk PrivateKey
	if _, err := rand.Read(sk[:]); err != nil {
		return nil, err
	}
	return &sk, nil
}

// PublicKeyOf derives the public point for a signing key.
func PublicKeyOf(sk *PrivateKey) *Point {
	pub := sk.Public()
	return &Point{X: pub.X, Y: pub.Y}
}

// Sign signs a single field element with Poseidon-EdDSA. Callers that need to
// sign several values first fold them into one element with CompressMessage.
func Sign(sk *PrivateKey, msg *big.Int) *Signature {
	return sk.SignPoseidon(msg)
}

// Verify checks a Poseidon-EdDSA signature against a public key and message.
func Verify(pub *Point, msg *big.Int, sig *Signature) bool {
	pk := babyjub.PublicKey{X: pub.X, Y: pub.Y}
	return pk.VerifyPoseidon(msg, sig)
}

// CompressMessage folds a credential's signed fields into the single field
// element a Poseidon-EdDSA signature covers, in two rounds:
//
//	h1 = Poseidon(masterKey.X, masterKey.Y, beta.X, beta.Y)
//	h  = Poseidon(h1, attrCommit.X, attrCommit.Y, expiration)
//
// This mirrors the issuer's credential-signing step exactly: the master key
// and beta points are compressed first, then folded together with the
// attribute commitment and expiration so the final signature covers all four
// without exceeding Poseidon's practical input arity in one call.
func CompressMessage(masterKey, beta, attrCommit *Point, expiration *big.Int) *big.Int {
	h1 := Hash(masterKey.X, masterKey.Y, beta.X, beta.Y)
	return Hash(h1, attrCommit.X, attrCommit.Y, expiration)
}
