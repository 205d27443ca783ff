// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package tpke implements two-of-n threshold additive ElGamal encryption on
// the embedded curve. A committee of n members each hold a secret shard of
// the threshold key; any combination of shards that together cover the full
// secret can jointly decrypt, while no single shard reveals anything about
// the plaintext.
package tpke

import (
	"errors"
	"math/big"

	"github.com/luxfi/identity/curve"
)

// PublicKey is the committee's combined threshold public key Y = sum(shard_i)*G.
type PublicKey struct {
	Y *curve.Point
}

// Cipher is a standard additive ElGamal ciphertext: c1 = k*G, c2 = k*Y + m.
type Cipher struct {
	C1 *curve.Point
	C2 *curve.Point
}

// DualCipher extends Cipher with a third slot c3 bound to the shared secret
// k*Y and an external salt via Poseidon, so that a holder of only the
// shard sum can recover the first message (C2) while the second message
// (C3) additionally requires knowing salt — used to selectively reveal a
// pseudonym's committee-facing identity (C2) without exposing the
// credential-linking payload (C3) in the same decryption step.
type DualCipher struct {
	C1 *curve.Point
	C2 *curve.Point
	C3 *curve.Point
}

var (
	ErrShardCountMismatch = errors.New("tpke: shard count does not cover the threshold set")
	ErrNilCiphertext      = errors.New("tpke: nil ciphertext component")
)

// Shard is one committee member's additive contribution secret_i*c1,
// gathered during a decryption round before being summed and subtracted
// from c2 (and, for a DualCipher, from c3).
type Shard = curve.Point
