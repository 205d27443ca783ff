// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tpke

import (
	"crypto/rand"
	"math/big"

	log "github.com/luxfi/log"

	"github.com/luxfi/identity/curve"
)

// Client encrypts under a committee's combined threshold public key. It
// holds no secret material — only the public key Y needed to form
// ciphertexts — and is safe to share across goroutines.
type Client struct {
	pub *PublicKey
	log log.Logger
}

// NewClient builds an encryption client against a committee's published
// threshold public key.
func NewClient(pub *PublicKey) *Client {
	return &Client{
		pub: pub,
		log: log.NewTestLogger(log.InfoLevel),
	}
}

// randomScalar draws a uniform scalar mod Q.
func randomScalar() (*big.Int, error) {
	return rand.Int(rand.Reader, curve.Q)
}

// Encrypt produces a standard ciphertext (c1=k*G, c2=k*Y+m) under a freshly
// drawn ephemeral scalar k, returning k alongside the ciphertext. Most
// callers in this engine do not use this path directly — the pseudonym
// derivation flow reuses a deterministic k (the series number sn) via
// EncryptDualWithNonce instead, so the ephemeral scalar doubles as the
// pseudonym's own identity.
func (c *Client) Encrypt(msg *curve.Point) (*Cipher, *big.Int, error) {
	k, err := randomScalar()
	if err != nil {
		return nil, nil, err
	}
	return c.encryptWithNonce(msg, k), k, nil
}

func (c *Client) encryptWithNonce(msg *curve.Point, k *big.Int) *Cipher {
	ky := curve.ScalarMul(k, c.pub.Y)
	return &Cipher{
		C1: curve.ScalarMul(k, curve.G),
		C2: curve.Add(ky, msg),
	}
}

// EncryptDual produces a DualCipher under a freshly drawn ephemeral scalar,
// binding msg2 to the shared secret k*Y and salt via Poseidon.
func (c *Client) EncryptDual(msg1, msg2 *curve.Point, salt *big.Int) (*DualCipher, *big.Int, error) {
	k, err := randomScalar()
	if err != nil {
		return nil, nil, err
	}
	return c.EncryptDualWithNonce(msg1, msg2, salt, k), k, nil
}

// EncryptDualWithNonce is the deterministic variant used by the pseudonym
// derivation flow: the caller supplies k directly (there, k = sn, the
// Poseidon-derived series number, a reuse of randomness that is deliberate
// — see package user), rather than drawing a fresh one.
//
//	ky = k*Y
//	c1 = k*G
//	c2 = ky + msg1
//	c3 = Poseidon(ky.X, ky.Y, salt)*G + msg2
func (c *Client) EncryptDualWithNonce(msg1, msg2 *curve.Point, salt *big.Int, k *big.Int) *DualCipher {
	ky := curve.ScalarMul(k, c.pub.Y)
	bindScalar := curve.Hash(ky.X, ky.Y, salt)
	return &DualCipher{
		C1: curve.ScalarMul(k, curve.G),
		C2: curve.Add(ky, msg1),
		C3: curve.Add(curve.ScalarMul(bindScalar, curve.G), msg2),
	}
}

// DecryptShard is a committee member's contribution toward decrypting a
// ciphertext's c1 component: shard = secret * c1.
func DecryptShard(secret *big.Int, c1 *curve.Point) *Shard {
	return curve.ScalarMul(secret, c1)
}

// Decrypt recovers msg1 from a Cipher given the sum of the covering shard
// set: msg1 = c2 - sum(shards).
func (c *Cipher) Decrypt(shards []*Shard) (*curve.Point, error) {
	if c == nil || c.C1 == nil || c.C2 == nil {
		return nil, ErrNilCiphertext
	}
	if len(shards) == 0 {
		return nil, ErrShardCountMismatch
	}
	sum := curve.Sum(shards...)
	return curve.Sub(c.C2, sum), nil
}

// Decrypt recovers (msg1, msg2) from a DualCipher given the covering shard
// set and the salt used at encryption time:
//
//	shardSum = sum(shards)
//	msg1 = c2 - shardSum
//	msg2 = c3 - Poseidon(shardSum.X, shardSum.Y, salt)*G
func (c *DualCipher) Decrypt(shards []*Shard, salt *big.Int) (msg1, msg2 *curve.Point, err error) {
	if c == nil || c.C1 == nil || c.C2 == nil || c.C3 == nil {
		return nil, nil, ErrNilCiphertext
	}
	if len(shards) == 0 {
		return nil, nil, ErrShardCountMismatch
	}
	shardSum := curve.Sum(shards...)
	msg1 = curve.Sub(c.C2, shardSum)
	bindScalar := curve.Hash(shardSum.X, shardSum.Y, salt)
	msg2 = curve.Sub(c.C3, curve.ScalarMul(bindScalar, curve.G))
	return msg1, msg2, nil
}
