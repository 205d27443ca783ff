// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package issuer implements the CA role: it issues signed credentials over
// a fixed-size attribute vector after verifying a user's credential
// request encrypts its trapdoor correctly under the committee's threshold
// key.
package issuer

import (
	"bytes"
	"encoding/gob"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/luxfi/identity/curve"
	"github.com/luxfi/identity/prove"
	"github.com/luxfi/identity/store"
	"github.com/luxfi/identity/tpke"
	"github.com/luxfi/identity/witness"
)

var (
	ErrInvalidAttributeCount = errors.New("issuer: attribute count does not match attr_num")
	ErrInvalidCipherProof    = errors.New("issuer: credential request's cipher proof failed verification")
)

// UserInfo is the record an issuer keeps for every credential it has ever
// issued, keyed by the credential's master public key M.
type UserInfo struct {
	Attributes []*big.Int
	Cipher     *tpke.Cipher
	BetaPoint  *curve.Point
}

// Credential is the signed tuple an issuer returns from GenCredential.
type Credential struct {
	Sig         *curve.Signature
	MasterPoint *curve.Point
	BetaPoint   *curve.Point
	AttrCommit  *curve.Point
	Expiration  uint64
}

// CredentialRequest is what a user submits: an encryption of its trapdoor
// under the committee's threshold key, plus a tpke_single proof that the
// encryption is well-formed.
type CredentialRequest struct {
	MasterPoint    *curve.Point
	BetaPoint      *curve.Point
	Attributes     []*big.Int
	ExpirationSecs uint64
	Cipher         *tpke.Cipher
	CipherProof    *prove.Proof
	CipherWitness  *witness.TpkeSingle
}

// Issuer holds an issuer's long-lived key material and the record of every
// credential it has ever issued. A fresh generator set is derived once at
// construction from sk; it is never persisted separately because
// DeriveGenerators is a pure function of sk.
type Issuer struct {
	AttrNum    int
	sk         *curve.PrivateKey
	Generators []*curve.Point

	prover       prove.Prover
	tpkeParams   *prove.Params
	tpkeCircuit  string

	mu        sync.RWMutex
	userInfos map[string]*UserInfo // keyed by MasterPoint.Y.String()
	blacklist map[string]struct{}
}

// New constructs a fresh issuer with a new signing key and attribute
// generator set.
func New(attrNum int, prover prove.Prover, tpkeParams *prove.Params) (*Issuer, error) {
	sk, err := curve.NewPrivateKey()
	if err != nil {
		return nil, err
	}
	skScalar := skToScalar(sk)
	return &Issuer{
		AttrNum:     attrNum,
		sk:          sk,
		Generators:  curve.DeriveGenerators(skScalar, attrNum),
		prover:      prover,
		tpkeParams:  tpkeParams,
		tpkeCircuit: "tpke_single",
		userInfos:   make(map[string]*UserInfo),
		blacklist:   make(map[string]struct{}),
	}, nil
}

// PublicKey returns the issuer's EdDSA public key, the point a user's
// pseudonym proof later binds to via the CA membership tree.
func (is *Issuer) PublicKey() *curve.Point {
	return curve.PublicKeyOf(is.sk)
}

func skToScalar(sk *curve.PrivateKey) *big.Int {
	scalar, _ := sk.Scalar()
	return scalar.BigInt()
}

// GenCredential validates a CredentialRequest and, on success, issues a
// signed Credential. Steps mirror the five-step flow this engine's
// issuer role follows throughout its lifetime:
//  1. reject on attribute-count mismatch
//  2. verify the request's tpke_single cipher proof
//  3. compute the attribute commitment and Poseidon-compress the signed
//     message
//  4. record the request in user_infos, keyed by master key
//  5. return the signed credential
func (is *Issuer) GenCredential(req *CredentialRequest) (*Credential, error) {
	if len(req.Attributes) != is.AttrNum {
		return nil, ErrInvalidAttributeCount
	}

	ok, err := is.prover.Verify(is.tpkeParams.VerifyingKey, req.CipherWitness.Assignment(), req.CipherProof)
	if err != nil || !ok {
		return nil, ErrInvalidCipherProof
	}

	attrCommit := curve.CommitAttributes(req.Attributes, is.Generators)
	expiration := uint64(time.Now().Unix()) + req.ExpirationSecs

	msg := curve.CompressMessage(req.MasterPoint, req.BetaPoint, attrCommit, new(big.Int).SetUint64(expiration))
	sig := curve.Sign(is.sk, msg)

	is.mu.Lock()
	is.userInfos[req.MasterPoint.Y.String()] = &UserInfo{
		Attributes: req.Attributes,
		Cipher:     req.Cipher,
		BetaPoint:  req.BetaPoint,
	}
	is.mu.Unlock()

	return &Credential{
		Sig:         sig,
		MasterPoint: req.MasterPoint,
		BetaPoint:   req.BetaPoint,
		AttrCommit:  attrCommit,
		Expiration:  expiration,
	}, nil
}

// UserInfo returns the record stored for a given master public key, if any.
func (is *Issuer) UserInfo(masterPoint *curve.Point) (*UserInfo, bool) {
	is.mu.RLock()
	defer is.mu.RUnlock()
	info, ok := is.userInfos[masterPoint.Y.String()]
	return info, ok
}

// userInfoEntry is userInfos flattened to a gob-friendly slice, since map
// iteration order is not stable and gob encodes maps fine but a slice keeps
// the on-disk layout independent of Go's map internals.
type userInfoEntry struct {
	Key        string
	Attributes []*big.Int
	C1, C2     *curve.Point
	BetaPoint  *curve.Point
}

// smallState is everything about an issuer that isn't a proving key: the
// signing key, attribute count, and every credential issued so far. The
// generator set is not persisted — it is always re-derived from sk.
type smallState struct {
	AttrNum   int
	SK        curve.PrivateKey
	UserInfos []userInfoEntry
}

// Save writes the issuer's small state to <dir>/issuer.dat. It holds only
// one proving key (tpke_single), so there is nothing to persist beyond the
// small state here — the tpke_single Params themselves are shared
// infrastructure set up once and loaded by package store's generic
// proving-key helpers at the call site that also owns the committee's
// circuit parameters.
func (is *Issuer) Save(dir string) error {
	is.mu.RLock()
	defer is.mu.RUnlock()

	entries := make([]userInfoEntry, 0, len(is.userInfos))
	for key, info := range is.userInfos {
		entries = append(entries, userInfoEntry{
			Key:        key,
			Attributes: info.Attributes,
			C1:         info.Cipher.C1,
			C2:         info.Cipher.C2,
			BetaPoint:  info.BetaPoint,
		})
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(smallState{
		AttrNum:   is.AttrNum,
		SK:        *is.sk,
		UserInfos: entries,
	}); err != nil {
		return err
	}

	paths := store.Paths{Dir: dir, Name: "issuer"}
	if err := store.SaveSmallState(paths.SmallStatePath(), buf.Bytes()); err != nil {
		return err
	}
	store.LogSave("issuer", 0)
	return nil
}

// Load reconstructs an Issuer from <dir>/issuer.dat, re-deriving its
// attribute generator set from the restored signing key.
func Load(dir string, prover prove.Prover, tpkeParams *prove.Params) (*Issuer, error) {
	paths := store.Paths{Dir: dir, Name: "issuer"}
	raw, err := store.LoadSmallState(paths.SmallStatePath())
	if err != nil {
		return nil, err
	}

	var state smallState
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&state); err != nil {
		return nil, err
	}

	userInfos := make(map[string]*UserInfo, len(state.UserInfos))
	for _, e := range state.UserInfos {
		userInfos[e.Key] = &UserInfo{
			Attributes: e.Attributes,
			Cipher:     &tpke.Cipher{C1: e.C1, C2: e.C2},
			BetaPoint:  e.BetaPoint,
		}
	}

	sk := state.SK
	return &Issuer{
		AttrNum:     state.AttrNum,
		sk:          &sk,
		Generators:  curve.DeriveGenerators(skToScalar(&sk), state.AttrNum),
		prover:      prover,
		tpkeParams:  tpkeParams,
		tpkeCircuit: "tpke_single",
		userInfos:   userInfos,
		blacklist:   make(map[string]struct{}),
	}, nil
}
