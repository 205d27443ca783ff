// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package user implements the holder role: requesting a credential from an
// issuer, deriving an unlimited number of unlinkable pseudonyms from it, and
// proving application-scoped sybil resistance and selective attribute
// disclosure without ever revealing the credential itself.
package user

import (
	"bytes"
	"crypto/rand"
	"encoding/gob"
	"errors"
	"math/big"
	"sync"

	log "github.com/luxfi/log"

	"github.com/luxfi/identity/curve"
	"github.com/luxfi/identity/issuer"
	"github.com/luxfi/identity/merkle"
	"github.com/luxfi/identity/prove"
	"github.com/luxfi/identity/store"
	"github.com/luxfi/identity/tpke"
	"github.com/luxfi/identity/witness"
)

var (
	ErrNoCredential     = errors.New("user: no credential on file, call FillCredential first")
	ErrCredentialBadSig = errors.New("user: credential signature does not verify against issuer key")
)

// Params bundles the proving parameters a user needs for every circuit it
// proves against directly: tpke_single at request time, pseudonym_check at
// derive time, sybil_check for application keys, and pedersen_commit for
// selective disclosure.
type Params struct {
	TpkeSingle     *prove.Params
	PseudonymCheck *prove.Params
	SybilCheck     *prove.Params
	PedersenCommit *prove.Params
}

// Client is a single holder's long-lived state: its master identity key
// pair, trapdoor, attribute set, and the credential once an issuer has
// signed it.
type Client struct {
	prover prove.Prover
	params *Params
	log    log.Logger

	mu          sync.Mutex
	masterX     *big.Int
	masterPoint *curve.Point
	beta        *big.Int
	betaPoint   *curve.Point
	attributes  []*big.Int
	generators  []*curve.Point
	credential  *issuer.Credential
	deriveIndex uint64
}

func randomScalar() (*big.Int, error) {
	return rand.Int(rand.Reader, curve.Q)
}

// New constructs a fresh holder identity: a random master secret and a
// random trapdoor, over the given attribute vector.
func New(prover prove.Prover, params *Params, attributes []*big.Int) (*Client, error) {
	masterX, err := randomScalar()
	if err != nil {
		return nil, err
	}
	beta, err := randomScalar()
	if err != nil {
		return nil, err
	}
	return &Client{
		prover:      prover,
		params:      params,
		log:         log.NewTestLogger(log.InfoLevel),
		masterX:     masterX,
		masterPoint: curve.ScalarMul(masterX, curve.G),
		beta:        beta,
		betaPoint:   curve.ScalarMul(beta, curve.G),
		attributes:  attributes,
	}, nil
}

// MasterPoint is the public identity anchor M = masterX*G an issuer binds
// a credential to.
func (c *Client) MasterPoint() *curve.Point {
	return c.masterPoint
}

// RequestCredential builds a CredentialRequest: it encrypts the trapdoor's
// point under the committee's threshold public key and proves the
// encryption is well-formed via tpke_single, so the issuer never learns
// beta directly.
func (c *Client) RequestCredential(thresholdPub *curve.Point, expirationSecs uint64) (*issuer.CredentialRequest, error) {
	tc := tpke.NewClient(&tpke.PublicKey{Y: thresholdPub})
	cipher, k, err := tc.Encrypt(c.betaPoint)
	if err != nil {
		return nil, err
	}

	w := witness.NewTpkeSingle(k, c.beta, c.betaPoint, cipher.C1, cipher.C2, c.masterPoint, thresholdPub)
	w.MasterX = c.masterX
	proof, err := c.prover.Prove(c.params.TpkeSingle, w.Assignment())
	if err != nil {
		return nil, err
	}

	return &issuer.CredentialRequest{
		MasterPoint:    c.masterPoint,
		BetaPoint:      c.betaPoint,
		Attributes:     c.attributes,
		ExpirationSecs: expirationSecs,
		Cipher:         cipher,
		CipherProof:    proof,
		CipherWitness:  w,
	}, nil
}

// FillCredential verifies and stores a signed Credential returned by an
// issuer, along with the attribute generator set that credential's
// commitment was built against.
func (c *Client) FillCredential(cred *issuer.Credential, issuerKey *curve.Point, generators []*curve.Point) error {
	msg := curve.CompressMessage(cred.MasterPoint, cred.BetaPoint, cred.AttrCommit, new(big.Int).SetUint64(cred.Expiration))
	if !curve.Verify(issuerKey, msg, cred.Sig) {
		return ErrCredentialBadSig
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.credential = cred
	c.generators = generators
	return nil
}

// DeriveIdentity derives the next unlinkable pseudonym bound to addr: the
// series number sn = Poseidon(beta, deriveIndex) doubles as the
// pseudonym's own identity and as the ElGamal nonce encrypting the
// holder's master point and trapdoor point under the committee's
// threshold key, per this engine's deliberate randomness reuse.
func (c *Client) DeriveIdentity(
	addr *big.Int,
	thresholdPub *curve.Point,
	ei, n uint64,
	caRoot *big.Int,
	caProof *merkle.InProof,
	revocationProof *merkle.NotInProof,
	issuerKey *curve.Point,
) (*witness.PseudonymCheck, *prove.Proof, error) {
	c.mu.Lock()
	cred := c.credential
	if cred == nil {
		c.mu.Unlock()
		return nil, nil, ErrNoCredential
	}
	idx := c.deriveIndex
	c.deriveIndex++
	c.mu.Unlock()

	sn := curve.Hash(c.beta, new(big.Int).SetUint64(idx))
	tc := tpke.NewClient(&tpke.PublicKey{Y: thresholdPub})
	dual := tc.EncryptDualWithNonce(c.masterPoint, c.betaPoint, addr, sn)

	opener, err := randomScalar()
	if err != nil {
		return nil, nil, err
	}
	ai := curve.BlindCommitment(cred.AttrCommit, opener)

	w := witness.NewPseudonymCheck(
		addr,
		dual.C1, dual.C2, dual.C3, ai, thresholdPub,
		ei, n,
		caRoot, caProof, revocationProof,
		sn, c.masterX, new(big.Int).SetUint64(cred.Expiration), c.beta,
		cred.AttrCommit, idx, opener,
		issuerKey, cred.Sig,
	)
	proof, err := c.prover.Prove(c.params.PseudonymCheck, w.Assignment())
	if err != nil {
		return nil, nil, err
	}
	return w, proof, nil
}

// GenAppKey derives an application-scoped sybil-resistance key bound to
// appid, reusing the c2 component published with a previously derived
// pseudonym (and the series number sn that pseudonym was derived with) so
// the proof ties the application key to an on-chain registration without
// revealing the master key itself.
func (c *Client) GenAppKey(appid *big.Int, thresholdPub, c2 *curve.Point, sn *big.Int) (*witness.SybilCheck, *prove.Proof, error) {
	c.mu.Lock()
	masterX := c.masterX
	c.mu.Unlock()

	w := witness.NewSybilCheck(masterX, appid, thresholdPub, c2, sn)
	proof, err := c.prover.Prove(c.params.SybilCheck, w.Assignment())
	if err != nil {
		return nil, nil, err
	}
	return w, proof, nil
}

// GenIdentityProof proves each attribute lies within its disclosed
// [lower, upper] bound without revealing the attribute values themselves.
func (c *Client) GenIdentityProof(lower, upper [8]*big.Int) (*witness.PedersenCommit, *prove.Proof, error) {
	c.mu.Lock()
	cred := c.credential
	attrs := c.attributes
	generators := c.generators
	c.mu.Unlock()
	if cred == nil {
		return nil, nil, ErrNoCredential
	}

	var attrs8 [8]*big.Int
	for i := range attrs8 {
		if i < len(attrs) {
			attrs8[i] = attrs[i]
		} else {
			attrs8[i] = big.NewInt(0)
		}
	}

	opener, err := randomScalar()
	if err != nil {
		return nil, nil, err
	}

	w := witness.NewPedersenCommit(cred.AttrCommit, generators, attrs8, opener, lower, upper)
	proof, err := c.prover.Prove(c.params.PedersenCommit, w.Assignment())
	if err != nil {
		return nil, nil, err
	}
	return w, proof, nil
}

// smallState is a holder's persisted state: master/trapdoor secrets,
// attributes, the generator set learned from FillCredential, the
// credential itself, and the derive-index counter (whose monotonicity
// across restarts matters — replaying a derive index would reuse a series
// number and collapse two pseudonyms into one).
type smallState struct {
	MasterX     *big.Int
	Beta        *big.Int
	Attributes  []*big.Int
	Generators  []*curve.Point
	Credential  *issuer.Credential
	DeriveIndex uint64
}

// Save writes the holder's small state to <dir>/user.dat, followed by its
// four proving-key pairs in the fixed order tpke_single, pseudonym_check,
// sybil_check, pedersen_commit.
func (c *Client) Save(dir string) error {
	c.mu.Lock()
	state := smallState{
		MasterX:     c.masterX,
		Beta:        c.beta,
		Attributes:  c.attributes,
		Generators:  c.generators,
		Credential:  c.credential,
		DeriveIndex: c.deriveIndex,
	}
	c.mu.Unlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		return err
	}

	paths := store.Paths{Dir: dir, Name: "user"}
	if err := store.SaveSmallState(paths.SmallStatePath(), buf.Bytes()); err != nil {
		return err
	}

	if err := store.SaveProvingKey(paths, 0, c.params.TpkeSingle.ProvingKey); err != nil {
		return err
	}
	if err := store.SaveProvingKey(paths, 1, c.params.PseudonymCheck.ProvingKey); err != nil {
		return err
	}
	if err := store.SaveProvingKey(paths, 2, c.params.SybilCheck.ProvingKey); err != nil {
		return err
	}
	if err := store.SaveProvingKey(paths, 3, c.params.PedersenCommit.ProvingKey); err != nil {
		return err
	}

	store.LogSave("user", 4)
	return nil
}

// Load reconstructs a Client from <dir>/user.dat and its four proving-key
// files, loaded in the same fixed order Save wrote them.
func Load(dir string, prover prove.Prover, params *Params) (*Client, error) {
	paths := store.Paths{Dir: dir, Name: "user"}
	raw, err := store.LoadSmallState(paths.SmallStatePath())
	if err != nil {
		return nil, err
	}

	var state smallState
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&state); err != nil {
		return nil, err
	}

	if err := store.LoadProvingKey(paths, 0, params.TpkeSingle.ProvingKey); err != nil {
		return nil, err
	}
	if err := store.LoadProvingKey(paths, 1, params.PseudonymCheck.ProvingKey); err != nil {
		return nil, err
	}
	if err := store.LoadProvingKey(paths, 2, params.SybilCheck.ProvingKey); err != nil {
		return nil, err
	}
	if err := store.LoadProvingKey(paths, 3, params.PedersenCommit.ProvingKey); err != nil {
		return nil, err
	}

	return &Client{
		prover:      prover,
		params:      params,
		log:         log.NewTestLogger(log.InfoLevel),
		masterX:     state.MasterX,
		masterPoint: curve.ScalarMul(state.MasterX, curve.G),
		beta:        state.Beta,
		betaPoint:   curve.ScalarMul(state.Beta, curve.G),
		attributes:  state.Attributes,
		generators:  state.Generators,
		credential:  state.Credential,
		deriveIndex: state.DeriveIndex,
	}, nil
}
