// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package committee implements the committee-member role: holding a
// threshold decryption shard, verifying user-submitted proofs against the
// engine's five circuits, and maintaining the CA membership tree and the
// dual revocation tree.
package committee

import (
	"bytes"
	"crypto/rand"
	"encoding/gob"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/luxfi/geth/common"
	log "github.com/luxfi/log"

	"github.com/luxfi/identity/curve"
	"github.com/luxfi/identity/merkle"
	"github.com/luxfi/identity/prove"
	"github.com/luxfi/identity/store"
	"github.com/luxfi/identity/tpke"
	"github.com/luxfi/identity/witness"
)

var (
	ErrProofVerificationFailed = errors.New("committee: proof verification failed")
	ErrMerkleMissing           = errors.New("committee: value absent from membership tree")
	ErrMerkleDuplicate         = errors.New("committee: value already a member")
)

// epoch records a revocation's dual roots at the chain version they were
// republished under, so tracing can pick the roots active at a given point
// in time even after later revocations.
type epoch struct {
	Version     uint64
	BlockRoot0  *big.Int
	BlockRoot1  *big.Int
}

// Params bundles the proving/verifying key pair for each of the engine's
// four distinct circuits (the legacy derive/appkey names alias
// pseudonym_check/sybil_check). A committee member needs all four: it
// verifies pseudonym_check, sybil_check, and pedersen_commit proofs
// directly, and holds tpke_single's keys too (used by issuers; a second
// copy is kept here so a committee can audit an issuer's acceptance
// decisions without trusting the issuer's own verify result).
type Params struct {
	TpkeSingle      *prove.Params
	PseudonymCheck  *prove.Params
	SybilCheck      *prove.Params
	PedersenCommit  *prove.Params
}

// Member is one committee member's off-chain state: its threshold secret
// shard, the CA membership tree, the dual revocation tree, and the
// circuit parameters needed to verify every proof type this engine
// produces.
type Member struct {
	prover prove.Prover
	params *Params
	log    log.Logger

	mu         sync.RWMutex
	tpkeSecret *big.Int
	tpkePub    *curve.Point
	caDepth    int
	blockDepth int
	caTree     *merkle.Tree
	blockTree  *merkle.DualTree
	epochs     []epoch
}

// New constructs a committee member with a fresh threshold secret shard.
// caDepth and blockDepth follow the original engine's defaults (20 and 32
// respectively) when given as 0.
func New(prover prove.Prover, params *Params, caDepth, blockDepth int) (*Member, error) {
	if caDepth == 0 {
		caDepth = 20
	}
	if blockDepth == 0 {
		blockDepth = 32
	}
	secret, err := rand.Int(rand.Reader, curve.Q)
	if err != nil {
		return nil, err
	}
	return &Member{
		prover:     prover,
		params:     params,
		log:        log.NewTestLogger(log.InfoLevel),
		tpkeSecret: secret,
		caDepth:    caDepth,
		blockDepth: blockDepth,
		caTree:     merkle.New(caDepth),
		blockTree:  merkle.NewDualTree(blockDepth),
	}, nil
}

// TpkeShard returns this member's contribution to the combined threshold
// public key: secret * G.
func (m *Member) TpkeShard() *curve.Point {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return curve.ScalarMul(m.tpkeSecret, curve.G)
}

// UpdateTpkeKey records the combined threshold public key once all
// members' shards have been summed externally.
func (m *Member) UpdateTpkeKey(pub *curve.Point) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tpkePub = pub
}

// DecryptShard computes this member's additive contribution toward
// decrypting a ciphertext: secret * c1.
func (m *Member) DecryptShard(c1 *curve.Point) *tpke.Shard {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return tpke.DecryptShard(m.tpkeSecret, c1)
}

// AddTrustedIssuer inserts an issuer's public key into the CA membership
// tree, indexed by its y-coordinate.
func (m *Member) AddTrustedIssuer(issuerKey *curve.Point) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caTree.InsertNodes([]*big.Int{issuerKey.Y})
}

// CARoot and BlockRoots expose the trees' current roots, the values a
// pseudonym_check witness binds into rh.
func (m *Member) CARoot() *big.Int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.caTree.Root()
}

func (m *Member) BlockRoots() (*big.Int, *big.Int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.blockTree.Roots()
}

// VerifyKeyRequest verifies a pseudonym_check (aka "derive") proof. Only
// the witness's public fields matter here — Verify builds a
// public-only gnark witness internally and ignores the private fields
// Assignment also fills in.
func (m *Member) VerifyKeyRequest(w *witness.PseudonymCheck, proof *prove.Proof) (bool, error) {
	ok, err := m.prover.Verify(m.params.PseudonymCheck.VerifyingKey, w.Assignment(), proof)
	if err != nil || !ok {
		return false, ErrProofVerificationFailed
	}
	return true, nil
}

// VerifyAppKey verifies a sybil_check (aka "appkey") proof.
func (m *Member) VerifyAppKey(w *witness.SybilCheck, proof *prove.Proof) (bool, error) {
	ok, err := m.prover.Verify(m.params.SybilCheck.VerifyingKey, w.Assignment(), proof)
	if err != nil || !ok {
		return false, ErrProofVerificationFailed
	}
	return true, nil
}

// VerifyIdentityProof verifies a pedersen_commit selective-disclosure
// proof.
func (m *Member) VerifyIdentityProof(w *witness.PedersenCommit, proof *prove.Proof) (bool, error) {
	ok, err := m.prover.Verify(m.params.PedersenCommit.VerifyingKey, w.Assignment(), proof)
	if err != nil || !ok {
		return false, ErrProofVerificationFailed
	}
	return true, nil
}

// KeyRequestSubmission pairs a pseudonym_check witness with its proof, for
// batch auditing a block's worth of derive submissions at once.
type KeyRequestSubmission struct {
	Witness *witness.PseudonymCheck
	Proof   *prove.Proof
}

// VerifyKeyRequestBatch verifies every submission independently and
// aggregates every failure into a single error, so an auditor sweeping a
// block of derive submissions learns about all bad proofs in one pass
// rather than stopping at the first one.
func (m *Member) VerifyKeyRequestBatch(submissions []KeyRequestSubmission) error {
	var result *multierror.Error
	for i, s := range submissions {
		if _, err := m.VerifyKeyRequest(s.Witness, s.Proof); err != nil {
			result = multierror.Append(result, fmt.Errorf("submission %d: %w", i, err))
		}
	}
	return result.ErrorOrNil()
}

// GenInProof proves an issuer's key is a CA-trusted member.
func (m *Member) GenInProof(issuerKeyY *big.Int) (*merkle.InProof, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.caTree.GenInProof(issuerKeyY)
}

// GenNotInProof proves a credential's master key has not been revoked.
func (m *Member) GenNotInProof(masterKeyY *big.Int) (*merkle.NotInProof, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.blockTree.GenNotInProof(masterKeyY)
}

// UpdateRootsHash computes the pair of roots-hashes a committee member
// republishes on chain after any tree mutation:
//
//	rh1 = Poseidon(blockRoot0, caRoot, Y.y)
//	rh2 = Poseidon(blockRoot1, caRoot, Y.y)
func (m *Member) UpdateRootsHash() (rh1, rh2 *big.Int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	root0, root1 := m.blockTree.Roots()
	return witness.RootsHash(root0, m.caTree.Root(), m.tpkePub.Y),
		witness.RootsHash(root1, m.caTree.Root(), m.tpkePub.Y)
}

// RevokeCredential inserts each master key's y-coordinate into the dual
// block tree, then records the resulting roots against the given on-chain
// version so later audits can recover the roots active at that point in
// time. Local tree mutation happens before any roots are republished on
// chain, per this engine's revocation ordering — a caller whose chain
// publication subsequently fails is responsible for deciding whether to
// roll the local tree back (see package chain).
func (m *Member) RevokeCredential(version uint64, masterKeys []*big.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blockTree.InsertNodes(masterKeys)
	root0, root1 := m.blockTree.Roots()
	m.epochs = append(m.epochs, epoch{Version: version, BlockRoot0: root0, BlockRoot1: root1})
	m.log.Info("revoked credentials", "version", version, "count", len(masterKeys))
}

// RevokeAddresses is RevokeCredential for callers holding on-chain account
// addresses rather than master-key y-coordinates directly, mirroring the
// ABI's `revoke(address[])` and `UserMarked(address)` shapes.
func (m *Member) RevokeAddresses(version uint64, addrs []common.Address) {
	masterKeys := make([]*big.Int, len(addrs))
	for i, a := range addrs {
		masterKeys[i] = curve.AddressToField(a)
	}
	m.RevokeCredential(version, masterKeys)
}

// RootsAtVersion returns the dual block roots active at a given
// previously-recorded revocation version, for audits that need to verify
// a proof against historical roots rather than the current tip.
func (m *Member) RootsAtVersion(version uint64) (root0, root1 *big.Int, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := len(m.epochs) - 1; i >= 0; i-- {
		if m.epochs[i].Version == version {
			return m.epochs[i].BlockRoot0, m.epochs[i].BlockRoot1, true
		}
	}
	return nil, nil, false
}

// smallState is a committee member's persisted state, excluding proving
// keys: the threshold shard, combined public key, tree depths, and both
// trees' full leaf sets (sufficient to rebuild every tier on load via
// InsertNodes/RestoreDualTree without re-hashing from scratch twice).
type smallState struct {
	TpkeSecret  *big.Int
	TpkePub     *curve.Point
	CADepth     int
	BlockDepth  int
	CALeaves    []*big.Int
	BlockLeaves0 []*big.Int
	BlockLeaves1 []*big.Int
	Epochs      []epoch
}

// Save writes the member's small state to <dir>/committee.dat, followed by
// its four proving-key pairs in the fixed order tpke_single,
// pseudonym_check, sybil_check, pedersen_commit.
func (m *Member) Save(dir string) error {
	m.mu.RLock()
	leaves0, leaves1 := m.blockTree.Leaves()
	state := smallState{
		TpkeSecret:   m.tpkeSecret,
		TpkePub:      m.tpkePub,
		CADepth:      m.caDepth,
		BlockDepth:   m.blockDepth,
		CALeaves:     m.caTree.Leaves(),
		BlockLeaves0: leaves0,
		BlockLeaves1: leaves1,
		Epochs:       m.epochs,
	}
	m.mu.RUnlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		return err
	}

	paths := store.Paths{Dir: dir, Name: "committee"}
	if err := store.SaveSmallState(paths.SmallStatePath(), buf.Bytes()); err != nil {
		return err
	}

	if err := store.SaveProvingKey(paths, 0, m.params.TpkeSingle.ProvingKey); err != nil {
		return err
	}
	if err := store.SaveProvingKey(paths, 1, m.params.PseudonymCheck.ProvingKey); err != nil {
		return err
	}
	if err := store.SaveProvingKey(paths, 2, m.params.SybilCheck.ProvingKey); err != nil {
		return err
	}
	if err := store.SaveProvingKey(paths, 3, m.params.PedersenCommit.ProvingKey); err != nil {
		return err
	}

	store.LogSave("committee", 4)
	return nil
}

// Load reconstructs a Member from <dir>/committee.dat and its four
// proving-key files, loaded in the same fixed order Save wrote them.
func Load(dir string, prover prove.Prover, params *Params) (*Member, error) {
	paths := store.Paths{Dir: dir, Name: "committee"}
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

	return &Member{
		prover:     prover,
		params:     params,
		log:        log.NewTestLogger(log.InfoLevel),
		tpkeSecret: state.TpkeSecret,
		tpkePub:    state.TpkePub,
		caDepth:    state.CADepth,
		blockDepth: state.BlockDepth,
		caTree:     rebuildTree(state.CADepth, state.CALeaves),
		blockTree:  merkle.RestoreDualTree(state.BlockDepth, state.BlockLeaves0, state.BlockLeaves1),
		epochs:     state.Epochs,
	}, nil
}

func rebuildTree(depth int, leaves []*big.Int) *merkle.Tree {
	t := merkle.New(depth)
	t.InsertNodes(leaves)
	return t
}

// TracePseudonyms enumerates every pseudonym derivable from a candidate
// trapdoor beta across derive indices [0, n), returning each candidate's
// y-coordinate for the caller to intersect against on-chain
// UserRegister/UserMarked event topics (package chain).
func TracePseudonyms(beta *big.Int, n uint64) []*big.Int {
	out := make([]*big.Int, n)
	for id := uint64(0); id < n; id++ {
		sn := curve.Hash(beta, new(big.Int).SetUint64(id))
		p := curve.ScalarMul(sn, curve.G)
		out[id] = p.Y
	}
	return out
}
