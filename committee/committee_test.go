// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package committee

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/luxfi/geth/common"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/identity/curve"
	"github.com/luxfi/identity/merkle"
	"github.com/luxfi/identity/prove"
	"github.com/luxfi/identity/witness"
)

type stubProver struct{ ok bool }

func (s stubProver) Setup(circuit frontend.Circuit) (*prove.Params, error) {
	return &prove.Params{}, nil
}
func (s stubProver) Prove(params *prove.Params, assignment frontend.Circuit) (*prove.Proof, error) {
	var p prove.Proof
	return &p, nil
}
func (s stubProver) Verify(vk groth16.VerifyingKey, publicWitness frontend.Circuit, proof *prove.Proof) (bool, error) {
	return s.ok, nil
}

// zeroPseudonymWitness builds a structurally well-formed PseudonymCheck
// witness with every nested pointer populated (but numerically trivial),
// so Assignment can flatten it without dereferencing a nil field. Used only
// against a stub prover that ignores witness contents entirely.
func zeroPseudonymWitness() *witness.PseudonymCheck {
	zero := curve.Identity()
	return &witness.PseudonymCheck{
		Addr: big.NewInt(0),
		C1Y:  big.NewInt(0), C2Y: big.NewInt(0), C3Y: big.NewInt(0),
		AiY: big.NewInt(0), DD: big.NewInt(0), RH: big.NewInt(0),
		CARoot: big.NewInt(0), BlockRoot: big.NewInt(0),
		Y: zero, C1: zero, C2: zero, C3: zero, Ai: zero,
		CAKey: zero,
		Sig:   &curve.Signature{R8: zero, S: big.NewInt(0)},
		SN:    big.NewInt(0), MasterX: big.NewInt(0), Expiration: big.NewInt(0),
		Beta:       big.NewInt(0),
		AttrCommit: zero,
		Opener:     big.NewInt(0),
		CAProof:    &merkle.InProof{},
		RevocationProof: &merkle.NotInProof{
			Siblings: [2]*big.Int{big.NewInt(0), big.NewInt(0)},
		},
	}
}

func newTestParams() *Params {
	return &Params{
		TpkeSingle:     &prove.Params{},
		PseudonymCheck: &prove.Params{},
		SybilCheck:     &prove.Params{},
		PedersenCommit: &prove.Params{},
	}
}

func TestTpkeShardAndDecryptShard(t *testing.T) {
	m, err := New(stubProver{ok: true}, newTestParams(), 4, 4)
	require.NoError(t, err)

	shard := m.TpkeShard()
	require.NotNil(t, shard)

	c1 := curve.ScalarMul(big.NewInt(5), curve.G)
	decShard := m.DecryptShard(c1)
	require.NotNil(t, decShard)
}

func TestCATreeMembership(t *testing.T) {
	m, err := New(stubProver{ok: true}, newTestParams(), 4, 4)
	require.NoError(t, err)

	issuerKey := curve.ScalarMul(big.NewInt(42), curve.G)
	m.AddTrustedIssuer(issuerKey)

	proof, err := m.GenInProof(issuerKey.Y)
	require.NoError(t, err)
	ok, err := proof.Verify(m.CARoot())
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRevokeCredentialRecordsEpoch(t *testing.T) {
	m, err := New(stubProver{ok: true}, newTestParams(), 4, 4)
	require.NoError(t, err)

	masterY := big.NewInt(123)
	m.RevokeCredential(1, []*big.Int{masterY})

	root0, root1, ok := m.RootsAtVersion(1)
	require.True(t, ok)
	wantRoot0, wantRoot1 := m.BlockRoots()
	require.Equal(t, 0, root0.Cmp(wantRoot0))
	require.Equal(t, 0, root1.Cmp(wantRoot1))

	_, err = m.GenNotInProof(big.NewInt(5))
	require.NoError(t, err)
}

func TestUpdateRootsHashMatchesWitnessFormula(t *testing.T) {
	m, err := New(stubProver{ok: true}, newTestParams(), 4, 4)
	require.NoError(t, err)
	m.UpdateTpkeKey(curve.ScalarMul(big.NewInt(9), curve.G))

	rh1, rh2 := m.UpdateRootsHash()
	root0, root1 := m.BlockRoots()
	require.Equal(t, 0, rh1.Cmp(witness.RootsHash(root0, m.CARoot(), m.tpkePub.Y)))
	require.Equal(t, 0, rh2.Cmp(witness.RootsHash(root1, m.CARoot(), m.tpkePub.Y)))
}

func TestVerifyKeyRequestRejectsOnProverFailure(t *testing.T) {
	m, err := New(stubProver{ok: false}, newTestParams(), 4, 4)
	require.NoError(t, err)

	w := zeroPseudonymWitness()
	ok, err := m.VerifyKeyRequest(w, &prove.Proof{})
	require.Error(t, err)
	require.False(t, ok)
}

func TestTracePseudonyms(t *testing.T) {
	beta := big.NewInt(999)
	out := TracePseudonyms(beta, 3)
	require.Len(t, out, 3)
	require.NotEqual(t, 0, out[0].Cmp(out[1]))
}

func TestVerifyKeyRequestBatchAggregatesFailures(t *testing.T) {
	m, err := New(stubProver{ok: false}, newTestParams(), 4, 4)
	require.NoError(t, err)

	submissions := []KeyRequestSubmission{
		{Witness: zeroPseudonymWitness(), Proof: &prove.Proof{}},
		{Witness: zeroPseudonymWitness(), Proof: &prove.Proof{}},
	}
	err = m.VerifyKeyRequestBatch(submissions)
	require.Error(t, err)
	require.Contains(t, err.Error(), "submission 0")
	require.Contains(t, err.Error(), "submission 1")
}

func TestRevokeAddressesMatchesRevokeCredential(t *testing.T) {
	m, err := New(stubProver{ok: true}, newTestParams(), 4, 4)
	require.NoError(t, err)

	addr := common.HexToAddress("0x00000000000000000000000000000000001234")
	m.RevokeAddresses(1, []common.Address{addr})

	root0, root1, ok := m.RootsAtVersion(1)
	require.True(t, ok)
	wantRoot0, wantRoot1 := m.BlockRoots()
	require.Equal(t, 0, root0.Cmp(wantRoot0))
	require.Equal(t, 0, root1.Cmp(wantRoot1))

	ref, err := New(stubProver{ok: true}, newTestParams(), 4, 4)
	require.NoError(t, err)
	ref.RevokeCredential(1, []*big.Int{curve.AddressToField(addr)})
	refRoot0, refRoot1 := ref.BlockRoots()
	require.Equal(t, 0, root0.Cmp(refRoot0))
	require.Equal(t, 0, root1.Cmp(refRoot1))
}
