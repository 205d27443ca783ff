// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package user

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/identity/curve"
	"github.com/luxfi/identity/issuer"
	"github.com/luxfi/identity/merkle"
	"github.com/luxfi/identity/prove"
)

type stubProver struct{}

func (stubProver) Setup(circuit frontend.Circuit) (*prove.Params, error) {
	return &prove.Params{}, nil
}
func (stubProver) Prove(params *prove.Params, assignment frontend.Circuit) (*prove.Proof, error) {
	var p prove.Proof
	return &p, nil
}
func (stubProver) Verify(vk groth16.VerifyingKey, publicWitness frontend.Circuit, proof *prove.Proof) (bool, error) {
	return true, nil
}

func newTestParams() *Params {
	return &Params{
		TpkeSingle:     &prove.Params{},
		PseudonymCheck: &prove.Params{},
		SybilCheck:     &prove.Params{},
		PedersenCommit: &prove.Params{},
	}
}

func TestRequestCredentialBuildsValidTpkeWitness(t *testing.T) {
	c, err := New(stubProver{}, newTestParams(), []*big.Int{big.NewInt(10), big.NewInt(20)})
	require.NoError(t, err)

	thresholdSecret := big.NewInt(77)
	thresholdPub := curve.ScalarMul(thresholdSecret, curve.G)

	req, err := c.RequestCredential(thresholdPub, 31536000)
	require.NoError(t, err)
	require.Equal(t, c.MasterPoint(), req.MasterPoint)
	require.Equal(t, req.Cipher.C1.Y, req.CipherWitness.C1Y)
}

func TestFillCredentialRejectsBadSignature(t *testing.T) {
	c, err := New(stubProver{}, newTestParams(), []*big.Int{big.NewInt(1)})
	require.NoError(t, err)

	issuerSk, err := curve.NewPrivateKey()
	require.NoError(t, err)

	badSig := curve.Sign(issuerSk, big.NewInt(0))
	cred := &issuer.Credential{
		Sig:         badSig,
		MasterPoint: c.MasterPoint(),
		BetaPoint:   c.MasterPoint(),
		AttrCommit:  c.MasterPoint(),
		Expiration:  1,
	}
	err = c.FillCredential(cred, curve.PublicKeyOf(issuerSk), nil)
	require.ErrorIs(t, err, ErrCredentialBadSig)
}

func TestDeriveIdentityRequiresCredential(t *testing.T) {
	c, err := New(stubProver{}, newTestParams(), []*big.Int{big.NewInt(1)})
	require.NoError(t, err)

	caTree := merkle.New(4)
	blockTree := merkle.NewDualTree(4)
	caProof, _ := caTree.GenInProof(big.NewInt(0))
	revProof, _ := blockTree.GenNotInProof(big.NewInt(5))

	_, _, err = c.DeriveIdentity(big.NewInt(1), curve.G, 0, 0, caTree.Root(), caProof, revProof, curve.G)
	require.ErrorIs(t, err, ErrNoCredential)
}

func TestDeriveIdentityProducesDistinctSeriesNumbers(t *testing.T) {
	c, err := New(stubProver{}, newTestParams(), []*big.Int{big.NewInt(1), big.NewInt(2)})
	require.NoError(t, err)

	issuerSk, err := curve.NewPrivateKey()
	require.NoError(t, err)

	master := c.MasterPoint()
	beta := c.betaPoint
	attrCommit := curve.ScalarMul(big.NewInt(55), curve.G)
	expiration := uint64(1893456000)
	msg := curve.CompressMessage(master, beta, attrCommit, new(big.Int).SetUint64(expiration))
	sig := curve.Sign(issuerSk, msg)

	cred := &issuer.Credential{
		Sig: sig, MasterPoint: master, BetaPoint: beta,
		AttrCommit: attrCommit, Expiration: expiration,
	}
	require.NoError(t, c.FillCredential(cred, curve.PublicKeyOf(issuerSk), nil))

	caTree := merkle.New(4)
	caTree.InsertNodes([]*big.Int{curve.PublicKeyOf(issuerSk).Y})
	caProof, err := caTree.GenInProof(curve.PublicKeyOf(issuerSk).Y)
	require.NoError(t, err)

	blockTree := merkle.NewDualTree(4)
	revProof, err := blockTree.GenNotInProof(big.NewInt(12345))
	require.NoError(t, err)

	thresholdPub := curve.ScalarMul(big.NewInt(88), curve.G)

	w1, _, err := c.DeriveIdentity(big.NewInt(1), thresholdPub, expiration, 10, caTree.Root(), caProof, revProof, curve.PublicKeyOf(issuerSk))
	require.NoError(t, err)
	w2, _, err := c.DeriveIdentity(big.NewInt(1), thresholdPub, expiration, 10, caTree.Root(), caProof, revProof, curve.PublicKeyOf(issuerSk))
	require.NoError(t, err)

	require.NotEqual(t, 0, w1.C1Y.Cmp(w2.C1Y))
}
