// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package circuits defines the gnark frontend.Circuit implementations for
// the five arithmetic circuits the identity engine proves against. These
// are the concrete R1CS the black-box prover in package prove compiles,
// sets up, and proves/verifies against; nothing outside this package
// inspects a circuit's constraints directly.
//
// Poseidon is the engine's hash function everywhere outside a circuit (see
// package curve). Inside a circuit we use MiMC instead, the same
// swapped-in-for-compatibility choice the reference gnark circuit uses —
// gnark's in-circuit Poseidon gadget support is thinner than its MiMC
// support, and the witness assemblers in package witness are the only
// pieces of this engine that need the two to agree, which they do not: the
// circuit's internal hash is an implementation detail of the black-box
// prover, not part of the public-input ABI fixed in package witness.
//
// Every point a circuit treats as an opaque witness value (a threshold
// public key, an attribute commitment, a generator) is asserted on-curve
// before use, and every declared input is wired into a real constraint —
// an input a circuit never reads is exactly the kind of gap that lets a
// prover submit an arbitrary value for it and still pass verification.
package circuits

import (
	"math/big"

	tedwards "github.com/consensys/gnark-crypto/ecc/twistededwards"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"
	"github.com/consensys/gnark/std/hash/mimc"
	"github.com/consensys/gnark/std/signature/eddsa"
)

func newEdCurve(api frontend.API) (twistededwards.Curve, twistededwards.Point, error) {
	cv, err := twistededwards.NewEdCurve(api, tedwards.BN254)
	if err != nil {
		return cv, twistededwards.Point{}, err
	}
	b8 := cv.Params().Base
	return cv, twistededwards.Point{X: b8[0], Y: b8[1]}, nil
}

func parityBit(api frontend.API, x frontend.Variable) frontend.Variable {
	return api.ToBinary(x, 254)[0]
}

// TpkeSingleCircuit proves knowledge of (k, beta, masterKey) consistent with
// c1 = k*G, c2 = k*Y + beta*G, B = beta*G, binding c2 to the committee's
// threshold public key Y rather than leaving it an unconstrained public
// value. Public inputs match witness.TpkeSingle's field order: C1y, C2y, By,
// PKy, Yx, Yy.
type TpkeSingleCircuit struct {
	C1Y frontend.Variable `gnark:",public"`
	C2Y frontend.Variable `gnark:",public"`
	BY  frontend.Variable `gnark:",public"`
	PKY frontend.Variable `gnark:",public"`
	YX  frontend.Variable `gnark:",public"`
	YY  frontend.Variable `gnark:",public"`

	K       frontend.Variable
	Beta    frontend.Variable
	MasterX frontend.Variable
}

func (c *TpkeSingleCircuit) Define(api frontend.API) error {
	cv, g, err := newEdCurve(api)
	if err != nil {
		return err
	}

	kG := cv.ScalarMul(g, c.K)
	api.AssertIsEqual(kG.Y, c.C1Y)

	betaG := cv.ScalarMul(g, c.Beta)
	api.AssertIsEqual(betaG.Y, c.BY)

	masterG := cv.ScalarMul(g, c.MasterX)
	api.AssertIsEqual(masterG.Y, c.PKY)

	y := twistededwards.Point{X: c.YX, Y: c.YY}
	cv.AssertIsOnCurve(y)
	kY := cv.ScalarMul(y, c.K)
	c2 := cv.Add(kY, betaG)
	api.AssertIsEqual(c2.Y, c.C2Y)

	return nil
}

// PseudonymCheckCircuit (legacy name "derive") proves a pseudonym
// registration is well-formed: the series number sn derives c1/c2/c3
// against the committee's threshold key, the attribute-commitment opener
// Ai is consistent, the issuer's key is a CA-tree member, the master key is
// absent from the revocation tree, the issuer's signature over the
// credential validates, and the dense public fields dd/rh reproduce the
// same private state. Public inputs match witness.PseudonymCheck: Addr,
// C1Y, C2Y, C3Y, AiY, DD, RH.
type PseudonymCheckCircuit struct {
	Addr frontend.Variable `gnark:",public"`
	C1Y  frontend.Variable `gnark:",public"`
	C2Y  frontend.Variable `gnark:",public"`
	C3Y  frontend.Variable `gnark:",public"`
	AiY  frontend.Variable `gnark:",public"`
	DD   frontend.Variable `gnark:",public"`
	RH   frontend.Variable `gnark:",public"`

	YX, YY                   frontend.Variable
	AttrCommitX, AttrCommitY frontend.Variable

	Beta        frontend.Variable
	DeriveIndex frontend.Variable
	MasterX     frontend.Variable
	Expiration  frontend.Variable
	N           frontend.Variable
	Opener      frontend.Variable

	CARoot    frontend.Variable
	BlockRoot frontend.Variable

	CAPathLen int
	CAPath    []frontend.Variable
	CAFlags   []frontend.Variable

	RevPathLen  int
	RevPath     []frontend.Variable
	RevFlags    []frontend.Variable
	RevSibling0 frontend.Variable
	RevSibling1 frontend.Variable

	Sig       eddsa.Signature
	IssuerKey eddsa.PublicKey
}

func (c *PseudonymCheckCircuit) Define(api frontend.API) error {
	cv, g, err := newEdCurve(api)
	if err != nil {
		return err
	}

	snHasher, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	snHasher.Write(c.Beta, c.DeriveIndex)
	sn := snHasher.Sum()

	c1 := cv.ScalarMul(g, sn)
	api.AssertIsEqual(c1.Y, c.C1Y)

	y := twistededwards.Point{X: c.YX, Y: c.YY}
	cv.AssertIsOnCurve(y)

	masterG := cv.ScalarMul(g, c.MasterX)
	ky := cv.ScalarMul(y, sn)
	c2 := cv.Add(ky, masterG)
	api.AssertIsEqual(c2.Y, c.C2Y)

	bindHasher, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	bindHasher.Write(ky.X, ky.Y, c.Addr)
	bindScalar := bindHasher.Sum()

	betaG := cv.ScalarMul(g, c.Beta)
	c3 := cv.Add(cv.ScalarMul(g, bindScalar), betaG)
	api.AssertIsEqual(c3.Y, c.C3Y)

	attrCommit := twistededwards.Point{X: c.AttrCommitX, Y: c.AttrCommitY}
	cv.AssertIsOnCurve(attrCommit)
	ai := cv.Add(attrCommit, cv.ScalarMul(g, c.Opener))
	api.AssertIsEqual(ai.Y, c.AiY)

	// CA membership: fold the issuer key's y-coordinate — the same value
	// committee.Member.AddTrustedIssuer inserts as a leaf — through the
	// proof path and compare against the private CA root.
	state := frontend.Variable(c.IssuerKey.A.Y)
	for i := 0; i < c.CAPathLen; i++ {
		h, err := mimc.NewMiMC(api)
		if err != nil {
			return err
		}
		left := api.Select(c.CAFlags[i], c.CAPath[i], state)
		right := api.Select(c.CAFlags[i], state, c.CAPath[i])
		h.Write(left, right)
		state = h.Sum()
	}
	api.AssertIsEqual(state, c.CARoot)

	// Revocation non-membership: the master key's y-coordinate must lie
	// strictly between the straddling sibling pair seeded into the block
	// tree, whose fold must reach the private block root.
	api.AssertIsLessOrEqual(api.Add(c.RevSibling0, 1), masterG.Y)
	api.AssertIsLessOrEqual(api.Add(masterG.Y, 1), c.RevSibling1)

	revHasher, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	revHasher.Write(c.RevSibling0, c.RevSibling1)
	revState := revHasher.Sum()
	for i := 0; i < c.RevPathLen; i++ {
		h, err := mimc.NewMiMC(api)
		if err != nil {
			return err
		}
		left := api.Select(c.RevFlags[i], c.RevPath[i], revState)
		right := api.Select(c.RevFlags[i], revState, c.RevPath[i])
		h.Write(left, right)
		revState = h.Sum()
	}
	api.AssertIsEqual(revState, c.BlockRoot)

	// Credential signature: off-circuit this is an issuer's EdDSA signature
	// over a Poseidon-compressed (master, beta, attrCommit, expiration)
	// tuple; in-circuit the compression uses MiMC, the same hash-family
	// substitution every circuit in this package makes.
	msgHasher, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	msgHasher.Write(masterG.X, masterG.Y, betaG.X, betaG.Y)
	h1 := msgHasher.Sum()
	msgHasher.Reset()
	msgHasher.Write(h1, attrCommit.X, attrCommit.Y, c.Expiration)
	message := msgHasher.Sum()

	eddsaHasher, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	if err := eddsa.Verify(cv, c.Sig, message, c.IssuerKey, &eddsaHasher); err != nil {
		return err
	}

	// dd/rh: recompute the dense public fields from the same private state
	// that produced c1/c2/c3/ai/y and the roots above.
	dd := parityBit(api, c1.X)
	dd = api.Add(dd, api.Mul(parityBit(api, c2.X), 2))
	dd = api.Add(dd, api.Mul(parityBit(api, c3.X), 4))
	dd = api.Add(dd, api.Mul(parityBit(api, ai.X), 8))
	dd = api.Add(dd, api.Mul(parityBit(api, y.X), 16))
	dd = api.Add(dd, api.Mul(c.Expiration, big.NewInt(32)))
	dd = api.Add(dd, api.Mul(c.N, new(big.Int).Lsh(big.NewInt(1), 69)))
	api.AssertIsEqual(dd, c.DD)

	rhHasher, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	rhHasher.Write(c.BlockRoot, c.CARoot, c.YY)
	api.AssertIsEqual(rhHasher.Sum(), c.RH)

	return nil
}

// SybilCheckCircuit (legacy name "appkey") proves key = Poseidon(masterX,
// appid) and that masterX is the same secret whose encrypted image lies in
// c2, by recomputing c2 = sn*Y + masterX*G from the private series number
// and threshold key. Public inputs match witness.SybilCheck: Key, SS, Yy,
// C2y.
type SybilCheckCircuit struct {
	Key frontend.Variable `gnark:",public"`
	SS  frontend.Variable `gnark:",public"`
	YY  frontend.Variable `gnark:",public"`
	C2Y frontend.Variable `gnark:",public"`

	MasterX frontend.Variable
	AppID   frontend.Variable
	YX      frontend.Variable
	SN      frontend.Variable
}

func (c *SybilCheckCircuit) Define(api frontend.API) error {
	hasher, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	hasher.Write(c.MasterX, c.AppID)
	api.AssertIsEqual(hasher.Sum(), c.Key)

	cv, g, err := newEdCurve(api)
	if err != nil {
		return err
	}

	y := twistededwards.Point{X: c.YX, Y: c.YY}
	cv.AssertIsOnCurve(y)

	masterG := cv.ScalarMul(g, c.MasterX)
	ky := cv.ScalarMul(y, c.SN)
	c2 := cv.Add(ky, masterG)
	api.AssertIsEqual(c2.Y, c.C2Y)

	bits := api.ToBinary(c.AppID, 254)
	appidLow := api.FromBinary(bits[:160]...)

	ss := api.Add(appidLow, api.Mul(parityBit(api, y.X), new(big.Int).Lsh(big.NewInt(1), 160)))
	ss = api.Add(ss, api.Mul(parityBit(api, c2.X), new(big.Int).Lsh(big.NewInt(1), 161)))
	api.AssertIsEqual(ss, c.SS)

	return nil
}

// PedersenCommitCircuit proves knowledge of eight attributes and an opener
// such that A = sum(ai*Gi) + r*G and l[i] <= ai <= r[i], against a specific
// issuer's generator set Gi rather than a prover-chosen one. Public inputs
// match witness.PedersenCommit: Ax, Ay, lrcm, Gx[0..7], Gy[0..7].
type PedersenCommitCircuit struct {
	AX   frontend.Variable    `gnark:",public"`
	AY   frontend.Variable    `gnark:",public"`
	LRCM frontend.Variable    `gnark:",public"`
	GenX [8]frontend.Variable `gnark:",public"`
	GenY [8]frontend.Variable `gnark:",public"`

	Attributes [8]frontend.Variable
	Opener     frontend.Variable
	Lower      [8]frontend.Variable
	Upper      [8]frontend.Variable
}

func (c *PedersenCommitCircuit) Define(api frontend.API) error {
	for i := 0; i < 8; i++ {
		api.AssertIsLessOrEqual(c.Lower[i], c.Attributes[i])
		api.AssertIsLessOrEqual(c.Attributes[i], c.Upper[i])
	}

	cv, g, err := newEdCurve(api)
	if err != nil {
		return err
	}

	acc := twistededwards.Point{X: 0, Y: 1}
	for i := 0; i < 8; i++ {
		gi := twistededwards.Point{X: c.GenX[i], Y: c.GenY[i]}
		cv.AssertIsOnCurve(gi)
		acc = cv.Add(acc, cv.ScalarMul(gi, c.Attributes[i]))
	}
	acc = cv.Add(acc, cv.ScalarMul(g, c.Opener))
	api.AssertIsEqual(acc.X, c.AX)
	api.AssertIsEqual(acc.Y, c.AY)

	hasher, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	for i := 0; i < 6; i++ {
		hasher.Write(c.Lower[i])
	}
	lHead := hasher.Sum()
	hasher.Reset()
	for i := 0; i < 6; i++ {
		hasher.Write(c.Upper[i])
	}
	rHead := hasher.Sum()
	hasher.Reset()

	hasher.Write(c.Lower[6], c.Lower[7], c.Upper[6], c.Upper[7], lHead, rHead)
	api.AssertIsEqual(hasher.Sum(), c.LRCM)
	return nil
}

// AppKeyCircuit is the legacy name for SybilCheckCircuit.
type AppKeyCircuit = SybilCheckCircuit

// DeriveCircuit is the legacy name for PseudonymCheckCircuit.
type DeriveCircuit = PseudonymCheckCircuit
