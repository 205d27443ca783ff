// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package circuits

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	gmimc "github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	nativeeddsa "github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	gadgeteddsa "github.com/consensys/gnark/std/signature/eddsa"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/identity/curve"
)

// feBytes renders x as the 32-byte canonical encoding a native MiMC/EdDSA
// call expects, moving a big.Int in and out of fr.Element via SetBigInt/Bytes.
func feBytes(x *big.Int) []byte {
	var e fr.Element
	e.SetBigInt(x)
	b := e.Bytes()
	return b[:]
}

func feFromBytes(b []byte) *big.Int {
	var e fr.Element
	e.SetBytes(b)
	out := e.Bytes()
	return new(big.Int).SetBytes(out[:])
}

// nativeMiMC reproduces the in-circuit mimc gadget's Write/Sum sequence
// outside the circuit, one fresh hasher per call, so test fixtures can be
// computed with the same hash family Define uses internally.
func nativeMiMC(xs ...*big.Int) *big.Int {
	h := gmimc.NewMiMC()
	for _, x := range xs {
		h.Write(feBytes(x))
	}
	return feFromBytes(h.Sum(nil))
}

func parity(x *big.Int) *big.Int {
	return big.NewInt(int64(x.Bit(0)))
}

// runRoundTrip compiles circuit, runs Groth16 setup, proves assignment, and
// verifies the resulting proof against the public fields of assignment —
// the same compile/setup/prove/verify sequence package prove's GnarkProver
// performs, exercised here directly against Define.
func runRoundTrip(t *testing.T, circuit, assignment frontend.Circuit) {
	t.Helper()
	field := ecc.BN254.ScalarField()
	ccs, err := frontend.Compile(field, r1cs.NewBuilder, circuit)
	require.NoError(t, err)

	pk, vk, err := groth16.Setup(ccs)
	require.NoError(t, err)

	fullWitness, err := frontend.NewWitness(assignment, field)
	require.NoError(t, err)

	proof, err := groth16.Prove(ccs, pk, fullWitness)
	require.NoError(t, err)

	publicWitness, err := fullWitness.Public()
	require.NoError(t, err)
	require.NoError(t, groth16.Verify(proof, vk, publicWitness))
}

func TestTpkeSingleCircuitRoundTrip(t *testing.T) {
	k := big.NewInt(7)
	beta := big.NewInt(11)
	masterX := big.NewInt(13)
	yScalar := big.NewInt(17)

	c1 := curve.ScalarMul(k, curve.G)
	betaG := curve.ScalarMul(beta, curve.G)
	masterG := curve.ScalarMul(masterX, curve.G)
	y := curve.ScalarMul(yScalar, curve.G)
	c2 := curve.Add(curve.ScalarMul(k, y), betaG)

	assignment := &TpkeSingleCircuit{
		C1Y: c1.Y, C2Y: c2.Y, BY: betaG.Y, PKY: masterG.Y, YX: y.X, YY: y.Y,
		K: k, Beta: beta, MasterX: masterX,
	}
	runRoundTrip(t, &TpkeSingleCircuit{}, assignment)
}

func TestSybilCheckCircuitRoundTrip(t *testing.T) {
	masterX := big.NewInt(23)
	appid := big.NewInt(1000003)
	sn := big.NewInt(29)
	yScalar := big.NewInt(31)

	y := curve.ScalarMul(yScalar, curve.G)
	masterG := curve.ScalarMul(masterX, curve.G)
	c2 := curve.Add(curve.ScalarMul(sn, y), masterG)

	key := nativeMiMC(masterX, appid)

	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 160), big.NewInt(1))
	appidLow := new(big.Int).And(appid, mask)
	ss := new(big.Int).Set(appidLow)
	ss.Add(ss, new(big.Int).Lsh(parity(y.X), 160))
	ss.Add(ss, new(big.Int).Lsh(parity(c2.X), 161))

	assignment := &SybilCheckCircuit{
		Key: key, SS: ss, YY: y.Y, C2Y: c2.Y,
		MasterX: masterX, AppID: appid, YX: y.X, SN: sn,
	}
	runRoundTrip(t, &SybilCheckCircuit{}, assignment)
}

func TestPedersenCommitCircuitRoundTrip(t *testing.T) {
	var gens [8]*curve.Point
	var attrs, lower, upper [8]*big.Int
	for i := 0; i < 8; i++ {
		gens[i] = curve.ScalarMul(big.NewInt(int64(100+i)), curve.G)
		attrs[i] = big.NewInt(int64(i + 1))
		lower[i] = big.NewInt(0)
		upper[i] = big.NewInt(1000)
	}
	opener := big.NewInt(999)

	acc := curve.Identity()
	for i := 0; i < 8; i++ {
		acc = curve.Add(acc, curve.ScalarMul(attrs[i], gens[i]))
	}
	acc = curve.Add(acc, curve.ScalarMul(opener, curve.G))

	lHead := nativeMiMC(lower[0], lower[1], lower[2], lower[3], lower[4], lower[5])
	rHead := nativeMiMC(upper[0], upper[1], upper[2], upper[3], upper[4], upper[5])
	lrcm := nativeMiMC(lower[6], lower[7], upper[6], upper[7], lHead, rHead)

	var genX, genY, a, l, u [8]frontend.Variable
	for i := 0; i < 8; i++ {
		genX[i] = gens[i].X
		genY[i] = gens[i].Y
		a[i] = attrs[i]
		l[i] = lower[i]
		u[i] = upper[i]
	}

	assignment := &PedersenCommitCircuit{
		AX: acc.X, AY: acc.Y, LRCM: lrcm, GenX: genX, GenY: genY,
		Attributes: a, Opener: opener, Lower: l, Upper: u,
	}
	runRoundTrip(t, &PedersenCommitCircuit{}, assignment)
}

func TestPseudonymCheckCircuitRoundTrip(t *testing.T) {
	beta := big.NewInt(41)
	deriveIndex := big.NewInt(0)
	masterX := big.NewInt(43)
	expiration := big.NewInt(1893456000)
	n := big.NewInt(256)
	opener := big.NewInt(47)
	addr := big.NewInt(53)
	yScalar := big.NewInt(59)

	sn := nativeMiMC(beta, deriveIndex)
	y := curve.ScalarMul(yScalar, curve.G)
	c1 := curve.ScalarMul(sn, curve.G)
	masterG := curve.ScalarMul(masterX, curve.G)
	ky := curve.ScalarMul(sn, y)
	c2 := curve.Add(ky, masterG)
	bindScalar := nativeMiMC(ky.X, ky.Y, addr)
	betaG := curve.ScalarMul(beta, curve.G)
	c3 := curve.Add(curve.ScalarMul(bindScalar, curve.G), betaG)

	attrCommit := curve.ScalarMul(big.NewInt(61), curve.G)
	ai := curve.Add(attrCommit, curve.ScalarMul(opener, curve.G))

	// Issuer signing key, native to gnark-crypto's BN254-embedded twisted
	// Edwards curve so the in-circuit eddsa.Verify gadget accepts it.
	issuerKey, err := nativeeddsa.GenerateKey(bytes.NewReader(make([]byte, 32)))
	require.NoError(t, err)
	issuerKeyY := feFromBytes(issuerKey.PublicKey.A.Y.Bytes())
	issuerKeyX := feFromBytes(issuerKey.PublicKey.A.X.Bytes())

	caSibling := big.NewInt(777)
	caRoot := nativeMiMC(issuerKeyY, caSibling)

	revSibling0 := new(big.Int).Sub(masterG.Y, big.NewInt(1000))
	revSibling1 := new(big.Int).Add(masterG.Y, big.NewInt(1000))
	revState := nativeMiMC(revSibling0, revSibling1)
	revSibling := big.NewInt(888)
	blockRoot := nativeMiMC(revState, revSibling)

	h1 := nativeMiMC(masterG.X, masterG.Y, betaG.X, betaG.Y)
	message := nativeMiMC(h1, attrCommit.X, attrCommit.Y, expiration)

	sigBytes, err := issuerKey.Sign(feBytes(message), gmimc.NewMiMC())
	require.NoError(t, err)
	var sig nativeeddsa.Signature
	_, err = sig.SetBytes(sigBytes)
	require.NoError(t, err)
	sigRX := feFromBytes(sig.R.X.Bytes())
	sigRY := feFromBytes(sig.R.Y.Bytes())
	sigS := new(big.Int).SetBytes(sig.S[:])

	dd := new(big.Int).Set(parity(c1.X))
	dd.Add(dd, new(big.Int).Lsh(parity(c2.X), 1))
	dd.Add(dd, new(big.Int).Lsh(parity(c3.X), 2))
	dd.Add(dd, new(big.Int).Lsh(parity(ai.X), 3))
	dd.Add(dd, new(big.Int).Lsh(parity(y.X), 4))
	dd.Add(dd, new(big.Int).Mul(expiration, big.NewInt(32)))
	dd.Add(dd, new(big.Int).Mul(n, new(big.Int).Lsh(big.NewInt(1), 69)))

	rh := nativeMiMC(blockRoot, caRoot, y.Y)

	assignment := &PseudonymCheckCircuit{
		Addr: addr, C1Y: c1.Y, C2Y: c2.Y, C3Y: c3.Y, AiY: ai.Y, DD: dd, RH: rh,
		YX: y.X, YY: y.Y,
		AttrCommitX: attrCommit.X, AttrCommitY: attrCommit.Y,
		Beta:        beta,
		DeriveIndex: deriveIndex,
		MasterX:     masterX,
		Expiration:  expiration,
		N:           n,
		Opener:      opener,
		CARoot:      caRoot,
		BlockRoot:   blockRoot,
		CAPathLen:   1,
		CAPath:      []frontend.Variable{caSibling},
		CAFlags:     []frontend.Variable{0},
		RevPathLen:  1,
		RevPath:     []frontend.Variable{revSibling},
		RevFlags:    []frontend.Variable{0},
		RevSibling0: revSibling0,
		RevSibling1: revSibling1,
		Sig: gadgeteddsa.Signature{
			R: twistededwards.Point{X: sigRX, Y: sigRY},
			S: sigS,
		},
		IssuerKey: gadgeteddsa.PublicKey{
			A: twistededwards.Point{X: issuerKeyX, Y: issuerKeyY},
		},
	}

	circuit := &PseudonymCheckCircuit{
		CAPathLen:  1,
		CAPath:     make([]frontend.Variable, 1),
		CAFlags:    make([]frontend.Variable, 1),
		RevPathLen: 1,
		RevPath:    make([]frontend.Variable, 1),
		RevFlags:   make([]frontend.Variable, 1),
	}

	runRoundTrip(t, circuit, assignment)
}
