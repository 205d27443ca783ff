// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package witness

import (
	"math/big"

	"github.com/luxfi/identity/curve"
	"github.com/luxfi/identity/merkle"
)

// TpkeSingle is the witness for the tpke_single circuit, generated by a user
// at credential request time. Public inputs are, in order: C1y, C2y, By, PKy,
// Yx, Yy — the last pair pins the committee's threshold public key the
// ciphertext is encrypted under, closing the gap a prover would otherwise
// have to submit any c2 unrelated to a real threshold key.
// Private witness proves knowledge of (k, beta, masterKey) consistent with
// c1 = k*G, c2 = k*Y + beta*G, B = beta*G.
type TpkeSingle struct {
	// Public, in circuit order.
	C1Y, C2Y, BY, PKY *big.Int
	YX, YY            *big.Int

	// Private.
	K, Beta, MasterX *big.Int
	MasterPoint      *curve.Point
}

// NewTpkeSingle assembles the tpke_single witness from a standard Cipher c,
// the encrypted trapdoor point, the requesting user's master public key
// point PK = master*G (the "master public" M in spec terms, named PK here to
// match this circuit's own input name), and the committee's threshold
// public key Y the cipher was encrypted under. It does not set MasterX;
// the caller, which holds the master secret, fills that field in.
func NewTpkeSingle(k, beta *big.Int, betaPoint *curve.Point, c1, c2, pk, y *curve.Point) *TpkeSingle {
	return &TpkeSingle{
		C1Y: c1.Y, C2Y: c2.Y, BY: betaPoint.Y, PKY: pk.Y,
		YX: y.X, YY: y.Y,
		K: k, Beta: beta, MasterPoint: pk,
	}
}

// PseudonymCheck is the witness for the pseudonym_check circuit (also known
// by the legacy name "derive"), generated by a user at pseudonym
// registration time. Public inputs, in order: addr, C1y, C2y, C3y, Aiy, dd, rh.
type PseudonymCheck struct {
	// Public, in circuit order.
	Addr             *big.Int
	C1Y, C2Y, C3Y    *big.Int
	AiY              *big.Int
	DD               *big.Int
	RH               *big.Int

	// Private.
	CARoot, BlockRoot *big.Int
	Y                 *curve.Point // threshold public key
	C1, C2, C3        *curve.Point
	Ai                *curve.Point
	CAKey             *curve.Point
	Sig               *curve.Signature
	SN                *big.Int // k, reused as series number
	MasterX           *big.Int
	Expiration        *big.Int
	N                 uint64 // committee-advertised address count cap, folded into dd
	Beta              *big.Int
	AttrCommit        *curve.Point
	DeriveIndex       uint64
	Opener            *big.Int // r, such that Ai = A + r*G
	CAProof           *merkle.InProof
	RevocationProof   *merkle.NotInProof
}

// NewPseudonymCheck assembles a PseudonymCheck witness, computing dd and rh
// from the supplied points and roots per spec §4.4(2).
func NewPseudonymCheck(
	addr *big.Int,
	c1, c2, c3, ai, y *curve.Point,
	ei, n uint64,
	caRoot *big.Int,
	caProof *merkle.InProof,
	revocationProof *merkle.NotInProof,
	sn, masterX, expiration, beta *big.Int,
	attrCommit *curve.Point,
	deriveIndex uint64,
	opener *big.Int,
	caKey *curve.Point,
	sig *curve.Signature,
) *PseudonymCheck {
	dd := PackDD(c1, c2, c3, ai, y, ei, n)
	rh := RootsHash(revocationProof.Root, caRoot, y.Y)
	return &PseudonymCheck{
		Addr: addr,
		C1Y:  c1.Y, C2Y: c2.Y, C3Y: c3.Y, AiY: ai.Y,
		DD: dd, RH: rh,
		CARoot: caRoot, BlockRoot: revocationProof.Root,
		Y: y, C1: c1, C2: c2, C3: c3, Ai: ai,
		CAKey: caKey, Sig: sig,
		SN: sn, MasterX: masterX, Expiration: expiration, N: n, Beta: beta,
		AttrCommit: attrCommit, DeriveIndex: deriveIndex, Opener: opener,
		CAProof: caProof, RevocationProof: revocationProof,
	}
}

// SybilCheck is the witness for the sybil_check circuit (also known by the
// legacy name "appkey"). Public inputs, in order: key, ss, Yy, C2y. The
// private witness additionally carries Y's x-coordinate and the series
// number sn the referenced pseudonym was derived with, so the circuit can
// recompute c2 = sn*Y + masterX*G itself rather than trusting the claimed
// C2y at face value.
type SybilCheck struct {
	// Public, in circuit order.
	Key *big.Int
	SS  *big.Int
	YY  *big.Int
	C2Y *big.Int

	// Private.
	MasterX *big.Int
	AppID   *big.Int
	YX      *big.Int
	SN      *big.Int
}

// NewSybilCheck assembles a SybilCheck witness: key = Poseidon(masterX, appid),
// ss packed per spec §4.4(3). sn is the series number used to derive the
// pseudonym whose c2 component is being reused here.
func NewSybilCheck(masterX, appid *big.Int, y, c2 *curve.Point, sn *big.Int) *SybilCheck {
	key := curve.Hash(masterX, appid)
	ss := PackSS(appid, y, c2)
	return &SybilCheck{
		Key: key, SS: ss, YY: y.Y, C2Y: c2.Y,
		MasterX: masterX, AppID: appid, YX: y.X, SN: sn,
	}
}

// PedersenCommit is the witness for the pedersen_commit circuit, used for
// selective attribute disclosure. Public inputs, in order: Ax, Ay, lrcm,
// followed by the issuer's eight attribute generators (Gx[i], Gy[i]) —
// these must be public so the circuit can tie A to a specific issuer's
// generator set instead of letting a prover invent its own.
type PedersenCommit struct {
	// Public, in circuit order.
	AX, AY *big.Int
	LRCM   *big.Int
	GenX   [8]*big.Int
	GenY   [8]*big.Int

	// Private.
	Attributes [8]*big.Int
	Opener     *big.Int
	Lower      [8]*big.Int
	Upper      [8]*big.Int
}

// NewPedersenCommit assembles a PedersenCommit witness, computing lrcm from
// the bound pair per spec §4.4(4), over the issuer's generator set returned
// by curve.DeriveGenerators. The public A is the blinded commitment
// attrCommit + opener*G, the value the circuit recomputes.
func NewPedersenCommit(attrCommit *curve.Point, generators []*curve.Point, attributes [8]*big.Int, opener *big.Int, lower, upper [8]*big.Int) *PedersenCommit {
	var genX, genY [8]*big.Int
	for i := 0; i < 8; i++ {
		genX[i] = generators[i].X
		genY[i] = generators[i].Y
	}
	blinded := curve.BlindCommitment(attrCommit, opener)
	return &PedersenCommit{
		AX: blinded.X, AY: blinded.Y,
		LRCM: LRCM(lower, upper),
		GenX: genX, GenY: genY,
		Attributes: attributes, Opener: opener,
		Lower: lower, Upper: upper,
	}
}
