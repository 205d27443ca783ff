// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package witness

import (
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"
	"github.com/consensys/gnark/std/signature/eddsa"

	"github.com/luxfi/identity/circuits"
)

// Assignment converts a TpkeSingle witness into the full gnark circuit
// assignment (public and private fields) a Prover.Prove call needs.
func (w *TpkeSingle) Assignment() *circuits.TpkeSingleCircuit {
	return &circuits.TpkeSingleCircuit{
		C1Y: w.C1Y, C2Y: w.C2Y, BY: w.BY, PKY: w.PKY, YX: w.YX, YY: w.YY,
		K: w.K, Beta: w.Beta, MasterX: w.MasterX,
	}
}

// Assignment converts a SybilCheck witness into its full circuit assignment.
func (w *SybilCheck) Assignment() *circuits.SybilCheckCircuit {
	return &circuits.SybilCheckCircuit{
		Key: w.Key, SS: w.SS, YY: w.YY, C2Y: w.C2Y,
		MasterX: w.MasterX, AppID: w.AppID, YX: w.YX, SN: w.SN,
	}
}

// Assignment converts a PedersenCommit witness into its full circuit
// assignment.
func (w *PedersenCommit) Assignment() *circuits.PedersenCommitCircuit {
	var attrs, lower, upper, genX, genY [8]frontend.Variable
	for i := 0; i < 8; i++ {
		attrs[i] = w.Attributes[i]
		lower[i] = w.Lower[i]
		upper[i] = w.Upper[i]
		genX[i] = w.GenX[i]
		genY[i] = w.GenY[i]
	}
	return &circuits.PedersenCommitCircuit{
		AX: w.AX, AY: w.AY, LRCM: w.LRCM, GenX: genX, GenY: genY,
		Attributes: attrs, Opener: w.Opener, Lower: lower, Upper: upper,
	}
}

// Assignment converts a PseudonymCheck witness into its full circuit
// assignment, flattening the CA-membership and revocation Merkle proofs
// into the fixed-shape path/flag slices the circuit's folding loop expects.
func (w *PseudonymCheck) Assignment() *circuits.PseudonymCheckCircuit {
	caPath := make([]frontend.Variable, len(w.CAProof.Path))
	caFlags := make([]frontend.Variable, len(w.CAProof.Flags))
	for i, v := range w.CAProof.Path {
		caPath[i] = v
	}
	for i, f := range w.CAProof.Flags {
		caFlags[i] = big.NewInt(int64(f))
	}

	revPath := make([]frontend.Variable, len(w.RevocationProof.Path))
	revFlags := make([]frontend.Variable, len(w.RevocationProof.Flags))
	for i, v := range w.RevocationProof.Path {
		revPath[i] = v
	}
	for i, f := range w.RevocationProof.Flags {
		revFlags[i] = big.NewInt(int64(f))
	}

	sig := eddsa.Signature{}
	sig.R.X = w.Sig.R8.X
	sig.R.Y = w.Sig.R8.Y
	sig.S = w.Sig.S

	issuerKey := eddsa.PublicKey{A: twistededwards.Point{X: w.CAKey.X, Y: w.CAKey.Y}}

	return &circuits.PseudonymCheckCircuit{
		Addr: w.Addr, C1Y: w.C1Y, C2Y: w.C2Y, C3Y: w.C3Y, AiY: w.AiY, DD: w.DD, RH: w.RH,
		YX: w.Y.X, YY: w.Y.Y,
		AttrCommitX: w.AttrCommit.X, AttrCommitY: w.AttrCommit.Y,
		Beta:        w.Beta,
		DeriveIndex: new(big.Int).SetUint64(w.DeriveIndex),
		MasterX:     w.MasterX,
		Expiration:  w.Expiration,
		N:           new(big.Int).SetUint64(w.N),
		Opener:      w.Opener,
		CARoot:      w.CARoot,
		BlockRoot:   w.BlockRoot,
		CAPathLen:   len(caPath),
		CAPath:      caPath,
		CAFlags:     caFlags,
		RevPathLen:  len(revPath),
		RevPath:     revPath,
		RevFlags:    revFlags,
		RevSibling0: w.RevocationProof.Siblings[0],
		RevSibling1: w.RevocationProof.Siblings[1],
		Sig:         sig,
		IssuerKey:   issuerKey,
	}
}
