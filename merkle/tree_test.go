// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package merkle

import (
	"math/big"
	"testing"
)

func bigInts(vs ...int64) []*big.Int {
	out := make([]*big.Int, len(vs))
	for i, v := range vs {
		out[i] = big.NewInt(v)
	}
	return out
}

func TestTreeInProofRoundTrip(t *testing.T) {
	tr := New(64)
	leaves := bigInts(1, 3, 5, 7, 9, 11, 13, 15, 17, 19)
	tr.InsertNodes(leaves)

	for _, v := range leaves {
		proof, err := tr.GenInProof(v)
		if err != nil {
			t.Fatalf("GenInProof(%v): %v", v, err)
		}
		ok, err := proof.Verify(tr.Root())
		if err != nil {
			t.Fatalf("Verify(%v): %v", v, err)
		}
		if !ok {
			t.Fatalf("proof for %v did not verify against root", v)
		}
	}
}

func TestTreeGenInProofMissing(t *testing.T) {
	tr := New(64)
	tr.InsertNodes(bigInts(1, 3, 5))
	if _, err := tr.GenInProof(big.NewInt(4)); err != ErrNodeNotFound {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestTreeRootStableAfterMultipleInserts(t *testing.T) {
	a := New(32)
	a.InsertNodes(bigInts(1, 2, 3, 4))

	b := New(32)
	b.InsertNodes(bigInts(1, 2))
	b.InsertNodes(bigInts(3, 4))

	if a.Root().Cmp(b.Root()) != 0 {
		t.Fatalf("expected identical roots regardless of insert batching, got %v vs %v", a.Root(), b.Root())
	}
}
