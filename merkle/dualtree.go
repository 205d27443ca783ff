// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package merkle

import (
	"errors"
	"math/big"

	"github.com/luxfi/identity/curve"
)

// bnMax is the sentinel upper-bound leaf seeded into both trees so that a
// non-membership proof always has a straddling pair to walk, even for a
// value larger than anything inserted so far.
var bnMax = new(big.Int).Sub(curve.Q, big.NewInt(1))

// ErrValuePresent is returned by GenNotInProof when the requested value is
// already a member of the tree (a seeded sentinel, or a credential that has
// already been revoked).
var ErrValuePresent = errors.New("merkle: value already present")

// DualTree holds two same-depth trees seeded with opposite leaf parity, so
// that for any value not yet inserted, exactly one of the two trees has its
// straddling neighbor pair positioned at an (even, odd) index pair. That
// tree's InProof-shaped walk becomes the non-membership proof; the other
// tree is structurally unable to produce one for that value at that moment.
//
// tree0 is seeded with [0, bnMax]; tree1 is seeded with [0, 0, bnMax] — the
// duplicated zero shifts every later insertion's parity in tree1 by one
// position relative to tree0, which is what guarantees the "exactly one"
// property above for every possible insertion point.
type DualTree struct {
	tree0 *Tree
	tree1 *Tree
}

// NewDualTree builds a DualTree of the given depth with both trees seeded.
func NewDualTree(depth int) *DualTree {
	dt := &DualTree{tree0: New(depth), tree1: New(depth)}
	dt.tree0.InsertNodes([]*big.Int{big.NewInt(0), bnMax})
	dt.tree1.InsertNodes([]*big.Int{big.NewInt(0), big.NewInt(0), bnMax})
	return dt
}

// Roots returns (tree0.Root(), tree1.Root()).
func (dt *DualTree) Roots() (*big.Int, *big.Int) {
	return dt.tree0.Root(), dt.tree1.Root()
}

// Leaves returns the full leaf sets of both trees, seed values included,
// for persistence.
func (dt *DualTree) Leaves() (leaves0, leaves1 []*big.Int) {
	return dt.tree0.Leaves(), dt.tree1.Leaves()
}

// RestoreDualTree rebuilds a DualTree from previously persisted leaf sets
// (as returned by Leaves), which already include the sentinel seed values
// NewDualTree would otherwise insert.
func RestoreDualTree(depth int, leaves0, leaves1 []*big.Int) *DualTree {
	dt := &DualTree{tree0: New(depth), tree1: New(depth)}
	dt.tree0.InsertNodes(leaves0)
	dt.tree1.InsertNodes(leaves1)
	return dt
}

// InsertNodes revokes a batch of values: they are inserted into both
// trees, keeping the straddling-pair invariant intact for every future
// non-membership query.
func (dt *DualTree) InsertNodes(values []*big.Int) {
	dt.tree0.InsertNodes(values)
	dt.tree1.InsertNodes(values)
}

// NotInProof proves a value lies strictly between two adjacent leaves of
// whichever tree produced it, and that the straddling pair itself is
// included in a tree whose root matches Root.
type NotInProof struct {
	Value    *big.Int
	Siblings [2]*big.Int
	Path     []*big.Int
	Flags    []uint8
	Root     *big.Int
}

// Verify checks the straddling bound (siblings[0] < value < siblings[1])
// and folds the remaining path through Poseidon, accepting if the result
// matches either of the two dual roots — exactly one will, depending on
// which tree the proof was generated against.
func (p *NotInProof) Verify(root0, root1 *big.Int) (bool, error) {
	if len(p.Path) != len(p.Flags) {
		return false, ErrProofDepthMismatch
	}
	if p.Siblings[0].Cmp(p.Value) >= 0 || p.Value.Cmp(p.Siblings[1]) >= 0 {
		return false, nil
	}
	state := curve.HashPair(p.Siblings[0], p.Siblings[1])
	for i, sibling := range p.Path {
		if p.Flags[i] == 0 {
			state = curve.HashPair(state, sibling)
		} else {
			state = curve.HashPair(sibling, state)
		}
	}
	return state.Cmp(root0) == 0 || state.Cmp(root1) == 0, nil
}

// GenNotInProof builds a non-membership proof for value. Returns
// ErrValuePresent if value is already a member of tree0 (the canonical
// membership tree; both trees hold the same leaf set by construction).
func (dt *DualTree) GenNotInProof(value *big.Int) (*NotInProof, error) {
	leaves := dt.tree0.nodes[0]
	idx := searchLeaves(leaves, value)
	if idx < len(leaves) && leaves[idx].Cmp(value) == 0 {
		return nil, ErrValuePresent
	}
	// idx is the insertion point: leaves[idx-1] < value < leaves[idx].
	var tree *Tree
	if idx%2 == 1 {
		tree = dt.tree0
	} else {
		tree = dt.tree1
	}
	// re-locate the same straddling gap in the chosen tree, whose leaf set
	// may be offset by the duplicated zero seed.
	tLeaves := tree.nodes[0]
	tIdx := searchLeaves(tLeaves, value)
	raw := tree.genInProofRaw(tIdx)
	return &NotInProof{
		Value:    value,
		Siblings: [2]*big.Int{raw.Path[0], raw.Value},
		Path:     raw.Path[1:],
		Flags:    raw.Flags[1:],
		Root:     tree.Root(),
	}, nil
}

func searchLeaves(leaves []*big.Int, value *big.Int) int {
	lo, hi := 0, len(leaves)
	for lo < hi {
		mid := (lo + hi) / 2
		if leaves[mid].Cmp(value) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
