// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package merkle implements the sparse-set commitment trees the identity
// engine uses for two purposes: a membership tree of trusted issuer keys
// (the "CA tree"), and a dual non-membership tree of revoked credentials
// (the "block tree"). Both are rebuilt from a sorted leaf set on every
// insert rather than updated incrementally — the leaf sets involved
// (trusted issuers, revocations) change rarely enough that a full rebuild
// is simpler and cheap enough in practice.
package merkle

import (
	"errors"
	"math/big"
	"sort"

	"github.com/luxfi/identity/curve"
)

var (
	// ErrNodeNotFound is returned by GenInProof when the requested leaf was
	// never inserted.
	ErrNodeNotFound = errors.New("merkle: node not found in tree")
	// ErrProofDepthMismatch is returned by Verify when a proof's path and
	// flags slices disagree in length.
	ErrProofDepthMismatch = errors.New("merkle: path/flags length mismatch")
)

// Tree is a fixed-depth sparse Merkle tree over Poseidon(left, right)
// internal nodes. Leaves are big.Int field elements, kept sorted in
// nodes[0]; tiers above that are rebuilt bottom-up on every insert.
type Tree struct {
	depth      int
	length     int
	nodes      [][]*big.Int
	emptyNodes []*big.Int
}

// New returns an empty tree of the given depth (2^depth leaf capacity).
func New(depth int) *Tree {
	empty := make([]*big.Int, depth+1)
	empty[0] = big.NewInt(0)
	for i := 1; i <= depth; i++ {
		empty[i] = curve.HashPair(empty[i-1], empty[i-1])
	}
	return &Tree{
		depth:      depth,
		nodes:      make([][]*big.Int, depth+1),
		emptyNodes: empty,
	}
}

// Depth returns the tree's configured depth.
func (t *Tree) Depth() int { return t.depth }

// Leaves returns the tree's current sorted leaf set. Callers must not
// mutate the returned slice; it is the tree's own backing array.
func (t *Tree) Leaves() []*big.Int { return t.nodes[0] }

// Len returns the number of real (non-padding) leaves currently inserted.
func (t *Tree) Len() int { return t.length }

// Root returns the tree's current root, the empty-tree root if no leaves
// have been inserted yet.
func (t *Tree) Root() *big.Int {
	if len(t.nodes[t.depth]) == 0 {
		return t.emptyNodes[t.depth]
	}
	return t.nodes[t.depth][0]
}

// InsertNodes appends new leaves to the tree, sorts the full leaf set, and
// rebuilds every tier above it. Padding used to complete odd-length tiers
// during hashing is discarded afterward so Len reflects only real leaves.
func (t *Tree) InsertNodes(newNodes []*big.Int) {
	t.nodes[0] = append(t.nodes[0], newNodes...)
	sort.Slice(t.nodes[0], func(i, j int) bool {
		return t.nodes[0][i].Cmp(t.nodes[0][j]) < 0
	})
	t.length = len(t.nodes[0])

	cur := t.nodes[0]
	for tier := 1; tier <= t.depth; tier++ {
		padded := cur
		if len(padded)%2 == 1 {
			padded = append(append([]*big.Int{}, padded...), t.emptyNodes[tier-1])
		}
		next := make([]*big.Int, len(padded)/2)
		for i := range next {
			next[i] = curve.HashPair(padded[2*i], padded[2*i+1])
		}
		t.nodes[tier] = next
		cur = next
	}
	// truncate nodes[0] back to real length; padding was only for hashing.
	t.nodes[0] = t.nodes[0][:t.length]
}

// InProof is a membership proof for a leaf value: the sibling at each tier
// (Path) and which side it sits on (Flags[i]==0 means the sibling is to the
// right, ==1 means it is to the left).
type InProof struct {
	Value *big.Int
	Path  []*big.Int
	Flags []uint8
}

// Key reconstructs the leaf's index in the tree from its flags, read as
// little-endian bits (flag 0 → bit 0, i.e. this node was on the left at
// that tier; flag 1 → bit 1, this node was on the right).
func (p *InProof) Key() *big.Int {
	idx := big.NewInt(0)
	for i := len(p.Flags) - 1; i >= 0; i-- {
		idx.Lsh(idx, 1)
		if p.Flags[i] == 1 {
			idx.SetBit(idx, 0, 1)
		}
	}
	return idx
}

// Verify folds the proof path through Poseidon and checks the result
// matches root.
func (p *InProof) Verify(root *big.Int) (bool, error) {
	if len(p.Path) != len(p.Flags) {
		return false, ErrProofDepthMismatch
	}
	state := p.Value
	for i, sibling := range p.Path {
		if p.Flags[i] == 0 {
			state = curve.HashPair(state, sibling)
		} else {
			state = curve.HashPair(sibling, state)
		}
	}
	return state.Cmp(root) == 0, nil
}

// genInProofRaw walks from leaf index idx up to the root, collecting the
// sibling and its side flag at each tier. A missing sibling (tier padded
// during the last InsertNodes) falls back to the tree's empty-subtree
// constant for that tier.
func (t *Tree) genInProofRaw(idx int) *InProof {
	path := make([]*big.Int, t.depth)
	flags := make([]uint8, t.depth)
	i := idx
	for tier := 0; tier < t.depth; tier++ {
		level := t.nodes[tier]
		if i%2 == 0 {
			// sibling is to the right (flag 0)
			if i+1 < len(level) {
				path[tier] = level[i+1]
			} else {
				path[tier] = t.emptyNodes[tier]
			}
			flags[tier] = 0
		} else {
			// sibling is to the left (flag 1)
			path[tier] = level[i-1]
			flags[tier] = 1
		}
		i /= 2
	}
	return &InProof{Value: t.nodes[0][idx], Path: path, Flags: flags}
}

// GenInProof builds a membership proof for the given leaf value. Returns
// ErrNodeNotFound if the value was never inserted.
func (t *Tree) GenInProof(value *big.Int) (*InProof, error) {
	idx := sort.Search(len(t.nodes[0]), func(i int) bool {
		return t.nodes[0][i].Cmp(value) >= 0
	})
	if idx >= len(t.nodes[0]) || t.nodes[0][idx].Cmp(value) != 0 {
		return nil, ErrNodeNotFound
	}
	return t.genInProofRaw(idx), nil
}
