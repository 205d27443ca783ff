// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package chain declares the on-chain contract surface this engine consumes
// but never implements: transaction submission, view calls, and event
// queries. The blockchain client layer, the on-chain verifier, and
// committee membership consensus are all external collaborators reached
// only through this interface.
package chain

import (
	"context"
	"math/big"

	"github.com/luxfi/identity/curve"
	"github.com/luxfi/identity/prove"
)

// IdentityFullMeta is the on-chain event payload describing a registered
// pseudonym, as emitted by UserRegister.
type IdentityFullMeta struct {
	C1Y, C2Y, C3Y *big.Int
	AiY           *big.Int
	DD            *big.Int
	RH            *big.Int
}

// Client spells out every ABI method and event this engine relies on. No
// implementation lives in this module; callers supply their own (or use
// NopClient in tests).
type Client interface {
	AddCommittee(ctx context.Context, count uint64) error
	SetTpkePub(ctx context.Context, pub *curve.Point) error
	SetDeriveVK(ctx context.Context, vk interface{}) error
	SetAppKeyVK(ctx context.Context, vk interface{}) error
	UpdateRootsHash(ctx context.Context, rh1, rh2, version *big.Int) error
	Register(ctx context.Context, inputs [6]*big.Int, proof *prove.Proof) error
	SetAppKey(ctx context.Context, user, appkey, appid *big.Int, proof *prove.Proof) error
	VerifyIdentity(ctx context.Context, ax, ay, lrcm *big.Int, proof *prove.Proof) error
	Revoke(ctx context.Context, addresses []common20) error
	NumOfAddress(ctx context.Context) (uint64, error)

	// WatchUserRegister and WatchUserMarked surface the two events this
	// engine listens for: pseudonym registration, and revocation marks
	// keyed by a ciphertext's c1 y-coordinate.
	WatchUserRegister(ctx context.Context) (<-chan UserRegisterEvent, error)
	WatchUserMarked(ctx context.Context) (<-chan UserMarkedEvent, error)
}

// common20 is a 20-byte chain address, kept local to avoid pulling in a
// chain SDK's address type for a package that never implements Client.
type common20 = [20]byte

// UserRegisterEvent mirrors UserRegister(address indexed user, IdentityFullMeta meta).
type UserRegisterEvent struct {
	User common20
	Meta IdentityFullMeta
}

// UserMarkedEvent mirrors UserMarked(bytes32 indexed c1y, address user).
type UserMarkedEvent struct {
	C1Y  [32]byte
	User common20
}

// NopClient is a no-op Client for tests that exercise user/committee logic
// without a chain. Every method returns its zero value and a nil error;
// watch channels are closed immediately.
type NopClient struct{}

func (NopClient) AddCommittee(context.Context, uint64) error                  { return nil }
func (NopClient) SetTpkePub(context.Context, *curve.Point) error              { return nil }
func (NopClient) SetDeriveVK(context.Context, interface{}) error              { return nil }
func (NopClient) SetAppKeyVK(context.Context, interface{}) error              { return nil }
func (NopClient) UpdateRootsHash(context.Context, *big.Int, *big.Int, *big.Int) error {
	return nil
}
func (NopClient) Register(context.Context, [6]*big.Int, *prove.Proof) error { return nil }
func (NopClient) SetAppKey(context.Context, *big.Int, *big.Int, *big.Int, *prove.Proof) error {
	return nil
}
func (NopClient) VerifyIdentity(context.Context, *big.Int, *big.Int, *big.Int, *prove.Proof) error {
	return nil
}
func (NopClient) Revoke(context.Context, []common20) error       { return nil }
func (NopClient) NumOfAddress(context.Context) (uint64, error)   { return 0, nil }
func (NopClient) WatchUserRegister(context.Context) (<-chan UserRegisterEvent, error) {
	ch := make(chan UserRegisterEvent)
	close(ch)
	return ch, nil
}
func (NopClient) WatchUserMarked(context.Context) (<-chan UserMarkedEvent, error) {
	ch := make(chan UserMarkedEvent)
	close(ch)
	return ch, nil
}

var _ Client = NopClient{}
