// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package curve

import (
	"math/big"

	"github.com/luxfi/geth/common"
)

// AddressToField maps an on-chain account address onto the field this
// engine's circuits operate over, matching the big-endian convention the
// chain-side ABI uses for `revoke(address[])` and the `UserMarked` event.
func AddressToField(addr common.Address) *big.Int {
	return new(big.Int).SetBytes(addr.Bytes())
}

// FieldToAddress is AddressToField's inverse, truncating to the low 20
// bytes the way Solidity's implicit uint160 conversion does.
func FieldToAddress(v *big.Int) common.Address {
	return common.BytesToAddress(v.Bytes())
}
