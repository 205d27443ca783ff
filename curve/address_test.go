// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package curve

import (
	"testing"

	"github.com/luxfi/geth/common"
)

func TestAddressFieldRoundTrip(t *testing.T) {
	addr := common.HexToAddress("0xabababababababababababababababababab12")
	field := AddressToField(addr)
	got := FieldToAddress(field)
	if got != addr {
		t.Fatalf("FieldToAddress(AddressToField(%v)) = %v, want %v", addr, got, addr)
	}
}
