// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package witness

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/identity/curve"
)

func TestPackUnpackDD(t *testing.T) {
	c1 := curve.ScalarMul(big.NewInt(3), curve.G)
	c2 := curve.ScalarMul(big.NewInt(5), curve.G)
	c3 := curve.ScalarMul(big.NewInt(7), curve.G)
	ai := curve.ScalarMul(big.NewInt(11), curve.G)
	y := curve.ScalarMul(big.NewInt(13), curve.G)

	const ei = uint64(31536000)
	const n = uint64(42)

	dd := PackDD(c1, c2, c3, ai, y, ei, n)
	parities, gotEI, gotN := UnpackDD(dd)

	require.Equal(t, ei, gotEI)
	require.Equal(t, n, gotN)
	require.Equal(t, curve.Parity(c1.X), parities[0])
	require.Equal(t, curve.Parity(c2.X), parities[1])
	require.Equal(t, curve.Parity(c3.X), parities[2])
	require.Equal(t, curve.Parity(ai.X), parities[3])
	require.Equal(t, curve.Parity(y.X), parities[4])
}

func TestPackSS(t *testing.T) {
	y := curve.ScalarMul(big.NewInt(13), curve.G)
	c2 := curve.ScalarMul(big.NewInt(5), curve.G)
	appid := big.NewInt(994862232198212916)

	ss := PackSS(appid, y, c2)

	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 160), big.NewInt(1))
	gotAppID := new(big.Int).And(ss, mask)
	require.Equal(t, appid, gotAppID)
	require.Equal(t, curve.Parity(y.X), uint(ss.Bit(160)))
	require.Equal(t, curve.Parity(c2.X), uint(ss.Bit(161)))
}

func TestLRCMDeterministic(t *testing.T) {
	lower := [8]*big.Int{}
	upper := [8]*big.Int{}
	for i := 0; i < 8; i++ {
		lower[i] = big.NewInt(int64(i + 1))
		upper[i] = big.NewInt(int64(i + 20))
	}
	a := LRCM(lower, upper)
	b := LRCM(lower, upper)
	require.Equal(t, 0, a.Cmp(b))
}
