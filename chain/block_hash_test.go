// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package chain

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlockHashAllowed_KnownVectors(t *testing.T) {
	other := ChainId("MADARA_TEST")
	tests := []struct {
		chain     ChainId
		current   uint64
		requested uint64
		want      bool
	}{
		{other, 9, 0, false},
		{other, 10, 0, true},
		{other, 11, 0, true},
		{other, 59, 50, false},
		{other, 60, 50, true},
		{other, 61, 50, true},
		{Mainnet, 61, 50, false},
		{Sepolia, 61, 50, true},
		{Mainnet, 103_139, 103_129, true},
		{Mainnet, 103_139, 103_128, false},
		{Mainnet, 103_138, 103_129, false},
	}
	for _, test := range tests {
		name := fmt.Sprintf("%s/current=%d/requested=%d", test.chain, test.current, test.requested)
		t.Run(name, func(t *testing.T) {
			require.Equal(t, test.want, BlockHashAllowed(test.chain, test.current, test.requested))
		})
	}
}

func TestBlockHashAllowed_NothingIsAllowedBelowTheDelay(t *testing.T) {
	for _, chain := range []ChainId{Mainnet, Sepolia, "other"} {
		for current := uint64(0); current < DefaultBlockHashDelay; current++ {
			for _, requested := range []uint64{0, 1, current, 1_000, math.MaxUint64} {
				require.False(t, BlockHashAllowed(chain, current, requested),
					"chain %s current %d requested %d", chain, current, requested)
			}
		}
	}
}

func TestBlockHashAllowed_MatchesInclusiveWindow(t *testing.T) {
	for _, chain := range []ChainId{Mainnet, "other"} {
		config := ForChain(chain)
		for _, current := range []uint64{10, 11, 100, 103_139, 200_000, math.MaxUint64} {
			for _, requested := range []uint64{0, 1, 50, current - 11, current - 10, current - 9, current, math.MaxUint64} {
				want := config.BlockHashActivation <= requested && requested <= current-10
				require.Equal(t, want, BlockHashAllowed(chain, current, requested),
					"chain %s current %d requested %d", chain, current, requested)
			}
		}
	}
}

func TestBlockHashAllowed_GenesisHashIsReadableOnGenericChains(t *testing.T) {
	for current := uint64(10); current < 1_000; current++ {
		require.True(t, BlockHashAllowed("other", current, 0))
	}
}

func TestBlockHashRange_IsEmptyWhenActivationIsNotReached(t *testing.T) {
	require := require.New(t)
	config := ForChain(Mainnet)

	r := config.BlockHashRange(61)
	require.True(r.Empty())
	require.False(r.Contains(50))
	require.Equal("[]", r.String())

	r = config.BlockHashRange(5)
	require.True(r.Empty())

	r = config.BlockHashRange(103_200)
	require.False(r.Empty())
	require.Equal(BlockRange{First: 103_129, Last: 103_190}, r)
	require.Equal("[103129..103190]", r.String())
}

func TestBlockHashRange_CustomDelayIsRespected(t *testing.T) {
	require := require.New(t)
	config := Config{ChainId: "custom", BlockHashDelay: 0}
	require.True(config.BlockHashAllowed(0, 0))
	require.False(config.BlockHashAllowed(0, 1))

	config = Config{ChainId: "custom", BlockHashDelay: 256, BlockHashActivation: 5}
	require.False(config.BlockHashAllowed(260, 4))
	require.True(config.BlockHashAllowed(261, 5))
	require.False(config.BlockHashAllowed(255, 0))
}
