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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestForChain_MainnetHasActivationHeight(t *testing.T) {
	require := require.New(t)
	require.Equal(Config{ChainId: Mainnet, BlockHashDelay: 10, BlockHashActivation: 103_129}, ForChain(Mainnet))
	require.Equal(Config{ChainId: Sepolia, BlockHashDelay: 10}, ForChain(Sepolia))
	require.Equal(Config{ChainId: "devnet", BlockHashDelay: 10}, ForChain("devnet"))
}

func TestParseConfig_MissingFieldsKeepPresets(t *testing.T) {
	require := require.New(t)

	config, err := ParseConfig([]byte("chain_id: SN_MAIN\n"))
	require.NoError(err)
	require.Equal(ForChain(Mainnet), config)

	config, err = ParseConfig([]byte("chain_id: devnet\nblock_hash_delay: 3\nblock_hash_activation: 7\n"))
	require.NoError(err)
	require.Equal(Config{ChainId: "devnet", BlockHashDelay: 3, BlockHashActivation: 7}, config)

	config, err = ParseConfig([]byte("chain_id: SN_MAIN\nblock_hash_activation: 0\n"))
	require.NoError(err)
	require.Zero(config.BlockHashActivation)
}

func TestParseConfig_RejectsInvalidInput(t *testing.T) {
	_, err := ParseConfig([]byte("block_hash_delay: 3\n"))
	require.Error(t, err)

	_, err = ParseConfig([]byte("chain_id: [unterminated"))
	require.Error(t, err)

	_, err = ParseConfig([]byte("chain_id: x\nblock_hash_delay: -1\n"))
	require.Error(t, err)
}

func TestLoadConfig_ReadsFile(t *testing.T) {
	require := require.New(t)
	path := filepath.Join(t.TempDir(), "chain.yaml")
	require.NoError(os.WriteFile(path, []byte("chain_id: SN_SEPOLIA\nblock_hash_delay: 12\n"), 0o600))

	config, err := LoadConfig(path)
	require.NoError(err)
	require.Equal(Config{ChainId: Sepolia, BlockHashDelay: 12}, config)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(err)
}
