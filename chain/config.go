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
	"os"

	"gopkg.in/yaml.v3"
)

// ChainId is the identity of a network.
type ChainId string

const (
	Mainnet ChainId = "SN_MAIN"
	Sepolia ChainId = "SN_SEPOLIA"
)

const (
	// DefaultBlockHashDelay is the number of most recent blocks whose hashes
	// are withheld from execution.
	DefaultBlockHashDelay = 10

	// MainnetBlockHashActivation is the first mainnet block of protocol
	// version 0.12.0, the first to expose block hashes to execution.
	MainnetBlockHashActivation = 103_129
)

// Config holds the protocol parameters of a chain relevant to state reads.
type Config struct {
	ChainId ChainId `yaml:"chain_id"`
	// BlockHashDelay is the minimum distance between the executing block and
	// a block whose hash may be read.
	BlockHashDelay uint64 `yaml:"block_hash_delay"`
	// BlockHashActivation is the first block whose hash may be read at all.
	BlockHashActivation uint64 `yaml:"block_hash_activation"`
}

// ForChain returns the protocol presets of the given chain. Every chain other
// than mainnet exposes block hashes from genesis on.
func ForChain(id ChainId) Config {
	config := Config{
		ChainId:        id,
		BlockHashDelay: DefaultBlockHashDelay,
	}
	if id == Mainnet {
		config.BlockHashActivation = MainnetBlockHashActivation
	}
	return config
}

// LoadConfig reads a chain configuration from a YAML file. Fields missing in
// the file keep the presets of the configured chain.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read chain config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes a YAML encoded chain configuration.
func ParseConfig(data []byte) (Config, error) {
	var raw struct {
		ChainId             ChainId `yaml:"chain_id"`
		BlockHashDelay      *uint64 `yaml:"block_hash_delay"`
		BlockHashActivation *uint64 `yaml:"block_hash_activation"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("failed to parse chain config: %w", err)
	}
	if raw.ChainId == "" {
		return Config{}, fmt.Errorf("chain config lacks a chain_id")
	}
	config := ForChain(raw.ChainId)
	if raw.BlockHashDelay != nil {
		config.BlockHashDelay = *raw.BlockHashDelay
	}
	if raw.BlockHashActivation != nil {
		config.BlockHashActivation = *raw.BlockHashActivation
	}
	return config, nil
}

func (c Config) String() string {
	return fmt.Sprintf("%s(delay=%d, activation=%d)", c.ChainId, c.BlockHashDelay, c.BlockHashActivation)
}
