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

import "fmt"

// BlockRange is an inclusive range of block numbers. It is empty if First is
// larger than Last.
type BlockRange struct {
	First, Last uint64
}

var emptyRange = BlockRange{First: 1, Last: 0}

func (r BlockRange) Empty() bool {
	return r.First > r.Last
}

func (r BlockRange) Contains(block uint64) bool {
	return r.First <= block && block <= r.Last
}

func (r BlockRange) String() string {
	if r.Empty() {
		return "[]"
	}
	return fmt.Sprintf("[%d..%d]", r.First, r.Last)
}

// BlockHashRange returns the blocks whose hashes may be read while executing
// block current. Recent blocks are withheld since their hashes are not yet
// final when the current block is executed.
func (c Config) BlockHashRange(current uint64) BlockRange {
	if current < c.BlockHashDelay {
		return emptyRange
	}
	return BlockRange{First: c.BlockHashActivation, Last: current - c.BlockHashDelay}
}

// BlockHashAllowed reports whether the hash of block requested may be read
// while executing block current.
func (c Config) BlockHashAllowed(current, requested uint64) bool {
	return c.BlockHashRange(current).Contains(requested)
}

// BlockHashAllowed applies the block hash policy using the presets of the
// given chain.
func BlockHashAllowed(id ChainId, current, requested uint64) bool {
	return ForChain(id).BlockHashAllowed(current, requested)
}
