// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package state

import "fmt"

// BlockId identifies the historical state a backend resolves a query
// against. It is either a BlockNumber or the PendingBlock.
type BlockId interface {
	fmt.Stringer
	isBlockId()
}

// BlockNumber refers to the state after the given block was applied.
type BlockNumber uint64

// PendingBlock refers to the most recent state known to a backend, including
// content of a block still being built.
type PendingBlock struct{}

func (BlockNumber) isBlockId()  {}
func (PendingBlock) isBlockId() {}

func (b BlockNumber) String() string {
	return fmt.Sprintf("block %d", uint64(b))
}

func (PendingBlock) String() string {
	return "pending block"
}

// BlockRef describes the state an execution builds upon. It is either
// Genesis, if there is no prior block, or OnTopOf a given block.
type BlockRef interface {
	isBlockRef()
}

// Genesis is the reference used while executing the very first block. There
// is no state to read from.
type Genesis struct{}

// OnTopOf is the reference used while executing a block on top of an
// existing block.
type OnTopOf struct {
	Block BlockId
}

func (Genesis) isBlockRef() {}
func (OnTopOf) isBlockRef() {}
