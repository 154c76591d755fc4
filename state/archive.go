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

import "github.com/0xsoniclabs/execstate/common"

const (
	ErrBlockNotFound   = common.ConstError("block not found")
	ErrBlockOutOfOrder = common.ConstError("blocks must be applied in order")
	ErrClosed          = common.ConstError("archive is closed")
)

// Archive is a state database retaining the history of all applied blocks.
type Archive interface {
	Backend

	// Apply adds the given block on top of the archive. Blocks have to be
	// added in order, starting with block 0.
	Apply(block uint64, update Update) error

	// Head returns the most recent block. The result is false if the archive
	// is empty.
	Head() (uint64, bool, error)

	// ClassHashes lists all classes declared in the archive, sorted.
	ClassHashes() ([]common.ClassHash, error)

	Flush() error
	Close() error
}
