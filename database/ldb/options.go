// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package ldb

import "github.com/pbnjay/memory"

const (
	minBlockCache = 8 << 20
	maxBlockCache = 1 << 30
)

// blockCacheCapacity sizes the LevelDB block cache to 1/64 of the physical
// memory of the machine.
func blockCacheCapacity() int {
	return clampCache(memory.TotalMemory() / 64)
}

func clampCache(size uint64) int {
	if size < minBlockCache {
		return minBlockCache
	}
	if size > maxBlockCache {
		return maxBlockCache
	}
	return int(size)
}
