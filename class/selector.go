// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package class

import (
	"github.com/0xsoniclabs/execstate/common"
	"golang.org/x/crypto/sha3"
)

// Selector computes the entry point selector of a function name, which is the
// Keccak-256 hash of the name truncated to 250 bits.
func Selector(name string) common.Felt {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(name))
	var res common.Felt
	hasher.Sum(res[:0])
	res[0] &= 0x03
	return res
}
