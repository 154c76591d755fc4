// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package memory

import (
	"testing"

	"github.com/0xsoniclabs/execstate/class"
	"github.com/0xsoniclabs/execstate/common"
	"github.com/0xsoniclabs/execstate/database/backendtest"
	"github.com/0xsoniclabs/execstate/state"
	"github.com/stretchr/testify/require"
)

var _ state.Archive = (*Archive)(nil)

func TestArchive(t *testing.T) {
	backendtest.RunArchiveTests(t, func(t *testing.T) state.Archive {
		return NewArchive()
	})
}

func TestArchive_PendingOverlayIsOnlyVisibleAtPendingBlock(t *testing.T) {
	require := require.New(t)
	archive := NewArchive()
	backendtest.Populate(t, archive)

	newValue := common.Value(common.FeltFromUint64(99))
	newClass := common.ClassHash(common.FeltFromUint64(0x77))
	require.NoError(archive.SetPending(state.Update{
		Slots: []state.SlotUpdate{{Account: backendtest.Addr1, Key: backendtest.Key1, Value: newValue}},
		DeclaredClasses: []state.DeclaredClass{{
			ClassHash: newClass,
			Info:      class.Info{Kind: class.Sierra},
			Compiled:  class.Compiled{Kind: class.Sierra, Program: []byte(backendtest.Casm)},
		}},
	}))

	got, found, err := archive.GetStorage(state.PendingBlock{}, backendtest.Addr1, backendtest.Key1)
	require.NoError(err)
	require.True(found)
	require.Equal(newValue, got)

	got, _, err = archive.GetStorage(state.BlockNumber(2), backendtest.Addr1, backendtest.Key1)
	require.NoError(err)
	require.NotEqual(newValue, got)

	// entries not touched by the pending block fall through to the head
	hash, found, err := archive.GetClassHash(state.PendingBlock{}, backendtest.Addr2)
	require.NoError(err)
	require.True(found)
	require.Equal(backendtest.SierraClass, hash)

	_, found, err = archive.GetCompiledClass(state.PendingBlock{}, newClass)
	require.NoError(err)
	require.True(found)
	_, found, err = archive.GetCompiledClass(state.BlockNumber(2), newClass)
	require.NoError(err)
	require.False(found)

	// applying the next block drops the overlay
	require.NoError(archive.Apply(3, state.Update{}))
	got, _, err = archive.GetStorage(state.PendingBlock{}, backendtest.Addr1, backendtest.Key1)
	require.NoError(err)
	require.NotEqual(newValue, got)
}

func TestArchive_PendingOverlayWithoutCommittedBlocks(t *testing.T) {
	require := require.New(t)
	archive := NewArchive()

	nonce := common.Nonce(common.FeltFromUint64(4))
	require.NoError(archive.SetPending(state.Update{
		Nonces: []state.NonceUpdate{{Account: backendtest.Addr1, Nonce: nonce}},
	}))

	got, found, err := archive.GetNonce(state.PendingBlock{}, backendtest.Addr1)
	require.NoError(err)
	require.True(found)
	require.Equal(nonce, got)

	_, found, err = archive.GetNonce(state.PendingBlock{}, backendtest.Addr2)
	require.NoError(err)
	require.False(found)
}

func TestArchive_RedeclaredClassesKeepTheirFirstDeclaration(t *testing.T) {
	require := require.New(t)
	archive := NewArchive()
	backendtest.Populate(t, archive)

	require.NoError(archive.Apply(3, state.Update{DeclaredClasses: []state.DeclaredClass{{
		ClassHash: backendtest.SierraClass,
		Info:      class.Info{Kind: class.Sierra},
		Compiled:  class.Compiled{Kind: class.Sierra, Program: []byte("{}")},
	}}}))

	info, found, err := archive.GetClassInfo(state.BlockNumber(3), backendtest.SierraClass)
	require.NoError(err)
	require.True(found)
	require.Equal(backendtest.CompiledHash, info.CompiledClassHash)
}

func TestArchive_PendingRedeclarationsDoNotShadowFirstDeclaration(t *testing.T) {
	require := require.New(t)
	archive := NewArchive()
	backendtest.Populate(t, archive)

	fresh := common.ClassHash(common.FeltFromUint64(0x7))
	redeclare := func(hash common.ClassHash, compiledHash uint64) state.DeclaredClass {
		return state.DeclaredClass{
			ClassHash: hash,
			Info: class.Info{
				Kind:              class.Sierra,
				CompiledClassHash: common.CompiledClassHash(common.FeltFromUint64(compiledHash)),
			},
			Compiled: class.Compiled{Kind: class.Sierra, Program: []byte("{}")},
		}
	}
	require.NoError(archive.SetPending(state.Update{DeclaredClasses: []state.DeclaredClass{
		redeclare(backendtest.SierraClass, 1),
		redeclare(fresh, 2),
		redeclare(fresh, 3),
	}}))

	info, found, err := archive.GetClassInfo(state.PendingBlock{}, backendtest.SierraClass)
	require.NoError(err)
	require.True(found)
	require.Equal(backendtest.CompiledHash, info.CompiledClassHash)

	info, found, err = archive.GetClassInfo(state.PendingBlock{}, fresh)
	require.NoError(err)
	require.True(found)
	require.Equal(common.CompiledClassHash(common.FeltFromUint64(2)), info.CompiledClassHash)
}

func TestHistory_ReturnsNewestVersionAtOrBeforeBlock(t *testing.T) {
	require := require.New(t)
	var h history[int]
	h = h.set(2, 20)
	h = h.set(5, 50)
	h = h.set(5, 55)

	_, found := h.at(1)
	require.False(found)
	for block, want := range map[uint64]int{2: 20, 4: 20, 5: 55, 100: 55} {
		got, found := h.at(block)
		require.True(found)
		require.Equal(want, got)
	}
	require.Len(h, 2)
}
