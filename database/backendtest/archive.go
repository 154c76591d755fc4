// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package backendtest provides a test suite shared by all archive
// implementations.
package backendtest

import (
	"testing"

	"github.com/0xsoniclabs/execstate/class"
	"github.com/0xsoniclabs/execstate/common"
	"github.com/0xsoniclabs/execstate/state"
	"github.com/stretchr/testify/require"
)

// Casm is a minimal valid CASM class body.
const Casm = `{
	"prime": "0x800000000000011000000000000000000000000000000000000000000000001",
	"compiler_version": "2.6.0",
	"bytecode": ["0xa0680017fff8000", "0x7", "0x208b7fff7fff7ffe"],
	"entry_points_by_type": {
		"EXTERNAL": [{"selector": "0x83afd3f4caedc6eebf44246fe54e38c95e3179a5ec9ea81740eca5b482d12e", "offset": 1, "builtins": []}],
		"L1_HANDLER": [],
		"CONSTRUCTOR": []
	}
}`

var (
	Addr1 = common.Address(common.FeltFromUint64(0xa1))
	Addr2 = common.Address(common.FeltFromUint64(0xa2))

	Key1 = common.Key(common.FeltFromUint64(0x01))
	Key2 = common.Key(common.FeltFromUint64(0x02))

	SierraClass  = common.ClassHash(common.FeltFromUint64(0x5e))
	LegacyClass  = common.ClassHash(common.FeltFromUint64(0x1e))
	CompiledHash = common.CompiledClassHash(common.FeltFromUint64(0xca5))
)

func val(v uint64) common.Value   { return common.Value(common.FeltFromUint64(v)) }
func nonce(v uint64) common.Nonce { return common.Nonce(common.FeltFromUint64(v)) }

// BlockHash is the hash of block n in the History.
func BlockHash(n uint64) common.Felt {
	return common.FeltFromUint64(0xb0000 + n)
}

// History returns three blocks of updates:
//   - block 0 deploys Addr1 with the legacy class and sets Key1 to 1
//   - block 1 declares the Sierra class, deploys Addr2, bumps nonces and sets Key2
//   - block 2 replaces the class of Addr1 and overwrites Key1 with 3
func History() []state.Update {
	return []state.Update{
		{
			BlockHash: BlockHash(0),
			DeclaredClasses: []state.DeclaredClass{{
				ClassHash: LegacyClass,
				Info:      class.Info{Kind: class.Legacy},
				Compiled:  class.Compiled{Kind: class.Legacy, Program: []byte(`{"program": {"data": ["0x1"]}}`)},
			}},
			DeployedContracts: []state.DeployedContract{{Account: Addr1, ClassHash: LegacyClass}},
			Slots:             []state.SlotUpdate{{Account: Addr1, Key: Key1, Value: val(1)}},
		},
		{
			BlockHash: BlockHash(1),
			DeclaredClasses: []state.DeclaredClass{{
				ClassHash: SierraClass,
				Info:      class.Info{Kind: class.Sierra, CompiledClassHash: CompiledHash},
				Compiled:  class.Compiled{Kind: class.Sierra, Program: []byte(Casm)},
			}},
			DeployedContracts: []state.DeployedContract{{Account: Addr2, ClassHash: SierraClass}},
			Nonces: []state.NonceUpdate{
				{Account: Addr1, Nonce: nonce(1)},
				{Account: Addr2, Nonce: nonce(1)},
			},
			Slots: []state.SlotUpdate{{Account: Addr2, Key: Key2, Value: val(2)}},
		},
		{
			BlockHash:         BlockHash(2),
			DeployedContracts: []state.DeployedContract{{Account: Addr1, ClassHash: SierraClass}},
			Nonces:            []state.NonceUpdate{{Account: Addr1, Nonce: nonce(2)}},
			Slots:             []state.SlotUpdate{{Account: Addr1, Key: Key1, Value: val(3)}},
		},
	}
}

// Populate applies the History to the given archive.
func Populate(t *testing.T, archive state.Archive) {
	t.Helper()
	for i, update := range History() {
		require.NoError(t, archive.Apply(uint64(i), update))
	}
}

// RunArchiveTests runs the shared test suite. The factory has to produce a
// new, empty archive for each invocation.
func RunArchiveTests(t *testing.T, factory func(t *testing.T) state.Archive) {
	t.Run("EmptyArchiveHasNoHead", func(t *testing.T) {
		archive := factory(t)
		_, found, err := archive.Head()
		require.NoError(t, err)
		require.False(t, found)

		hashes, err := archive.ClassHashes()
		require.NoError(t, err)
		require.Empty(t, hashes)
	})

	t.Run("BlocksMustBeAppliedInOrder", func(t *testing.T) {
		archive := factory(t)
		require.ErrorIs(t, archive.Apply(1, state.Update{}), state.ErrBlockOutOfOrder)
		require.NoError(t, archive.Apply(0, state.Update{}))
		require.ErrorIs(t, archive.Apply(0, state.Update{}), state.ErrBlockOutOfOrder)
		require.ErrorIs(t, archive.Apply(2, state.Update{}), state.ErrBlockOutOfOrder)
		require.NoError(t, archive.Apply(1, state.Update{}))

		head, found, err := archive.Head()
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, uint64(1), head)
	})

	t.Run("InconsistentUpdatesAreRejected", func(t *testing.T) {
		archive := factory(t)
		err := archive.Apply(0, state.Update{DeclaredClasses: []state.DeclaredClass{{
			ClassHash: SierraClass,
			Info:      class.Info{Kind: class.Sierra},
			Compiled:  class.Compiled{Kind: class.Legacy},
		}}})
		require.Error(t, err)
		_, found, err := archive.Head()
		require.NoError(t, err)
		require.False(t, found)
	})

	t.Run("StorageIsVersionedByBlock", func(t *testing.T) {
		require := require.New(t)
		archive := factory(t)
		Populate(t, archive)

		tests := []struct {
			block   uint64
			address common.Address
			key     common.Key
			want    common.Value
			found   bool
		}{
			{0, Addr1, Key1, val(1), true},
			{1, Addr1, Key1, val(1), true},
			{2, Addr1, Key1, val(3), true},
			{0, Addr2, Key2, common.Value{}, false},
			{1, Addr2, Key2, val(2), true},
			{2, Addr2, Key2, val(2), true},
			{2, Addr1, Key2, common.Value{}, false},
		}
		for _, test := range tests {
			got, found, err := archive.GetStorage(state.BlockNumber(test.block), test.address, test.key)
			require.NoError(err)
			require.Equal(test.found, found, "block %d address %v key %v", test.block, test.address, test.key)
			require.Equal(test.want, got, "block %d address %v key %v", test.block, test.address, test.key)
		}
	})

	t.Run("NoncesAndClassHashesAreVersionedByBlock", func(t *testing.T) {
		require := require.New(t)
		archive := factory(t)
		Populate(t, archive)

		_, found, err := archive.GetNonce(state.BlockNumber(0), Addr1)
		require.NoError(err)
		require.False(found)

		got, found, err := archive.GetNonce(state.BlockNumber(1), Addr1)
		require.NoError(err)
		require.True(found)
		require.Equal(nonce(1), got)

		got, found, err = archive.GetNonce(state.BlockNumber(2), Addr1)
		require.NoError(err)
		require.True(found)
		require.Equal(nonce(2), got)

		hash, found, err := archive.GetClassHash(state.BlockNumber(0), Addr1)
		require.NoError(err)
		require.True(found)
		require.Equal(LegacyClass, hash)

		hash, found, err = archive.GetClassHash(state.BlockNumber(2), Addr1)
		require.NoError(err)
		require.True(found)
		require.Equal(SierraClass, hash)

		_, found, err = archive.GetClassHash(state.BlockNumber(0), Addr2)
		require.NoError(err)
		require.False(found)
	})

	t.Run("ClassesAreVisibleFromTheirDeclaration", func(t *testing.T) {
		require := require.New(t)
		archive := factory(t)
		Populate(t, archive)

		_, found, err := archive.GetClassInfo(state.BlockNumber(0), SierraClass)
		require.NoError(err)
		require.False(found)
		_, found, err = archive.GetCompiledClass(state.BlockNumber(0), SierraClass)
		require.NoError(err)
		require.False(found)

		info, found, err := archive.GetClassInfo(state.BlockNumber(1), SierraClass)
		require.NoError(err)
		require.True(found)
		require.Equal(class.Info{Kind: class.Sierra, CompiledClassHash: CompiledHash}, info)

		compiled, found, err := archive.GetCompiledClass(state.BlockNumber(2), SierraClass)
		require.NoError(err)
		require.True(found)
		require.Equal(class.Sierra, compiled.Kind)
		require.JSONEq(Casm, string(compiled.Program))

		info, found, err = archive.GetClassInfo(state.BlockNumber(0), LegacyClass)
		require.NoError(err)
		require.True(found)
		require.Equal(class.Info{Kind: class.Legacy}, info)

		hashes, err := archive.ClassHashes()
		require.NoError(err)
		require.Equal([]common.ClassHash{LegacyClass, SierraClass}, hashes)
	})

	t.Run("ClassesKeepTheirFirstDeclaration", func(t *testing.T) {
		require := require.New(t)
		archive := factory(t)
		hash := common.ClassHash(common.FeltFromUint64(0x7))
		declare := func(compiledHash uint64) state.DeclaredClass {
			return state.DeclaredClass{
				ClassHash: hash,
				Info: class.Info{
					Kind:              class.Sierra,
					CompiledClassHash: common.CompiledClassHash(common.FeltFromUint64(compiledHash)),
				},
				Compiled: class.Compiled{Kind: class.Sierra, Program: []byte(Casm)},
			}
		}
		want := class.Info{Kind: class.Sierra, CompiledClassHash: common.CompiledClassHash(common.FeltFromUint64(1))}

		// redeclared within the same block
		require.NoError(archive.Apply(0, state.Update{
			BlockHash:       BlockHash(0),
			DeclaredClasses: []state.DeclaredClass{declare(1), declare(2)},
		}))
		info, found, err := archive.GetClassInfo(state.BlockNumber(0), hash)
		require.NoError(err)
		require.True(found)
		require.Equal(want, info)

		// redeclared in a later block
		require.NoError(archive.Apply(1, state.Update{
			BlockHash:       BlockHash(1),
			DeclaredClasses: []state.DeclaredClass{declare(3)},
		}))
		for _, block := range []state.BlockId{state.BlockNumber(0), state.BlockNumber(1), state.PendingBlock{}} {
			info, found, err := archive.GetClassInfo(block, hash)
			require.NoError(err)
			require.True(found)
			require.Equal(want, info, "block %v", block)
		}

		hashes, err := archive.ClassHashes()
		require.NoError(err)
		require.Equal([]common.ClassHash{hash}, hashes)
	})

	t.Run("BlockHashesAreRecorded", func(t *testing.T) {
		require := require.New(t)
		archive := factory(t)
		Populate(t, archive)

		for i := range uint64(3) {
			hash, found, err := archive.GetBlockHash(i)
			require.NoError(err)
			require.True(found)
			require.Equal(BlockHash(i), hash)
		}
		_, found, err := archive.GetBlockHash(3)
		require.NoError(err)
		require.False(found)
	})

	t.Run("ReadsBeyondHeadFail", func(t *testing.T) {
		archive := factory(t)
		Populate(t, archive)

		_, _, err := archive.GetStorage(state.BlockNumber(3), Addr1, Key1)
		require.ErrorIs(t, err, state.ErrBlockNotFound)
		_, _, err = archive.GetNonce(state.BlockNumber(3), Addr1)
		require.ErrorIs(t, err, state.ErrBlockNotFound)
		_, _, err = archive.GetClassInfo(state.BlockNumber(3), SierraClass)
		require.ErrorIs(t, err, state.ErrBlockNotFound)
	})

	t.Run("PendingBlockReadsHead", func(t *testing.T) {
		require := require.New(t)
		archive := factory(t)

		_, found, err := archive.GetStorage(state.PendingBlock{}, Addr1, Key1)
		require.NoError(err)
		require.False(found)

		Populate(t, archive)
		got, found, err := archive.GetStorage(state.PendingBlock{}, Addr1, Key1)
		require.NoError(err)
		require.True(found)
		require.Equal(val(3), got)
	})

	t.Run("ClosedArchiveRejectsAccess", func(t *testing.T) {
		archive := factory(t)
		Populate(t, archive)
		require.NoError(t, archive.Flush())
		require.NoError(t, archive.Close())

		_, _, err := archive.GetStorage(state.BlockNumber(0), Addr1, Key1)
		require.ErrorIs(t, err, state.ErrClosed)
		require.ErrorIs(t, archive.Apply(3, state.Update{}), state.ErrClosed)
	})
}
