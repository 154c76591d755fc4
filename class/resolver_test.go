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
	"testing"

	"github.com/0xsoniclabs/execstate/common"
	"github.com/stretchr/testify/require"
)

const testCasm = `{
	"prime": "0x800000000000011000000000000000000000000000000000000000000000001",
	"compiler_version": "2.6.0",
	"bytecode": ["0xa0680017fff8000", "0x7", "0x482680017ffa8000", "0x0", "0x208b7fff7fff7ffe"],
	"hints": [],
	"entry_points_by_type": {
		"EXTERNAL": [
			{"selector": "0x83afd3f4caedc6eebf44246fe54e38c95e3179a5ec9ea81740eca5b482d12e", "offset": 2, "builtins": []},
			{"selector": "0x15d40a3d6ca2ac30f4031e42be28da9b056fef9bb7357ac5e85627ee876e5ad", "offset": 0, "builtins": ["range_check"]}
		],
		"L1_HANDLER": [],
		"CONSTRUCTOR": [
			{"selector": "0x28ffe4ff0f226a9107253e17a904099aa4f63a02a5621de0576e5aa71bc5194", "offset": 4, "builtins": []}
		]
	}
}`

const testLegacy = `{
	"abi": [],
	"program": {
		"prime": "0x800000000000011000000000000000000000000000000000000000000000001",
		"builtins": ["pedersen", "range_check"],
		"data": ["0x40780017fff7fff", "0x1", "0x208b7fff7fff7ffe"]
	},
	"entry_points_by_type": {
		"EXTERNAL": [{"selector": "0x83afd3f4caedc6eebf44246fe54e38c95e3179a5ec9ea81740eca5b482d12e", "offset": "0x2"}],
		"L1_HANDLER": [],
		"CONSTRUCTOR": []
	}
}`

func TestResolver_ConvertsCasm(t *testing.T) {
	require := require.New(t)

	exec, err := NewResolver().ToExecutable(Compiled{Kind: Sierra, Program: []byte(testCasm)})
	require.NoError(err)
	require.Equal(Sierra, exec.Kind)
	require.Equal("2.6.0", exec.CompilerVersion)
	require.Len(exec.Bytecode, 5)
	require.Equal(common.FeltFromUint64(7), exec.Bytecode[1])
	require.Len(exec.EntryPoints[External], 2)
	require.Empty(exec.EntryPoints[L1Handler])

	ep, found := exec.EntryPoint(External, Selector("transfer"))
	require.True(found)
	require.Equal(uint64(2), ep.Offset)

	ep, found = exec.EntryPoint(External, Selector("__execute__"))
	require.True(found)
	require.Equal([]string{"range_check"}, ep.Builtins)

	_, found = exec.EntryPoint(External, Selector("constructor"))
	require.False(found)
	ep, found = exec.EntryPoint(Constructor, Selector("constructor"))
	require.True(found)
	require.Equal(uint64(4), ep.Offset)
}

func TestResolver_ConvertsLegacyPrograms(t *testing.T) {
	require := require.New(t)

	exec, err := NewResolver().ToExecutable(Compiled{Kind: Legacy, Program: []byte(testLegacy)})
	require.NoError(err)
	require.Equal(Legacy, exec.Kind)
	require.Len(exec.Bytecode, 3)

	ep, found := exec.EntryPoint(External, Selector("transfer"))
	require.True(found)
	require.Equal(uint64(2), ep.Offset)
	require.Equal([]string{"pedersen", "range_check"}, ep.Builtins)
}

func TestResolver_RejectsMalformedClasses(t *testing.T) {
	tests := map[string]string{
		"not json":      `{"bytecode": [`,
		"wrong prime":   `{"prime": "0x7", "bytecode": []}`,
		"bad felt":      `{"bytecode": ["0xzz"]}`,
		"felt too big":  `{"bytecode": ["0x800000000000011000000000000000000000000000000000000000000000001"]}`,
		"offset beyond": `{"bytecode": ["0x1"], "entry_points_by_type": {"EXTERNAL": [{"selector": "0x1", "offset": 1}]}}`,
		"unsorted": `{"bytecode": ["0x1", "0x2"], "entry_points_by_type": {"EXTERNAL": [
			{"selector": "0x2", "offset": 0}, {"selector": "0x1", "offset": 1}]}}`,
		"duplicate": `{"bytecode": ["0x1", "0x2"], "entry_points_by_type": {"EXTERNAL": [
			{"selector": "0x1", "offset": 0}, {"selector": "0x1", "offset": 1}]}}`,
		"unknown type": `{"bytecode": ["0x1"], "entry_points_by_type": {"VIEW": [{"selector": "0x1", "offset": 0}]}}`,
	}
	for name, program := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewResolver().ToExecutable(Compiled{Kind: Sierra, Program: []byte(program)})
			require.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestResolver_RejectsUnknownKinds(t *testing.T) {
	_, err := NewResolver().ToExecutable(Compiled{Program: []byte(testCasm)})
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestSelector_MatchesKnownSelectors(t *testing.T) {
	require := require.New(t)
	require.Equal(common.MustFeltFromHex("0x15d40a3d6ca2ac30f4031e42be28da9b056fef9bb7357ac5e85627ee876e5ad"), Selector("__execute__"))
	require.Equal(common.MustFeltFromHex("0x83afd3f4caedc6eebf44246fe54e38c95e3179a5ec9ea81740eca5b482d12e"), Selector("transfer"))
	require.Equal(common.MustFeltFromHex("0x28ffe4ff0f226a9107253e17a904099aa4f63a02a5621de0576e5aa71bc5194"), Selector("constructor"))
}

func TestKind_String(t *testing.T) {
	require := require.New(t)
	require.Equal("legacy", Legacy.String())
	require.Equal("sierra", Sierra.String())
	require.Equal("Kind(9)", Kind(9).String())
	require.False(Kind(0).Valid())
	require.True(Sierra.Valid())
}
