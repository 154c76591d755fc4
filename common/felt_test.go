// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFelt_FromHexAcceptsLeadingZerosAndPrefixes(t *testing.T) {
	tests := map[string]Felt{
		"0x0":     {},
		"0x00000": {},
		"0":       {},
		"0x1":     FeltFromUint64(1),
		"0x0001":  FeltFromUint64(1),
		"0XfF":    FeltFromUint64(255),
		"1a":      FeltFromUint64(26),
	}
	for input, want := range tests {
		t.Run(input, func(t *testing.T) {
			got, err := FeltFromHex(input)
			require.NoError(t, err)
			require.Equal(t, want, got)
		})
	}
}

func TestFelt_FromHexRejectsInvalidInput(t *testing.T) {
	for _, input := range []string{"", "0x", "0xzz", "hello"} {
		_, err := FeltFromHex(input)
		require.ErrorIs(t, err, ErrInvalidFelt, "input %q", input)
	}
}

func TestFelt_FromHexRejectsValuesBeyondPrime(t *testing.T) {
	require := require.New(t)

	max, err := FeltFromHex("0x800000000000011000000000000000000000000000000000000000000000000")
	require.NoError(err)
	require.Equal("0x800000000000011000000000000000000000000000000000000000000000000", max.String())

	_, err = FeltFromHex("0x800000000000011000000000000000000000000000000000000000000000001")
	require.ErrorIs(err, ErrFeltOutOfRange)

	_, err = FeltFromHex("0x" + "ff" + "00000000000000000000000000000000000000000000000000000000000000")
	require.ErrorIs(err, ErrFeltOutOfRange)

	// more than 256 bits
	_, err = FeltFromHex("0x1" + "0000000000000000000000000000000000000000000000000000000000000000")
	require.ErrorIs(err, ErrInvalidFelt)
}

func TestFelt_FromBytesChecksLengthAndRange(t *testing.T) {
	require := require.New(t)

	_, err := FeltFromBytes(make([]byte, 31))
	require.ErrorIs(err, ErrInvalidFelt)

	data := make([]byte, FeltSize)
	data[31] = 7
	f, err := FeltFromBytes(data)
	require.NoError(err)
	require.Equal(FeltFromUint64(7), f)

	data[0] = 0xff
	_, err = FeltFromBytes(data)
	require.ErrorIs(err, ErrFeltOutOfRange)
}

func TestFelt_Uint64OnlyDecodesValuesFittingIn64Bits(t *testing.T) {
	require := require.New(t)

	v, ok := FeltFromUint64(math.MaxUint64).Uint64()
	require.True(ok)
	require.Equal(uint64(math.MaxUint64), v)

	v, ok = Felt{}.Uint64()
	require.True(ok)
	require.Zero(v)

	_, ok = MustFeltFromHex("0x10000000000000000").Uint64()
	require.False(ok)
}

func TestFelt_StringIsMinimalHex(t *testing.T) {
	require := require.New(t)
	require.Equal("0x0", Felt{}.String())
	require.Equal("0x2a", FeltFromUint64(42).String())
	require.Equal("0x1", Address(FeltFromUint64(1)).String())
	require.Equal("0x10", ClassHash(FeltFromUint64(16)).String())
	require.True(Felt{}.IsZero())
	require.False(FeltFromUint64(1).IsZero())
}

func TestFelt_TextEncodingRoundTrips(t *testing.T) {
	require := require.New(t)
	var f Felt
	require.NoError(f.UnmarshalText([]byte("0x00beef")))
	require.Equal(FeltFromUint64(0xbeef), f)

	text, err := f.MarshalText()
	require.NoError(err)
	require.Equal("0xbeef", string(text))

	require.Error(f.UnmarshalText([]byte("0xnope")))
	require.Equal(FeltFromUint64(0xbeef), f)
}
