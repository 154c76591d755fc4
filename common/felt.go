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
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

const (
	ErrFeltOutOfRange = ConstError("value exceeds field prime")
	ErrInvalidFelt    = ConstError("invalid field element encoding")
)

// FeltSize is the number of bytes of an encoded field element.
const FeltSize = 32

// prime is the modulus of the field, P = 2^251 + 17*2^192 + 1.
var prime = uint256.MustFromHex("0x800000000000011000000000000000000000000000000000000000000000001")

// Felt is an element of the prime field used for all addresses, keys, hashes
// and values in the state. It is stored big-endian and is always < P.
type Felt [FeltSize]byte

// Address identifies a contract.
type Address Felt

// Key identifies a storage cell within a contract.
type Key Felt

// Value is the content of a storage cell.
type Value Felt

// Nonce is the per-contract transaction counter.
type Nonce Felt

// ClassHash identifies a declared class.
type ClassHash Felt

// CompiledClassHash is the hash of the compiled form of a Sierra class.
type CompiledClassHash Felt

func FeltFromUint64(v uint64) Felt {
	return Felt(uint256.NewInt(v).Bytes32())
}

// FeltFromHex parses a hex string with an optional 0x prefix. Leading zeros
// are accepted, values not below the field prime are rejected.
func FeltFromHex(s string) (Felt, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(digits) == 0 {
		return Felt{}, fmt.Errorf("%w: %q", ErrInvalidFelt, s)
	}
	digits = strings.TrimLeft(digits, "0")
	if len(digits) == 0 {
		return Felt{}, nil
	}
	v, err := uint256.FromHex("0x" + digits)
	if err != nil {
		return Felt{}, fmt.Errorf("%w: %q: %v", ErrInvalidFelt, s, err)
	}
	return feltFromInt(v)
}

// MustFeltFromHex is like FeltFromHex but panics on invalid input. It is
// intended for constants and tests.
func MustFeltFromHex(s string) Felt {
	f, err := FeltFromHex(s)
	if err != nil {
		panic(err)
	}
	return f
}

// FeltFromBytes decodes a big-endian encoded felt of exactly FeltSize bytes.
func FeltFromBytes(data []byte) (Felt, error) {
	if len(data) != FeltSize {
		return Felt{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidFelt, FeltSize, len(data))
	}
	return feltFromInt(new(uint256.Int).SetBytes32(data))
}

func feltFromInt(v *uint256.Int) (Felt, error) {
	if v.Cmp(prime) >= 0 {
		return Felt{}, ErrFeltOutOfRange
	}
	return Felt(v.Bytes32()), nil
}

func (f Felt) IsZero() bool {
	return f == Felt{}
}

// Uint64 returns the value of the felt if it fits into 64 bits.
func (f Felt) Uint64() (uint64, bool) {
	v := new(uint256.Int).SetBytes32(f[:])
	if !v.IsUint64() {
		return 0, false
	}
	return v.Uint64(), true
}

func (f Felt) String() string {
	return new(uint256.Int).SetBytes32(f[:]).Hex()
}

func (a Address) String() string           { return Felt(a).String() }
func (k Key) String() string               { return Felt(k).String() }
func (v Value) String() string             { return Felt(v).String() }
func (n Nonce) String() string             { return Felt(n).String() }
func (h ClassHash) String() string         { return Felt(h).String() }
func (h CompiledClassHash) String() string { return Felt(h).String() }

func (f Felt) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Felt) UnmarshalText(text []byte) error {
	v, err := FeltFromHex(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}
