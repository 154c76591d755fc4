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
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/0xsoniclabs/execstate/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const (
	ErrMalformed   = common.ConstError("malformed class")
	ErrUnknownKind = common.ConstError("unknown class kind")
)

const fieldPrime = "0x800000000000011000000000000000000000000000000000000000000000001"

// Resolver converts stored class bodies into their executable form.
type Resolver struct{}

func NewResolver() *Resolver {
	return &Resolver{}
}

// ToExecutable decodes and validates the given class body.
func (r *Resolver) ToExecutable(compiled Compiled) (*Executable, error) {
	switch compiled.Kind {
	case Sierra:
		return parseCasm(compiled.Program)
	case Legacy:
		return parseLegacy(compiled.Program)
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownKind, compiled.Kind)
}

type casmClass struct {
	Prime           *hexutil.Big                        `json:"prime"`
	CompilerVersion string                              `json:"compiler_version"`
	Bytecode        []common.Felt                       `json:"bytecode"`
	EntryPoints     map[EntryPointType][]casmEntryPoint `json:"entry_points_by_type"`
}

type casmEntryPoint struct {
	Selector common.Felt `json:"selector"`
	Offset   uint64      `json:"offset"`
	Builtins []string    `json:"builtins"`
}

func parseCasm(data []byte) (*Executable, error) {
	var casm casmClass
	if err := json.Unmarshal(data, &casm); err != nil {
		return nil, fmt.Errorf("%w: invalid CASM: %v", ErrMalformed, err)
	}
	if err := checkPrime(casm.Prime); err != nil {
		return nil, err
	}
	res := &Executable{
		Kind:            Sierra,
		CompilerVersion: casm.CompilerVersion,
		Bytecode:        casm.Bytecode,
		EntryPoints:     make(map[EntryPointType][]EntryPoint, len(entryPointTypes)),
	}
	for typ, entries := range casm.EntryPoints {
		converted := make([]EntryPoint, 0, len(entries))
		for _, entry := range entries {
			converted = append(converted, EntryPoint(entry))
		}
		res.EntryPoints[typ] = converted
	}
	if err := checkEntryPoints(res); err != nil {
		return nil, err
	}
	return res, nil
}

type legacyClass struct {
	Program struct {
		Prime    *hexutil.Big  `json:"prime"`
		Builtins []string      `json:"builtins"`
		Data     []common.Felt `json:"data"`
	} `json:"program"`
	EntryPoints map[EntryPointType][]legacyEntryPoint `json:"entry_points_by_type"`
}

type legacyEntryPoint struct {
	Selector common.Felt    `json:"selector"`
	Offset   hexutil.Uint64 `json:"offset"`
}

func parseLegacy(data []byte) (*Executable, error) {
	var legacy legacyClass
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, fmt.Errorf("%w: invalid legacy program: %v", ErrMalformed, err)
	}
	if err := checkPrime(legacy.Program.Prime); err != nil {
		return nil, err
	}
	res := &Executable{
		Kind:        Legacy,
		Bytecode:    legacy.Program.Data,
		EntryPoints: make(map[EntryPointType][]EntryPoint, len(entryPointTypes)),
	}
	for typ, entries := range legacy.EntryPoints {
		converted := make([]EntryPoint, 0, len(entries))
		for _, entry := range entries {
			converted = append(converted, EntryPoint{
				Selector: entry.Selector,
				Offset:   uint64(entry.Offset),
				Builtins: legacy.Program.Builtins,
			})
		}
		res.EntryPoints[typ] = converted
	}
	if err := checkEntryPoints(res); err != nil {
		return nil, err
	}
	return res, nil
}

func checkPrime(prime *hexutil.Big) error {
	// Older artifacts omit the prime; those are compiled for the Starknet field.
	if prime == nil {
		return nil
	}
	if prime.String() != fieldPrime {
		return fmt.Errorf("%w: unsupported prime %v", ErrMalformed, prime)
	}
	return nil
}

// checkEntryPoints verifies that every entry point references the program and
// that selectors are strictly ascending within each type.
func checkEntryPoints(e *Executable) error {
	for typ, entries := range e.EntryPoints {
		known := false
		for _, t := range entryPointTypes {
			known = known || t == typ
		}
		if !known {
			return fmt.Errorf("%w: unknown entry point type %q", ErrMalformed, typ)
		}
		for i, entry := range entries {
			if entry.Offset >= uint64(len(e.Bytecode)) {
				return fmt.Errorf("%w: %s entry point %v has offset %d beyond program of length %d",
					ErrMalformed, typ, entry.Selector, entry.Offset, len(e.Bytecode))
			}
			if i > 0 && bytes.Compare(entries[i-1].Selector[:], entry.Selector[:]) >= 0 {
				return fmt.Errorf("%w: %s entry points are not sorted by selector", ErrMalformed, typ)
			}
		}
	}
	return nil
}
