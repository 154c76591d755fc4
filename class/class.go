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
	"fmt"

	"github.com/0xsoniclabs/execstate/common"
	"golang.org/x/exp/slices"
)

// Kind distinguishes the class formats supported by the execution engine.
type Kind uint8

const (
	// Legacy classes are Cairo 0 programs executed as stored.
	Legacy Kind = iota + 1
	// Sierra classes are executed through their compiled CASM form.
	Sierra
)

func (k Kind) String() string {
	switch k {
	case Legacy:
		return "legacy"
	case Sierra:
		return "sierra"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

func (k Kind) Valid() bool {
	return k == Legacy || k == Sierra
}

// Info is the metadata recorded for a declared class.
type Info struct {
	Kind Kind
	// CompiledClassHash is the hash of the CASM of a Sierra class. It is zero
	// for legacy classes.
	CompiledClassHash common.CompiledClassHash
}

// Compiled is the stored representation of a class body: the CASM JSON of a
// Sierra class or the program JSON of a legacy class.
type Compiled struct {
	Kind    Kind
	Program []byte
}

type EntryPointType string

const (
	External    EntryPointType = "EXTERNAL"
	L1Handler   EntryPointType = "L1_HANDLER"
	Constructor EntryPointType = "CONSTRUCTOR"
)

var entryPointTypes = []EntryPointType{External, L1Handler, Constructor}

type EntryPoint struct {
	Selector common.Felt
	Offset   uint64
	Builtins []string
}

// Executable is the form of a class consumed by the execution engine.
// Entry points of each type are sorted by selector.
type Executable struct {
	Kind            Kind
	CompilerVersion string
	Bytecode        []common.Felt
	EntryPoints     map[EntryPointType][]EntryPoint
}

// EntryPoint looks up the entry point of the given type and selector.
func (e *Executable) EntryPoint(typ EntryPointType, selector common.Felt) (EntryPoint, bool) {
	entries := e.EntryPoints[typ]
	pos, found := slices.BinarySearchFunc(entries, selector, func(ep EntryPoint, s common.Felt) int {
		return bytes.Compare(ep.Selector[:], s[:])
	})
	if !found {
		return EntryPoint{}, false
	}
	return entries[pos], true
}
