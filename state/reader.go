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

//go:generate mockgen -source reader.go -destination reader_mocks.go -package state

import (
	"github.com/0xsoniclabs/execstate/class"
	"github.com/0xsoniclabs/execstate/common"
)

// Reader is the read access to the state required by transaction execution.
// All writes of an execution are collected by the engine and applied
// afterwards, so no mutating operations are offered.
type Reader interface {
	// GetStorageAt returns the value of a storage cell or zero if the cell was
	// never written.
	GetStorageAt(address common.Address, key common.Key) (common.Value, error)

	// GetNonceAt returns the nonce of a contract or zero if unknown.
	GetNonceAt(address common.Address) (common.Nonce, error)

	// GetClassHashAt returns the class of a contract or zero if the contract
	// is not deployed.
	GetClassHashAt(address common.Address) (common.ClassHash, error)

	// GetCompiledClass returns the executable form of a declared class.
	GetCompiledClass(classHash common.ClassHash) (*class.Executable, error)

	// GetCompiledClassHash returns the compiled class hash of a declared class.
	GetCompiledClassHash(classHash common.ClassHash) (common.CompiledClassHash, error)
}

// Backend is the read surface of a state database. Every lookup is resolved
// against the state of a given block. The boolean results signal whether an
// entry exists.
type Backend interface {
	GetStorage(block BlockId, address common.Address, key common.Key) (common.Value, bool, error)
	GetNonce(block BlockId, address common.Address) (common.Nonce, bool, error)
	GetClassHash(block BlockId, address common.Address) (common.ClassHash, bool, error)
	GetClassInfo(block BlockId, classHash common.ClassHash) (class.Info, bool, error)
	GetCompiledClass(block BlockId, classHash common.ClassHash) (class.Compiled, bool, error)

	// GetBlockHash returns the hash of a committed block.
	GetBlockHash(number uint64) (common.Felt, bool, error)
}

// ClassResolver converts stored class bodies into the form consumed by the
// execution engine.
type ClassResolver interface {
	ToExecutable(compiled class.Compiled) (*class.Executable, error)
}
