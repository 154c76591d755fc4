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

import (
	"fmt"

	"github.com/0xsoniclabs/execstate/chain"
	"github.com/0xsoniclabs/execstate/class"
	"github.com/0xsoniclabs/execstate/common"
	"github.com/ethereum/go-ethereum/log"
)

// BlockHashContractAddress is the reserved system contract exposing the
// hashes of past blocks as its storage, keyed by block number.
var BlockHashContractAddress = common.Address(common.FeltFromUint64(1))

// View is a Reader resolving all reads against the state a block is being
// executed on. It holds no mutable state and may be shared by concurrent
// executions.
type View struct {
	backend     Backend
	resolver    ClassResolver
	chain       chain.Config
	blockNumber uint64
	onTopOf     BlockRef
	log         log.Logger
}

// NewView creates a view for executing block blockNumber on top of the given
// block reference.
func NewView(
	backend Backend,
	resolver ClassResolver,
	config chain.Config,
	blockNumber uint64,
	onTopOf BlockRef,
) *View {
	if onTopOf == nil {
		onTopOf = Genesis{}
	}
	return &View{
		backend:     backend,
		resolver:    resolver,
		chain:       config,
		blockNumber: blockNumber,
		onTopOf:     onTopOf,
		log:         log.New("module", "stateview"),
	}
}

// BlockNumber returns the number of the block being executed.
func (v *View) BlockNumber() uint64 {
	return v.blockNumber
}

// OnTopOf returns the reference of the block reads are resolved against.
func (v *View) OnTopOf() BlockRef {
	return v.onTopOf
}

func (v *View) baseBlock() (BlockId, bool) {
	ref, ok := v.onTopOf.(OnTopOf)
	if !ok || ref.Block == nil {
		return nil, false
	}
	return ref.Block, true
}

func (v *View) GetStorageAt(address common.Address, key common.Key) (common.Value, error) {
	if address == BlockHashContractAddress {
		return v.getBlockHash(key)
	}
	v.log.Debug("Get storage", "contract", address, "key", key)
	block, ok := v.baseBlock()
	if !ok {
		return common.Value{}, nil
	}
	value, found, err := v.backend.GetStorage(block, address, key)
	if err != nil {
		v.log.Warn("Failed to retrieve storage value", "contract", address, "key", key, "block", block, "err", err)
		return common.Value{}, &ReadError{
			Op:      "storage value",
			Subject: fmt.Sprintf("contract %v at key %v", address, key),
		}
	}
	if !found {
		return common.Value{}, nil
	}
	return value, nil
}

// getBlockHash serves reads of the block hash contract. Hashes of blocks
// outside the disclosed range read as zero.
func (v *View) getBlockHash(key common.Key) (common.Value, error) {
	requested, ok := common.Felt(key).Uint64()
	if !ok {
		return common.Value{}, fmt.Errorf("%w: %v", ErrInvalidBlockNumberEncoding, key)
	}
	if !v.chain.BlockHashAllowed(v.blockNumber, requested) {
		v.log.Debug("Block hash outside of readable range", "requested", requested,
			"current", v.blockNumber, "range", v.chain.BlockHashRange(v.blockNumber))
		return common.Value{}, nil
	}
	hash, found, err := v.backend.GetBlockHash(requested)
	if err != nil {
		v.log.Warn("Failed to retrieve block hash", "number", requested, "err", err)
		return common.Value{}, &ReadError{
			Op:      "block hash",
			Subject: fmt.Sprintf("block number %d", requested),
		}
	}
	if !found {
		return common.Value{}, fmt.Errorf("%w: block %d", ErrHistoricalBlockHashUnavailable, requested)
	}
	return common.Value(hash), nil
}

func (v *View) GetNonceAt(address common.Address) (common.Nonce, error) {
	v.log.Debug("Get nonce", "contract", address)
	block, ok := v.baseBlock()
	if !ok {
		return common.Nonce{}, nil
	}
	nonce, found, err := v.backend.GetNonce(block, address)
	if err != nil {
		v.log.Warn("Failed to retrieve nonce", "contract", address, "block", block, "err", err)
		return common.Nonce{}, &ReadError{
			Op:      "nonce",
			Subject: fmt.Sprintf("contract %v", address),
		}
	}
	if !found {
		return common.Nonce{}, nil
	}
	return nonce, nil
}

// GetClassHashAt returns zero for contracts not deployed. Detecting those is
// left to the execution engine.
func (v *View) GetClassHashAt(address common.Address) (common.ClassHash, error) {
	v.log.Debug("Get class hash", "contract", address)
	block, ok := v.baseBlock()
	if !ok {
		return common.ClassHash{}, nil
	}
	hash, found, err := v.backend.GetClassHash(block, address)
	if err != nil {
		v.log.Warn("Failed to retrieve class hash", "contract", address, "block", block, "err", err)
		return common.ClassHash{}, &ReadError{
			Op:      "class hash",
			Subject: fmt.Sprintf("contract %v", address),
		}
	}
	if !found {
		return common.ClassHash{}, nil
	}
	return hash, nil
}

func (v *View) GetCompiledClass(classHash common.ClassHash) (*class.Executable, error) {
	v.log.Debug("Get compiled class", "class", classHash)
	block, ok := v.baseBlock()
	if !ok {
		return nil, &UndeclaredClassError{ClassHash: classHash}
	}
	compiled, found, err := v.backend.GetCompiledClass(block, classHash)
	if err != nil {
		v.log.Warn("Failed to retrieve compiled class", "class", classHash, "block", block, "err", err)
		return nil, &ReadError{
			Op:      "compiled class",
			Subject: fmt.Sprintf("class %v", classHash),
		}
	}
	if !found {
		return nil, &UndeclaredClassError{ClassHash: classHash}
	}
	executable, err := v.resolver.ToExecutable(compiled)
	if err != nil {
		return nil, &MalformedClassError{ClassHash: classHash, Err: err}
	}
	return executable, nil
}

func (v *View) GetCompiledClassHash(classHash common.ClassHash) (common.CompiledClassHash, error) {
	v.log.Debug("Get compiled class hash", "class", classHash)
	block, ok := v.baseBlock()
	if !ok {
		return common.CompiledClassHash{}, &UndeclaredClassError{ClassHash: classHash}
	}
	info, found, err := v.backend.GetClassInfo(block, classHash)
	if err != nil {
		v.log.Warn("Failed to retrieve compiled class hash", "class", classHash, "block", block, "err", err)
		return common.CompiledClassHash{}, &ReadError{
			Op:      "compiled class hash",
			Subject: fmt.Sprintf("class %v", classHash),
		}
	}
	if !found {
		return common.CompiledClassHash{}, &UndeclaredClassError{ClassHash: classHash}
	}
	return info.CompiledClassHash, nil
}
