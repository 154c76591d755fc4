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
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/0xsoniclabs/execstate/class"
	"github.com/0xsoniclabs/execstate/common"
	"github.com/0xsoniclabs/execstate/state"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Archive is an in-memory implementation of a state archive. Besides the
// history of committed blocks it may hold a pending update, which is only
// visible when reading at the pending block.
type Archive struct {
	mu          sync.RWMutex
	storage     map[slotKey]history[common.Value]
	nonces      map[common.Address]history[common.Nonce]
	classHashes map[common.Address]history[common.ClassHash]
	classes     map[common.ClassHash]declaredClass
	blockHashes []common.Felt // < indexed by block number
	pending     *overlay
	closed      bool
}

type slotKey struct {
	address common.Address
	key     common.Key
}

type declaredClass struct {
	block    uint64
	info     class.Info
	compiled class.Compiled
}

type version[T any] struct {
	block uint64
	value T
}

// history lists the versions of a value in ascending block order.
type history[T any] []version[T]

// at returns the newest version at or before the given block.
func (h history[T]) at(block uint64) (T, bool) {
	i := sort.Search(len(h), func(i int) bool { return h[i].block > block })
	if i == 0 {
		var zero T
		return zero, false
	}
	return h[i-1].value, true
}

func (h history[T]) set(block uint64, value T) history[T] {
	if len(h) > 0 && h[len(h)-1].block == block {
		h[len(h)-1].value = value
		return h
	}
	return append(h, version[T]{block: block, value: value})
}

type overlay struct {
	storage     map[slotKey]common.Value
	nonces      map[common.Address]common.Nonce
	classHashes map[common.Address]common.ClassHash
	classes     map[common.ClassHash]state.DeclaredClass
}

func NewArchive() *Archive {
	return &Archive{
		storage:     make(map[slotKey]history[common.Value]),
		nonces:      make(map[common.Address]history[common.Nonce]),
		classHashes: make(map[common.Address]history[common.ClassHash]),
		classes:     make(map[common.ClassHash]declaredClass),
	}
}

func (a *Archive) Apply(block uint64, update state.Update) error {
	if err := update.Check(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return state.ErrClosed
	}
	if next := uint64(len(a.blockHashes)); block != next {
		return fmt.Errorf("%w: expected block %d, got %d", state.ErrBlockOutOfOrder, next, block)
	}

	for _, deployed := range update.DeployedContracts {
		a.classHashes[deployed.Account] = a.classHashes[deployed.Account].set(block, deployed.ClassHash)
	}
	for _, nonce := range update.Nonces {
		a.nonces[nonce.Account] = a.nonces[nonce.Account].set(block, nonce.Nonce)
	}
	for _, slot := range update.Slots {
		key := slotKey{slot.Account, slot.Key}
		a.storage[key] = a.storage[key].set(block, slot.Value)
	}
	for _, declared := range update.DeclaredClasses {
		if _, exists := a.classes[declared.ClassHash]; exists {
			continue
		}
		a.classes[declared.ClassHash] = declaredClass{
			block:    block,
			info:     declared.Info,
			compiled: declared.Compiled,
		}
	}
	a.blockHashes = append(a.blockHashes, update.BlockHash)
	a.pending = nil
	return nil
}

// SetPending installs the content of a block under construction. It is
// visible to reads at the pending block until the next block is applied.
func (a *Archive) SetPending(update state.Update) error {
	if err := update.Check(); err != nil {
		return err
	}
	pending := &overlay{
		storage:     make(map[slotKey]common.Value),
		nonces:      make(map[common.Address]common.Nonce),
		classHashes: make(map[common.Address]common.ClassHash),
		classes:     make(map[common.ClassHash]state.DeclaredClass),
	}
	for _, deployed := range update.DeployedContracts {
		pending.classHashes[deployed.Account] = deployed.ClassHash
	}
	for _, update := range update.Nonces {
		pending.nonces[update.Account] = update.Nonce
	}
	for _, update := range update.Slots {
		pending.storage[slotKey{update.Account, update.Key}] = update.Value
	}
	for _, declared := range update.DeclaredClasses {
		if _, exists := pending.classes[declared.ClassHash]; !exists {
			pending.classes[declared.ClassHash] = declared
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return state.ErrClosed
	}
	a.pending = pending
	return nil
}

// resolve maps a block id to a committed block number. The second result is
// true if the pending overlay is to be consulted first, the third is false if
// there is no committed block to read from.
func (a *Archive) resolve(block state.BlockId) (uint64, bool, bool, error) {
	if a.closed {
		return 0, false, false, state.ErrClosed
	}
	switch id := block.(type) {
	case state.BlockNumber:
		if uint64(id) >= uint64(len(a.blockHashes)) {
			return 0, false, false, fmt.Errorf("%w: %v", state.ErrBlockNotFound, id)
		}
		return uint64(id), false, true, nil
	case state.PendingBlock:
		if len(a.blockHashes) == 0 {
			return 0, true, false, nil
		}
		return uint64(len(a.blockHashes) - 1), true, true, nil
	}
	return 0, false, false, fmt.Errorf("unsupported block id %v", block)
}

func (a *Archive) GetStorage(block state.BlockId, address common.Address, key common.Key) (common.Value, bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	number, pending, committed, err := a.resolve(block)
	if err != nil {
		return common.Value{}, false, err
	}
	slot := slotKey{address, key}
	if pending && a.pending != nil {
		if value, found := a.pending.storage[slot]; found {
			return value, true, nil
		}
	}
	if !committed {
		return common.Value{}, false, nil
	}
	value, found := a.storage[slot].at(number)
	return value, found, nil
}

func (a *Archive) GetNonce(block state.BlockId, address common.Address) (common.Nonce, bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	number, pending, committed, err := a.resolve(block)
	if err != nil {
		return common.Nonce{}, false, err
	}
	if pending && a.pending != nil {
		if nonce, found := a.pending.nonces[address]; found {
			return nonce, true, nil
		}
	}
	if !committed {
		return common.Nonce{}, false, nil
	}
	nonce, found := a.nonces[address].at(number)
	return nonce, found, nil
}

func (a *Archive) GetClassHash(block state.BlockId, address common.Address) (common.ClassHash, bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	number, pending, committed, err := a.resolve(block)
	if err != nil {
		return common.ClassHash{}, false, err
	}
	if pending && a.pending != nil {
		if hash, found := a.pending.classHashes[address]; found {
			return hash, true, nil
		}
	}
	if !committed {
		return common.ClassHash{}, false, nil
	}
	hash, found := a.classHashes[address].at(number)
	return hash, found, nil
}

func (a *Archive) getClass(block state.BlockId, classHash common.ClassHash) (class.Info, class.Compiled, bool, error) {
	number, pending, committed, err := a.resolve(block)
	if err != nil {
		return class.Info{}, class.Compiled{}, false, err
	}
	// Committed declarations take precedence over pending redeclarations.
	if committed {
		if declared, found := a.classes[classHash]; found && declared.block <= number {
			return declared.info, declared.compiled, true, nil
		}
	}
	if pending && a.pending != nil {
		if declared, found := a.pending.classes[classHash]; found {
			return declared.Info, declared.Compiled, true, nil
		}
	}
	return class.Info{}, class.Compiled{}, false, nil
}

func (a *Archive) GetClassInfo(block state.BlockId, classHash common.ClassHash) (class.Info, bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	info, _, found, err := a.getClass(block, classHash)
	return info, found, err
}

func (a *Archive) GetCompiledClass(block state.BlockId, classHash common.ClassHash) (class.Compiled, bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, compiled, found, err := a.getClass(block, classHash)
	return compiled, found, err
}

func (a *Archive) GetBlockHash(number uint64) (common.Felt, bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return common.Felt{}, false, state.ErrClosed
	}
	if number >= uint64(len(a.blockHashes)) {
		return common.Felt{}, false, nil
	}
	return a.blockHashes[number], true, nil
}

func (a *Archive) Head() (uint64, bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return 0, false, state.ErrClosed
	}
	if len(a.blockHashes) == 0 {
		return 0, false, nil
	}
	return uint64(len(a.blockHashes) - 1), true, nil
}

func (a *Archive) ClassHashes() ([]common.ClassHash, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return nil, state.ErrClosed
	}
	res := maps.Keys(a.classes)
	slices.SortFunc(res, func(x, y common.ClassHash) bool {
		return bytes.Compare(x[:], y[:]) < 0
	})
	return res, nil
}

func (a *Archive) Flush() error {
	return nil
}

func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}
