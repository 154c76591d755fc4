// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package flat

import (
	"errors"
	"fmt"
	"sync"

	"github.com/0xsoniclabs/execstate/class"
	"github.com/0xsoniclabs/execstate/common"
	"github.com/0xsoniclabs/execstate/state"
	"github.com/ethereum/go-ethereum/log"
)

// Archive keeps a flat in-memory copy of the head state in front of another
// archive. Blocks are applied to the flat copy right away and forwarded to the
// wrapped archive by a background worker. Reads of older blocks, and reads of
// head entries not written since the archive was wrapped, wait for the worker
// to catch up and are served by the wrapped archive.
type Archive struct {
	// Head state written since wrapping the backend.
	storage     map[slotKey]common.Value
	nonces      map[common.Address]common.Nonce
	classHashes map[common.Address]common.ClassHash
	classInfos  map[common.ClassHash]class.Info
	classBodies map[common.ClassHash]class.Compiled

	backend  state.Archive
	commands chan<- command  // < commands to background worker
	syncs    <-chan error    // < signalled when syncing with background worker
	done     <-chan struct{} // < when background work is done

	mu     sync.RWMutex
	next   uint64 // < number of the next block to be applied
	closed bool
}

type slotKey struct {
	address common.Address
	key     common.Key
}

// command is either a block to be forwarded or, if update is nil, a request
// to report the issues encountered since the last sync.
type command struct {
	block  uint64
	update *state.Update
}

// NewArchive wraps the given archive. The wrapped archive is owned by the
// result and closed with it.
func NewArchive(backend state.Archive) (*Archive, error) {
	next := uint64(0)
	if head, found, err := backend.Head(); err != nil {
		return nil, err
	} else if found {
		next = head + 1
	}

	commands := make(chan command, 1024)
	syncs := make(chan error)
	done := make(chan struct{})

	go func() {
		defer close(done)
		var issues []error
		extraIssues := 0
		for command := range commands {
			if command.update != nil {
				err := backend.Apply(command.block, *command.update)
				if err != nil {
					log.Warn("Failed to forward block", "block", command.block, "err", err)
					if len(issues) < 10 {
						issues = append(issues, fmt.Errorf("block %d: %w", command.block, err))
					} else {
						extraIssues++
					}
				}
			} else { // sync command
				if extraIssues > 0 {
					issues = append(issues, fmt.Errorf("%d additional errors truncated", extraIssues))
					extraIssues = 0
				}
				syncs <- errors.Join(issues...)
				issues = issues[:0]
			}
		}
	}()

	return &Archive{
		storage:     make(map[slotKey]common.Value),
		nonces:      make(map[common.Address]common.Nonce),
		classHashes: make(map[common.Address]common.ClassHash),
		classInfos:  make(map[common.ClassHash]class.Info),
		classBodies: make(map[common.ClassHash]class.Compiled),
		backend:     backend,
		commands:    commands,
		syncs:       syncs,
		done:        done,
		next:        next,
	}, nil
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
	if block != a.next {
		return fmt.Errorf("%w: expected block %d, got %d", state.ErrBlockOutOfOrder, a.next, block)
	}

	// A class keeps its first declaration, which may be known to the backend
	// only.
	known := make([]bool, len(update.DeclaredClasses))
	seen := make(map[common.ClassHash]bool, len(update.DeclaredClasses))
	for i, declared := range update.DeclaredClasses {
		if seen[declared.ClassHash] {
			known[i] = true
			continue
		}
		seen[declared.ClassHash] = true
		found, err := a.isDeclared(declared.ClassHash)
		if err != nil {
			return err
		}
		known[i] = found
	}

	for _, deployed := range update.DeployedContracts {
		a.classHashes[deployed.Account] = deployed.ClassHash
	}
	for _, nonce := range update.Nonces {
		a.nonces[nonce.Account] = nonce.Nonce
	}
	for _, slot := range update.Slots {
		a.storage[slotKey{slot.Account, slot.Key}] = slot.Value
	}
	for i, declared := range update.DeclaredClasses {
		if !known[i] {
			a.classInfos[declared.ClassHash] = declared.Info
			a.classBodies[declared.ClassHash] = declared.Compiled
		}
	}
	a.next = block + 1

	// Update the backend in the background.
	a.commands <- command{block: block, update: &update}
	return nil
}

func (a *Archive) isDeclared(hash common.ClassHash) (bool, error) {
	if _, found := a.classInfos[hash]; found {
		return true, nil
	}
	if a.next == 0 {
		return false, nil
	}
	if err := a.sync(); err != nil {
		return false, err
	}
	_, found, err := a.backend.GetClassInfo(state.BlockNumber(a.next-1), hash)
	return found, err
}

// sync waits for the background worker to process all pending blocks and
// returns the issues encountered since the last sync.
func (a *Archive) sync() error {
	a.commands <- command{}
	return <-a.syncs
}

// resolve reports whether the given block is the head, served by the flat
// copy.
func (a *Archive) resolve(block state.BlockId) (bool, error) {
	if a.closed {
		return false, state.ErrClosed
	}
	switch id := block.(type) {
	case state.BlockNumber:
		if uint64(id) >= a.next {
			return false, fmt.Errorf("%w: %v", state.ErrBlockNotFound, id)
		}
		return uint64(id)+1 == a.next, nil
	case state.PendingBlock:
		return true, nil
	}
	return false, fmt.Errorf("unsupported block id %v", block)
}

// get serves a read from the flat copy if possible and from the backend
// otherwise.
func get[K comparable, V any](
	a *Archive,
	block state.BlockId,
	flat map[K]V,
	key K,
	fallback func(state.BlockId) (V, bool, error),
) (V, bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var zero V
	head, err := a.resolve(block)
	if err != nil {
		return zero, false, err
	}
	if head {
		if value, found := flat[key]; found {
			return value, true, nil
		}
		if a.next == 0 {
			return zero, false, nil
		}
		block = state.BlockNumber(a.next - 1)
	}
	if err := a.sync(); err != nil {
		return zero, false, err
	}
	return fallback(block)
}

func (a *Archive) GetStorage(block state.BlockId, address common.Address, key common.Key) (common.Value, bool, error) {
	return get(a, block, a.storage, slotKey{address, key}, func(block state.BlockId) (common.Value, bool, error) {
		return a.backend.GetStorage(block, address, key)
	})
}

func (a *Archive) GetNonce(block state.BlockId, address common.Address) (common.Nonce, bool, error) {
	return get(a, block, a.nonces, address, func(block state.BlockId) (common.Nonce, bool, error) {
		return a.backend.GetNonce(block, address)
	})
}

func (a *Archive) GetClassHash(block state.BlockId, address common.Address) (common.ClassHash, bool, error) {
	return get(a, block, a.classHashes, address, func(block state.BlockId) (common.ClassHash, bool, error) {
		return a.backend.GetClassHash(block, address)
	})
}

func (a *Archive) GetClassInfo(block state.BlockId, classHash common.ClassHash) (class.Info, bool, error) {
	return get(a, block, a.classInfos, classHash, func(block state.BlockId) (class.Info, bool, error) {
		return a.backend.GetClassInfo(block, classHash)
	})
}

func (a *Archive) GetCompiledClass(block state.BlockId, classHash common.ClassHash) (class.Compiled, bool, error) {
	return get(a, block, a.classBodies, classHash, func(block state.BlockId) (class.Compiled, bool, error) {
		return a.backend.GetCompiledClass(block, classHash)
	})
}

func (a *Archive) GetBlockHash(number uint64) (common.Felt, bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return common.Felt{}, false, state.ErrClosed
	}
	if err := a.sync(); err != nil {
		return common.Felt{}, false, err
	}
	return a.backend.GetBlockHash(number)
}

func (a *Archive) Head() (uint64, bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return 0, false, state.ErrClosed
	}
	if a.next == 0 {
		return 0, false, nil
	}
	return a.next - 1, true, nil
}

func (a *Archive) ClassHashes() ([]common.ClassHash, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return nil, state.ErrClosed
	}
	if err := a.sync(); err != nil {
		return nil, err
	}
	return a.backend.ClassHashes()
}

// --- Operational Features ---

func (a *Archive) Flush() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return state.ErrClosed
	}
	if err := a.sync(); err != nil {
		return err
	}
	return a.backend.Flush()
}

func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	err := a.sync()
	close(a.commands)
	<-a.done
	return errors.Join(err, a.backend.Close())
}
