// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package ldb

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/0xsoniclabs/execstate/class"
	"github.com/0xsoniclabs/execstate/common"
	"github.com/0xsoniclabs/execstate/state"
	"github.com/golang/snappy"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Key prefixes of the tables stored in the database. Versioned entries are
// suffixed by the big-endian block number they were written in, such that the
// newest version at or before a block is the last key in a range scan.
const (
	storagePrefix   = 'S' // address | key | block -> value
	noncePrefix     = 'N' // address | block -> nonce
	classHashPrefix = 'C' // address | block -> class hash
	classPrefix     = 'D' // class hash -> block | kind | compiled class hash | snappy(program)
	blockHashPrefix = 'H' // block -> block hash
)

var headKey = []byte("head")

// Archive is a state archive persisted in a LevelDB instance.
type Archive struct {
	db     *leveldb.DB
	mu     sync.RWMutex
	next   uint64 // < number of the next block to be applied
	closed bool
}

// Open opens the archive stored in the given directory, creating it if
// needed.
func Open(dir string) (*Archive, error) {
	db, err := leveldb.OpenFile(dir, &opt.Options{
		BlockCacheCapacity: blockCacheCapacity(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open LevelDB in %s: %w", dir, err)
	}
	next := uint64(0)
	data, err := db.Get(headKey, nil)
	if err == nil {
		if len(data) != 8 {
			return nil, errors.Join(fmt.Errorf("corrupted head record"), db.Close())
		}
		next = binary.BigEndian.Uint64(data)
	} else if !errors.Is(err, leveldb.ErrNotFound) {
		return nil, errors.Join(fmt.Errorf("failed to read head: %w", err), db.Close())
	}
	return &Archive{db: db, next: next}, nil
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

	batch := new(leveldb.Batch)
	for _, deployed := range update.DeployedContracts {
		batch.Put(versionedKey(classHashPrefix, block, deployed.Account[:]), deployed.ClassHash[:])
	}
	for _, nonce := range update.Nonces {
		batch.Put(versionedKey(noncePrefix, block, nonce.Account[:]), nonce.Nonce[:])
	}
	for _, slot := range update.Slots {
		batch.Put(versionedKey(storagePrefix, block, slot.Account[:], slot.Key[:]), slot.Value[:])
	}
	// Pending puts are invisible to db.Get, so redeclarations within this
	// update are tracked separately.
	seen := make(map[common.ClassHash]bool, len(update.DeclaredClasses))
	for _, declared := range update.DeclaredClasses {
		if seen[declared.ClassHash] {
			continue
		}
		seen[declared.ClassHash] = true
		key := classKey(declared.ClassHash)
		if _, err := a.db.Get(key, nil); err == nil {
			continue
		} else if !errors.Is(err, leveldb.ErrNotFound) {
			return fmt.Errorf("failed to check class %v: %w", declared.ClassHash, err)
		}
		batch.Put(key, encodeClass(block, declared.Info, declared.Compiled))
	}
	batch.Put(blockHashKey(block), update.BlockHash[:])
	batch.Put(headKey, binary.BigEndian.AppendUint64(nil, block+1))

	if err := a.db.Write(batch, nil); err != nil {
		return fmt.Errorf("failed to write block %d: %w", block, err)
	}
	a.next = block + 1
	return nil
}

// resolve maps a block id to the block to read at. The result is false if
// there is no block to read from.
func (a *Archive) resolve(block state.BlockId) (uint64, bool, error) {
	if a.closed {
		return 0, false, state.ErrClosed
	}
	switch id := block.(type) {
	case state.BlockNumber:
		if uint64(id) >= a.next {
			return 0, false, fmt.Errorf("%w: %v", state.ErrBlockNotFound, id)
		}
		return uint64(id), true, nil
	case state.PendingBlock:
		if a.next == 0 {
			return 0, false, nil
		}
		return a.next - 1, true, nil
	}
	return 0, false, fmt.Errorf("unsupported block id %v", block)
}

// getVersioned fetches the newest version of the entry identified by the
// given parts written at or before the given block.
func (a *Archive) getVersioned(block state.BlockId, prefix byte, parts ...[]byte) ([]byte, bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	number, ok, err := a.resolve(block)
	if err != nil || !ok {
		return nil, false, err
	}
	base := entryKey(prefix, parts...)
	limit := util.BytesPrefix(base).Limit
	if number < math.MaxUint64 {
		limit = binary.BigEndian.AppendUint64(append([]byte{}, base...), number+1)
	}
	iter := a.db.NewIterator(&util.Range{Start: base, Limit: limit}, nil)
	defer iter.Release()
	if !iter.Last() {
		return nil, false, iter.Error()
	}
	value := append([]byte{}, iter.Value()...)
	return value, true, iter.Error()
}

func (a *Archive) GetStorage(block state.BlockId, address common.Address, key common.Key) (common.Value, bool, error) {
	data, found, err := a.getVersioned(block, storagePrefix, address[:], key[:])
	if err != nil || !found {
		return common.Value{}, false, wrap("storage", err)
	}
	value, err := common.FeltFromBytes(data)
	return common.Value(value), true, wrap("storage", err)
}

func (a *Archive) GetNonce(block state.BlockId, address common.Address) (common.Nonce, bool, error) {
	data, found, err := a.getVersioned(block, noncePrefix, address[:])
	if err != nil || !found {
		return common.Nonce{}, false, wrap("nonce", err)
	}
	nonce, err := common.FeltFromBytes(data)
	return common.Nonce(nonce), true, wrap("nonce", err)
}

func (a *Archive) GetClassHash(block state.BlockId, address common.Address) (common.ClassHash, bool, error) {
	data, found, err := a.getVersioned(block, classHashPrefix, address[:])
	if err != nil || !found {
		return common.ClassHash{}, false, wrap("class hash", err)
	}
	hash, err := common.FeltFromBytes(data)
	return common.ClassHash(hash), true, wrap("class hash", err)
}

func (a *Archive) getClass(block state.BlockId, classHash common.ClassHash) (*classRecord, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	number, ok, err := a.resolve(block)
	if err != nil || !ok {
		return nil, err
	}
	data, err := a.db.Get(classKey(classHash), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	record, err := decodeClass(data)
	if err != nil {
		return nil, err
	}
	if record.block > number {
		return nil, nil
	}
	return record, nil
}

func (a *Archive) GetClassInfo(block state.BlockId, classHash common.ClassHash) (class.Info, bool, error) {
	record, err := a.getClass(block, classHash)
	if err != nil || record == nil {
		return class.Info{}, false, wrap("class", err)
	}
	return record.info, true, nil
}

func (a *Archive) GetCompiledClass(block state.BlockId, classHash common.ClassHash) (class.Compiled, bool, error) {
	record, err := a.getClass(block, classHash)
	if err != nil || record == nil {
		return class.Compiled{}, false, wrap("class", err)
	}
	program, err := snappy.Decode(nil, record.program)
	if err != nil {
		return class.Compiled{}, false, fmt.Errorf("failed to decompress class %v: %w", classHash, err)
	}
	return class.Compiled{Kind: record.info.Kind, Program: program}, true, nil
}

func (a *Archive) GetBlockHash(number uint64) (common.Felt, bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return common.Felt{}, false, state.ErrClosed
	}
	data, err := a.db.Get(blockHashKey(number), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return common.Felt{}, false, nil
	}
	if err != nil {
		return common.Felt{}, false, wrap("block hash", err)
	}
	hash, err := common.FeltFromBytes(data)
	return hash, err == nil, wrap("block hash", err)
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
	iter := a.db.NewIterator(util.BytesPrefix([]byte{classPrefix}), nil)
	defer iter.Release()
	var res []common.ClassHash
	for iter.Next() {
		var hash common.ClassHash
		copy(hash[:], iter.Key()[1:])
		res = append(res, hash)
	}
	return res, wrap("class list", iter.Error())
}

func (a *Archive) Flush() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return state.ErrClosed
	}
	// LevelDB persists every write batch in its journal.
	return nil
}

func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	return a.db.Close()
}

func wrap(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to read %s: %w", what, err)
}
