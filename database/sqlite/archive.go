// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package sqlite provides a state archive stored in an SQLite database file.
// Class bodies are kept snappy compressed.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/0xsoniclabs/execstate/class"
	"github.com/0xsoniclabs/execstate/common"
	"github.com/0xsoniclabs/execstate/state"
	"github.com/ethereum/go-ethereum/log"
	"github.com/golang/snappy"
	_ "github.com/mattn/go-sqlite3"
)

type Archive struct {
	db     *sql.DB
	log    log.Logger
	mu     sync.RWMutex
	next   uint64 // < number of the next block to be applied
	closed bool
}

// Open opens the archive in the given SQLite database file, creating the
// file and its tables if needed.
func Open(file string) (*Archive, error) {
	db, err := sql.Open("sqlite3", file+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database %s: %w", file, err)
	}
	if _, err := db.Exec(createTables); err != nil {
		return nil, errors.Join(fmt.Errorf("failed to create tables: %w", err), db.Close())
	}
	var next int64
	if err := db.QueryRow(lookupNextBlock).Scan(&next); err != nil {
		return nil, errors.Join(fmt.Errorf("failed to read head: %w", err), db.Close())
	}
	archive := &Archive{
		db:   db,
		log:  log.New("module", "sqlite"),
		next: uint64(next),
	}
	archive.log.Debug("Opened archive", "file", file, "blocks", next)
	return archive, nil
}

func (a *Archive) Apply(block uint64, update state.Update) (err error) {
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

	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	number := int64(block)
	for _, deployed := range update.DeployedContracts {
		if _, err := tx.Exec(insertClassHash, deployed.Account[:], number, deployed.ClassHash[:]); err != nil {
			return fmt.Errorf("failed to write class hash of %v: %w", deployed.Account, err)
		}
	}
	for _, nonce := range update.Nonces {
		if _, err := tx.Exec(insertNonce, nonce.Account[:], number, nonce.Nonce[:]); err != nil {
			return fmt.Errorf("failed to write nonce of %v: %w", nonce.Account, err)
		}
	}
	for _, slot := range update.Slots {
		if _, err := tx.Exec(insertStorage, slot.Account[:], slot.Key[:], number, slot.Value[:]); err != nil {
			return fmt.Errorf("failed to write storage of %v: %w", slot.Account, err)
		}
	}
	for _, declared := range update.DeclaredClasses {
		program := snappy.Encode(nil, declared.Compiled.Program)
		if _, err := tx.Exec(insertClass, declared.ClassHash[:], number, int(declared.Info.Kind), declared.Info.CompiledClassHash[:], program); err != nil {
			return fmt.Errorf("failed to write class %v: %w", declared.ClassHash, err)
		}
	}
	if _, err := tx.Exec(insertBlockHash, number, update.BlockHash[:]); err != nil {
		return fmt.Errorf("failed to write block hash: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit block %d: %w", block, err)
	}
	a.next = block + 1
	return nil
}

// resolve maps a block id to the block to read at. The result is false if
// there is no block to read from.
func (a *Archive) resolve(block state.BlockId) (int64, bool, error) {
	if a.closed {
		return 0, false, state.ErrClosed
	}
	switch id := block.(type) {
	case state.BlockNumber:
		if uint64(id) >= a.next {
			return 0, false, fmt.Errorf("%w: %v", state.ErrBlockNotFound, id)
		}
		return int64(id), true, nil
	case state.PendingBlock:
		if a.next == 0 {
			return 0, false, nil
		}
		return int64(a.next - 1), true, nil
	}
	return 0, false, fmt.Errorf("unsupported block id %v", block)
}

// lookupFelt runs a query producing a single felt at the resolved block. The
// block number is appended to the given arguments.
func (a *Archive) lookupFelt(block state.BlockId, query string, args ...any) (common.Felt, bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	number, ok, err := a.resolve(block)
	if err != nil || !ok {
		return common.Felt{}, false, err
	}
	var data []byte
	err = a.db.QueryRow(query, append(args, number)...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return common.Felt{}, false, nil
	}
	if err != nil {
		return common.Felt{}, false, err
	}
	res, err := common.FeltFromBytes(data)
	return res, err == nil, err
}

func (a *Archive) GetStorage(block state.BlockId, address common.Address, key common.Key) (common.Value, bool, error) {
	value, found, err := a.lookupFelt(block, lookupStorage, address[:], key[:])
	return common.Value(value), found, wrap("storage", err)
}

func (a *Archive) GetNonce(block state.BlockId, address common.Address) (common.Nonce, bool, error) {
	nonce, found, err := a.lookupFelt(block, lookupNonce, address[:])
	return common.Nonce(nonce), found, wrap("nonce", err)
}

func (a *Archive) GetClassHash(block state.BlockId, address common.Address) (common.ClassHash, bool, error) {
	hash, found, err := a.lookupFelt(block, lookupClassHash, address[:])
	return common.ClassHash(hash), found, wrap("class hash", err)
}

func (a *Archive) GetClassInfo(block state.BlockId, classHash common.ClassHash) (class.Info, bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	number, ok, err := a.resolve(block)
	if err != nil || !ok {
		return class.Info{}, false, wrap("class", err)
	}
	var kind int
	var compiledHash []byte
	err = a.db.QueryRow(lookupClassInfo, classHash[:], number).Scan(&kind, &compiledHash)
	if errors.Is(err, sql.ErrNoRows) {
		return class.Info{}, false, nil
	}
	if err != nil {
		return class.Info{}, false, wrap("class", err)
	}
	hash, err := common.FeltFromBytes(compiledHash)
	if err != nil {
		return class.Info{}, false, wrap("class", err)
	}
	return class.Info{Kind: class.Kind(kind), CompiledClassHash: common.CompiledClassHash(hash)}, true, nil
}

func (a *Archive) GetCompiledClass(block state.BlockId, classHash common.ClassHash) (class.Compiled, bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	number, ok, err := a.resolve(block)
	if err != nil || !ok {
		return class.Compiled{}, false, wrap("class", err)
	}
	var kind int
	var compressed []byte
	err = a.db.QueryRow(lookupClass, classHash[:], number).Scan(&kind, &compressed)
	if errors.Is(err, sql.ErrNoRows) {
		return class.Compiled{}, false, nil
	}
	if err != nil {
		return class.Compiled{}, false, wrap("class", err)
	}
	program, err := snappy.Decode(nil, compressed)
	if err != nil {
		return class.Compiled{}, false, fmt.Errorf("failed to decompress class %v: %w", classHash, err)
	}
	return class.Compiled{Kind: class.Kind(kind), Program: program}, true, nil
}

func (a *Archive) GetBlockHash(number uint64) (common.Felt, bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return common.Felt{}, false, state.ErrClosed
	}
	if number >= a.next {
		return common.Felt{}, false, nil
	}
	var data []byte
	err := a.db.QueryRow(lookupBlockHash, int64(number)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
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
	rows, err := a.db.Query(listClassHashes)
	if err != nil {
		return nil, wrap("class list", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			a.log.Error("Failed to close rows", "err", err)
		}
	}()
	var res []common.ClassHash
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, wrap("class list", err)
		}
		hash, err := common.FeltFromBytes(data)
		if err != nil {
			return nil, wrap("class list", err)
		}
		res = append(res, common.ClassHash(hash))
	}
	return res, wrap("class list", rows.Err())
}

func (a *Archive) Flush() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return state.ErrClosed
	}
	// Every applied block is committed in its own transaction.
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
