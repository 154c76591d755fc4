// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package sqlite

const createTables = `
CREATE TABLE IF NOT EXISTS storage (
	address BLOB NOT NULL,
	slot BLOB NOT NULL,
	block INTEGER NOT NULL,
	value BLOB NOT NULL,
	PRIMARY KEY (address, slot, block)
);
CREATE TABLE IF NOT EXISTS nonces (
	address BLOB NOT NULL,
	block INTEGER NOT NULL,
	nonce BLOB NOT NULL,
	PRIMARY KEY (address, block)
);
CREATE TABLE IF NOT EXISTS class_hashes (
	address BLOB NOT NULL,
	block INTEGER NOT NULL,
	class_hash BLOB NOT NULL,
	PRIMARY KEY (address, block)
);
CREATE TABLE IF NOT EXISTS classes (
	class_hash BLOB PRIMARY KEY,
	block INTEGER NOT NULL,
	kind INTEGER NOT NULL,
	compiled_class_hash BLOB NOT NULL,
	program BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS block_hashes (
	block INTEGER PRIMARY KEY,
	hash BLOB NOT NULL
);`

const (
	insertStorage   = `INSERT OR REPLACE INTO storage (address, slot, block, value) VALUES (?, ?, ?, ?)`
	insertNonce     = `INSERT OR REPLACE INTO nonces (address, block, nonce) VALUES (?, ?, ?)`
	insertClassHash = `INSERT OR REPLACE INTO class_hashes (address, block, class_hash) VALUES (?, ?, ?)`
	// A class keeps the block and content of its first declaration.
	insertClass     = `INSERT OR IGNORE INTO classes (class_hash, block, kind, compiled_class_hash, program) VALUES (?, ?, ?, ?, ?)`
	insertBlockHash = `INSERT INTO block_hashes (block, hash) VALUES (?, ?)`
)

const (
	lookupStorage   = `SELECT value FROM storage WHERE address = ? AND slot = ? AND block <= ? ORDER BY block DESC LIMIT 1`
	lookupNonce     = `SELECT nonce FROM nonces WHERE address = ? AND block <= ? ORDER BY block DESC LIMIT 1`
	lookupClassHash = `SELECT class_hash FROM class_hashes WHERE address = ? AND block <= ? ORDER BY block DESC LIMIT 1`
	lookupClassInfo = `SELECT kind, compiled_class_hash FROM classes WHERE class_hash = ? AND block <= ?`
	lookupClass     = `SELECT kind, program FROM classes WHERE class_hash = ? AND block <= ?`
	lookupBlockHash = `SELECT hash FROM block_hashes WHERE block = ?`
	lookupNextBlock = `SELECT COALESCE(MAX(block) + 1, 0) FROM block_hashes`
	listClassHashes = `SELECT class_hash FROM classes ORDER BY class_hash`
)
