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
	"fmt"

	"github.com/0xsoniclabs/execstate/class"
	"github.com/0xsoniclabs/execstate/common"
	"github.com/golang/snappy"
)

func entryKey(prefix byte, parts ...[]byte) []byte {
	size := 1
	for _, part := range parts {
		size += len(part)
	}
	res := make([]byte, 0, size+8)
	res = append(res, prefix)
	for _, part := range parts {
		res = append(res, part...)
	}
	return res
}

func versionedKey(prefix byte, block uint64, parts ...[]byte) []byte {
	return binary.BigEndian.AppendUint64(entryKey(prefix, parts...), block)
}

func classKey(hash common.ClassHash) []byte {
	return entryKey(classPrefix, hash[:])
}

func blockHashKey(block uint64) []byte {
	return binary.BigEndian.AppendUint64([]byte{blockHashPrefix}, block)
}

const classHeaderSize = 8 + 1 + common.FeltSize

type classRecord struct {
	block   uint64
	info    class.Info
	program []byte // < snappy compressed
}

func encodeClass(block uint64, info class.Info, compiled class.Compiled) []byte {
	res := make([]byte, 0, classHeaderSize+snappy.MaxEncodedLen(len(compiled.Program)))
	res = binary.BigEndian.AppendUint64(res, block)
	res = append(res, byte(info.Kind))
	res = append(res, info.CompiledClassHash[:]...)
	return append(res, snappy.Encode(nil, compiled.Program)...)
}

func decodeClass(data []byte) (*classRecord, error) {
	if len(data) < classHeaderSize {
		return nil, fmt.Errorf("class record too short: %d bytes", len(data))
	}
	kind := class.Kind(data[8])
	if !kind.Valid() {
		return nil, fmt.Errorf("invalid class kind %v", kind)
	}
	hash, err := common.FeltFromBytes(data[9:classHeaderSize])
	if err != nil {
		return nil, err
	}
	return &classRecord{
		block: binary.BigEndian.Uint64(data[:8]),
		info: class.Info{
			Kind:              kind,
			CompiledClassHash: common.CompiledClassHash(hash),
		},
		program: data[classHeaderSize:],
	}, nil
}
