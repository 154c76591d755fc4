// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/0xsoniclabs/execstate/common"
	"github.com/0xsoniclabs/execstate/database/flat"
	"github.com/0xsoniclabs/execstate/database/ldb"
	"github.com/0xsoniclabs/execstate/database/memory"
	"github.com/0xsoniclabs/execstate/database/sqlite"
	"github.com/0xsoniclabs/execstate/state"
)

const ErrUnsupportedConfiguration = common.ConstError("unsupported configuration")

// Backend names an archive implementation.
type Backend string

const (
	Memory  Backend = "memory"
	LevelDb Backend = "leveldb"
	Sqlite  Backend = "sqlite"
)

// Backends lists all supported archive implementations.
func Backends() []Backend {
	return []Backend{Memory, LevelDb, Sqlite}
}

// Parameters configure the archive to be opened.
type Parameters struct {
	Backend   Backend
	Directory string // < ignored by the memory backend
	// Flat enables an in-memory copy of the head state in front of the
	// backend, which is then updated in the background.
	Flat bool
}

// Open opens the archive described by the given parameters. Persistent
// archives are created in the parameter's directory if it does not exist.
func Open(params Parameters) (state.Archive, error) {
	archive, err := open(params)
	if err != nil || !params.Flat {
		return archive, err
	}
	res, err := flat.NewArchive(archive)
	if err != nil {
		return nil, errors.Join(err, archive.Close())
	}
	return res, nil
}

func open(params Parameters) (state.Archive, error) {
	if params.Backend == Memory {
		return memory.NewArchive(), nil
	}
	if params.Directory == "" {
		return nil, fmt.Errorf("%w: no directory for %s backend", ErrUnsupportedConfiguration, params.Backend)
	}
	switch params.Backend {
	case LevelDb:
		archive, err := ldb.Open(filepath.Join(params.Directory, "leveldb"))
		if err != nil {
			return nil, err
		}
		return archive, nil
	case Sqlite:
		if err := os.MkdirAll(params.Directory, 0700); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", params.Directory, err)
		}
		archive, err := sqlite.Open(filepath.Join(params.Directory, "state.sqlite"))
		if err != nil {
			return nil, err
		}
		return archive, nil
	}
	return nil, fmt.Errorf("%w: unknown backend %q", ErrUnsupportedConfiguration, params.Backend)
}
