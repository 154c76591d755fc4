// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/0xsoniclabs/execstate/class"
	"github.com/0xsoniclabs/execstate/common"
	"github.com/0xsoniclabs/execstate/common/future"
	"github.com/0xsoniclabs/execstate/state"
	"github.com/0xsoniclabs/tracy"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var workersFlag = cli.IntFlag{
	Name:  "workers",
	Usage: "number of classes checked in parallel",
	Value: 8,
}

var Check = cli.Command{
	Action: addPerformanceDiagnoses(check),
	Name:   "check",
	Usage:  "checks that every block has a hash and every declared class resolves to an executable",
	Flags:  []cli.Flag{&workersFlag, &cpuProfileFlag},
}

func check(context *cli.Context) error {
	return withArchive(context, func(archive state.Archive) error {
		fmt.Fprintf(context.App.Writer, "Checking archive ...\n")
		err := checkArchive(archive, class.NewResolver(), context.Int(workersFlag.Name))
		if err == nil {
			fmt.Fprintf(context.App.Writer, "All checks passed!\n")
		}
		return err
	})
}

// checkArchive verifies the block hashes and classes of the given archive.
func checkArchive(archive state.Archive, resolver state.ClassResolver, workers int) error {
	head, found, err := archive.Head()
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	var errs []error
	for block := uint64(0); block <= head; block++ {
		if _, found, err := archive.GetBlockHash(block); err != nil {
			return err
		} else if !found {
			errs = append(errs, fmt.Errorf("block %d has no hash", block))
		}
	}
	hashes, err := archive.ClassHashes()
	if err != nil {
		return err
	}
	log.Info("Checking classes", "classes", len(hashes), "workers", workers)
	return errors.Join(append(errs, checkClasses(archive, resolver, hashes, workers)...)...)
}

// checkClasses resolves all given classes in parallel. The reported errors
// are sorted by class hash.
func checkClasses(
	backend state.Backend,
	resolver state.ClassResolver,
	hashes []common.ClassHash,
	workers int,
) []error {
	if workers < 1 {
		workers = 1
	}
	results := make(chan future.Result[common.ClassHash], len(hashes))
	pos := atomic.Int32{}
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			zone := tracy.ZoneBegin("check::worker")
			defer zone.End()
			for {
				next := int(pos.Add(1) - 1)
				if next >= len(hashes) {
					return
				}
				hash := hashes[next]
				if err := checkClass(backend, resolver, hash); err != nil {
					results <- future.Failed(hash, err)
				} else {
					results <- future.Ok(hash)
				}
			}
		}()
	}
	wg.Wait()
	close(results)

	succeeded, failures := future.Partition(results)
	log.Info("Checked classes", "ok", len(succeeded), "failed", len(failures))

	failed := maps.Keys(failures)
	slices.SortFunc(failed, func(a, b common.ClassHash) bool {
		return bytes.Compare(a[:], b[:]) < 0
	})
	res := make([]error, 0, len(failed))
	for _, hash := range failed {
		res = append(res, failures[hash])
	}
	return res
}

// checkClass checks that the stored metadata of a class matches its body and
// that the body resolves to an executable.
func checkClass(backend state.Backend, resolver state.ClassResolver, hash common.ClassHash) error {
	info, found, err := backend.GetClassInfo(state.PendingBlock{}, hash)
	if err != nil {
		return fmt.Errorf("class %v: %w", hash, err)
	}
	if !found {
		return fmt.Errorf("class %v: listed but not found", hash)
	}
	compiled, found, err := backend.GetCompiledClass(state.PendingBlock{}, hash)
	if err != nil {
		return fmt.Errorf("class %v: %w", hash, err)
	}
	if !found {
		return fmt.Errorf("class %v: body not found", hash)
	}
	if info.Kind != compiled.Kind {
		return fmt.Errorf("class %v: declared as %v but stored as %v", hash, info.Kind, compiled.Kind)
	}
	if info.Kind == class.Legacy && info.CompiledClassHash != (common.CompiledClassHash{}) {
		return fmt.Errorf("class %v: legacy class with compiled class hash %v", hash, info.CompiledClassHash)
	}
	if _, err := resolver.ToExecutable(compiled); err != nil {
		return fmt.Errorf("class %v: %w", hash, err)
	}
	return nil
}
