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
	"fmt"
	"os"
	"path/filepath"

	"github.com/0xsoniclabs/execstate/class"
	"github.com/0xsoniclabs/execstate/common"
	"github.com/0xsoniclabs/execstate/state"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

var Import = cli.Command{
	Action:    addPerformanceDiagnoses(doImport),
	Name:      "import",
	Usage:     "appends the blocks listed in a YAML file to the archive",
	ArgsUsage: "<file>",
	Flags:     []cli.Flag{&cpuProfileFlag},
}

// blockFile is the YAML layout of an import file. Class bodies are either
// given inline or as a path relative to the import file.
type blockFile struct {
	Blocks []struct {
		Number            *uint64     `yaml:"number"`
		BlockHash         common.Felt `yaml:"block_hash"`
		DeployedContracts []struct {
			Address   common.Felt `yaml:"address"`
			ClassHash common.Felt `yaml:"class_hash"`
		} `yaml:"deployed_contracts"`
		Nonces []struct {
			Address common.Felt `yaml:"address"`
			Nonce   common.Felt `yaml:"nonce"`
		} `yaml:"nonces"`
		Storage []struct {
			Address common.Felt `yaml:"address"`
			Key     common.Felt `yaml:"key"`
			Value   common.Felt `yaml:"value"`
		} `yaml:"storage"`
		DeclaredClasses []struct {
			ClassHash         common.Felt `yaml:"class_hash"`
			Kind              string      `yaml:"kind"`
			CompiledClassHash common.Felt `yaml:"compiled_class_hash"`
			Program           string      `yaml:"program"`
			ProgramFile       string      `yaml:"program_file"`
		} `yaml:"declared_classes"`
	} `yaml:"blocks"`
}

func doImport(context *cli.Context) error {
	if context.Args().Len() != 1 {
		return fmt.Errorf("missing import file")
	}
	file := context.Args().Get(0)
	updates, err := loadBlocks(file)
	if err != nil {
		return err
	}
	return withArchive(context, func(archive state.Archive) error {
		next := uint64(0)
		if head, found, err := archive.Head(); err != nil {
			return err
		} else if found {
			next = head + 1
		}
		for _, update := range updates {
			if update.number != nil && *update.number != next {
				return fmt.Errorf("import file continues with block %d, archive expects block %d", *update.number, next)
			}
			if err := archive.Apply(next, update.Update); err != nil {
				return fmt.Errorf("failed to import block %d: %w", next, err)
			}
			log.Debug("Imported block", "block", next, "hash", update.BlockHash)
			next++
		}
		if err := archive.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(context.App.Writer, "Imported %d blocks, head is now block %d\n", len(updates), next-1)
		return nil
	})
}

type numberedUpdate struct {
	state.Update
	number *uint64
}

// loadBlocks parses the given import file into block updates.
func loadBlocks(file string) ([]numberedUpdate, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}
	var content blockFile
	if err := yaml.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("failed to parse import file: %w", err)
	}
	if len(content.Blocks) == 0 {
		return nil, fmt.Errorf("import file %s contains no blocks", file)
	}

	res := make([]numberedUpdate, 0, len(content.Blocks))
	for i, block := range content.Blocks {
		update := state.Update{BlockHash: block.BlockHash}
		for _, deployed := range block.DeployedContracts {
			update.DeployedContracts = append(update.DeployedContracts, state.DeployedContract{
				Account:   common.Address(deployed.Address),
				ClassHash: common.ClassHash(deployed.ClassHash),
			})
		}
		for _, nonce := range block.Nonces {
			update.Nonces = append(update.Nonces, state.NonceUpdate{
				Account: common.Address(nonce.Address),
				Nonce:   common.Nonce(nonce.Nonce),
			})
		}
		for _, slot := range block.Storage {
			update.Slots = append(update.Slots, state.SlotUpdate{
				Account: common.Address(slot.Address),
				Key:     common.Key(slot.Key),
				Value:   common.Value(slot.Value),
			})
		}
		for _, declared := range block.DeclaredClasses {
			kind, err := parseKind(declared.Kind)
			if err != nil {
				return nil, fmt.Errorf("block entry %d: %w", i, err)
			}
			program := []byte(declared.Program)
			if declared.ProgramFile != "" {
				path := declared.ProgramFile
				if !filepath.IsAbs(path) {
					path = filepath.Join(filepath.Dir(file), path)
				}
				if program, err = os.ReadFile(path); err != nil {
					return nil, fmt.Errorf("block entry %d: failed to read class body: %w", i, err)
				}
			}
			update.DeclaredClasses = append(update.DeclaredClasses, state.DeclaredClass{
				ClassHash: common.ClassHash(declared.ClassHash),
				Info: class.Info{
					Kind:              kind,
					CompiledClassHash: common.CompiledClassHash(declared.CompiledClassHash),
				},
				Compiled: class.Compiled{Kind: kind, Program: program},
			})
		}
		res = append(res, numberedUpdate{Update: update, number: block.Number})
	}
	return res, nil
}

func parseKind(name string) (class.Kind, error) {
	for _, kind := range []class.Kind{class.Legacy, class.Sierra} {
		if kind.String() == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown class kind %q", name)
}
