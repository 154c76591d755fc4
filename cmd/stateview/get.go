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
	"io"
	"math"
	"strconv"

	"github.com/0xsoniclabs/execstate/class"
	"github.com/0xsoniclabs/execstate/common"
	"github.com/0xsoniclabs/execstate/state"
	"github.com/urfave/cli/v2"
)

var (
	blockFlag = cli.Uint64Flag{
		Name:  "block",
		Usage: "reads the state produced by the given block, defaults to the head",
	}
	pendingFlag = cli.BoolFlag{
		Name:  "pending",
		Usage: "reads the state including the pending block",
	}
	genesisFlag = cli.BoolFlag{
		Name:  "genesis",
		Usage: "reads the empty state preceding the first block",
	}
)

var Get = cli.Command{
	Name:  "get",
	Usage: "reads state the way the execution engine sees it",
	Flags: []cli.Flag{&blockFlag, &pendingFlag, &genesisFlag},
	Subcommands: []*cli.Command{
		{
			Name:      "storage",
			Usage:     "prints the value of a storage slot",
			ArgsUsage: "<address> <key>",
			Action:    getStorage,
		},
		{
			Name:      "nonce",
			Usage:     "prints the nonce of a contract",
			ArgsUsage: "<address>",
			Action:    getNonce,
		},
		{
			Name:      "class-hash",
			Usage:     "prints the class hash of a contract",
			ArgsUsage: "<address>",
			Action:    getClassHash,
		},
		{
			Name:      "compiled-class",
			Usage:     "prints a summary of the executable form of a class",
			ArgsUsage: "<class hash>",
			Action:    getCompiledClass,
		},
		{
			Name:      "compiled-class-hash",
			Usage:     "prints the compiled class hash of a class",
			ArgsUsage: "<class hash>",
			Action:    getCompiledClassHash,
		},
		{
			Name:      "block-hash",
			Usage:     "prints the hash of a past block as visible to execution",
			ArgsUsage: "<block number>",
			Action:    getBlockHash,
		},
	},
}

// withView runs the given query on a view of the state selected by the
// command line flags. The view executes the block following the selected
// state.
func withView(context *cli.Context, numArgs int, query func(view *state.View, args []common.Felt, out io.Writer) error) error {
	if context.Args().Len() != numArgs {
		return fmt.Errorf("expected %d arguments, got %d", numArgs, context.Args().Len())
	}
	args := make([]common.Felt, 0, numArgs)
	for _, arg := range context.Args().Slice() {
		felt, err := parseFelt(arg)
		if err != nil {
			return err
		}
		args = append(args, felt)
	}
	config, err := chainConfig(context)
	if err != nil {
		return err
	}
	return withArchive(context, func(archive state.Archive) error {
		head, found, err := archive.Head()
		if err != nil {
			return err
		}
		next := uint64(0)
		if found {
			next = head + 1
		}

		var onTopOf state.BlockRef = state.Genesis{}
		number := uint64(0)
		switch {
		case context.Bool(genesisFlag.Name):
		case context.Bool(pendingFlag.Name):
			onTopOf = state.OnTopOf{Block: state.PendingBlock{}}
			number = next
		case context.IsSet(blockFlag.Name):
			block := context.Uint64(blockFlag.Name)
			if block == math.MaxUint64 {
				return fmt.Errorf("invalid block %d, no block can be executed on top of it", block)
			}
			onTopOf = state.OnTopOf{Block: state.BlockNumber(block)}
			number = block + 1
		case found:
			onTopOf = state.OnTopOf{Block: state.BlockNumber(head)}
			number = next
		}

		view := state.NewView(archive, class.NewResolver(), config, number, onTopOf)
		return query(view, args, context.App.Writer)
	})
}

// parseFelt accepts hexadecimal felts with 0x prefix and decimal numbers.
func parseFelt(arg string) (common.Felt, error) {
	if v, err := strconv.ParseUint(arg, 10, 64); err == nil {
		return common.FeltFromUint64(v), nil
	}
	felt, err := common.FeltFromHex(arg)
	if err != nil {
		return common.Felt{}, fmt.Errorf("invalid argument %q: %w", arg, err)
	}
	return felt, nil
}

func getStorage(context *cli.Context) error {
	return withView(context, 2, func(view *state.View, args []common.Felt, out io.Writer) error {
		value, err := view.GetStorageAt(common.Address(args[0]), common.Key(args[1]))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, value)
		return err
	})
}

func getNonce(context *cli.Context) error {
	return withView(context, 1, func(view *state.View, args []common.Felt, out io.Writer) error {
		nonce, err := view.GetNonceAt(common.Address(args[0]))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, nonce)
		return err
	})
}

func getClassHash(context *cli.Context) error {
	return withView(context, 1, func(view *state.View, args []common.Felt, out io.Writer) error {
		hash, err := view.GetClassHashAt(common.Address(args[0]))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, hash)
		return err
	})
}

func getCompiledClass(context *cli.Context) error {
	return withView(context, 1, func(view *state.View, args []common.Felt, out io.Writer) error {
		executable, err := view.GetCompiledClass(common.ClassHash(args[0]))
		if err != nil {
			return err
		}
		return printExecutable(out, executable)
	})
}

func printExecutable(out io.Writer, executable *class.Executable) error {
	fmt.Fprintf(out, "kind:             %v\n", executable.Kind)
	if executable.CompilerVersion != "" {
		fmt.Fprintf(out, "compiler version: %s\n", executable.CompilerVersion)
	}
	fmt.Fprintf(out, "bytecode:         %d felts\n", len(executable.Bytecode))
	for _, typ := range []class.EntryPointType{class.External, class.L1Handler, class.Constructor} {
		for _, entry := range executable.EntryPoints[typ] {
			if _, err := fmt.Fprintf(out, "%-12s %v @ %d\n", typ, entry.Selector, entry.Offset); err != nil {
				return err
			}
		}
	}
	return nil
}

func getCompiledClassHash(context *cli.Context) error {
	return withView(context, 1, func(view *state.View, args []common.Felt, out io.Writer) error {
		hash, err := view.GetCompiledClassHash(common.ClassHash(args[0]))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, hash)
		return err
	})
}

func getBlockHash(context *cli.Context) error {
	return withView(context, 1, func(view *state.View, args []common.Felt, out io.Writer) error {
		hash, err := view.GetStorageAt(state.BlockHashContractAddress, common.Key(args[0]))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, hash)
		return err
	})
}
