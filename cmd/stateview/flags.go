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
	"errors"
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/0xsoniclabs/execstate/chain"
	"github.com/0xsoniclabs/execstate/database"
	"github.com/0xsoniclabs/execstate/state"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
)

var (
	backendFlag = cli.StringFlag{
		Name:  "backend",
		Usage: "archive implementation, one of memory, leveldb, sqlite",
		Value: string(database.LevelDb),
	}
	dataDirFlag = cli.PathFlag{
		Name:    "datadir",
		Aliases: []string{"d"},
		Usage:   "directory of the archive",
	}
	flatFlag = cli.BoolFlag{
		Name:  "flat",
		Usage: "keeps the head state in memory and writes blocks to the archive in the background",
	}
	chainFlag = cli.StringFlag{
		Name:  "chain",
		Usage: "chain id selecting the protocol presets",
		Value: string(chain.Mainnet),
	}
	chainConfigFlag = cli.PathFlag{
		Name:  "chain-config",
		Usage: "YAML file overriding the protocol presets, takes precedence over --chain",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "log level: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
		Value: 3,
	}
	cpuProfileFlag = cli.StringFlag{
		Name:  "cpuprofile",
		Usage: "sets the target file for storing CPU profiles to, disabled if empty",
	}
)

func setupLogging(context *cli.Context) error {
	level := log.FromLegacyLevel(context.Int(verbosityFlag.Name))
	handler := log.NewTerminalHandlerWithLevel(context.App.ErrWriter, level, false)
	log.SetDefault(log.NewLogger(handler))
	return nil
}

func chainConfig(context *cli.Context) (chain.Config, error) {
	if path := context.Path(chainConfigFlag.Name); path != "" {
		return chain.LoadConfig(path)
	}
	return chain.ForChain(chain.ChainId(context.String(chainFlag.Name))), nil
}

func openArchive(context *cli.Context) (state.Archive, error) {
	return database.Open(database.Parameters{
		Backend:   database.Backend(context.String(backendFlag.Name)),
		Directory: context.Path(dataDirFlag.Name),
		Flat:      context.Bool(flatFlag.Name),
	})
}

// withArchive runs the given action on the archive configured by the command
// line and closes the archive afterwards.
func withArchive(context *cli.Context, action func(state.Archive) error) error {
	archive, err := openArchive(context)
	if err != nil {
		return err
	}
	return errors.Join(
		action(archive),
		archive.Close(),
	)
}

// addPerformanceDiagnoses extends the given action by optional CPU profiling.
func addPerformanceDiagnoses(action cli.ActionFunc) cli.ActionFunc {
	return func(context *cli.Context) error {
		file := context.String(cpuProfileFlag.Name)
		if file == "" {
			return action(context)
		}
		out, err := os.Create(file)
		if err != nil {
			return fmt.Errorf("failed to create CPU profile file: %w", err)
		}
		if err := pprof.StartCPUProfile(out); err != nil {
			return errors.Join(fmt.Errorf("failed to start CPU profile: %w", err), out.Close())
		}
		err = action(context)
		pprof.StopCPUProfile()
		return errors.Join(err, out.Close())
	}
}
