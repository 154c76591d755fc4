// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package state

import (
	"fmt"

	"github.com/0xsoniclabs/execstate/class"
	"github.com/0xsoniclabs/execstate/common"
)

// Update summarizes the state diff of a single block. It is what backends
// apply, in block order, to build up their history.
type Update struct {
	BlockHash         common.Felt
	DeployedContracts []DeployedContract
	Nonces            []NonceUpdate
	Slots             []SlotUpdate
	DeclaredClasses   []DeclaredClass
}

// DeployedContract assigns a class to a contract. This covers deployments as
// well as class replacements.
type DeployedContract struct {
	Account   common.Address
	ClassHash common.ClassHash
}

type NonceUpdate struct {
	Account common.Address
	Nonce   common.Nonce
}

type SlotUpdate struct {
	Account common.Address
	Key     common.Key
	Value   common.Value
}

type DeclaredClass struct {
	ClassHash common.ClassHash
	Info      class.Info
	Compiled  class.Compiled
}

// Check verifies the consistency of the declared classes of the update.
func (u *Update) Check() error {
	for _, declared := range u.DeclaredClasses {
		if !declared.Info.Kind.Valid() {
			return fmt.Errorf("class %v: invalid kind %v", declared.ClassHash, declared.Info.Kind)
		}
		if declared.Info.Kind != declared.Compiled.Kind {
			return fmt.Errorf("class %v: info kind %v does not match body kind %v",
				declared.ClassHash, declared.Info.Kind, declared.Compiled.Kind)
		}
		if declared.Info.Kind == class.Legacy && declared.Info.CompiledClassHash != (common.CompiledClassHash{}) {
			return fmt.Errorf("class %v: legacy classes have no compiled class hash", declared.ClassHash)
		}
	}
	return nil
}
