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

	"github.com/0xsoniclabs/execstate/common"
)

const (
	ErrRead                           = common.ConstError("state read failed")
	ErrHistoricalBlockHashUnavailable = common.ConstError("historical block hash not available")
	ErrInvalidBlockNumberEncoding     = common.ConstError("storage key is not a valid block number")
	ErrUndeclaredClass                = common.ConstError("class is not declared")
	ErrMalformedClass                 = common.ConstError("class is malformed")
)

// ReadError reports a failed backend lookup. It only names the kind of query
// and its subject; details of the backend failure are logged, not returned.
type ReadError struct {
	Op      string
	Subject string
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to retrieve %s for %s", e.Op, e.Subject)
}

func (e *ReadError) Is(target error) bool {
	return target == ErrRead
}

// UndeclaredClassError reports a class unknown at the block read from.
type UndeclaredClassError struct {
	ClassHash common.ClassHash
}

func (e *UndeclaredClassError) Error() string {
	return fmt.Sprintf("class %v is not declared", e.ClassHash)
}

func (e *UndeclaredClassError) Is(target error) bool {
	return target == ErrUndeclaredClass
}

// MalformedClassError reports a stored class body that could not be
// converted into an executable.
type MalformedClassError struct {
	ClassHash common.ClassHash
	Err       error
}

func (e *MalformedClassError) Error() string {
	return fmt.Sprintf("class %v is malformed: %v", e.ClassHash, e.Err)
}

func (e *MalformedClassError) Is(target error) bool {
	return target == ErrMalformedClass
}

func (e *MalformedClassError) Unwrap() error {
	return e.Err
}
