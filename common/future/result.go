// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package future

// Result is the outcome of a task on a subject. Failed results may still name
// the subject they failed on, which lets collectors attribute the error.
type Result[T any] struct {
	Value T
	Error error
}

func Ok[T any](value T) Result[T] {
	return Result[T]{Value: value}
}

func Err[T any](err error) Result[T] {
	return Result[T]{Error: err}
}

// Failed is an error result attributed to the given subject.
func Failed[T any](subject T, err error) Result[T] {
	return Result[T]{Value: subject, Error: err}
}

// Get returns the value and error contained in the Result.
func (r Result[T]) Get() (T, error) {
	return r.Value, r.Error
}

// Partition drains the given channel until it is closed and splits the
// results into the subjects that succeeded and the errors of those that
// failed, keyed by subject.
func Partition[T comparable](results <-chan Result[T]) ([]T, map[T]error) {
	var succeeded []T
	failed := map[T]error{}
	for res := range results {
		if value, err := res.Get(); err != nil {
			failed[value] = err
		} else {
			succeeded = append(succeeded, value)
		}
	}
	return succeeded, failed
}
