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
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"testing"

	"github.com/0xsoniclabs/execstate/chain"
	"github.com/0xsoniclabs/execstate/class"
	"github.com/0xsoniclabs/execstate/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var _ Reader = (*View)(nil)

var (
	testChain  = chain.ForChain("MADARA_TEST")
	addr       = common.Address(common.FeltFromUint64(0x1234))
	key        = common.Key(common.FeltFromUint64(0x42))
	classHash  = common.ClassHash(common.FeltFromUint64(0xc1a55))
	base       = BlockNumber(99)
	backendErr = errors.New("disk on fire at sector 7")
)

type viewTestContext struct {
	backend  *MockBackend
	resolver *MockClassResolver
	logs     *bytes.Buffer
}

func newViewTestContext(t *testing.T) *viewTestContext {
	ctrl := gomock.NewController(t)
	return &viewTestContext{
		backend:  NewMockBackend(ctrl),
		resolver: NewMockClassResolver(ctrl),
		logs:     new(bytes.Buffer),
	}
}

func (c *viewTestContext) view(current uint64, onTopOf BlockRef) *View {
	view := NewView(c.backend, c.resolver, testChain, current, onTopOf)
	view.log = log.NewLogger(log.NewTerminalHandlerWithLevel(c.logs, slog.LevelDebug, false))
	return view
}

func TestView_GenesisReadsDefaultToZero(t *testing.T) {
	require := require.New(t)
	ctx := newViewTestContext(t)

	for _, ref := range []BlockRef{Genesis{}, nil, OnTopOf{}} {
		view := ctx.view(0, ref)

		value, err := view.GetStorageAt(addr, key)
		require.NoError(err)
		require.Equal(common.Value{}, value)

		nonce, err := view.GetNonceAt(addr)
		require.NoError(err)
		require.Equal(common.Nonce{}, nonce)

		hash, err := view.GetClassHashAt(addr)
		require.NoError(err)
		require.Equal(common.ClassHash{}, hash)
	}
}

func TestView_GenesisCompiledClassReadsFail(t *testing.T) {
	require := require.New(t)
	ctx := newViewTestContext(t)
	view := ctx.view(0, Genesis{})

	_, err := view.GetCompiledClass(classHash)
	require.ErrorIs(err, ErrUndeclaredClass)
	var undeclared *UndeclaredClassError
	require.True(errors.As(err, &undeclared))
	require.Equal(classHash, undeclared.ClassHash)

	_, err = view.GetCompiledClassHash(classHash)
	require.ErrorIs(err, ErrUndeclaredClass)
}

func TestView_NilBlockRefIsGenesis(t *testing.T) {
	view := NewView(nil, nil, testChain, 0, nil)
	require.Equal(t, Genesis{}, view.OnTopOf())
	require.Equal(t, uint64(0), view.BlockNumber())
}

func TestView_StorageIsReadAtBaseBlock(t *testing.T) {
	require := require.New(t)
	ctx := newViewTestContext(t)
	view := ctx.view(100, OnTopOf{Block: base})

	want := common.Value(common.FeltFromUint64(7))
	ctx.backend.EXPECT().GetStorage(base, addr, key).Return(want, true, nil)
	got, err := view.GetStorageAt(addr, key)
	require.NoError(err)
	require.Equal(want, got)

	ctx.backend.EXPECT().GetStorage(base, addr, key).Return(common.Value{}, false, nil)
	got, err = view.GetStorageAt(addr, key)
	require.NoError(err)
	require.Equal(common.Value{}, got)
}

func TestView_LookupsAreTracedAtDebugLevel(t *testing.T) {
	require := require.New(t)
	ctx := newViewTestContext(t)
	view := ctx.view(100, OnTopOf{Block: base})

	ctx.backend.EXPECT().GetStorage(base, addr, key).Return(common.Value{}, false, nil)
	ctx.backend.EXPECT().GetNonce(base, addr).Return(common.Nonce{}, false, nil)
	_, err := view.GetStorageAt(addr, key)
	require.NoError(err)
	_, err = view.GetNonceAt(addr)
	require.NoError(err)

	logs := ctx.logs.String()
	require.Contains(logs, "DEBUG")
	require.Contains(logs, "Get storage")
	require.Contains(logs, "Get nonce")
}

func TestView_PendingBlockIsForwardedToBackend(t *testing.T) {
	require := require.New(t)
	ctx := newViewTestContext(t)
	view := ctx.view(100, OnTopOf{Block: PendingBlock{}})

	want := common.Nonce(common.FeltFromUint64(3))
	ctx.backend.EXPECT().GetNonce(PendingBlock{}, addr).Return(want, true, nil)
	got, err := view.GetNonceAt(addr)
	require.NoError(err)
	require.Equal(want, got)
}

func TestView_BackendFailuresAreLoggedButNotSurfaced(t *testing.T) {
	ctx := newViewTestContext(t)
	view := ctx.view(100, OnTopOf{Block: base})
	anyArg := gomock.Any()

	ctx.backend.EXPECT().GetStorage(anyArg, anyArg, anyArg).Return(common.Value{}, false, backendErr)
	ctx.backend.EXPECT().GetNonce(anyArg, anyArg).Return(common.Nonce{}, false, backendErr)
	ctx.backend.EXPECT().GetClassHash(anyArg, anyArg).Return(common.ClassHash{}, false, backendErr)
	ctx.backend.EXPECT().GetCompiledClass(anyArg, anyArg).Return(class.Compiled{}, false, backendErr)
	ctx.backend.EXPECT().GetClassInfo(anyArg, anyArg).Return(class.Info{}, false, backendErr)
	ctx.backend.EXPECT().GetBlockHash(anyArg).Return(common.Felt{}, false, backendErr)

	reads := map[string]func() error{
		"storage value": func() error {
			_, err := view.GetStorageAt(addr, key)
			return err
		},
		"nonce": func() error {
			_, err := view.GetNonceAt(addr)
			return err
		},
		"class hash": func() error {
			_, err := view.GetClassHashAt(addr)
			return err
		},
		"compiled class": func() error {
			_, err := view.GetCompiledClass(classHash)
			return err
		},
		"compiled class hash": func() error {
			_, err := view.GetCompiledClassHash(classHash)
			return err
		},
		"block hash": func() error {
			_, err := view.GetStorageAt(BlockHashContractAddress, common.Key(common.FeltFromUint64(50)))
			return err
		},
	}

	for op, read := range reads {
		t.Run(op, func(t *testing.T) {
			require := require.New(t)
			ctx.logs.Reset()

			err := read()
			require.ErrorIs(err, ErrRead)
			var readErr *ReadError
			require.True(errors.As(err, &readErr))
			require.Equal(op, readErr.Op)
			require.NotContains(err.Error(), backendErr.Error())
			require.NotErrorIs(err, backendErr)

			require.Contains(ctx.logs.String(), "WARN")
			require.Contains(ctx.logs.String(), "disk on fire")
		})
	}
}

func TestView_ReadErrorNamesQuerySubject(t *testing.T) {
	require := require.New(t)
	ctx := newViewTestContext(t)
	view := ctx.view(100, OnTopOf{Block: base})

	ctx.backend.EXPECT().GetStorage(base, addr, key).Return(common.Value{}, false, backendErr)
	_, err := view.GetStorageAt(addr, key)
	require.EqualError(err, "failed to retrieve storage value for contract 0x1234 at key 0x42")
}

func TestView_NonceAndClassHashAreReadAtBaseBlock(t *testing.T) {
	require := require.New(t)
	ctx := newViewTestContext(t)
	view := ctx.view(100, OnTopOf{Block: base})

	nonce := common.Nonce(common.FeltFromUint64(12))
	ctx.backend.EXPECT().GetNonce(base, addr).Return(nonce, true, nil)
	gotNonce, err := view.GetNonceAt(addr)
	require.NoError(err)
	require.Equal(nonce, gotNonce)

	ctx.backend.EXPECT().GetNonce(base, addr).Return(common.Nonce{}, false, nil)
	gotNonce, err = view.GetNonceAt(addr)
	require.NoError(err)
	require.Equal(common.Nonce{}, gotNonce)

	ctx.backend.EXPECT().GetClassHash(base, addr).Return(classHash, true, nil)
	gotHash, err := view.GetClassHashAt(addr)
	require.NoError(err)
	require.Equal(classHash, gotHash)

	ctx.backend.EXPECT().GetClassHash(base, addr).Return(common.ClassHash{}, false, nil)
	gotHash, err = view.GetClassHashAt(addr)
	require.NoError(err)
	require.Equal(common.ClassHash{}, gotHash)
}

func TestView_CompiledClassIsResolved(t *testing.T) {
	require := require.New(t)
	ctx := newViewTestContext(t)
	view := ctx.view(100, OnTopOf{Block: base})

	compiled := class.Compiled{Kind: class.Sierra, Program: []byte("{}")}
	want := &class.Executable{Kind: class.Sierra}
	ctx.backend.EXPECT().GetCompiledClass(base, classHash).Return(compiled, true, nil)
	ctx.resolver.EXPECT().ToExecutable(compiled).Return(want, nil)

	got, err := view.GetCompiledClass(classHash)
	require.NoError(err)
	require.Same(want, got)
}

func TestView_MissingClassesAreUndeclared(t *testing.T) {
	require := require.New(t)
	ctx := newViewTestContext(t)
	view := ctx.view(100, OnTopOf{Block: base})

	ctx.backend.EXPECT().GetCompiledClass(base, classHash).Return(class.Compiled{}, false, nil)
	_, err := view.GetCompiledClass(classHash)
	require.ErrorIs(err, ErrUndeclaredClass)
	require.EqualError(err, "class 0xc1a55 is not declared")

	ctx.backend.EXPECT().GetClassInfo(base, classHash).Return(class.Info{}, false, nil)
	_, err = view.GetCompiledClassHash(classHash)
	require.ErrorIs(err, ErrUndeclaredClass)
}

func TestView_ConversionFailuresAreMalformedClasses(t *testing.T) {
	require := require.New(t)
	ctx := newViewTestContext(t)
	view := ctx.view(100, OnTopOf{Block: base})

	compiled := class.Compiled{Kind: class.Sierra, Program: []byte("{")}
	ctx.backend.EXPECT().GetCompiledClass(base, classHash).Return(compiled, true, nil)
	ctx.resolver.EXPECT().ToExecutable(compiled).Return(nil, fmt.Errorf("%w: truncated", class.ErrMalformed))

	_, err := view.GetCompiledClass(classHash)
	require.ErrorIs(err, ErrMalformedClass)
	require.ErrorIs(err, class.ErrMalformed)
	var malformed *MalformedClassError
	require.True(errors.As(err, &malformed))
	require.Equal(classHash, malformed.ClassHash)
}

func TestView_CompiledClassHashIsTakenFromClassInfo(t *testing.T) {
	require := require.New(t)
	ctx := newViewTestContext(t)
	view := ctx.view(100, OnTopOf{Block: base})

	want := common.CompiledClassHash(common.FeltFromUint64(0xcafe))
	ctx.backend.EXPECT().GetClassInfo(base, classHash).Return(class.Info{Kind: class.Sierra, CompiledClassHash: want}, true, nil)

	got, err := view.GetCompiledClassHash(classHash)
	require.NoError(err)
	require.Equal(want, got)
}

func TestView_BlockHashesInRangeAreReadFromBackend(t *testing.T) {
	require := require.New(t)
	ctx := newViewTestContext(t)
	view := ctx.view(61, OnTopOf{Block: BlockNumber(60)})

	hash := common.FeltFromUint64(0xb10c)
	ctx.backend.EXPECT().GetBlockHash(uint64(50)).Return(hash, true, nil)

	got, err := view.GetStorageAt(BlockHashContractAddress, common.Key(common.FeltFromUint64(50)))
	require.NoError(err)
	require.Equal(common.Value(hash), got)
}

func TestView_BlockHashesAreServedDuringGenesis(t *testing.T) {
	require := require.New(t)
	ctx := newViewTestContext(t)
	view := ctx.view(20, Genesis{})

	hash := common.FeltFromUint64(0xb10c)
	ctx.backend.EXPECT().GetBlockHash(uint64(3)).Return(hash, true, nil)

	got, err := view.GetStorageAt(BlockHashContractAddress, common.Key(common.FeltFromUint64(3)))
	require.NoError(err)
	require.Equal(common.Value(hash), got)
}

func TestView_BlockHashesOutOfRangeReadAsZero(t *testing.T) {
	ctx := newViewTestContext(t)

	// The backend mock fails the test on any call.
	for _, current := range []uint64{0, 5, 9, 10, 61, 1000} {
		view := ctx.view(current, OnTopOf{Block: BlockNumber(current)})
		for _, requested := range []uint64{current - 9, current, current + 1, math.MaxUint64} {
			if testChain.BlockHashAllowed(current, requested) {
				continue
			}
			got, err := view.GetStorageAt(BlockHashContractAddress, common.Key(common.FeltFromUint64(requested)))
			require.NoError(t, err, "current %d requested %d", current, requested)
			require.Equal(t, common.Value{}, got)
		}
	}
}

func TestView_BlockHashesBelowActivationReadAsZero(t *testing.T) {
	require := require.New(t)
	ctx := newViewTestContext(t)
	view := NewView(ctx.backend, ctx.resolver, chain.ForChain(chain.Mainnet), 61, OnTopOf{Block: BlockNumber(60)})

	got, err := view.GetStorageAt(BlockHashContractAddress, common.Key(common.FeltFromUint64(50)))
	require.NoError(err)
	require.Equal(common.Value{}, got)
}

func TestView_MissingBlockHashIsUnavailable(t *testing.T) {
	require := require.New(t)
	ctx := newViewTestContext(t)
	view := ctx.view(100, OnTopOf{Block: base})

	ctx.backend.EXPECT().GetBlockHash(uint64(50)).Return(common.Felt{}, false, nil)
	_, err := view.GetStorageAt(BlockHashContractAddress, common.Key(common.FeltFromUint64(50)))
	require.ErrorIs(err, ErrHistoricalBlockHashUnavailable)
}

func TestView_BlockNumbersBeyond64BitAreRejected(t *testing.T) {
	require := require.New(t)
	ctx := newViewTestContext(t)
	view := ctx.view(100, OnTopOf{Block: base})

	key := common.Key(common.MustFeltFromHex("0x10000000000000000"))
	_, err := view.GetStorageAt(BlockHashContractAddress, key)
	require.ErrorIs(err, ErrInvalidBlockNumberEncoding)
}

func TestView_CanBeSharedByConcurrentReaders(t *testing.T) {
	ctx := newViewTestContext(t)
	view := ctx.view(100, OnTopOf{Block: base})

	value := common.Value(common.FeltFromUint64(1))
	ctx.backend.EXPECT().GetStorage(base, addr, key).Return(value, true, nil).AnyTimes()
	ctx.backend.EXPECT().GetNonce(base, addr).Return(common.Nonce{}, false, nil).AnyTimes()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				got, err := view.GetStorageAt(addr, key)
				if err != nil || got != value {
					errs <- fmt.Errorf("unexpected result %v, %v", got, err)
					return
				}
				if _, err := view.GetNonceAt(addr); err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}
