package vm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katana-go/katana/core/state"
	"github.com/katana-go/katana/core/types"
	"github.com/katana-go/katana/eth/producer"
	"github.com/katana-go/katana/katanalib/common"
)

// fakeFactory hands out a fresh *fakeProvider per call, recording the block
// number it was asked for so tests can assert RollingExecutor rebuilds
// against the right base block after every sealed block.
type fakeFactory struct {
	nonces      map[common.Address]common.Felt
	requestedAt []uint64
	latestCalls int
}

func (f *fakeFactory) Latest(ctx context.Context) (state.StateProvider, error) {
	f.latestCalls++
	return &fakeProvider{nonces: f.nonces}, nil
}

func (f *fakeFactory) AtBlock(ctx context.Context, blockNumber uint64) (state.StateProvider, error) {
	f.requestedAt = append(f.requestedAt, blockNumber)
	return &fakeProvider{nonces: f.nonces}, nil
}

func TestRollingExecutorRebuildsAgainstNextBlock(t *testing.T) {
	factory := &fakeFactory{nonces: make(map[common.Address]common.Felt)}
	r, err := NewRollingExecutor(context.Background(), factory, common.FeltZero, producer.DefaultBlockLimits, 1)
	require.NoError(t, err)
	require.Equal(t, []uint64{0}, factory.requestedAt)
	require.Equal(t, uint64(1), r.BlockNumber())

	sender := common.FeltFromUint64(1)
	tx := &types.InvokeTxV1{SenderAddr: sender, TxNonce: common.FeltZero, TxHash: common.FeltFromUint64(10)}
	executed, execErr := r.ExecuteTransactions([]types.Transaction{tx})
	require.Nil(t, execErr)
	require.Equal(t, 1, executed)

	r.TakeExecutionOutput()
	require.Equal(t, []uint64{0, 1}, factory.requestedAt, "rebuild after sealing block 1 should fetch state as of block 1")
	require.Equal(t, uint64(2), r.BlockNumber())
}

func TestValidatingExecutorReadsLatestOnEveryCall(t *testing.T) {
	factory := &fakeFactory{nonces: make(map[common.Address]common.Felt)}
	sender := common.FeltFromUint64(1)
	factory.nonces[sender] = common.FeltZero

	e := NewValidatingExecutor(factory, common.FeltZero, producer.DefaultBlockLimits, func() uint64 { return 1 })

	tx := &types.InvokeTxV1{SenderAddr: sender, TxNonce: common.FeltZero}
	require.NoError(t, e.ValidateTransaction(tx, false, false))
	require.Equal(t, 1, factory.latestCalls)

	badTx := &types.InvokeTxV1{SenderAddr: sender, TxNonce: common.FeltOne}
	require.Error(t, e.ValidateTransaction(badTx, false, false))
	require.Equal(t, 2, factory.latestCalls)

	require.NoError(t, e.ValidateTransaction(badTx, true, false))
	require.Equal(t, 2, factory.latestCalls, "skipAccountValidation must not touch the factory")
}
