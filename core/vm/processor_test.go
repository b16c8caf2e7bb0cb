package vm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katana-go/katana/core/types"
	"github.com/katana-go/katana/eth/producer"
	"github.com/katana-go/katana/katanalib/common"
)

type fakeProvider struct {
	nonces map[common.Address]common.Felt
}

func (f *fakeProvider) Nonce(addr common.Address) (common.Felt, error) { return f.nonces[addr], nil }
func (f *fakeProvider) ClassHashAt(addr common.Address) (common.ClassHash, error) {
	return common.FeltZero, nil
}
func (f *fakeProvider) StorageAt(addr common.Address, slot common.Felt) (common.Felt, error) {
	return common.FeltZero, nil
}
func (f *fakeProvider) Class(classHash common.ClassHash) (*types.ContractClass, error) {
	return nil, nil
}
func (f *fakeProvider) CompiledClassHash(classHash common.ClassHash) (common.Felt, error) {
	return common.FeltZero, nil
}

func TestValidateTransactionChecksNonce(t *testing.T) {
	provider := &fakeProvider{nonces: make(map[common.Address]common.Felt)}
	p := NewProcessor(provider, 1, common.FeltZero, producer.DefaultBlockLimits)

	sender := common.FeltFromUint64(1)
	tx := &types.InvokeTxV1{SenderAddr: sender, TxNonce: common.FeltZero}
	require.NoError(t, p.ValidateTransaction(tx, false, false))

	badTx := &types.InvokeTxV1{SenderAddr: sender, TxNonce: common.FeltOne}
	require.Error(t, p.ValidateTransaction(badTx, false, false))

	require.NoError(t, p.ValidateTransaction(badTx, true, false))
}

func TestExecuteTransactionsBumpsNonceAndProducesReceipts(t *testing.T) {
	provider := &fakeProvider{nonces: make(map[common.Address]common.Felt)}
	p := NewProcessor(provider, 1, common.FeltZero, producer.DefaultBlockLimits)

	sender := common.FeltFromUint64(1)
	tx1 := &types.InvokeTxV1{SenderAddr: sender, TxNonce: common.FeltZero, TxHash: common.FeltFromUint64(10)}
	tx2 := &types.InvokeTxV1{SenderAddr: sender, TxNonce: common.FeltOne, TxHash: common.FeltFromUint64(11)}

	n, execErr := p.ExecuteTransactions([]types.Transaction{tx1, tx2})
	require.Nil(t, execErr)
	require.Equal(t, 2, n)

	nonce, err := p.state.Nonce(sender)
	require.NoError(t, err)
	require.Equal(t, common.FeltFromUint64(2), nonce)

	output := p.TakeExecutionOutput()
	require.Len(t, output.Executed, 2)
	require.Equal(t, types.ExecutionSucceeded, output.Executed[0].Receipt.Status)
	require.Empty(t, p.state.diff.Nonces, "takeDiff should reset the overlay's diff")
}

func TestExecuteTransactionsStopsWhenBouncerTrips(t *testing.T) {
	provider := &fakeProvider{nonces: make(map[common.Address]common.Felt)}
	tiny := producer.BlockLimits{CairoSteps: baseSteps, SierraGas: baseSteps * 100}
	p := NewProcessor(provider, 1, common.FeltZero, tiny)

	sender := common.FeltFromUint64(1)
	tx1 := &types.InvokeTxV1{SenderAddr: sender, TxNonce: common.FeltZero}
	tx2 := &types.InvokeTxV1{SenderAddr: sender, TxNonce: common.FeltOne}

	n, execErr := p.ExecuteTransactions([]types.Transaction{tx1, tx2})
	require.Equal(t, 1, n)
	require.NotNil(t, execErr)
	require.True(t, execErr.LimitsExhausted)
}

func TestDeclareClassEffects(t *testing.T) {
	provider := &fakeProvider{nonces: make(map[common.Address]common.Felt)}
	p := NewProcessor(provider, 1, common.FeltZero, producer.DefaultBlockLimits)

	sender := common.FeltFromUint64(1)
	classHash := common.FeltFromUint64(99)
	compiled := common.FeltFromUint64(77)
	tx := &types.DeclareTxV2{SenderAddr: sender, TxNonce: common.FeltZero, TxClassHash: classHash, CompiledClassHash: compiled}

	_, execErr := p.ExecuteTransactions([]types.Transaction{tx})
	require.Nil(t, execErr)

	got, err := p.state.CompiledClassHash(classHash)
	require.NoError(t, err)
	require.Equal(t, compiled, got)

	output := p.TakeExecutionOutput()
	require.Len(t, output.Diff.DeclaredClasses, 1)
	require.Equal(t, classHash, output.Diff.DeclaredClasses[0].ClassHash)
}
