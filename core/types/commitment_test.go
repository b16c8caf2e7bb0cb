package types

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katana-go/katana/katanalib/common"
)

func TestComputeHeaderCommitmentsDeterministic(t *testing.T) {
	tx := &InvokeTxV1{SenderAddr: common.FeltFromUint64(1), TxNonce: common.FeltFromUint64(0), TxHash: common.FeltFromUint64(42)}
	receipts := []Receipt{{TransactionHash: tx.Hash(), Status: ExecutionSucceeded, Fee: FeeInfo{Amount: common.FeltFromUint64(10), Unit: FeeUnitWei}}}
	diff := &StateDiff{Nonces: []NonceUpdate{{Address: common.FeltFromUint64(1), Nonce: common.FeltFromUint64(1)}}}

	var h1, h2 Header
	ComputeHeaderCommitments(&h1, []Transaction{tx}, receipts, diff)
	ComputeHeaderCommitments(&h2, []Transaction{tx}, receipts, diff)

	require.Equal(t, h1.TransactionCommitment, h2.TransactionCommitment)
	require.Equal(t, h1.ReceiptCommitment, h2.ReceiptCommitment)
	require.Equal(t, h1.EventCommitment, h2.EventCommitment)
	require.Equal(t, h1.StateDiffCommitment, h2.StateDiffCommitment)
	require.EqualValues(t, 1, h1.StateDiffLength)
}

func TestBlockHashChangesWithNumber(t *testing.T) {
	h1 := Header{Number: 1, StateRoot: common.FeltFromUint64(7)}
	h2 := h1
	h2.Number = 2

	require.NotEqual(t, BlockHash(&h1), BlockHash(&h2))
}

func TestIsV3(t *testing.T) {
	require.True(t, IsV3(&InvokeTxV3{}))
	require.False(t, IsV3(&InvokeTxV1{}))
	require.False(t, IsV3(&L1HandlerTx{}))
}
