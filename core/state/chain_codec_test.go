package state

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katana-go/katana/core/types"
	"github.com/katana-go/katana/katanalib/common"
)

func TestHeaderCodecRoundTrip(t *testing.T) {
	h := &types.Header{
		Number:           7,
		ParentHash:       common.FeltFromUint64(1),
		Timestamp:        1234,
		SequencerAddress: common.FeltFromUint64(2),
		ProtocolVersion:  "0.13.3",
		StateRoot:        common.FeltFromUint64(3),
		StateDiffLength:  9,
		L1GasPriceWei:    common.FeltFromUint64(100),
		L2GasPriceFri:    common.FeltFromUint64(200),
		L1DAMode:         types.L1DABlob,
	}
	decoded, err := decodeHeader(encodeHeader(h))
	require.NoError(t, err)
	require.Equal(t, h, decoded)
}

func TestTransactionCodecRoundTripEachVariant(t *testing.T) {
	sender := common.FeltFromUint64(42)
	nonce := common.FeltFromUint64(1)
	txs := []types.Transaction{
		&types.InvokeTxV0{ContractAddress: sender, EntryPointSelector: common.FeltFromUint64(5), Calldata: []common.Felt{common.FeltOne}, MaxFee: common.FeltFromUint64(10), TxHash: common.FeltFromUint64(100)},
		&types.InvokeTxV1{SenderAddr: sender, TxNonce: nonce, Calldata: []common.Felt{common.FeltOne}, MaxFee: common.FeltFromUint64(10), TxHash: common.FeltFromUint64(101)},
		&types.InvokeTxV3{SenderAddr: sender, TxNonce: nonce, Tip: 5, TxHash: common.FeltFromUint64(102)},
		&types.DeclareTxV0{SenderAddr: sender, TxClassHash: common.FeltFromUint64(9), TxHash: common.FeltFromUint64(103)},
		&types.DeclareTxV1{SenderAddr: sender, TxNonce: nonce, TxClassHash: common.FeltFromUint64(9), TxHash: common.FeltFromUint64(104)},
		&types.DeclareTxV2{SenderAddr: sender, TxNonce: nonce, TxClassHash: common.FeltFromUint64(9), CompiledClassHash: common.FeltFromUint64(11), TxHash: common.FeltFromUint64(105)},
		&types.DeclareTxV3{SenderAddr: sender, TxNonce: nonce, TxClassHash: common.FeltFromUint64(9), CompiledClassHash: common.FeltFromUint64(11), TxHash: common.FeltFromUint64(106)},
		&types.DeployAccountTxV1{TxNonce: nonce, ContractAddr: sender, ContractAddressSalt: common.FeltFromUint64(3), TxHash: common.FeltFromUint64(107)},
		&types.DeployAccountTxV3{TxNonce: nonce, ContractAddr: sender, ContractAddressSalt: common.FeltFromUint64(3), TxHash: common.FeltFromUint64(108)},
		&types.L1HandlerTx{ContractAddr: sender, EntryPointSelector: common.FeltFromUint64(5), TxNonce: nonce, TxHash: common.FeltFromUint64(109)},
		&types.DeployTx{ContractAddressSalt: common.FeltFromUint64(3), TxClassHash: common.FeltFromUint64(9), ContractAddr: sender, TxHash: common.FeltFromUint64(110)},
	}

	for _, tx := range txs {
		encoded, err := encodeTransaction(tx)
		require.NoError(t, err)
		decoded, err := decodeTransaction(encoded)
		require.NoError(t, err)
		require.Equal(t, tx, decoded)
	}
}

func TestReceiptCodecRoundTrip(t *testing.T) {
	r := &types.Receipt{
		TransactionHash: common.FeltFromUint64(1),
		Status:          types.ExecutionReverted,
		RevertReason:    "insufficient balance",
		Fee:             types.FeeInfo{Amount: common.FeltFromUint64(5), Unit: types.FeeUnitFri},
		MessagesSent: []types.L2ToL1Message{
			{FromAddress: common.FeltFromUint64(2), ToAddress: common.FeltFromUint64(3), Payload: []common.Felt{common.FeltOne}},
		},
		Events: []types.Event{
			{FromAddress: common.FeltFromUint64(2), Keys: []common.Felt{common.FeltOne}, Data: []common.Felt{common.FeltZero}},
		},
		ExecutionResources: types.ExecutionResources{Steps: 100, SierraGas: 5000},
		ExecutionResult:    []common.Felt{common.FeltOne},
	}
	decoded, err := decodeReceipt(encodeReceipt(r))
	require.NoError(t, err)
	require.Equal(t, r, decoded)
}

func TestBlockBodyIndicesCodecRoundTrip(t *testing.T) {
	encoded := encodeBlockBodyIndices(10, 3)
	first, count, err := decodeBlockBodyIndices(encoded)
	require.NoError(t, err)
	require.Equal(t, uint64(10), first)
	require.Equal(t, uint64(3), count)
}
