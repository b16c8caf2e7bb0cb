package txpool

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katana-go/katana/core/types"
	"github.com/katana-go/katana/katanalib/common"
)

func invoke(sender common.Address, nonce uint64) *types.InvokeTxV1 {
	return &types.InvokeTxV1{SenderAddr: sender, TxNonce: common.FeltFromUint64(nonce), TxHash: common.FeltFromUint64(nonce)}
}

func TestPoolOrdersSameSenderByNonce(t *testing.T) {
	p := NewPool()
	sender := common.FeltFromUint64(1)

	p.AddTransaction(invoke(sender, 2), 100)
	p.AddTransaction(invoke(sender, 0), 0)
	p.AddTransaction(invoke(sender, 1), 0)

	require.Equal(t, 3, p.Size())
	out := p.TakeTransactions(10)
	require.Len(t, out, 3)
	require.Equal(t, common.FeltFromUint64(0), out[0].Nonce())
	require.Equal(t, common.FeltFromUint64(1), out[1].Nonce())
	require.Equal(t, common.FeltFromUint64(2), out[2].Nonce())
}

func TestPoolOrdersDifferentSendersByPriority(t *testing.T) {
	p := NewPool()
	low := invoke(common.FeltFromUint64(1), 0)
	high := invoke(common.FeltFromUint64(2), 0)

	p.AddTransaction(low, 1)
	p.AddTransaction(high, 100)

	out := p.TakeTransactions(10)
	require.Equal(t, high.SenderAddr, out[0].SenderAddress())
	require.Equal(t, low.SenderAddr, out[1].SenderAddress())
}

func TestPoolContainsAndRemove(t *testing.T) {
	p := NewPool()
	tx := invoke(common.FeltFromUint64(1), 0)
	id := TxID{Sender: tx.SenderAddr, Nonce: tx.TxNonce}

	p.AddTransaction(tx, 0)
	require.True(t, p.Contains(id))

	p.Remove(id)
	require.False(t, p.Contains(id))
	require.Equal(t, 0, p.Size())
}

func TestPoolTakeTransactionsLimitsCount(t *testing.T) {
	p := NewPool()
	for i := uint64(0); i < 5; i++ {
		p.AddTransaction(invoke(common.FeltFromUint64(i), 0), Priority(i))
	}
	out := p.TakeTransactions(2)
	require.Len(t, out, 2)
	require.Equal(t, 3, p.Size())
}
