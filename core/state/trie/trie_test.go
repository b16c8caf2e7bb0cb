package trie

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katana-go/katana/katanalib/common"
)

func TestTrieInsertGetDelete(t *testing.T) {
	tr := New("test")
	empty := tr.Root()

	tr.Insert(common.FeltFromUint64(1), common.FeltFromUint64(100))
	tr.Insert(common.FeltFromUint64(2), common.FeltFromUint64(200))

	v, ok := tr.Get(common.FeltFromUint64(1))
	require.True(t, ok)
	require.Equal(t, common.FeltFromUint64(100), v)

	nonEmpty := tr.Root()
	require.NotEqual(t, empty, nonEmpty)

	tr.Delete(common.FeltFromUint64(1))
	_, ok = tr.Get(common.FeltFromUint64(1))
	require.False(t, ok)

	tr.Delete(common.FeltFromUint64(2))
	require.Equal(t, empty, tr.Root())
}

func TestTrieRootOrderIndependent(t *testing.T) {
	a := New("test")
	a.Insert(common.FeltFromUint64(1), common.FeltFromUint64(10))
	a.Insert(common.FeltFromUint64(2), common.FeltFromUint64(20))

	b := New("test")
	b.Insert(common.FeltFromUint64(2), common.FeltFromUint64(20))
	b.Insert(common.FeltFromUint64(1), common.FeltFromUint64(10))

	require.Equal(t, a.Root(), b.Root())
}

func TestComputeContractStateHashDeterministic(t *testing.T) {
	leaf := ContractLeaf{ClassHash: common.FeltFromUint64(1), Nonce: common.FeltFromUint64(2), StorageRoot: common.FeltFromUint64(3)}
	require.Equal(t, ComputeContractStateHash(leaf), ComputeContractStateHash(leaf))

	other := leaf
	other.Nonce = common.FeltFromUint64(9)
	require.NotEqual(t, ComputeContractStateHash(leaf), ComputeContractStateHash(other))
}
