package trie

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katana-go/katana/katanalib/common"
	"github.com/katana-go/katana/katanalib/kv"
)

// seedHistory writes one History/ChangeSet entry per block in blocks for
// key, via the same Writer.recordHistory path a real block insert uses.
func seedHistory(t *testing.T, tx *fakeTx, historyTable, changeSetTable string, key common.Felt, blocks []uint64) {
	t.Helper()
	w := &Writer{tx: tx}
	for _, b := range blocks {
		require.NoError(t, w.recordHistory(historyTable, changeSetTable, b, key, key.Bytes()))
	}
}

func changeSetMembers(t *testing.T, tx *fakeTx, changeSetTable string, key common.Felt) ([]uint64, bool) {
	t.Helper()
	dbKey := kv.TrieDatabaseKey{Type: kv.TrieKeyFlat, Key: key.Bytes()}
	raw, err := tx.GetOne(changeSetTable, dbKey.Encode())
	require.NoError(t, err)
	if raw == nil {
		return nil, false
	}
	set, err := kv.DecodeIntegerSet(raw)
	require.NoError(t, err)
	return set.Slice(), true
}

func historyBlockNumbers(tx *fakeTx, historyTable string) []uint64 {
	var out []uint64
	for k := range tx.dupMap(historyTable) {
		out = append(out, kv.DecodeBlockNumber([]byte(k)))
	}
	return out
}

func TestPrunerKeepLastNScenario5(t *testing.T) {
	// Scenario 5: KeepLastN(3) at latest=10 over 15 blocks of history
	// (blocks 0..14 touch the same key), cutoff = 10 - 3 = 7.
	tx := newFakeTx(kv.ContractsTrieHistory)
	key := common.FeltFromUint64(1)

	var blocks []uint64
	for b := uint64(0); b < 15; b++ {
		blocks = append(blocks, b)
	}
	seedHistory(t, tx, kv.ContractsTrieHistory, kv.ContractsTrieChangeSet, key, blocks)

	deleted, err := NewPruner(tx, KeepLastN, 3).Prune(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, 8, deleted) // blocks 0..7 inclusive

	remaining := historyBlockNumbers(tx, kv.ContractsTrieHistory)
	for _, b := range remaining {
		require.Greater(t, b, uint64(7))
	}
	require.Len(t, remaining, 7) // blocks 8..14

	members, ok := changeSetMembers(t, tx, kv.ContractsTrieChangeSet, key)
	require.True(t, ok)
	for _, b := range members {
		require.Greater(t, b, uint64(7))
	}
}

func TestPrunerKeepLastNNoopWhenKeepExceedsTip(t *testing.T) {
	tx := newFakeTx(kv.ContractsTrieHistory)
	key := common.FeltFromUint64(1)
	seedHistory(t, tx, kv.ContractsTrieHistory, kv.ContractsTrieChangeSet, key, []uint64{0, 1, 2})

	// k >= latest: tip=2, keep=3 -> cutoff would be 0, must be a true no-op.
	deleted, err := NewPruner(tx, KeepLastN, 3).Prune(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, 0, deleted)

	require.ElementsMatch(t, []uint64{0, 1, 2}, historyBlockNumbers(tx, kv.ContractsTrieHistory))
	members, ok := changeSetMembers(t, tx, kv.ContractsTrieChangeSet, key)
	require.True(t, ok)
	require.ElementsMatch(t, []uint64{0, 1, 2}, members)
}

func TestPrunerKeepLastNNoopAtExactTip(t *testing.T) {
	tx := newFakeTx(kv.ContractsTrieHistory)
	key := common.FeltFromUint64(1)
	seedHistory(t, tx, kv.ContractsTrieHistory, kv.ContractsTrieChangeSet, key, []uint64{0, 1, 2})

	// k == latest: tip=3, keep=3 -> tip <= keep -> cutoff=0 -> no-op.
	deleted, err := NewPruner(tx, KeepLastN, 3).Prune(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, 0, deleted)
	require.ElementsMatch(t, []uint64{0, 1, 2}, historyBlockNumbers(tx, kv.ContractsTrieHistory))
}

func TestPrunerKeepLastNZeroPrunesEverythingUpToTip(t *testing.T) {
	tx := newFakeTx(kv.ContractsTrieHistory)
	key := common.FeltFromUint64(1)
	seedHistory(t, tx, kv.ContractsTrieHistory, kv.ContractsTrieChangeSet, key, []uint64{0, 1, 2, 3, 4, 5})

	// keep=0, tip=5 -> cutoff=5: everything <= 5 is pruned, nothing left.
	deleted, err := NewPruner(tx, KeepLastN, 0).Prune(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, 6, deleted)
	require.Empty(t, historyBlockNumbers(tx, kv.ContractsTrieHistory))
}

func TestPrunerLatestModeCutoffZeroAtGenesisStillPrunes(t *testing.T) {
	// Latest mode's cutoff == tip: at tip == 0 this legitimately means
	// "discard everything, including block 0's history" — unlike
	// KeepLastN, this is not the no-op case.
	tx := newFakeTx(kv.ContractsTrieHistory)
	key := common.FeltFromUint64(1)
	seedHistory(t, tx, kv.ContractsTrieHistory, kv.ContractsTrieChangeSet, key, []uint64{0})

	deleted, err := NewPruner(tx, Latest, 0).Prune(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, 1, deleted)
	require.Empty(t, historyBlockNumbers(tx, kv.ContractsTrieHistory))
}
