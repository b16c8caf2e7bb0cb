package stages

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katana-go/katana/core/state"
	statetrie "github.com/katana-go/katana/core/state/trie"
	"github.com/katana-go/katana/core/types"
	"github.com/katana-go/katana/katanalib/common"
	"github.com/katana-go/katana/katanalib/kv"
	"github.com/katana-go/katana/sync/downloader"
)

func diffForVerifyTest() *types.StateDiff {
	addr := common.FeltFromUint64(42)
	return &types.StateDiff{
		DeployedContracts: []types.DeployedContract{{Address: addr, ClassHash: common.FeltFromUint64(1)}},
		Nonces:            []types.NonceUpdate{{Address: addr, Nonce: common.FeltOne}},
	}
}

// expectedRootForVerifyTest recomputes the root the trie layer would produce
// for diff at blockNumber, the same computation BlockWriter performs when
// persisting a block.
func expectedRootForVerifyTest(t *testing.T, blockNumber uint64, diff *types.StateDiff) common.Felt {
	t.Helper()
	var root common.Felt
	err := newMemDB().Update(context.Background(), func(tx kv.RwTx) error {
		tw := statetrie.NewWriter(tx)
		if _, err := tw.InsertContractUpdates(blockNumber, diff); err != nil {
			return err
		}
		root = tw.ComputeStateRoot()
		return nil
	})
	require.NoError(t, err)
	return root
}

func TestBlocksExecuteVerifyAcceptsMatchingStateRoot(t *testing.T) {
	db := newMemDB()
	writer := state.NewBlockWriter(db)

	diff := diffForVerifyTest()
	root := expectedRootForVerifyTest(t, 0, diff)
	b0 := &types.Block{Header: types.Header{Number: 0, ParentHash: common.FeltZero, StateRoot: root}}

	dl := downloader.DownloaderFunc[uint64, BlockData](func(_ context.Context, n uint64) downloader.Outcome[BlockData] {
		return downloader.Ok(BlockData{Block: b0, Diff: diff})
	})
	blocks := NewBlocks(db, downloader.New[uint64, BlockData](dl, 1), writer)
	blocks.SetVerify(newMemDB())

	out, err := blocks.Execute(context.Background(), StageExecutionInput{From: 0, To: 0})
	require.NoError(t, err)
	require.EqualValues(t, 0, out.LastBlockProcessed)
}

func TestBlocksExecuteVerifyRejectsMismatchedStateRoot(t *testing.T) {
	db := newMemDB()
	writer := state.NewBlockWriter(db)

	diff := diffForVerifyTest()
	b0 := &types.Block{Header: types.Header{Number: 0, ParentHash: common.FeltZero, StateRoot: common.FeltFromUint64(999)}}

	dl := downloader.DownloaderFunc[uint64, BlockData](func(_ context.Context, n uint64) downloader.Outcome[BlockData] {
		return downloader.Ok(BlockData{Block: b0, Diff: diff})
	})
	blocks := NewBlocks(db, downloader.New[uint64, BlockData](dl, 1), writer)
	blocks.SetVerify(newMemDB())

	_, err := blocks.Execute(context.Background(), StageExecutionInput{From: 0, To: 0})
	require.Error(t, err)
	var mismatch *ErrStateRootMismatch
	require.ErrorAs(t, err, &mismatch)
	require.EqualValues(t, 0, mismatch.BlockNumber)
}
