package state

import (
	"context"
	"fmt"

	statetrie "github.com/katana-go/katana/core/state/trie"
	"github.com/katana-go/katana/core/types"
	"github.com/katana-go/katana/katanalib/common"
	"github.com/katana-go/katana/katanalib/kv"
)

// BlockWriter is the single entry point a sealing block producer or a sync
// stage uses to persist a new block: header, transactions, receipts, the
// state diff, and the resulting trie roots, all inside one write
// transaction (spec §4.5 step 6, "BlockWriter::insert_block_with_states_
// and_receipts ... writes to all block/tx/receipt/class/contract/storage
// tables atomically and commits").
type BlockWriter struct {
	db kv.RwDB
}

func NewBlockWriter(db kv.RwDB) *BlockWriter {
	return &BlockWriter{db: db}
}

// SealedBlock is the already-hashed, already-committed block a producer or
// sync stage hands to the writer; Header.StateRoot and the commitment
// fields must already be filled in (types.ComputeHeaderCommitments).
type SealedBlock struct {
	Block    *types.Block
	Receipts []types.Receipt
	Diff     *types.StateDiff
}

// InsertBlockWithStatesAndReceipts persists one sealed block and returns the
// new state root the trie layer computed while applying its diff.
func (w *BlockWriter) InsertBlockWithStatesAndReceipts(ctx context.Context, sealed SealedBlock) (common.Felt, error) {
	var root common.Felt
	err := w.db.Update(ctx, func(tx kv.RwTx) error {
		blockHash := sealed.Block.Hash()
		blockNumber := sealed.Block.Header.Number
		blockNumBytes := kv.EncodeBlockNumber(blockNumber)

		if err := tx.Put(kv.Headers, blockNumBytes, encodeHeader(&sealed.Block.Header)); err != nil {
			return fmt.Errorf("state: put header: %w", err)
		}
		if err := tx.Put(kv.BlockHashes, blockNumBytes, blockHash.Bytes()); err != nil {
			return fmt.Errorf("state: put block hash: %w", err)
		}
		if err := tx.Put(kv.BlockNumbers, blockHash.Bytes(), blockNumBytes); err != nil {
			return fmt.Errorf("state: put block number: %w", err)
		}
		if err := tx.Put(kv.BlockStatusses, blockNumBytes, []byte{byte(sealed.Block.Status)}); err != nil {
			return fmt.Errorf("state: put block status: %w", err)
		}

		firstTxNumber, err := nextTxNumber(tx)
		if err != nil {
			return fmt.Errorf("state: read next tx number: %w", err)
		}
		if err := tx.Put(kv.BlockBodyIndices, blockNumBytes, encodeBlockBodyIndices(firstTxNumber, uint64(len(sealed.Block.Transactions)))); err != nil {
			return fmt.Errorf("state: put block body indices: %w", err)
		}

		for i, t := range sealed.Block.Transactions {
			txNumber := firstTxNumber + uint64(i)
			txNumBytes := kv.EncodeBlockNumber(txNumber)

			encoded, err := encodeTransaction(t)
			if err != nil {
				return fmt.Errorf("state: encode transaction: %w", err)
			}
			if err := tx.Put(kv.Transactions, txNumBytes, encoded); err != nil {
				return err
			}
			if err := tx.Put(kv.TxHashes, txNumBytes, t.Hash().Bytes()); err != nil {
				return err
			}
			if err := tx.Put(kv.TxBlocks, t.Hash().Bytes(), blockNumBytes); err != nil {
				return err
			}
			if err := tx.Put(kv.TxNumbers, t.Hash().Bytes(), txNumBytes); err != nil {
				return err
			}
			if err := tx.Put(kv.Receipts, txNumBytes, encodeReceipt(&sealed.Receipts[i])); err != nil {
				return err
			}
		}

		if err := applyContractInfo(tx, sealed.Diff); err != nil {
			return err
		}
		if err := applyStorage(tx, sealed.Diff); err != nil {
			return err
		}
		if err := applyClasses(tx, sealed.Diff); err != nil {
			return err
		}

		tw := statetrie.NewWriter(tx)
		if _, err := tw.InsertDeclaredClasses(blockNumber, sealed.Diff); err != nil {
			return fmt.Errorf("state: insert declared classes: %w", err)
		}
		if _, err := tw.InsertContractUpdates(blockNumber, sealed.Diff); err != nil {
			return fmt.Errorf("state: insert contract updates: %w", err)
		}
		root = tw.ComputeStateRoot()
		return nil
	})
	return root, err
}

// nextTxNumber scans backward from the chain tip to find how many
// transactions have already been assigned a number; a fresh database starts
// at 0 (spec §3 "tx_number is a dense, chain-wide counter").
func nextTxNumber(tx kv.RwTx) (uint64, error) {
	c, err := tx.Cursor(kv.BlockBodyIndices)
	if err != nil {
		return 0, err
	}
	defer c.Close()

	_, v, err := c.Last()
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, nil
	}
	first, count, err := decodeBlockBodyIndices(v)
	if err != nil {
		return 0, err
	}
	return first + count, nil
}

func encodeBlockBodyIndices(firstTxNumber, txCount uint64) []byte {
	out := make([]byte, 16)
	copy(out[:8], kv.EncodeBlockNumber(firstTxNumber))
	copy(out[8:], kv.EncodeBlockNumber(txCount))
	return out
}

func decodeBlockBodyIndices(buf []byte) (firstTxNumber, txCount uint64, err error) {
	if len(buf) != 16 {
		return 0, 0, fmt.Errorf("state: malformed BlockBodyIndices record (%d bytes)", len(buf))
	}
	return kv.DecodeBlockNumber(buf[:8]), kv.DecodeBlockNumber(buf[8:]), nil
}

// BlockHashByNumber looks up a sealed block's hash directly against the
// BlockHashes table, independent of a StateProvider snapshot — the sync
// pipeline's chain-invariant check needs only this single column, not a
// full provider (original_source's Blocks stage calls the equivalent
// provider().block_hash_by_num for the same reason).
func BlockHashByNumber(ctx context.Context, db kv.RoDB, blockNumber uint64) (common.Felt, bool, error) {
	var hash common.Felt
	found := false
	err := db.View(ctx, func(tx kv.Tx) error {
		v, err := tx.GetOne(kv.BlockHashes, kv.EncodeBlockNumber(blockNumber))
		if err != nil {
			return err
		}
		if v == nil {
			return nil
		}
		found = true
		copy(hash[:], v)
		return nil
	})
	return hash, found, err
}
