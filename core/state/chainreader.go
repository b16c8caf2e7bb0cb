package state

import (
	"context"
	"fmt"

	"github.com/katana-go/katana/core/types"
	"github.com/katana-go/katana/katanalib/common"
	"github.com/katana-go/katana/katanalib/kv"
)

// ChainReader is the read-only counterpart to BlockWriter: header/
// transaction/receipt lookups the rpc package's chain-info methods need,
// none of which require a full StateProvider snapshot (spec §6's
// `block_number`, `get_transaction_by_hash`, `get_transaction_receipt`,
// etc.).
type ChainReader struct {
	db kv.RoDB
}

func NewChainReader(db kv.RoDB) *ChainReader {
	return &ChainReader{db: db}
}

// LatestBlockNumber returns the highest block number written, or
// (0, false) if the chain is still empty (genesis not yet sealed).
func (r *ChainReader) LatestBlockNumber(ctx context.Context) (uint64, bool, error) {
	var number uint64
	found := false
	err := r.db.View(ctx, func(tx kv.Tx) error {
		c, err := tx.Cursor(kv.Headers)
		if err != nil {
			return err
		}
		defer c.Close()
		k, _, err := c.Last()
		if err != nil {
			return err
		}
		if k == nil {
			return nil
		}
		found = true
		number = kv.DecodeBlockNumber(k)
		return nil
	})
	return number, found, err
}

func (r *ChainReader) HeaderByNumber(ctx context.Context, number uint64) (*types.Header, bool, error) {
	var header *types.Header
	err := r.db.View(ctx, func(tx kv.Tx) error {
		v, err := tx.GetOne(kv.Headers, kv.EncodeBlockNumber(number))
		if err != nil || v == nil {
			return err
		}
		header, err = decodeHeader(v)
		return err
	})
	return header, header != nil, err
}

func (r *ChainReader) BlockHashByNumber(ctx context.Context, number uint64) (common.Hash, bool, error) {
	return BlockHashByNumber(ctx, r.db, number)
}

func (r *ChainReader) BlockNumberByHash(ctx context.Context, hash common.Hash) (uint64, bool, error) {
	var number uint64
	found := false
	err := r.db.View(ctx, func(tx kv.Tx) error {
		v, err := tx.GetOne(kv.BlockNumbers, hash.Bytes())
		if err != nil || v == nil {
			return err
		}
		found = true
		number = kv.DecodeBlockNumber(v)
		return nil
	})
	return number, found, err
}

// TransactionByHash returns the transaction, its containing block number,
// and whether the hash was found.
func (r *ChainReader) TransactionByHash(ctx context.Context, hash common.Hash) (types.Transaction, uint64, bool, error) {
	var tx types.Transaction
	var blockNumber uint64
	found := false
	err := r.db.View(ctx, func(rtx kv.Tx) error {
		txNumBytes, err := rtx.GetOne(kv.TxNumbers, hash.Bytes())
		if err != nil || txNumBytes == nil {
			return err
		}
		blockNumBytes, err := rtx.GetOne(kv.TxBlocks, hash.Bytes())
		if err != nil || blockNumBytes == nil {
			return err
		}
		raw, err := rtx.GetOne(kv.Transactions, txNumBytes)
		if err != nil || raw == nil {
			return err
		}
		decoded, err := decodeTransaction(raw)
		if err != nil {
			return err
		}
		tx = decoded
		blockNumber = kv.DecodeBlockNumber(blockNumBytes)
		found = true
		return nil
	})
	return tx, blockNumber, found, err
}

func (r *ChainReader) ReceiptByHash(ctx context.Context, hash common.Hash) (*types.Receipt, bool, error) {
	var receipt *types.Receipt
	err := r.db.View(ctx, func(rtx kv.Tx) error {
		txNumBytes, err := rtx.GetOne(kv.TxNumbers, hash.Bytes())
		if err != nil || txNumBytes == nil {
			return err
		}
		raw, err := rtx.GetOne(kv.Receipts, txNumBytes)
		if err != nil || raw == nil {
			return err
		}
		receipt, err = decodeReceipt(raw)
		return err
	})
	return receipt, receipt != nil, err
}

// BlockBodyRange returns the [firstTxNumber, firstTxNumber+count) range
// of tx_numbers belonging to a block, used to assemble a full block's
// transaction list.
func (r *ChainReader) BlockBodyRange(ctx context.Context, blockNumber uint64) (first, count uint64, err error) {
	err = r.db.View(ctx, func(tx kv.Tx) error {
		v, err := tx.GetOne(kv.BlockBodyIndices, kv.EncodeBlockNumber(blockNumber))
		if err != nil {
			return err
		}
		if v == nil {
			return fmt.Errorf("state: no body indices for block %d", blockNumber)
		}
		first, count, err = decodeBlockBodyIndices(v)
		return err
	})
	return first, count, err
}
