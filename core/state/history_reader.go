package state

import (
	"bytes"

	"github.com/katana-go/katana/core/types"
	"github.com/katana-go/katana/katanalib/common"
	"github.com/katana-go/katana/katanalib/kv"
)

// historyReader answers StateProvider reads as of a past block, scoped by
// blockNumber, by scanning the <Trie>History tables for the latest entry at
// or before blockNumber — the generalization of the teacher's
// HistoryReaderV3.ReadAccountData/ReadAccountStorage (scoped by txNum,
// answered via ttx.GetAsOf) to StarkNet's per-block trie history.
//
// Unlike GetAsOf (an indexed point lookup in the teacher's temporal domain
// files), this scan is linear in history-table size per key, since Katana's
// History tables are ordered by block number, not by key. Acceptable for an
// archive node answering occasional historical RPC calls; a production
// deployment would add a secondary per-key index (out of scope here).
type historyReader struct {
	tx          kv.Tx
	blockNumber uint64
	latest      *latestProvider // current-state fallback for Class/CompiledClassHash, which aren't versioned by block
}

// Nonce and ClassHashAt fall back to the current ContractInfo value: spec
// §4.2 scopes the History tables to the trie families only, so a
// historical nonce/class_hash read isn't reconstructible without also
// versioning ContractInfo; both return the latest value at any block.
func (r *historyReader) Nonce(addr common.Address) (common.Felt, error) {
	return r.latest.Nonce(addr)
}

func (r *historyReader) ClassHashAt(addr common.Address) (common.ClassHash, error) {
	return r.latest.ClassHashAt(addr)
}

// StorageAt returns the slot's value as of r.blockNumber: the latest history
// entry at or before that block, or Felt::ZERO if the slot has none — a slot
// first written after r.blockNumber did not exist yet at the queried block,
// regardless of what its current live value is (spec §8 invariant 2).
func (r *historyReader) StorageAt(addr common.Address, slot common.Felt) (common.Felt, error) {
	target := storageKeyHash(addr, slot)
	val, ok, err := r.scanHistory(kv.StoragesTrieHistory, target)
	if err != nil {
		return common.FeltZero, err
	}
	if !ok {
		return common.FeltZero, nil
	}
	var f common.Felt
	copy(f[:], val)
	return f, nil
}

func (r *historyReader) Class(classHash common.ClassHash) (*types.ContractClass, error) {
	return r.latest.Class(classHash)
}

func (r *historyReader) CompiledClassHash(classHash common.ClassHash) (common.Felt, error) {
	return r.latest.CompiledClassHash(classHash)
}

func (r *historyReader) scanHistory(table string, key common.Felt) ([]byte, bool, error) {
	targetKey := kv.TrieDatabaseKey{Type: kv.TrieKeyFlat, Key: key.Bytes()}.Encode()

	c, err := r.tx.Cursor(table)
	if err != nil {
		return nil, false, err
	}
	defer c.Close()

	var best []byte
	found := false

	k, v, err := c.First()
	for k != nil && err == nil {
		blockNumber := kv.DecodeBlockNumber(k)
		if blockNumber > r.blockNumber {
			break
		}
		entry, derr := kv.DecodeHistoryValue(v)
		if derr != nil {
			return nil, false, derr
		}
		if bytes.Equal(entry.Key.Encode(), targetKey) {
			best = entry.Value
			found = true
		}
		k, v, err = c.Next()
	}
	if err != nil {
		return nil, false, err
	}
	return best, found, nil
}

// storageKeyHash mirrors core/state/trie's unexported storageKey — the
// composite Felt a storage slot's trie-history entries are keyed by.
func storageKeyHash(addr common.Address, slot common.Felt) common.Felt {
	return common.PoseidonHash("katana.storage_key", addr, slot)
}
