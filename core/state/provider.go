// Package state implements the StateProvider/ProviderFactory/ProviderMut
// read/write contract spec §4.3 describes, on top of katanalib/kv's
// ContractInfo/ContractStorage/Classes tables and core/state/trie's writer.
//
// The historical-read pattern (a reader scoped to one past block, falling
// back through the History tables instead of the current tables) is
// grounded on the teacher's core/state/history_reader_v3.go: HistoryReaderV3
// is scoped by txNum and answers ReadAccountData/ReadAccountStorage/
// ReadAccountCode via ttx.GetAsOf(domain, key, txNum); historyReader here is
// scoped by block number and answers StorageAt the same way, generalized
// from Ethereum's account/storage/code domains to StarkNet's storage
// domain. Its Nonce/ClassHashAt read the current ContractInfo table.
package state

import (
	"context"

	"github.com/katana-go/katana/core/types"
	"github.com/katana-go/katana/katanalib/common"
)

// StateProvider is a read-only view of contract state as of some block.
type StateProvider interface {
	Nonce(addr common.Address) (common.Felt, error)
	ClassHashAt(addr common.Address) (common.ClassHash, error)
	StorageAt(addr common.Address, slot common.Felt) (common.Felt, error)
	Class(classHash common.ClassHash) (*types.ContractClass, error)
	CompiledClassHash(classHash common.ClassHash) (common.Felt, error)
}

// StateRootProvider additionally exposes the trie roots a provider's view
// commits to.
type StateRootProvider interface {
	StorageRoot(addr common.Address) (common.Felt, error)
	StateRoot() (common.Felt, error)
}

// ProviderFactory vends StateProviders scoped to the latest block or to a
// specific historical block number (spec §4.3 "ProviderFactory").
type ProviderFactory interface {
	Latest(ctx context.Context) (StateProvider, error)
	AtBlock(ctx context.Context, blockNumber uint64) (StateProvider, error)
}

// ProviderMut is the write side: applying one block's StateDiff, which both
// updates the current-state tables and feeds core/state/trie's Writer.
type ProviderMut interface {
	ApplyStateDiff(ctx context.Context, blockNumber uint64, diff *types.StateDiff) (common.Felt, error)
}
