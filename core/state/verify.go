package state

import (
	"fmt"

	statetrie "github.com/katana-go/katana/core/state/trie"
	"github.com/katana-go/katana/core/types"
	"github.com/katana-go/katana/katanalib/common"
	"github.com/katana-go/katana/katanalib/kv"
)

// VerifyStateUpdate recomputes the classes/contracts trie roots a state
// diff produces and reports whether they fold into expectedRoot, the same
// computation BlockWriter.InsertBlockWithStatesAndReceipts performs when
// persisting a block. Grounded on original_source's
// storage/verifier/verifiers/commitment.rs, which recomputes state_root
// from a state diff and compares rather than trusting a claimed value.
//
// tx must be scoped to verification only, not the transaction used to
// persist the block being checked: this re-applies the diff to the trie
// layer exactly as a real insert would, including appending history and
// changeset entries, so running it twice against the same transaction
// double-writes those tables.
func VerifyStateUpdate(tx kv.RwTx, blockNumber uint64, diff *types.StateDiff, expectedRoot common.Felt) (bool, error) {
	tw := statetrie.NewWriter(tx)
	if _, err := tw.InsertDeclaredClasses(blockNumber, diff); err != nil {
		return false, fmt.Errorf("state: verify state update: insert declared classes: %w", err)
	}
	if _, err := tw.InsertContractUpdates(blockNumber, diff); err != nil {
		return false, fmt.Errorf("state: verify state update: insert contract updates: %w", err)
	}
	return tw.ComputeStateRoot() == expectedRoot, nil
}
