// Commitment functions the header and trie layer both rely on.
//
// Open Question §9.1 ("what Merkle commitment scheme backs
// transaction/receipt/event/state-diff commitments") is left genuinely open
// by the spec; DESIGN.md records the decision to implement deterministic
// placeholders rather than the full StarkNet Poseidon-based commitment trees,
// built on the same placeholder PoseidonHash used by the state trie
// (katanalib/common/poseidon.go) so every commitment in a block is
// self-consistent and round-trips, without claiming protocol-level
// correctness.
package types

import "github.com/katana-go/katana/katanalib/common"

// transactionCommitment folds every transaction hash in a block into a
// single commitment, domain-separated so it can never collide with the
// receipt/event/state-diff commitments over the same input set.
func transactionCommitment(hashes []common.Hash) common.Felt {
	return common.PoseidonHash("katana.commitment.transaction", hashes...)
}

// receiptCommitment folds the fee+status+resources of every receipt in a
// block, represented here by its transaction hash and fee amount — a
// simplification of the real per-field Merkle leaf but sufficient to detect
// any receipt divergence between two re-executions of the same block.
func receiptCommitment(receipts []Receipt) common.Felt {
	leaves := make([]common.Felt, 0, len(receipts)*2)
	for _, r := range receipts {
		leaves = append(leaves, r.TransactionHash, r.Fee.Amount)
	}
	return common.PoseidonHash("katana.commitment.receipt", leaves...)
}

// eventCommitment folds every event emitted across a block's receipts.
func eventCommitment(receipts []Receipt) common.Felt {
	var leaves []common.Felt
	for _, r := range receipts {
		for _, ev := range r.Events {
			leaves = append(leaves, ev.FromAddress)
			leaves = append(leaves, ev.Keys...)
			leaves = append(leaves, ev.Data...)
		}
	}
	return common.PoseidonHash("katana.commitment.event", leaves...)
}

// stateDiffCommitment folds a StateDiff's contents in a fixed field order so
// two equal diffs always commit to the same Felt.
func stateDiffCommitment(diff *StateDiff) common.Felt {
	var leaves []common.Felt
	for _, sd := range diff.StorageDiffs {
		leaves = append(leaves, sd.ContractAddress)
		for _, e := range sd.Entries {
			leaves = append(leaves, e.Key, e.Value)
		}
	}
	for _, dc := range diff.DeclaredClasses {
		leaves = append(leaves, dc.ClassHash, dc.CompiledClassHash)
	}
	leaves = append(leaves, diff.DeprecatedClasses...)
	for _, d := range diff.DeployedContracts {
		leaves = append(leaves, d.Address, d.ClassHash)
	}
	for _, r := range diff.ReplacedClasses {
		leaves = append(leaves, r.Address, r.ClassHash)
	}
	for _, n := range diff.Nonces {
		leaves = append(leaves, n.Address, n.Nonce)
	}
	return common.PoseidonHash("katana.commitment.state_diff", leaves...)
}

// ComputeHeaderCommitments fills in the four per-block commitment fields and
// the state-diff length from the block's transactions, receipts and diff,
// the step the block producer runs right before sealing a header
// (spec §4.6).
func ComputeHeaderCommitments(h *Header, txs []Transaction, receipts []Receipt, diff *StateDiff) {
	hashes := make([]common.Hash, len(txs))
	for i, tx := range txs {
		hashes[i] = tx.Hash()
	}
	h.TransactionCommitment = transactionCommitment(hashes)
	h.ReceiptCommitment = receiptCommitment(receipts)
	h.EventCommitment = eventCommitment(receipts)
	h.StateDiffCommitment = stateDiffCommitment(diff)
	h.StateDiffLength = diff.Len()
}

// BlockHash derives the block hash from the header's own fields, again a
// placeholder scheme pending the real protocol hash (§9.1).
func BlockHash(h *Header) common.Hash {
	return common.PoseidonHash("katana.block_hash",
		common.FeltFromUint64(h.Number),
		h.ParentHash,
		common.FeltFromUint64(h.Timestamp),
		h.SequencerAddress,
		h.StateRoot,
		h.TransactionCommitment,
		h.ReceiptCommitment,
		h.EventCommitment,
		h.StateDiffCommitment,
	)
}
