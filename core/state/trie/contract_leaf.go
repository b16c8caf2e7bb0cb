package trie

import "github.com/katana-go/katana/katanalib/common"

// ContractLeaf is the value the contracts trie stores at a contract's
// address leaf: its class hash, nonce and the root of its own storage
// trie. Mirrors original_source's ContractLeaf{storage_root, nonce,
// class_hash} (crates/storage/provider/.../fork/trie.rs).
type ContractLeaf struct {
	ClassHash   common.ClassHash
	Nonce       common.Felt
	StorageRoot common.Felt
}

// ComputeContractStateHash folds a contract's leaf fields into the single
// Felt the contracts trie actually stores, domain-separated from the plain
// storage/classes leaf hashes so the three tries can never collide.
func ComputeContractStateHash(leaf ContractLeaf) common.Felt {
	return common.PoseidonHash("katana.contract_state_hash", leaf.ClassHash, leaf.StorageRoot, leaf.Nonce)
}
