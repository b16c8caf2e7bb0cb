// Package trie implements the three Merkle-Patricia tries spec §3/§4.2
// describe — classes, contracts and per-contract storage — plus the
// block-indexed history tables and pruner that sit on top of them.
//
// Grounded on original_source's katana_trie crate (referenced from
// crates/storage/provider/provider/src/providers/fork/trie.rs:
// PartialContractsTrie/PartialStoragesTrie/PartialClassesTrie,
// ContractLeaf{storage_root, nonce, class_hash},
// compute_contract_state_hash) and on the teacher's
// core/state/history_reader_v3.go's GetAsOf pattern for the history tables,
// generalized from Ethereum accounts/storage/code to StarkNet
// nonce/class_hash/storage/class domains.
package trie

import (
	"sort"

	"github.com/katana-go/katana/katanalib/common"
)

// node is one Merkle-Patricia trie node: a leaf carries a value directly, a
// branch carries up to 2 children indexed by the next key bit (the trie is
// a binary Patricia trie over Felt keys, matching katana_trie's bit-level
// radix-2 structure).
type node struct {
	leaf     bool
	value    common.Felt // leaf value, ignored for branches
	children [2]*node
	key      common.Felt // leaf's full key, used to detect/split shared prefixes
	present  bool
}

// Trie is an in-memory binary Merkle-Patricia trie over Felt keys, hashed
// with the placeholder Poseidon scheme (katanalib/common.PoseidonHash).
// Height is fixed at 251 bits, the StarkNet Felt's usable bit width.
type Trie struct {
	root   *node
	domain string // hash domain separator, distinguishes classes/contracts/storage tries
}

const height = 251

func New(domain string) *Trie {
	return &Trie{domain: domain}
}

// Insert sets key -> value, inserting or overwriting the leaf.
func (t *Trie) Insert(key, value common.Felt) {
	if value.IsZero() {
		t.Delete(key)
		return
	}
	t.root = insert(t.root, key, value, height)
}

// Delete removes key if present; deleting an absent key is a no-op.
func (t *Trie) Delete(key common.Felt) {
	t.root = remove(t.root, key, height)
}

// Get returns the value at key and whether it was present.
func (t *Trie) Get(key common.Felt) (common.Felt, bool) {
	n := t.root
	depth := height
	for n != nil {
		if n.leaf {
			if n.key == key {
				return n.value, true
			}
			return common.FeltZero, false
		}
		bit := keyBit(key, depth-1)
		n = n.children[bit]
		depth--
	}
	return common.FeltZero, false
}

// Root returns the trie's current root hash. An empty trie hashes to
// PoseidonHash(domain+".empty") (no felt inputs), never the bare zero felt.
func (t *Trie) Root() common.Felt {
	return hashNode(t.root, t.domain, height)
}

func insert(n *node, key, value common.Felt, depth int) *node {
	if n == nil {
		return &node{leaf: true, key: key, value: value, present: true}
	}
	if n.leaf {
		if n.key == key {
			n.value = value
			return n
		}
		// split: push the existing leaf down, then insert both under a
		// fresh branch at this depth.
		branch := &node{}
		existing := n
		branch = insertAt(branch, existing.key, existing, depth)
		return insert(branch, key, value, depth)
	}
	bit := keyBit(key, depth-1)
	n.children[bit] = insert(n.children[bit], key, value, depth-1)
	return n
}

func insertAt(branch *node, key common.Felt, leaf *node, depth int) *node {
	bit := keyBit(key, depth-1)
	branch.children[bit] = leaf
	return branch
}

func remove(n *node, key common.Felt, depth int) *node {
	if n == nil {
		return nil
	}
	if n.leaf {
		if n.key == key {
			return nil
		}
		return n
	}
	bit := keyBit(key, depth-1)
	n.children[bit] = remove(n.children[bit], key, depth-1)
	if n.children[0] == nil && n.children[1] == nil {
		return nil
	}
	if n.children[0] == nil && n.children[1] != nil && n.children[1].leaf {
		return n.children[1]
	}
	if n.children[1] == nil && n.children[0] != nil && n.children[0].leaf {
		return n.children[0]
	}
	return n
}

func keyBit(key common.Felt, bitFromLSB int) uint8 {
	byteIdx := common.FeltBytes - 1 - bitFromLSB/8
	if byteIdx < 0 || byteIdx >= common.FeltBytes {
		return 0
	}
	bitIdx := uint(bitFromLSB % 8)
	return (key[byteIdx] >> bitIdx) & 1
}

func hashNode(n *node, domain string, depth int) common.Felt {
	if n == nil {
		return common.PoseidonHash(domain + ".empty")
	}
	if n.leaf {
		return common.PoseidonHash(domain+".leaf", n.key, n.value)
	}
	left := hashNode(n.children[0], domain, depth-1)
	right := hashNode(n.children[1], domain, depth-1)
	return common.PoseidonHash(domain+".branch", left, right)
}

// Entries returns every (key, value) pair in key order, used by proof
// generation and tests.
func (t *Trie) Entries() []Entry {
	var out []Entry
	collect(t.root, &out)
	sort.Slice(out, func(i, j int) bool { return out[i].Key.Cmp(out[j].Key) < 0 })
	return out
}

type Entry struct {
	Key   common.Felt
	Value common.Felt
}

func collect(n *node, out *[]Entry) {
	if n == nil {
		return
	}
	if n.leaf {
		*out = append(*out, Entry{Key: n.key, Value: n.value})
		return
	}
	collect(n.children[0], out)
	collect(n.children[1], out)
}
