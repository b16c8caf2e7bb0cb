package trie

import (
	"github.com/katana-go/katana/core/types"
	"github.com/katana-go/katana/katanalib/common"
	"github.com/katana-go/katana/katanalib/kv"
)

// Writer is the per-block trie-mutation boundary spec §4.2 calls the
// "TrieWriter" contract: InsertContractUpdates applies a block's
// nonce/storage/class-hash changes to the contracts and storages tries,
// InsertDeclaredClasses applies newly declared classes to the classes trie,
// and ComputeStateRoot folds the two trie roots into the global state root
// (spec §3 "state_root = Poseidon(STARKNET_STATE_V0, contracts_root,
// classes_root)"). Grounded on original_source's TrieWriter impl for
// ForkedProvider (fork/trie.rs).
type Writer struct {
	tx        kv.RwTx
	classes   *Trie
	contracts *Trie
	storages  map[common.Address]*Trie
}

func NewWriter(tx kv.RwTx) *Writer {
	return &Writer{
		tx:        tx,
		classes:   New("katana.trie.classes"),
		contracts: New("katana.trie.contracts"),
		storages:  make(map[common.Address]*Trie),
	}
}

func (w *Writer) storageTrie(addr common.Address) *Trie {
	t, ok := w.storages[addr]
	if !ok {
		t = New("katana.trie.storage")
		w.storages[addr] = t
	}
	return t
}

// InsertContractUpdates applies every storage write, nonce update, deployed
// contract and replaced class in diff, recomputes each touched contract's
// leaf hash, and returns the resulting contracts-trie root. Every touched
// leaf's new value is also appended to the history+changeset tables under
// blockNumber, so the value as of a past block can be looked up (spec §4.2).
//
// A contract not touched by nonce/deploy/replace this block keeps whatever
// nonce/class_hash its ContractInfo record already holds; the caller
// (core/state's StateWriter) is responsible for passing the carried-forward
// values through diff.Nonces/DeployedContracts when a leaf's storage_root
// changes but its nonce/class_hash don't, since the trie package itself has
// no view of ContractInfo.
func (w *Writer) InsertContractUpdates(blockNumber uint64, diff *types.StateDiff) (common.Felt, error) {
	touched := make(map[common.Address]struct{})

	for _, sd := range diff.StorageDiffs {
		st := w.storageTrie(sd.ContractAddress)
		for _, e := range sd.Entries {
			st.Insert(e.Key, e.Value)
			if err := w.recordHistory(kv.StoragesTrieHistory, kv.StoragesTrieChangeSet, blockNumber, storageKey(sd.ContractAddress, e.Key), e.Value.Bytes()); err != nil {
				return common.FeltZero, err
			}
		}
		touched[sd.ContractAddress] = struct{}{}
	}
	for _, n := range diff.Nonces {
		touched[n.Address] = struct{}{}
	}
	for _, d := range diff.DeployedContracts {
		touched[d.Address] = struct{}{}
	}
	for _, r := range diff.ReplacedClasses {
		touched[r.Address] = struct{}{}
	}

	nonces := make(map[common.Address]common.Felt, len(diff.Nonces))
	for _, n := range diff.Nonces {
		nonces[n.Address] = n.Nonce
	}
	classHashes := make(map[common.Address]common.ClassHash, len(diff.DeployedContracts)+len(diff.ReplacedClasses))
	for _, d := range diff.DeployedContracts {
		classHashes[d.Address] = d.ClassHash
	}
	for _, r := range diff.ReplacedClasses {
		classHashes[r.Address] = r.ClassHash
	}

	for addr := range touched {
		leaf := ContractLeaf{StorageRoot: w.storageTrie(addr).Root()}
		if v, ok := nonces[addr]; ok {
			leaf.Nonce = v
		}
		if v, ok := classHashes[addr]; ok {
			leaf.ClassHash = v
		}
		leafHash := ComputeContractStateHash(leaf)
		w.contracts.Insert(addr, leafHash)
		if err := w.recordHistory(kv.ContractsTrieHistory, kv.ContractsTrieChangeSet, blockNumber, addr, leafHash.Bytes()); err != nil {
			return common.FeltZero, err
		}
	}

	root := w.contracts.Root()
	return root, w.tx.Put(kv.ContractsTrie, []byte("root"), root.Bytes())
}

// InsertDeclaredClasses applies every class declared in diff to the classes
// trie — the leaf value is the class's compiled_class_hash (Sierra) or the
// class hash itself for legacy Cairo 0 classes (no compiled_class_hash),
// matching spec §3 "Contract class".
func (w *Writer) InsertDeclaredClasses(blockNumber uint64, diff *types.StateDiff) (common.Felt, error) {
	for _, dc := range diff.DeclaredClasses {
		w.classes.Insert(dc.ClassHash, dc.CompiledClassHash)
		if err := w.recordHistory(kv.ClassesTrieHistory, kv.ClassesTrieChangeSet, blockNumber, dc.ClassHash, dc.CompiledClassHash.Bytes()); err != nil {
			return common.FeltZero, err
		}
	}
	for _, ch := range diff.DeprecatedClasses {
		w.classes.Insert(ch, ch)
		if err := w.recordHistory(kv.ClassesTrieHistory, kv.ClassesTrieChangeSet, blockNumber, ch, ch.Bytes()); err != nil {
			return common.FeltZero, err
		}
	}
	root := w.classes.Root()
	return root, w.tx.Put(kv.ClassesTrie, []byte("root"), root.Bytes())
}

// ComputeStateRoot folds the contracts and classes trie roots into the
// global state root (spec §3).
func (w *Writer) ComputeStateRoot() common.Felt {
	return common.PoseidonHash("STARKNET_STATE_V0", w.contracts.Root(), w.classes.Root())
}

// recordHistory appends one (key, value) write at blockNumber to the given
// History table (DupSort, block_num -> (TrieDatabaseKey,bytes)) and marks
// the key as touched-at-blockNumber in the ChangeSet table
// (TrieDatabaseKey -> IntegerSet(block_num)), the pair of tables §4.2
// describes as the basis for point-in-time trie reconstruction and for the
// pruner's reverse lookup of "which keys changed after this cutoff".
func (w *Writer) recordHistory(historyTable, changeSetTable string, blockNumber uint64, key common.Felt, value []byte) error {
	dbKey := kv.TrieDatabaseKey{Type: kv.TrieKeyFlat, Key: key.Bytes()}
	entry := kv.HistoryEntry{Key: dbKey, Value: value}
	encoded := kv.EncodeHistoryValue(entry)
	if err := w.tx.Put(historyTable, kv.EncodeBlockNumber(blockNumber), encoded); err != nil {
		return err
	}

	encodedKey := dbKey.Encode()
	existing, err := w.tx.GetOne(changeSetTable, encodedKey)
	if err != nil {
		return err
	}
	var set *kv.IntegerSet
	if len(existing) > 0 {
		set, err = kv.DecodeIntegerSet(existing)
		if err != nil {
			return err
		}
	} else {
		set = kv.NewIntegerSet()
	}
	set.Add(blockNumber)
	buf, err := set.Encode()
	if err != nil {
		return err
	}
	return w.tx.Put(changeSetTable, encodedKey, buf)
}

// storageKey folds a contract address and storage slot into the single Felt
// a per-contract Trie indexes by — the storages trie is keyed purely by
// slot within storageTrie(addr)'s own instance, but the shared StoragesTrie
// table needs the address folded into the on-disk key so multiple
// contracts' history entries don't collide.
func storageKey(addr common.Address, slot common.Felt) common.Felt {
	return common.PoseidonHash("katana.storage_key", addr, slot)
}
