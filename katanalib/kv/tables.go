package kv

import (
	"sort"
	"strings"
)

// DBSchemaVersion is the schema version embedded in every database this
// engine opens. On open the engine refuses to attach if the stored version
// differs (spec §4.1 "Versioned schema"); a migration tool re-encodes an
// older database at the current version (katanalib/kv/migrations).
//
// v6 -> v7: Transactions' V3 resource bounds gained an L1 data gas bound
// (katanalib/kv/migrations upcasts the v6 two-resource-bound layout).
var DBSchemaVersion = Version{Major: 7, Minor: 0, Patch: 0}

type Version struct{ Major, Minor, Patch uint32 }

// TableFlags mirror the engine's native B-tree flags, carried over from
// erigon-lib/kv's TableFlags bit layout.
type TableFlags uint

const (
	Default    TableFlags = 0x00
	ReverseKey TableFlags = 0x02
	DupSort    TableFlags = 0x04
	IntegerKey TableFlags = 0x08
	IntegerDup TableFlags = 0x20
	ReverseDup TableFlags = 0x40
)

// TableCfgItem describes one table's storage shape, the same fields
// erigon-lib/kv/tables.go's TableCfgItem carries (minus the DupSort
// key-folding knobs, which this schema has no use for: none of Katana's
// DupSort tables need the variable-length-key-to-fixed-length transform
// PlainState/HashedStorage use).
type TableCfgItem struct {
	Flags        TableFlags
	IsDeprecated bool
}

type TableCfg map[string]TableCfgItem

// Table name constants. Grouped to match spec §4.1's "tables required by the
// core" listing plus the §4.2 trie History/ChangeSet triplets.
const (
	// Canonical chain.
	Headers          = "Headers"          // block_num -> Header
	BlockHashes      = "BlockHashes"       // block_num -> block_hash
	BlockNumbers     = "BlockNumbers"      // block_hash -> block_num
	BlockBodyIndices = "BlockBodyIndices"  // block_num -> {first_tx_number, tx_count}
	BlockStatusses   = "BlockStatusses"    // block_num -> FinalityStatus

	// Transactions.
	Transactions = "Transactions" // tx_number -> Transaction
	TxHashes     = "TxHashes"     // tx_number -> tx_hash
	TxBlocks     = "TxBlocks"     // tx_hash -> block_num
	TxNumbers    = "TxNumbers"    // tx_hash -> tx_number

	// Execution outputs.
	Receipts  = "Receipts"  // tx_number -> Receipt
	TxTraces  = "TxTraces"  // tx_number -> trace blob

	// Contracts and classes.
	ContractInfo        = "ContractInfo"        // address -> {nonce, class_hash}
	ContractStorage      = "ContractStorage"     // address -> (slot, value), DupSort
	Classes              = "Classes"             // class_hash -> ContractClass (zstd-compressed Sierra program)
	CompiledClassHashes  = "CompiledClassHashes" // class_hash -> compiled_class_hash

	// Trie tables: current state plus block-indexed history, one triplet per
	// trie family (spec §4.2).
	ClassesTrie          = "ClassesTrie"
	ClassesTrieHistory   = "ClassesTrieHistory" // block_num -> (TrieDatabaseKey, bytes), DupSort
	ClassesTrieChangeSet = "ClassesTrieChangeSet" // TrieDatabaseKey -> IntegerSet(block_num)

	ContractsTrie          = "ContractsTrie"
	ContractsTrieHistory   = "ContractsTrieHistory"
	ContractsTrieChangeSet = "ContractsTrieChangeSet"

	StoragesTrie          = "StoragesTrie"
	StoragesTrieHistory   = "StoragesTrieHistory"
	StoragesTrieChangeSet = "StoragesTrieChangeSet"

	// Sync pipeline.
	StageCheckpoints = "StageCheckpoints" // stage_id -> last_block_processed

	// Engine metadata.
	DbInfo = "DbInfo" // schema version, etc.
)

// ChaindataTables lists every table this engine must open; the mdbx backend
// opens exactly these, and a transaction naming a table missing from this
// list fails with an unknown-table error.
var ChaindataTables = []string{
	Headers, BlockHashes, BlockNumbers, BlockBodyIndices, BlockStatusses,
	Transactions, TxHashes, TxBlocks, TxNumbers,
	Receipts, TxTraces,
	ContractInfo, ContractStorage, Classes, CompiledClassHashes,
	ClassesTrie, ClassesTrieHistory, ClassesTrieChangeSet,
	ContractsTrie, ContractsTrieHistory, ContractsTrieChangeSet,
	StoragesTrie, StoragesTrieHistory, StoragesTrieChangeSet,
	StageCheckpoints, DbInfo,
}

// ChaindataTablesCfg declares the DupSort tables: ContractStorage (multiple
// (slot,value) pairs per address) and the three <Trie>History tables
// (multiple (TrieDatabaseKey,bytes) pairs per block number), per spec §4.1
// and §3 "History entry".
var ChaindataTablesCfg = TableCfg{
	ContractStorage:      {Flags: DupSort},
	ClassesTrieHistory:   {Flags: DupSort},
	ContractsTrieHistory: {Flags: DupSort},
	StoragesTrieHistory:  {Flags: DupSort},
}

func init() {
	reinit()
}

func reinit() {
	sortTables()
	for _, name := range ChaindataTables {
		if _, ok := ChaindataTablesCfg[name]; !ok {
			ChaindataTablesCfg[name] = TableCfgItem{}
		}
	}
}

func sortTables() {
	sort.SliceStable(ChaindataTables, func(i, j int) bool {
		return strings.Compare(ChaindataTables[i], ChaindataTables[j]) < 0
	})
}
