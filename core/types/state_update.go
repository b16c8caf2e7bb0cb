package types

import "github.com/katana-go/katana/katanalib/common"

// StorageDiffEntry is one (key, value) write in a contract's storage.
type StorageDiffEntry struct {
	Key   common.Felt
	Value common.Felt
}

// ContractStorageDiff groups every storage write for one contract in a
// single block (spec §3 "State update").
type ContractStorageDiff struct {
	ContractAddress common.Address
	Entries         []StorageDiffEntry
}

// DeclaredClass pairs a newly declared Sierra class with its compiled class
// hash; Cairo 0 legacy classes have no compiled_class_hash (spec §3
// "Contract class").
type DeclaredClass struct {
	ClassHash         common.ClassHash
	CompiledClassHash common.Felt
}

// DeployedContract is a new contract's (address -> class_hash) binding.
type DeployedContract struct {
	Address   common.Address
	ClassHash common.ClassHash
}

// ReplacedClass is an existing contract's class_hash being swapped (the
// `replace_class` syscall, spec §3 glossary).
type ReplacedClass struct {
	Address   common.Address
	ClassHash common.ClassHash
}

// NonceUpdate is a contract's new nonce after executing its transaction.
type NonceUpdate struct {
	Address common.Address
	Nonce   common.Felt
}

// StateDiff is the full set of per-block state mutations the trie layer
// applies and the commitment layer hashes (spec §3, §4.2).
type StateDiff struct {
	StorageDiffs      []ContractStorageDiff
	DeclaredClasses   []DeclaredClass
	DeprecatedClasses []common.ClassHash // Cairo 0 classes declared this block
	DeployedContracts []DeployedContract
	ReplacedClasses   []ReplacedClass
	Nonces            []NonceUpdate
}

// Len returns the state-diff length the header commits to
// (header.StateDiffLength, spec §3): one unit per storage entry, declared
// class, deprecated class, deployed contract, replaced class and nonce
// update.
func (d *StateDiff) Len() uint64 {
	n := uint64(len(d.DeclaredClasses) + len(d.DeprecatedClasses) + len(d.DeployedContracts) + len(d.ReplacedClasses) + len(d.Nonces))
	for _, sd := range d.StorageDiffs {
		n += uint64(len(sd.Entries))
	}
	return n
}

// StateUpdate binds a StateDiff to the block that produced it and the
// state roots before/after applying it.
type StateUpdate struct {
	BlockHash common.Hash
	NewRoot   common.Felt
	OldRoot   common.Felt
	StateDiff StateDiff
}

// SierraEntryPoint is one (selector -> Cairo function index) binding within
// a Sierra class's entry-point table.
type SierraEntryPoint struct {
	Selector       common.Felt
	FunctionIndex  uint64
}

// SierraEntryPoints partitions a Sierra class's entry points by call kind.
type SierraEntryPoints struct {
	External    []SierraEntryPoint
	L1Handler   []SierraEntryPoint
	Constructor []SierraEntryPoint
}

// ContractClass is either a Cairo 0 legacy class or a Sierra+CASM class
// (spec §3 "Contract class").
type ContractClass struct {
	IsLegacy bool

	// Cairo 0 legacy fields.
	LegacyProgram      []byte // gzip-compressed program JSON, opaque to the node
	LegacyEntryPoints  SierraEntryPoints

	// Sierra fields.
	SierraProgram     []common.Felt
	SierraEntryPoints SierraEntryPoints
	ContractClassVersion string
	ABI                   string
}
