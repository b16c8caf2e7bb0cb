// Package kv defines the storage engine's contract: ACID transactions,
// typed ordered tables (some DupSort), cursors, and per-table statistics.
// The contract itself is storage-engine agnostic; katanalib/kv/mdbx supplies
// the concrete mdbx-go-backed implementation.
//
// Grounded on erigon-lib/kv's split between an interface package (Tx/RwTx/
// Cursor) and a concrete mdbx backend — the same shape carried over here,
// generalized from Ethereum's account/storage tables to Katana's block/tx/
// receipt/class/contract/trie tables (see tables.go).
package kv

import "context"

// Tx is a read-only transaction: many may be open concurrently, each seeing
// a consistent snapshot as of when it began.
type Tx interface {
	// GetOne returns the value stored at key in table, or nil if absent.
	GetOne(table string, key []byte) ([]byte, error)
	// Cursor opens a forward-ordered cursor over table.
	Cursor(table string) (Cursor, error)
	// CursorDupSort opens a cursor over a DupSort table.
	CursorDupSort(table string) (CursorDupSort, error)
	// Stats returns the per-table statistics defined in spec §4.1.
	Stats(table string) (Stats, error)
	Rollback()
}

// RwTx is the single read-write transaction allowed at a time; it is
// serializable against the set of committed snapshots.
type RwTx interface {
	Tx
	Put(table string, key, value []byte) error
	Delete(table string, key []byte) error
	// RwCursor opens a writable cursor.
	RwCursor(table string) (RwCursor, error)
	RwCursorDupSort(table string) (RwCursorDupSort, error)
	// ClearTable drops every entry in table, used by the Latest pruner mode.
	ClearTable(table string) error
	Commit() error
}

// Cursor traverses a table in key order.
type Cursor interface {
	First() (k, v []byte, err error)
	Next() (k, v []byte, err error)
	Seek(seek []byte) (k, v []byte, err error)
	Last() (k, v []byte, err error)
	Close()
}

// RwCursor additionally allows mutation at the current position.
type RwCursor interface {
	Cursor
	Put(k, v []byte) error
	Delete(k []byte) error
}

// CursorDupSort additionally traverses duplicate values at a fixed key.
type CursorDupSort interface {
	Cursor
	SeekExact(k []byte) (v []byte, err error)
	FirstDup() (v []byte, err error)
	NextDup() (k, v []byte, err error)
	LastDup() (v []byte, err error)
	CountDuplicates() (uint64, error)
}

// RwCursorDupSort is the writable counterpart, exposing the O(1)
// delete-all-duplicates-at-key operation spec §4.1 requires of the engine.
type RwCursorDupSort interface {
	CursorDupSort
	RwCursor
	PutNoDupData(k, v []byte) error
	DeleteCurrentDuplicates() error
	AppendDup(k, v []byte) error
}

// Stats mirrors spec §4.1's "statistics per table": entry count, depth,
// page counts by kind, total size, freelist, and page size. The mdbx
// backend fills every field except FreelistPages, which it leaves at 0.
type Stats struct {
	Entries        uint64
	Depth          uint32
	BranchPages    uint64
	LeafPages      uint64
	OverflowPages  uint64
	FreelistPages  uint64
	PageSize       uint32
	TotalSizeBytes uint64
}

// RoDB and RwDB vend transactions over the engine's env.
type RoDB interface {
	View(ctx context.Context, f func(tx Tx) error) error
	BeginRo(ctx context.Context) (Tx, error)
	Close()
}

type RwDB interface {
	RoDB
	Update(ctx context.Context, f func(tx RwTx) error) error
	BeginRw(ctx context.Context) (RwTx, error)
}
