package state

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katana-go/katana/katanalib/common"
	"github.com/katana-go/katana/katanalib/kv"
)

// historyFakeTx is a minimal read-only kv.Tx: Cursor flat-iterates every
// (key, value) pair ever Put under a table, in key order — the generic
// (non-DupSort-aware) traversal historyReader.scanHistory relies on, since
// a plain Cursor over a DupSort table yields every duplicate individually.
type historyFakeTx struct {
	entries map[string][][2][]byte
}

func newHistoryFakeTx() *historyFakeTx {
	return &historyFakeTx{entries: make(map[string][][2][]byte)}
}

func (t *historyFakeTx) put(table string, key, value []byte) {
	t.entries[table] = append(t.entries[table], [2][]byte{append([]byte(nil), key...), append([]byte(nil), value...)})
}

func (t *historyFakeTx) GetOne(table string, key []byte) ([]byte, error) { return nil, nil }
func (t *historyFakeTx) Cursor(table string) (kv.Cursor, error) {
	entries := append([][2][]byte(nil), t.entries[table]...)
	sort.SliceStable(entries, func(i, j int) bool { return string(entries[i][0]) < string(entries[j][0]) })
	return &historyFlatCursor{entries: entries, idx: -1}, nil
}
func (t *historyFakeTx) CursorDupSort(table string) (kv.CursorDupSort, error) {
	panic("not implemented in historyFakeTx")
}
func (t *historyFakeTx) Stats(table string) (kv.Stats, error) { return kv.Stats{}, nil }
func (t *historyFakeTx) Rollback()                            {}

type historyFlatCursor struct {
	entries [][2][]byte
	idx     int
}

func (c *historyFlatCursor) current() ([]byte, []byte, error) {
	if c.idx < 0 || c.idx >= len(c.entries) {
		return nil, nil, nil
	}
	return c.entries[c.idx][0], c.entries[c.idx][1], nil
}
func (c *historyFlatCursor) First() ([]byte, []byte, error) { c.idx = 0; return c.current() }
func (c *historyFlatCursor) Next() ([]byte, []byte, error)  { c.idx++; return c.current() }
func (c *historyFlatCursor) Seek([]byte) ([]byte, []byte, error) {
	panic("not implemented in historyFakeTx")
}
func (c *historyFlatCursor) Last() ([]byte, []byte, error) { panic("not implemented in historyFakeTx") }
func (c *historyFlatCursor) Close()                        {}

func putStorageHistory(tx *historyFakeTx, blockNumber uint64, addr common.Address, slot, value common.Felt) {
	dbKey := kv.TrieDatabaseKey{Type: kv.TrieKeyFlat, Key: storageKeyHash(addr, slot).Bytes()}
	entry := kv.HistoryEntry{Key: dbKey, Value: value.Bytes()}
	tx.put(kv.StoragesTrieHistory, kv.EncodeBlockNumber(blockNumber), kv.EncodeHistoryValue(entry))
}

func TestHistoryReaderStorageAtReturnsEntryAtOrBeforeBlock(t *testing.T) {
	tx := newHistoryFakeTx()
	addr := common.FeltFromUint64(1)
	slot := common.FeltFromUint64(2)
	putStorageHistory(tx, 5, addr, slot, common.FeltFromUint64(500))
	putStorageHistory(tx, 9, addr, slot, common.FeltFromUint64(900))

	r := &historyReader{tx: tx, blockNumber: 7, latest: &latestProvider{tx: tx}}
	v, err := r.StorageAt(addr, slot)
	require.NoError(t, err)
	require.Equal(t, common.FeltFromUint64(500), v)
}

func TestHistoryReaderStorageAtReturnsZeroBeforeFirstWrite(t *testing.T) {
	tx := newHistoryFakeTx()
	addr := common.FeltFromUint64(1)
	slot := common.FeltFromUint64(2)
	// Slot is first written at block 5; querying at block 2 must read as
	// zero, not whatever the live/latest value eventually becomes.
	putStorageHistory(tx, 5, addr, slot, common.FeltFromUint64(500))

	r := &historyReader{tx: tx, blockNumber: 2, latest: &latestProvider{tx: tx}}
	v, err := r.StorageAt(addr, slot)
	require.NoError(t, err)
	require.Equal(t, common.FeltZero, v)
}

func TestHistoryReaderStorageAtExactBlockMatch(t *testing.T) {
	tx := newHistoryFakeTx()
	addr := common.FeltFromUint64(1)
	slot := common.FeltFromUint64(2)
	putStorageHistory(tx, 5, addr, slot, common.FeltFromUint64(500))

	r := &historyReader{tx: tx, blockNumber: 5, latest: &latestProvider{tx: tx}}
	v, err := r.StorageAt(addr, slot)
	require.NoError(t, err)
	require.Equal(t, common.FeltFromUint64(500), v)
}
