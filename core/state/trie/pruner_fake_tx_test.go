package trie

import (
	"sort"

	"github.com/katana-go/katana/katanalib/kv"
)

// fakeTx is a minimal in-memory kv.RwTx covering exactly what Pruner needs:
// DupSort history tables (Put appends a duplicate under a block-number key,
// RwCursorDupSort walks distinct keys in order and can delete every
// duplicate at the current key in one call) and plain changeset tables
// (Put/Delete/GetOne, RwCursor walks keys in sorted order). Mirrors the
// sync/stages memDB test fixture's shape, specialized for DupSort.
type fakeTx struct {
	dupTables map[string]bool
	dup       map[string]map[string][][]byte
	plain     map[string]map[string][]byte
}

func newFakeTx(dupTables ...string) *fakeTx {
	dt := make(map[string]bool, len(dupTables))
	for _, n := range dupTables {
		dt[n] = true
	}
	return &fakeTx{dupTables: dt, dup: make(map[string]map[string][][]byte), plain: make(map[string]map[string][]byte)}
}

func (t *fakeTx) dupMap(table string) map[string][][]byte {
	m, ok := t.dup[table]
	if !ok {
		m = make(map[string][][]byte)
		t.dup[table] = m
	}
	return m
}

func (t *fakeTx) plainMap(table string) map[string][]byte {
	m, ok := t.plain[table]
	if !ok {
		m = make(map[string][]byte)
		t.plain[table] = m
	}
	return m
}

func (t *fakeTx) GetOne(table string, key []byte) ([]byte, error) {
	return t.plainMap(table)[string(key)], nil
}

func (t *fakeTx) Put(table string, key, value []byte) error {
	if t.dupTables[table] {
		m := t.dupMap(table)
		m[string(key)] = append(m[string(key)], append([]byte(nil), value...))
		return nil
	}
	t.plainMap(table)[string(key)] = append([]byte(nil), value...)
	return nil
}

func (t *fakeTx) Delete(table string, key []byte) error {
	if t.dupTables[table] {
		delete(t.dupMap(table), string(key))
		return nil
	}
	delete(t.plainMap(table), string(key))
	return nil
}

func (t *fakeTx) Cursor(table string) (kv.Cursor, error) { return newPlainCursor(t, table), nil }
func (t *fakeTx) CursorDupSort(table string) (kv.CursorDupSort, error) {
	return newDupCursor(t, table), nil
}
func (t *fakeTx) RwCursor(table string) (kv.RwCursor, error) { return newPlainCursor(t, table), nil }
func (t *fakeTx) RwCursorDupSort(table string) (kv.RwCursorDupSort, error) {
	return newDupCursor(t, table), nil
}
func (t *fakeTx) ClearTable(table string) error {
	delete(t.plain, table)
	delete(t.dup, table)
	return nil
}
func (t *fakeTx) Stats(table string) (kv.Stats, error) { return kv.Stats{}, nil }
func (t *fakeTx) Commit() error                        { return nil }
func (t *fakeTx) Rollback()                            {}

// plainCursor walks a plain table's keys in sorted order, re-reading the
// current value on each step so concurrent Put/Delete calls against the
// underlying table (as pruneTable's ChangeSet loop makes) are reflected —
// matching real mdbx's tolerance of same-transaction cursor+direct writes.
type plainCursor struct {
	tx    *fakeTx
	table string
	keys  []string
	idx   int
}

func newPlainCursor(tx *fakeTx, table string) *plainCursor {
	m := tx.plainMap(table)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &plainCursor{tx: tx, table: table, keys: keys, idx: -1}
}

func (c *plainCursor) current() ([]byte, []byte, error) {
	if c.idx < 0 || c.idx >= len(c.keys) {
		return nil, nil, nil
	}
	k := c.keys[c.idx]
	return []byte(k), c.tx.plainMap(c.table)[k], nil
}
func (c *plainCursor) First() ([]byte, []byte, error) { c.idx = 0; return c.current() }
func (c *plainCursor) Next() ([]byte, []byte, error)  { c.idx++; return c.current() }
func (c *plainCursor) Seek([]byte) ([]byte, []byte, error) {
	panic("not implemented in fakeTx")
}
func (c *plainCursor) Last() ([]byte, []byte, error) { panic("not implemented in fakeTx") }
func (c *plainCursor) Close()                        {}
func (c *plainCursor) Put(k, v []byte) error         { return c.tx.Put(c.table, k, v) }
func (c *plainCursor) Delete(k []byte) error         { return c.tx.Delete(c.table, k) }

// dupCursor walks a DupSort table's distinct keys in sorted order.
type dupCursor struct {
	tx    *fakeTx
	table string
	keys  []string
	idx   int
}

func newDupCursor(tx *fakeTx, table string) *dupCursor {
	m := tx.dupMap(table)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &dupCursor{tx: tx, table: table, keys: keys, idx: -1}
}

func (c *dupCursor) current() ([]byte, []byte, error) {
	if c.idx < 0 || c.idx >= len(c.keys) {
		return nil, nil, nil
	}
	k := c.keys[c.idx]
	vals := c.tx.dupMap(c.table)[k]
	var v []byte
	if len(vals) > 0 {
		v = vals[0]
	}
	return []byte(k), v, nil
}
func (c *dupCursor) First() ([]byte, []byte, error) { c.idx = 0; return c.current() }
func (c *dupCursor) Next() ([]byte, []byte, error)  { c.idx++; return c.current() }
func (c *dupCursor) Seek([]byte) ([]byte, []byte, error) {
	panic("not implemented in fakeTx")
}
func (c *dupCursor) Last() ([]byte, []byte, error) { panic("not implemented in fakeTx") }
func (c *dupCursor) Close()                        {}
func (c *dupCursor) Put(k, v []byte) error         { return c.tx.Put(c.table, k, v) }
func (c *dupCursor) Delete(k []byte) error         { return c.tx.Delete(c.table, k) }
func (c *dupCursor) SeekExact([]byte) ([]byte, error) {
	panic("not implemented in fakeTx")
}
func (c *dupCursor) FirstDup() ([]byte, error) { panic("not implemented in fakeTx") }
func (c *dupCursor) NextDup() ([]byte, []byte, error) {
	panic("not implemented in fakeTx")
}
func (c *dupCursor) LastDup() ([]byte, error) { panic("not implemented in fakeTx") }
func (c *dupCursor) CountDuplicates() (uint64, error) {
	k := c.keys[c.idx]
	return uint64(len(c.tx.dupMap(c.table)[k])), nil
}
func (c *dupCursor) DeleteCurrentDuplicates() error {
	k := c.keys[c.idx]
	delete(c.tx.dupMap(c.table), k)
	return nil
}
func (c *dupCursor) PutNoDupData(k, v []byte) error { return c.Put(k, v) }
func (c *dupCursor) AppendDup(k, v []byte) error    { return c.Put(k, v) }
