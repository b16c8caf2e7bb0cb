package stages

import (
	"context"
	"sync"

	"github.com/katana-go/katana/katanalib/kv"
)

// memDB is a minimal in-memory kv.RwDB used only by this package's tests:
// enough GetOne/Put support for CheckpointStore and
// state.BlockHashByNumber, nothing more (its cursor methods panic).
type memDB struct {
	mu     sync.Mutex
	tables map[string]map[string][]byte
}

func newMemDB() *memDB {
	return &memDB{tables: make(map[string]map[string][]byte)}
}

func (d *memDB) table(name string) map[string][]byte {
	t, ok := d.tables[name]
	if !ok {
		t = make(map[string][]byte)
		d.tables[name] = t
	}
	return t
}

func (d *memDB) View(ctx context.Context, f func(kv.Tx) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return f(&memTx{db: d})
}

func (d *memDB) BeginRo(ctx context.Context) (kv.Tx, error) {
	d.mu.Lock()
	return &memTx{db: d, unlock: d.mu.Unlock}, nil
}

func (d *memDB) Update(ctx context.Context, f func(kv.RwTx) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return f(&memTx{db: d})
}

func (d *memDB) BeginRw(ctx context.Context) (kv.RwTx, error) {
	d.mu.Lock()
	return &memTx{db: d, unlock: d.mu.Unlock}, nil
}

func (d *memDB) Close() {}

type memTx struct {
	db     *memDB
	unlock func()
}

func (t *memTx) GetOne(table string, key []byte) ([]byte, error) {
	v, ok := t.db.table(table)[string(key)]
	if !ok {
		return nil, nil
	}
	return v, nil
}

func (t *memTx) Put(table string, key, value []byte) error {
	t.db.table(table)[string(key)] = append([]byte(nil), value...)
	return nil
}

func (t *memTx) Delete(table string, key []byte) error {
	delete(t.db.table(table), string(key))
	return nil
}

func (t *memTx) Cursor(table string) (kv.Cursor, error)               { panic("not implemented in memdb_test") }
func (t *memTx) CursorDupSort(table string) (kv.CursorDupSort, error) { panic("not implemented in memdb_test") }
func (t *memTx) RwCursor(table string) (kv.RwCursor, error)           { panic("not implemented in memdb_test") }
func (t *memTx) RwCursorDupSort(table string) (kv.RwCursorDupSort, error) {
	panic("not implemented in memdb_test")
}
func (t *memTx) ClearTable(table string) error { delete(t.db.tables, table); return nil }
func (t *memTx) Stats(table string) (kv.Stats, error) { return kv.Stats{}, nil }
func (t *memTx) Commit() error {
	if t.unlock != nil {
		t.unlock()
	}
	return nil
}
func (t *memTx) Rollback() {
	if t.unlock != nil {
		t.unlock()
	}
}
