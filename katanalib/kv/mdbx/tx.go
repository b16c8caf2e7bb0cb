package mdbx

import (
	"fmt"

	"github.com/erigontech/mdbx-go/mdbx"

	"github.com/katana-go/katana/katanalib/kv"
)

type tx struct {
	txn *mdbx.Txn
	db  *DB
}

func (t *tx) dbi(table string) (mdbx.DBI, error) {
	d, ok := t.db.dbis[table]
	if !ok {
		return 0, fmt.Errorf("mdbx: unknown table %q", table)
	}
	return d, nil
}

func (t *tx) GetOne(table string, key []byte) ([]byte, error) {
	dbi, err := t.dbi(table)
	if err != nil {
		return nil, err
	}
	v, err := t.txn.Get(dbi, key)
	if mdbx.IsNotFound(err) {
		return nil, nil
	}
	return v, err
}

func (t *tx) Cursor(table string) (kv.Cursor, error) {
	dbi, err := t.dbi(table)
	if err != nil {
		return nil, err
	}
	c, err := t.txn.OpenCursor(dbi)
	if err != nil {
		return nil, err
	}
	return &cursor{c: c}, nil
}

func (t *tx) CursorDupSort(table string) (kv.CursorDupSort, error) {
	dbi, err := t.dbi(table)
	if err != nil {
		return nil, err
	}
	c, err := t.txn.OpenCursor(dbi)
	if err != nil {
		return nil, err
	}
	return &cursor{c: c}, nil
}

func (t *tx) Stats(table string) (kv.Stats, error) {
	dbi, err := t.dbi(table)
	if err != nil {
		return kv.Stats{}, err
	}
	st, err := t.txn.StatDBI(dbi)
	if err != nil {
		return kv.Stats{}, err
	}
	envInfo, err := t.db.env.Info(t.txn)
	var pageSize uint32
	if err == nil {
		pageSize = uint32(envInfo.PageSize)
	}
	return kv.Stats{
		Entries:       st.Entries,
		Depth:         uint32(st.Depth),
		BranchPages:   st.BranchPages,
		LeafPages:     st.LeafPages,
		OverflowPages: st.OverflowPages,
		PageSize:      pageSize,
		TotalSizeBytes: (st.BranchPages + st.LeafPages + st.OverflowPages) * uint64(pageSize),
	}, nil
}

func (t *tx) Rollback() {
	t.txn.Abort()
}

type rwTx struct {
	tx
}

func (t *rwTx) Put(table string, key, value []byte) error {
	dbi, err := t.dbi(table)
	if err != nil {
		return err
	}
	return t.txn.Put(dbi, key, value, 0)
}

func (t *rwTx) Delete(table string, key []byte) error {
	dbi, err := t.dbi(table)
	if err != nil {
		return err
	}
	err = t.txn.Del(dbi, key, nil)
	if mdbx.IsNotFound(err) {
		return nil
	}
	return err
}

func (t *rwTx) RwCursor(table string) (kv.RwCursor, error) {
	dbi, err := t.dbi(table)
	if err != nil {
		return nil, err
	}
	c, err := t.txn.OpenCursor(dbi)
	if err != nil {
		return nil, err
	}
	return &cursor{c: c}, nil
}

func (t *rwTx) RwCursorDupSort(table string) (kv.RwCursorDupSort, error) {
	dbi, err := t.dbi(table)
	if err != nil {
		return nil, err
	}
	c, err := t.txn.OpenCursor(dbi)
	if err != nil {
		return nil, err
	}
	return &cursor{c: c}, nil
}

func (t *rwTx) ClearTable(table string) error {
	dbi, err := t.dbi(table)
	if err != nil {
		return err
	}
	return t.txn.Drop(dbi, false)
}

func (t *rwTx) Commit() error {
	_, err := t.txn.Commit()
	return err
}
